package smf

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText turns a TEXT or TRACK_NAME payload into a string. Payloads that
// are not valid UTF-8 are read as Windows-1252, which is what most sequencers
// that predate UTF-8 wrote.
func decodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

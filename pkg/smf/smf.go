package smf

import (
	"fmt"
	"log/slog"
)

// Options configures a Decoder.
type Options struct {
	// Logger receives warnings about discarded or repaired input. Nil discards.
	Logger *slog.Logger
	// ChannelPolicy decides whether a channel mismatch inside a track is fatal.
	ChannelPolicy ChannelPolicy
}

// Decoder turns SMF bytes into a Song. A Decoder has no mutable state and may
// be shared between goroutines.
type Decoder struct {
	opts Options
	log  *slog.Logger
}

// NewDecoder creates a decoder with the given options.
func NewDecoder(opts Options) *Decoder {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Decoder{opts: opts, log: log}
}

// Unmarshal decodes data with default options: strict channels, no logging.
func Unmarshal(data []byte) (*Song, error) {
	return NewDecoder(Options{}).Unmarshal(data)
}

// Unmarshal decodes a complete format 1 file. No partial song is returned on
// error.
func (d *Decoder) Unmarshal(data []byte) (*Song, error) {
	c := newCursor(data)

	ok, err := matchMagic(c, headerMagic)
	if err != nil {
		return nil, wrapError(ErrBadMagic, -1, 0, err, "header")
	}
	if !ok {
		return nil, newError(ErrBadMagic, -1, 0, "file does not start with %s", headerMagic)
	}
	hlen, err := readU32BE(c)
	if err != nil {
		return nil, wrapError(ErrTruncated, -1, c.offset(), err, "header length")
	}
	if hlen != headerLength {
		return nil, newError(ErrBadHeaderLength, -1, 4, "got %d, want %d", hlen, headerLength)
	}
	format, err := readU16BE(c)
	if err != nil {
		return nil, wrapError(ErrTruncated, -1, c.offset(), err, "format")
	}
	if format != formatOne {
		return nil, newError(ErrUnsupportedFormat, -1, 8, "format %d", format)
	}
	ntracks, err := readU16BE(c)
	if err != nil {
		return nil, wrapError(ErrTruncated, -1, c.offset(), err, "track count")
	}
	if ntracks == 0 {
		return nil, newError(ErrNoTracks, -1, 10, "")
	}
	division, err := readU16BE(c)
	if err != nil {
		return nil, wrapError(ErrTruncated, -1, c.offset(), err, "division")
	}
	if division&0x8000 != 0 {
		return nil, newError(ErrSMPTEDivision, -1, 12, "division 0x%04X", division)
	}
	if division == 0 {
		return nil, newError(ErrBadDivision, -1, 12, "zero ticks per quarter note")
	}

	song := &Song{Division: int(division), Tracks: make([]*Track, 0, ntracks)}
	classes := make([]TrackClass, 0, ntracks)
	for len(song.Tracks) < int(ntracks) {
		at := c.offset()
		isTrack, err := matchMagic(c, trackMagic)
		if err != nil {
			return nil, wrapError(ErrTruncated, len(song.Tracks), at, err,
				fmt.Sprintf("expected %d tracks, found %d", ntracks, len(song.Tracks)))
		}
		length, err := readU32BE(c)
		if err != nil {
			return nil, wrapError(ErrTruncated, len(song.Tracks), at, err, "chunk length")
		}
		if !isTrack {
			d.log.Warn("skipping unknown chunk", "offset", at, "id", string(data[at:at+4]), "length", length)
			if err := c.skip(int(length)); err != nil {
				return nil, wrapError(ErrTruncated, -1, at, err, "unknown chunk")
			}
			continue
		}
		t, class, err := d.decodeTrack(c, song, len(song.Tracks), int(length))
		if err != nil {
			return nil, err
		}
		song.Tracks = append(song.Tracks, t)
		classes = append(classes, class)
	}
	if n := c.remaining(); n > 0 {
		d.log.Warn("ignoring trailing bytes", "offset", c.offset(), "length", n)
	}
	if err := validateClasses(classes); err != nil {
		return nil, err
	}
	return song, nil
}

// Marshal encodes s as a format 1 file.
func Marshal(s *Song) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 14+64*len(s.Tracks))
	buf = append(buf, headerMagic...)
	buf = appendU32BE(buf, headerLength)
	buf = appendU16BE(buf, formatOne)
	buf = appendU16BE(buf, uint16(len(s.Tracks)))
	buf = appendU16BE(buf, uint16(s.Division))

	var err error
	for i, t := range s.Tracks {
		buf, err = encodeTrack(buf, s, i, t)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

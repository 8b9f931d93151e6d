package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/james-see/miid/pkg/smf"
)

// ErrRoundTrip is returned when a re-encoded song does not decode to itself.
var ErrRoundTrip = errors.New("round trip mismatch")

// RoundTripResult describes a decode, encode, decode cycle.
type RoundTripResult struct {
	Song       *smf.Song
	Encoded    []byte
	InputSize  int
	OutputSize int
	// Identical is true when the re-encoded bytes equal the input.
	Identical bool
}

// RoundTrip decodes data, re-encodes it and checks that the result decodes
// to the same song, that encoding again is byte-stable, and that gomidi
// agrees with the decoded events.
func (c *Converter) RoundTrip(data []byte) (*RoundTripResult, error) {
	song, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	encoded, err := smf.Marshal(song)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode: %w", err)
	}
	again, err := c.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: re-encoded file does not decode: %w", ErrRoundTrip, err)
	}
	if !reflect.DeepEqual(song, again) {
		return nil, fmt.Errorf("%w: re-encoded file decodes to a different song", ErrRoundTrip)
	}
	stable, err := smf.Marshal(again)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode: %w", err)
	}
	if !bytes.Equal(stable, encoded) {
		return nil, fmt.Errorf("%w: second encoding differs from the first", ErrRoundTrip)
	}
	if err := CrossCheck(encoded, song); err != nil {
		return nil, err
	}

	return &RoundTripResult{
		Song:       song,
		Encoded:    encoded,
		InputSize:  len(data),
		OutputSize: len(encoded),
		Identical:  bytes.Equal(data, encoded),
	}, nil
}

// WriteDebugDump re-encodes song to path so a freshly loaded file can be
// compared against what the encoder produces.
func WriteDebugDump(song *smf.Song, path string) error {
	data, err := smf.Marshal(song)
	if err != nil {
		return fmt.Errorf("failed to encode debug dump: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write debug dump: %w", err)
	}
	return nil
}

// Package converter moves songs between Standard MIDI Files and YAML or JSON
// song documents, and checks round-trip fidelity.
package converter

import (
	"github.com/james-see/miid/pkg/smf"
)

// Document is the text form of a song.
type Document struct {
	Text      string     `yaml:"text,omitempty" json:"text,omitempty"`
	Division  int        `yaml:"division" json:"division"`
	EndOfSong int        `yaml:"end_of_song" json:"end_of_song"`
	Tracks    []TrackDoc `yaml:"tracks" json:"tracks"`
}

// TrackDoc is one track of a Document.
type TrackDoc struct {
	Name       string     `yaml:"name,omitempty" json:"name,omitempty"`
	Channel    *int       `yaml:"channel,omitempty" json:"channel,omitempty"` // nil when undeclared
	Percussive bool       `yaml:"percussive,omitempty" json:"percussive,omitempty"`
	Events     []EventDoc `yaml:"events,omitempty" json:"events,omitempty"`
}

// EventDoc is one event of a TrackDoc. Only the fields that belong to Kind
// are set.
type EventDoc struct {
	Tick        int    `yaml:"tick" json:"tick"`
	Kind        string `yaml:"kind" json:"kind"`
	Note        uint8  `yaml:"note,omitempty" json:"note,omitempty"`
	Velocity    uint8  `yaml:"velocity,omitempty" json:"velocity,omitempty"`
	Controller  uint8  `yaml:"controller,omitempty" json:"controller,omitempty"`
	Value       uint8  `yaml:"value,omitempty" json:"value,omitempty"`
	Program     uint8  `yaml:"program,omitempty" json:"program,omitempty"`
	Bend        uint16 `yaml:"bend,omitempty" json:"bend,omitempty"`
	Tempo       uint32 `yaml:"tempo,omitempty" json:"tempo,omitempty"` // microseconds per quarter note
	Numerator   uint8  `yaml:"numerator,omitempty" json:"numerator,omitempty"`
	Denominator uint8  `yaml:"denominator,omitempty" json:"denominator,omitempty"`
}

// Converter handles format conversions
type Converter struct {
	decoder *smf.Decoder
}

// New creates a new Converter that decodes with opts
func New(opts smf.Options) *Converter {
	return &Converter{decoder: smf.NewDecoder(opts)}
}

// Decode parses SMF bytes into a song
func (c *Converter) Decode(data []byte) (*smf.Song, error) {
	return c.decoder.Unmarshal(data)
}

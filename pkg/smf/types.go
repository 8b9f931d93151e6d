// Package smf implements a Standard MIDI File (format 1) codec.
//
// Decoding produces a Song whose first track is the time track (tempo and time
// signature only) and whose remaining tracks are single-channel voice tracks.
// Encoding writes the same layout back out with running status minimised.
package smf

import "fmt"

// Wire constants
const (
	headerMagic  = "MThd"
	trackMagic   = "MTrk"
	headerLength = 6
	formatOne    = 1

	statusSysex = 0xF0
	sysexEnd    = 0xF7
	statusMeta  = 0xFF
)

// Meta event types
const (
	MetaText           = 0x01
	MetaTrackName      = 0x03
	MetaInstrumentName = 0x04
	MetaMarker         = 0x06
	MetaMIDIChannel    = 0x20
	MetaEndOfTrack     = 0x2F
	MetaSetTempo       = 0x51
	MetaSMPTEOffset    = 0x54
	MetaTimeSignature  = 0x58
	MetaKeySignature   = 0x59
	MetaCustom         = 0x7F
)

// Controllers retained by the decoder; every other controller is dropped.
const (
	CCModulationWheel     = 1
	CCVolume              = 7
	CCPan                 = 10
	CCDamperPedal         = 64
	CCEffect1Depth        = 91
	CCResetAllControllers = 121
)

// Time signature trailer bytes written on encode. The original file's values
// are not kept.
const (
	TimeSigClocksPerClick   = 0x24
	TimeSigThirtySecondsPer = 0x08
)

const (
	// NoChannel marks a track that has not declared a MIDI channel.
	NoChannel = -1

	// MaxDivision is the largest ticks-per-quarter-note value. Anything above
	// it has the SMPTE bit set.
	MaxDivision = 0x7FFF

	// DefaultDivision is used for new songs.
	DefaultDivision = 480
)

// Kind identifies the type of a retained event.
type Kind uint8

// Channel-voice kinds share their status high nibble. Meta kinds are stored
// with their meta type byte, which is always below 0x80.
const (
	KindNoteOff       Kind = 0x80
	KindNoteOn        Kind = 0x90
	KindControlChange Kind = 0xB0
	KindProgramChange Kind = 0xC0
	KindPitchBend     Kind = 0xE0
	KindSetTempo      Kind = MetaSetTempo
	KindTimeSignature Kind = MetaTimeSignature
	KindEndOfTrack    Kind = MetaEndOfTrack
)

var kindNames = map[Kind]string{
	KindNoteOff:       "note_off",
	KindNoteOn:        "note_on",
	KindControlChange: "control_change",
	KindProgramChange: "program_change",
	KindPitchBend:     "pitch_bend",
	KindSetTempo:      "set_tempo",
	KindTimeSignature: "time_signature",
	KindEndOfTrack:    "end_of_track",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(0x%02X)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// IsChannelVoice reports whether the kind is a channel-voice message.
func (k Kind) IsChannelVoice() bool {
	return k >= 0x80
}

// IsMeta reports whether the kind is a retained meta event. End-Of-Track is
// excluded since every track has one.
func (k Kind) IsMeta() bool {
	return k == KindSetTempo || k == KindTimeSignature
}

// DataLen returns the number of meaningful bytes in Event.Data for the kind.
func (k Kind) DataLen() int {
	switch k {
	case KindNoteOff, KindNoteOn, KindControlChange, KindPitchBend:
		return 2
	case KindProgramChange:
		return 1
	case KindSetTempo:
		return 3
	case KindTimeSignature:
		return 2
	default:
		return 0
	}
}

// Event is one timed MIDI or meta event at an absolute tick.
type Event struct {
	Tick int
	Kind Kind
	// Data holds the payload:
	//   NoteOn/NoteOff: note, velocity
	//   ControlChange:  controller, value
	//   ProgramChange:  program
	//   PitchBend:      lsb, msb
	//   SetTempo:       24-bit microseconds per quarter note, big-endian
	//   TimeSignature:  numerator, denominator as a power of two
	Data [3]byte
}

// NoteOn returns a Note-On event.
func NoteOn(tick int, note, velocity uint8) Event {
	return Event{Tick: tick, Kind: KindNoteOn, Data: [3]byte{note, velocity}}
}

// NoteOff returns a Note-Off event.
func NoteOff(tick int, note, velocity uint8) Event {
	return Event{Tick: tick, Kind: KindNoteOff, Data: [3]byte{note, velocity}}
}

// ControlChange returns a Control-Change event.
func ControlChange(tick int, controller, value uint8) Event {
	return Event{Tick: tick, Kind: KindControlChange, Data: [3]byte{controller, value}}
}

// ProgramChange returns a Program-Change event.
func ProgramChange(tick int, program uint8) Event {
	return Event{Tick: tick, Kind: KindProgramChange, Data: [3]byte{program}}
}

// PitchBend returns a Pitch-Bend event for a 14-bit value.
func PitchBend(tick int, value uint16) Event {
	return Event{Tick: tick, Kind: KindPitchBend, Data: [3]byte{byte(value & 0x7F), byte(value>>7) & 0x7F}}
}

// Tempo returns a Set-Tempo event.
func Tempo(tick int, microsPerQuarter uint32) Event {
	return Event{Tick: tick, Kind: KindSetTempo, Data: [3]byte{
		byte(microsPerQuarter >> 16),
		byte(microsPerQuarter >> 8),
		byte(microsPerQuarter),
	}}
}

// TimeSignature returns a Time-Signature event. denominatorPow is the power of
// two, e.g. 2 for a quarter note.
func TimeSignature(tick int, numerator, denominatorPow uint8) Event {
	return Event{Tick: tick, Kind: KindTimeSignature, Data: [3]byte{numerator, denominatorPow}}
}

// MicrosPerQuarter decodes the payload of a Set-Tempo event.
func (e Event) MicrosPerQuarter() uint32 {
	return uint32(e.Data[0])<<16 | uint32(e.Data[1])<<8 | uint32(e.Data[2])
}

// BPM converts a Set-Tempo event to beats per minute.
func (e Event) BPM() float64 {
	us := e.MicrosPerQuarter()
	if us == 0 {
		return 0
	}
	return 60000000.0 / float64(us)
}

// PitchBendValue decodes the 14-bit value of a Pitch-Bend event.
func (e Event) PitchBendValue() uint16 {
	return uint16(e.Data[0]) | uint16(e.Data[1])<<7
}

func (e Event) String() string {
	switch e.Kind {
	case KindSetTempo:
		return fmt.Sprintf("%d %s %d", e.Tick, e.Kind, e.MicrosPerQuarter())
	case KindTimeSignature:
		return fmt.Sprintf("%d %s %d/%d", e.Tick, e.Kind, e.Data[0], 1<<e.Data[1])
	}
	return fmt.Sprintf("%d %s % X", e.Tick, e.Kind, e.Data[:e.Kind.DataLen()])
}

// Track is one MTrk chunk.
type Track struct {
	Channel    int // 0-15, or NoChannel
	Name       string
	Events     []Event // ascending by Tick
	Percussive bool    // Note-Ons but no Note-Offs; rendering hint only
}

// NewTrack returns an empty track without a channel.
func NewTrack(name string) *Track {
	return &Track{Channel: NoChannel, Name: name}
}

// Song is a decoded format 1 file. Tracks[0] is the time track.
type Song struct {
	Text          string
	Division      int
	EndOfSongTick int
	Tracks        []*Track
}

// New returns a blank song with only a time track.
func New() *Song {
	return &Song{
		Division: DefaultDivision,
		Tracks:   []*Track{NewTrack("")},
	}
}

// TimeTrack returns track 0.
func (s *Song) TimeTrack() *Track {
	if len(s.Tracks) == 0 {
		return nil
	}
	return s.Tracks[0]
}

// VoiceTracks returns tracks 1..N.
func (s *Song) VoiceTracks() []*Track {
	if len(s.Tracks) <= 1 {
		return nil
	}
	return s.Tracks[1:]
}

package converter

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	gosmf "gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/miid/pkg/smf"
)

// ErrCrossCheck is returned when gomidi reads a file differently from us.
var ErrCrossCheck = errors.New("cross-check failed")

// wireEvent is the subset of an event both readers must agree on. Controllers
// and time signatures are left out since the codec filters or rewrites them.
type wireEvent struct {
	tick   int64
	status byte // channel-voice high nibble, or the meta type
	a, b   uint32
}

func (e wireEvent) String() string {
	return fmt.Sprintf("tick %d status 0x%02X [%d %d]", e.tick, e.status, e.a, e.b)
}

// CrossCheck reads data with gomidi and compares its notes, programs, pitch
// bends and tempos against song, track by track.
func CrossCheck(data []byte, song *smf.Song) error {
	s, err := gosmf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: gomidi could not parse the file: %v", ErrCrossCheck, err)
	}

	if mt, ok := s.TimeFormat.(gosmf.MetricTicks); !ok || int(mt.Resolution()) != song.Division {
		return fmt.Errorf("%w: time format %v, want %d ticks per quarter", ErrCrossCheck, s.TimeFormat, song.Division)
	}
	if len(s.Tracks) != len(song.Tracks) {
		return fmt.Errorf("%w: gomidi found %d tracks, want %d", ErrCrossCheck, len(s.Tracks), len(song.Tracks))
	}

	for i, track := range s.Tracks {
		theirs := gomidiEvents(track)
		ours := songEvents(song.Tracks[i])
		if !slices.Equal(theirs, ours) {
			return fmt.Errorf("%w: track %d: %s", ErrCrossCheck, i, firstDifference(theirs, ours))
		}
	}
	return nil
}

func gomidiEvents(track gosmf.Track) []wireEvent {
	var events []wireEvent
	var currentTick int64
	for _, ev := range track {
		currentTick += int64(ev.Delta)
		msg := ev.Message

		// Tempo meta message (FF 51 03 ...)
		if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
			us := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
			events = append(events, wireEvent{tick: currentTick, status: smf.MetaSetTempo, a: us})
			continue
		}
		if len(msg) < 2 || msg[0] < 0x80 || msg[0] >= 0xF0 {
			continue
		}

		status := msg[0] & 0xF0
		switch status {
		case 0x80, 0x90:
			if len(msg) < 3 {
				continue
			}
			// Note On with velocity 0 is a Note Off
			if status == 0x90 && msg[2] == 0 {
				status = 0x80
			}
			events = append(events, wireEvent{tick: currentTick, status: status, a: uint32(msg[1]), b: uint32(msg[2])})
		case 0xC0:
			events = append(events, wireEvent{tick: currentTick, status: status, a: uint32(msg[1])})
		case 0xE0:
			if len(msg) < 3 {
				continue
			}
			events = append(events, wireEvent{tick: currentTick, status: status, a: uint32(msg[1]) | uint32(msg[2])<<7})
		}
	}
	return events
}

func songEvents(t *smf.Track) []wireEvent {
	var events []wireEvent
	for e := range t.All() {
		we := wireEvent{tick: int64(e.Tick), status: byte(e.Kind)}
		switch e.Kind {
		case smf.KindNoteOn, smf.KindNoteOff:
			we.a, we.b = uint32(e.Data[0]), uint32(e.Data[1])
		case smf.KindProgramChange:
			we.a = uint32(e.Data[0])
		case smf.KindPitchBend:
			we.a = uint32(e.PitchBendValue())
		case smf.KindSetTempo:
			we.a = e.MicrosPerQuarter()
		default:
			continue
		}
		events = append(events, we)
	}
	return events
}

func firstDifference(theirs, ours []wireEvent) string {
	for i := range min(len(theirs), len(ours)) {
		if theirs[i] != ours[i] {
			return fmt.Sprintf("event %d: gomidi read %s, we read %s", i, theirs[i], ours[i])
		}
	}
	return fmt.Sprintf("gomidi read %d events, we read %d", len(theirs), len(ours))
}

// ExportGoMIDI writes song through gomidi's SMF writer instead of our
// encoder. The output decodes to the same song.
func ExportGoMIDI(song *smf.Song) ([]byte, error) {
	if err := song.Validate(); err != nil {
		return nil, err
	}

	s := gosmf.New()
	s.TimeFormat = gosmf.MetricTicks(song.Division)

	for i, t := range song.Tracks {
		var track gosmf.Track
		if i == 0 && song.Text != "" {
			track.Add(0, gosmf.MetaText(song.Text))
		}
		if t.Name != "" {
			track.Add(0, gosmf.MetaTrackSequenceName(t.Name))
		}
		ch := uint8(0)
		if t.Channel != smf.NoChannel {
			ch = uint8(t.Channel)
			track.Add(0, gosmf.MetaChannel(ch))
		}

		var currentTick int
		for e := range t.All() {
			if e.Kind == smf.KindEndOfTrack {
				continue
			}
			if e.Tick < currentTick {
				return nil, fmt.Errorf("track %d: %w", i, smf.ErrOutOfOrder)
			}
			delta := uint32(e.Tick - currentTick)
			currentTick = e.Tick

			switch e.Kind {
			case smf.KindNoteOn:
				track.Add(delta, midi.NoteOn(ch, e.Data[0], e.Data[1]))
			case smf.KindSetTempo:
				// raw bytes keep the exact microseconds
				track.Add(delta, gosmf.Message([]byte{0xFF, smf.MetaSetTempo, 0x03, e.Data[0], e.Data[1], e.Data[2]}))
			case smf.KindTimeSignature:
				track.Add(delta, gosmf.Message([]byte{0xFF, smf.MetaTimeSignature, 0x04,
					e.Data[0], e.Data[1], smf.TimeSigClocksPerClick, smf.TimeSigThirtySecondsPer}))
			default:
				msg := append([]byte{byte(e.Kind) | ch}, e.Data[:e.Kind.DataLen()]...)
				track.Add(delta, msg)
			}
		}
		if song.EndOfSongTick < currentTick {
			return nil, fmt.Errorf("track %d: %w", i, smf.ErrOutOfOrder)
		}
		track.Close(uint32(song.EndOfSongTick - currentTick))

		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("failed to add track: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

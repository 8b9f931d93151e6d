package converter

import (
	"fmt"
	"math/bits"

	"github.com/james-see/miid/pkg/smf"
)

// FromSong converts a decoded song to a Document.
func FromSong(s *smf.Song) *Document {
	doc := &Document{
		Text:      s.Text,
		Division:  s.Division,
		EndOfSong: s.EndOfSongTick,
		Tracks:    make([]TrackDoc, 0, len(s.Tracks)),
	}
	for _, t := range s.Tracks {
		td := TrackDoc{Name: t.Name, Percussive: t.Percussive}
		if t.Channel != smf.NoChannel {
			ch := t.Channel
			td.Channel = &ch
		}
		for e := range t.All() {
			td.Events = append(td.Events, eventDoc(e))
		}
		doc.Tracks = append(doc.Tracks, td)
	}
	return doc
}

func eventDoc(e smf.Event) EventDoc {
	ed := EventDoc{Tick: e.Tick, Kind: e.Kind.String()}
	switch e.Kind {
	case smf.KindNoteOn, smf.KindNoteOff:
		ed.Note, ed.Velocity = e.Data[0], e.Data[1]
	case smf.KindControlChange:
		ed.Controller, ed.Value = e.Data[0], e.Data[1]
	case smf.KindProgramChange:
		ed.Program = e.Data[0]
	case smf.KindPitchBend:
		ed.Bend = e.PitchBendValue()
	case smf.KindSetTempo:
		ed.Tempo = e.MicrosPerQuarter()
	case smf.KindTimeSignature:
		ed.Numerator, ed.Denominator = e.Data[0], 1<<e.Data[1]
	}
	return ed
}

// ToSong converts a Document back to a song and validates it for encoding.
// The percussive flag is recomputed from the events.
func (d *Document) ToSong() (*smf.Song, error) {
	s := &smf.Song{
		Text:          d.Text,
		Division:      d.Division,
		EndOfSongTick: d.EndOfSong,
		Tracks:        make([]*smf.Track, 0, len(d.Tracks)),
	}
	for i, td := range d.Tracks {
		t := smf.NewTrack(td.Name)
		if td.Channel != nil {
			if *td.Channel < 0 || *td.Channel > 15 {
				return nil, fmt.Errorf("track %d: channel %d out of range", i, *td.Channel)
			}
			t.Channel = *td.Channel
		}
		for j, ed := range td.Events {
			e, err := ed.event()
			if err != nil {
				return nil, fmt.Errorf("track %d event %d: %w", i, j, err)
			}
			t.Events = append(t.Events, e)
		}
		t.UpdatePercussive()
		s.Tracks = append(s.Tracks, t)
	}
	s.UpdateEndOfSong()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (ed EventDoc) event() (smf.Event, error) {
	kind, err := smf.ParseKind(ed.Kind)
	if err != nil {
		return smf.Event{}, err
	}
	if ed.Tick < 0 {
		return smf.Event{}, fmt.Errorf("negative tick %d", ed.Tick)
	}
	switch kind {
	case smf.KindNoteOn:
		return smf.NoteOn(ed.Tick, ed.Note, ed.Velocity), nil
	case smf.KindNoteOff:
		return smf.NoteOff(ed.Tick, ed.Note, ed.Velocity), nil
	case smf.KindControlChange:
		return smf.ControlChange(ed.Tick, ed.Controller, ed.Value), nil
	case smf.KindProgramChange:
		return smf.ProgramChange(ed.Tick, ed.Program), nil
	case smf.KindPitchBend:
		if ed.Bend >= 1<<14 {
			return smf.Event{}, fmt.Errorf("pitch bend %d exceeds 14 bits", ed.Bend)
		}
		return smf.PitchBend(ed.Tick, ed.Bend), nil
	case smf.KindSetTempo:
		if ed.Tempo == 0 || ed.Tempo > 0xFFFFFF {
			return smf.Event{}, fmt.Errorf("tempo %d out of range", ed.Tempo)
		}
		return smf.Tempo(ed.Tick, ed.Tempo), nil
	case smf.KindTimeSignature:
		if ed.Denominator == 0 || bits.OnesCount8(ed.Denominator) != 1 {
			return smf.Event{}, fmt.Errorf("time signature denominator %d is not a power of two", ed.Denominator)
		}
		return smf.TimeSignature(ed.Tick, ed.Numerator, uint8(bits.TrailingZeros8(ed.Denominator))), nil
	default:
		return smf.Event{}, fmt.Errorf("event kind %s cannot appear in a document", kind)
	}
}

package smf

import (
	"iter"
	"sort"
)

// All returns an iterator over the track's events in tick order. The iterator
// reads the slice on each call, so it can be ranged over more than once.
func (t *Track) All() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, e := range t.Events {
			if !yield(e) {
				return
			}
		}
	}
}

// EventsIn returns an iterator over events with from <= Tick < to.
func (t *Track) EventsIn(from, to int) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		i := sort.Search(len(t.Events), func(i int) bool { return t.Events[i].Tick >= from })
		for ; i < len(t.Events) && t.Events[i].Tick < to; i++ {
			if !yield(t.Events[i]) {
				return
			}
		}
	}
}

// NoteSpan is a sounding note, from its Note-On to the tick it stops.
type NoteSpan struct {
	Note     uint8
	Velocity uint8
	Start    int
	End      int
}

// Notes pairs every Note-On with the next Note-On or Note-Off of the same key.
// A note that is never stopped lasts until end. Percussive tracks yield
// zero-length spans.
func (t *Track) Notes(end int) iter.Seq[NoteSpan] {
	return func(yield func(NoteSpan) bool) {
		var spans []NoteSpan
		var open [128]int // index into spans of the sounding note per key, or -1
		for k := range open {
			open[k] = -1
		}
		for _, e := range t.Events {
			if e.Kind != KindNoteOn && e.Kind != KindNoteOff {
				continue
			}
			key := e.Data[0] & 0x7F
			if i := open[key]; i >= 0 {
				spans[i].End = max(e.Tick, spans[i].Start)
				open[key] = -1
			}
			if e.Kind != KindNoteOn {
				continue
			}
			span := NoteSpan{Note: e.Data[0], Velocity: e.Data[1], Start: e.Tick, End: max(end, e.Tick)}
			if t.Percussive {
				span.End = e.Tick
			} else {
				open[key] = len(spans)
			}
			spans = append(spans, span)
		}
		for _, span := range spans {
			if !yield(span) {
				return
			}
		}
	}
}

// Tempos returns the tempo changes on the time track.
func (s *Song) Tempos() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		t := s.TimeTrack()
		if t == nil {
			return
		}
		for _, e := range t.Events {
			if e.Kind == KindSetTempo && !yield(e) {
				return
			}
		}
	}
}

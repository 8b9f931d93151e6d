package smf

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// SetDivision sets the ticks per quarter note, clamped to [1, MaxDivision].
func (s *Song) SetDivision(division int) {
	s.Division = min(max(division, 1), MaxDivision)
}

// SetChannel sets the track channel, clamped to [0, 15].
func (t *Track) SetChannel(channel int) {
	t.Channel = min(max(channel, 0), 15)
}

// InsertTrack inserts t at index i and extends EndOfSongTick to cover its
// events. The time track cannot be displaced, so i must be in
// [1, len(s.Tracks)].
func (s *Song) InsertTrack(i int, t *Track) error {
	if i < 1 || i > len(s.Tracks) {
		return fmt.Errorf("insert track at %d: index out of range [1, %d]", i, len(s.Tracks))
	}
	s.Tracks = slices.Insert(s.Tracks, i, t)
	s.UpdateEndOfSong()
	return nil
}

// AddTrack appends a new voice track on channel and returns it.
func (s *Song) AddTrack(name string, channel int) *Track {
	t := NewTrack(name)
	t.SetChannel(channel)
	s.Tracks = append(s.Tracks, t)
	return t
}

// DeleteTrack removes voice track i.
func (s *Song) DeleteTrack(i int) error {
	if i < 1 || i >= len(s.Tracks) {
		return fmt.Errorf("delete track %d: index out of range [1, %d)", i, len(s.Tracks))
	}
	s.Tracks = slices.Delete(s.Tracks, i, i+1)
	return nil
}

// MoveTrack swaps voice tracks i and j.
func (s *Song) MoveTrack(i, j int) error {
	for _, k := range []int{i, j} {
		if k < 1 || k >= len(s.Tracks) {
			return fmt.Errorf("move track %d to %d: index out of range [1, %d)", i, j, len(s.Tracks))
		}
	}
	s.Tracks[i], s.Tracks[j] = s.Tracks[j], s.Tracks[i]
	return nil
}

// Insert adds e after any events already at the same tick and returns its
// index. Call Song.UpdateEndOfSong before encoding if e may lie past the end.
func (t *Track) Insert(e Event) int {
	i := sort.Search(len(t.Events), func(i int) bool { return t.Events[i].Tick > e.Tick })
	t.Events = slices.Insert(t.Events, i, e)
	return i
}

// Remove deletes event i.
func (t *Track) Remove(i int) error {
	if i < 0 || i >= len(t.Events) {
		return fmt.Errorf("remove event %d: index out of range [0, %d)", i, len(t.Events))
	}
	t.Events = slices.Delete(t.Events, i, i+1)
	return nil
}

// Move changes the tick of event i and keeps the events sorted. It returns
// the event's new index. Call Song.UpdateEndOfSong before encoding if the new
// tick may lie past the end.
func (t *Track) Move(i, tick int) (int, error) {
	if i < 0 || i >= len(t.Events) {
		return -1, fmt.Errorf("move event %d: index out of range [0, %d)", i, len(t.Events))
	}
	if tick < 0 {
		return -1, fmt.Errorf("move event %d: negative tick %d", i, tick)
	}
	e := t.Events[i]
	t.Events = slices.Delete(t.Events, i, i+1)
	e.Tick = tick
	return t.Insert(e), nil
}

// Sort restores tick order. Events at the same tick keep their relative order.
func (t *Track) Sort() {
	slices.SortStableFunc(t.Events, func(a, b Event) int { return a.Tick - b.Tick })
}

// UpdatePercussive recomputes the Percussive flag.
func (t *Track) UpdatePercussive() {
	var on, off int
	for _, e := range t.Events {
		switch e.Kind {
		case KindNoteOn:
			on++
		case KindNoteOff:
			off++
		}
	}
	t.Percussive = on > 0 && off == 0
}

// SetTempo sets the tempo in beats per minute at tick, replacing a tempo
// already there. EndOfSongTick is extended to cover it.
func (s *Song) SetTempo(tick int, bpm float64) error {
	if bpm <= 0 {
		return fmt.Errorf("set tempo: bpm %v must be positive", bpm)
	}
	us := math.Round(60000000 / bpm)
	if us < 1 || us > 0xFFFFFF {
		return fmt.Errorf("set tempo: bpm %v out of range", bpm)
	}
	t := s.TimeTrack()
	if t == nil {
		return fmt.Errorf("set tempo: song has no time track")
	}
	ev := Tempo(tick, uint32(us))
	i := slices.IndexFunc(t.Events, func(e Event) bool { return e.Kind == KindSetTempo && e.Tick == tick })
	if i >= 0 {
		t.Events[i] = ev
	} else {
		t.Insert(ev)
	}
	s.UpdateEndOfSong()
	return nil
}

// UpdateEndOfSong extends EndOfSongTick to cover the last event of every
// track. It never moves the end earlier.
func (s *Song) UpdateEndOfSong() {
	for _, t := range s.Tracks {
		if t == nil {
			continue
		}
		for _, e := range t.Events {
			s.EndOfSongTick = max(s.EndOfSongTick, e.Tick)
		}
	}
}

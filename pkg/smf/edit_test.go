package smf

import (
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	s := New()
	if s.Division != 480 {
		t.Errorf("Division = %d, want 480", s.Division)
	}
	if len(s.Tracks) != 1 || s.TimeTrack().Channel != NoChannel {
		t.Errorf("Tracks = %+v, want one time track without channel", s.Tracks)
	}
	if s.VoiceTracks() != nil {
		t.Errorf("VoiceTracks() = %v, want nil", s.VoiceTracks())
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestSetDivision(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1},
		{-5, 1},
		{96, 96},
		{0x7FFF, 0x7FFF},
		{0x8000, 0x7FFF},
	}
	for _, tt := range tests {
		s := New()
		s.SetDivision(tt.in)
		if s.Division != tt.want {
			t.Errorf("SetDivision(%d) = %d, want %d", tt.in, s.Division, tt.want)
		}
	}
}

func TestSetChannel(t *testing.T) {
	tr := NewTrack("")
	for in, want := range map[int]int{-1: 0, 0: 0, 9: 9, 15: 15, 16: 15} {
		tr.SetChannel(in)
		if tr.Channel != want {
			t.Errorf("SetChannel(%d) = %d, want %d", in, tr.Channel, want)
		}
	}
}

func trackNames(s *Song) []string {
	var names []string
	for _, t := range s.Tracks {
		names = append(names, t.Name)
	}
	return names
}

func TestTrackEditing(t *testing.T) {
	s := New()
	s.AddTrack("a", 0)
	s.AddTrack("b", 1)

	if err := s.InsertTrack(1, NewTrack("c")); err != nil {
		t.Fatalf("InsertTrack() error = %v", err)
	}
	if got, want := trackNames(s), []string{"", "c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("after InsertTrack = %q, want %q", got, want)
	}
	if err := s.InsertTrack(0, NewTrack("x")); err == nil {
		t.Error("InsertTrack(0) succeeded, want error")
	}

	if err := s.MoveTrack(1, 3); err != nil {
		t.Fatalf("MoveTrack() error = %v", err)
	}
	if got, want := trackNames(s), []string{"", "b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("after MoveTrack = %q, want %q", got, want)
	}
	if err := s.MoveTrack(0, 1); err == nil {
		t.Error("MoveTrack(0, 1) succeeded, want error")
	}

	if err := s.DeleteTrack(2); err != nil {
		t.Fatalf("DeleteTrack() error = %v", err)
	}
	if got, want := trackNames(s), []string{"", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("after DeleteTrack = %q, want %q", got, want)
	}
	if err := s.DeleteTrack(0); err == nil {
		t.Error("DeleteTrack(0) succeeded, want error")
	}
	if err := s.DeleteTrack(3); err == nil {
		t.Error("DeleteTrack(3) succeeded, want error")
	}
}

func TestEventEditing(t *testing.T) {
	tr := NewTrack("")
	tr.Insert(NoteOn(10, 60, 100))
	tr.Insert(NoteOn(0, 62, 100))
	if i := tr.Insert(NoteOff(10, 60, 0)); i != 2 {
		t.Errorf("Insert() at existing tick = %d, want 2", i)
	}

	i, err := tr.Move(0, 20)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if i != 2 {
		t.Errorf("Move() = %d, want 2", i)
	}
	want := []Event{NoteOn(10, 60, 100), NoteOff(10, 60, 0), NoteOn(20, 62, 100)}
	if !reflect.DeepEqual(tr.Events, want) {
		t.Errorf("Events = %v, want %v", tr.Events, want)
	}

	if err := tr.Remove(1); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(tr.Events) != 2 {
		t.Errorf("len(Events) = %d, want 2", len(tr.Events))
	}
	if err := tr.Remove(5); err == nil {
		t.Error("Remove(5) succeeded, want error")
	}
	if _, err := tr.Move(0, -1); err == nil {
		t.Error("Move to negative tick succeeded, want error")
	}

	tr.Events = []Event{NoteOn(5, 1, 1), NoteOn(0, 2, 1), NoteOn(5, 3, 1)}
	tr.Sort()
	want = []Event{NoteOn(0, 2, 1), NoteOn(5, 1, 1), NoteOn(5, 3, 1)}
	if !reflect.DeepEqual(tr.Events, want) {
		t.Errorf("Sort() = %v, want %v", tr.Events, want)
	}
}

func TestSetTempo(t *testing.T) {
	s := New()
	if err := s.SetTempo(0, 120); err != nil {
		t.Fatalf("SetTempo() error = %v", err)
	}
	if err := s.SetTempo(960, 90); err != nil {
		t.Fatalf("SetTempo() error = %v", err)
	}
	if err := s.SetTempo(0, 60); err != nil {
		t.Fatalf("SetTempo() error = %v", err)
	}

	want := []Event{Tempo(0, 1000000), Tempo(960, 666667)}
	if got := s.TimeTrack().Events; !reflect.DeepEqual(got, want) {
		t.Errorf("time track = %v, want %v", got, want)
	}
	var ticks []int
	for e := range s.Tempos() {
		ticks = append(ticks, e.Tick)
	}
	if !reflect.DeepEqual(ticks, []int{0, 960}) {
		t.Errorf("Tempos() ticks = %v, want [0 960]", ticks)
	}

	if s.EndOfSongTick != 960 {
		t.Errorf("EndOfSongTick = %d, want 960", s.EndOfSongTick)
	}

	for _, bpm := range []float64{0, -1, 1} {
		if err := s.SetTempo(0, bpm); err == nil {
			t.Errorf("SetTempo(%v) succeeded, want error", bpm)
		}
	}
}

func TestSetTempoThenMarshal(t *testing.T) {
	s := New()
	if err := s.SetTempo(960, 90); err != nil {
		t.Fatalf("SetTempo() error = %v", err)
	}
	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.EndOfSongTick != 960 {
		t.Errorf("EndOfSongTick = %d, want 960", got.EndOfSongTick)
	}
}

func TestInsertTrackExtendsEnd(t *testing.T) {
	s := New()
	tr := NewTrack("late")
	tr.SetChannel(2)
	tr.Events = []Event{NoteOn(0, 60, 100), NoteOff(1200, 60, 0)}
	if err := s.InsertTrack(1, tr); err != nil {
		t.Fatalf("InsertTrack() error = %v", err)
	}
	if s.EndOfSongTick != 1200 {
		t.Errorf("EndOfSongTick = %d, want 1200", s.EndOfSongTick)
	}
	if _, err := Marshal(s); err != nil {
		t.Errorf("Marshal() error = %v", err)
	}
}

func TestUpdateEndOfSong(t *testing.T) {
	s := New()
	tr := s.AddTrack("", 0)
	tr.Events = []Event{NoteOn(100, 60, 1), NoteOff(700, 60, 0)}

	s.UpdateEndOfSong()
	if s.EndOfSongTick != 700 {
		t.Errorf("EndOfSongTick = %d, want 700", s.EndOfSongTick)
	}

	s.EndOfSongTick = 1000
	s.UpdateEndOfSong()
	if s.EndOfSongTick != 1000 {
		t.Errorf("EndOfSongTick = %d, want it to stay 1000", s.EndOfSongTick)
	}
}

func TestUpdatePercussive(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   bool
	}{
		{"empty", nil, false},
		{"note ons only", []Event{NoteOn(0, 36, 1), NoteOn(10, 38, 1)}, true},
		{"paired", []Event{NoteOn(0, 36, 1), NoteOff(10, 36, 0)}, false},
		{"controllers only", []Event{ControlChange(0, CCVolume, 100)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Track{Events: tt.events}
			tr.UpdatePercussive()
			if tr.Percussive != tt.want {
				t.Errorf("Percussive = %v, want %v", tr.Percussive, tt.want)
			}
		})
	}
}

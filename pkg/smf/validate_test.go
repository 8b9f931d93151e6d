package smf

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   TrackClass
	}{
		{"empty", nil, ClassEmpty},
		{"tempo", []Event{Tempo(0, 500000)}, ClassTime},
		{"time signature", []Event{TimeSignature(0, 4, 2)}, ClassTime},
		{"notes", []Event{NoteOn(0, 60, 100), NoteOff(10, 60, 0)}, ClassVoice},
		{"both", []Event{Tempo(0, 500000), ProgramChange(0, 1)}, ClassMixed},
		{"end of track only", []Event{{Kind: KindEndOfTrack}}, ClassEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(&Track{Events: tt.events}); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Song {
		s := New()
		s.AddTrack("Bass", 1).Events = []Event{NoteOn(0, 40, 90)}
		return s
	}

	tests := []struct {
		name   string
		mutate func(*Song)
		want   error
	}{
		{"valid", func(*Song) {}, nil},
		{"no tracks", func(s *Song) { s.Tracks = nil }, ErrInvalidSong},
		{"division zero", func(s *Song) { s.Division = 0 }, ErrInvalidSong},
		{"division SMPTE", func(s *Song) { s.Division = 0x8000 }, ErrInvalidSong},
		{"negative end", func(s *Song) { s.EndOfSongTick = -1 }, ErrInvalidSong},
		{"nil track", func(s *Song) { s.Tracks = append(s.Tracks, nil) }, ErrInvalidSong},
		{"channel 16", func(s *Song) { s.Tracks[1].Channel = 16 }, ErrInvalidSong},
		{"voice without channel", func(s *Song) { s.Tracks[1].Channel = NoChannel }, ErrInvalidSong},
		{"voice on time track", func(s *Song) {
			s.Tracks[0].Channel = 0
			s.Tracks[0].Events = []Event{NoteOn(0, 1, 1)}
		}, ErrMixedOrMisplacedTrack},
		{"tempo on voice track", func(s *Song) { s.Tracks[1].Events = append(s.Tracks[1].Events, Tempo(5, 1)) }, ErrMixedOrMisplacedTrack},
		{"time track after voice", func(s *Song) {
			s.Tracks = append(s.Tracks, &Track{Channel: NoChannel, Events: []Event{Tempo(0, 1)}})
		}, ErrMixedOrMisplacedTrack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := s.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTrackClassString(t *testing.T) {
	if got := ClassMixed.String(); got != "mixed" {
		t.Errorf("ClassMixed.String() = %q, want mixed", got)
	}
	if got := TrackClass(9).String(); got != "TrackClass(9)" {
		t.Errorf("TrackClass(9).String() = %q", got)
	}
}

package converter

import (
	"strings"
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	sum := Summarize(testSong())

	if sum.Title != "Test Song" || sum.Division != 96 || sum.EndOfSongTick != 192 {
		t.Errorf("Summarize() = %+v", sum)
	}
	if sum.Duration != time.Second {
		t.Errorf("Duration = %v, want 1s", sum.Duration)
	}
	if sum.TempoBPM != 120 {
		t.Errorf("TempoBPM = %v, want 120", sum.TempoBPM)
	}
	if len(sum.Tracks) != 3 {
		t.Fatalf("len(Tracks) = %d, want 3", len(sum.Tracks))
	}

	lead := sum.Tracks[1]
	if lead.Channel != "1" || lead.Class != "voice" || lead.Notes != 2 || lead.Range != "C4-G4" {
		t.Errorf("lead = %+v", lead)
	}
	if lead.Instrument != "Lead 1 (square wave)" {
		t.Errorf("lead instrument = %q", lead.Instrument)
	}
	drums := sum.Tracks[2]
	if !drums.Percussive || drums.Channel != "10" {
		t.Errorf("drums = %+v", drums)
	}
	if sum.Tracks[0].Channel != "-" || sum.Tracks[0].Class != "time" {
		t.Errorf("time track = %+v", sum.Tracks[0])
	}
}

func TestReport(t *testing.T) {
	out, err := Report(testSong())
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	for _, want := range []string{"TEST SONG", "96 ticks per quarter note", "120.0 BPM", "Lead", "Drums", "(percussive)", "C2-D2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Report() missing %q:\n%s", want, out)
		}
	}
}

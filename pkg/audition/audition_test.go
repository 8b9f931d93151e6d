package audition

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/james-see/miid/pkg/smf"
)

func TestLength(t *testing.T) {
	song := smf.New()
	song.TimeTrack().Events = []smf.Event{smf.Tempo(0, 500000)}
	tr := song.AddTrack("Piano", 0)
	tr.Events = []smf.Event{smf.NoteOn(0, 60, 100), smf.NoteOff(960, 60, 0)}
	song.UpdateEndOfSong()

	got, err := Length(song)
	if err != nil {
		t.Fatalf("Length() error = %v", err)
	}
	want := song.Duration()
	if diff := got - want; diff < -time.Millisecond || diff > time.Millisecond {
		t.Errorf("Length() = %v, want %v", got, want)
	}
}

func TestLengthInvalidSong(t *testing.T) {
	song := smf.New()
	song.Division = 0
	if _, err := Length(song); !errors.Is(err, smf.ErrInvalidSong) {
		t.Errorf("Length() error = %v, want ErrInvalidSong", err)
	}
}

func TestNewRenderer(t *testing.T) {
	if _, err := NewRenderer(bytes.NewReader([]byte("not a soundfont")), 44100); !errors.Is(err, ErrInvalidSoundFont) {
		t.Errorf("NewRenderer() error = %v, want ErrInvalidSoundFont", err)
	}
	if _, err := NewRenderer(bytes.NewReader(nil), 100); err == nil {
		t.Error("NewRenderer() with 100 Hz succeeded, want error")
	}
	if _, err := LoadRenderer("/nonexistent/gm.sf2", 0); err == nil {
		t.Error("LoadRenderer() of missing file succeeded, want error")
	}
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		d    time.Duration
		rate int
		want int
	}{
		{0, 44100, 0},
		{time.Second, 44100, 44100},
		{500 * time.Millisecond, 48000, 24000},
		{time.Microsecond, 44100, 1},
	}
	for _, tt := range tests {
		if got := frameCount(tt.d, tt.rate); got != tt.want {
			t.Errorf("frameCount(%v, %d) = %d, want %d", tt.d, tt.rate, got, tt.want)
		}
	}
}

func TestInterleave(t *testing.T) {
	dst := make([]int, 6)
	interleave(dst, []float32{0, 1, -2}, []float32{0.5, -1, 2})
	want := []int{0, 16383, 32767, -32767, -32767, 32767}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("interleave() = %v, want %v", dst, want)
			break
		}
	}
}

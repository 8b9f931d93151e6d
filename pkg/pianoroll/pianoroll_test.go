package pianoroll

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/james-see/miid/pkg/smf"
)

func testSong() *smf.Song {
	song := smf.New()
	song.Division = 96
	song.TimeTrack().Events = []smf.Event{smf.Tempo(0, 500000), smf.TimeSignature(0, 3, 2)}
	lead := song.AddTrack("Lead", 0)
	lead.Events = []smf.Event{
		smf.NoteOn(0, 60, 100),
		smf.NoteOff(96, 60, 0),
		smf.NoteOn(96, 67, 40),
		smf.NoteOff(192, 67, 0),
	}
	drums := song.AddTrack("Drums", 9)
	drums.Events = []smf.Event{smf.NoteOn(0, 36, 127), smf.NoteOn(96, 38, 127)}
	drums.UpdatePercussive()
	song.UpdateEndOfSong()
	return song
}

func TestDraw(t *testing.T) {
	var buf bytes.Buffer
	if err := Draw(testSong(), &buf, Options{BeatWidth: 10, KeyHeight: 2}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	// notes 36..67 pad to 36..71: 36 keys of 2 pixels
	if got := img.Bounds().Dy(); got != 72 {
		t.Errorf("height = %d, want 72", got)
	}
	// margin 8 + 2 beats * 10 + one spare beat
	if got := img.Bounds().Dx(); got != 38 {
		t.Errorf("width = %d, want 38", got)
	}
}

func TestDrawDefaults(t *testing.T) {
	var buf bytes.Buffer
	if err := Draw(smf.New(), &buf, Options{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if got := img.Bounds().Dy(); got != 12*6 {
		t.Errorf("height = %d, want %d", got, 12*6)
	}
}

func TestDrawErrors(t *testing.T) {
	bad := smf.New()
	bad.Division = 0
	if err := Draw(bad, &bytes.Buffer{}, Options{}); !errors.Is(err, smf.ErrInvalidSong) {
		t.Errorf("Draw() error = %v, want ErrInvalidSong", err)
	}

	long := smf.New()
	long.Division = 1
	long.EndOfSongTick = 1 << 20
	if err := Draw(long, &bytes.Buffer{}, Options{}); !errors.Is(err, ErrTooWide) {
		t.Errorf("Draw() error = %v, want ErrTooWide", err)
	}
}

func TestNoteRange(t *testing.T) {
	lo, hi := noteRange(testSong())
	if lo != 36 || hi != 71 {
		t.Errorf("noteRange() = %d, %d, want 36, 71", lo, hi)
	}
	lo, hi = noteRange(smf.New())
	if lo != 60 || hi != 71 {
		t.Errorf("noteRange(empty) = %d, %d, want 60, 71", lo, hi)
	}
}

func TestIsWhiteNote(t *testing.T) {
	tests := []struct {
		note uint8
		want bool
	}{
		{60, true},
		{61, false},
		{64, true},
		{66, false},
		{71, true},
	}
	for _, tt := range tests {
		if got := isWhiteNote(tt.note); got != tt.want {
			t.Errorf("isWhiteNote(%d) = %v, want %v", tt.note, got, tt.want)
		}
	}
}

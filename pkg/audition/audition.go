// Package audition renders songs offline through a SoundFont synthesizer.
package audition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/james-see/miid/pkg/smf"
)

// DefaultSampleRate is used when a Renderer is created with a zero rate.
const DefaultSampleRate = 44100

// DefaultTail is rendered after the last event so releases can ring out.
const DefaultTail = 2 * time.Second

const blockFrames = 1024

// ErrInvalidSoundFont is returned when the SoundFont cannot be parsed.
var ErrInvalidSoundFont = errors.New("invalid SoundFont")

// Length returns the play time of song as measured by the synthesizer's own
// MIDI reader.
func Length(song *smf.Song) (time.Duration, error) {
	mf, err := midiFile(song)
	if err != nil {
		return 0, err
	}
	return mf.GetLength(), nil
}

func midiFile(song *smf.Song) (*meltysynth.MidiFile, error) {
	data, err := smf.Marshal(song)
	if err != nil {
		return nil, err
	}
	mf, err := meltysynth.NewMidiFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("synthesizer rejected the encoded song: %w", err)
	}
	return mf, nil
}

// Renderer turns songs into 16-bit stereo WAV data.
type Renderer struct {
	soundFont  *meltysynth.SoundFont
	sampleRate int
	// Tail is extra silence rendered after the end of the song.
	Tail time.Duration
}

// NewRenderer loads a SoundFont from r.
func NewRenderer(r io.Reader, sampleRate int) (*Renderer, error) {
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	if sampleRate < 8000 || sampleRate > 192000 {
		return nil, fmt.Errorf("sample rate %d out of range", sampleRate)
	}
	sf, err := meltysynth.NewSoundFont(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSoundFont, err)
	}
	return &Renderer{soundFont: sf, sampleRate: sampleRate, Tail: DefaultTail}, nil
}

// LoadRenderer loads the SoundFont at path.
func LoadRenderer(path string, sampleRate int) (*Renderer, error) {
	sf2Data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SoundFont: %w", err)
	}
	return NewRenderer(bytes.NewReader(sf2Data), sampleRate)
}

// SampleRate returns the output rate in Hz.
func (r *Renderer) SampleRate() int {
	return r.sampleRate
}

// Render plays song from start to end plus the tail and writes it to w as a
// WAV file. It returns the number of frames written.
func (r *Renderer) Render(song *smf.Song, w io.WriteSeeker) (int, error) {
	mf, err := midiFile(song)
	if err != nil {
		return 0, err
	}
	settings := meltysynth.NewSynthesizerSettings(int32(r.sampleRate))
	synth, err := meltysynth.NewSynthesizer(r.soundFont, settings)
	if err != nil {
		return 0, fmt.Errorf("failed to create synthesizer: %w", err)
	}
	sequencer := meltysynth.NewMidiFileSequencer(synth)
	sequencer.Play(mf, false)

	total := frameCount(mf.GetLength()+r.Tail, r.sampleRate)

	enc := wav.NewEncoder(w, r.sampleRate, 16, 2, 1)
	left := make([]float32, blockFrames)
	right := make([]float32, blockFrames)
	buf := &audio.IntBuffer{
		Data:           make([]int, 2*blockFrames),
		Format:         &audio.Format{SampleRate: r.sampleRate, NumChannels: 2},
		SourceBitDepth: 16,
	}

	for done := 0; done < total; {
		n := min(blockFrames, total-done)
		sequencer.Render(left[:n], right[:n])
		buf.Data = buf.Data[:2*n]
		interleave(buf.Data, left[:n], right[:n])
		if err := enc.Write(buf); err != nil {
			return done, fmt.Errorf("failed to write WAV: %w", err)
		}
		done += n
	}
	if err := enc.Close(); err != nil {
		return total, fmt.Errorf("failed to finish WAV: %w", err)
	}
	return total, nil
}

// RenderFile renders song to a WAV file at path.
func (r *Renderer) RenderFile(song *smf.Song, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	frames, err := r.Render(song, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close output file: %w", cerr)
	}
	return frames, err
}

func frameCount(d time.Duration, sampleRate int) int {
	return int(math.Ceil(d.Seconds() * float64(sampleRate)))
}

// interleave converts float samples in [-1, 1] to interleaved 16-bit PCM.
func interleave(dst []int, left, right []float32) {
	for i := range left {
		dst[2*i] = pcm16(left[i])
		dst[2*i+1] = pcm16(right[i])
	}
}

func pcm16(v float32) int {
	v = max(-1, min(1, v))
	return int(v * 32767)
}

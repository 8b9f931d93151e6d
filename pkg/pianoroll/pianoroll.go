// Package pianoroll draws a song as a PNG piano-roll.
package pianoroll

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/james-see/miid/pkg/gm"
	"github.com/james-see/miid/pkg/smf"
)

// MaxWidth bounds the image width in pixels.
const MaxWidth = 32768

// ErrTooWide is returned when the song would not fit in MaxWidth pixels.
var ErrTooWide = errors.New("piano-roll too wide")

// Options sets the image scale.
type Options struct {
	BeatWidth float64 // pixels per quarter note
	KeyHeight float64 // pixels per key
}

// DefaultOptions returns the scale used when Options is zero.
func DefaultOptions() Options {
	return Options{BeatWidth: 48, KeyHeight: 6}
}

// Color is an RGB triple in [0, 1].
type Color struct {
	R, G, B float64
}

var (
	colorBackground = Color{0.17, 0.17, 0.17}
	colorOrange     = Color{1, 0.5, 0}
	colorGreen      = Color{0.2, 1, 0.2}
	colorBlue       = Color{0.5, 0.85, 1}
	colorYellow     = Color{0.8, 0.6, 0.05}
	colorPink       = Color{1, 0.6, 0.7}
)

var trackColors = []Color{colorOrange, colorGreen, colorBlue, colorYellow, colorPink}

func trackColor(i int) Color {
	return trackColors[i%len(trackColors)]
}

func setRGBColor(dc *gg.Context, c Color) {
	dc.SetRGB(c.R, c.G, c.B)
}

// scaled by velocity so quiet notes read darker
func shade(c Color, velocity uint8) Color {
	d := 0.4 + 0.6*float64(velocity)/127
	return Color{c.R * d, c.G * d, c.B * d}
}

// roll holds the geometry shared by the drawing passes.
type roll struct {
	song   *smf.Song
	opts   Options
	lo, hi uint8 // inclusive note range
	margin float64
	w, h   float64
}

func (r *roll) x(tick int) float64 {
	return r.margin + float64(tick)/float64(r.song.Division)*r.opts.BeatWidth
}

func (r *roll) y(note uint8) float64 {
	return float64(r.hi-note) * r.opts.KeyHeight
}

// noteRange returns the lowest and highest notes played, padded to whole
// octaves. A song without notes gets the octave around middle C.
func noteRange(song *smf.Song) (uint8, uint8) {
	lo, hi := 127, 0
	for _, t := range song.VoiceTracks() {
		for span := range t.Notes(song.EndOfSongTick) {
			lo = min(lo, int(span.Note))
			hi = max(hi, int(span.Note))
		}
	}
	if lo > hi {
		return 60, 71
	}
	lo -= lo % 12
	hi += 11 - hi%12
	return uint8(lo), uint8(min(hi, 127))
}

// Draw renders every voice track of song and writes the PNG to w.
func Draw(song *smf.Song, w io.Writer, opts Options) error {
	if err := song.Validate(); err != nil {
		return err
	}
	def := DefaultOptions()
	if opts.BeatWidth <= 0 {
		opts.BeatWidth = def.BeatWidth
	}
	if opts.KeyHeight <= 0 {
		opts.KeyHeight = def.KeyHeight
	}

	r := &roll{song: song, opts: opts, margin: 4 * opts.KeyHeight}
	r.lo, r.hi = noteRange(song)
	beats := float64(song.EndOfSongTick) / float64(song.Division)
	r.w = math.Ceil(r.margin + beats*opts.BeatWidth + opts.BeatWidth)
	r.h = float64(int(r.hi)-int(r.lo)+1) * opts.KeyHeight
	if r.w > MaxWidth {
		return fmt.Errorf("%w: %.0f pixels for %d ticks", ErrTooWide, r.w, song.EndOfSongTick)
	}

	dc := gg.NewContext(int(r.w), int(r.h))
	r.prepare(dc)
	r.drawBeats(dc)
	r.drawNotes(dc)
	if err := r.drawLabels(dc); err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func (r *roll) prepare(dc *gg.Context) {
	setRGBColor(dc, colorBackground)
	dc.DrawRectangle(0, 0, r.w, r.h)
	dc.Fill()

	// black key rows
	for n := int(r.lo); n <= int(r.hi); n++ {
		if isWhiteNote(uint8(n)) {
			continue
		}
		dc.SetRGBA(0, 0, 0, 0.25)
		dc.DrawRectangle(r.margin, r.y(uint8(n)), r.w-r.margin, r.opts.KeyHeight)
		dc.Fill()
	}
}

// drawBeats draws a faint line per beat and a stronger one per bar, following
// the time signatures on the time track.
func (r *roll) drawBeats(dc *gg.Context) {
	beatsPerBar := 4
	sigs := map[int]int{}
	for e := range r.song.TimeTrack().All() {
		if e.Kind == smf.KindTimeSignature && e.Data[0] > 0 {
			sigs[e.Tick] = int(e.Data[0])
		}
	}
	beat := 0
	for tick := 0; tick <= r.song.EndOfSongTick; tick += r.song.Division {
		if n, ok := sigs[tick]; ok {
			beatsPerBar, beat = n, 0
		}
		x := r.x(tick)
		if beat%beatsPerBar == 0 {
			dc.SetRGBA(1, 1, 1, 0.3)
		} else {
			dc.SetRGBA(1, 1, 1, 0.1)
		}
		dc.SetLineWidth(0.5)
		dc.DrawLine(x, 0, x, r.h)
		dc.Stroke()
		beat++
	}
}

func (r *roll) drawNotes(dc *gg.Context) {
	for i, t := range r.song.VoiceTracks() {
		c := trackColor(i)
		for span := range t.Notes(r.song.EndOfSongTick) {
			x := r.x(span.Start)
			width := r.x(span.End) - x
			if width < r.opts.KeyHeight {
				width = r.opts.KeyHeight
			}
			dc.DrawRectangle(x, r.y(span.Note), width, r.opts.KeyHeight)
			setRGBColor(dc, shade(c, span.Velocity))
			dc.FillPreserve()
			dc.SetRGBA(0, 0, 0, 1)
			dc.SetLineWidth(1)
			dc.Stroke()
		}
	}
}

// drawLabels names every C in the left margin.
func (r *roll) drawLabels(dc *gg.Context) error {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse label font: %w", err)
	}
	size := max(r.opts.KeyHeight*1.5, 6)
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: size}))
	dc.SetRGBA(1, 1, 1, 0.8)
	for n := int(r.lo); n <= int(r.hi); n++ {
		if n%12 != 0 {
			continue
		}
		dc.DrawString(gm.NoteName(uint8(n)), 1, r.y(uint8(n))+r.opts.KeyHeight)
	}
	return nil
}

func isWhiteNote(n uint8) bool {
	switch n % 12 {
	case 1, 3, 6, 8, 10:
		return false
	}
	return true
}

package converter

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"

	"github.com/james-see/miid/pkg/gm"
	"github.com/james-see/miid/pkg/smf"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl"))

// TrackSummary is one row of a song report.
type TrackSummary struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Channel    string `json:"channel"`
	Class      string `json:"class"`
	Events     int    `json:"events"`
	Notes      int    `json:"notes"`
	Percussive bool   `json:"percussive"`
	Instrument string `json:"instrument,omitempty"`
	Range      string `json:"range,omitempty"`
}

// Summary describes a song for humans.
type Summary struct {
	Title         string         `json:"title"`
	Division      int            `json:"division"`
	EndOfSongTick int            `json:"end_of_song_tick"`
	Duration      time.Duration  `json:"duration_ns"`
	TempoBPM      float64        `json:"tempo_bpm"`
	Tracks        []TrackSummary `json:"tracks"`
}

// Summarize collects the per-track facts shown by Report.
func Summarize(song *smf.Song) *Summary {
	sum := &Summary{
		Title:         song.Text,
		Division:      song.Division,
		EndOfSongTick: song.EndOfSongTick,
		Duration:      song.Duration(),
		TempoBPM:      120,
	}
	for e := range song.Tempos() {
		sum.TempoBPM = e.BPM()
		break
	}

	for i, t := range song.Tracks {
		ts := TrackSummary{
			Index:      i,
			Name:       t.Name,
			Channel:    "-",
			Class:      smf.Classify(t).String(),
			Events:     len(t.Events),
			Percussive: t.Percussive,
		}
		if t.Channel != smf.NoChannel {
			ts.Channel = fmt.Sprint(t.Channel + 1)
		}

		lo, hi := uint8(127), uint8(0)
		for e := range t.All() {
			switch e.Kind {
			case smf.KindNoteOn:
				ts.Notes++
				lo, hi = min(lo, e.Data[0]), max(hi, e.Data[0])
			case smf.KindProgramChange:
				if ts.Instrument == "" {
					ts.Instrument = gm.InstrumentName(t.Channel, e.Data[0])
				}
			}
		}
		if ts.Notes > 0 {
			ts.Range = gm.NoteName(lo) + "-" + gm.NoteName(hi)
		}
		sum.Tracks = append(sum.Tracks, ts)
	}
	return sum
}

// Report renders a plain-text summary of song.
func Report(song *smf.Song) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.ExecuteTemplate(&buf, "report.tmpl", Summarize(song)); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

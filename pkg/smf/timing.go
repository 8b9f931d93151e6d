package smf

import (
	"math"
	"time"
)

// DefaultMicrosPerQuarter is the tempo in effect before the first Set-Tempo
// event, 120 BPM.
const DefaultMicrosPerQuarter = 500000

// TickDuration returns the wall-clock time from the start of the song to tick,
// following the tempo changes on the time track.
func (s *Song) TickDuration(tick int) time.Duration {
	if s.Division <= 0 || tick <= 0 {
		return 0
	}
	var (
		total float64 // microseconds
		last  int
		tempo = float64(DefaultMicrosPerQuarter)
		div   = float64(s.Division)
	)
	for e := range s.Tempos() {
		if e.Tick >= tick {
			break
		}
		total += float64(e.Tick-last) * tempo / div
		last = e.Tick
		tempo = float64(e.MicrosPerQuarter())
	}
	total += float64(tick-last) * tempo / div
	return time.Duration(math.Round(total * float64(time.Microsecond)))
}

// Duration returns the length of the song up to EndOfSongTick.
func (s *Song) Duration() time.Duration {
	return s.TickDuration(s.EndOfSongTick)
}

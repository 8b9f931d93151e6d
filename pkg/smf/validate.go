package smf

import "fmt"

// TrackClass summarises what kind of events a track carries.
type TrackClass int

const (
	ClassEmpty TrackClass = iota
	ClassTime             // meta events only
	ClassVoice            // channel-voice events only
	ClassMixed            // both
)

func (c TrackClass) String() string {
	switch c {
	case ClassEmpty:
		return "empty"
	case ClassTime:
		return "time"
	case ClassVoice:
		return "voice"
	case ClassMixed:
		return "mixed"
	default:
		return fmt.Sprintf("TrackClass(%d)", int(c))
	}
}

func classOf(meta, voice bool) TrackClass {
	switch {
	case meta && voice:
		return ClassMixed
	case meta:
		return ClassTime
	case voice:
		return ClassVoice
	default:
		return ClassEmpty
	}
}

// Classify returns the class of a track from its retained events. Name and
// channel declarations do not count.
func Classify(t *Track) TrackClass {
	var meta, voice bool
	for _, e := range t.Events {
		switch {
		case e.Kind.IsChannelVoice():
			voice = true
		case e.Kind.IsMeta():
			meta = true
		}
	}
	return classOf(meta, voice)
}

// validateClasses enforces the file-wide layout: track 0 may only hold meta
// events and every other track may only hold channel-voice events.
func validateClasses(classes []TrackClass) error {
	for i, c := range classes {
		switch {
		case c == ClassMixed:
			return newError(ErrMixedOrMisplacedTrack, i, -1, "track mixes meta and channel events")
		case i == 0 && c == ClassVoice:
			return newError(ErrMixedOrMisplacedTrack, i, -1, "first track carries channel events")
		case i > 0 && c == ClassTime:
			return newError(ErrMixedOrMisplacedTrack, i, -1, "voice track carries tempo or time signature")
		}
	}
	return nil
}

// Validate checks that s can be encoded: the structural layout, the division
// range, channel numbers and tick order.
func (s *Song) Validate() error {
	if len(s.Tracks) == 0 {
		return newError(ErrInvalidSong, -1, -1, "song has no tracks")
	}
	if len(s.Tracks) > 0xFFFF {
		return newError(ErrInvalidSong, -1, -1, "%d tracks exceeds 65535", len(s.Tracks))
	}
	if s.Division < 1 || s.Division > MaxDivision {
		return newError(ErrInvalidSong, -1, -1, "division %d outside [1, %d]", s.Division, MaxDivision)
	}
	if s.EndOfSongTick < 0 {
		return newError(ErrInvalidSong, -1, -1, "negative end of song tick %d", s.EndOfSongTick)
	}
	classes := make([]TrackClass, len(s.Tracks))
	for i, t := range s.Tracks {
		if t == nil {
			return newError(ErrInvalidSong, i, -1, "nil track")
		}
		if t.Channel != NoChannel && (t.Channel < 0 || t.Channel > 15) {
			return newError(ErrInvalidSong, i, -1, "channel %d out of range", t.Channel)
		}
		classes[i] = Classify(t)
		if classes[i] == ClassVoice && t.Channel == NoChannel {
			return newError(ErrInvalidSong, i, -1, "voice track has no channel")
		}
	}
	return validateClasses(classes)
}

package smf

import (
	"errors"
	"fmt"
)

// Error kinds. Every decode or encode failure unwraps to exactly one of these.
var (
	// Header errors
	ErrBadMagic          = errors.New("bad chunk magic")
	ErrBadHeaderLength   = errors.New("bad header length")
	ErrUnsupportedFormat = errors.New("unsupported SMF format")
	ErrNoTracks          = errors.New("file has no tracks")
	ErrSMPTEDivision     = errors.New("SMPTE time division not supported")
	ErrBadDivision       = errors.New("bad time division")

	// Sync errors
	ErrBadSync = errors.New("bad sync")

	// Length errors
	ErrTruncated           = errors.New("truncated input")
	ErrVarUintOverflow     = errors.New("variable-length quantity overflows 32 bits")
	ErrMalformedTiming     = errors.New("malformed delta time")
	ErrBadMetaLength       = errors.New("bad meta event length")
	ErrBadDataByte         = errors.New("bad data byte")
	ErrBadSysex            = errors.New("bad sysex block")
	ErrChunkSizeMismatch   = errors.New("chunk size mismatch")
	ErrPrematureEndOfTrack = errors.New("premature end of track")
	ErrMissingEndOfTrack   = errors.New("missing end of track")

	// Structural errors
	ErrChannelMismatch       = errors.New("channel mismatch")
	ErrMixedOrMisplacedTrack = errors.New("mixed or misplaced track")

	// Encode-only errors
	ErrOutOfOrder  = errors.New("out-of-order events")
	ErrInvalidSong = errors.New("invalid song")
)

// Error describes a terminal codec failure.
type Error struct {
	Kind   error  // one of the Err* kinds above
	Track  int    // track index, or -1 if not track specific
	Offset int    // byte offset into the input, or -1 when encoding
	Detail string // free-form context
	Cause  error  // underlying error, if any
}

func (e *Error) Error() string {
	msg := "smf: " + e.Kind.Error()
	if e.Track >= 0 {
		msg += fmt.Sprintf(" (track %d", e.Track)
		if e.Offset >= 0 {
			msg += fmt.Sprintf(", offset %d", e.Offset)
		}
		msg += ")"
	} else if e.Offset >= 0 {
		msg += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil && e.Cause != e.Kind {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(kind error, track, offset int, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Track:  track,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}

// wrapError attaches a kind to a lower-level failure. An *Error cause that
// already carries the same kind is returned unchanged.
func wrapError(kind error, track, offset int, cause error, detail string) *Error {
	var se *Error
	if errors.As(cause, &se) && se.Kind == kind {
		return se
	}
	return &Error{Kind: kind, Track: track, Offset: offset, Detail: detail, Cause: cause}
}

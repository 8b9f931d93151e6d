package smf

import (
	"errors"
	"fmt"
	"log/slog"
)

// ChannelPolicy controls what happens when a track's channel-voice events
// disagree about their channel.
type ChannelPolicy int

const (
	// ChannelStrict aborts the decode with ErrChannelMismatch.
	ChannelStrict ChannelPolicy = iota
	// ChannelLenient logs a warning and folds the event into the track's channel.
	ChannelLenient
)

func (p ChannelPolicy) String() string {
	switch p {
	case ChannelStrict:
		return "strict"
	case ChannelLenient:
		return "lenient"
	default:
		return fmt.Sprintf("ChannelPolicy(%d)", int(p))
	}
}

// ParseChannelPolicy maps "strict" or "lenient" to a ChannelPolicy.
func ParseChannelPolicy(s string) (ChannelPolicy, error) {
	switch s {
	case "", "strict":
		return ChannelStrict, nil
	case "lenient":
		return ChannelLenient, nil
	default:
		return ChannelStrict, fmt.Errorf("unknown channel policy %q", s)
	}
}

// retainedControllers lists the controllers kept by the decoder.
var retainedControllers = [128]bool{
	CCModulationWheel:     true,
	CCVolume:              true,
	CCPan:                 true,
	CCDamperPedal:         true,
	CCEffect1Depth:        true,
	CCResetAllControllers: true,
}

// trackDecoder holds the state of one MTrk decode.
type trackDecoder struct {
	c      *cursor
	log    *slog.Logger
	policy ChannelPolicy
	song   *Song
	track  *Track
	index  int

	tick int
	// lastStatus is the previous channel-voice status byte, or 0 when no
	// running status is in effect.
	lastStatus byte
	endOfTrack bool
	endTick    int

	// What the wire contained. sawMeta covers tempo and time signature;
	// sawVoice includes events that were dropped.
	sawMeta  bool
	sawVoice bool
}

// errorOffset is the file offset recorded on err, or -1.
func errorOffset(err error) int {
	var se *Error
	if errors.As(err, &se) {
		return se.Offset
	}
	return -1
}

func (d *trackDecoder) errorf(kind error, offset int, format string, args ...any) error {
	return newError(kind, d.index, offset, format, args...)
}

// decodeTrack decodes a chunk body of length bytes starting at the cursor.
// Reads are confined to the chunk; the parent cursor is advanced past it on
// success.
func (d *Decoder) decodeTrack(c *cursor, song *Song, index, length int) (*Track, TrackClass, error) {
	start := c.offset()
	end := start + length
	// Offsets stay absolute so errors point into the whole file.
	body := &cursor{data: c.data[:min(end, len(c.data))], off: start}
	td := &trackDecoder{
		c:      body,
		log:    d.log.With("track", index),
		policy: d.opts.ChannelPolicy,
		song:   song,
		track:  NewTrack(""),
		index:  index,
	}
	for body.offset() < end {
		if td.endOfTrack && body.remaining() == 0 {
			return nil, ClassEmpty, td.errorf(ErrTruncated, body.offset(),
				"chunk declares %d bytes, file ends %d short", length, end-body.offset())
		}
		if td.endOfTrack {
			return nil, ClassEmpty, td.errorf(ErrPrematureEndOfTrack, body.offset(),
				"%d bytes after end of track", end-body.offset())
		}
		if err := td.step(); err != nil {
			// Running off a chunk that the file extends past means the
			// declared length is short, not that the file is cut off.
			if end < len(c.data) && errors.Is(err, ErrTruncated) {
				return nil, ClassEmpty, wrapError(ErrChunkSizeMismatch, index, start, err,
					fmt.Sprintf("declared %d bytes, event at offset %d runs past the chunk", length, errorOffset(err)))
			}
			return nil, ClassEmpty, err
		}
	}
	if !td.endOfTrack {
		return nil, ClassEmpty, td.errorf(ErrMissingEndOfTrack, body.offset(), "")
	}
	c.off = end
	if song.EndOfSongTick < td.endTick {
		song.EndOfSongTick = td.endTick
	}
	td.track.UpdatePercussive()
	if td.track.Channel == NoChannel && td.sawVoice {
		td.log.Warn("voice track has no MIDI channel")
	}
	return td.track, classOf(td.sawMeta, td.sawVoice), nil
}

// step decodes one delta-time and event.
func (d *trackDecoder) step() error {
	at := d.c.offset()
	delta, err := readVarUint(d.c)
	if err != nil {
		return wrapError(ErrMalformedTiming, d.index, at, err, "")
	}
	d.tick += int(delta)

	at = d.c.offset()
	status, err := d.c.readByte()
	if err != nil {
		return wrapError(ErrTruncated, d.index, at, err, "expected status byte")
	}
	if status < 0x80 {
		if d.lastStatus == 0 {
			return d.errorf(ErrBadSync, at, "data byte 0x%02X without running status", status)
		}
		d.c.unreadByte()
		status = d.lastStatus
	}

	switch {
	case status == statusMeta:
		d.lastStatus = 0
		return d.meta(at)
	case status == statusSysex:
		d.lastStatus = 0
		return d.sysex(at)
	case status >= 0x80 && status < 0xF0:
		d.lastStatus = status
		return d.channelVoice(at, status)
	default:
		return d.errorf(ErrBadSync, at, "unexpected status byte 0x%02X", status)
	}
}

func (d *trackDecoder) meta(at int) error {
	typ, err := d.c.readByte()
	if err != nil {
		return wrapError(ErrTruncated, d.index, at, err, "meta type")
	}
	n, err := readVarUint(d.c)
	if err != nil {
		return wrapError(ErrBadMetaLength, d.index, at, err, fmt.Sprintf("meta 0x%02X", typ))
	}
	payload, err := d.c.slice(int(n))
	if err != nil {
		return wrapError(ErrTruncated, d.index, at, err, fmt.Sprintf("meta 0x%02X payload of %d bytes", typ, n))
	}

	switch typ {
	case MetaText:
		if d.song.Text != "" {
			d.log.Warn("discarding extra text event", "offset", at)
			return nil
		}
		d.song.Text = decodeText(payload)
	case MetaTrackName:
		if d.track.Name != "" {
			d.log.Warn("discarding extra track name", "offset", at)
			return nil
		}
		d.track.Name = decodeText(payload)
	case MetaMIDIChannel:
		if err := d.expectLength(at, typ, payload, 1); err != nil {
			return err
		}
		ch := int(payload[0])
		if ch > 15 {
			return d.errorf(ErrBadDataByte, at, "MIDI channel %d out of range", ch)
		}
		if d.track.Channel != NoChannel {
			d.log.Warn("discarding extra MIDI channel event", "offset", at, "channel", ch)
			return nil
		}
		d.track.Channel = ch
	case MetaEndOfTrack:
		if err := d.expectLength(at, typ, payload, 0); err != nil {
			return err
		}
		d.endOfTrack = true
		d.endTick = d.tick
	case MetaSetTempo:
		if err := d.expectLength(at, typ, payload, 3); err != nil {
			return err
		}
		d.sawMeta = true
		d.track.Events = append(d.track.Events, Event{
			Tick: d.tick,
			Kind: KindSetTempo,
			Data: [3]byte{payload[0], payload[1], payload[2]},
		})
	case MetaTimeSignature:
		if err := d.expectLength(at, typ, payload, 4); err != nil {
			return err
		}
		d.sawMeta = true
		d.track.Events = append(d.track.Events, TimeSignature(d.tick, payload[0], payload[1]))
	default:
		d.log.Warn("discarding meta event", "offset", at, "meta_type", fmt.Sprintf("0x%02X", typ), "length", n)
	}
	return nil
}

func (d *trackDecoder) expectLength(at int, typ byte, payload []byte, want int) error {
	if len(payload) != want {
		return d.errorf(ErrBadMetaLength, at, "meta 0x%02X has length %d, want %d", typ, len(payload), want)
	}
	return nil
}

func (d *trackDecoder) sysex(at int) error {
	n, err := readVarUint(d.c)
	if err != nil {
		return wrapError(ErrBadSysex, d.index, at, err, "length")
	}
	if n == 0 {
		return d.errorf(ErrBadSysex, at, "empty sysex block")
	}
	if err := d.c.skip(int(n) - 1); err != nil {
		return wrapError(ErrTruncated, d.index, at, err, fmt.Sprintf("sysex of %d bytes", n))
	}
	last, err := d.c.readByte()
	if err != nil {
		return wrapError(ErrTruncated, d.index, at, err, "sysex terminator")
	}
	if last != sysexEnd {
		return d.errorf(ErrBadSysex, at, "terminator 0x%02X, want 0xF7", last)
	}
	d.log.Warn("discarding sysex block", "offset", at, "length", n)
	return nil
}

func (d *trackDecoder) channelVoice(at int, status byte) error {
	kind := status & 0xF0
	ch := int(status & 0x0F)
	d.sawVoice = true

	switch {
	case d.track.Channel == NoChannel:
		d.track.Channel = ch
	case d.track.Channel != ch:
		if d.policy == ChannelStrict {
			return d.errorf(ErrChannelMismatch, at, "channel %d on a channel %d track", ch, d.track.Channel)
		}
		d.log.Warn("channel mismatch", "offset", at, "channel", ch, "track_channel", d.track.Channel)
	}

	n := 2
	if kind == 0xC0 || kind == 0xD0 {
		n = 1
	}
	var data [3]byte
	for i := 0; i < n; i++ {
		b, err := d.c.readByte()
		if err != nil {
			return wrapError(ErrTruncated, d.index, at, err, "channel message data")
		}
		if b >= 0x80 {
			return d.errorf(ErrBadDataByte, d.c.offset()-1, "data byte 0x%02X after status 0x%02X", b, status)
		}
		data[i] = b
	}

	switch kind {
	case 0xA0, 0xD0:
		// aftertouch is not kept
		return nil
	case 0xB0:
		if !retainedControllers[data[0]] {
			d.log.Warn("discarding controller", "offset", at, "controller", data[0])
			return nil
		}
	case 0x90:
		if data[1] == 0 {
			kind = byte(KindNoteOff)
		}
	}
	d.track.Events = append(d.track.Events, Event{Tick: d.tick, Kind: Kind(kind), Data: data})
	return nil
}

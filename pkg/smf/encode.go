package smf

import "math"

// trackEncoder appends one MTrk chunk to buf.
type trackEncoder struct {
	buf   []byte
	index int
	tick  int
	// lastStatus is the status byte most recently written, 0 after a meta.
	lastStatus byte
}

func encodeTrack(buf []byte, s *Song, index int, t *Track) ([]byte, error) {
	e := &trackEncoder{buf: buf, index: index}
	e.buf = append(e.buf, trackMagic...)
	lenAt := len(e.buf)
	e.buf = appendU32BE(e.buf, 0)
	bodyAt := len(e.buf)

	if index == 0 && s.Text != "" {
		e.preamble(MetaText, []byte(s.Text))
	}
	if t.Name != "" {
		e.preamble(MetaTrackName, []byte(t.Name))
	}
	if t.Channel != NoChannel {
		e.preamble(MetaMIDIChannel, []byte{byte(t.Channel)})
	}

	for i, ev := range t.Events {
		if ev.Kind == KindEndOfTrack {
			continue
		}
		if err := e.advance(ev.Tick, i); err != nil {
			return nil, err
		}
		switch ev.Kind {
		case KindNoteOff, KindNoteOn, KindControlChange, KindProgramChange, KindPitchBend:
			if err := e.channelVoice(ev, t.Channel, i); err != nil {
				return nil, err
			}
		case KindSetTempo:
			e.meta(MetaSetTempo, ev.Data[:3])
		case KindTimeSignature:
			e.meta(MetaTimeSignature, []byte{ev.Data[0], ev.Data[1], TimeSigClocksPerClick, TimeSigThirtySecondsPer})
		default:
			return nil, newError(ErrInvalidSong, index, -1, "event %d has unknown kind %s", i, ev.Kind)
		}
	}

	if s.EndOfSongTick < e.tick {
		return nil, newError(ErrOutOfOrder, index, -1, "end of song tick %d precedes last event at tick %d", s.EndOfSongTick, e.tick)
	}
	if err := e.advance(s.EndOfSongTick, -1); err != nil {
		return nil, err
	}
	e.meta(MetaEndOfTrack, nil)

	putU32BE(e.buf, lenAt, uint32(len(e.buf)-bodyAt))
	return e.buf, nil
}

// advance writes the delta from the previous event to tick.
func (e *trackEncoder) advance(tick, event int) error {
	delta := tick - e.tick
	if delta < 0 {
		return newError(ErrOutOfOrder, e.index, -1, "event %d at tick %d follows tick %d", event, tick, e.tick)
	}
	if uint64(delta) > math.MaxUint32 {
		return newError(ErrInvalidSong, e.index, -1, "delta %d does not fit 32 bits", delta)
	}
	e.buf = appendVarUint(e.buf, uint32(delta))
	e.tick = tick
	return nil
}

// preamble writes a tick 0 meta event ahead of the track's events.
func (e *trackEncoder) preamble(typ byte, payload []byte) {
	e.buf = appendVarUint(e.buf, 0)
	e.meta(typ, payload)
}

// meta writes a meta event. The delta must already be written.
func (e *trackEncoder) meta(typ byte, payload []byte) {
	e.buf = append(e.buf, statusMeta, typ)
	e.buf = appendVarUint(e.buf, uint32(len(payload)))
	e.buf = append(e.buf, payload...)
	e.lastStatus = 0
}

func (e *trackEncoder) channelVoice(ev Event, channel, i int) error {
	n := ev.Kind.DataLen()
	for _, b := range ev.Data[:n] {
		if b >= 0x80 {
			return newError(ErrBadDataByte, e.index, -1, "event %d data byte 0x%02X", i, b)
		}
	}
	status := byte(ev.Kind) | byte(channel)
	if status != e.lastStatus {
		e.buf = append(e.buf, status)
		e.lastStatus = status
	}
	e.buf = append(e.buf, ev.Data[:n]...)
	return nil
}

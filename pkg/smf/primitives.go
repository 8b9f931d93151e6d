package smf

import "math"

// matchMagic consumes len(magic) bytes and reports whether they equal magic.
func matchMagic(c *cursor, magic string) (bool, error) {
	b, err := c.slice(len(magic))
	if err != nil {
		return false, err
	}
	return string(b) == magic, nil
}

func readU32BE(c *cursor) (uint32, error) {
	b, err := c.slice(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func readU16BE(c *cursor) (uint16, error) {
	b, err := c.slice(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// readVarUint reads a MIDI variable-length quantity: 7 bits per byte, most
// significant group first, 0x80 set on every byte but the last.
func readVarUint(c *cursor) (uint32, error) {
	var v uint32
	for {
		b, err := c.readByte()
		if err != nil {
			return 0, err
		}
		if v > math.MaxUint32>>7 {
			return 0, ErrVarUintOverflow
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
}

func appendU32BE(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendU16BE(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

// putU32BE overwrites four bytes at off. Used to backpatch chunk lengths.
func putU32BE(buf []byte, off int, v uint32) {
	buf[off] = byte(v >> 24)
	buf[off+1] = byte(v >> 16)
	buf[off+2] = byte(v >> 8)
	buf[off+3] = byte(v)
}

// appendVarUint writes v using the minimum number of 7-bit groups.
func appendVarUint(buf []byte, v uint32) []byte {
	n := 1
	for rest := v >> 7; rest != 0; rest >>= 7 {
		n++
	}
	for i := n - 1; i >= 0; i-- {
		b := byte(v>>(7*uint(i))) & 0x7F
		if i > 0 {
			b |= 0x80
		}
		buf = append(buf, b)
	}
	return buf
}

package smf

// cursor is a bounds-checked read position over an input buffer. It never
// panics; reads past the end return ErrTruncated.
type cursor struct {
	data []byte
	off  int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

func (c *cursor) offset() int {
	return c.off
}

func (c *cursor) remaining() int {
	return len(c.data) - c.off
}

func (c *cursor) readByte() (byte, error) {
	if c.off >= len(c.data) {
		return 0, ErrTruncated
	}
	b := c.data[c.off]
	c.off++
	return b, nil
}

// unreadByte puts back the byte returned by the last readByte.
func (c *cursor) unreadByte() {
	if c.off > 0 {
		c.off--
	}
}

func (c *cursor) skip(n int) error {
	if n < 0 || n > c.remaining() {
		return ErrTruncated
	}
	c.off += n
	return nil
}

// slice returns the next n bytes without copying and advances past them.
func (c *cursor) slice(n int) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		return nil, ErrTruncated
	}
	b := c.data[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

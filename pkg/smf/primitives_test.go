package smf

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCursor(t *testing.T) {
	c := newCursor([]byte{1, 2, 3})

	b, err := c.readByte()
	if err != nil || b != 1 {
		t.Fatalf("readByte() = %v, %v, want 1, nil", b, err)
	}
	c.unreadByte()
	if c.offset() != 0 {
		t.Errorf("offset() after unreadByte = %d, want 0", c.offset())
	}
	if err := c.skip(2); err != nil {
		t.Fatalf("skip(2) error = %v", err)
	}
	if c.remaining() != 1 {
		t.Errorf("remaining() = %d, want 1", c.remaining())
	}
	if _, err := c.slice(2); !errors.Is(err, ErrTruncated) {
		t.Errorf("slice(2) error = %v, want ErrTruncated", err)
	}
	if err := c.skip(-1); !errors.Is(err, ErrTruncated) {
		t.Errorf("skip(-1) error = %v, want ErrTruncated", err)
	}
	s, err := c.slice(1)
	if err != nil || len(s) != 1 || s[0] != 3 {
		t.Errorf("slice(1) = %v, %v, want [3], nil", s, err)
	}
	if _, err := c.readByte(); !errors.Is(err, ErrTruncated) {
		t.Errorf("readByte() at end error = %v, want ErrTruncated", err)
	}
}

func TestReadVarUint(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    uint32
		wantErr error
	}{
		{"zero", []byte{0x00}, 0, nil},
		{"one byte max", []byte{0x7F}, 0x7F, nil},
		{"two bytes", []byte{0x81, 0x00}, 0x80, nil},
		{"480", []byte{0x83, 0x60}, 480, nil},
		{"four bytes max", []byte{0xFF, 0xFF, 0xFF, 0x7F}, 0x0FFFFFFF, nil},
		{"32 bit max", []byte{0x8F, 0xFF, 0xFF, 0xFF, 0x7F}, 0xFFFFFFFF, nil},
		{"overflow", []byte{0x90, 0x80, 0x80, 0x80, 0x00}, 0, ErrVarUintOverflow},
		{"truncated", []byte{0x81}, 0, ErrTruncated},
		{"empty", nil, 0, ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readVarUint(newCursor(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("readVarUint() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("readVarUint() = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestAppendVarUint(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{0x40, []byte{0x40}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x81, 0x00}},
		{0x2000, []byte{0xC0, 0x00}},
		{0x3FFF, []byte{0xFF, 0x7F}},
		{0x4000, []byte{0x81, 0x80, 0x00}},
		{0x0FFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
	}

	for _, tt := range tests {
		got := appendVarUint(nil, tt.v)
		if string(got) != string(tt.want) {
			t.Errorf("appendVarUint(%#x) = % X, want % X", tt.v, got, tt.want)
		}
	}
}

func TestBigEndian(t *testing.T) {
	buf := appendU32BE(nil, 0x01020304)
	buf = appendU16BE(buf, 0x0506)
	c := newCursor(buf)
	if v, err := readU32BE(c); err != nil || v != 0x01020304 {
		t.Errorf("readU32BE() = %#x, %v", v, err)
	}
	if v, err := readU16BE(c); err != nil || v != 0x0506 {
		t.Errorf("readU16BE() = %#x, %v", v, err)
	}
	if _, err := readU16BE(c); !errors.Is(err, ErrTruncated) {
		t.Errorf("readU16BE() at end error = %v, want ErrTruncated", err)
	}

	putU32BE(buf, 0, 0xAABBCCDD)
	if v, _ := readU32BE(newCursor(buf)); v != 0xAABBCCDD {
		t.Errorf("putU32BE() then readU32BE() = %#x, want 0xAABBCCDD", v)
	}
}

func TestMatchMagic(t *testing.T) {
	ok, err := matchMagic(newCursor([]byte("MTrk")), trackMagic)
	if !ok || err != nil {
		t.Errorf("matchMagic(MTrk) = %v, %v, want true, nil", ok, err)
	}
	ok, err = matchMagic(newCursor([]byte("XFIH")), trackMagic)
	if ok || err != nil {
		t.Errorf("matchMagic(XFIH) = %v, %v, want false, nil", ok, err)
	}
	if _, err := matchMagic(newCursor([]byte("MT")), trackMagic); !errors.Is(err, ErrTruncated) {
		t.Errorf("matchMagic(MT) error = %v, want ErrTruncated", err)
	}
}

func TestVarUintProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 1000

	properties := gopter.NewProperties(parameters)

	properties.Property("decode inverts encode", prop.ForAll(
		func(v uint32) bool {
			got, err := readVarUint(newCursor(appendVarUint(nil, v)))
			return err == nil && got == v
		},
		gen.UInt32Range(0, 1<<28-1),
	))

	properties.Property("encoding has minimal length", prop.ForAll(
		func(v uint32) bool {
			n := len(appendVarUint(nil, v))
			switch {
			case v < 1<<7:
				return n == 1
			case v < 1<<14:
				return n == 2
			case v < 1<<21:
				return n == 3
			default:
				return n == 4
			}
		},
		gen.UInt32Range(0, 1<<28-1),
	))

	properties.TestingRun(t)
}

package fres

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Cursor reads big-endian fields at absolute offsets of a container.
// Every read is bounds checked and fails with ErrTruncated.
type Cursor struct {
	buf []byte
}

func NewCursor(buf []byte) Cursor {
	return Cursor{buf: buf}
}

func (c Cursor) Len() int { return len(c.buf) }

func (c Cursor) check(off uint32, n int) error {
	if n < 0 || uint64(off)+uint64(n) > uint64(len(c.buf)) {
		return fmt.Errorf("%w: %d bytes at 0x%x (size 0x%x)", ErrTruncated, n, off, len(c.buf))
	}
	return nil
}

func (c Cursor) U8(off uint32) (uint8, error) {
	if err := c.check(off, 1); err != nil {
		return 0, err
	}
	return c.buf[off], nil
}

func (c Cursor) U16(off uint32) (uint16, error) {
	if err := c.check(off, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(c.buf[off:]), nil
}

func (c Cursor) U32(off uint32) (uint32, error) {
	if err := c.check(off, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(c.buf[off:]), nil
}

func (c Cursor) I16(off uint32) (int16, error) {
	v, err := c.U16(off)
	return int16(v), err
}

func (c Cursor) I32(off uint32) (int32, error) {
	v, err := c.U32(off)
	return int32(v), err
}

func (c Cursor) F32(off uint32) (float32, error) {
	v, err := c.U32(off)
	return math.Float32frombits(v), err
}

// Bytes returns a sub-slice of the container without copying.
func (c Cursor) Bytes(off uint32, n int) ([]byte, error) {
	if err := c.check(off, n); err != nil {
		return nil, err
	}
	return c.buf[off : int(off)+n], nil
}

// Ptr resolves the self-relative pointer stored at field. ok is false when
// the stored delta is zero, meaning the target is absent.
func (c Cursor) Ptr(field uint32) (target uint32, ok bool, err error) {
	delta, err := c.I32(field)
	if err != nil {
		return 0, false, err
	}
	if delta == 0 {
		return 0, false, nil
	}
	resolved := int64(field) + int64(delta)
	if resolved < 0 || resolved >= int64(len(c.buf)) {
		return 0, false, fmt.Errorf("%w: pointer at 0x%x resolves to 0x%x", ErrTruncated, field, resolved)
	}
	return uint32(resolved), true, nil
}

// String reads a name whose UTF-8 bytes start at off, preceded by a
// 4-byte length.
func (c Cursor) String(off uint32) (string, error) {
	if off < 4 {
		return "", fmt.Errorf("%w: string at 0x%x has no length prefix", ErrTruncated, off)
	}
	n, err := c.U32(off - 4)
	if err != nil {
		return "", err
	}
	b, err := c.Bytes(off, int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NameAt resolves the pointer stored at field and reads the string it
// targets. An absent pointer yields "".
func (c Cursor) NameAt(field uint32) (string, error) {
	target, ok, err := c.Ptr(field)
	if err != nil || !ok {
		return "", err
	}
	return c.String(target)
}

// fieldReader reads the fields of one record relative to its base offset
// and keeps the first error, so decoders can read a whole record before
// checking.
type fieldReader struct {
	c    Cursor
	base uint32
	err  error
}

func newFieldReader(c Cursor, base uint32) *fieldReader {
	return &fieldReader{c: c, base: base}
}

func (r *fieldReader) u8(off uint32) uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.U8(r.base + off)
	r.err = err
	return v
}

func (r *fieldReader) u16(off uint32) uint16 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.U16(r.base + off)
	r.err = err
	return v
}

func (r *fieldReader) i16(off uint32) int16 {
	return int16(r.u16(off))
}

func (r *fieldReader) u32(off uint32) uint32 {
	if r.err != nil {
		return 0
	}
	v, err := r.c.U32(r.base + off)
	r.err = err
	return v
}

func (r *fieldReader) f32(off uint32) float32 {
	return math.Float32frombits(r.u32(off))
}

func (r *fieldReader) vec3(off uint32) [3]float32 {
	return [3]float32{r.f32(off), r.f32(off + 4), r.f32(off + 8)}
}

func (r *fieldReader) vec4(off uint32) [4]float32 {
	return [4]float32{r.f32(off), r.f32(off + 4), r.f32(off + 8), r.f32(off + 12)}
}

// ptr resolves a self-relative pointer; absent pointers return 0.
func (r *fieldReader) ptr(off uint32) uint32 {
	if r.err != nil {
		return 0
	}
	v, _, err := r.c.Ptr(r.base + off)
	r.err = err
	return v
}

func (r *fieldReader) name(off uint32) string {
	if r.err != nil {
		return ""
	}
	v, err := r.c.NameAt(r.base + off)
	r.err = err
	return v
}

func (r *fieldReader) bytes(off uint32, n int) []byte {
	if r.err != nil {
		return nil
	}
	v, err := r.c.Bytes(r.base+off, n)
	r.err = err
	return v
}

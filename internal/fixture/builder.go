// Package fixture assembles small synthetic containers for tests.
//
// Builder lays records out in an in-memory buffer. Space for a record is
// reserved first and its fields are patched once the targets it points at
// exist, so containers can be written bottom-up.
package fixture

import (
	"encoding/binary"
	"math"
)

// Builder is a big-endian byte buffer with self-relative pointer support.
type Builder struct {
	buf     []byte
	strings map[string]uint32
}

func NewBuilder() *Builder {
	return &Builder{strings: make(map[string]uint32)}
}

// Len is the current end of the buffer.
func (b *Builder) Len() uint32 { return uint32(len(b.buf)) }

// Bytes returns the assembled buffer.
func (b *Builder) Bytes() []byte { return b.buf }

// Align pads the buffer with zeros up to a multiple of n.
func (b *Builder) Align(n int) {
	for len(b.buf)%n != 0 {
		b.buf = append(b.buf, 0)
	}
}

// Reserve appends n zero bytes at a 4-byte boundary and returns their
// offset.
func (b *Builder) Reserve(n int) uint32 {
	b.Align(4)
	off := b.Len()
	b.buf = append(b.buf, make([]byte, n)...)
	return off
}

// Append copies p to the end of the buffer at a 4-byte boundary.
func (b *Builder) Append(p []byte) uint32 {
	off := b.Reserve(len(p))
	copy(b.buf[off:], p)
	return off
}

func (b *Builder) PutU8(off uint32, v uint8) { b.buf[off] = v }

func (b *Builder) PutU16(off uint32, v uint16) {
	binary.BigEndian.PutUint16(b.buf[off:], v)
}

func (b *Builder) PutU32(off uint32, v uint32) {
	binary.BigEndian.PutUint32(b.buf[off:], v)
}

func (b *Builder) PutF32(off uint32, v float32) {
	b.PutU32(off, math.Float32bits(v))
}

func (b *Builder) PutBytes(off uint32, p []byte) { copy(b.buf[off:], p) }

// PutPtr stores target as a delta relative to field. A zero target is left
// as an absent pointer.
func (b *Builder) PutPtr(field, target uint32) {
	if target == 0 {
		return
	}
	b.PutU32(field, uint32(int32(int64(target)-int64(field))))
}

// PutRawPtr stores an arbitrary delta, used to build corrupt files.
func (b *Builder) PutRawPtr(field uint32, delta int32) {
	b.PutU32(field, uint32(delta))
}

// String interns s as a length-prefixed, NUL-terminated name and returns
// the offset of its first byte.
func (b *Builder) String(s string) uint32 {
	if off, ok := b.strings[s]; ok {
		return off
	}
	start := b.Reserve(4 + len(s) + 1)
	b.PutU32(start, uint32(len(s)))
	copy(b.buf[start+4:], s)
	off := start + 4
	b.strings[s] = off
	return off
}

// PutName interns s and points field at it.
func (b *Builder) PutName(field uint32, s string) {
	if s == "" {
		return
	}
	b.PutPtr(field, b.String(s))
}

// Entry is one named record of an index group.
type Entry struct {
	Name   string
	Target uint32
}

// Group writes an index group holding entries and returns its offset.
// The search tree fields are filled with a degenerate chain; readers walk
// the flat entry array.
func (b *Builder) Group(entries ...Entry) uint32 {
	off := b.Reserve(0x18 + len(entries)*0x10)
	b.PutU32(off, uint32(0x18+len(entries)*0x10))
	b.PutU32(off+4, uint32(len(entries)))
	b.PutU32(off+8, 0xFFFFFFFF)
	for i, e := range entries {
		eo := off + 0x18 + uint32(i)*0x10
		b.PutU16(eo+4, uint16(i))
		b.PutU16(eo+6, uint16(i+1))
		b.PutName(eo+8, e.Name)
		b.PutPtr(eo+12, e.Target)
	}
	return off
}

package fres

import "fmt"

const (
	vertexMagic      = "FVTX"
	vertexStride     = 0x20
	attribStride     = 0x0C
	vertexBufferSize = 0x18
)

// AttribFormat is a GX2 vertex attribute format code.
type AttribFormat uint32

const (
	AttribUnorm8      AttribFormat = 0x0000
	AttribUnorm8x2    AttribFormat = 0x0004
	AttribUnorm16x2   AttribFormat = 0x0007
	AttribUnorm8x4    AttribFormat = 0x000A
	AttribUint8       AttribFormat = 0x0100
	AttribUint8x2     AttribFormat = 0x0104
	AttribUint8x4     AttribFormat = 0x010A
	AttribSnorm8      AttribFormat = 0x0200
	AttribSnorm8x2    AttribFormat = 0x0204
	AttribSnorm16x2   AttribFormat = 0x0207
	AttribSnorm8x4    AttribFormat = 0x020A
	AttribSnorm10x3_2 AttribFormat = 0x020B
	AttribSint8       AttribFormat = 0x0300
	AttribSint8x2     AttribFormat = 0x0304
	AttribSint8x4     AttribFormat = 0x030A
	AttribFloat32     AttribFormat = 0x0806
	AttribFloat16x2   AttribFormat = 0x0808
	AttribFloat32x2   AttribFormat = 0x080D
	AttribFloat16x4   AttribFormat = 0x080F
	AttribFloat32x3   AttribFormat = 0x0811
	AttribFloat32x4   AttribFormat = 0x0813
)

type attribLayout struct {
	name       string
	components int
	size       int // bytes per vertex
}

func (f AttribFormat) layout() (attribLayout, bool) {
	switch f {
	case AttribUnorm8:
		return attribLayout{"unorm_8", 1, 1}, true
	case AttribUnorm8x2:
		return attribLayout{"unorm_8_8", 2, 2}, true
	case AttribUnorm16x2:
		return attribLayout{"unorm_16_16", 2, 4}, true
	case AttribUnorm8x4:
		return attribLayout{"unorm_8_8_8_8", 4, 4}, true
	case AttribUint8:
		return attribLayout{"uint_8", 1, 1}, true
	case AttribUint8x2:
		return attribLayout{"uint_8_8", 2, 2}, true
	case AttribUint8x4:
		return attribLayout{"uint_8_8_8_8", 4, 4}, true
	case AttribSnorm8:
		return attribLayout{"snorm_8", 1, 1}, true
	case AttribSnorm8x2:
		return attribLayout{"snorm_8_8", 2, 2}, true
	case AttribSnorm16x2:
		return attribLayout{"snorm_16_16", 2, 4}, true
	case AttribSnorm8x4:
		return attribLayout{"snorm_8_8_8_8", 4, 4}, true
	case AttribSnorm10x3_2:
		return attribLayout{"snorm_10_10_10_2", 3, 4}, true
	case AttribSint8:
		return attribLayout{"sint_8", 1, 1}, true
	case AttribSint8x2:
		return attribLayout{"sint_8_8", 2, 2}, true
	case AttribSint8x4:
		return attribLayout{"sint_8_8_8_8", 4, 4}, true
	case AttribFloat32:
		return attribLayout{"float_32", 1, 4}, true
	case AttribFloat16x2:
		return attribLayout{"float_16_16", 2, 4}, true
	case AttribFloat32x2:
		return attribLayout{"float_32_32", 2, 8}, true
	case AttribFloat16x4:
		return attribLayout{"float_16_16_16_16", 4, 8}, true
	case AttribFloat32x3:
		return attribLayout{"float_32_32_32", 3, 12}, true
	case AttribFloat32x4:
		return attribLayout{"float_32_32_32_32", 4, 16}, true
	}
	return attribLayout{}, false
}

func (f AttribFormat) String() string {
	if l, ok := f.layout(); ok {
		return l.name
	}
	return fmt.Sprintf("attrib(0x%04x)", uint32(f))
}

func (f AttribFormat) Known() bool {
	_, ok := f.layout()
	return ok
}

// Components is the number of decoded values per vertex.
func (f AttribFormat) Components() int {
	l, _ := f.layout()
	return l.components
}

// Size is the number of bytes one vertex occupies.
func (f AttribFormat) Size() int {
	l, _ := f.layout()
	return l.size
}

// Well-known attribute names.
const (
	AttribPosition   = "_p0"
	AttribNormal     = "_n0"
	AttribUV         = "_u0"
	AttribBoneIndex  = "_i0"
	AttribBoneWeight = "_w0"
)

type VertexAttrib struct {
	Name        string
	BufferIndex int
	Offset      int // byte offset inside each vertex of the buffer
	Format      AttribFormat
}

type VertexBuffer struct {
	Size       uint32
	Stride     uint16
	DataOffset uint32 // absolute, 0 when absent
}

// VertexData is an FVTX record.
type VertexData struct {
	Offset       uint32
	SectionIndex uint16
	VertexCount  uint32
	SkinCount    uint8
	Attribs      []VertexAttrib
	Buffers      []VertexBuffer

	c Cursor
}

func decodeVertexData(c Cursor, off uint32) (*VertexData, error) {
	magic, err := c.Bytes(off, 4)
	if err != nil {
		return nil, err
	}
	if string(magic) != vertexMagic {
		return nil, fmt.Errorf("%w: vertex data at 0x%x has magic %q", ErrBadMagic, off, magic)
	}

	r := newFieldReader(c, off)
	numAttribs := int(r.u8(0x04))
	numBuffers := int(r.u8(0x05))
	v := &VertexData{
		Offset:       off,
		SectionIndex: r.u16(0x06),
		VertexCount:  r.u32(0x08),
		SkinCount:    r.u8(0x0C),
		c:            c,
	}
	attribArray := r.ptr(0x10)
	attribGroup := r.ptr(0x14)
	bufferArray := r.ptr(0x18)
	if r.err != nil {
		return nil, fmt.Errorf("vertex data at 0x%x: %w", off, r.err)
	}

	// Attributes are addressed through their index group, which carries
	// the names. The flat array is used when the group is missing.
	if attribGroup != 0 {
		g, err := ReadIndexGroup(c, attribGroup)
		if err != nil {
			return nil, fmt.Errorf("vertex data at 0x%x: attributes: %w", off, err)
		}
		entries, err := g.Entries()
		if err != nil {
			return nil, fmt.Errorf("vertex data at 0x%x: attributes: %w", off, err)
		}
		for _, e := range entries {
			a, err := decodeAttrib(c, e.Offset)
			if err != nil {
				return nil, err
			}
			a.Name = e.Name
			v.Attribs = append(v.Attribs, a)
		}
	} else if attribArray != 0 {
		for i := range numAttribs {
			a, err := decodeAttrib(c, attribArray+uint32(i)*attribStride)
			if err != nil {
				return nil, err
			}
			v.Attribs = append(v.Attribs, a)
		}
	}

	if bufferArray != 0 {
		v.Buffers = make([]VertexBuffer, 0, numBuffers)
		for i := range numBuffers {
			br := newFieldReader(c, bufferArray+uint32(i)*vertexBufferSize)
			b := VertexBuffer{
				Size:       br.u32(0x04),
				Stride:     br.u16(0x0C),
				DataOffset: br.ptr(0x14),
			}
			if br.err != nil {
				return nil, fmt.Errorf("vertex buffer %d: %w", i, br.err)
			}
			v.Buffers = append(v.Buffers, b)
		}
	}
	return v, nil
}

func decodeAttrib(c Cursor, off uint32) (VertexAttrib, error) {
	r := newFieldReader(c, off)
	a := VertexAttrib{
		Name:        r.name(0x00),
		BufferIndex: int(r.u8(0x04)),
		Offset:      int(r.i16(0x06)),
		Format:      AttribFormat(r.u32(0x08)),
	}
	if r.err != nil {
		return VertexAttrib{}, fmt.Errorf("vertex attribute at 0x%x: %w", off, r.err)
	}
	return a, nil
}

// Attrib returns the attribute called name.
func (v *VertexData) Attrib(name string) (VertexAttrib, bool) {
	for _, a := range v.Attribs {
		if a.Name == name {
			return a, true
		}
	}
	return VertexAttrib{}, false
}

// BufferData returns the raw bytes of buffer i.
func (v *VertexData) BufferData(i int) ([]byte, error) {
	if i < 0 || i >= len(v.Buffers) {
		return nil, fmt.Errorf("%w: vertex buffer %d of %d", ErrNotFound, i, len(v.Buffers))
	}
	b := v.Buffers[i]
	if b.DataOffset == 0 {
		return nil, fmt.Errorf("%w: vertex buffer %d has no data", ErrNotFound, i)
	}
	return v.c.Bytes(b.DataOffset, int(b.Size))
}

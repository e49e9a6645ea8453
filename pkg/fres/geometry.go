package fres

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/samcharles93/bfres/pkg/texel"
)

// ShapeGeometry is the decoded mesh of one shape at one LOD.
type ShapeGeometry struct {
	Name          string
	MaterialIndex int
	BoneIndex     int
	SkinCount     int
	PrimitiveType PrimitiveType

	Positions   [][]float32 // xyz
	Normals     [][]float32 // xyz
	UVs         [][]float32 // uv, v not flipped
	BoneIndices [][]float32
	BoneWeights [][]float32
	// Indices holds triangle corners into the shape's vertex arrays.
	Indices []uint32
}

// Geometry decodes the vertex attributes and the index list of lod.
// Unknown attribute formats, primitive types and index formats fail with
// the matching sentinel error so the caller can skip the shape.
func (m *Model) Geometry(s *Shape, lod int) (*ShapeGeometry, error) {
	v, err := m.VertexDataFor(s)
	if err != nil {
		return nil, err
	}
	g := &ShapeGeometry{
		Name:          s.Name,
		MaterialIndex: int(s.MaterialIndex),
		BoneIndex:     int(s.BoneIndex),
		SkinCount:     int(s.SkinCount),
	}

	targets := []struct {
		name  string
		width int
		dst   *[][]float32
	}{
		{AttribPosition, 3, &g.Positions},
		{AttribNormal, 3, &g.Normals},
		{AttribUV, 2, &g.UVs},
		{AttribBoneIndex, 0, &g.BoneIndices},
		{AttribBoneWeight, 0, &g.BoneWeights},
	}
	for _, t := range targets {
		a, ok := v.Attrib(t.name)
		if !ok {
			continue
		}
		vals, err := DecodeAttrib(v, a)
		if err != nil {
			return nil, fmt.Errorf("shape %q: %w", s.Name, err)
		}
		if t.width > 0 {
			pad(vals, t.width)
		}
		*t.dst = vals
	}

	if lod < 0 || lod >= len(s.LODs) {
		return nil, fmt.Errorf("%w: shape %q lod %d of %d", ErrNotFound, s.Name, lod, len(s.LODs))
	}
	l := s.LODs[lod]
	g.PrimitiveType = l.PrimitiveType
	if g.Indices, err = decodeIndices(m.c, l); err != nil {
		return nil, fmt.Errorf("shape %q: %w", s.Name, err)
	}
	return g, nil
}

func pad(vals [][]float32, width int) {
	for i, v := range vals {
		if len(v) < width {
			out := make([]float32, width)
			copy(out, v)
			vals[i] = out
		}
	}
}

// DecodeAttrib decodes attribute a for every vertex of v.
func DecodeAttrib(v *VertexData, a VertexAttrib) ([][]float32, error) {
	if !a.Format.Known() {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedAttribFormat, a.Format, a.Name)
	}
	buf, err := v.BufferData(a.BufferIndex)
	if err != nil {
		return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
	}
	size := a.Format.Size()
	stride := int(v.Buffers[a.BufferIndex].Stride)
	if stride == 0 {
		stride = size
	}

	out := make([][]float32, 0, v.VertexCount)
	for i := range int(v.VertexCount) {
		o := i*stride + a.Offset
		if o < 0 || o+size > len(buf) {
			return nil, fmt.Errorf("%w: attribute %s vertex %d at +0x%x (buffer 0x%x)", ErrTruncated, a.Name, i, o, len(buf))
		}
		out = append(out, decodeVertex(a.Format, buf[o:o+size]))
	}
	return out, nil
}

func decodeVertex(f AttribFormat, src []byte) []float32 {
	n := f.Components()
	out := make([]float32, n)
	switch f {
	case AttribUnorm8, AttribUnorm8x2, AttribUnorm8x4:
		for i := range n {
			out[i] = float32(src[i]) / 255
		}
	case AttribUint8, AttribUint8x2, AttribUint8x4:
		for i := range n {
			out[i] = float32(src[i])
		}
	case AttribSnorm8, AttribSnorm8x2, AttribSnorm8x4:
		for i := range n {
			out[i] = math32.Max(float32(int8(src[i]))/127, -1)
		}
	case AttribSint8, AttribSint8x2, AttribSint8x4:
		for i := range n {
			out[i] = float32(int8(src[i]))
		}
	case AttribUnorm16x2:
		for i := range n {
			out[i] = float32(binary.BigEndian.Uint16(src[i*2:])) / 0xFFFF
		}
	case AttribSnorm16x2:
		for i := range n {
			out[i] = math32.Max(float32(int16(binary.BigEndian.Uint16(src[i*2:])))/0x7FFF, -1)
		}
	case AttribSnorm10x3_2:
		v := binary.BigEndian.Uint32(src)
		// x sits in the high lane, z in the low one.
		out[0] = packedNormalLane((v & 0x3FC00000) >> 22)
		out[1] = packedNormalLane((v & 0x000FF000) >> 12)
		out[2] = packedNormalLane((v & 0x000003FC) >> 2)
	case AttribFloat16x2, AttribFloat16x4:
		for i := range n {
			out[i] = texel.Float16ToFloat32(binary.BigEndian.Uint16(src[i*2:]))
		}
	case AttribFloat32, AttribFloat32x2, AttribFloat32x3, AttribFloat32x4:
		for i := range n {
			out[i] = math.Float32frombits(binary.BigEndian.Uint32(src[i*4:]))
		}
	}
	return out
}

// packedNormalLane maps one 8-bit lane of a packed normal to [-1, 1).
// Each lane is read as a fraction of 511 and recentred with wraparound.
func packedNormalLane(lane uint32) float32 {
	return math32.Mod(float32(lane)/511*2+0.5, 1)*2 - 1
}

func decodeIndices(c Cursor, l LOD) ([]uint32, error) {
	if l.PrimitiveType != PrimitiveTriangles {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPrimitiveType, l.PrimitiveType)
	}
	var elem int
	switch l.IndexFormat {
	case IndexU16:
		elem = 2
	case IndexU32:
		elem = 4
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedIndexFormat, l.IndexFormat)
	}
	if l.IndexOffset == 0 {
		return nil, nil
	}
	raw, err := c.Bytes(l.IndexOffset, int(l.IndexSize))
	if err != nil {
		return nil, fmt.Errorf("index buffer: %w", err)
	}

	n := len(raw) / elem
	n -= n % 3 // trailing partial triangles are dropped
	out := make([]uint32, n)
	for i := range out {
		if elem == 2 {
			out[i] = uint32(binary.BigEndian.Uint16(raw[i*2:]))
		} else {
			out[i] = binary.BigEndian.Uint32(raw[i*4:])
		}
	}
	return out, nil
}

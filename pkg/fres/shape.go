package fres

import "fmt"

const (
	shapeMagic = "FSHP"
	lodStride  = 0x1C
)

// PrimitiveType is the GX2 primitive topology of a LOD mesh.
type PrimitiveType uint32

const (
	PrimitivePoints                  PrimitiveType = 0x01
	PrimitiveLines                   PrimitiveType = 0x02
	PrimitiveLineStrip               PrimitiveType = 0x03
	PrimitiveTriangles               PrimitiveType = 0x04
	PrimitiveTriangleFan             PrimitiveType = 0x05
	PrimitiveTriangleStrip           PrimitiveType = 0x06
	PrimitiveLinesAdjacency          PrimitiveType = 0x0a
	PrimitiveLineStripAdjacency      PrimitiveType = 0x0b
	PrimitiveTrianglesAdjacency      PrimitiveType = 0x0c
	PrimitiveTriangleStripAdjacency  PrimitiveType = 0x0d
	PrimitiveRects                   PrimitiveType = 0x11
	PrimitiveLineLoop                PrimitiveType = 0x12
	PrimitiveQuads                   PrimitiveType = 0x13
	PrimitiveQuadStrip               PrimitiveType = 0x14
	PrimitiveTessellateLines         PrimitiveType = 0x82
	PrimitiveTessellateLineStrip     PrimitiveType = 0x83
	PrimitiveTessellateTriangles     PrimitiveType = 0x84
	PrimitiveTessellateTriangleStrip PrimitiveType = 0x86
	PrimitiveTessellateQuads         PrimitiveType = 0x93
	PrimitiveTessellateQuadStrip     PrimitiveType = 0x94
)

func (p PrimitiveType) String() string {
	switch p {
	case PrimitivePoints:
		return "points"
	case PrimitiveLines:
		return "lines"
	case PrimitiveLineStrip:
		return "line_strip"
	case PrimitiveTriangles:
		return "triangles"
	case PrimitiveTriangleFan:
		return "triangle_fan"
	case PrimitiveTriangleStrip:
		return "triangle_strip"
	case PrimitiveLinesAdjacency:
		return "lines_adjacency"
	case PrimitiveLineStripAdjacency:
		return "line_strip_adjacency"
	case PrimitiveTrianglesAdjacency:
		return "triangles_adjacency"
	case PrimitiveTriangleStripAdjacency:
		return "triangle_strip_adjacency"
	case PrimitiveRects:
		return "rects"
	case PrimitiveLineLoop:
		return "line_loop"
	case PrimitiveQuads:
		return "quads"
	case PrimitiveQuadStrip:
		return "quad_strip"
	case PrimitiveTessellateLines:
		return "tessellate_lines"
	case PrimitiveTessellateLineStrip:
		return "tessellate_line_strip"
	case PrimitiveTessellateTriangles:
		return "tessellate_triangles"
	case PrimitiveTessellateTriangleStrip:
		return "tessellate_triangle_strip"
	case PrimitiveTessellateQuads:
		return "tessellate_quads"
	case PrimitiveTessellateQuadStrip:
		return "tessellate_quad_strip"
	}
	return fmt.Sprintf("primitive(0x%x)", uint32(p))
}

// IndexFormat is the element encoding of an index buffer.
type IndexFormat uint32

const (
	IndexU16LE IndexFormat = 0
	IndexU32LE IndexFormat = 1
	IndexU16   IndexFormat = 4
	IndexU32   IndexFormat = 9
)

func (f IndexFormat) String() string {
	switch f {
	case IndexU16LE:
		return "u16_le"
	case IndexU32LE:
		return "u32_le"
	case IndexU16:
		return "u16"
	case IndexU32:
		return "u32"
	}
	return fmt.Sprintf("index(%d)", uint32(f))
}

// LOD is one level-of-detail mesh of a shape.
type LOD struct {
	PrimitiveType   PrimitiveType
	IndexFormat     IndexFormat
	PointCount      uint32
	VisibilityCount uint16
	SkipVertices    uint32
	IndexSize       uint32
	IndexOffset     uint32 // absolute, 0 when absent
}

// Shape is an FSHP record: a mesh bound to one vertex buffer set and one
// material.
type Shape struct {
	Name          string
	Offset        uint32
	SectionIndex  uint16
	MaterialIndex uint16
	BoneIndex     uint16
	VertexIndex   uint16
	SkinCount     uint8
	KeyShapeCount uint8
	// SkinBoneIndices lists the bones this shape is skinned to.
	SkinBoneIndices []uint16
	VertexOffset    uint32 // absolute FVTX offset, 0 when absent
	LODs            []LOD
}

func decodeShape(c Cursor, off uint32) (*Shape, error) {
	magic, err := c.Bytes(off, 4)
	if err != nil {
		return nil, err
	}
	if string(magic) != shapeMagic {
		return nil, fmt.Errorf("%w: shape at 0x%x has magic %q", ErrBadMagic, off, magic)
	}

	r := newFieldReader(c, off)
	s := &Shape{
		Name:          r.name(0x04),
		Offset:        off,
		SectionIndex:  r.u16(0x0C),
		MaterialIndex: r.u16(0x0E),
		BoneIndex:     r.u16(0x10),
		VertexIndex:   r.u16(0x12),
		SkinCount:     r.u8(0x16),
		KeyShapeCount: r.u8(0x18),
		VertexOffset:  r.ptr(0x20),
	}
	numSkinBones := int(r.u16(0x14))
	numLODs := int(r.u8(0x17))
	lodArray := r.ptr(0x24)
	skinArray := r.ptr(0x28)
	if r.err != nil {
		return nil, fmt.Errorf("shape at 0x%x: %w", off, r.err)
	}

	if skinArray != 0 {
		s.SkinBoneIndices = make([]uint16, numSkinBones)
		for i := range s.SkinBoneIndices {
			v, err := c.U16(skinArray + uint32(i)*2)
			if err != nil {
				return nil, fmt.Errorf("shape at 0x%x: skin bones: %w", off, err)
			}
			s.SkinBoneIndices[i] = v
		}
	}
	if lodArray != 0 {
		s.LODs = make([]LOD, 0, numLODs)
		for i := range numLODs {
			lod, err := decodeLOD(c, lodArray+uint32(i)*lodStride)
			if err != nil {
				return nil, fmt.Errorf("shape at 0x%x: lod %d: %w", off, i, err)
			}
			s.LODs = append(s.LODs, lod)
		}
	}
	return s, nil
}

func decodeLOD(c Cursor, off uint32) (LOD, error) {
	r := newFieldReader(c, off)
	lod := LOD{
		PrimitiveType:   PrimitiveType(r.u32(0x00)),
		IndexFormat:     IndexFormat(r.u32(0x04)),
		PointCount:      r.u32(0x08),
		VisibilityCount: r.u16(0x0C),
		SkipVertices:    r.u32(0x18),
	}
	if buf := r.ptr(0x14); buf != 0 {
		br := newFieldReader(c, buf)
		lod.IndexSize = br.u32(0x04)
		lod.IndexOffset = br.ptr(0x14)
		if br.err != nil {
			return LOD{}, br.err
		}
	}
	return lod, r.err
}

package fres

import "fmt"

const modelMagic = "FMDL"

// Model is an FMDL record with its skeleton, vertex buffers, shapes and
// materials decoded.
type Model struct {
	Name          string
	Path          string
	Offset        uint32
	TotalVertices uint32
	ParamCount    uint16

	Skeleton  *Skeleton
	Vertices  []*VertexData
	Shapes    []*Shape
	Materials []*Material

	c Cursor
}

func decodeModel(c Cursor, off uint32) (*Model, error) {
	magic, err := c.Bytes(off, 4)
	if err != nil {
		return nil, err
	}
	if string(magic) != modelMagic {
		return nil, fmt.Errorf("%w: model at 0x%x has magic %q", ErrBadMagic, off, magic)
	}

	r := newFieldReader(c, off)
	m := &Model{
		Name:          r.name(0x04),
		Path:          r.name(0x08),
		Offset:        off,
		ParamCount:    r.u16(0x26),
		TotalVertices: r.u32(0x28),
		c:             c,
	}
	skeleton := r.ptr(0x0C)
	vertexArray := r.ptr(0x10)
	shapeGroup := r.ptr(0x14)
	materialGroup := r.ptr(0x18)
	numVertices := int(r.u16(0x20))
	if r.err != nil {
		return nil, fmt.Errorf("model at 0x%x: %w", off, r.err)
	}

	if skeleton != 0 {
		if m.Skeleton, err = decodeSkeleton(c, skeleton); err != nil {
			return nil, err
		}
	}
	if vertexArray != 0 {
		m.Vertices = make([]*VertexData, 0, numVertices)
		for i := range numVertices {
			v, err := decodeVertexData(c, vertexArray+uint32(i)*vertexStride)
			if err != nil {
				return nil, err
			}
			m.Vertices = append(m.Vertices, v)
		}
	}

	shapes, err := ReadIndexGroup(c, shapeGroup)
	if err != nil {
		return nil, fmt.Errorf("model at 0x%x: shapes: %w", off, err)
	}
	for i := range shapes.Len() {
		e, err := shapes.Entry(i)
		if err != nil {
			return nil, err
		}
		s, err := decodeShape(c, e.Offset)
		if err != nil {
			return nil, err
		}
		s.Name = e.Name
		m.Shapes = append(m.Shapes, s)
	}

	materials, err := ReadIndexGroup(c, materialGroup)
	if err != nil {
		return nil, fmt.Errorf("model at 0x%x: materials: %w", off, err)
	}
	for i := range materials.Len() {
		e, err := materials.Entry(i)
		if err != nil {
			return nil, err
		}
		mat, err := decodeMaterial(c, e.Offset)
		if err != nil {
			return nil, err
		}
		mat.Name = e.Name
		m.Materials = append(m.Materials, mat)
	}
	return m, nil
}

// VertexDataFor returns the vertex buffer set a shape draws from. The
// shape's own pointer wins; its vertex index is the fallback.
func (m *Model) VertexDataFor(s *Shape) (*VertexData, error) {
	if s.VertexOffset != 0 {
		for _, v := range m.Vertices {
			if v.Offset == s.VertexOffset {
				return v, nil
			}
		}
	}
	if int(s.VertexIndex) < len(m.Vertices) {
		return m.Vertices[s.VertexIndex], nil
	}
	return nil, fmt.Errorf("%w: shape %q vertex buffer %d", ErrNotFound, s.Name, s.VertexIndex)
}

// Material returns the material at position i, or nil.
func (m *Model) Material(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return m.Materials[i]
}

// Model decodes entry i of the model group.
func (f *File) Model(i int) (*Model, error) {
	e, err := f.entry(GroupModels, i)
	if err != nil {
		return nil, err
	}
	return f.modelEntry(e)
}

// ModelByName decodes the model called name.
func (f *File) ModelByName(name string) (*Model, error) {
	e, err := f.lookup(GroupModels, name)
	if err != nil {
		return nil, err
	}
	return f.modelEntry(e)
}

func (f *File) modelEntry(e GroupEntry) (*Model, error) {
	m, err := decodeModel(f.c, e.Offset)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", e.Name, err)
	}
	m.Name = e.Name
	return m, nil
}

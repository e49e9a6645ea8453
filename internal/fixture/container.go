package fixture

// Version is the header version word written by Build.
const Version = 0x03040001

// Texture describes an FTEX record. Image and Mips are stored as-is.
type Texture struct {
	Name       string
	Path       string
	Dim        uint32
	Width      uint32
	Height     uint32
	Depth      uint32
	NumMips    uint32
	Format     uint32
	AA         uint32
	TileMode   uint32
	Swizzle    uint32
	CompSel    [4]byte
	MipOffsets []uint32
	Image      []byte
	Mips       []byte
}

// Bone describes one skeleton bone.
type Bone struct {
	Name        string
	Index       int16
	Parent      int16
	Euler       bool
	Scale       [3]float32
	Rotation    [4]float32
	Translation [3]float32
}

// Attrib is one vertex attribute backed by its own buffer.
type Attrib struct {
	Name   string
	Format uint32
	Stride uint16
	Data   []byte
}

// Shape describes an FSHP with a single LOD and its FVTX.
type Shape struct {
	Name          string
	MaterialIndex uint16
	BoneIndex     uint16
	SkinCount     uint8
	VertexCount   uint32
	Attribs       []Attrib
	PrimitiveType uint32
	IndexFormat   uint32
	Indices       []byte
}

// Sampler binds a sampler name to a texture reference slot.
type Sampler struct {
	Name  string
	Index uint8
}

// Param is a shader parameter and its raw big-endian value.
type Param struct {
	Name  string
	Type  uint8
	Index uint16
	Value []byte
}

// Material describes an FMAT. Textures name FTEX records of the same
// container.
type Material struct {
	Name     string
	Textures []string
	Samplers []Sampler
	Params   []Param
}

// Model describes an FMDL.
type Model struct {
	Name          string
	Bones         []Bone
	SmoothIndices []uint16
	InverseBind   [][12]float32
	Shapes        []Shape
	Materials     []Material
}

// Container is the full description passed to Build.
type Container struct {
	Name     string
	Textures []Texture
	Models   []Model
}

// Build assembles c into a container image.
func Build(c Container) []byte {
	b := NewBuilder()
	header := b.Reserve(0x6C)
	b.PutBytes(header, []byte("FRES"))
	b.PutU32(header+0x04, Version)
	b.PutU16(header+0x08, 0xFEFF)
	b.PutU16(header+0x0A, 0x10)
	b.PutU32(header+0x10, 0x2000)
	b.PutName(header+0x14, c.Name)

	texOffsets := make(map[string]uint32, len(c.Textures))
	texEntries := make([]Entry, 0, len(c.Textures))
	for _, t := range c.Textures {
		off := b.texture(t)
		texOffsets[t.Name] = off
		texEntries = append(texEntries, Entry{Name: t.Name, Target: off})
	}
	modelEntries := make([]Entry, 0, len(c.Models))
	for _, m := range c.Models {
		modelEntries = append(modelEntries, Entry{Name: m.Name, Target: b.model(m, texOffsets)})
	}

	if len(modelEntries) > 0 {
		b.PutPtr(header+0x20, b.Group(modelEntries...))
		b.PutU16(header+0x50, uint16(len(modelEntries)))
	}
	if len(texEntries) > 0 {
		b.PutPtr(header+0x24, b.Group(texEntries...))
		b.PutU16(header+0x52, uint16(len(texEntries)))
	}
	b.Align(4)
	b.PutU32(header+0x0C, b.Len())
	return b.Bytes()
}

func (b *Builder) texture(t Texture) uint32 {
	off := b.Reserve(0xC0)
	b.PutBytes(off, []byte("FTEX"))
	b.PutU32(off+0x04, t.Dim)
	b.PutU32(off+0x08, t.Width)
	b.PutU32(off+0x0C, t.Height)
	b.PutU32(off+0x10, t.Depth)
	b.PutU32(off+0x14, t.NumMips)
	b.PutU32(off+0x18, t.Format)
	b.PutU32(off+0x1C, t.AA)
	b.PutU32(off+0x24, uint32(len(t.Image)))
	b.PutU32(off+0x2C, uint32(len(t.Mips)))
	b.PutU32(off+0x34, t.TileMode)
	b.PutU32(off+0x38, t.Swizzle)
	b.PutU32(off+0x3C, 0x200)
	b.PutU32(off+0x40, t.Width)
	for i, v := range t.MipOffsets {
		if i < 13 {
			b.PutU32(off+0x44+uint32(i)*4, v)
		}
	}
	b.PutU32(off+0x7C, t.NumMips)
	b.PutU32(off+0x84, 1)
	b.PutBytes(off+0x88, t.CompSel[:])
	b.PutName(off+0xA8, t.Name)
	b.PutName(off+0xAC, t.Path)
	if len(t.Image) > 0 {
		b.PutPtr(off+0xB0, b.Append(t.Image))
	}
	if len(t.Mips) > 0 {
		b.PutPtr(off+0xB4, b.Append(t.Mips))
	}
	return off
}

func (b *Builder) model(m Model, textures map[string]uint32) uint32 {
	off := b.Reserve(0x30)
	b.PutBytes(off, []byte("FMDL"))
	b.PutName(off+0x04, m.Name)
	b.PutPtr(off+0x0C, b.skeleton(m))

	// FVTX records are contiguous, one per shape.
	vtxArray := b.Reserve(0x20 * len(m.Shapes))
	var total uint32
	shapeEntries := make([]Entry, 0, len(m.Shapes))
	for i, s := range m.Shapes {
		vtx := vtxArray + uint32(i)*0x20
		b.vertexData(vtx, uint16(i), s)
		shapeEntries = append(shapeEntries, Entry{Name: s.Name, Target: b.shape(s, uint16(i), vtx)})
		total += s.VertexCount
	}
	if len(m.Shapes) > 0 {
		b.PutPtr(off+0x10, vtxArray)
		b.PutPtr(off+0x14, b.Group(shapeEntries...))
	}

	matEntries := make([]Entry, 0, len(m.Materials))
	for i, mat := range m.Materials {
		matEntries = append(matEntries, Entry{Name: mat.Name, Target: b.material(mat, uint16(i), textures)})
	}
	if len(matEntries) > 0 {
		b.PutPtr(off+0x18, b.Group(matEntries...))
	}
	b.PutU16(off+0x20, uint16(len(m.Shapes)))
	b.PutU16(off+0x22, uint16(len(m.Shapes)))
	b.PutU16(off+0x24, uint16(len(m.Materials)))
	b.PutU32(off+0x28, total)
	return off
}

func (b *Builder) skeleton(m Model) uint32 {
	if len(m.Bones) == 0 {
		return 0
	}
	off := b.Reserve(0x20)
	b.PutBytes(off, []byte("FSKL"))
	b.PutU16(off+0x08, uint16(len(m.Bones)))
	b.PutU16(off+0x0A, uint16(len(m.SmoothIndices)))

	bones := b.Reserve(0x40 * len(m.Bones))
	entries := make([]Entry, 0, len(m.Bones))
	for i, bn := range m.Bones {
		bo := bones + uint32(i)*0x40
		b.PutName(bo, bn.Name)
		b.PutU16(bo+0x04, uint16(bn.Index))
		b.PutU16(bo+0x06, uint16(bn.Parent))
		b.PutU16(bo+0x08, 0xFFFF)
		b.PutU16(bo+0x0A, 0xFFFF)
		b.PutU16(bo+0x0C, 0xFFFF)
		if bn.Euler {
			b.PutU32(bo+0x10, 1<<12)
		}
		for j, v := range bn.Scale {
			b.PutF32(bo+0x14+uint32(j)*4, v)
		}
		for j, v := range bn.Rotation {
			b.PutF32(bo+0x20+uint32(j)*4, v)
		}
		for j, v := range bn.Translation {
			b.PutF32(bo+0x30+uint32(j)*4, v)
		}
		entries = append(entries, Entry{Name: bn.Name, Target: bo})
	}
	b.PutPtr(off+0x10, b.Group(entries...))
	b.PutPtr(off+0x14, bones)

	if len(m.SmoothIndices) > 0 {
		arr := b.Reserve(2 * len(m.SmoothIndices))
		for i, v := range m.SmoothIndices {
			b.PutU16(arr+uint32(i)*2, v)
		}
		b.PutPtr(off+0x18, arr)
	}
	if len(m.InverseBind) > 0 {
		arr := b.Reserve(0x30 * len(m.InverseBind))
		for i, mtx := range m.InverseBind {
			for j, v := range mtx {
				b.PutF32(arr+uint32(i)*0x30+uint32(j)*4, v)
			}
		}
		b.PutPtr(off+0x1C, arr)
	}
	return off
}

func (b *Builder) vertexData(off uint32, section uint16, s Shape) {
	b.PutBytes(off, []byte("FVTX"))
	b.PutU8(off+0x04, uint8(len(s.Attribs)))
	b.PutU8(off+0x05, uint8(len(s.Attribs)))
	b.PutU16(off+0x06, section)
	b.PutU32(off+0x08, s.VertexCount)
	b.PutU8(off+0x0C, s.SkinCount)
	if len(s.Attribs) == 0 {
		return
	}

	attribs := b.Reserve(0x0C * len(s.Attribs))
	buffers := b.Reserve(0x18 * len(s.Attribs))
	entries := make([]Entry, 0, len(s.Attribs))
	for i, a := range s.Attribs {
		ao := attribs + uint32(i)*0x0C
		b.PutName(ao, a.Name)
		b.PutU8(ao+0x04, uint8(i))
		b.PutU32(ao+0x08, a.Format)
		entries = append(entries, Entry{Name: a.Name, Target: ao})

		bo := buffers + uint32(i)*0x18
		b.PutU32(bo+0x04, uint32(len(a.Data)))
		b.PutU16(bo+0x0C, a.Stride)
		b.PutPtr(bo+0x14, b.Append(a.Data))
	}
	b.PutPtr(off+0x10, attribs)
	b.PutPtr(off+0x14, b.Group(entries...))
	b.PutPtr(off+0x18, buffers)
}

func (b *Builder) shape(s Shape, section uint16, vtx uint32) uint32 {
	off := b.Reserve(0x30)
	b.PutBytes(off, []byte("FSHP"))
	b.PutName(off+0x04, s.Name)
	b.PutU16(off+0x0C, section)
	b.PutU16(off+0x0E, s.MaterialIndex)
	b.PutU16(off+0x10, s.BoneIndex)
	b.PutU16(off+0x12, section)
	b.PutU8(off+0x16, s.SkinCount)
	b.PutU8(off+0x17, 1)
	b.PutPtr(off+0x20, vtx)

	lod := b.Reserve(0x1C)
	b.PutU32(lod, s.PrimitiveType)
	b.PutU32(lod+0x04, s.IndexFormat)
	idx := b.Reserve(0x18)
	b.PutU32(idx+0x04, uint32(len(s.Indices)))
	if len(s.Indices) > 0 {
		b.PutPtr(idx+0x14, b.Append(s.Indices))
	}
	b.PutPtr(lod+0x14, idx)
	b.PutPtr(off+0x24, lod)
	return off
}

func (b *Builder) material(m Material, section uint16, textures map[string]uint32) uint32 {
	off := b.Reserve(0x40)
	b.PutBytes(off, []byte("FMAT"))
	b.PutName(off+0x04, m.Name)
	b.PutU16(off+0x0C, section)
	b.PutU8(off+0x10, uint8(len(m.Textures)))
	b.PutU8(off+0x11, uint8(len(m.Samplers)))
	b.PutU16(off+0x12, uint16(len(m.Params)))

	if len(m.Textures) > 0 {
		refs := b.Reserve(8 * len(m.Textures))
		for i, name := range m.Textures {
			b.PutName(refs+uint32(i)*8, name)
			b.PutPtr(refs+uint32(i)*8+4, textures[name])
		}
		b.PutPtr(off+0x28, refs)
	}

	if len(m.Samplers) > 0 {
		entries := make([]Entry, 0, len(m.Samplers))
		for _, s := range m.Samplers {
			so := b.Reserve(0x18)
			b.PutName(so, s.Name)
			b.PutU8(so+0x14, s.Index)
			entries = append(entries, Entry{Name: s.Name, Target: so})
		}
		b.PutPtr(off+0x30, b.Group(entries...))
	}

	if len(m.Params) > 0 {
		var data []byte
		entries := make([]Entry, 0, len(m.Params))
		for _, p := range m.Params {
			po := b.Reserve(0x14)
			b.PutU8(po, p.Type)
			b.PutU16(po+0x02, uint16(len(data)))
			b.PutU16(po+0x0C, p.Index)
			b.PutName(po+0x10, p.Name)
			data = append(data, p.Value...)
			entries = append(entries, Entry{Name: p.Name, Target: po})
		}
		b.PutPtr(off+0x38, b.Group(entries...))
		b.PutPtr(off+0x3C, b.Append(data))
	}
	return off
}

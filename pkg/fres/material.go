package fres

import "fmt"

const (
	materialMagic   = "FMAT"
	textureRefSize  = 0x08
	samplerIndexOff = 0x14
)

// TextureRef binds a material slot to an FTEX record.
type TextureRef struct {
	Name          string
	TextureOffset uint32 // absolute, 0 when absent
}

// Sampler is a texture sampler of a material. Index selects the texture
// reference it samples, which need not equal its group position.
type Sampler struct {
	Name   string
	Offset uint32
	Index  int
}

func (s Sampler) StoredIndex() int { return s.Index }

// MaterialParamType is the value type of a shader parameter.
type MaterialParamType uint8

const (
	ParamBool MaterialParamType = iota
	ParamBool2
	ParamBool3
	ParamBool4
	ParamInt
	ParamInt2
	ParamInt3
	ParamInt4
	ParamUint
	ParamUint2
	ParamUint3
	ParamUint4
	ParamFloat
	ParamFloat2
	ParamFloat3
	ParamFloat4
	ParamMatrix2x2
	ParamMatrix2x3
	ParamMatrix2x4
	ParamMatrix3x2
	ParamMatrix3x3
	ParamMatrix3x4
	ParamMatrix4x2
	ParamMatrix4x3
	ParamMatrix4x4
	ParamSRT2D
	ParamSRT3D
	ParamTexSRT
	ParamTexSRTMatrix
)

var paramTypeNames = [...]string{
	"bool", "bool2", "bool3", "bool4",
	"int", "int2", "int3", "int4",
	"uint", "uint2", "uint3", "uint4",
	"float", "float2", "float3", "float4",
	"float2x2", "float2x3", "float2x4",
	"float3x2", "float3x3", "float3x4",
	"float4x2", "float4x3", "float4x4",
	"srt2d", "srt3d", "texsrt", "texsrt_mtx",
}

func (t MaterialParamType) String() string {
	if int(t) < len(paramTypeNames) {
		return paramTypeNames[t]
	}
	return fmt.Sprintf("param(%d)", uint8(t))
}

// Size is the byte size of one value, or 0 for unknown types.
func (t MaterialParamType) Size() int {
	switch {
	case t <= ParamFloat4:
		return 4 * (int(t)%4 + 1)
	case t <= ParamMatrix4x4:
		m := int(t - ParamMatrix2x2)
		rows, cols := m/3+2, m%3+2
		return rows * cols * 4
	case t == ParamSRT2D:
		return 20
	case t == ParamSRT3D:
		return 36
	case t == ParamTexSRT:
		return 24
	case t == ParamTexSRTMatrix:
		return 28
	}
	return 0
}

// MaterialParam is a shader parameter. Its value lives in the material's
// parameter data block at DataOffset.
type MaterialParam struct {
	Name       string
	Type       MaterialParamType
	DataOffset uint16
	Index      int
}

func (p MaterialParam) StoredIndex() int { return p.Index }

// Material is an FMAT record.
type Material struct {
	Name         string
	Offset       uint32
	SectionIndex uint16
	Textures     []TextureRef
	Samplers     []Sampler
	Params       []MaterialParam
	ParamData    uint32 // absolute offset of the value block, 0 when absent

	c        Cursor
	samplers IndexGroup
	params   IndexGroup
}

func decodeMaterial(c Cursor, off uint32) (*Material, error) {
	magic, err := c.Bytes(off, 4)
	if err != nil {
		return nil, err
	}
	if string(magic) != materialMagic {
		return nil, fmt.Errorf("%w: material at 0x%x has magic %q", ErrBadMagic, off, magic)
	}

	r := newFieldReader(c, off)
	m := &Material{
		Name:         r.name(0x04),
		Offset:       off,
		SectionIndex: r.u16(0x0C),
		c:            c,
	}
	numTextures := int(r.u8(0x10))
	texArray := r.ptr(0x28)
	samplerGroup := r.ptr(0x30)
	paramGroup := r.ptr(0x38)
	m.ParamData = r.ptr(0x3C)
	if r.err != nil {
		return nil, fmt.Errorf("material at 0x%x: %w", off, r.err)
	}

	if texArray != 0 {
		m.Textures = make([]TextureRef, 0, numTextures)
		for i := range numTextures {
			tr := newFieldReader(c, texArray+uint32(i)*textureRefSize)
			ref := TextureRef{Name: tr.name(0), TextureOffset: tr.ptr(4)}
			if tr.err != nil {
				return nil, fmt.Errorf("material at 0x%x: texture ref %d: %w", off, i, tr.err)
			}
			m.Textures = append(m.Textures, ref)
		}
	}

	if m.samplers, err = ReadIndexGroup(c, samplerGroup); err != nil {
		return nil, fmt.Errorf("material at 0x%x: samplers: %w", off, err)
	}
	for i := range m.samplers.Len() {
		e, err := m.samplers.Entry(i)
		if err != nil {
			return nil, fmt.Errorf("material at 0x%x: samplers: %w", off, err)
		}
		s, err := decodeSampler(c, e)
		if err != nil {
			return nil, err
		}
		m.Samplers = append(m.Samplers, s)
	}

	if m.params, err = ReadIndexGroup(c, paramGroup); err != nil {
		return nil, fmt.Errorf("material at 0x%x: params: %w", off, err)
	}
	for i := range m.params.Len() {
		e, err := m.params.Entry(i)
		if err != nil {
			return nil, fmt.Errorf("material at 0x%x: params: %w", off, err)
		}
		p, err := decodeParam(c, e)
		if err != nil {
			return nil, err
		}
		m.Params = append(m.Params, p)
	}
	return m, nil
}

func decodeSampler(c Cursor, e GroupEntry) (Sampler, error) {
	idx, err := c.U8(e.Offset + samplerIndexOff)
	if err != nil {
		return Sampler{}, fmt.Errorf("sampler %q: %w", e.Name, err)
	}
	return Sampler{Name: e.Name, Offset: e.Offset, Index: int(idx)}, nil
}

func decodeParam(c Cursor, e GroupEntry) (MaterialParam, error) {
	r := newFieldReader(c, e.Offset)
	p := MaterialParam{
		Name:       e.Name,
		Type:       MaterialParamType(r.u8(0x00)),
		DataOffset: r.u16(0x02),
		Index:      int(r.u16(0x0C)),
	}
	if r.err != nil {
		return MaterialParam{}, fmt.Errorf("param %q: %w", e.Name, r.err)
	}
	return p, nil
}

// SamplerByIndex finds the sampler whose stored index is index.
func (m *Material) SamplerByIndex(index int) (Sampler, bool, error) {
	s, _, ok, err := LookupByIndex(m.samplers, decodeSampler, index)
	return s, ok, err
}

// ParamByIndex finds the parameter whose stored index is index.
func (m *Material) ParamByIndex(index int) (MaterialParam, bool, error) {
	p, _, ok, err := LookupByIndex(m.params, decodeParam, index)
	return p, ok, err
}

// TextureForSampler resolves the texture reference sampled by the sampler
// called name, e.g. "_a0" for the albedo map.
func (m *Material) TextureForSampler(name string) (TextureRef, bool) {
	for _, s := range m.Samplers {
		if s.Name != name {
			continue
		}
		if s.Index < 0 || s.Index >= len(m.Textures) {
			return TextureRef{}, false
		}
		return m.Textures[s.Index], true
	}
	return TextureRef{}, false
}

// ParamValue returns the raw big-endian bytes of p.
func (m *Material) ParamValue(p MaterialParam) ([]byte, error) {
	n := p.Type.Size()
	if n == 0 {
		return nil, fmt.Errorf("param %q: unknown type %d", p.Name, uint8(p.Type))
	}
	if m.ParamData == 0 {
		return nil, fmt.Errorf("%w: material %q has no parameter data", ErrNotFound, m.Name)
	}
	return m.c.Bytes(m.ParamData+uint32(p.DataOffset), n)
}

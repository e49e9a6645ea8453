package fixture

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/samcharles93/bfres/pkg/gx2"
)

// WhiteBC1 is a single opaque white BC1 block.
var WhiteBC1 = []byte{0xff, 0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

var identitySel = [4]byte{0, 1, 2, 3}

// BC1Texture is a 4x4 white BC1 texture stored linear-aligned.
func BC1Texture(name string) Texture {
	return Texture{
		Name:     name,
		Dim:      uint32(gx2.Dim2D),
		Width:    4,
		Height:   4,
		Depth:    1,
		NumMips:  1,
		Format:   uint32(gx2.FormatBC1Unorm),
		TileMode: uint32(gx2.TileModeLinearAligned),
		CompSel:  identitySel,
		Image:    bytes.Clone(WhiteBC1),
	}
}

// SolidTexture is a uniformly coloured RGBA8 texture with numMips levels
// laid out in tile mode mode. Every level blob is filled with px, so the
// result decodes to px whatever the swizzle.
func SolidTexture(name string, width, height, numMips uint32, mode gx2.TileMode, px [4]byte) Texture {
	t := Texture{
		Name:     name,
		Dim:      uint32(gx2.Dim2D),
		Width:    width,
		Height:   height,
		Depth:    1,
		NumMips:  numMips,
		Format:   uint32(gx2.FormatR8G8B8A8Unorm),
		TileMode: uint32(mode),
		CompSel:  identitySel,
	}
	s := gx2.Surface{
		Dim:      gx2.Dim2D,
		Width:    width,
		Height:   height,
		Depth:    1,
		NumMips:  numMips,
		Format:   gx2.FormatR8G8B8A8Unorm,
		TileMode: mode,
	}

	var level0 uint32
	for level := uint32(0); level < numMips; level++ {
		info, err := gx2.ComputeSurfaceInfo(s, level)
		if err != nil {
			panic(err)
		}
		blob := bytes.Repeat(px[:], int(info.SurfSize)/4)
		switch {
		case level == 0:
			level0 = info.SurfSize
			t.Image = blob
		case level == 1:
			t.MipOffsets = append(t.MipOffsets, level0)
			t.Mips = append(t.Mips, blob...)
		default:
			t.MipOffsets = append(t.MipOffsets, uint32(len(t.Mips)))
			t.Mips = append(t.Mips, blob...)
		}
	}
	return t
}

// Float32s encodes vs big-endian.
func Float32s(vs ...float32) []byte {
	out := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.BigEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// Uint16s encodes vs big-endian.
func Uint16s(vs ...uint16) []byte {
	out := make([]byte, 2*len(vs))
	for i, v := range vs {
		binary.BigEndian.PutUint16(out[i*2:], v)
	}
	return out
}

// Uint32s encodes vs big-endian.
func Uint32s(vs ...uint32) []byte {
	out := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// QuadModel is a textured, rigidly skinned quad: four vertices, two
// triangles, one material sampling albedo from albedo. The two bones are
// stored with their indices swapped relative to list order.
func QuadModel(name, albedo string) Model {
	return Model{
		Name: name,
		Bones: []Bone{
			{Name: "child", Index: 1, Parent: 0, Scale: [3]float32{1, 1, 1}, Rotation: [4]float32{0, 0, 0, 1}, Translation: [3]float32{0, 2, 0}},
			{Name: "root", Index: 0, Parent: -1, Euler: true, Scale: [3]float32{1, 1, 1}},
		},
		SmoothIndices: []uint16{0, 1},
		InverseBind: [][12]float32{
			{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0},
			{1, 0, 0, 0, 0, 1, 0, -2, 0, 0, 1, 0},
		},
		Shapes: []Shape{{
			Name:          "quad",
			MaterialIndex: 0,
			BoneIndex:     1,
			VertexCount:   4,
			Attribs: []Attrib{
				{Name: "_p0", Format: 0x0811, Stride: 12, Data: Float32s(
					0, 0, 0,
					1, 0, 0,
					1, 1, 0,
					0, 1, 0,
				)},
				// Packed normals: 127 in the high lane decodes to x ~+1.
				{Name: "_n0", Format: 0x020B, Stride: 4, Data: Uint32s(127<<22, 127<<22, 127<<22, 127<<22)},
				// Half floats 0, 1.
				{Name: "_u0", Format: 0x0808, Stride: 4, Data: Uint16s(
					0x0000, 0x0000,
					0x3c00, 0x0000,
					0x3c00, 0x3c00,
					0x0000, 0x3c00,
				)},
			},
			PrimitiveType: 4,
			IndexFormat:   4,
			Indices:       Uint16s(0, 1, 2, 0, 2, 3),
		}},
		Materials: []Material{{
			Name:     "mat",
			Textures: []string{"unused", albedo},
			Samplers: []Sampler{{Name: "_n0", Index: 0}, {Name: "_a0", Index: 1}},
			Params: []Param{
				{Name: "gsys_alpha", Type: 12, Index: 1, Value: Float32s(0.5)},
				{Name: "tint", Type: 15, Index: 0, Value: Float32s(1, 0.5, 0.25, 1)},
			},
		}},
	}
}

package fres

import (
	"fmt"

	"github.com/samcharles93/bfres/pkg/gx2"
)

const (
	textureMagic = "FTEX"
	numMipOffset = 13
)

// Texture is an FTEX record: a GX2 surface plus its view, component
// selector and data pointers.
type Texture struct {
	Name   string
	Path   string
	Offset uint32

	Surface   gx2.Surface
	Use       uint32
	ImageSize uint32
	MipSize   uint32
	Alignment uint32
	Pitch     uint32
	// MipOffsets are the stored offsets of levels 1 and up. The first is
	// measured from the image blob, the rest from the mip blob.
	MipOffsets [numMipOffset]uint32

	ViewFirstMip   uint32
	ViewNumMips    uint32
	ViewFirstSlice uint32
	ViewNumSlices  uint32
	CompSel        [4]byte

	ImageOffset uint32 // absolute, 0 when absent
	MipOffset   uint32 // absolute, 0 when absent

	c Cursor
}

func decodeTexture(c Cursor, off uint32) (*Texture, error) {
	magic, err := c.Bytes(off, 4)
	if err != nil {
		return nil, err
	}
	if string(magic) != textureMagic {
		return nil, fmt.Errorf("%w: texture at 0x%x has magic %q", ErrBadMagic, off, magic)
	}

	r := newFieldReader(c, off)
	t := &Texture{
		Offset: off,
		Surface: gx2.Surface{
			Dim:      gx2.SurfaceDim(r.u32(0x04)),
			Width:    r.u32(0x08),
			Height:   r.u32(0x0C),
			Depth:    r.u32(0x10),
			NumMips:  r.u32(0x14),
			Format:   gx2.SurfaceFormat(r.u32(0x18)),
			AA:       r.u32(0x1C),
			TileMode: gx2.TileMode(r.u32(0x34)),
			Swizzle:  r.u32(0x38),
		},
		Use:            r.u32(0x20),
		ImageSize:      r.u32(0x24),
		MipSize:        r.u32(0x2C),
		Alignment:      r.u32(0x3C),
		Pitch:          r.u32(0x40),
		ViewFirstMip:   r.u32(0x78),
		ViewNumMips:    r.u32(0x7C),
		ViewFirstSlice: r.u32(0x80),
		ViewNumSlices:  r.u32(0x84),
		Name:           r.name(0xA8),
		Path:           r.name(0xAC),
		ImageOffset:    r.ptr(0xB0),
		MipOffset:      r.ptr(0xB4),
		c:              c,
	}
	for i := range t.MipOffsets {
		t.MipOffsets[i] = r.u32(0x44 + uint32(i)*4)
	}
	copy(t.CompSel[:], r.bytes(0x88, 4))
	if r.err != nil {
		return nil, fmt.Errorf("texture at 0x%x: %w", off, r.err)
	}
	return t, nil
}

// ImageData is the level 0 blob.
func (t *Texture) ImageData() ([]byte, error) {
	if t.ImageOffset == 0 {
		return nil, fmt.Errorf("%w: texture %q has no image data", ErrNotFound, t.Name)
	}
	return t.c.Bytes(t.ImageOffset, int(t.ImageSize))
}

// MipData is the blob holding levels 1 and up. It is empty when the
// texture has no mip chain.
func (t *Texture) MipData() ([]byte, error) {
	if t.MipOffset == 0 || t.MipSize == 0 {
		return nil, nil
	}
	return t.c.Bytes(t.MipOffset, int(t.MipSize))
}

// Texture decodes entry i of the texture group.
func (f *File) Texture(i int) (*Texture, error) {
	e, err := f.entry(GroupTextures, i)
	if err != nil {
		return nil, err
	}
	return f.textureEntry(e)
}

// TextureByName decodes the texture called name.
func (f *File) TextureByName(name string) (*Texture, error) {
	e, err := f.lookup(GroupTextures, name)
	if err != nil {
		return nil, err
	}
	return f.textureEntry(e)
}

// TextureAt decodes the texture record at an absolute offset, as referenced
// by a material.
func (f *File) TextureAt(off uint32) (*Texture, error) {
	return decodeTexture(f.c, off)
}

func (f *File) textureEntry(e GroupEntry) (*Texture, error) {
	t, err := decodeTexture(f.c, e.Offset)
	if err != nil {
		return nil, err
	}
	// The group key is authoritative; the record name may be absent.
	t.Name = e.Name
	return t, nil
}

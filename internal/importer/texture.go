package importer

import (
	"errors"
	"fmt"

	"github.com/samcharles93/bfres/pkg/fres"
	"github.com/samcharles93/bfres/pkg/gx2"
	"github.com/samcharles93/bfres/pkg/texel"
)

var (
	ErrMipCountExceeded       = errors.New("importer: more than 13 sub-levels")
	ErrUnsupportedSampleCount = errors.New("importer: multisampled surface")
	ErrUnsupportedDepth       = errors.New("importer: surface depth is not 1")
	ErrBadMipLayout           = errors.New("importer: mip offset outside the mip data")
)

// maxMipLevels is level 0 plus the 13 entries of the mip offset table.
const maxMipLevels = 14

// MipLevel is the geometry of one stored mip level. Offset is relative to
// the image blob for level 0 and to the mip blob otherwise.
type MipLevel struct {
	Level    uint32
	Width    uint32
	Height   uint32
	Pitch    uint32
	TileMode gx2.TileMode
	SurfSize uint32
	Offset   uint32

	info gx2.SurfaceInfo
}

// Texture is a decoded texture. Levels[0] is the base image; further
// levels are present only when all mips were requested.
type Texture struct {
	Name    string
	Surface gx2.Surface
	Mips    []MipLevel
	Levels  []*texel.Image
	// Skipped counts elements the deswizzler could not place because the
	// stored blob was shorter than the computed layout.
	Skipped int
}

// Validate checks the restrictions the pipeline places on a surface
// before any layout is computed.
func Validate(tex *fres.Texture) error {
	s := tex.Surface
	if s.NumMips > maxMipLevels {
		return fmt.Errorf("%w: %d levels", ErrMipCountExceeded, s.NumMips)
	}
	if s.AA != 0 {
		return fmt.Errorf("%w: aa mode %d", ErrUnsupportedSampleCount, s.AA)
	}
	if !texel.Supported(s.Format) {
		return fmt.Errorf("%w: %s", gx2.ErrUnsupportedFormat, s.Format)
	}
	return nil
}

// MipLevels computes the layout and blob offset of every stored level.
func MipLevels(tex *fres.Texture) ([]MipLevel, error) {
	return mipLevels(tex, tex.Surface.NumMips)
}

// mipLevels lays out the first count levels of tex; offsets of later
// levels are never looked at.
func mipLevels(tex *fres.Texture, count uint32) ([]MipLevel, error) {
	if err := Validate(tex); err != nil {
		return nil, err
	}
	s := tex.Surface
	count = max(1, min(count, s.NumMips))
	out := make([]MipLevel, 0, count)
	var base uint32
	for level := uint32(0); level < count; level++ {
		info, err := gx2.ComputeSurfaceInfo(s, level)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", level, err)
		}
		if level == 0 {
			if info.Depth != 1 {
				return nil, fmt.Errorf("%w: depth %d", ErrUnsupportedDepth, info.Depth)
			}
			base = info.SurfSize
		}

		var off uint32
		switch {
		case level == 1:
			// The first table entry counts from the start of the image blob.
			if tex.MipOffsets[0] < base {
				return nil, fmt.Errorf("%w: mip offset 0x%x below base size 0x%x", ErrBadMipLayout, tex.MipOffsets[0], base)
			}
			off = tex.MipOffsets[0] - base
		case level > 1:
			off = tex.MipOffsets[level-1]
		}
		out = append(out, MipLevel{
			Level:    level,
			Width:    max(1, s.Width>>level),
			Height:   max(1, s.Height>>level),
			Pitch:    info.Pitch,
			TileMode: info.TileMode,
			SurfSize: info.SurfSize,
			Offset:   off,
			info:     info,
		})
	}
	return out, nil
}

// DecodeTexture runs the full pipeline on tex: layout, deswizzle and texel
// decode. Only level 0 is decoded unless allMips is set, and Mips then
// holds level 0 alone.
func DecodeTexture(tex *fres.Texture, allMips bool) (*Texture, error) {
	count := uint32(1)
	if allMips {
		count = tex.Surface.NumMips
	}
	mips, err := mipLevels(tex, count)
	if err != nil {
		return nil, err
	}
	image, err := tex.ImageData()
	if err != nil {
		return nil, err
	}
	var mipBlob []byte
	if len(mips) > 1 {
		if mipBlob, err = tex.MipData(); err != nil {
			return nil, err
		}
	}

	out := &Texture{Name: tex.Name, Surface: tex.Surface, Mips: mips}
	sel := texel.ComponentSelector(tex.CompSel)
	for _, m := range mips {
		blob := image
		if m.Level > 0 {
			blob = mipBlob
		}
		img, skipped, err := decodeLevel(tex.Surface, m, blob, sel)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", m.Level, err)
		}
		out.Levels = append(out.Levels, img)
		out.Skipped += skipped
	}
	return out, nil
}

func decodeLevel(s gx2.Surface, m MipLevel, blob []byte, sel texel.ComponentSelector) (*texel.Image, int, error) {
	if uint64(m.Offset) > uint64(len(blob)) {
		return nil, 0, fmt.Errorf("%w: level offset 0x%x past blob of 0x%x", ErrBadMipLayout, m.Offset, len(blob))
	}
	end := min(uint64(m.Offset)+uint64(m.SurfSize), uint64(len(blob)))
	tiled := blob[m.Offset:end]

	p := gx2.LevelSwizzleParams(s, m.info, m.Level)
	linear, stats := gx2.Deswizzle(p, tiled)
	img, err := texel.Decode(s.Format, int(m.Width), int(m.Height), linear, sel)
	if err != nil {
		return nil, stats.Skipped, err
	}
	return img, stats.Skipped, nil
}

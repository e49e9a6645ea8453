package gx2

import "fmt"

// SurfaceFormat is a GX2 surface format code. The low six bits select the
// hardware format, bits 8-11 the numeric interpretation.
type SurfaceFormat uint32

const (
	FormatInvalid SurfaceFormat = 0x000

	FormatR8Unorm SurfaceFormat = 0x001
	FormatR8Uint  SurfaceFormat = 0x101
	FormatR8Snorm SurfaceFormat = 0x201
	FormatR8Sint  SurfaceFormat = 0x301

	FormatR4G4Unorm SurfaceFormat = 0x002

	FormatR16Unorm SurfaceFormat = 0x005
	FormatR16Uint  SurfaceFormat = 0x105
	FormatR16Snorm SurfaceFormat = 0x205
	FormatR16Sint  SurfaceFormat = 0x305
	FormatR16Float SurfaceFormat = 0x806

	FormatR8G8Unorm SurfaceFormat = 0x007
	FormatR8G8Uint  SurfaceFormat = 0x107
	FormatR8G8Snorm SurfaceFormat = 0x207
	FormatR8G8Sint  SurfaceFormat = 0x307

	FormatR5G6B5Unorm   SurfaceFormat = 0x008
	FormatR5G5B5A1Unorm SurfaceFormat = 0x00a
	FormatR4G4B4A4Unorm SurfaceFormat = 0x00b
	FormatA1B5G5R5Unorm SurfaceFormat = 0x00c

	FormatR32Uint  SurfaceFormat = 0x10d
	FormatR32Sint  SurfaceFormat = 0x30d
	FormatR32Float SurfaceFormat = 0x80e

	FormatR16G16Unorm SurfaceFormat = 0x00f
	FormatR16G16Uint  SurfaceFormat = 0x10f
	FormatR16G16Snorm SurfaceFormat = 0x20f
	FormatR16G16Sint  SurfaceFormat = 0x30f
	FormatR16G16Float SurfaceFormat = 0x810

	FormatR11G11B10Float SurfaceFormat = 0x816

	FormatR10G10B10A2Unorm SurfaceFormat = 0x019
	FormatR10G10B10A2Uint  SurfaceFormat = 0x119
	FormatR10G10B10A2Snorm SurfaceFormat = 0x219
	FormatR10G10B10A2Sint  SurfaceFormat = 0x319

	FormatR8G8B8A8Unorm SurfaceFormat = 0x01a
	FormatR8G8B8A8Uint  SurfaceFormat = 0x11a
	FormatR8G8B8A8Snorm SurfaceFormat = 0x21a
	FormatR8G8B8A8Sint  SurfaceFormat = 0x31a
	FormatR8G8B8A8SRGB  SurfaceFormat = 0x41a

	FormatA2B10G10R10Unorm SurfaceFormat = 0x01b
	FormatA2B10G10R10Uint  SurfaceFormat = 0x11b

	FormatR32G32Uint  SurfaceFormat = 0x11d
	FormatR32G32Sint  SurfaceFormat = 0x31d
	FormatR32G32Float SurfaceFormat = 0x81e

	FormatR16G16B16A16Unorm SurfaceFormat = 0x01f
	FormatR16G16B16A16Uint  SurfaceFormat = 0x11f
	FormatR16G16B16A16Snorm SurfaceFormat = 0x21f
	FormatR16G16B16A16Sint  SurfaceFormat = 0x31f
	FormatR16G16B16A16Float SurfaceFormat = 0x820

	FormatR32G32B32A32Uint  SurfaceFormat = 0x122
	FormatR32G32B32A32Sint  SurfaceFormat = 0x322
	FormatR32G32B32A32Float SurfaceFormat = 0x823

	FormatBC1Unorm SurfaceFormat = 0x031
	FormatBC1SRGB  SurfaceFormat = 0x431
	FormatBC2Unorm SurfaceFormat = 0x032
	FormatBC2SRGB  SurfaceFormat = 0x432
	FormatBC3Unorm SurfaceFormat = 0x033
	FormatBC3SRGB  SurfaceFormat = 0x433
	FormatBC4Unorm SurfaceFormat = 0x034
	FormatBC4Snorm SurfaceFormat = 0x234
	FormatBC5Unorm SurfaceFormat = 0x035
	FormatBC5Snorm SurfaceFormat = 0x235
)

var formatNames = map[SurfaceFormat]string{
	FormatInvalid:           "invalid",
	FormatR8Unorm:           "r8_unorm",
	FormatR8Uint:            "r8_uint",
	FormatR8Snorm:           "r8_snorm",
	FormatR8Sint:            "r8_sint",
	FormatR4G4Unorm:         "r4_g4_unorm",
	FormatR16Unorm:          "r16_unorm",
	FormatR16Uint:           "r16_uint",
	FormatR16Snorm:          "r16_snorm",
	FormatR16Sint:           "r16_sint",
	FormatR16Float:          "r16_float",
	FormatR8G8Unorm:         "r8_g8_unorm",
	FormatR8G8Uint:          "r8_g8_uint",
	FormatR8G8Snorm:         "r8_g8_snorm",
	FormatR8G8Sint:          "r8_g8_sint",
	FormatR5G6B5Unorm:       "r5_g6_b5_unorm",
	FormatR5G5B5A1Unorm:     "r5_g5_b5_a1_unorm",
	FormatR4G4B4A4Unorm:     "r4_g4_b4_a4_unorm",
	FormatA1B5G5R5Unorm:     "a1_b5_g5_r5_unorm",
	FormatR32Uint:           "r32_uint",
	FormatR32Sint:           "r32_sint",
	FormatR32Float:          "r32_float",
	FormatR16G16Unorm:       "r16_g16_unorm",
	FormatR16G16Uint:        "r16_g16_uint",
	FormatR16G16Snorm:       "r16_g16_snorm",
	FormatR16G16Sint:        "r16_g16_sint",
	FormatR16G16Float:       "r16_g16_float",
	FormatR11G11B10Float:    "r11_g11_b10_float",
	FormatR10G10B10A2Unorm:  "r10_g10_b10_a2_unorm",
	FormatR10G10B10A2Uint:   "r10_g10_b10_a2_uint",
	FormatR10G10B10A2Snorm:  "r10_g10_b10_a2_snorm",
	FormatR10G10B10A2Sint:   "r10_g10_b10_a2_sint",
	FormatR8G8B8A8Unorm:     "r8_g8_b8_a8_unorm",
	FormatR8G8B8A8Uint:      "r8_g8_b8_a8_uint",
	FormatR8G8B8A8Snorm:     "r8_g8_b8_a8_snorm",
	FormatR8G8B8A8Sint:      "r8_g8_b8_a8_sint",
	FormatR8G8B8A8SRGB:      "r8_g8_b8_a8_srgb",
	FormatA2B10G10R10Unorm:  "a2_b10_g10_r10_unorm",
	FormatA2B10G10R10Uint:   "a2_b10_g10_r10_uint",
	FormatR32G32Uint:        "r32_g32_uint",
	FormatR32G32Sint:        "r32_g32_sint",
	FormatR32G32Float:       "r32_g32_float",
	FormatR16G16B16A16Unorm: "r16_g16_b16_a16_unorm",
	FormatR16G16B16A16Uint:  "r16_g16_b16_a16_uint",
	FormatR16G16B16A16Snorm: "r16_g16_b16_a16_snorm",
	FormatR16G16B16A16Sint:  "r16_g16_b16_a16_sint",
	FormatR16G16B16A16Float: "r16_g16_b16_a16_float",
	FormatR32G32B32A32Uint:  "r32_g32_b32_a32_uint",
	FormatR32G32B32A32Sint:  "r32_g32_b32_a32_sint",
	FormatR32G32B32A32Float: "r32_g32_b32_a32_float",
	FormatBC1Unorm:          "bc1_unorm",
	FormatBC1SRGB:           "bc1_srgb",
	FormatBC2Unorm:          "bc2_unorm",
	FormatBC2SRGB:           "bc2_srgb",
	FormatBC3Unorm:          "bc3_unorm",
	FormatBC3SRGB:           "bc3_srgb",
	FormatBC4Unorm:          "bc4_unorm",
	FormatBC4Snorm:          "bc4_snorm",
	FormatBC5Unorm:          "bc5_unorm",
	FormatBC5Snorm:          "bc5_snorm",
}

func (f SurfaceFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("format(0x%x)", uint32(f))
}

// Known reports whether f is one of the enumerated format codes.
func (f SurfaceFormat) Known() bool {
	_, ok := formatNames[f]
	return ok
}

// HWFormat is the hardware format index (low six bits).
func (f SurfaceFormat) HWFormat() uint32 { return uint32(f) & 0x3f }

// IsBCn reports whether f is one of the 4x4 block compressed formats.
func (f SurfaceFormat) IsBCn() bool {
	hw := f.HWFormat()
	return hw >= 0x31 && hw <= 0x35
}

// IsSRGB reports whether f stores gamma-encoded colour.
func (f SurfaceFormat) IsSRGB() bool { return uint32(f)&0xf00 == 0x400 }

// IsSigned reports whether f stores snorm or sint channels.
func (f SurfaceFormat) IsSigned() bool {
	kind := uint32(f) & 0xf00
	return kind == 0x200 || kind == 0x300
}

// BlockSize is the texel footprint of one element: 4 for BCn, 1 otherwise.
func (f SurfaceFormat) BlockSize() uint32 {
	if f.IsBCn() {
		return 4
	}
	return 1
}

// BitsPerPixel is the size of one element (texel or 4x4 block) in bits.
func (f SurfaceFormat) BitsPerPixel() uint32 {
	return hwFormatBpp[f.HWFormat()]
}

// BytesPerElement is BitsPerPixel rounded down to bytes.
func (f SurfaceFormat) BytesPerElement() uint32 {
	return f.BitsPerPixel() / 8
}

// hwFormatBpp holds bits per element for every hardware format index.
var hwFormatBpp = [64]uint32{
	0, 8, 8, 0, 0, 16, 16, 16, 16, 16, 16, 16, 16, 32, 32, 32,
	32, 32, 0, 32, 0, 0, 32, 0, 0, 32, 32, 32, 64, 64, 64, 64,
	64, 0, 128, 128, 0, 0, 0, 16, 16, 32, 32, 32, 0, 0, 0, 96,
	96, 64, 128, 128, 64, 128, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// elemMode classifies how a hardware format maps texels onto elements.
type elemMode uint8

const (
	elemNormal   elemMode = 3
	elemExpanded elemMode = 4
	elemMono0    elemMode = 5
	elemMono1    elemMode = 6
	elemGBGR     elemMode = 7
	elemBGRG     elemMode = 8
	elemBC1      elemMode = 9
	elemBC2      elemMode = 10
	elemBC3      elemMode = 11
	elemBC4      elemMode = 12
	elemBC5      elemMode = 13
)

func (e elemMode) isBCn() bool {
	return e >= elemBC1 && e <= elemBC5
}

// elementInfo returns the element size and texel expansion of a hardware
// format as the address library sees it.
func elementInfo(hwFormat uint32) (bpp, expandX, expandY uint32, mode elemMode) {
	expandX, expandY, mode = 1, 1, elemNormal
	switch hwFormat {
	case 1:
		bpp = 8
	case 5, 6, 7, 8, 9, 10, 11:
		bpp = 16
	case 39:
		bpp, mode = 16, elemGBGR
	case 40:
		bpp, mode = 16, elemBGRG
	case 13, 14, 15, 16, 19, 20, 21, 23, 25, 26:
		bpp = 32
	case 29, 30, 31, 32, 62:
		bpp = 64
	case 34, 35:
		bpp = 128
	case 0:
		bpp = 0
	case 38:
		bpp, expandX, mode = 1, 8, elemMono1
	case 37:
		bpp, expandX, mode = 1, 8, elemMono0
	case 2, 3:
		bpp = 8
	case 12:
		bpp = 16
	case 17, 18, 22, 24, 27, 41, 42, 43:
		bpp = 32
	case 28:
		bpp = 64
	case 44:
		bpp, expandX, mode = 24, 3, elemExpanded
	case 45, 46:
		bpp, expandX, mode = 48, 3, elemExpanded
	case 47, 48:
		bpp, expandX, mode = 96, 3, elemExpanded
	case 49:
		bpp, expandX, expandY, mode = 64, 4, 4, elemBC1
	case 52:
		bpp, expandX, expandY, mode = 64, 4, 4, elemBC4
	case 50:
		bpp, expandX, expandY, mode = 128, 4, 4, elemBC2
	case 51:
		bpp, expandX, expandY, mode = 128, 4, 4, elemBC3
	case 53, 54, 55:
		bpp, expandX, expandY, mode = 128, 4, 4, elemBC5
	default:
		bpp = 0
	}
	return bpp, expandX, expandY, mode
}

package texel

import (
	"encoding/binary"

	"github.com/chewxy/math32"

	"github.com/samcharles93/bfres/pkg/gx2"
)

// pixelDecoder decodes one uncompressed texel of size bytes. Multi-byte
// texels are stored little endian once deswizzled.
type pixelDecoder struct {
	size   int
	decode func(src []byte) [4]float32
}

func pixelDecoderFor(format gx2.SurfaceFormat) (pixelDecoder, bool) {
	switch format {
	case gx2.FormatR8Unorm, gx2.FormatR8Uint:
		return pixelDecoder{1, decodeR8}, true
	case gx2.FormatR8Snorm:
		return pixelDecoder{1, decodeR8Snorm}, true
	case gx2.FormatR4G4Unorm:
		return pixelDecoder{1, decodeR4G4}, true
	case gx2.FormatR8G8Unorm, gx2.FormatR8G8Uint:
		return pixelDecoder{2, decodeR8G8}, true
	case gx2.FormatR8G8Snorm:
		return pixelDecoder{2, decodeR8G8Snorm}, true
	case gx2.FormatR5G6B5Unorm:
		return pixelDecoder{2, decodeR5G6B5}, true
	case gx2.FormatR5G5B5A1Unorm:
		return pixelDecoder{2, decodeR5G5B5A1}, true
	case gx2.FormatA1B5G5R5Unorm:
		return pixelDecoder{2, decodeA1B5G5R5}, true
	case gx2.FormatR4G4B4A4Unorm:
		return pixelDecoder{2, decodeR4G4B4A4}, true
	case gx2.FormatR16Unorm:
		return pixelDecoder{2, decodeR16}, true
	case gx2.FormatR16Float:
		return pixelDecoder{2, decodeR16Float}, true
	case gx2.FormatR8G8B8A8Unorm, gx2.FormatR8G8B8A8Uint, gx2.FormatR8G8B8A8SRGB:
		return pixelDecoder{4, decodeRGBA8}, true
	case gx2.FormatR8G8B8A8Snorm:
		return pixelDecoder{4, decodeRGBA8Snorm}, true
	case gx2.FormatR10G10B10A2Unorm, gx2.FormatR10G10B10A2Uint:
		return pixelDecoder{4, decodeRGB10A2}, true
	case gx2.FormatR10G10B10A2Snorm:
		return pixelDecoder{4, decodeRGB10A2Snorm}, true
	case gx2.FormatA2B10G10R10Unorm:
		return pixelDecoder{4, decodeA2BGR10}, true
	case gx2.FormatR16G16Unorm:
		return pixelDecoder{4, decodeR16G16}, true
	case gx2.FormatR16G16Float:
		return pixelDecoder{4, decodeR16G16Float}, true
	case gx2.FormatR32Float:
		return pixelDecoder{4, decodeR32Float}, true
	case gx2.FormatR11G11B10Float:
		return pixelDecoder{4, decodeR11G11B10Float}, true
	case gx2.FormatR16G16B16A16Unorm:
		return pixelDecoder{8, decodeRGBA16}, true
	case gx2.FormatR16G16B16A16Float:
		return pixelDecoder{8, decodeRGBA16Float}, true
	case gx2.FormatR32G32Float:
		return pixelDecoder{8, decodeR32G32Float}, true
	case gx2.FormatR32G32B32A32Float:
		return pixelDecoder{16, decodeRGBA32Float}, true
	}
	return pixelDecoder{}, false
}

func unorm8(b byte) float32 { return float32(b) / 255 }

func snorm8(b byte) float32 { return math32.Max(float32(int8(b))/127, -1) }

func unorm16(v uint16) float32 { return float32(v) / 65535 }

func bits(v uint32, shift, width uint) float32 {
	mask := uint32(1)<<width - 1
	return float32((v>>shift)&mask) / float32(mask)
}

func decodeR8(src []byte) [4]float32 {
	v := unorm8(src[0])
	return [4]float32{v, v, v, 1}
}

func decodeR8Snorm(src []byte) [4]float32 {
	v := snorm8(src[0])
	return [4]float32{v, v, v, 1}
}

func decodeR4G4(src []byte) [4]float32 {
	v := uint32(src[0])
	return [4]float32{bits(v, 0, 4), bits(v, 4, 4), 0, 1}
}

// R8G8 surfaces hold luminance and alpha.
func decodeR8G8(src []byte) [4]float32 {
	l := unorm8(src[0])
	return [4]float32{l, l, l, unorm8(src[1])}
}

func decodeR8G8Snorm(src []byte) [4]float32 {
	l := snorm8(src[0])
	return [4]float32{l, l, l, snorm8(src[1])}
}

func decodeR5G6B5(src []byte) [4]float32 {
	v := uint32(binary.LittleEndian.Uint16(src))
	return [4]float32{bits(v, 0, 5), bits(v, 5, 6), bits(v, 11, 5), 1}
}

func decodeR5G5B5A1(src []byte) [4]float32 {
	v := uint32(binary.LittleEndian.Uint16(src))
	return [4]float32{bits(v, 11, 5), bits(v, 6, 5), bits(v, 1, 5), bits(v, 0, 1)}
}

func decodeA1B5G5R5(src []byte) [4]float32 {
	v := uint32(binary.LittleEndian.Uint16(src))
	return [4]float32{bits(v, 0, 5), bits(v, 5, 5), bits(v, 10, 5), bits(v, 15, 1)}
}

func decodeR4G4B4A4(src []byte) [4]float32 {
	v := uint32(binary.LittleEndian.Uint16(src))
	return [4]float32{bits(v, 0, 4), bits(v, 4, 4), bits(v, 8, 4), bits(v, 12, 4)}
}

func decodeR16(src []byte) [4]float32 {
	v := unorm16(binary.LittleEndian.Uint16(src))
	return [4]float32{v, v, v, 1}
}

func decodeR16Float(src []byte) [4]float32 {
	return [4]float32{Float16ToFloat32(binary.LittleEndian.Uint16(src)), 0, 0, 1}
}

func decodeRGBA8(src []byte) [4]float32 {
	return [4]float32{unorm8(src[0]), unorm8(src[1]), unorm8(src[2]), unorm8(src[3])}
}

func decodeRGBA8Snorm(src []byte) [4]float32 {
	return [4]float32{snorm8(src[0]), snorm8(src[1]), snorm8(src[2]), snorm8(src[3])}
}

func decodeRGB10A2(src []byte) [4]float32 {
	v := binary.LittleEndian.Uint32(src)
	return [4]float32{bits(v, 0, 10), bits(v, 10, 10), bits(v, 20, 10), bits(v, 30, 2)}
}

// signedLane rescales a 10 bit lane with a wrapping recentering instead of
// the hardware snorm mapping: 0 decodes to 0, 127 to about 1, and 128
// wraps to about -1.
func signedLane(lane uint32) float32 {
	return math32.Mod(float32(lane)/511*2+0.5, 1)*2 - 1
}

func decodeRGB10A2Snorm(src []byte) [4]float32 {
	v := binary.LittleEndian.Uint32(src)
	return [4]float32{
		signedLane(v & 0x3ff),
		signedLane((v >> 10) & 0x3ff),
		signedLane((v >> 20) & 0x3ff),
		bits(v, 30, 2),
	}
}

func decodeA2BGR10(src []byte) [4]float32 {
	v := binary.LittleEndian.Uint32(src)
	return [4]float32{bits(v, 22, 10), bits(v, 12, 10), bits(v, 2, 10), bits(v, 0, 2)}
}

func decodeR16G16(src []byte) [4]float32 {
	return [4]float32{
		unorm16(binary.LittleEndian.Uint16(src)),
		unorm16(binary.LittleEndian.Uint16(src[2:])),
		0, 1,
	}
}

func decodeR16G16Float(src []byte) [4]float32 {
	return [4]float32{
		Float16ToFloat32(binary.LittleEndian.Uint16(src)),
		Float16ToFloat32(binary.LittleEndian.Uint16(src[2:])),
		0, 1,
	}
}

func decodeR32Float(src []byte) [4]float32 {
	return [4]float32{f32(src), 0, 0, 1}
}

func decodeR11G11B10Float(src []byte) [4]float32 {
	v := binary.LittleEndian.Uint32(src)
	return [4]float32{
		smallFloat(v&0x7ff, 6),
		smallFloat((v>>11)&0x7ff, 6),
		smallFloat(v>>22, 5),
		1,
	}
}

func decodeRGBA16(src []byte) [4]float32 {
	var px [4]float32
	for c := range px {
		px[c] = unorm16(binary.LittleEndian.Uint16(src[c*2:]))
	}
	return px
}

func decodeRGBA16Float(src []byte) [4]float32 {
	var px [4]float32
	for c := range px {
		px[c] = Float16ToFloat32(binary.LittleEndian.Uint16(src[c*2:]))
	}
	return px
}

func decodeR32G32Float(src []byte) [4]float32 {
	return [4]float32{f32(src), f32(src[4:]), 0, 1}
}

func decodeRGBA32Float(src []byte) [4]float32 {
	return [4]float32{f32(src), f32(src[4:]), f32(src[8:]), f32(src[12:])}
}

func f32(src []byte) float32 {
	return math32.Float32frombits(binary.LittleEndian.Uint32(src))
}

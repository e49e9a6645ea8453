package texel

import (
	"encoding/binary"

	"github.com/samcharles93/bfres/pkg/gx2"
)

// blockDecoder expands one 4x4 block of size bytes into texels in row
// major order.
type blockDecoder struct {
	size   int
	decode func(block []byte, out *[16][4]float32)
}

func blockDecoderFor(format gx2.SurfaceFormat) (blockDecoder, bool) {
	switch format {
	case gx2.FormatBC1Unorm, gx2.FormatBC1SRGB:
		return blockDecoder{8, decodeBC1}, true
	case gx2.FormatBC2Unorm, gx2.FormatBC2SRGB:
		return blockDecoder{16, decodeBC2}, true
	case gx2.FormatBC3Unorm, gx2.FormatBC3SRGB:
		return blockDecoder{16, decodeBC3}, true
	case gx2.FormatBC4Unorm:
		return blockDecoder{8, func(b []byte, out *[16][4]float32) { decodeBC4(b, out, false) }}, true
	case gx2.FormatBC4Snorm:
		return blockDecoder{8, func(b []byte, out *[16][4]float32) { decodeBC4(b, out, true) }}, true
	case gx2.FormatBC5Unorm:
		return blockDecoder{16, func(b []byte, out *[16][4]float32) { decodeBC5(b, out, false) }}, true
	case gx2.FormatBC5Snorm:
		return blockDecoder{16, func(b []byte, out *[16][4]float32) { decodeBC5(b, out, true) }}, true
	}
	return blockDecoder{}, false
}

type rgb [3]float32

func rgb565(v uint16) rgb {
	return rgb{
		float32(v>>11&0x1f) / 31,
		float32(v>>5&0x3f) / 63,
		float32(v&0x1f) / 31,
	}
}

func lerp(a, b rgb, t float32) rgb {
	return rgb{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t, a[2] + (b[2]-a[2])*t}
}

// colorBlock decodes the 8 byte endpoint and index block shared by BC1-3.
// With punchThrough set, c0 <= c1 selects the three colour mode where
// index 3 is transparent black.
func colorBlock(block []byte, punchThrough bool, out *[16][4]float32) {
	e0 := binary.LittleEndian.Uint16(block)
	e1 := binary.LittleEndian.Uint16(block[2:])
	indices := binary.LittleEndian.Uint32(block[4:])
	c0, c1 := rgb565(e0), rgb565(e1)
	threeColor := punchThrough && e0 <= e1

	for j := range out {
		var c rgb
		alpha := float32(1)
		switch code := (indices >> (2 * j)) & 0x3; {
		case code == 0:
			c = c0
		case code == 1:
			c = c1
		case threeColor && code == 2:
			c = lerp(c0, c1, 0.5)
		case threeColor:
			alpha = 0
		case code == 2:
			c = lerp(c0, c1, 1.0/3)
		default:
			c = lerp(c0, c1, 2.0/3)
		}
		out[j] = [4]float32{c[0], c[1], c[2], alpha}
	}
}

// alphaRamp fills the eight values an interpolated alpha block indexes.
// Codes 6 and 7 clamp to 0 and 1 when the second endpoint is not below
// the first.
func alphaRamp(a0, a1 float32) [8]float32 {
	var ramp [8]float32
	ramp[0], ramp[1] = a0, a1
	for k := 1; k <= 4; k++ {
		ramp[k+1] = a0 + (a1-a0)*float32(k)/7
	}
	if d := a1 - a0; d >= 0 && d < 2 {
		ramp[6], ramp[7] = 0, 1
	} else {
		ramp[6] = a0 + (a1-a0)*5/7
		ramp[7] = a0 + (a1-a0)*6/7
	}
	return ramp
}

// interpolatedChannel decodes an 8 byte BC3 alpha or BC4 channel block.
func interpolatedChannel(block []byte, signed bool) [16]float32 {
	endpoint := unorm8
	if signed {
		endpoint = recentred
	}
	ramp := alphaRamp(endpoint(block[0]), endpoint(block[1]))
	indices := binary.LittleEndian.Uint64(block) >> 16

	var vals [16]float32
	for j := range vals {
		vals[j] = ramp[(indices>>(3*j))&0x7]
	}
	return vals
}

// recentred maps a signed endpoint byte onto [0, 1] by offsetting it by
// 128.
func recentred(b byte) float32 {
	return float32(b+128) / 255
}

func decodeBC1(block []byte, out *[16][4]float32) {
	colorBlock(block, true, out)
}

func decodeBC2(block []byte, out *[16][4]float32) {
	colorBlock(block[8:], false, out)
	for j := range out {
		nibble := block[j/2] >> (4 * (j & 1)) & 0xf
		out[j][3] = float32(nibble) / 15
	}
}

func decodeBC3(block []byte, out *[16][4]float32) {
	colorBlock(block[8:], false, out)
	alpha := interpolatedChannel(block[:8], false)
	for j := range out {
		out[j][3] = alpha[j]
	}
}

func decodeBC4(block []byte, out *[16][4]float32, signed bool) {
	vals := interpolatedChannel(block, signed)
	for j, v := range vals {
		out[j] = [4]float32{v, v, v, 1}
	}
}

func decodeBC5(block []byte, out *[16][4]float32, signed bool) {
	xs := interpolatedChannel(block[:8], signed)
	ys := interpolatedChannel(block[8:], signed)
	for j := range out {
		out[j] = [4]float32{xs[j], ys[j], 1, 1}
	}
}

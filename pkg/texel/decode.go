// Package texel converts deswizzled GX2 surface bytes into RGBA samples.
package texel

import (
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"

	"github.com/samcharles93/bfres/pkg/gx2"
)

// Image is a decoded mip level. Pix holds Width*Height RGBA quadruples,
// row 0 being the bottom row of the texture.
type Image struct {
	Width  int
	Height int
	Pix    []float32
}

// NewImage allocates a zeroed image.
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]float32, width*height*4)}
}

// At returns the RGBA sample at (x, y) in bottom-up row order.
func (m *Image) At(x, y int) [4]float32 {
	i := (y*m.Width + x) * 4
	return [4]float32{m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]}
}

func (m *Image) set(x, y int, px [4]float32) {
	i := (y*m.Width + x) * 4
	copy(m.Pix[i:i+4], px[:])
}

// NRGBA converts m to an 8-bit top-down image, clamping each channel to
// [0, 1].
func (m *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		row := m.Height - 1 - y
		for x := 0; x < m.Width; x++ {
			px := m.At(x, row)
			out.SetNRGBA(x, y, color.NRGBA{R: to8(px[0]), G: to8(px[1]), B: to8(px[2]), A: to8(px[3])})
		}
	}
	return out
}

func to8(v float32) uint8 {
	if math32.IsNaN(v) {
		return 0
	}
	return uint8(math32.Round(math32.Min(math32.Max(v, 0), 1) * 255))
}

func (m *Image) flipVertical() {
	stride := m.Width * 4
	tmp := make([]float32, stride)
	for top, bottom := 0, m.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := m.Pix[top*stride : (top+1)*stride]
		b := m.Pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// ComponentSelector routes decoded channels to the output. Entry i names
// the source channel (0-3) feeding output channel i; any other value keeps
// channel i.
type ComponentSelector [4]byte

// IdentitySelector leaves channels in place.
var IdentitySelector = ComponentSelector{0, 1, 2, 3}

// Resolve maps out-of-range entries to identity.
func (s ComponentSelector) Resolve() ComponentSelector {
	for i, c := range s {
		if c > 3 {
			s[i] = byte(i)
		}
	}
	return s
}

func (s ComponentSelector) isIdentity() bool {
	return s.Resolve() == IdentitySelector
}

func (m *Image) remap(sel ComponentSelector) {
	if sel.isIdentity() {
		return
	}
	sel = sel.Resolve()
	for i := 0; i < len(m.Pix); i += 4 {
		px := [4]float32{m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]}
		for c := range 4 {
			m.Pix[i+c] = px[sel[c]]
		}
	}
}

// Supported reports whether Decode handles format.
func Supported(format gx2.SurfaceFormat) bool {
	if _, ok := blockDecoderFor(format); ok {
		return true
	}
	_, ok := pixelDecoderFor(format)
	return ok
}

// Decode converts one deswizzled mip level of width x height texels. data
// must hold at least the packed level size; padding past it is ignored.
func Decode(format gx2.SurfaceFormat, width, height int, data []byte, sel ComponentSelector) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	img := NewImage(width, height)
	if bd, ok := blockDecoderFor(format); ok {
		if err := decodeBlocks(img, bd, data); err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
	} else if pd, ok := pixelDecoderFor(format); ok {
		if err := decodePixels(img, pd, data); err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
	} else {
		return nil, fmt.Errorf("%w: %s", gx2.ErrUnsupportedFormat, format)
	}

	img.flipVertical()
	img.remap(sel)
	return img, nil
}

func decodePixels(img *Image, pd pixelDecoder, data []byte) error {
	need := img.Width * img.Height * pd.size
	if len(data) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortData, len(data), need)
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			off := (y*img.Width + x) * pd.size
			img.set(x, y, pd.decode(data[off:off+pd.size]))
		}
	}
	return nil
}

func decodeBlocks(img *Image, bd blockDecoder, data []byte) error {
	blocksWide := (img.Width + 3) / 4
	blocksHigh := (img.Height + 3) / 4
	need := blocksWide * blocksHigh * bd.size
	if len(data) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortData, len(data), need)
	}

	var texels [16][4]float32
	for by := 0; by < blocksHigh; by++ {
		for bx := 0; bx < blocksWide; bx++ {
			off := (by*blocksWide + bx) * bd.size
			bd.decode(data[off:off+bd.size], &texels)
			for j, px := range texels {
				x, y := bx*4+j%4, by*4+j/4
				if x < img.Width && y < img.Height {
					img.set(x, y, px)
				}
			}
		}
	}
	return nil
}

package export

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/klauspost/compress/zstd"

	"github.com/samcharles93/bfres/pkg/texel"
)

// Format selects how texture levels are written.
type Format string

const (
	FormatPNG Format = "png"
	FormatRaw Format = "raw"
)

var ErrUnknownFormat = errors.New("export: unknown format")

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPNG, "":
		return FormatPNG, nil
	case FormatRaw:
		return FormatRaw, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext is the file extension written for f.
func (f Format) Ext() string {
	if f == FormatRaw {
		return ".rgba.zst"
	}
	return ".png"
}

// EncodePNG writes img as an 8-bit PNG, top row first.
func EncodePNG(w io.Writer, img *texel.Image) error {
	return EncodePNGImage(w, img.NRGBA())
}

func EncodePNGImage(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed))
}

// SavePNG writes img to path. The extension must be .png.
func SavePNG(path string, img *texel.Image) error {
	return imaging.Save(img.NRGBA(), path)
}

// Preview scales img down to fit in a size x size box. Images that already
// fit are returned unscaled.
func Preview(img *texel.Image, size int) image.Image {
	nrgba := img.NRGBA()
	if size <= 0 || (img.Width <= size && img.Height <= size) {
		return nrgba
	}
	return imaging.Fit(nrgba, size, size, imaging.Lanczos)
}

// rawMagic starts every raw dump: magic, then little-endian width and
// height, then width*height RGBA8 texels top row first. The whole stream
// is zstd-framed.
var rawMagic = [4]byte{'R', 'G', 'B', 'A'}

// WriteRaw writes img as a zstd-compressed RGBA8 dump. level is a zstd
// level (1 fastest to 22 smallest); zero selects the default.
func WriteRaw(w io.Writer, img *texel.Image, level int) error {
	opts := []zstd.EOption{}
	if level > 0 {
		opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	}
	zw, err := zstd.NewWriter(w, opts...)
	if err != nil {
		return fmt.Errorf("export: zstd: %w", err)
	}

	var hdr [12]byte
	copy(hdr[:4], rawMagic[:])
	binary.LittleEndian.PutUint32(hdr[4:], uint32(img.Width))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(img.Height))
	if _, err := zw.Write(hdr[:]); err != nil {
		_ = zw.Close()
		return err
	}
	if _, err := zw.Write(img.NRGBA().Pix); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// ReadRaw decodes a dump written by WriteRaw.
func ReadRaw(r io.Reader) (*image.NRGBA, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("export: zstd: %w", err)
	}
	defer zr.Close()

	var hdr [12]byte
	if _, err := io.ReadFull(zr, hdr[:]); err != nil {
		return nil, fmt.Errorf("export: raw header: %w", err)
	}
	if [4]byte(hdr[:4]) != rawMagic {
		return nil, fmt.Errorf("export: raw dump has magic %q", hdr[:4])
	}
	w := int(binary.LittleEndian.Uint32(hdr[4:]))
	h := int(binary.LittleEndian.Uint32(hdr[8:]))
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if _, err := io.ReadFull(zr, out.Pix); err != nil {
		return nil, fmt.Errorf("export: raw texels: %w", err)
	}
	return out, nil
}

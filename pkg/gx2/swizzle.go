package gx2

// SwizzleParams describes one mip level of a surface for reordering
// between the tiled GPU layout and a tightly packed row-major layout.
type SwizzleParams struct {
	Width         uint32 // level width in texels
	Height        uint32 // level height in texels
	SurfaceHeight uint32 // padded height in elements
	Pitch         uint32 // padded pitch in elements
	Bpp           uint32 // bits per element
	Format        SurfaceFormat
	TileMode      TileMode
	Swizzle       uint32
}

// SwizzleStats reports how many elements were moved and how many were
// skipped because their source or destination fell outside the buffer.
type SwizzleStats struct {
	Copied  int
	Skipped int
}

// LevelSwizzleParams builds the parameters for mip level level of s from
// its computed layout.
func LevelSwizzleParams(s Surface, info SurfaceInfo, level uint32) SwizzleParams {
	return SwizzleParams{
		Width:         max(1, s.Width>>level),
		Height:        max(1, s.Height>>level),
		SurfaceHeight: info.Height,
		Pitch:         info.Pitch,
		Bpp:           info.Bpp,
		Format:        s.Format,
		TileMode:      info.TileMode,
		Swizzle:       s.Swizzle,
	}
}

// ElementsWide and ElementsHigh are the level dimensions in elements.
func (p SwizzleParams) ElementsWide() uint32 {
	if p.Format.IsBCn() {
		return (p.Width + 3) / 4
	}
	return p.Width
}

func (p SwizzleParams) ElementsHigh() uint32 {
	if p.Format.IsBCn() {
		return (p.Height + 3) / 4
	}
	return p.Height
}

// LinearSize is the byte size of the packed row-major image.
func (p SwizzleParams) LinearSize() int {
	return int(p.ElementsWide()) * int(p.ElementsHigh()) * int(p.Bpp/8)
}

// Deswizzle reorders tiled surface bytes into row-major element order.
// The result has the same length as data.
func Deswizzle(p SwizzleParams, data []byte) ([]byte, SwizzleStats) {
	return swizzleSurface(p, data, false)
}

// Swizzle is the inverse of Deswizzle.
func Swizzle(p SwizzleParams, data []byte) ([]byte, SwizzleStats) {
	return swizzleSurface(p, data, true)
}

func swizzleSurface(p SwizzleParams, data []byte, toTiled bool) ([]byte, SwizzleStats) {
	var stats SwizzleStats
	out := make([]byte, len(data))
	bytesPerElem := uint64(p.Bpp / 8)
	if bytesPerElem == 0 {
		return out, stats
	}

	pipeSwizzle, bankSwizzle := SplitSwizzle(p.Swizzle)
	ap := AddrParams{
		Bpp:         p.Bpp,
		Pitch:       p.Pitch,
		Height:      p.SurfaceHeight,
		TileMode:    p.TileMode,
		PipeSwizzle: pipeSwizzle,
		BankSwizzle: bankSwizzle,
	}
	width, height := p.ElementsWide(), p.ElementsHigh()
	size := uint64(len(data))

	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			tiled := AddrFromCoord(Coord{X: x, Y: y}, ap)
			linear := (uint64(y)*uint64(width) + uint64(x)) * bytesPerElem
			if linear+bytesPerElem > size || tiled+bytesPerElem > size {
				stats.Skipped++
				continue
			}
			if toTiled {
				copy(out[tiled:tiled+bytesPerElem], data[linear:linear+bytesPerElem])
			} else {
				copy(out[linear:linear+bytesPerElem], data[tiled:tiled+bytesPerElem])
			}
			stats.Copied++
		}
	}
	return out, stats
}

package gx2

import "fmt"

// TileMode is the GX2 surface tiling mode stored in a texture record.
type TileMode uint32

const (
	TileModeDefault       TileMode = 0
	TileModeLinearAligned TileMode = 1
	TileMode1DTiledThin1  TileMode = 2
	TileMode1DTiledThick  TileMode = 3
	TileMode2DTiledThin1  TileMode = 4
	TileMode2DTiledThin2  TileMode = 5
	TileMode2DTiledThin4  TileMode = 6
	TileMode2DTiledThick  TileMode = 7
	TileMode2BTiledThin1  TileMode = 8
	TileMode2BTiledThin2  TileMode = 9
	TileMode2BTiledThin4  TileMode = 10
	TileMode2BTiledThick  TileMode = 11
	TileMode3DTiledThin1  TileMode = 12
	TileMode3DTiledThick  TileMode = 13
	TileMode3BTiledThin1  TileMode = 14
	TileMode3BTiledThick  TileMode = 15
	TileModeLinearSpecial TileMode = 16
)

func (m TileMode) String() string {
	switch m {
	case TileModeDefault:
		return "default"
	case TileModeLinearAligned:
		return "linear_aligned"
	case TileMode1DTiledThin1:
		return "1d_tiled_thin1"
	case TileMode1DTiledThick:
		return "1d_tiled_thick"
	case TileMode2DTiledThin1:
		return "2d_tiled_thin1"
	case TileMode2DTiledThin2:
		return "2d_tiled_thin2"
	case TileMode2DTiledThin4:
		return "2d_tiled_thin4"
	case TileMode2DTiledThick:
		return "2d_tiled_thick"
	case TileMode2BTiledThin1:
		return "2b_tiled_thin1"
	case TileMode2BTiledThin2:
		return "2b_tiled_thin2"
	case TileMode2BTiledThin4:
		return "2b_tiled_thin4"
	case TileMode2BTiledThick:
		return "2b_tiled_thick"
	case TileMode3DTiledThin1:
		return "3d_tiled_thin1"
	case TileMode3DTiledThick:
		return "3d_tiled_thick"
	case TileMode3BTiledThin1:
		return "3b_tiled_thin1"
	case TileMode3BTiledThick:
		return "3b_tiled_thick"
	case TileModeLinearSpecial:
		return "linear_special"
	default:
		return fmt.Sprintf("tile_mode(%d)", uint32(m))
	}
}

// Valid reports whether m is one of the modes a texture record may carry.
func (m TileMode) Valid() bool {
	return m <= TileModeLinearSpecial
}

func (m TileMode) IsLinear() bool {
	return m == TileModeDefault || m == TileModeLinearAligned || m == TileModeLinearSpecial
}

func (m TileMode) IsMicroTiled() bool {
	return m == TileMode1DTiledThin1 || m == TileMode1DTiledThick
}

func (m TileMode) IsMacroTiled() bool {
	return m >= TileMode2DTiledThin1 && m <= TileMode3BTiledThick
}

// Thickness is the number of slices packed into one micro tile.
func (m TileMode) Thickness() uint32 {
	switch m {
	case TileMode1DTiledThick, TileMode2DTiledThick, TileMode2BTiledThick,
		TileMode3DTiledThick, TileMode3BTiledThick:
		return 4
	default:
		return 1
	}
}

func (m TileMode) isThickMacroTiled() bool {
	switch m {
	case TileMode2DTiledThick, TileMode2BTiledThick, TileMode3DTiledThick, TileMode3BTiledThick:
		return true
	}
	return false
}

func (m TileMode) isBankSwapped() bool {
	switch m {
	case TileMode2BTiledThin1, TileMode2BTiledThin2, TileMode2BTiledThin4,
		TileMode2BTiledThick, TileMode3BTiledThin1, TileMode3BTiledThick:
		return true
	}
	return false
}

// macroAspectRatio is how many times taller than wide a macro tile is.
func (m TileMode) macroAspectRatio() uint32 {
	switch m {
	case TileMode2DTiledThin2, TileMode2BTiledThin2:
		return 2
	case TileMode2DTiledThin4, TileMode2BTiledThin4:
		return 4
	default:
		return 1
	}
}

func (m TileMode) nonBankSwapped() TileMode {
	switch m {
	case TileMode2BTiledThin1:
		return TileMode2DTiledThin1
	case TileMode2BTiledThin2:
		return TileMode2DTiledThin2
	case TileMode2BTiledThin4:
		return TileMode2DTiledThin4
	case TileMode2BTiledThick:
		return TileMode2DTiledThick
	case TileMode3BTiledThin1:
		return TileMode3DTiledThin1
	case TileMode3BTiledThick:
		return TileMode3DTiledThick
	default:
		return m
	}
}

func (m TileMode) rotation() uint32 {
	switch {
	case m >= TileMode2DTiledThin1 && m <= TileMode2BTiledThick:
		return numPipes * ((numBanks >> 1) - 1)
	case m >= TileMode3DTiledThin1 && m <= TileMode3BTiledThick:
		return 1
	default:
		return 0
	}
}

// tileSlices is the number of slices a single tile is split across.
func tileSlices(m TileMode, bpp, numSamples uint32) uint32 {
	bytesPerSample := ((bpp << 6) + 7) >> 3
	slices := uint32(1)
	if m.Thickness() > 1 {
		numSamples = 4
	}
	if bytesPerSample != 0 {
		if samplesPerTile := splitSize / bytesPerSample; samplesPerTile != 0 {
			slices = max(1, numSamples/samplesPerTile)
		}
	}
	return slices
}

// mipLevelTileMode degrades base for a given mip level the way the GPU
// does: thick and multi-bank modes fall back when the level is too small
// to fill a macro tile, and mips never keep a bank-swapped mode.
func mipLevelTileMode(base TileMode, bpp, level, width, height, numSlices, numSamples uint32, isDepth, noRecursive bool) TileMode {
	mode := base
	slices := tileSlices(base, bpp, numSamples)

	switch base {
	case TileMode2DTiledThin2:
		if 2*pipeInterleaveBytes > splitSize {
			mode = TileMode2DTiledThin1
		}
	case TileMode2DTiledThin4:
		if 4*pipeInterleaveBytes > splitSize {
			mode = TileMode2DTiledThin2
		}
	case TileMode2DTiledThick:
		if numSamples > 1 || slices > 1 || isDepth {
			mode = TileMode2DTiledThin1
		}
	case TileMode3DTiledThick:
		if numSamples > 1 || slices > 1 || isDepth {
			mode = TileMode3DTiledThin1
		}
	case TileMode2BTiledThin2:
		if 2*pipeInterleaveBytes > splitSize {
			mode = TileMode2BTiledThin1
		}
	case TileMode2BTiledThin4:
		if 4*pipeInterleaveBytes > splitSize {
			mode = TileMode2BTiledThin2
		}
	case TileMode2BTiledThick:
		if numSamples > 1 || slices > 1 || isDepth {
			mode = TileMode2BTiledThin1
		}
	case TileMode3BTiledThick:
		if numSamples > 1 || slices > 1 || isDepth {
			mode = TileMode3BTiledThin1
		}
	case TileMode1DTiledThin1:
		if numSamples > 1 && configFlags&(1<<2) != 0 {
			mode = TileMode2DTiledThin1
		}
	case TileMode1DTiledThick:
		if numSamples > 1 || isDepth {
			mode = TileMode1DTiledThin1
		}
		if numSamples == 2 || numSamples == 4 {
			mode = TileMode2DTiledThick
		}
	}

	if mode.rotation()%numPipes == 0 {
		switch mode {
		case TileMode3DTiledThin1:
			mode = TileMode2DTiledThin1
		case TileMode3BTiledThin1:
			mode = TileMode2BTiledThin1
		case TileMode3DTiledThick:
			mode = TileMode2DTiledThick
		case TileMode3BTiledThick:
			mode = TileMode2BTiledThick
		}
	}

	if noRecursive || level == 0 {
		return mode
	}

	if bpp == 24 || bpp == 48 || bpp == 96 {
		bpp /= 3
	}
	width = nextPow2(width)
	height = nextPow2(height)
	numSlices = nextPow2(numSlices)

	mode = mode.nonBankSwapped()
	microTileBytes := (numSamples*bpp*(mode.Thickness()<<6) + 7) >> 3
	widthAlignFactor := uint32(1)
	if microTileBytes < pipeInterleaveBytes {
		widthAlignFactor = pipeInterleaveBytes / microTileBytes
	}
	macroTileWidth := uint32(8 * numBanks)
	macroTileHeight := uint32(8 * numPipes)

	switch mode {
	case TileMode2DTiledThin1, TileMode3DTiledThin1:
		if width < widthAlignFactor*macroTileWidth || height < macroTileHeight {
			mode = TileMode1DTiledThin1
		}
	case TileMode2DTiledThin2:
		macroTileWidth >>= 1
		macroTileHeight *= 2
		if width < widthAlignFactor*macroTileWidth || height < macroTileHeight {
			mode = TileMode1DTiledThin1
		}
	case TileMode2DTiledThin4:
		macroTileWidth >>= 2
		macroTileHeight *= 4
		if width < widthAlignFactor*macroTileWidth || height < macroTileHeight {
			mode = TileMode1DTiledThin1
		}
	}
	if mode == TileMode2DTiledThick || mode == TileMode3DTiledThick {
		if width < widthAlignFactor*macroTileWidth || height < macroTileHeight {
			mode = TileMode1DTiledThick
		}
	}

	if numSlices < 4 {
		switch mode {
		case TileMode1DTiledThick:
			mode = TileMode1DTiledThin1
		case TileMode2DTiledThick:
			mode = TileMode2DTiledThin1
		case TileMode3DTiledThick:
			mode = TileMode3DTiledThin1
		}
	}

	return mipLevelTileMode(mode, bpp, level, width, height, numSlices, numSamples, isDepth, true)
}

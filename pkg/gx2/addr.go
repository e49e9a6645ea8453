package gx2

// Coord addresses one element of a surface. Z is the slice.
type Coord struct {
	X, Y, Z uint32
}

// AddrParams describes the surface an address is computed for.
type AddrParams struct {
	Bpp         uint32 // bits per element
	Pitch       uint32 // in elements
	Height      uint32 // padded height in elements
	TileMode    TileMode
	PipeSwizzle uint32
	BankSwizzle uint32
}

// SplitSwizzle extracts the pipe and bank swizzle from a texture's
// swizzle word.
func SplitSwizzle(swizzle uint32) (pipe, bank uint32) {
	return (swizzle >> 8) & 1, (swizzle >> 9) & 3
}

var bankSwapOrder = [...]uint32{0, 1, 3, 2, 6, 7, 5, 4, 0, 0}

// AddrFromCoord returns the byte offset of c within a surface laid out
// according to p.
func AddrFromCoord(c Coord, p AddrParams) uint64 {
	switch {
	case p.TileMode.IsLinear():
		return AddrFromCoordLinear(c, p)
	case p.TileMode.IsMicroTiled():
		return AddrFromCoordMicroTiled(c, p)
	default:
		return AddrFromCoordMacroTiled(c, p)
	}
}

func AddrFromCoordLinear(c Coord, p AddrParams) uint64 {
	slice := uint64(c.Z) * uint64(p.Height) * uint64(p.Pitch)
	return (slice + uint64(c.Y)*uint64(p.Pitch) + uint64(c.X)) * uint64(p.Bpp) / 8
}

func AddrFromCoordMicroTiled(c Coord, p AddrParams) uint64 {
	thickness := uint64(1)
	if p.TileMode == TileMode1DTiledThick {
		thickness = 4
	}
	bpp := uint64(p.Bpp)
	microTileBytes := (microTilePixels*thickness*bpp + 7) / 8
	microTilesPerRow := uint64(p.Pitch >> 3)
	microTileOffset := microTileBytes * (uint64(c.X>>3) + uint64(c.Y>>3)*microTilesPerRow)

	sliceBytes := (uint64(p.Pitch)*uint64(p.Height)*thickness*bpp + 7) / 8
	sliceOffset := sliceBytes * (uint64(c.Z) / thickness)

	pixelOffset := (bpp * uint64(pixelIndexWithinMicroTile(c, p.Bpp, p.TileMode))) >> 3
	return pixelOffset + microTileOffset + sliceOffset
}

func AddrFromCoordMacroTiled(c Coord, p AddrParams) uint64 {
	thickness := uint64(p.TileMode.Thickness())
	bpp := uint64(p.Bpp)

	microTileBits := bpp * thickness * microTilePixels
	microTileBytes := (microTileBits + 7) / 8

	elemOffset := bpp * uint64(pixelIndexWithinMicroTile(c, p.Bpp, p.TileMode))

	numSamples, sampleSlice, numSampleSplits := uint64(1), uint64(0), uint64(1)
	if microTileBytes > splitSize {
		// Thick 128-bit tiles exceed the split size by more than one
		// sample; treat them as a single split.
		samplesPerSlice := max(1, splitSize/microTileBytes)
		numSampleSplits = max(1, 1/samplesPerSlice)
		numSamples = samplesPerSlice
		sampleSlice = elemOffset / (microTileBits / numSampleSplits)
		elemOffset %= microTileBits / numSampleSplits
	}
	elemOffset = (elemOffset + 7) / 8

	pipe := uint64(pipeFromCoord(c.X, c.Y))
	bank := uint64(bankFromCoord(c.X, c.Y))
	bankPipe := pipe + numPipes*bank

	sliceIn := uint64(c.Z)
	if thickness > 1 {
		sliceIn >>= 2
	}
	swizzle := uint64(p.PipeSwizzle) + numPipes*uint64(p.BankSwizzle) + sliceIn*uint64(p.TileMode.rotation())
	bankPipe ^= numPipes*sampleSlice*((numBanks>>1)+1) ^ swizzle
	bankPipe %= numPipes * numBanks
	pipe = bankPipe % numPipes
	bank = bankPipe / numPipes

	sliceBytes := (uint64(p.Height)*uint64(p.Pitch)*thickness*bpp*numSamples + 7) / 8
	sliceOffset := sliceBytes * ((sampleSlice + numSampleSplits*uint64(c.Z)) / thickness)

	macroTilePitch := uint64(8 * numBanks)
	macroTileHeight := uint64(8 * numPipes)
	switch p.TileMode {
	case TileMode2DTiledThin2, TileMode2BTiledThin2:
		macroTilePitch >>= 1
		macroTileHeight *= 2
	case TileMode2DTiledThin4, TileMode2BTiledThin4:
		macroTilePitch >>= 2
		macroTileHeight *= 4
	}

	macroTilesPerRow := uint64(p.Pitch) / macroTilePitch
	macroTileBytes := (numSamples*thickness*bpp*macroTileHeight*macroTilePitch + 7) / 8
	macroTileIndexX := uint64(c.X) / macroTilePitch
	macroTileIndexY := uint64(c.Y) / macroTileHeight
	macroTileOffset := (macroTileIndexX + macroTilesPerRow*macroTileIndexY) * macroTileBytes

	if p.TileMode.isBankSwapped() {
		if swapWidth := uint64(bankSwappedWidth(p.TileMode, p.Bpp, p.Pitch, 1)); swapWidth != 0 {
			swapIndex := macroTilePitch * macroTileIndexX / swapWidth
			bank ^= uint64(bankSwapOrder[swapIndex&(numBanks-1)])
		}
	}

	const groupMask = (1 << pipeInterleaveBitCount) - 1
	const swizzleBits = numBankBits + numPipeBits

	totalOffset := elemOffset + ((macroTileOffset + sliceOffset) >> swizzleBits)
	offsetHigh := (totalOffset &^ groupMask) << swizzleBits
	offsetLow := totalOffset & groupMask

	pipeBits := pipe << pipeInterleaveBitCount
	bankBits := bank << (numPipeBits + pipeInterleaveBitCount)
	return bankBits | pipeBits | offsetLow | offsetHigh
}

func pipeFromCoord(x, y uint32) uint32 {
	return ((y >> 3) ^ (x >> 3)) & 1
}

func bankFromCoord(x, y uint32) uint32 {
	bit0 := ((y / (16 * numPipes)) ^ (x >> 3)) & 1
	bit1 := ((y / (8 * numPipes)) ^ (x >> 4)) & 1
	return bit0 | bit1<<1
}

// pixelIndexWithinMicroTile interleaves the low coordinate bits into the
// position of an element inside its 8x8 micro tile.
func pixelIndexWithinMicroTile(c Coord, bpp uint32, tileMode TileMode) uint32 {
	x, y, z := c.X, c.Y, c.Z
	var b [9]uint32

	switch bpp {
	case 8:
		b[0], b[1], b[2] = x&1, (x&2)>>1, (x&4)>>2
		b[3], b[4], b[5] = (y&2)>>1, y&1, (y&4)>>2
	case 16:
		b[0], b[1], b[2] = x&1, (x&2)>>1, (x&4)>>2
		b[3], b[4], b[5] = y&1, (y&2)>>1, (y&4)>>2
	case 64:
		b[0], b[1], b[2] = x&1, y&1, (x&2)>>1
		b[3], b[4], b[5] = (x&4)>>2, (y&2)>>1, (y&4)>>2
	case 128:
		b[0], b[1], b[2] = y&1, x&1, (x&2)>>1
		b[3], b[4], b[5] = (x&4)>>2, (y&2)>>1, (y&4)>>2
	default:
		// 32 and 96 bit elements, and anything unexpected.
		b[0], b[1], b[2] = x&1, (x&2)>>1, y&1
		b[3], b[4], b[5] = (x&4)>>2, (y&2)>>1, (y&4)>>2
	}

	if tileMode.Thickness() > 1 {
		b[6] = z & 1
		b[7] = (z & 2) >> 1
	}

	var index uint32
	for i, bit := range b {
		index |= bit << i
	}
	return index
}

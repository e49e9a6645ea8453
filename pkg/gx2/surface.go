package gx2

import "fmt"

// Address library configuration of the Wii U GPU.
const (
	numBanks               = 4
	numBankBits            = 2
	numPipes               = 2
	numPipeBits            = 1
	pipeInterleaveBytes    = 256
	pipeInterleaveBitCount = 8
	rowSize                = 2048
	swapSize               = 256
	splitSize              = 2048
	configFlags            = 4
	microTilePixels        = 64
)

// SurfaceDim is the GX2 surface dimensionality.
type SurfaceDim uint32

const (
	Dim1D          SurfaceDim = 0
	Dim2D          SurfaceDim = 1
	Dim3D          SurfaceDim = 2
	DimCube        SurfaceDim = 3
	Dim1DArray     SurfaceDim = 4
	Dim2DArray     SurfaceDim = 5
	Dim2DMSAA      SurfaceDim = 6
	Dim2DMSAAArray SurfaceDim = 7
)

const numSurfaceDims = 8

func (d SurfaceDim) String() string {
	switch d {
	case Dim1D:
		return "1d"
	case Dim2D:
		return "2d"
	case Dim3D:
		return "3d"
	case DimCube:
		return "cube"
	case Dim1DArray:
		return "1d_array"
	case Dim2DArray:
		return "2d_array"
	case Dim2DMSAA:
		return "2d_msaa"
	case Dim2DMSAAArray:
		return "2d_msaa_array"
	default:
		return fmt.Sprintf("dim(%d)", uint32(d))
	}
}

// Surface describes a texture as stored in its record.
type Surface struct {
	Dim      SurfaceDim
	Width    uint32
	Height   uint32
	Depth    uint32
	NumMips  uint32
	Format   SurfaceFormat
	AA       uint32 // log2 of the sample count
	TileMode TileMode
	Swizzle  uint32
}

// SurfaceInfo is the padded layout of one mip level. Pitch and Height
// are counted in elements (4x4 blocks for BCn formats).
type SurfaceInfo struct {
	Bpp         uint32
	Pitch       uint32
	Height      uint32
	Depth       uint32
	TileMode    TileMode
	SurfSize    uint32
	BaseAlign   uint32
	PitchAlign  uint32
	HeightAlign uint32
	DepthAlign  uint32
	PixelPitch  uint32
	PixelHeight uint32
	SliceSize   uint32
}

type surfaceFlags uint32

const (
	flagDepth        surfaceFlags = 1 << 1
	flagCube         surfaceFlags = 1 << 4
	flagVolume       surfaceFlags = 1 << 5
	flagFmask        surfaceFlags = 1 << 6
	flagCubeAsArray  surfaceFlags = 1 << 7
	flagLinearWA     surfaceFlags = 1 << 9
	flagInputBaseMap surfaceFlags = 1 << 12
	flagDisplay      surfaceFlags = 1 << 13
)

type surfaceIn struct {
	tileMode   TileMode
	hwFormat   uint32
	bpp        uint32
	numSamples uint32
	width      uint32
	height     uint32
	numSlices  uint32
	slice      uint32
	mipLevel   uint32
	flags      surfaceFlags
}

// layout is what the linear, micro and macro passes produce.
type layout struct {
	pitch       uint32
	height      uint32
	numSlices   uint32
	surfSize    uint64
	tileMode    TileMode
	baseAlign   uint32
	pitchAlign  uint32
	heightAlign uint32
	depthAlign  uint32
}

// layoutIn carries the arguments shared by the three layout passes.
type layoutIn struct {
	tileMode     TileMode
	baseTileMode TileMode
	bpp          uint32
	numSamples   uint32
	pitch        uint32
	height       uint32
	numSlices    uint32
	mipLevel     uint32
	padDims      uint32
	flags        surfaceFlags
}

// ComputeSurfaceInfo computes the padded layout of mip level level of s.
// It is pure and safe for concurrent use.
func ComputeSurfaceInfo(s Surface, level uint32) (SurfaceInfo, error) {
	if !s.TileMode.Valid() {
		return SurfaceInfo{}, fmt.Errorf("%w: %d", ErrUnsupportedTileMode, uint32(s.TileMode))
	}
	if s.Dim >= numSurfaceDims {
		return SurfaceInfo{}, fmt.Errorf("%w: dimension %d", ErrInvalidSurface, uint32(s.Dim))
	}
	hw := s.Format.HWFormat()
	if hwFormatBpp[hw] == 0 {
		return SurfaceInfo{}, fmt.Errorf("%w: 0x%x", ErrUnsupportedFormat, uint32(s.Format))
	}
	if s.TileMode == TileModeLinearSpecial {
		return linearSpecialInfo(s, level)
	}

	in := surfaceIn{
		tileMode:   s.TileMode,
		hwFormat:   hw,
		bpp:        hwFormatBpp[hw],
		numSamples: 1 << s.AA,
		width:      max(1, s.Width>>level),
		mipLevel:   level,
	}
	levelHeight := max(1, s.Height>>level)
	switch s.Dim {
	case Dim1D:
		in.height, in.numSlices = 1, 1
	case Dim2D, Dim2DMSAA:
		in.height, in.numSlices = levelHeight, 1
	case Dim3D:
		in.height, in.numSlices = levelHeight, max(1, s.Depth>>level)
		in.flags |= flagVolume
	case DimCube:
		in.height, in.numSlices = levelHeight, max(6, s.Depth)
		in.flags |= flagCube
	case Dim1DArray:
		in.height, in.numSlices = 1, s.Depth
	case Dim2DArray, Dim2DMSAAArray:
		in.height, in.numSlices = levelHeight, s.Depth
	}
	if level == 0 {
		in.flags |= flagInputBaseMap
	} else {
		in.flags &^= flagInputBaseMap
	}
	return computeSurfaceInfo(in)
}

// linearSpecialInfo lays out tile mode 16, which is plain row-major
// storage with no padding beyond the element size.
func linearSpecialInfo(s Surface, level uint32) (SurfaceInfo, error) {
	if s.Format.HWFormat() == 0x35 {
		return SurfaceInfo{}, fmt.Errorf("%w: %s in %s", ErrUnsupportedTileMode, s.Format, s.TileMode)
	}
	numSamples := uint32(1) << s.AA
	block := s.Format.BlockSize()
	bpp := s.Format.BitsPerPixel()
	width := alignUp(s.Width>>level, block)

	info := SurfaceInfo{
		Bpp:         bpp,
		Pitch:       max(1, width/block),
		TileMode:    TileModeDefault,
		BaseAlign:   1,
		PitchAlign:  1,
		HeightAlign: 1,
		DepthAlign:  1,
	}
	switch s.Dim {
	case Dim1D:
		info.Height, info.Depth = 1, 1
	case Dim2D:
		info.Height, info.Depth = max(1, s.Height>>level), 1
	case Dim3D:
		info.Height, info.Depth = max(1, s.Height>>level), max(1, s.Depth>>level)
	case DimCube:
		info.Height, info.Depth = max(1, s.Height>>level), max(6, s.Depth)
	case Dim1DArray:
		info.Height, info.Depth = 1, s.Depth
	default:
		info.Height, info.Depth = max(1, s.Height>>level), s.Depth
	}
	if info.Depth == 0 {
		return SurfaceInfo{}, fmt.Errorf("%w: zero depth", ErrInvalidSurface)
	}
	info.Height = max(1, alignUp(info.Height, block)/block)
	info.PixelPitch = max(block, alignUp(s.Width>>level, block))
	info.PixelHeight = max(block, alignUp(s.Height>>level, block))

	size := uint64(bpp) * uint64(numSamples) * uint64(info.Depth) * uint64(info.Height) * uint64(info.Pitch) >> 3
	info.SurfSize = uint32(size)
	if s.Dim == Dim3D {
		info.SliceSize = info.SurfSize
	} else {
		info.SliceSize = info.SurfSize / info.Depth
	}
	return info, nil
}

func computeSurfaceInfo(in surfaceIn) (SurfaceInfo, error) {
	computeMipLevel(&in)

	bpp, expandX, expandY, mode := elementInfo(in.hwFormat)
	if bpp == 0 {
		return SurfaceInfo{}, fmt.Errorf("%w: hardware format %d", ErrUnsupportedFormat, in.hwFormat)
	}
	if mode == elemExpanded && expandX == 3 && in.tileMode == TileModeLinearAligned {
		in.flags |= flagLinearWA
	}
	adjustSurfaceInfo(&in, mode, expandX, expandY, bpp)

	l := computeSurfaceInfoEx(in)
	if l.numSlices == 0 {
		return SurfaceInfo{}, fmt.Errorf("%w: zero slices", ErrInvalidSurface)
	}

	info := SurfaceInfo{
		Bpp:         in.bpp,
		Pitch:       l.pitch,
		Height:      l.height,
		Depth:       l.numSlices,
		TileMode:    l.tileMode,
		SurfSize:    uint32(l.surfSize),
		BaseAlign:   l.baseAlign,
		PitchAlign:  l.pitchAlign,
		HeightAlign: l.heightAlign,
		DepthAlign:  l.depthAlign,
		PixelPitch:  l.pitch,
		PixelHeight: l.height,
	}
	if in.flags&flagLinearWA == 0 || in.mipLevel == 0 {
		restorePixelSize(&info, mode, expandX, expandY)
	}

	if in.flags&flagVolume != 0 {
		info.SliceSize = info.SurfSize
	} else {
		info.SliceSize = info.SurfSize / info.Depth
		if in.numSlices > 1 && in.slice == in.numSlices-1 {
			info.SliceSize += info.SliceSize * (info.Depth - in.numSlices)
		}
	}
	return info, nil
}

// computeMipLevel turns base-level dimensions into the dimensions of the
// requested level when the caller passed the base map.
func computeMipLevel(in *surfaceIn) {
	bcn := in.hwFormat >= 49 && in.hwFormat <= 55
	if bcn && (in.mipLevel == 0 || in.flags&flagInputBaseMap != 0) {
		in.width = alignUp(in.width, 4)
		in.height = alignUp(in.height, 4)
	}

	if bcn {
		if in.mipLevel != 0 {
			width, height, slices := in.width, in.height, in.numSlices
			if in.flags&flagInputBaseMap != 0 {
				width = max(1, width>>in.mipLevel)
				height = max(1, height>>in.mipLevel)
				if in.flags&flagCube == 0 {
					slices >>= in.mipLevel
				}
				slices = max(1, slices)
			}
			in.width = nextPow2(width)
			in.height = nextPow2(height)
			in.numSlices = slices
		}
		return
	}

	if in.mipLevel == 0 || in.flags&flagInputBaseMap == 0 {
		return
	}
	width := max(1, in.width>>in.mipLevel)
	height := max(1, in.height>>in.mipLevel)
	slices := in.numSlices
	if in.flags&flagCube == 0 {
		slices >>= in.mipLevel
	}
	slices = max(1, slices)
	if in.hwFormat != 47 && in.hwFormat != 48 {
		width, height, slices = nextPow2(width), nextPow2(height), nextPow2(slices)
	}
	in.width, in.height, in.numSlices = width, height, slices
}

// adjustSurfaceInfo converts texel dimensions into element dimensions.
func adjustSurfaceInfo(in *surfaceIn, mode elemMode, expandX, expandY, bpp uint32) {
	packed := bpp
	switch mode {
	case elemExpanded:
		packed = bpp / expandX / expandY
	case elemMono0, elemMono1:
		packed = expandY * expandX * bpp
	case elemBC1, elemBC4:
		packed = 64
	case elemBC2, elemBC3, elemBC5:
		packed = 128
	}
	in.bpp = packed

	if in.width == 0 || in.height == 0 || (expandX <= 1 && expandY <= 1) {
		return
	}
	var width, height uint32
	switch {
	case mode == elemExpanded:
		width, height = expandX*in.width, expandY*in.height
	case mode.isBCn():
		width, height = in.width/expandX, in.height/expandY
	default:
		width, height = (in.width+expandX-1)/expandX, (in.height+expandY-1)/expandY
	}
	in.width = max(1, width)
	in.height = max(1, height)
}

// restorePixelSize converts element pitch and height back to texels.
func restorePixelSize(info *SurfaceInfo, mode elemMode, expandX, expandY uint32) {
	if info.PixelPitch == 0 || info.PixelHeight == 0 || (expandX <= 1 && expandY <= 1) {
		return
	}
	width, height := info.PixelPitch, info.PixelHeight
	if mode == elemExpanded {
		width /= expandX
		height /= expandY
	} else {
		width *= expandX
		height *= expandY
	}
	info.PixelPitch = max(1, width)
	info.PixelHeight = max(1, height)
}

func computeSurfaceInfoEx(in surfaceIn) layout {
	p := layoutIn{
		tileMode:     in.tileMode,
		baseTileMode: in.tileMode,
		bpp:          in.bpp,
		numSamples:   max(1, in.numSamples),
		pitch:        in.width,
		height:       in.height,
		numSlices:    in.numSlices,
		mipLevel:     in.mipLevel,
		flags:        in.flags,
	}
	if p.flags&flagCube != 0 && p.mipLevel == 0 {
		p.padDims = 2
	}
	if p.flags&flagFmask != 0 {
		p.tileMode = p.tileMode.nonBankSwapped()
	} else {
		p.tileMode = mipLevelTileMode(p.tileMode, p.bpp, p.mipLevel, p.pitch, p.height,
			p.numSlices, p.numSamples, p.flags&flagDepth != 0, false)
	}

	switch {
	case p.tileMode == TileModeDefault || p.tileMode == TileModeLinearAligned:
		return layoutLinear(p)
	case p.tileMode.IsMicroTiled():
		return layoutMicroTiled(p)
	default:
		return layoutMacroTiled(p)
	}
}

func padDimensions(p layoutIn, tileMode TileMode, pitch, height, slices, pitchAlign, heightAlign, sliceAlign uint32) (uint32, uint32, uint32) {
	padDims := p.padDims
	if padDims == 0 {
		padDims = 3
	}
	if isPow2(pitchAlign) {
		pitch = alignUp(pitch, pitchAlign)
	} else {
		pitch = (pitch + pitchAlign - 1) / pitchAlign * pitchAlign
	}
	if padDims > 1 {
		height = alignUp(height, heightAlign)
	}
	thickness := tileMode.Thickness()
	if padDims > 2 || thickness > 1 {
		if p.flags&flagCube != 0 && (configFlags&(1<<3) == 0 || p.flags&flagCubeAsArray != 0) {
			slices = nextPow2(slices)
		}
		if thickness > 1 {
			slices = alignUp(slices, sliceAlign)
		}
	}
	return pitch, height, slices
}

func adjustPitchAlignment(flags surfaceFlags, pitchAlign uint32) uint32 {
	if flags&flagDisplay != 0 {
		return alignUp(pitchAlign, 0x20)
	}
	return pitchAlign
}

// mipDims applies the power-of-two rounding every non-base level gets and
// reports the pad mode to use.
func mipDims(p layoutIn, pitch, height uint32) (uint32, uint32, uint32, uint32) {
	slices, padDims := p.numSlices, p.padDims
	if p.mipLevel == 0 {
		return pitch, height, slices, padDims
	}
	pitch, height = nextPow2(pitch), nextPow2(height)
	if p.flags&flagCube != 0 {
		if p.numSlices <= 1 {
			padDims = 2
		} else {
			padDims = 0
		}
	} else {
		slices = nextPow2(p.numSlices)
	}
	return pitch, height, slices, padDims
}

func linearAlignments(tileMode TileMode, bpp uint32, flags surfaceFlags) (baseAlign, pitchAlign, heightAlign uint32) {
	switch tileMode {
	case TileModeDefault:
		baseAlign, pitchAlign, heightAlign = 1, 1, 1
		if bpp == 1 {
			pitchAlign = 8
		}
	case TileModeLinearAligned:
		baseAlign = pipeInterleaveBytes
		pitchAlign = max(0x40, 8*pipeInterleaveBytes/bpp)
		heightAlign = 1
	default:
		baseAlign, pitchAlign, heightAlign = 1, 1, 1
	}
	return baseAlign, adjustPitchAlignment(flags, pitchAlign), heightAlign
}

func layoutLinear(p layoutIn) layout {
	thickness := p.tileMode.Thickness()
	baseAlign, pitchAlign, heightAlign := linearAlignments(p.tileMode, p.bpp, p.flags)
	linearWA := p.flags&flagLinearWA != 0 && p.mipLevel == 0

	pitch := p.pitch
	if linearWA {
		pitch = nextPow2(pitch / 3)
	}
	pitch, height, slices, padDims := mipDims(p, pitch, p.height)
	p.padDims = padDims
	pitch, height, slices = padDimensions(p, p.tileMode, pitch, height, slices, pitchAlign, heightAlign, thickness)
	if linearWA {
		pitch *= 3
	}

	sliceCount := slices * p.numSamples / thickness
	return layout{
		pitch:       pitch,
		height:      height,
		numSlices:   slices,
		surfSize:    (uint64(height)*uint64(pitch)*uint64(sliceCount)*uint64(p.bpp)*uint64(p.numSamples) + 7) / 8,
		tileMode:    p.tileMode,
		baseAlign:   baseAlign,
		pitchAlign:  pitchAlign,
		heightAlign: heightAlign,
		depthAlign:  thickness,
	}
}

func microTiledAlignments(tileMode TileMode, bpp uint32, flags surfaceFlags, numSamples uint32) (baseAlign, pitchAlign, heightAlign uint32) {
	if bpp == 24 || bpp == 48 || bpp == 96 {
		bpp /= 3
	}
	pitchAlign = max(8, pipeInterleaveBytes/bpp/numSamples/tileMode.Thickness())
	return pipeInterleaveBytes, adjustPitchAlignment(flags, pitchAlign), 8
}

func layoutMicroTiled(p layoutIn) layout {
	tileMode := p.tileMode
	thickness := tileMode.Thickness()

	pitch, height, slices, padDims := mipDims(p, p.pitch, p.height)
	p.padDims = padDims
	if p.mipLevel != 0 && tileMode == TileMode1DTiledThick && slices < 4 {
		tileMode = TileMode1DTiledThin1
		thickness = 1
	}

	baseAlign, pitchAlign, heightAlign := microTiledAlignments(tileMode, p.bpp, p.flags, p.numSamples)
	pitch, height, slices = padDimensions(p, tileMode, pitch, height, slices, pitchAlign, heightAlign, thickness)

	return layout{
		pitch:       pitch,
		height:      height,
		numSlices:   slices,
		surfSize:    (uint64(height)*uint64(pitch)*uint64(slices)*uint64(p.bpp)*uint64(p.numSamples) + 7) / 8,
		tileMode:    tileMode,
		baseAlign:   baseAlign,
		pitchAlign:  pitchAlign,
		heightAlign: heightAlign,
		depthAlign:  thickness,
	}
}

func macroTiledAlignments(tileMode TileMode, bpp uint32, flags surfaceFlags, numSamples uint32) (baseAlign, pitchAlign, heightAlign, macroWidth, macroHeight uint32) {
	aspect := tileMode.macroAspectRatio()
	thickness := tileMode.Thickness()
	if bpp == 24 || bpp == 48 || bpp == 96 {
		bpp /= 3
	}
	if bpp == 3 {
		bpp = 1
	}

	macroWidth = 8 * numBanks / aspect
	macroHeight = aspect * 8 * numPipes

	pitchAlign = max(macroWidth, macroWidth*(pipeInterleaveBytes/bpp/(8*thickness)/numSamples))
	pitchAlign = adjustPitchAlignment(flags, pitchAlign)
	heightAlign = macroHeight

	macroTileBytes := numSamples * ((bpp*macroHeight*macroWidth + 7) >> 3)
	if thickness == 1 {
		baseAlign = max(macroTileBytes, (numSamples*heightAlign*bpp*pitchAlign+7)>>3)
	} else {
		baseAlign = max(pipeInterleaveBytes, (4*heightAlign*bpp*pitchAlign+7)>>3)
	}

	microTileBytes := (thickness*numSamples*(bpp<<6) + 7) >> 3
	if microTileBytes >= splitSize {
		baseAlign /= microTileBytes / splitSize
	}
	return baseAlign, pitchAlign, heightAlign, macroWidth, macroHeight
}

// bankSwappedWidth is the pitch, in elements, after which bank swapped
// modes rotate their bank order.
func bankSwappedWidth(tileMode TileMode, bpp, pitch, numSamples uint32) uint32 {
	if !tileMode.isBankSwapped() {
		return 0
	}
	// The address library passes the pipe interleave bit count here, not
	// the byte count; results depend on it.
	const groupSize = pipeInterleaveBitCount
	bytesPerSample := 8 * bpp

	slicesPerTile := uint32(1)
	if bytesPerSample != 0 {
		if samplesPerTile := splitSize / bytesPerSample; samplesPerTile != 0 {
			slicesPerTile = max(1, numSamples/samplesPerTile)
		}
	}
	if tileMode.isThickMacroTiled() {
		numSamples = 4
	}
	bytesPerTileSlice := numSamples * bytesPerSample / slicesPerTile

	factor := tileMode.macroAspectRatio()
	swapTiles := max(1, (swapSize>>1)/bpp)
	swapWidth := swapTiles * 8 * numBanks
	heightBytes := numSamples * factor * numPipes * bpp / slicesPerTile
	swapMax := numPipes * numBanks * rowSize / heightBytes
	swapMin := groupSize * 8 * numBanks / bytesPerTileSlice

	width := min(swapMax, max(swapMin, swapWidth))
	for width != 0 && width >= 2*pitch {
		width >>= 1
	}
	return width
}

func layoutMacroTiled(p layoutIn) layout {
	tileMode := p.tileMode
	thickness := tileMode.Thickness()

	pitch, height, slices, padDims := mipDims(p, p.pitch, p.height)
	p.padDims = padDims
	if p.mipLevel != 0 && tileMode == TileMode2DTiledThick && slices < 4 {
		tileMode = TileMode2DTiledThin1
		thickness = 1
	}

	padded := func(alignMode TileMode) layout {
		baseAlign, pitchAlign, heightAlign, _, _ := macroTiledAlignments(alignMode, p.bpp, p.flags, p.numSamples)
		if w := bankSwappedWidth(alignMode, p.bpp, p.pitch, p.numSamples); w > pitchAlign {
			pitchAlign = w
		}
		outPitch, outHeight, outSlices := padDimensions(p, alignMode, pitch, height, slices, pitchAlign, heightAlign, thickness)
		return layout{
			pitch:       outPitch,
			height:      outHeight,
			numSlices:   outSlices,
			surfSize:    (uint64(outHeight)*uint64(outPitch)*uint64(outSlices)*uint64(p.bpp)*uint64(p.numSamples) + 7) / 8,
			tileMode:    tileMode,
			baseAlign:   baseAlign,
			pitchAlign:  pitchAlign,
			heightAlign: heightAlign,
			depthAlign:  thickness,
		}
	}

	if p.tileMode == p.baseTileMode || p.mipLevel == 0 ||
		!p.baseTileMode.isThickMacroTiled() || p.tileMode.isThickMacroTiled() {
		return padded(p.tileMode)
	}

	_, pitchAlign, heightAlign, _, _ := macroTiledAlignments(p.baseTileMode, p.bpp, p.flags, p.numSamples)
	pitchAlignFactor := max(1, (pipeInterleaveBytes>>3)/p.bpp)
	if pitch < pitchAlign*pitchAlignFactor || height < heightAlign {
		micro := p
		micro.tileMode = TileMode1DTiledThin1
		return layoutMicroTiled(micro)
	}
	return padded(p.tileMode)
}

func alignUp(x, align uint32) uint32 {
	return ^(align - 1) & (x + align - 1)
}

func isPow2(x uint32) bool {
	return x&(x-1) == 0
}

func nextPow2(x uint32) uint32 {
	if x > 0x7fffffff {
		return 0x80000000
	}
	n := uint32(1)
	for n < x {
		n <<= 1
	}
	return n
}

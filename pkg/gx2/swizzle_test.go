package gx2

import (
	"bytes"
	"testing"
)

func patternBytes(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i*7 + i>>8)
	}
	return buf
}

func checksum(buf []byte) uint32 {
	var sum uint32
	for i, b := range buf {
		sum += uint32(i+1) * uint32(b)
	}
	return sum
}

func TestDeswizzleGolden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format   SurfaceFormat
		width    uint32
		height   uint32
		tileMode TileMode
		swizzle  uint32
		checksum uint32
		head     []byte
	}{
		{format: 0x1a, width: 64, height: 64, tileMode: 4, swizzle: 0x0, checksum: 4273467392, head: []byte{0, 7, 14, 21, 28, 35, 42, 49}},
		{format: 0x1a, width: 64, height: 64, tileMode: 4, swizzle: 0xd0000, checksum: 4273467392, head: []byte{0, 7, 14, 21, 28, 35, 42, 49}},
		{format: 0x31, width: 128, height: 128, tileMode: 4, swizzle: 0x300, checksum: 4294440960, head: []byte{3, 10, 17, 24, 31, 38, 45, 52}},
		{format: 0x1a, width: 32, height: 32, tileMode: 2, swizzle: 0x0, checksum: 1080933376, head: []byte{0, 7, 14, 21, 28, 35, 42, 49}},
		{format: 0x33, width: 64, height: 64, tileMode: 8, swizzle: 0x100, checksum: 1071033344, head: []byte{1, 8, 15, 22, 29, 36, 43, 50}},
		{format: 0x7, width: 48, height: 40, tileMode: 4, swizzle: 0x200, checksum: 925370432, head: []byte{2, 9, 16, 23, 30, 37, 44, 51}},
		{format: 0x1a, width: 16, height: 16, tileMode: 1, swizzle: 0x0, checksum: 61676288, head: []byte{0, 7, 14, 21, 28, 35, 42, 49}},
		{format: 0x1a, width: 256, height: 256, tileMode: 7, swizzle: 0x0, checksum: 151453696, head: []byte{0, 7, 14, 21, 28, 35, 42, 49}},
	}

	for _, tt := range tests {
		s := Surface{Dim: Dim2D, Width: tt.width, Height: tt.height, Depth: 1, NumMips: 1, Format: tt.format, TileMode: tt.tileMode, Swizzle: tt.swizzle}
		info, err := ComputeSurfaceInfo(s, 0)
		if err != nil {
			t.Fatalf("%s %dx%d: %v", tt.format, tt.width, tt.height, err)
		}
		out, stats := Deswizzle(LevelSwizzleParams(s, info, 0), patternBytes(int(info.SurfSize)))
		if stats.Skipped != 0 {
			t.Fatalf("%s %dx%d %s: skipped %d elements", tt.format, tt.width, tt.height, tt.tileMode, stats.Skipped)
		}
		if got := checksum(out); got != tt.checksum {
			t.Fatalf("%s %dx%d %s: checksum got %d want %d", tt.format, tt.width, tt.height, tt.tileMode, got, tt.checksum)
		}
		if !bytes.Equal(out[:len(tt.head)], tt.head) {
			t.Fatalf("%s %dx%d %s: head got %v want %v", tt.format, tt.width, tt.height, tt.tileMode, out[:len(tt.head)], tt.head)
		}
	}
}

func TestSwizzleRoundTrip(t *testing.T) {
	t.Parallel()

	modes := []TileMode{
		TileModeDefault, TileModeLinearAligned, TileMode1DTiledThin1, TileMode1DTiledThick,
		TileMode2DTiledThin1, TileMode2DTiledThin2, TileMode2DTiledThin4, TileMode2DTiledThick,
		TileMode2BTiledThin1, TileMode2BTiledThin2, TileMode2BTiledThin4, TileMode2BTiledThick,
		TileMode3DTiledThin1, TileMode3DTiledThick, TileMode3BTiledThin1, TileMode3BTiledThick,
		TileModeLinearSpecial,
	}
	formats := []SurfaceFormat{FormatR8Unorm, FormatR5G6B5Unorm, FormatR8G8B8A8Unorm, FormatBC1Unorm, FormatBC3Unorm}

	for _, mode := range modes {
		for _, format := range formats {
			t.Run(mode.String()+"/"+format.String(), func(t *testing.T) {
				t.Parallel()
				s := Surface{Dim: Dim2D, Width: 128, Height: 96, Depth: 1, NumMips: 1, Format: format, TileMode: mode}
				info, err := ComputeSurfaceInfo(s, 0)
				if err != nil {
					t.Fatalf("ComputeSurfaceInfo: %v", err)
				}
				p := LevelSwizzleParams(s, info, 0)
				tiled := patternBytes(int(info.SurfSize))

				linear, stats := Deswizzle(p, tiled)
				if stats.Skipped != 0 {
					t.Fatalf("deswizzle skipped %d elements", stats.Skipped)
				}
				back, _ := Swizzle(p, linear)

				ap := AddrParams{Bpp: p.Bpp, Pitch: p.Pitch, Height: p.SurfaceHeight, TileMode: p.TileMode}
				ap.PipeSwizzle, ap.BankSwizzle = SplitSwizzle(p.Swizzle)
				bpe := uint64(p.Bpp / 8)
				for y := uint32(0); y < p.ElementsHigh(); y++ {
					for x := uint32(0); x < p.ElementsWide(); x++ {
						addr := AddrFromCoord(Coord{X: x, Y: y}, ap)
						if !bytes.Equal(back[addr:addr+bpe], tiled[addr:addr+bpe]) {
							t.Fatalf("element (%d,%d) at %d differs after round trip", x, y, addr)
						}
					}
				}

				again, _ := Deswizzle(p, back)
				n := p.LinearSize()
				if !bytes.Equal(again[:n], linear[:n]) {
					t.Fatalf("linear image differs after second deswizzle")
				}
			})
		}
	}
}

func TestThickBC3DemotesToThin(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		mode, want TileMode
	}{
		{TileMode2DTiledThick, TileMode2DTiledThin1},
		{TileMode2BTiledThick, TileMode2BTiledThin1},
	} {
		s := Surface{Dim: Dim2D, Width: 128, Height: 96, Depth: 1, NumMips: 1, Format: FormatBC3Unorm, TileMode: tc.mode}
		info, err := ComputeSurfaceInfo(s, 0)
		if err != nil {
			t.Fatalf("%s: ComputeSurfaceInfo: %v", tc.mode, err)
		}
		if info.TileMode != tc.want {
			t.Fatalf("%s: tile mode got %s want %s", tc.mode, info.TileMode, tc.want)
		}
		p := LevelSwizzleParams(s, info, 0)
		tiled := patternBytes(int(info.SurfSize))
		linear, stats := Deswizzle(p, tiled)
		if stats.Skipped != 0 {
			t.Fatalf("%s: deswizzle skipped %d elements", tc.mode, stats.Skipped)
		}
		back, _ := Swizzle(p, linear)
		again, _ := Deswizzle(p, back)
		n := p.LinearSize()
		if !bytes.Equal(again[:n], linear[:n]) {
			t.Fatalf("%s: linear image differs after round trip", tc.mode)
		}
	}
}

func TestDeswizzleIdentityForSingleBlock(t *testing.T) {
	t.Parallel()

	s := Surface{Dim: Dim2D, Width: 4, Height: 4, Depth: 1, NumMips: 1, Format: FormatBC1Unorm, TileMode: TileModeLinearAligned}
	info, err := ComputeSurfaceInfo(s, 0)
	if err != nil {
		t.Fatalf("ComputeSurfaceInfo: %v", err)
	}
	block := []byte{0xff, 0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	out, stats := Deswizzle(LevelSwizzleParams(s, info, 0), block)
	if stats.Copied != 1 || stats.Skipped != 0 {
		t.Fatalf("stats: got %+v want 1 copied", stats)
	}
	if !bytes.Equal(out, block) {
		t.Fatalf("deswizzled block: got %x want %x", out, block)
	}
}

func TestDeswizzleCountsSkippedElements(t *testing.T) {
	t.Parallel()

	s := Surface{Dim: Dim2D, Width: 64, Height: 64, Depth: 1, NumMips: 1, Format: FormatR8G8B8A8Unorm, TileMode: TileMode2DTiledThin1}
	info, err := ComputeSurfaceInfo(s, 0)
	if err != nil {
		t.Fatalf("ComputeSurfaceInfo: %v", err)
	}
	short := patternBytes(int(info.SurfSize) / 2)
	_, stats := Deswizzle(LevelSwizzleParams(s, info, 0), short)
	if stats.Skipped == 0 {
		t.Fatalf("expected skipped elements for a truncated surface")
	}
	if stats.Copied+stats.Skipped != 64*64 {
		t.Fatalf("copied+skipped: got %d want %d", stats.Copied+stats.Skipped, 64*64)
	}
}

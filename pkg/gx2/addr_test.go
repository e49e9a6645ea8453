package gx2

import "testing"

func TestAddrFromCoordMacroAndMicroGolden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tileMode    TileMode
		bpp         uint32
		x, y        uint32
		pipeSwizzle uint32
		bankSwizzle uint32
		want        uint64
	}{
		{tileMode: 3, bpp: 32, x: 37, y: 21, pipeSwizzle: 0, bankSwizzle: 0, want: 37044},
		{tileMode: 4, bpp: 8, x: 5, y: 3, pipeSwizzle: 0, bankSwizzle: 0, want: 29},
		{tileMode: 4, bpp: 8, x: 13, y: 9, pipeSwizzle: 0, bankSwizzle: 0, want: 533},
		{tileMode: 4, bpp: 8, x: 13, y: 9, pipeSwizzle: 1, bankSwizzle: 2, want: 1813},
		{tileMode: 4, bpp: 16, x: 13, y: 9, pipeSwizzle: 0, bankSwizzle: 0, want: 538},
		{tileMode: 4, bpp: 16, x: 13, y: 9, pipeSwizzle: 1, bankSwizzle: 2, want: 1818},
		{tileMode: 4, bpp: 16, x: 70, y: 45, pipeSwizzle: 0, bankSwizzle: 0, want: 11100},
		{tileMode: 4, bpp: 32, x: 37, y: 21, pipeSwizzle: 0, bankSwizzle: 0, want: 11444},
		{tileMode: 4, bpp: 32, x: 70, y: 45, pipeSwizzle: 1, bankSwizzle: 2, want: 22200},
		{tileMode: 4, bpp: 128, x: 5, y: 3, pipeSwizzle: 1, bankSwizzle: 2, want: 3504},
		{tileMode: 4, bpp: 128, x: 37, y: 21, pipeSwizzle: 1, bankSwizzle: 2, want: 45488},
		{tileMode: 5, bpp: 8, x: 0, y: 0, pipeSwizzle: 1, bankSwizzle: 2, want: 1280},
		{tileMode: 5, bpp: 32, x: 13, y: 9, pipeSwizzle: 1, bankSwizzle: 2, want: 1844},
		{tileMode: 5, bpp: 64, x: 0, y: 0, pipeSwizzle: 1, bankSwizzle: 2, want: 1280},
		{tileMode: 5, bpp: 128, x: 0, y: 0, pipeSwizzle: 1, bankSwizzle: 2, want: 1280},
		{tileMode: 6, bpp: 8, x: 5, y: 3, pipeSwizzle: 0, bankSwizzle: 0, want: 29},
		{tileMode: 6, bpp: 8, x: 70, y: 45, pipeSwizzle: 1, bankSwizzle: 2, want: 5686},
		{tileMode: 7, bpp: 32, x: 13, y: 9, pipeSwizzle: 0, bankSwizzle: 0, want: 564},
		{tileMode: 7, bpp: 64, x: 0, y: 0, pipeSwizzle: 1, bankSwizzle: 2, want: 1280},
		{tileMode: 7, bpp: 64, x: 5, y: 3, pipeSwizzle: 1, bankSwizzle: 2, want: 1496},
		{tileMode: 8, bpp: 16, x: 0, y: 0, pipeSwizzle: 1, bankSwizzle: 2, want: 1280},
		{tileMode: 9, bpp: 16, x: 0, y: 0, pipeSwizzle: 1, bankSwizzle: 2, want: 1280},
		{tileMode: 9, bpp: 128, x: 37, y: 21, pipeSwizzle: 0, bankSwizzle: 0, want: 22192},
		{tileMode: 10, bpp: 64, x: 70, y: 45, pipeSwizzle: 1, bankSwizzle: 2, want: 34928},
		{tileMode: 11, bpp: 16, x: 70, y: 45, pipeSwizzle: 1, bankSwizzle: 2, want: 42588},
		{tileMode: 11, bpp: 32, x: 0, y: 0, pipeSwizzle: 1, bankSwizzle: 2, want: 1280},
		{tileMode: 12, bpp: 8, x: 5, y: 3, pipeSwizzle: 1, bankSwizzle: 2, want: 1309},
		{tileMode: 12, bpp: 8, x: 13, y: 9, pipeSwizzle: 0, bankSwizzle: 0, want: 533},
		{tileMode: 12, bpp: 8, x: 70, y: 45, pipeSwizzle: 1, bankSwizzle: 2, want: 5814},
		{tileMode: 12, bpp: 16, x: 70, y: 45, pipeSwizzle: 1, bankSwizzle: 2, want: 11868},
		{tileMode: 14, bpp: 8, x: 13, y: 9, pipeSwizzle: 0, bankSwizzle: 0, want: 533},
		{tileMode: 14, bpp: 64, x: 5, y: 3, pipeSwizzle: 1, bankSwizzle: 2, want: 1496},
		{tileMode: 14, bpp: 64, x: 70, y: 45, pipeSwizzle: 0, bankSwizzle: 0, want: 43376},
		{tileMode: 14, bpp: 128, x: 70, y: 45, pipeSwizzle: 1, bankSwizzle: 2, want: 86224},
		{tileMode: 15, bpp: 8, x: 13, y: 9, pipeSwizzle: 1, bankSwizzle: 2, want: 1813},
		{tileMode: 15, bpp: 16, x: 13, y: 9, pipeSwizzle: 0, bankSwizzle: 0, want: 538},
		{tileMode: 15, bpp: 16, x: 70, y: 45, pipeSwizzle: 1, bankSwizzle: 2, want: 42588},
		{tileMode: 15, bpp: 32, x: 13, y: 9, pipeSwizzle: 1, bankSwizzle: 2, want: 1844},
		{tileMode: 15, bpp: 64, x: 0, y: 0, pipeSwizzle: 1, bankSwizzle: 2, want: 1280},
		{tileMode: 15, bpp: 64, x: 13, y: 9, pipeSwizzle: 0, bankSwizzle: 0, want: 600},
	}

	for _, tt := range tests {
		p := AddrParams{
			Bpp:         tt.bpp,
			Pitch:       128,
			Height:      64,
			TileMode:    tt.tileMode,
			PipeSwizzle: tt.pipeSwizzle,
			BankSwizzle: tt.bankSwizzle,
		}
		if got := AddrFromCoord(Coord{X: tt.x, Y: tt.y}, p); got != tt.want {
			t.Fatalf("AddrFromCoord(%s, bpp=%d, %d,%d, swizzle=%d/%d): got %d want %d",
				tt.tileMode, tt.bpp, tt.x, tt.y, tt.pipeSwizzle, tt.bankSwizzle, got, tt.want)
		}
	}
}

func TestAddrFromCoordLinear(t *testing.T) {
	t.Parallel()

	p := AddrParams{Bpp: 32, Pitch: 64, Height: 16, TileMode: TileModeLinearAligned}
	if got := AddrFromCoord(Coord{X: 7, Y: 3}, p); got != 796 {
		t.Fatalf("linear address: got %d want 796", got)
	}
	if got := AddrFromCoord(Coord{X: 7, Y: 3, Z: 1}, p); got != 796+64*16*4 {
		t.Fatalf("linear address slice 1: got %d want %d", got, 796+64*16*4)
	}
}

func TestAddrFromCoordDeterministic(t *testing.T) {
	t.Parallel()

	p := AddrParams{Bpp: 64, Pitch: 256, Height: 128, TileMode: TileMode2BTiledThin2, PipeSwizzle: 1, BankSwizzle: 3}
	for y := uint32(0); y < 40; y += 3 {
		for x := uint32(0); x < 90; x += 7 {
			a := AddrFromCoord(Coord{X: x, Y: y}, p)
			b := AddrFromCoord(Coord{X: x, Y: y}, p)
			if a != b {
				t.Fatalf("address of (%d,%d) not deterministic: %d vs %d", x, y, a, b)
			}
		}
	}
}

func TestPixelIndexWithinMicroTileIsPermutation(t *testing.T) {
	t.Parallel()

	for _, bpp := range []uint32{8, 16, 32, 64, 96, 128} {
		seen := make(map[uint32]bool, 64)
		for y := uint32(0); y < 8; y++ {
			for x := uint32(0); x < 8; x++ {
				idx := pixelIndexWithinMicroTile(Coord{X: x, Y: y}, bpp, TileMode1DTiledThin1)
				if idx >= 64 {
					t.Fatalf("bpp %d: index %d out of micro tile", bpp, idx)
				}
				if seen[idx] {
					t.Fatalf("bpp %d: index %d produced twice", bpp, idx)
				}
				seen[idx] = true
			}
		}
	}
}

func TestSplitSwizzle(t *testing.T) {
	t.Parallel()

	pipe, bank := SplitSwizzle(0x00000700)
	if pipe != 1 || bank != 3 {
		t.Fatalf("SplitSwizzle(0x700): got %d/%d want 1/3", pipe, bank)
	}
	pipe, bank = SplitSwizzle(0x000d0000)
	if pipe != 0 || bank != 0 {
		t.Fatalf("SplitSwizzle(0xd0000): got %d/%d want 0/0", pipe, bank)
	}
}

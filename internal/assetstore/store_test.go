package assetstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/samcharles93/bfres/internal/fixture"
	"github.com/samcharles93/bfres/internal/logger"
	"github.com/samcharles93/bfres/pkg/fres"
	"github.com/samcharles93/bfres/pkg/gx2"
)

func writeContainer(t *testing.T, c fixture.Container) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), c.Name+".bfres")
	if err := os.WriteFile(path, fixture.Build(c), 0o644); err != nil {
		t.Fatalf("write container: %v", err)
	}
	return path
}

func openQuad(t *testing.T, opts Options) *Store {
	t.Helper()
	s, err := Open(writeContainer(t, fixture.Container{
		Name: "quad_pack",
		Textures: []fixture.Texture{
			fixture.BC1Texture("albedo"),
			fixture.SolidTexture("mask", 8, 8, 2, gx2.TileModeLinearAligned, [4]byte{0, 255, 0, 255}),
		},
		Models: []fixture.Model{fixture.QuadModel("quad_mdl", "albedo")},
	}), opts)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s
}

func TestStoreListings(t *testing.T) {
	t.Parallel()
	s := openQuad(t, Options{})

	name, err := s.Name()
	if err != nil || name != "quad_pack" {
		t.Fatalf("Name: got %q, %v want quad_pack", name, err)
	}

	info, err := s.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Version != "3.4.0.1" || info.Groups["textures"] != 2 || info.Groups["models"] != 1 || len(info.Groups) != 2 {
		t.Fatalf("container info: got %+v", info)
	}

	textures, err := s.Textures()
	if err != nil {
		t.Fatalf("Textures: %v", err)
	}
	if len(textures) != 2 {
		t.Fatalf("textures: got %d want 2", len(textures))
	}
	mask := textures[1]
	if mask.Name != "mask" || mask.Width != 8 || mask.NumMips != 2 {
		t.Fatalf("mask info: got %+v", mask)
	}
	if mask.Format != gx2.FormatR8G8B8A8Unorm.String() || mask.TileMode != "linear_aligned" || mask.Dim != "2d" {
		t.Fatalf("mask surface: got %+v", mask)
	}

	albedo, err := s.TextureInfo("albedo")
	if err != nil {
		t.Fatalf("TextureInfo: %v", err)
	}
	if albedo.Index != 0 || albedo.Format != gx2.FormatBC1Unorm.String() {
		t.Fatalf("albedo info: got %+v", albedo)
	}
	if _, err := s.TextureInfo("missing"); !errors.Is(err, fres.ErrNotFound) {
		t.Fatalf("missing texture: got %v want %v", err, fres.ErrNotFound)
	}

	models, err := s.Models()
	if err != nil {
		t.Fatalf("Models: %v", err)
	}
	want := ModelInfo{Index: 0, Name: "quad_mdl", TotalVertices: 4, Shapes: 1, Materials: 1, Bones: 2}
	if len(models) != 1 || models[0] != want {
		t.Fatalf("models: got %+v want %+v", models, want)
	}
}

func TestStoreTextureCache(t *testing.T) {
	t.Parallel()
	s := openQuad(t, Options{CacheSize: 1})
	ctx := logger.WithContext(context.Background(), logger.Discard())

	if s.Cached("albedo") {
		t.Fatal("albedo cached before first decode")
	}
	first, err := s.Texture(ctx, "albedo")
	if err != nil {
		t.Fatalf("Texture: %v", err)
	}
	if !s.Cached("albedo") {
		t.Fatal("albedo not cached after decode")
	}
	second, err := s.Texture(ctx, "albedo")
	if err != nil {
		t.Fatalf("Texture again: %v", err)
	}
	if first != second {
		t.Fatal("second lookup did not come from the cache")
	}

	if _, err := s.Texture(ctx, "mask"); err != nil {
		t.Fatalf("Texture mask: %v", err)
	}
	if s.Cached("albedo") && s.Cached("mask") {
		t.Fatal("cache of size 1 holds two textures")
	}
}

func TestStoreTextureErrors(t *testing.T) {
	t.Parallel()
	bad := fixture.BC1Texture("bad")
	bad.AA = 1
	path := writeContainer(t, fixture.Container{Name: "bad_pack", Textures: []fixture.Texture{bad}})
	s, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := logger.WithContext(context.Background(), logger.Discard())

	if _, err := s.Texture(ctx, "nope"); !errors.Is(err, fres.ErrNotFound) {
		t.Fatalf("missing: got %v want %v", err, fres.ErrNotFound)
	}
	_, err = s.Texture(ctx, "bad")
	if err == nil {
		t.Fatal("multisampled texture decoded")
	}
	if s.Cached("bad") {
		t.Fatal("failed decode was cached")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.Texture(cancelled, "bad"); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled: got %v want %v", err, context.Canceled)
	}
}

func TestStoreModelAndImport(t *testing.T) {
	t.Parallel()
	s := openQuad(t, Options{AllMips: true})
	ctx := logger.WithContext(context.Background(), logger.Discard())

	m, warnings, err := s.Model(ctx, "quad_mdl")
	if err != nil {
		t.Fatalf("Model: %v", err)
	}
	if len(warnings) != 0 || len(m.Shapes) != 1 {
		t.Fatalf("model: got %d shapes %d warnings", len(m.Shapes), len(warnings))
	}
	if _, _, err := s.Model(ctx, "other"); !errors.Is(err, fres.ErrNotFound) {
		t.Fatalf("missing model: got %v want %v", err, fres.ErrNotFound)
	}

	res, err := s.Import(ctx, 2)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Textures["mask"].Levels) != 2 {
		t.Fatalf("mask levels: got %d want 2", len(res.Textures["mask"].Levels))
	}
	if !s.Cached("albedo") || !s.Cached("mask") {
		t.Fatal("imported textures were not cached")
	}
}

func TestStoreClosed(t *testing.T) {
	t.Parallel()
	f, err := fres.Parse(fixture.Build(fixture.Container{Name: "tiny"}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := New(f, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := s.Textures(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Textures after close: got %v want %v", err, ErrClosed)
	}
	if _, err := s.Name(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Name after close: got %v want %v", err, ErrClosed)
	}
}

func TestStoreTextureDuringClose(t *testing.T) {
	t.Parallel()
	s, err := Open(writeContainer(t, fixture.Container{
		Name: "busy_pack",
		Textures: []fixture.Texture{
			fixture.SolidTexture("big", 256, 256, 1, gx2.TileMode2DTiledThin1, [4]byte{9, 9, 9, 255}),
		},
	}), Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := logger.WithContext(context.Background(), logger.Discard())

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if _, err := s.Texture(ctx, "big"); errors.Is(err, ErrClosed) {
					return
				}
				s.cache.Purge()
			}
		}()
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wg.Wait()

	if n := s.cache.Len(); n != 0 {
		t.Fatalf("cache after close: got %d entries want 0", n)
	}
	if _, err := s.Texture(ctx, "big"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Texture after close: got %v want %v", err, ErrClosed)
	}
	if s.Cached("big") {
		t.Fatal("Cached after close: got true want false")
	}
}

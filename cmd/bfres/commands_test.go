package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/bfres/internal/export"
	"github.com/samcharles93/bfres/internal/fixture"
	"github.com/samcharles93/bfres/internal/logger"
	"github.com/samcharles93/bfres/pkg/gx2"
)

func writeQuadPack(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quad_pack.bfres")
	data := fixture.Build(fixture.Container{
		Name: "quad_pack",
		Textures: []fixture.Texture{
			fixture.BC1Texture("albedo"),
			fixture.SolidTexture("mask", 8, 8, 2, gx2.TileModeLinearAligned, [4]byte{0, 255, 0, 255}),
		},
		Models: []fixture.Model{fixture.QuadModel("quad_mdl", "albedo")},
	})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write container: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	cfg = Config{}
	t.Cleanup(func() { workers, allMips = 0, false })
	root := texturesCmd()
	switch args[0] {
	case "models":
		root = modelsCmd()
	case "inspect":
		root = inspectCmd()
	}
	ctx := logger.WithContext(context.Background(), logger.Discard())
	return root.Run(ctx, args)
}

func TestTexturesCommand(t *testing.T) {
	path := writeQuadPack(t)
	out := t.TempDir()

	if err := runCommand(t, "textures", "--out", out, "--all-mips", path); err != nil {
		t.Fatalf("textures: %v", err)
	}
	m, err := export.ReadManifest(filepath.Join(out, export.ManifestFile))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if m.Container != "quad_pack" {
		t.Fatalf("container: got %q want %q", m.Container, "quad_pack")
	}
	want := []string{"albedo.png", "mask.png", "mask_mip1.png"}
	if len(m.Entries) != len(want) {
		t.Fatalf("entries: got %d want %d", len(m.Entries), len(want))
	}
	for i, file := range want {
		if m.Entries[i].File != file {
			t.Fatalf("entry %d: got %q want %q", i, m.Entries[i].File, file)
		}
		if _, err := os.Stat(filepath.Join(out, file)); err != nil {
			t.Fatalf("stat %s: %v", file, err)
		}
	}
}

func TestTexturesCommandNameFilter(t *testing.T) {
	path := writeQuadPack(t)
	out := t.TempDir()

	if err := runCommand(t, "textures", "--out", out, "--format", "raw", "--name", "mask", path); err != nil {
		t.Fatalf("textures: %v", err)
	}
	m, err := export.ReadManifest(filepath.Join(out, export.ManifestFile))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if len(m.Entries) != 1 || m.Entries[0].File != "mask"+export.FormatRaw.Ext() {
		t.Fatalf("entries: got %+v", m.Entries)
	}

	if err := runCommand(t, "textures", "--out", out, "--name", "nope", path); err == nil {
		t.Fatalf("expected error for an unknown texture name")
	}
	if err := runCommand(t, "textures", "--out", out, "--format", "tga", path); err == nil {
		t.Fatalf("expected error for an unknown format")
	}
}

func TestModelsCommand(t *testing.T) {
	path := writeQuadPack(t)
	out := t.TempDir()

	if err := runCommand(t, "models", "--out", out, "--with-textures", path); err != nil {
		t.Fatalf("models: %v", err)
	}
	m, err := export.ReadManifest(filepath.Join(out, export.ManifestFile))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if len(m.Entries) != 3 {
		t.Fatalf("entries: got %d want 3", len(m.Entries))
	}
	if m.Entries[0].File != "quad_mdl.model.json" {
		t.Fatalf("first entry: got %q want %q", m.Entries[0].File, "quad_mdl.model.json")
	}
}

func TestInspectCommand(t *testing.T) {
	path := writeQuadPack(t)

	null, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open devnull: %v", err)
	}
	stdout := os.Stdout
	os.Stdout = null
	t.Cleanup(func() {
		os.Stdout = stdout
		_ = null.Close()
	})

	if err := runCommand(t, "inspect", "--all", path); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if err := runCommand(t, "inspect", "--json", path); err != nil {
		t.Fatalf("inspect --json: %v", err)
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()
	cases := map[uint64]string{
		0:       "0 B",
		1023:    "1023 B",
		1024:    "1.0 KiB",
		1536:    "1.5 KiB",
		1 << 20: "1.0 MiB",
	}
	for in, want := range cases {
		if got := formatBytes(in); got != want {
			t.Fatalf("formatBytes(%d): got %q want %q", in, got, want)
		}
	}
}

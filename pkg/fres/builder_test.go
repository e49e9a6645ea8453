package fres

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/bfres/internal/fixture"
)

func parseFixture(t *testing.T, c fixture.Container) *File {
	t.Helper()
	f, err := Parse(fixture.Build(c))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return f
}

func writeFixture(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.bfres")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func quadContainer() fixture.Container {
	return fixture.Container{
		Name:     "quad_pack",
		Textures: []fixture.Texture{fixture.BC1Texture("albedo")},
		Models:   []fixture.Model{fixture.QuadModel("quad_mdl", "albedo")},
	}
}

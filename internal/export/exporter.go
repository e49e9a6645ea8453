// Package export writes imported textures and models to disk: texture
// levels as PNG or zstd-compressed RGBA, models as JSON, and a manifest
// describing the run.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/samcharles93/bfres/internal/importer"
	"github.com/samcharles93/bfres/pkg/texel"
)

// Exporter writes files into Dir and records each of them in its manifest.
type Exporter struct {
	Dir    string
	Format Format
	// Level is the zstd level for FormatRaw; zero selects the default.
	Level int

	manifest *Manifest
}

func New(dir string, format Format, level int, manifest *Manifest) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Exporter{Dir: dir, Format: format, Level: level, manifest: manifest}, nil
}

func (e *Exporter) Manifest() *Manifest { return e.manifest }

// Texture writes every decoded level of tex. Level 0 is named after the
// texture; further levels get a _mipN suffix.
func (e *Exporter) Texture(tex *importer.Texture) error {
	for i, img := range tex.Levels {
		file := fileName(tex.Name)
		if i > 0 {
			file += fmt.Sprintf("_mip%d", i)
		}
		file += e.Format.Ext()
		if err := e.writeLevel(filepath.Join(e.Dir, file), img); err != nil {
			return fmt.Errorf("texture %q level %d: %w", tex.Name, i, err)
		}
		e.manifest.Entries = append(e.manifest.Entries, ManifestEntry{
			Kind:   string(importer.KindTexture),
			Name:   tex.Name,
			File:   file,
			Level:  i,
			Width:  img.Width,
			Height: img.Height,
			Format: tex.Surface.Format.String(),
		})
	}
	return nil
}

func (e *Exporter) writeLevel(path string, img *texel.Image) error {
	if e.Format == FormatPNG {
		return SavePNG(path, img)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteRaw(f, img, e.Level); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Model writes m as <name>.model.json.
func (e *Exporter) Model(m *importer.Model) error {
	file := fileName(m.Name) + ".model.json"
	f, err := os.Create(filepath.Join(e.Dir, file))
	if err != nil {
		return err
	}
	if err := WriteModelJSON(f, m); err != nil {
		_ = f.Close()
		return fmt.Errorf("model %q: %w", m.Name, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	e.manifest.Entries = append(e.manifest.Entries, ManifestEntry{
		Kind: string(importer.KindModel),
		Name: m.Name,
		File: file,
	})
	return nil
}

func (e *Exporter) Warnings(ws []importer.Warning) {
	for _, w := range ws {
		e.manifest.Warnings = append(e.manifest.Warnings, ManifestWarning{
			Kind:  string(w.Kind),
			Name:  w.Name,
			Index: w.Index,
			Error: w.Err.Error(),
		})
	}
}

// Close writes the manifest through a temporary file renamed into place.
func (e *Exporter) Close() error {
	data, err := json.MarshalIndent(e.manifest, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(e.Dir, ".manifest-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(e.Dir, ManifestFile))
}

// fileName maps an asset name to a single path element.
func fileName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, name)
}

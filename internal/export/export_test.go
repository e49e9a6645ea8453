package export

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/samcharles93/bfres/internal/fixture"
	"github.com/samcharles93/bfres/internal/importer"
	"github.com/samcharles93/bfres/internal/logger"
	"github.com/samcharles93/bfres/pkg/fres"
	"github.com/samcharles93/bfres/pkg/gx2"
	"github.com/samcharles93/bfres/pkg/texel"
)

// gradient is a 2x2 image whose bottom row is red and top row is blue.
func gradient() *texel.Image {
	img := texel.NewImage(2, 2)
	copy(img.Pix, []float32{
		1, 0, 0, 1, 1, 0, 0, 1,
		0, 0, 1, 1, 0, 0, 1, 0.5,
	})
	return img
}

func importQuad(t *testing.T) *importer.Result {
	t.Helper()
	f, err := fres.Parse(fixture.Build(fixture.Container{
		Name: "quad_pack",
		Textures: []fixture.Texture{
			fixture.BC1Texture("albedo"),
			fixture.SolidTexture("env/sky", 8, 8, 2, gx2.TileModeLinearAligned, [4]byte{0, 0, 255, 255}),
		},
		Models: []fixture.Model{fixture.QuadModel("quad_mdl", "albedo")},
	}))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	ctx := logger.WithContext(context.Background(), logger.Discard())
	res, err := importer.NewSession(f, importer.Options{AllMips: true}).Run(ctx)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	return res
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Format{"": FormatPNG, "png": FormatPNG, "raw": FormatRaw} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q): got %q, %v want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("tga"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("ParseFormat(tga): got %v want %v", err, ErrUnknownFormat)
	}
}

func TestEncodePNGTopRowFirst(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := EncodePNG(&buf, gradient()); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := imaging.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	top := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA)
	if top != (color.NRGBA{0, 0, 255, 255}) {
		t.Fatalf("top-left: got %v want blue", top)
	}
	bottom := color.NRGBAModel.Convert(img.At(0, 1)).(color.NRGBA)
	if bottom != (color.NRGBA{255, 0, 0, 255}) {
		t.Fatalf("bottom-left: got %v want red", bottom)
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()
	big := texel.NewImage(64, 32)
	got := Preview(big, 16).Bounds()
	if got.Dx() != 16 || got.Dy() != 8 {
		t.Fatalf("preview bounds: got %v want 16x8", got)
	}
	if got := Preview(gradient(), 16).Bounds(); got.Dx() != 2 {
		t.Fatalf("small preview: got %v want unscaled", got)
	}
}

func TestRawRoundTrip(t *testing.T) {
	t.Parallel()
	for _, level := range []int{0, 1, 19} {
		var buf bytes.Buffer
		if err := WriteRaw(&buf, gradient(), level); err != nil {
			t.Fatalf("WriteRaw level %d: %v", level, err)
		}
		img, err := ReadRaw(&buf)
		if err != nil {
			t.Fatalf("ReadRaw level %d: %v", level, err)
		}
		if !bytes.Equal(img.Pix, gradient().NRGBA().Pix) {
			t.Fatalf("level %d texels: got %v want %v", level, img.Pix, gradient().NRGBA().Pix)
		}
	}
}

func TestModelDocument(t *testing.T) {
	t.Parallel()
	res := importQuad(t)
	doc := NewModelDocument(res.Models[0])

	if doc.Skeleton == nil || len(doc.Skeleton.Bones) != 2 {
		t.Fatalf("skeleton: got %+v", doc.Skeleton)
	}
	child := doc.Skeleton.Bones[0]
	if child.Name != "child" || child.ParentName != "root" || child.Euler {
		t.Fatalf("child bone: got %+v", child)
	}
	if root := doc.Skeleton.Bones[1]; root.ParentName != "" || !root.Euler {
		t.Fatalf("root bone: got %+v", root)
	}
	shape := doc.Shapes[0]
	if shape.Bone != "child" || shape.Material != "mat" || shape.PrimitiveType != "triangles" {
		t.Fatalf("shape: got bone %q material %q primitive %q", shape.Bone, shape.Material, shape.PrimitiveType)
	}

	var buf bytes.Buffer
	if err := WriteModelJSON(&buf, res.Models[0]); err != nil {
		t.Fatalf("WriteModelJSON: %v", err)
	}
	var back ModelDocument
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Name != "quad_mdl" || len(back.Shapes[0].Indices) != 6 {
		t.Fatalf("decoded document: got %q with %d indices", back.Name, len(back.Shapes[0].Indices))
	}
	if got := back.Materials[0].Samplers[1]; got != (SamplerDocument{Sampler: "_a0", Texture: "albedo"}) {
		t.Fatalf("albedo binding: got %+v", got)
	}
}

func TestExporterWritesManifest(t *testing.T) {
	t.Parallel()
	res := importQuad(t)

	for _, format := range []Format{FormatPNG, FormatRaw} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			e, err := New(dir, format, 3, NewManifest("quad_pack", "quad.bfres"))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			for _, name := range []string{"albedo", "env/sky"} {
				if err := e.Texture(res.Textures[name]); err != nil {
					t.Fatalf("Texture %s: %v", name, err)
				}
			}
			if err := e.Model(res.Models[0]); err != nil {
				t.Fatalf("Model: %v", err)
			}
			e.Warnings([]importer.Warning{{Kind: importer.KindShape, Name: "quad_mdl/points", Index: 1, Err: fres.ErrUnsupportedPrimitiveType}})
			if err := e.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			m, err := ReadManifest(filepath.Join(dir, ManifestFile))
			if err != nil {
				t.Fatalf("ReadManifest: %v", err)
			}
			if m.ID == uuid.Nil || m.Container != "quad_pack" {
				t.Fatalf("manifest header: got %+v", m)
			}
			// albedo, sky level 0 and 1, the model.
			if len(m.Entries) != 4 {
				t.Fatalf("entries: got %d want 4", len(m.Entries))
			}
			for _, entry := range m.Entries {
				if strings.ContainsRune(entry.File, '/') {
					t.Fatalf("entry file %q is not a single path element", entry.File)
				}
				if _, err := os.Stat(filepath.Join(dir, entry.File)); err != nil {
					t.Fatalf("entry %s: %v", entry.File, err)
				}
			}
			if want := "env_sky_mip1" + format.Ext(); m.Entries[2].File != want || m.Entries[2].Width != 4 {
				t.Fatalf("sky mip entry: got %+v want %s", m.Entries[2], want)
			}
			if len(m.Warnings) != 1 || m.Warnings[0].Name != "quad_mdl/points" {
				t.Fatalf("warnings: got %+v", m.Warnings)
			}
		})
	}
}

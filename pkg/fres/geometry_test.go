package fres

import (
	"errors"
	"math"
	"testing"

	"github.com/samcharles93/bfres/internal/fixture"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestShapeGeometry(t *testing.T) {
	t.Parallel()

	f := parseFixture(t, quadContainer())
	m, err := f.Model(0)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	g, err := m.Geometry(m.Shapes[0], 0)
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}

	if len(g.Positions) != 4 {
		t.Fatalf("positions: got %d want 4", len(g.Positions))
	}
	if p := g.Positions[2]; p[0] != 1 || p[1] != 1 || p[2] != 0 {
		t.Fatalf("position 2: got %v want [1 1 0]", p)
	}
	if n := g.Normals[0]; !near(n[0], 0.99413) || n[1] != 0 || n[2] != 0 {
		t.Fatalf("normal 0: got %v", n)
	}
	if uv := g.UVs[1]; uv[0] != 1 || uv[1] != 0 {
		t.Fatalf("uv 1: got %v want [1 0]", uv)
	}
	if g.BoneIndices != nil || g.BoneWeights != nil {
		t.Fatalf("unexpected skinning attributes")
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	if len(g.Indices) != len(want) {
		t.Fatalf("indices: got %v want %v", g.Indices, want)
	}
	for i := range want {
		if g.Indices[i] != want[i] {
			t.Fatalf("indices: got %v want %v", g.Indices, want)
		}
	}

	if _, err := m.Geometry(m.Shapes[0], 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("lod 2: got %v want ErrNotFound", err)
	}
}

func TestGeometryRejectsUnsupportedEncodings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*fixture.Shape)
		want   error
	}{
		{"triangle strip", func(s *fixture.Shape) { s.PrimitiveType = uint32(PrimitiveTriangleStrip) }, ErrUnsupportedPrimitiveType},
		{"little endian indices", func(s *fixture.Shape) { s.IndexFormat = uint32(IndexU16LE) }, ErrUnsupportedIndexFormat},
		{"unknown attribute", func(s *fixture.Shape) { s.Attribs[0].Format = 0x0999 }, ErrUnsupportedAttribFormat},
		{"short buffer", func(s *fixture.Shape) { s.Attribs[0].Data = s.Attribs[0].Data[:24] }, ErrTruncated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := quadContainer()
			mdl := fixture.QuadModel("quad_mdl", "albedo")
			tc.mutate(&mdl.Shapes[0])
			c.Models = []fixture.Model{mdl}

			f := parseFixture(t, c)
			m, err := f.Model(0)
			if err != nil {
				t.Fatalf("model: %v", err)
			}
			if _, err := m.Geometry(m.Shapes[0], 0); !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
		})
	}
}

func TestU32Indices(t *testing.T) {
	t.Parallel()

	c := quadContainer()
	mdl := fixture.QuadModel("quad_mdl", "albedo")
	mdl.Shapes[0].IndexFormat = uint32(IndexU32)
	// Seven indices: the trailing partial triangle is dropped.
	mdl.Shapes[0].Indices = fixture.Uint32s(3, 2, 1, 0, 1, 2, 3)
	c.Models = []fixture.Model{mdl}

	f := parseFixture(t, c)
	m, err := f.Model(0)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	g, err := m.Geometry(m.Shapes[0], 0)
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	if len(g.Indices) != 6 || g.Indices[0] != 3 || g.Indices[5] != 2 {
		t.Fatalf("indices: got %v", g.Indices)
	}
}

func TestDecodeVertexFormats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		format AttribFormat
		src    []byte
		want   []float32
	}{
		{AttribUnorm8x2, []byte{0xff, 0x00}, []float32{1, 0}},
		{AttribUint8x4, []byte{1, 2, 3, 250}, []float32{1, 2, 3, 250}},
		{AttribSnorm8x2, []byte{0x7f, 0x80}, []float32{1, -1}},
		{AttribSint8, []byte{0xfe}, []float32{-2}},
		{AttribUnorm16x2, []byte{0xff, 0xff, 0x00, 0x00}, []float32{1, 0}},
		{AttribSnorm16x2, []byte{0x7f, 0xff, 0x80, 0x00}, []float32{1, -1}},
		{AttribFloat16x4, []byte{0x3c, 0x00, 0xc0, 0x00, 0x38, 0x00, 0x00, 0x00}, []float32{1, -2, 0.5, 0}},
		{AttribFloat32, fixture.Float32s(-3.5), []float32{-3.5}},
		{AttribSnorm10x3_2, fixture.Uint32s(127<<2 | 128<<12), []float32{0, -0.99804, 0.99413}},
		{AttribSnorm10x3_2, fixture.Uint32s(127 << 22), []float32{0.99413, 0, 0}},
	}
	for _, tc := range cases {
		got := decodeVertex(tc.format, tc.src)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v want %v", tc.format, got, tc.want)
		}
		for i := range got {
			if !near(got[i], tc.want[i]) {
				t.Fatalf("%s: got %v want %v", tc.format, got, tc.want)
			}
		}
	}
}

func TestPackedNormalLane(t *testing.T) {
	t.Parallel()

	cases := []struct {
		lane uint32
		want float32
	}{
		{0, 0},
		{64, 0.50098},
		{127, 0.99413},
		{128, -0.99804},
		{255, -0.00391},
	}
	for _, tc := range cases {
		if got := packedNormalLane(tc.lane); !near(got, tc.want) {
			t.Fatalf("lane %d: got %v want %v", tc.lane, got, tc.want)
		}
	}
}

package export

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/samcharles93/bfres/internal/importer"
)

// ModelDocument is the JSON form of an imported model.
type ModelDocument struct {
	Name          string             `json:"name"`
	TotalVertices uint32             `json:"total_vertices"`
	Skeleton      *SkeletonDocument  `json:"skeleton,omitempty"`
	Shapes        []ShapeDocument    `json:"shapes"`
	Materials     []MaterialDocument `json:"materials"`
}

type SkeletonDocument struct {
	Bones         []BoneDocument `json:"bones"`
	SmoothIndices []uint16       `json:"smooth_indices,omitempty"`
	RigidCount    int            `json:"rigid_count"`
	InverseBind   [][12]float32  `json:"inverse_bind,omitempty"`
}

type BoneDocument struct {
	Name   string `json:"name"`
	Index  int    `json:"index"`
	Parent int    `json:"parent"`
	// ParentName is empty for roots.
	ParentName  string     `json:"parent_name,omitempty"`
	Euler       bool       `json:"euler"`
	Scale       [3]float32 `json:"scale"`
	Rotation    [4]float32 `json:"rotation"`
	Translation [3]float32 `json:"translation"`
}

type ShapeDocument struct {
	Name          string      `json:"name"`
	Material      string      `json:"material,omitempty"`
	MaterialIndex int         `json:"material_index"`
	Bone          string      `json:"bone,omitempty"`
	SkinCount     int         `json:"skin_count"`
	PrimitiveType string      `json:"primitive_type"`
	Positions     [][]float32 `json:"positions"`
	Normals       [][]float32 `json:"normals,omitempty"`
	UVs           [][]float32 `json:"uvs,omitempty"`
	BoneIndices   [][]float32 `json:"bone_indices,omitempty"`
	BoneWeights   [][]float32 `json:"bone_weights,omitempty"`
	Indices       []uint32    `json:"indices"`
}

type MaterialDocument struct {
	Name     string            `json:"name"`
	Samplers []SamplerDocument `json:"samplers"`
}

type SamplerDocument struct {
	Sampler string `json:"sampler"`
	Texture string `json:"texture"`
}

// NewModelDocument resolves bone and material indices of m to names.
func NewModelDocument(m *importer.Model) ModelDocument {
	doc := ModelDocument{
		Name:          m.Name,
		TotalVertices: m.TotalVertices,
		Shapes:        make([]ShapeDocument, 0, len(m.Shapes)),
		Materials:     make([]MaterialDocument, 0, len(m.Materials)),
	}

	boneNames := map[int]string{}
	if sk := m.Skeleton; sk != nil {
		for _, b := range sk.Bones {
			boneNames[b.Index] = b.Name
		}
		sd := &SkeletonDocument{
			Bones:         make([]BoneDocument, 0, len(sk.Bones)),
			SmoothIndices: sk.SmoothIndices,
			RigidCount:    sk.RigidCount,
			InverseBind:   sk.InverseBind,
		}
		for _, b := range sk.Bones {
			sd.Bones = append(sd.Bones, BoneDocument{
				Name:        b.Name,
				Index:       b.Index,
				Parent:      b.Parent,
				ParentName:  boneNames[b.Parent],
				Euler:       b.UsesEuler(),
				Scale:       b.Scale,
				Rotation:    b.Rotation,
				Translation: b.Translation,
			})
		}
		doc.Skeleton = sd
	}

	for _, mat := range m.Materials {
		md := MaterialDocument{Name: mat.Name, Samplers: make([]SamplerDocument, 0, len(mat.Samplers))}
		for _, s := range mat.Samplers {
			md.Samplers = append(md.Samplers, SamplerDocument{Sampler: s.Sampler, Texture: s.Texture})
		}
		doc.Materials = append(doc.Materials, md)
	}

	for _, s := range m.Shapes {
		sd := ShapeDocument{
			Name:          s.Name,
			MaterialIndex: s.MaterialIndex,
			Bone:          boneNames[s.BoneIndex],
			SkinCount:     s.SkinCount,
			PrimitiveType: s.PrimitiveType.String(),
			Positions:     s.Positions,
			Normals:       s.Normals,
			UVs:           s.UVs,
			BoneIndices:   s.BoneIndices,
			BoneWeights:   s.BoneWeights,
			Indices:       s.Indices,
		}
		if s.MaterialIndex >= 0 && s.MaterialIndex < len(m.Materials) {
			sd.Material = m.Materials[s.MaterialIndex].Name
		}
		doc.Shapes = append(doc.Shapes, sd)
	}
	return doc
}

// WriteModelJSON writes the document of m as indented JSON.
func WriteModelJSON(w io.Writer, m *importer.Model) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewModelDocument(m))
}

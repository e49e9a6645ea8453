package fres

import "fmt"

const (
	skeletonMagic     = "FSKL"
	inverseBindStride = 0x30
	boneFlagEuler     = 1 << 12
)

// Bone is one skeleton bone. Rotation is Euler XYZ radians when UsesEuler
// reports true, otherwise a quaternion stored as x, y, z, w.
type Bone struct {
	Name         string
	Offset       uint32
	Index        int
	Parent       int // -1 for roots
	SmoothMatrix int
	RigidMatrix  int
	Billboard    int
	Flags        uint32
	Scale        [3]float32
	Rotation     [4]float32
	Translation  [3]float32
}

func (b Bone) StoredIndex() int { return b.Index }

func (b Bone) UsesEuler() bool { return b.Flags&boneFlagEuler != 0 }

// Skeleton is an FSKL record.
type Skeleton struct {
	Offset uint32
	Bones  []Bone
	// SmoothIndices maps smooth matrix slots to bone indices.
	SmoothIndices []uint16
	RigidCount    int
	// InverseBind holds one row-major 3x4 matrix per smooth matrix slot.
	InverseBind [][12]float32

	bones IndexGroup
}

func decodeSkeleton(c Cursor, off uint32) (*Skeleton, error) {
	magic, err := c.Bytes(off, 4)
	if err != nil {
		return nil, err
	}
	if string(magic) != skeletonMagic {
		return nil, fmt.Errorf("%w: skeleton at 0x%x has magic %q", ErrBadMagic, off, magic)
	}

	r := newFieldReader(c, off)
	numSmooth := int(r.u16(0x0A))
	sk := &Skeleton{
		Offset:     off,
		RigidCount: int(r.u16(0x0C)),
	}
	boneGroup := r.ptr(0x10)
	smoothArray := r.ptr(0x18)
	bindArray := r.ptr(0x1C)
	if r.err != nil {
		return nil, fmt.Errorf("skeleton at 0x%x: %w", off, r.err)
	}

	if sk.bones, err = ReadIndexGroup(c, boneGroup); err != nil {
		return nil, fmt.Errorf("skeleton at 0x%x: bones: %w", off, err)
	}
	sk.Bones = make([]Bone, 0, sk.bones.Len())
	for i := range sk.bones.Len() {
		e, err := sk.bones.Entry(i)
		if err != nil {
			return nil, fmt.Errorf("skeleton at 0x%x: bones: %w", off, err)
		}
		b, err := decodeBone(c, e)
		if err != nil {
			return nil, err
		}
		sk.Bones = append(sk.Bones, b)
	}

	if smoothArray != 0 {
		sk.SmoothIndices = make([]uint16, numSmooth)
		for i := range sk.SmoothIndices {
			if sk.SmoothIndices[i], err = c.U16(smoothArray + uint32(i)*2); err != nil {
				return nil, fmt.Errorf("skeleton at 0x%x: smooth indices: %w", off, err)
			}
		}
	}
	if bindArray != 0 {
		sk.InverseBind = make([][12]float32, numSmooth)
		for i := range sk.InverseBind {
			mr := newFieldReader(c, bindArray+uint32(i)*inverseBindStride)
			for j := range 12 {
				sk.InverseBind[i][j] = mr.f32(uint32(j) * 4)
			}
			if mr.err != nil {
				return nil, fmt.Errorf("skeleton at 0x%x: inverse bind %d: %w", off, i, mr.err)
			}
		}
	}
	return sk, nil
}

func decodeBone(c Cursor, e GroupEntry) (Bone, error) {
	r := newFieldReader(c, e.Offset)
	b := Bone{
		Name:         e.Name,
		Offset:       e.Offset,
		Index:        int(r.i16(0x04)),
		Parent:       int(r.i16(0x06)),
		SmoothMatrix: int(r.i16(0x08)),
		RigidMatrix:  int(r.i16(0x0A)),
		Billboard:    int(r.i16(0x0C)),
		Flags:        r.u32(0x10),
		Scale:        r.vec3(0x14),
		Rotation:     r.vec4(0x20),
		Translation:  r.vec3(0x30),
	}
	if r.err != nil {
		return Bone{}, fmt.Errorf("bone %q: %w", e.Name, r.err)
	}
	return b, nil
}

// BoneByIndex finds the bone whose stored index is index. Parent and
// smooth index references use stored indices, not list positions.
func (s *Skeleton) BoneByIndex(index int) (Bone, bool, error) {
	b, _, ok, err := LookupByIndex(s.bones, decodeBone, index)
	return b, ok, err
}

// SmoothBone resolves smooth matrix slot i to its bone.
func (s *Skeleton) SmoothBone(i int) (Bone, bool, error) {
	if i < 0 || i >= len(s.SmoothIndices) {
		return Bone{}, false, nil
	}
	return s.BoneByIndex(int(s.SmoothIndices[i]))
}

package fres

import "fmt"

const (
	Magic      = "FRES"
	headerSize = 0x6C
)

// GroupKind identifies one of the twelve top level index groups.
type GroupKind int

const (
	GroupModels GroupKind = iota
	GroupTextures
	GroupSkeletonAnims
	GroupShaderParams
	GroupColorAnims
	GroupTextureSRTAnims
	GroupTexturePatternAnims
	GroupBoneVisibilityAnims
	GroupMaterialVisibilityAnims
	GroupShapeAnims
	GroupSceneAnims
	GroupEmbeddedFiles

	NumGroups = int(GroupEmbeddedFiles) + 1
)

var groupKindNames = [NumGroups]string{
	"models",
	"textures",
	"skeleton_anims",
	"shader_params",
	"color_anims",
	"texture_srt_anims",
	"texture_pattern_anims",
	"bone_visibility_anims",
	"material_visibility_anims",
	"shape_anims",
	"scene_anims",
	"embedded_files",
}

func (k GroupKind) String() string {
	if k < 0 || int(k) >= NumGroups {
		return fmt.Sprintf("group(%d)", int(k))
	}
	return groupKindNames[k]
}

// Header is the fixed file header.
type Header struct {
	Version         uint32
	ByteOrderMark   uint16
	HeaderLength    uint16
	FileSize        uint32
	Alignment       uint32
	Name            string
	StringTableSize uint32
	StringTable     uint32 // absolute offset, 0 when absent

	// GroupOffsets are the resolved index group offsets, 0 when absent.
	GroupOffsets [NumGroups]uint32
	// GroupCounts are the entry counts stored beside the pointers.
	GroupCounts [NumGroups]uint16
}

// VersionString formats the packed version word as a.b.c.d.
func (h *Header) VersionString() string {
	v := h.Version
	return fmt.Sprintf("%d.%d.%d.%d", v>>24, v>>16&0xff, v>>8&0xff, v&0xff)
}

func decodeHeader(c Cursor) (*Header, error) {
	magic, err := c.Bytes(0, 4)
	if err != nil {
		return nil, err
	}
	if string(magic) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, magic)
	}
	if c.Len() < headerSize {
		return nil, fmt.Errorf("%w: header needs 0x%x bytes, have 0x%x", ErrTruncated, headerSize, c.Len())
	}

	r := newFieldReader(c, 0)
	h := &Header{
		Version:         r.u32(0x04),
		ByteOrderMark:   r.u16(0x08),
		HeaderLength:    r.u16(0x0A),
		FileSize:        r.u32(0x0C),
		Alignment:       r.u32(0x10),
		Name:            r.name(0x14),
		StringTableSize: r.u32(0x18),
		StringTable:     r.ptr(0x1C),
	}
	for i := range NumGroups {
		h.GroupOffsets[i] = r.ptr(0x20 + uint32(i)*4)
		h.GroupCounts[i] = r.u16(0x50 + uint32(i)*2)
	}
	if r.err != nil {
		return nil, fmt.Errorf("header: %w", r.err)
	}
	return h, nil
}

package fres

import "fmt"

const (
	groupHeaderSize = 0x18 // length, count and root entry
	groupEntrySize  = 0x10
)

// GroupEntry is one named record of an index group.
type GroupEntry struct {
	Name   string
	Offset uint32 // absolute offset of the record, 0 when absent
}

// IndexGroup is a view over a named-entry table. Entries are stored as a
// binary search tree after a root node, but they are also laid out in a
// flat array, which is what every accessor here walks.
type IndexGroup struct {
	c     Cursor
	off   uint32
	count uint32
}

// ReadIndexGroup validates the group header at off. A zero offset yields
// an empty group.
func ReadIndexGroup(c Cursor, off uint32) (IndexGroup, error) {
	if off == 0 {
		return IndexGroup{c: c}, nil
	}
	count, err := c.U32(off + 4)
	if err != nil {
		return IndexGroup{}, fmt.Errorf("index group at 0x%x: %w", off, err)
	}
	end := uint64(off) + groupHeaderSize + uint64(count)*groupEntrySize
	if end > uint64(c.Len()) {
		return IndexGroup{}, fmt.Errorf("%w: index group at 0x%x with %d entries", ErrTruncated, off, count)
	}
	return IndexGroup{c: c, off: off, count: count}, nil
}

// Len is the number of entries, excluding the root.
func (g IndexGroup) Len() int { return int(g.count) }

// Offset is the absolute position of the group header.
func (g IndexGroup) Offset() uint32 { return g.off }

func (g IndexGroup) entryOffset(i int) (uint32, error) {
	if i < 0 || i >= int(g.count) {
		return 0, fmt.Errorf("%w: index %d of %d", ErrNotFound, i, g.count)
	}
	return g.off + groupHeaderSize + uint32(i)*groupEntrySize, nil
}

// Name returns the name of entry i.
func (g IndexGroup) Name(i int) (string, error) {
	e, err := g.entryOffset(i)
	if err != nil {
		return "", err
	}
	return g.c.NameAt(e + 8)
}

// DataOffset returns the resolved record offset of entry i.
func (g IndexGroup) DataOffset(i int) (uint32, error) {
	e, err := g.entryOffset(i)
	if err != nil {
		return 0, err
	}
	off, _, err := g.c.Ptr(e + 12)
	return off, err
}

// Entry returns the name and record offset of entry i.
func (g IndexGroup) Entry(i int) (GroupEntry, error) {
	name, err := g.Name(i)
	if err != nil {
		return GroupEntry{}, err
	}
	off, err := g.DataOffset(i)
	if err != nil {
		return GroupEntry{}, err
	}
	return GroupEntry{Name: name, Offset: off}, nil
}

// Entries returns every entry in group order.
func (g IndexGroup) Entries() ([]GroupEntry, error) {
	out := make([]GroupEntry, 0, g.count)
	for i := range g.Len() {
		e, err := g.Entry(i)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Find returns the position of the entry called name.
func (g IndexGroup) Find(name string) (int, bool) {
	for i := range g.Len() {
		n, err := g.Name(i)
		if err == nil && n == name {
			return i, true
		}
	}
	return 0, false
}

// Indexed is implemented by records that carry their own index field,
// which need not match their position in the group.
type Indexed interface {
	StoredIndex() int
}

// LookupByIndex scans g, decoding each record with decode, and returns the
// first record whose stored index equals index together with its position.
// It is linear in the group size and meant for load time only. A missing
// index is not an error: ok is false.
func LookupByIndex[T Indexed](g IndexGroup, decode func(Cursor, GroupEntry) (T, error), index int) (rec T, pos int, ok bool, err error) {
	for i := range g.Len() {
		e, err := g.Entry(i)
		if err != nil {
			return rec, 0, false, err
		}
		r, err := decode(g.c, e)
		if err != nil {
			return rec, 0, false, err
		}
		if r.StoredIndex() == index {
			return r, i, true, nil
		}
	}
	return rec, 0, false, nil
}

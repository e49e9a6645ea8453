package fres

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sys/unix"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// File is an opened container. It is read-only; record views decoded from
// it borrow its bytes and must not be used after Close.
type File struct {
	Header *Header

	data    []byte
	c       Cursor
	mmapped bool
}

// Open maps a container read-only. Zstandard-compressed containers are
// decompressed into memory. If mmap is unavailable, it falls back to
// ReadAt-based loading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: file too large", ErrTruncated)
	}
	size := int(size64)
	if size < 4 {
		return nil, fmt.Errorf("%w: %d byte file", ErrTruncated, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		if bytes.HasPrefix(data, zstdMagic) {
			plain, derr := decompress(data)
			_ = unix.Munmap(data)
			if derr != nil {
				return nil, derr
			}
			return Parse(plain)
		}
		ff, perr := parse(data, true)
		if perr != nil {
			_ = unix.Munmap(data)
			return nil, perr
		}
		return ff, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return OpenBytes(data)
}

// OpenReaderAt loads a container from a random-access reader without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: invalid size %d", ErrTruncated, size)
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return OpenBytes(data)
}

// OpenBytes parses an in-memory container, decompressing it first when it
// is a zstd frame.
func OpenBytes(data []byte) (*File, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		plain, err := decompress(data)
		if err != nil {
			return nil, err
		}
		data = plain
	}
	return Parse(data)
}

// Parse validates the header of an uncompressed container held in data.
// data is retained, not copied.
func Parse(data []byte) (*File, error) {
	return parse(data, false)
}

func parse(data []byte, mmapped bool) (*File, error) {
	c := NewCursor(data)
	h, err := decodeHeader(c)
	if err != nil {
		return nil, err
	}
	return &File{Header: h, data: data, c: c, mmapped: mmapped}, nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	plain, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("fres: zstd: %w", err)
	}
	return plain, nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

// Close releases the mapping, if any.
func (f *File) Close() error {
	if f == nil || f.data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.data)
	}
	f.data = nil
	f.c = Cursor{}
	f.mmapped = false
	return err
}

// Cursor exposes bounds-checked reads over the container bytes.
func (f *File) Cursor() Cursor { return f.c }

// Size is the length of the (decompressed) container.
func (f *File) Size() int { return len(f.data) }

// Group returns the top level index group of kind k.
func (f *File) Group(k GroupKind) (IndexGroup, error) {
	if k < 0 || int(k) >= NumGroups {
		return IndexGroup{}, fmt.Errorf("fres: unknown group %d", int(k))
	}
	g, err := ReadIndexGroup(f.c, f.Header.GroupOffsets[k])
	if err != nil {
		return IndexGroup{}, fmt.Errorf("%s group: %w", k, err)
	}
	return g, nil
}

// Names lists the entry names of group k in group order.
func (f *File) Names(k GroupKind) ([]string, error) {
	g, err := f.Group(k)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, g.Len())
	for i := range g.Len() {
		name, err := g.Name(i)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

// lookup finds entry name in group k.
func (f *File) lookup(k GroupKind, name string) (GroupEntry, error) {
	g, err := f.Group(k)
	if err != nil {
		return GroupEntry{}, err
	}
	i, ok := g.Find(name)
	if !ok {
		return GroupEntry{}, fmt.Errorf("%w: %s %q", ErrNotFound, k, name)
	}
	return g.Entry(i)
}

func (f *File) entry(k GroupKind, i int) (GroupEntry, error) {
	g, err := f.Group(k)
	if err != nil {
		return GroupEntry{}, err
	}
	return g.Entry(i)
}

// Package assetstore keeps an opened container together with a cache of
// decoded textures, so repeated requests for the same texture are served
// without running the deswizzle and texel pipeline again.
package assetstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	arc "github.com/hashicorp/golang-lru/arc/v2"

	"github.com/samcharles93/bfres/internal/importer"
	"github.com/samcharles93/bfres/internal/logger"
	"github.com/samcharles93/bfres/pkg/fres"
)

var ErrClosed = errors.New("assetstore: store is closed")

// DefaultCacheSize is the number of decoded textures kept when Options
// leaves CacheSize unset.
const DefaultCacheSize = 64

type Options struct {
	CacheSize int
	AllMips   bool
}

type Store struct {
	path string
	opts Options

	mu    sync.RWMutex
	file  *fres.File
	cache *arc.ARCCache[string, *importer.Texture]
}

// TextureInfo is the record-level description of a texture, available
// without decoding it.
type TextureInfo struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Dim      string `json:"dim"`
	Width    uint32 `json:"width"`
	Height   uint32 `json:"height"`
	Depth    uint32 `json:"depth"`
	NumMips  uint32 `json:"num_mips"`
	Format   string `json:"format"`
	TileMode string `json:"tile_mode"`
	Swizzle  uint32 `json:"swizzle"`
	AA       uint32 `json:"aa"`
}

// ModelInfo summarises a model record.
type ModelInfo struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	TotalVertices uint32 `json:"total_vertices"`
	Shapes        int    `json:"shapes"`
	Materials     int    `json:"materials"`
	Bones         int    `json:"bones"`
}

func Open(path string, opts Options) (*Store, error) {
	f, err := fres.Open(path)
	if err != nil {
		return nil, err
	}
	s, err := newStore(f, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	s.path = path
	return s, nil
}

// New wraps an already opened container. The store takes ownership of f.
func New(f *fres.File, opts Options) (*Store, error) {
	return newStore(f, opts)
}

func newStore(f *fres.File, opts Options) (*Store, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	cache, err := arc.NewARC[string, *importer.Texture](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("assetstore: texture cache: %w", err)
	}
	return &Store{opts: opts, file: f, cache: cache}, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.cache.Purge()
	return err
}

// Path is the file the store was opened from, empty for New.
func (s *Store) Path() string { return s.path }

// Name is the container name stored in the header.
func (s *Store) Name() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.file == nil {
		return "", ErrClosed
	}
	return s.file.Header.Name, nil
}

// ContainerInfo summarises the header of the open container.
type ContainerInfo struct {
	Name    string         `json:"name"`
	Path    string         `json:"path,omitempty"`
	Version string         `json:"version"`
	Size    int            `json:"size"`
	Groups  map[string]int `json:"groups"`
}

// Info reports the header fields and the entry count of every non-empty
// index group.
func (s *Store) Info() (ContainerInfo, error) {
	var info ContainerInfo
	err := s.View(func(f *fres.File) error {
		info = ContainerInfo{
			Name:    f.Header.Name,
			Path:    s.path,
			Version: f.Header.VersionString(),
			Size:    f.Size(),
			Groups:  map[string]int{},
		}
		for k := range fres.NumGroups {
			g, err := f.Group(fres.GroupKind(k))
			if err != nil {
				return err
			}
			if g.Len() > 0 {
				info.Groups[fres.GroupKind(k).String()] = g.Len()
			}
		}
		return nil
	})
	return info, err
}

// View runs fn with the open container. fn must not retain record views
// past its return.
func (s *Store) View(fn func(*fres.File) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.file == nil {
		return ErrClosed
	}
	return fn(s.file)
}

func (s *Store) Textures() ([]TextureInfo, error) {
	var out []TextureInfo
	err := s.View(func(f *fres.File) error {
		g, err := f.Group(fres.GroupTextures)
		if err != nil {
			return err
		}
		out = make([]TextureInfo, 0, g.Len())
		for i := range g.Len() {
			tex, err := f.Texture(i)
			if err != nil {
				return err
			}
			out = append(out, textureInfo(i, tex))
		}
		return nil
	})
	return out, err
}

func (s *Store) TextureInfo(name string) (TextureInfo, error) {
	var info TextureInfo
	err := s.View(func(f *fres.File) error {
		g, err := f.Group(fres.GroupTextures)
		if err != nil {
			return err
		}
		i, ok := g.Find(name)
		if !ok {
			return fmt.Errorf("%w: texture %q", fres.ErrNotFound, name)
		}
		tex, err := f.Texture(i)
		if err != nil {
			return err
		}
		info = textureInfo(i, tex)
		return nil
	})
	return info, err
}

func textureInfo(i int, tex *fres.Texture) TextureInfo {
	sf := tex.Surface
	return TextureInfo{
		Index:    i,
		Name:     tex.Name,
		Path:     tex.Path,
		Dim:      sf.Dim.String(),
		Width:    sf.Width,
		Height:   sf.Height,
		Depth:    sf.Depth,
		NumMips:  sf.NumMips,
		Format:   sf.Format.String(),
		TileMode: sf.TileMode.String(),
		Swizzle:  sf.Swizzle,
		AA:       sf.AA,
	}
}

// Texture returns the decoded texture name, decoding it on first use.
// The cache is only read and filled while the container is open.
func (s *Store) Texture(ctx context.Context, name string) (*importer.Texture, error) {
	var dec *importer.Texture
	err := s.View(func(f *fres.File) error {
		if tex, ok := s.cache.Get(name); ok {
			dec = tex
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		tex, err := f.TextureByName(name)
		if err != nil {
			return err
		}
		dec, err = importer.DecodeTexture(tex, s.opts.AllMips)
		if err != nil {
			return &importer.AssetError{Kind: importer.KindTexture, Name: name, Index: -1, Err: err}
		}
		if dec.Skipped > 0 {
			logger.FromContext(ctx).Debug("deswizzle skipped elements", "name", name, "skipped", dec.Skipped)
		}
		s.cache.Add(name, dec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dec, nil
}

// Cached reports whether name is currently held in the texture cache.
func (s *Store) Cached(name string) bool { return s.cache.Contains(name) }

func (s *Store) Models() ([]ModelInfo, error) {
	var out []ModelInfo
	err := s.View(func(f *fres.File) error {
		g, err := f.Group(fres.GroupModels)
		if err != nil {
			return err
		}
		out = make([]ModelInfo, 0, g.Len())
		for i := range g.Len() {
			m, err := f.Model(i)
			if err != nil {
				return err
			}
			info := ModelInfo{
				Index:         i,
				Name:          m.Name,
				TotalVertices: m.TotalVertices,
				Shapes:        len(m.Shapes),
				Materials:     len(m.Materials),
			}
			if m.Skeleton != nil {
				info.Bones = len(m.Skeleton.Bones)
			}
			out = append(out, info)
		}
		return nil
	})
	return out, err
}

// Model imports the geometry of model name. Geometry slices are copies and
// stay valid after Close.
func (s *Store) Model(ctx context.Context, name string) (*importer.Model, []importer.Warning, error) {
	var (
		out      *importer.Model
		warnings []importer.Warning
	)
	err := s.View(func(f *fres.File) error {
		m, err := f.ModelByName(name)
		if err != nil {
			return err
		}
		out, warnings, err = importer.ImportModel(ctx, m)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return out, warnings, nil
}

// Import runs a full import session over the container.
func (s *Store) Import(ctx context.Context, workers int) (*importer.Result, error) {
	var res *importer.Result
	err := s.View(func(f *fres.File) error {
		var err error
		res, err = importer.NewSession(f, importer.Options{Workers: workers, AllMips: s.opts.AllMips}).Run(ctx)
		if err != nil {
			return err
		}
		for name, tex := range res.Textures {
			s.cache.Add(name, tex)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

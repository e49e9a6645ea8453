// Package importer turns an opened container into decoded textures and
// model geometry. Per-asset failures are collected as warnings; structural
// failures abort the import.
package importer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/samcharles93/bfres/internal/logger"
	"github.com/samcharles93/bfres/pkg/fres"
)

// Kind names the entity a warning refers to.
type Kind string

const (
	KindTexture Kind = "texture"
	KindModel   Kind = "model"
	KindShape   Kind = "shape"
)

// AssetError is a failure confined to one entity.
type AssetError struct {
	Kind  Kind
	Name  string
	Index int
	Err   error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("%s %q (#%d): %v", e.Kind, e.Name, e.Index, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// Warning records a skipped entity.
type Warning struct {
	Kind  Kind
	Name  string
	Index int
	Err   error
}

func (w Warning) asError() *AssetError {
	return &AssetError{Kind: w.Kind, Name: w.Name, Index: w.Index, Err: w.Err}
}

// Fatal reports whether err leaves the container unusable.
func Fatal(err error) bool {
	return errors.Is(err, fres.ErrTruncated) || errors.Is(err, fres.ErrBadMagic)
}

type Options struct {
	// Workers bounds concurrent texture decodes. Zero means GOMAXPROCS.
	Workers int
	// AllMips decodes every stored mip level instead of level 0 only.
	AllMips bool
}

// Session imports the assets of one container.
type Session struct {
	file *fres.File
	opts Options
}

func NewSession(f *fres.File, opts Options) *Session {
	return &Session{file: f, opts: opts}
}

// Result is the outcome of a full import.
type Result struct {
	Textures map[string]*Texture
	Models   []*Model
	Warnings []Warning
}

// Run imports every texture, then every model.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	textures, warnings, err := s.Textures(ctx)
	if err != nil {
		return nil, err
	}
	models, modelWarnings, err := s.Models(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{
		Textures: textures,
		Models:   models,
		Warnings: append(warnings, modelWarnings...),
	}, nil
}

func workersFor(configured, jobs int) int {
	workers := configured
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if jobs > 0 && workers > jobs {
		workers = jobs
	}
	return max(1, workers)
}

// Textures decodes every texture of the container with a bounded worker
// pool. Results are keyed by texture name.
func (s *Session) Textures(ctx context.Context) (map[string]*Texture, []Warning, error) {
	log := logger.FromContext(ctx)
	g, err := s.file.Group(fres.GroupTextures)
	if err != nil {
		return nil, nil, err
	}
	n := g.Len()

	inner, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		out      = make(map[string]*Texture, n)
		index    = make(map[string]int, n)
		warnings []Warning
		fatal    error
	)
	record := func(w Warning) {
		mu.Lock()
		defer mu.Unlock()
		if Fatal(w.Err) {
			if fatal == nil {
				fatal = w.asError()
				cancel()
			}
			return
		}
		warnings = append(warnings, w)
	}

	tasks := make(chan int)
	var wg sync.WaitGroup
	for range workersFor(s.opts.Workers, n) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				tex, name, err := s.texture(i)
				if err != nil {
					record(Warning{Kind: KindTexture, Name: name, Index: i, Err: err})
					continue
				}
				if tex.Skipped > 0 {
					log.Debug("deswizzle skipped elements", "name", name, "skipped", tex.Skipped)
				}
				mu.Lock()
				// the first of duplicate names wins, as in name lookups
				if prev, ok := index[name]; !ok || i < prev {
					out[name] = tex
					index[name] = i
				}
				mu.Unlock()
			}
		}()
	}

dispatch:
	for i := range n {
		select {
		case tasks <- i:
		case <-inner.Done():
			break dispatch
		}
	}
	close(tasks)
	wg.Wait()

	if fatal != nil {
		return nil, nil, fatal
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	slices.SortFunc(warnings, func(a, b Warning) int { return a.Index - b.Index })
	for _, w := range warnings {
		log.Warn("texture skipped", "kind", w.Kind, "name", w.Name, "index", w.Index, "err", w.Err)
	}
	return out, warnings, nil
}

func (s *Session) texture(i int) (*Texture, string, error) {
	g, err := s.file.Group(fres.GroupTextures)
	if err != nil {
		return nil, "", err
	}
	name, err := g.Name(i)
	if err != nil {
		return nil, "", err
	}
	tex, err := s.file.Texture(i)
	if err != nil {
		return nil, name, err
	}
	dec, err := DecodeTexture(tex, s.opts.AllMips)
	if err != nil {
		return nil, name, err
	}
	return dec, name, nil
}

// MaterialBinding lists the textures a material samples, by sampler name.
type MaterialBinding struct {
	Name     string
	Samplers []SamplerBinding
}

type SamplerBinding struct {
	Sampler string
	Texture string
}

// Model is the imported form of one model.
type Model struct {
	Name          string
	TotalVertices uint32
	Skeleton      *fres.Skeleton
	Shapes        []*fres.ShapeGeometry
	Materials     []MaterialBinding
}

// Models decodes every model. Shapes with unsupported encodings are
// skipped with a warning; the rest of the model is kept.
func (s *Session) Models(ctx context.Context) ([]*Model, []Warning, error) {
	log := logger.FromContext(ctx)
	g, err := s.file.Group(fres.GroupModels)
	if err != nil {
		return nil, nil, err
	}

	var (
		out      []*Model
		warnings []Warning
	)
	for i := range g.Len() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		m, err := s.file.Model(i)
		if err != nil {
			name, _ := g.Name(i)
			if Fatal(err) {
				return nil, nil, &AssetError{Kind: KindModel, Name: name, Index: i, Err: err}
			}
			w := Warning{Kind: KindModel, Name: name, Index: i, Err: err}
			log.Warn("asset skipped", "kind", w.Kind, "name", w.Name, "index", w.Index, "err", w.Err)
			warnings = append(warnings, w)
			continue
		}
		im, shapeWarnings, err := ImportModel(ctx, m)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, im)
		warnings = append(warnings, shapeWarnings...)
	}
	return out, warnings, nil
}

// ImportModel decodes the geometry of every shape in m at LOD 0 and binds
// its materials.
func ImportModel(ctx context.Context, m *fres.Model) (*Model, []Warning, error) {
	log := logger.FromContext(ctx)
	im := &Model{Name: m.Name, TotalVertices: m.TotalVertices, Skeleton: m.Skeleton}
	var warnings []Warning
	for j, shape := range m.Shapes {
		geo, err := m.Geometry(shape, 0)
		if err != nil {
			if Fatal(err) {
				return nil, nil, &AssetError{Kind: KindShape, Name: m.Name + "/" + shape.Name, Index: j, Err: err}
			}
			w := Warning{Kind: KindShape, Name: m.Name + "/" + shape.Name, Index: j, Err: err}
			log.Warn("asset skipped", "kind", w.Kind, "name", w.Name, "index", w.Index, "err", w.Err)
			warnings = append(warnings, w)
			continue
		}
		im.Shapes = append(im.Shapes, geo)
	}
	for _, mat := range m.Materials {
		im.Materials = append(im.Materials, bindMaterial(mat))
	}
	return im, warnings, nil
}

func bindMaterial(mat *fres.Material) MaterialBinding {
	b := MaterialBinding{Name: mat.Name}
	for _, smp := range mat.Samplers {
		ref, ok := mat.TextureForSampler(smp.Name)
		if !ok {
			continue
		}
		b.Samplers = append(b.Samplers, SamplerBinding{Sampler: smp.Name, Texture: ref.Name})
	}
	return b
}

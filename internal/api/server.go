// Package api serves the contents of a container over HTTP: container and
// asset listings, decoded textures as PNG and model geometry as JSON.
package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/bfres/internal/assetstore"
	"github.com/samcharles93/bfres/internal/export"
	"github.com/samcharles93/bfres/internal/logger"
	"github.com/samcharles93/bfres/internal/webui"
)

const (
	defaultPNGCacheSize = 128
	maxPreviewSize      = 4096
)

type pngKey struct {
	name  string
	level int
	size  int
}

type Server struct {
	store *assetstore.Store
	pngs  *lru.Cache[pngKey, []byte]
}

// NewServer serves store. pngCacheSize bounds the number of encoded PNGs
// kept in memory; zero selects a default.
func NewServer(store *assetstore.Store, pngCacheSize int) (*Server, error) {
	if pngCacheSize <= 0 {
		pngCacheSize = defaultPNGCacheSize
	}
	pngs, err := lru.New[pngKey, []byte](pngCacheSize)
	if err != nil {
		return nil, err
	}
	return &Server{store: store, pngs: pngs}, nil
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(RequestID())
	e.GET("/", s.handleIndex)
	e.GET("/v1/container", s.handleContainer)
	e.GET("/v1/textures", s.handleListTextures)
	e.GET("/v1/textures/:name", s.handleGetTexture)
	e.GET("/v1/textures/:name/png", s.handleTexturePNG)
	e.GET("/v1/models", s.handleListModels)
	e.GET("/v1/models/:name", s.handleGetModel)
}

func (s *Server) handleIndex(c *echo.Context) error {
	return c.Blob(http.StatusOK, "text/html; charset=utf-8", webui.Index())
}

func (s *Server) handleContainer(c *echo.Context) error {
	info, err := s.store.Info()
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleListTextures(c *echo.Context) error {
	textures, err := s.store.Textures()
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"object": "list",
		"data":   textures,
	})
}

func (s *Server) handleGetTexture(c *echo.Context) error {
	name, err := nameParam(c)
	if err != nil {
		return writeErr(c, err)
	}
	info, err := s.store.TextureInfo(name)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

// handleTexturePNG decodes the texture and returns one level as PNG. The
// optional size query scales the image to fit a size x size box.
func (s *Server) handleTexturePNG(c *echo.Context) error {
	name, err := nameParam(c)
	if err != nil {
		return writeErr(c, err)
	}
	level, err := intQuery(c, "level", 0)
	if err != nil {
		return writeBadRequest(c, err.Error(), "level")
	}
	size, err := intQuery(c, "size", 0)
	if err != nil || size > maxPreviewSize {
		return writeBadRequest(c, fmt.Sprintf("size must be between 0 and %d", maxPreviewSize), "size")
	}

	key := pngKey{name: name, level: level, size: size}
	if data, ok := s.pngs.Get(key); ok {
		return c.Blob(http.StatusOK, "image/png", data)
	}

	ctx := c.Request().Context()
	tex, err := s.store.Texture(ctx, name)
	if err != nil {
		logger.FromContext(ctx).Warn("texture decode failed", "name", name, "err", err)
		return writeErr(c, err)
	}
	if level >= len(tex.Levels) {
		return writeBadRequest(c, fmt.Sprintf("texture %q has %d decoded levels", name, len(tex.Levels)), "level")
	}

	var buf bytes.Buffer
	img := tex.Levels[level]
	if size > 0 {
		err = export.EncodePNGImage(&buf, export.Preview(img, size))
	} else {
		err = export.EncodePNG(&buf, img)
	}
	if err != nil {
		return writeErr(c, err)
	}
	s.pngs.Add(key, buf.Bytes())
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleListModels(c *echo.Context) error {
	models, err := s.store.Models()
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"object": "list",
		"data":   models,
	})
}

// handleGetModel returns the geometry document of one model.
func (s *Server) handleGetModel(c *echo.Context) error {
	name, err := nameParam(c)
	if err != nil {
		return writeErr(c, err)
	}
	ctx := c.Request().Context()
	m, warnings, err := s.store.Model(ctx, name)
	if err != nil {
		return writeErr(c, err)
	}

	body := struct {
		export.ModelDocument
		Warnings []string `json:"warnings,omitempty"`
	}{ModelDocument: export.NewModelDocument(m)}
	for _, w := range warnings {
		body.Warnings = append(body.Warnings, fmt.Sprintf("%s %q: %v", w.Kind, w.Name, w.Err))
	}
	data, err := json.Marshal(body)
	if err != nil {
		return writeErr(c, err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

package export

import (
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Manifest lists every file written by one export run.
type Manifest struct {
	ID        uuid.UUID         `json:"id"`
	Container string            `json:"container"`
	Source    string            `json:"source,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Entries   []ManifestEntry   `json:"entries"`
	Warnings  []ManifestWarning `json:"warnings,omitempty"`
}

type ManifestEntry struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	File   string `json:"file"`
	Level  int    `json:"level,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Format string `json:"format,omitempty"`
}

type ManifestWarning struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Index int    `json:"index"`
	Error string `json:"error"`
}

const ManifestFile = "manifest.json"

func NewManifest(container, source string) *Manifest {
	return &Manifest{
		ID:        uuid.New(),
		Container: container,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Entries:   []ManifestEntry{},
	}
}

func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

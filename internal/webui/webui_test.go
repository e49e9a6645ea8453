package webui

import (
	"bytes"
	"io"
	"testing"
)

func TestIndex(t *testing.T) {
	t.Parallel()
	page := Index()
	if !bytes.HasPrefix(page, []byte("<!doctype html>")) {
		t.Fatalf("index page: got %q", page[:min(len(page), 32)])
	}
}

func TestStaticFS(t *testing.T) {
	t.Parallel()
	f, err := StaticFS().Open("index.html")
	if err != nil {
		t.Fatalf("open index.html: %v", err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	if !bytes.Equal(data, Index()) {
		t.Fatalf("StaticFS and Index disagree")
	}
}

package version

import (
	"runtime/debug"
	"testing"
)

func TestResolveFromBuildInfo(t *testing.T) {
	t.Parallel()
	info := resolve(func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "v0.3.0"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef0123"},
				{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
			},
		}, true
	})
	if info.Version != "v0.3.0" || info.Commit != "0123456789abcdef0123" || info.BuildTime != "2026-10-01T12:00:00Z" {
		t.Fatalf("resolve: got %+v", info)
	}
	if info.GoVersion == "" {
		t.Fatal("go version empty")
	}
}

func TestResolveWithoutBuildInfo(t *testing.T) {
	t.Parallel()
	info := resolve(func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	})
	if info.Version != "dev" {
		t.Fatalf("version: got %q want dev", info.Version)
	}
	if info = resolve(func() (*debug.BuildInfo, bool) { return nil, false }); info.Version != "dev" {
		t.Fatalf("no build info: got %q want dev", info.Version)
	}
}

func TestShortCommit(t *testing.T) {
	t.Parallel()
	if got := shortCommit("0123456789abcdef"); got != "0123456789ab" {
		t.Fatalf("shortCommit: got %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Fatalf("shortCommit short: got %q", got)
	}
}

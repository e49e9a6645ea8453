package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const envBfresOutDir = "BFRES_OUT_DIR"

// containerArg returns the single container path given on the command
// line.
func containerArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one container path, got %d arguments", len(args))
	}
	path := filepath.Clean(args[0])
	st, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if st.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return path, nil
}

// resolveOutDir picks the export directory for container. An explicit flag
// wins; otherwise the directory is <base>/<container name> where base is
// $BFRES_OUT_DIR or ./out. The bool reports whether the default was used.
func resolveOutDir(container, outFlag string) (string, bool, error) {
	outFlag = strings.TrimSpace(outFlag)
	if outFlag != "" {
		outDir := filepath.Clean(outFlag)
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return "", false, err
		}
		return outDir, false, nil
	}

	name := containerStem(container)
	if name == "" {
		return "", true, fmt.Errorf("invalid container path: %q", container)
	}
	base := strings.TrimSpace(os.Getenv(envBfresOutDir))
	if base == "" {
		base = filepath.Join(".", "out")
	}
	outDir := filepath.Join(base, name)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", true, err
	}
	return outDir, true, nil
}

// containerStem strips the directory and the .bfres / .zs suffixes.
func containerStem(path string) string {
	base := filepath.Base(filepath.Clean(path))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	for _, ext := range []string{".zs", ".bfres"} {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			base = base[:len(base)-len(ext)]
		}
	}
	return base
}

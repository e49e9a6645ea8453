package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/bfres/internal/export"
	"github.com/samcharles93/bfres/internal/importer"
	"github.com/samcharles93/bfres/internal/logger"
	"github.com/samcharles93/bfres/pkg/fres"
)

func exportFlags(outDir, format *string, level *int) []cli.Flag {
	return append(decodeFlags(),
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "output directory (default $BFRES_OUT_DIR/<container> or ./out/<container>)",
			Destination: outDir,
		},
		&cli.StringFlag{
			Name:        "format",
			Usage:       "texture file format (png, raw)",
			Value:       string(export.FormatPNG),
			Destination: format,
		},
		&cli.IntFlag{
			Name:        "compress-level",
			Usage:       "zstd level for raw textures (0 = default)",
			Destination: level,
		},
	)
}

func texturesCmd() *cli.Command {
	var (
		outDir string
		format string
		level  int
		names  []string
	)

	return &cli.Command{
		Name:      "textures",
		Usage:     "Decode textures and write them as images",
		ArgsUsage: "<container.bfres>",
		Flags: append(exportFlags(&outDir, &format, &level),
			&cli.StringSliceFlag{
				Name:        "name",
				Usage:       "export only the named textures (repeatable)",
				Destination: &names,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			log := logger.FromContext(ctx)
			applyExportConfig(c, cfg, &outDir, &format, &level)

			path, err := containerArg(c.Args().Slice())
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			fileFormat, err := export.ParseFormat(format)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			dir, _, err := resolveOutDir(path, outDir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: output directory: %v", err), 1)
			}

			f, err := fres.Open(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open container: %v", err), 1)
			}
			defer func() { _ = f.Close() }()

			start := time.Now()
			session := importer.NewSession(f, importer.Options{Workers: workers, AllMips: allMips})
			textures, warnings, err := session.Textures(ctx)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: decode textures: %v", err), 1)
			}
			log.Info("textures decoded", "count", len(textures), "warnings", len(warnings), "elapsed", time.Since(start))

			ex, err := export.New(dir, fileFormat, level, export.NewManifest(f.Header.Name, path))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			written, err := exportTextures(ex, textures, names)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			ex.Warnings(warnings)
			if err := ex.Close(); err != nil {
				return cli.Exit(fmt.Sprintf("error: write manifest: %v", err), 1)
			}
			log.Info("export complete", "dir", dir, "textures", written, "warnings", len(warnings))
			return nil
		},
	}
}

// exportTextures writes textures in name order. A non-empty only list
// restricts the export to those names; a name that matched nothing is an
// error.
func exportTextures(ex *export.Exporter, textures map[string]*importer.Texture, only []string) (int, error) {
	written := 0
	for _, name := range slices.Sorted(maps.Keys(textures)) {
		if len(only) > 0 && !slices.Contains(only, name) {
			continue
		}
		if err := ex.Texture(textures[name]); err != nil {
			return written, err
		}
		written++
	}
	for _, name := range only {
		if _, ok := textures[name]; !ok {
			return written, fmt.Errorf("texture %q: %w", name, fres.ErrNotFound)
		}
	}
	return written, nil
}

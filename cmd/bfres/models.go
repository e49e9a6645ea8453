package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/bfres/internal/export"
	"github.com/samcharles93/bfres/internal/importer"
	"github.com/samcharles93/bfres/internal/logger"
	"github.com/samcharles93/bfres/pkg/fres"
)

func modelsCmd() *cli.Command {
	var (
		outDir       string
		format       string
		level        int
		withTextures bool
	)

	return &cli.Command{
		Name:      "models",
		Usage:     "Decode models and write their geometry, skeleton and materials as JSON",
		ArgsUsage: "<container.bfres>",
		Flags: append(exportFlags(&outDir, &format, &level),
			&cli.BoolFlag{
				Name:        "with-textures",
				Usage:       "also decode and write every texture",
				Destination: &withTextures,
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
			result := &importer.Result{}
			if withTextures {
				result, err = session.Run(ctx)
			} else {
				result.Models, result.Warnings, err = session.Models(ctx)
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: import: %v", err), 1)
			}
			log.Info("import complete",
				"models", len(result.Models),
				"textures", len(result.Textures),
				"warnings", len(result.Warnings),
				"elapsed", time.Since(start))

			ex, err := export.New(dir, fileFormat, level, export.NewManifest(f.Header.Name, path))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			for _, m := range result.Models {
				if err := ex.Model(m); err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
			}
			if _, err := exportTextures(ex, result.Textures, nil); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			ex.Warnings(result.Warnings)
			if err := ex.Close(); err != nil {
				return cli.Exit(fmt.Sprintf("error: write manifest: %v", err), 1)
			}
			log.Info("export complete", "dir", dir, "files", len(ex.Manifest().Entries))
			return nil
		},
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/bfres/internal/assetstore"
	"github.com/samcharles93/bfres/internal/importer"
	"github.com/samcharles93/bfres/pkg/fres"
)

func inspectCmd() *cli.Command {
	var (
		showAll      bool
		showTextures bool
		showMips     bool
		showModels   bool
		showShapes   bool
		asJSON       bool
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header, index groups, textures and models of a container",
		ArgsUsage: "<container.bfres>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "show every section", Destination: &showAll},
			&cli.BoolFlag{Name: "textures", Usage: "list textures with surface info", Destination: &showTextures},
			&cli.BoolFlag{Name: "mips", Usage: "show the computed layout of every mip level", Destination: &showMips},
			&cli.BoolFlag{Name: "models", Usage: "list models", Destination: &showModels},
			&cli.BoolFlag{Name: "shapes", Usage: "list shapes, LODs and materials of each model", Destination: &showShapes},
			&cli.BoolFlag{Name: "json", Usage: "print container, texture and model summaries as JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path, err := containerArg(c.Args().Slice())
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if showAll {
				showTextures, showMips, showModels, showShapes = true, true, true, true
			}

			store, err := assetstore.Open(path, assetstore.Options{})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open container: %v", err), 1)
			}
			defer func() { _ = store.Close() }()

			if asJSON {
				return printJSONSummary(store)
			}

			info, err := store.Info()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			fmt.Printf("FRES Inspect: %s\n", path)
			fmt.Printf("File: %s (%s)\n", filepath.Base(path), formatBytes(uint64(info.Size)))
			return store.View(func(f *fres.File) error {
				printHeader(f.Header)
				if showTextures {
					if err := printTextures(f, showMips); err != nil {
						return cli.Exit(fmt.Sprintf("error: %v", err), 1)
					}
				}
				if showModels || showShapes {
					if err := printModels(f, showShapes); err != nil {
						return cli.Exit(fmt.Sprintf("error: %v", err), 1)
					}
				}
				return nil
			})
		},
	}
}

func printJSONSummary(store *assetstore.Store) error {
	info, err := store.Info()
	if err != nil {
		return err
	}
	textures, err := store.Textures()
	if err != nil {
		return err
	}
	models, err := store.Models()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(map[string]any{
		"container": info,
		"textures":  textures,
		"models":    models,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printHeader(h *fres.Header) {
	fmt.Println()
	fmt.Println("Header")
	fmt.Printf("  name:         %s\n", h.Name)
	fmt.Printf("  version:      %s (0x%08x)\n", h.VersionString(), h.Version)
	fmt.Printf("  byte order:   0x%04x\n", h.ByteOrderMark)
	fmt.Printf("  file size:    %d\n", h.FileSize)
	fmt.Printf("  alignment:    0x%x\n", h.Alignment)
	fmt.Printf("  string table: 0x%x (%d bytes)\n", h.StringTable, h.StringTableSize)

	fmt.Println()
	fmt.Println("Index groups")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  group\toffset\tcount")
	for k := range fres.NumGroups {
		if h.GroupOffsets[k] == 0 {
			continue
		}
		_, _ = fmt.Fprintf(tw, "  %s\t0x%x\t%d\n", fres.GroupKind(k), h.GroupOffsets[k], h.GroupCounts[k])
	}
	_ = tw.Flush()
}

func printTextures(f *fres.File, mips bool) error {
	g, err := f.Group(fres.GroupTextures)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Textures (%d)\n", g.Len())
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  #\tname\tdim\tsize\tformat\ttile mode\tmips\tswizzle\tstatus")
	for i := range g.Len() {
		tex, err := f.Texture(i)
		if err != nil {
			if importer.Fatal(err) {
				return err
			}
			_, _ = fmt.Fprintf(tw, "  %d\t?\t\t\t\t\t\t\t%v\n", i, err)
			continue
		}
		s := tex.Surface
		status := "ok"
		if err := importer.Validate(tex); err != nil {
			status = err.Error()
		}
		_, _ = fmt.Fprintf(tw, "  %d\t%s\t%s\t%dx%dx%d\t%s\t%s\t%d\t0x%x\t%s\n",
			i, tex.Name, s.Dim, s.Width, s.Height, s.Depth, s.Format, s.TileMode, s.NumMips, s.Swizzle, status)
	}
	_ = tw.Flush()

	if !mips {
		return nil
	}
	for i := range g.Len() {
		tex, err := f.Texture(i)
		if err != nil {
			continue
		}
		levels, err := importer.MipLevels(tex)
		if err != nil {
			fmt.Printf("\n  %s: %v\n", tex.Name, err)
			continue
		}
		fmt.Printf("\n  %s\n", tex.Name)
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "    level\tsize\tpitch\ttile mode\tsurf size\toffset")
		for _, m := range levels {
			_, _ = fmt.Fprintf(tw, "    %d\t%dx%d\t%d\t%s\t%d\t0x%x\n", m.Level, m.Width, m.Height, m.Pitch, m.TileMode, m.SurfSize, m.Offset)
		}
		_ = tw.Flush()
	}
	return nil
}

func printModels(f *fres.File, shapes bool) error {
	g, err := f.Group(fres.GroupModels)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Models (%d)\n", g.Len())
	for i := range g.Len() {
		m, err := f.Model(i)
		if err != nil {
			if importer.Fatal(err) {
				return err
			}
			fmt.Printf("  %d  %v\n", i, err)
			continue
		}
		bones := 0
		if m.Skeleton != nil {
			bones = len(m.Skeleton.Bones)
		}
		fmt.Printf("  %d  %s  vertices=%d shapes=%d materials=%d bones=%d\n",
			i, m.Name, m.TotalVertices, len(m.Shapes), len(m.Materials), bones)
		if shapes {
			printShapes(m)
		}
	}
	return nil
}

func printShapes(m *fres.Model) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "      shape\tmaterial\tbone\tskin\tlod\tprimitive\tindex format\tpoints\tattributes")
	for _, s := range m.Shapes {
		attribs := ""
		if v, err := m.VertexDataFor(s); err == nil {
			for j, a := range v.Attribs {
				if j > 0 {
					attribs += " "
				}
				attribs += a.Name + ":" + a.Format.String()
			}
		}
		for j, lod := range s.LODs {
			_, _ = fmt.Fprintf(tw, "      %s\t%d\t%d\t%d\t%d\t%s\t%s\t%d\t%s\n",
				s.Name, s.MaterialIndex, s.BoneIndex, s.SkinCount, j, lod.PrimitiveType, lod.IndexFormat, lod.PointCount, attribs)
		}
	}
	_ = tw.Flush()

	for _, mat := range m.Materials {
		fmt.Printf("      material %s: %d textures, %d samplers, %d params\n",
			mat.Name, len(mat.Textures), len(mat.Samplers), len(mat.Params))
		for _, smp := range mat.Samplers {
			if ref, ok := mat.TextureForSampler(smp.Name); ok {
				fmt.Printf("        %s -> %s\n", smp.Name, ref.Name)
			}
		}
	}
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

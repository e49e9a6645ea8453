package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/bfres/internal/api"
	"github.com/samcharles93/bfres/internal/assetstore"
	"github.com/samcharles93/bfres/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr         string
		readTimeout  time.Duration
		cacheSize    int
		pngCacheSize int
	)

	return &cli.Command{
		Name:      "serve",
		Usage:     "Serve the textures and models of a container over HTTP",
		ArgsUsage: "<container.bfres>",
		Flags: append(decodeFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.IntFlag{
				Name:        "cache-size",
				Usage:       "decoded textures kept in memory",
				Value:       assetstore.DefaultCacheSize,
				Destination: &cacheSize,
			},
			&cli.IntFlag{
				Name:        "png-cache-size",
				Usage:       "encoded PNG responses kept in memory",
				Value:       128,
				Destination: &pngCacheSize,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(c, cfg, &addr, &cacheSize)

			path, err := containerArg(c.Args().Slice())
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			store, err := assetstore.Open(path, assetstore.Options{CacheSize: cacheSize, AllMips: allMips})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open container: %v", err), 1)
			}
			defer func() { _ = store.Close() }()

			server, err := api.NewServer(store, pngCacheSize)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr, "container", path)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

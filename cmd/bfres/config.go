package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the bfres configuration file
// ($XDG_CONFIG_HOME/bfres/config.yaml). Pointer fields distinguish "not
// set" from zero values.
type Config struct {
	OutputDir     string `yaml:"output_dir"`
	Workers       *int   `yaml:"workers"`
	AllMips       *bool  `yaml:"all_mips"`
	ExportFormat  string `yaml:"export_format"`
	CompressLevel *int   `yaml:"compress_level"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
	CacheSize     *int   `yaml:"cache_size"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bfres", "config.yaml")
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields a zero Config; a missing
// explicit file or malformed YAML is an error.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
		if path == "" {
			return Config{}, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyLogConfig applies config file defaults to the global logging flags
// when they were not explicitly set.
func applyLogConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	if debug {
		logLevel = "debug"
	}
}

func applyDecodeConfig(c *cli.Command, cfg Config) {
	if cfg.Workers != nil && !c.IsSet("workers") {
		workers = *cfg.Workers
	}
	if cfg.AllMips != nil && !c.IsSet("all-mips") {
		allMips = *cfg.AllMips
	}
}

// applyExportConfig applies config file defaults to export command
// variables.
func applyExportConfig(c *cli.Command, cfg Config, outDir, format *string, level *int) {
	applyDecodeConfig(c, cfg)
	if cfg.OutputDir != "" && !c.IsSet("out") {
		*outDir = cfg.OutputDir
	}
	if cfg.ExportFormat != "" && format != nil && !c.IsSet("format") {
		*format = cfg.ExportFormat
	}
	if cfg.CompressLevel != nil && level != nil && !c.IsSet("compress-level") {
		*level = *cfg.CompressLevel
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, cacheSize *int) {
	applyDecodeConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.CacheSize != nil && !c.IsSet("cache-size") {
		*cacheSize = *cfg.CacheSize
	}
}

package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"permasnap/internal/archive"
	"permasnap/internal/config"
	"permasnap/internal/logging"
)

type commandContext struct {
	configFlag string
	jsonFlag   bool

	// archiveDeps overrides production collaborators (tests only).
	archiveDeps archive.Dependencies

	configOnce sync.Once
	config     *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

// JSONMode reports whether --json was given.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag
}

// logger writes console output to w and a JSON copy to the log file.
func (c *commandContext) logger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	format := cfg.Logging.Format
	if c.JSONMode() {
		format = "json"
	}
	return logging.New(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   format,
		Writer:   w,
		FilePath: filepath.Join(cfg.Paths.LogDir, logging.LogFileName),
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"tally/internal/config"
	"tally/internal/daemon"
	"tally/internal/logging"
	"tally/internal/store"
)

// bootstrap loads configuration and assembles the daemon stack.
func bootstrap(configPath string) (*daemon.Daemon, *slog.Logger, error) {
	cfg, resolved, _, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", filepath.Join(cfg.Paths.LogDir, "tallyd.log")},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if resolved != "" {
		logger.Info("configuration loaded", logging.String("path", resolved))
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	d, err := daemon.New(cfg, st, logger)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("create daemon: %w", err)
	}
	return d, logger, nil
}

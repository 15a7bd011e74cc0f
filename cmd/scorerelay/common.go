package main

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/choplin/scorerelay/internal/application"
	"github.com/choplin/scorerelay/internal/config"
	"github.com/choplin/scorerelay/internal/logging"
)

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if strings.TrimSpace(logLevel) != "" {
		level = logLevel
	}
	format := cfg.Log.Format
	if strings.TrimSpace(logFormat) != "" {
		format = logFormat
	}
	// stdout is reserved for command output and the MCP stdio transport
	return logging.New(level, format, os.Stderr)
}

// openRelay loads configuration and wires a relay. The returned cleanup
// closes the relay and flushes the logger.
func openRelay(opts application.Options) (*application.Relay, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts.Logger = log

	relay, err := application.New(cfg, opts)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		if err := relay.Close(); err != nil {
			log.Warn("failed to close relay", zap.Error(err))
		}
		_ = log.Sync()
	}
	return relay, cleanup, nil
}

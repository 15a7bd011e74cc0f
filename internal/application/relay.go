// Package application wires configuration into a runnable relay: tracker
// table, uploader, scanner and scheduler.
package application

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/choplin/scorerelay/internal/config"
	"github.com/choplin/scorerelay/internal/database"
	"github.com/choplin/scorerelay/internal/games"
	"github.com/choplin/scorerelay/internal/logging"
	"github.com/choplin/scorerelay/internal/scan"
	"github.com/choplin/scorerelay/internal/schedule"
	"github.com/choplin/scorerelay/internal/tracker"
	"github.com/choplin/scorerelay/internal/upload"
)

// Options tweaks a relay built from a Config.
type Options struct {
	// Interval overrides Config.Interval when positive.
	Interval time.Duration
	DryRun   bool
	Logger   *zap.Logger
}

// Relay is a fully wired pipeline.
type Relay struct {
	Config    *config.Config
	Scanner   *scan.Scanner
	Scheduler *schedule.Scheduler
	Logger    *zap.Logger

	state *database.Context
}

// New builds a relay from cfg. Call Close when done.
func New(cfg *config.Config, opts Options) (*Relay, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	httpClient, err := upload.NewHTTPClient(upload.HTTPOptions{
		Timeout:   time.Duration(cfg.HTTP.Timeout),
		UserAgent: cfg.HTTP.UserAgent,
		ProxyURL:  cfg.HTTP.Proxy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build http client: %w", err)
	}

	r := &Relay{Config: cfg, Logger: log}

	var table tracker.Table = tracker.NewMemoryTable()
	if cfg.State.Persist {
		dbCtx, err := database.CreateDatabase(cfg.State.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open fingerprint store: %w", err)
		}
		r.state = dbCtx
		table = database.NewFingerprintRepository(dbCtx)
		log.Info("using persistent fingerprint store", zap.String("path", cfg.State.Path))
	}

	r.Scanner = &scan.Scanner{
		Table:     table,
		Uploader:  upload.NewClient(cfg.APIEndpoint, httpClient),
		Games:     games.NewCatalog(cfg.RomNames),
		Extension: cfg.Extension,
		Observer:  logging.NewObserver(log),
		DryRun:    opts.DryRun,
	}

	interval := time.Duration(cfg.Interval)
	if opts.Interval > 0 {
		interval = opts.Interval
	}
	r.Scheduler = schedule.New(r.Scanner, cfg.Sources, interval)
	r.Scheduler.Hooks = logging.PassHooks(log)

	return r, nil
}

// Close releases the fingerprint store, if one is open.
func (r *Relay) Close() error {
	if r == nil {
		return nil
	}
	return database.CloseDatabase(r.state)
}

// SourceStatus describes a configured source as seen right now.
type SourceStatus struct {
	Name       string `json:"name"`
	Directory  string `json:"directory"`
	Available  bool   `json:"available"`
	Candidates int    `json:"candidates"`
	Error      string `json:"error,omitempty"`
}

// InspectSources checks every source directory without touching any file.
func InspectSources(cfg *config.Config) []SourceStatus {
	out := make([]SourceStatus, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		st := SourceStatus{Name: src.Name, Directory: src.Directory}
		entries, err := scan.ListCandidates(src.Directory, cfg.Extension)
		if err != nil {
			st.Error = err.Error()
		} else {
			st.Available = true
			st.Candidates = len(entries)
		}
		out = append(out, st)
	}
	return out
}

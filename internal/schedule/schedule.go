// Package schedule runs scan passes over every configured source, once on
// demand or repeatedly on a fixed interval.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/choplin/scorerelay/internal/config"
	"github.com/choplin/scorerelay/internal/scan"
)

// SourceScanner scans one source. *scan.Scanner satisfies it.
type SourceScanner interface {
	Scan(ctx context.Context, src config.Source) scan.Report
}

// PassReport is the result of one pass over all sources.
type PassReport struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Sources    []scan.Report `json:"sources"`
}

// Summaries returns one summary per source, in pass order.
func (p PassReport) Summaries() []scan.Summary {
	out := make([]scan.Summary, 0, len(p.Sources))
	for _, r := range p.Sources {
		out = append(out, r.Summarize())
	}
	return out
}

// Hooks are optional callbacks around each pass.
type Hooks struct {
	PassStarted  func(id string, sources int)
	PassFinished func(PassReport)
}

// Scheduler owns the pass cadence. Passes never overlap: RunOnce holds a
// mutex for the whole pass, including every upload.
type Scheduler struct {
	Scanner  SourceScanner
	Sources  []config.Source
	Interval time.Duration
	Hooks    Hooks

	// now is replaceable in tests.
	now func() time.Time
	mu  sync.Mutex
}

// New returns a Scheduler for sources in configuration order.
func New(scanner SourceScanner, sources []config.Source, interval time.Duration) *Scheduler {
	return &Scheduler{
		Scanner:  scanner,
		Sources:  append([]config.Source(nil), sources...),
		Interval: interval,
		now:      time.Now,
	}
}

// RunOnce scans every source in order and returns the pass report. Per-source
// and per-file failures are recorded in the report, never returned.
func (s *Scheduler) RunOnce(ctx context.Context) PassReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now
	if now == nil {
		now = time.Now
	}

	rep := PassReport{ID: uuid.NewString(), StartedAt: now()}
	if s.Hooks.PassStarted != nil {
		s.Hooks.PassStarted(rep.ID, len(s.Sources))
	}
	for _, src := range s.Sources {
		if ctx.Err() != nil {
			break
		}
		rep.Sources = append(rep.Sources, s.Scanner.Scan(ctx, src))
	}
	rep.FinishedAt = now()
	if s.Hooks.PassFinished != nil {
		s.Hooks.PassFinished(rep)
	}
	return rep
}

// Run performs a pass immediately and then one per Interval until ctx is
// cancelled. Ticks that fire while a pass is running are dropped, so the next
// pass starts only after the previous one returned. Run returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.RunOnce(ctx)

	interval := s.Interval
	if interval <= 0 {
		interval = config.DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

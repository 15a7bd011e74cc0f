// Package logging builds the relay's zap logger and renders scan events and
// pass reports as log lines.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/choplin/scorerelay/internal/scan"
	"github.com/choplin/scorerelay/internal/schedule"
	"github.com/choplin/scorerelay/internal/upload"
)

// New returns a logger writing to w (stderr when nil). format is "console" or
// "json".
func New(level, format string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if w == nil {
		w = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q (valid values: console, json)", format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// Observer renders scan events through a zap logger.
type Observer struct {
	log *zap.Logger
}

// NewObserver returns an Observer logging to log.
func NewObserver(log *zap.Logger) *Observer {
	return &Observer{log: log}
}

func (o *Observer) Observe(e scan.Event) {
	fields := []zap.Field{zap.String("source", e.Source)}
	if e.Path != "" {
		fields = append(fields, zap.String("path", e.Path))
	}
	if e.Game.RomID != "" {
		fields = append(fields, zap.String("rom", e.Game.RomID), zap.String("game", e.Game.DisplayName))
	}

	switch e.Kind {
	case scan.EventSourceUnavailable:
		o.log.Warn("source directory unavailable", append(fields, zap.Error(e.Err))...)
	case scan.EventFileUnchanged:
		o.log.Info("file unchanged, skipping", fields...)
	case scan.EventFileProcessing:
		o.log.Info("processing file", fields...)
	case scan.EventReadFailure:
		o.log.Error("error reading file", append(fields, zap.Error(e.Err))...)
	case scan.EventNoValidRecords:
		o.log.Warn("no valid scores found", fields...)
	case scan.EventTrackerFailure:
		o.log.Error("fingerprint table failure", append(fields, zap.Error(e.Err))...)
	case scan.EventRecordParsed:
		o.log.Info("parsed score (dry run)", append(fields, zap.String("player", e.Record.Player), zap.Int64("score", e.Record.Score))...)
	case scan.EventUpload:
		o.logUpload(e, fields)
	case scan.EventFileCancelled:
		o.log.Warn("pass cancelled, file left for next pass", append(fields, zap.Int("records", e.Records), zap.Error(e.Err))...)
	case scan.EventFileCommitted:
		o.log.Debug("file committed", append(fields, zap.Int("records", e.Records))...)
	default:
		o.log.Debug("scan event", append(fields, zap.Stringer("kind", e.Kind))...)
	}
}

func (o *Observer) logUpload(e scan.Event, fields []zap.Field) {
	fields = append(fields,
		zap.String("player", e.Record.Player),
		zap.Int64("score", e.Record.Score),
		zap.Stringer("outcome", e.Outcome.Kind),
	)
	switch e.Outcome.Kind {
	case upload.Accepted:
		o.log.Info("uploaded score", fields...)
	case upload.Rejected:
		o.log.Warn("upload rejected", append(fields,
			zap.Int("status", e.Outcome.Status),
			zap.String("response", e.Outcome.Body),
		)...)
	case upload.TransportFailure:
		o.log.Error("upload failed", append(fields, zap.Error(e.Outcome.Err))...)
	}
}

// PassHooks returns scheduler hooks that log the start and end of each pass.
func PassHooks(log *zap.Logger) schedule.Hooks {
	return schedule.Hooks{
		PassStarted: func(id string, sources int) {
			log.Info("starting score processing", zap.String("pass_id", id), zap.Int("sources", sources))
		},
		PassFinished: func(p schedule.PassReport) {
			var files, records, accepted, failed int
			for _, s := range p.Summaries() {
				files += s.Files
				records += s.Records
				accepted += s.Accepted
				failed += s.Rejected + s.TransportFailures
			}
			log.Info("score processing complete",
				zap.String("pass_id", p.ID),
				zap.Duration("elapsed", p.FinishedAt.Sub(p.StartedAt)),
				zap.Int("files", files),
				zap.Int("records", records),
				zap.Int("accepted", accepted),
				zap.Int("failed", failed),
			)
		},
	}
}

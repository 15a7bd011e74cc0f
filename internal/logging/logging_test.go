package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/choplin/scorerelay/internal/config"
	"github.com/choplin/scorerelay/internal/games"
	"github.com/choplin/scorerelay/internal/scan"
	"github.com/choplin/scorerelay/internal/schedule"
	"github.com/choplin/scorerelay/internal/score"
	"github.com/choplin/scorerelay/internal/upload"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", "json", &buf)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	log.Debug("hidden")
	log.Info("visible", zap.String("source", "arcade"))
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON line: %v", err)
	}
	if entry["msg"] != "visible" || entry["source"] != "arcade" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("loud", "console", nil); err == nil {
		t.Fatalf("expected error for bad level")
	}
	if _, err := New("info", "xml", nil); err == nil {
		t.Fatalf("expected error for bad format")
	}
}

func TestObserverRendersOutcomes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := NewObserver(zap.New(core))
	game := games.Identity{RomID: "pacman", DisplayName: "Pac-Man"}
	rec := score.Record{Player: "ABC", Score: 100}

	obs.Observe(scan.Event{Kind: scan.EventUpload, Source: "arcade", Game: game, Record: rec, Outcome: upload.Outcome{Kind: upload.Accepted}})
	obs.Observe(scan.Event{Kind: scan.EventUpload, Source: "arcade", Game: game, Record: rec, Outcome: upload.Outcome{Kind: upload.Rejected, Status: 500, Body: "boom"}})
	obs.Observe(scan.Event{Kind: scan.EventUpload, Source: "arcade", Game: game, Record: rec, Outcome: upload.Outcome{Kind: upload.TransportFailure, Err: errors.New("refused")}})
	obs.Observe(scan.Event{Kind: scan.EventSourceUnavailable, Source: "racing", Path: "/nope", Err: errors.New("missing")})
	obs.Observe(scan.Event{Kind: scan.EventNoValidRecords, Source: "arcade", Path: "/a/pacman.txt", Game: game})

	entries := logs.AllUntimed()
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}

	want := []struct {
		level zapcore.Level
		msg   string
	}{
		{zapcore.InfoLevel, "uploaded score"},
		{zapcore.WarnLevel, "upload rejected"},
		{zapcore.ErrorLevel, "upload failed"},
		{zapcore.WarnLevel, "source directory unavailable"},
		{zapcore.WarnLevel, "no valid scores found"},
	}
	for i, w := range want {
		if entries[i].Level != w.level || entries[i].Message != w.msg {
			t.Fatalf("entry %d: expected %s %q, got %s %q", i, w.level, w.msg, entries[i].Level, entries[i].Message)
		}
	}

	ctx := entries[1].ContextMap()
	if ctx["status"] != int64(500) || ctx["response"] != "boom" || ctx["game"] != "Pac-Man" {
		t.Fatalf("unexpected rejected fields %+v", ctx)
	}
}

func TestObserverFileEventsVisibleAtInfo(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	obs := NewObserver(zap.New(core))

	obs.Observe(scan.Event{Kind: scan.EventFileUnchanged, Source: "arcade", Path: "/a/galaga.txt"})
	obs.Observe(scan.Event{Kind: scan.EventFileCancelled, Source: "arcade", Path: "/a/pacman.txt", Records: 2, Err: context.Canceled})

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries at info level, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].Message != "file unchanged, skipping" {
		t.Fatalf("unexpected unchanged entry %s %q", entries[0].Level, entries[0].Message)
	}
	if entries[0].ContextMap()["path"] != "/a/galaga.txt" {
		t.Fatalf("expected path field, got %+v", entries[0].ContextMap())
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].ContextMap()["records"] != int64(2) {
		t.Fatalf("unexpected cancelled entry %s %+v", entries[1].Level, entries[1].ContextMap())
	}
}

func TestPassHooks(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	hooks := PassHooks(zap.New(core))

	start := time.Unix(1_700_000_000, 0)
	hooks.PassStarted("pass-1", 2)
	hooks.PassFinished(schedule.PassReport{
		ID:         "pass-1",
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Sources: []scan.Report{{
			Source: config.Source{Name: "arcade"},
			Files: []scan.FileResult{{
				Status:   scan.FileStatusUploaded,
				Records:  2,
				Outcomes: []upload.Outcome{{Kind: upload.Accepted}, {Kind: upload.Rejected}},
			}},
		}},
	})

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	done := entries[1].ContextMap()
	if done["pass_id"] != "pass-1" || done["records"] != int64(2) || done["accepted"] != int64(1) || done["failed"] != int64(1) {
		t.Fatalf("unexpected pass summary %+v", done)
	}
}

// Package scan walks configured source directories and drives each new or
// changed score file through parse, upload and fingerprint commit.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/choplin/scorerelay/internal/config"
	"github.com/choplin/scorerelay/internal/games"
	"github.com/choplin/scorerelay/internal/score"
	"github.com/choplin/scorerelay/internal/tracker"
	"github.com/choplin/scorerelay/internal/upload"
)

// Uploader submits one record. *upload.Client satisfies it.
type Uploader interface {
	Submit(ctx context.Context, gameName string, rec score.Record, source string) upload.Outcome
}

// Resolver maps a ROM id to a game identity. *games.Catalog satisfies it.
type Resolver interface {
	Resolve(romID string) games.Identity
}

// Scanner processes the score files of one source at a time. It is not safe
// for concurrent use; passes are expected to run one after another.
type Scanner struct {
	Table     tracker.Table
	Uploader  Uploader
	Games     Resolver
	Extension string
	Observer  Observer

	// DryRun parses files and reports records without uploading them or
	// committing fingerprints.
	DryRun bool
}

// ListCandidates returns the score files directly inside dir, in directory
// listing order. Subdirectories are not descended into.
func ListCandidates(dir, ext string) ([]os.DirEntry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	ext = config.NormalizeExtension(ext)
	out := entries[:0]
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(e.Name())) != ext {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Scan processes every candidate file of src. Failures are recorded in the
// returned Report and never abort sibling files.
func (s *Scanner) Scan(ctx context.Context, src config.Source) Report {
	rep := Report{Source: src}
	obs := s.observer()

	entries, err := ListCandidates(src.Directory, s.Extension)
	if err != nil {
		rep.Unavailable = &SourceUnavailableError{Source: src.Name, Directory: src.Directory, Err: err}
		obs.Observe(Event{Kind: EventSourceUnavailable, Source: src.Name, Path: src.Directory, Err: rep.Unavailable})
		return rep
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			// remaining files keep their old fingerprint and are picked up next pass
			break
		}
		path := filepath.Join(src.Directory, e.Name())
		rep.Files = append(rep.Files, s.processFile(ctx, src, path))
	}
	return rep
}

func (s *Scanner) processFile(ctx context.Context, src config.Source, path string) FileResult {
	obs := s.observer()
	res := FileResult{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		// vanished between listing and stat
		rf := &score.ReadFailure{Path: path, Err: err}
		return s.fail(res, FileStatusReadFailure, Event{Kind: EventReadFailure, Source: src.Name, Path: path, Err: rf})
	}
	modTime := info.ModTime()

	ok, err := tracker.ShouldProcess(s.Table, path, modTime)
	if err != nil {
		return s.fail(res, FileStatusTrackerFailure, Event{Kind: EventTrackerFailure, Source: src.Name, Path: path, Err: err})
	}
	if !ok {
		res.Status = FileStatusUnchanged
		obs.Observe(Event{Kind: EventFileUnchanged, Source: src.Name, Path: path})
		return res
	}

	game := s.resolve(games.RomID(path))
	res.RomID = game.RomID
	res.Game = game.DisplayName
	obs.Observe(Event{Kind: EventFileProcessing, Source: src.Name, Path: path, Game: game})

	records, err := score.ParseFile(path)
	if err != nil {
		return s.fail(res, FileStatusReadFailure, Event{Kind: EventReadFailure, Source: src.Name, Path: path, Game: game, Err: err})
	}
	if len(records) == 0 {
		return s.fail(res, FileStatusNoRecords, Event{Kind: EventNoValidRecords, Source: src.Name, Path: path, Game: game, Err: ErrNoValidRecords})
	}
	res.Records = len(records)

	if s.DryRun {
		for _, rec := range records {
			obs.Observe(Event{Kind: EventRecordParsed, Source: src.Name, Path: path, Game: game, Record: rec})
		}
		res.Status = FileStatusParsed
		return res
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}
		out := s.Uploader.Submit(ctx, game.DisplayName, rec, src.Name)
		res.Outcomes = append(res.Outcomes, out)
		obs.Observe(Event{Kind: EventUpload, Source: src.Name, Path: path, Game: game, Record: rec, Outcome: out})
	}

	// A cancelled pass must not record the file as done: some records were
	// never attempted, or failed only because of the cancellation.
	if err := ctx.Err(); err != nil {
		return s.fail(res, FileStatusCancelled, Event{Kind: EventFileCancelled, Source: src.Name, Path: path, Game: game, Records: len(records), Err: err})
	}

	// upload outcomes never gate the commit
	res.Status = FileStatusUploaded
	if err := tracker.Commit(s.Table, path, modTime); err != nil {
		res.Err = fmt.Errorf("commit fingerprint: %w", err)
		res.ErrorMsg = res.Err.Error()
		obs.Observe(Event{Kind: EventTrackerFailure, Source: src.Name, Path: path, Game: game, Err: res.Err})
		return res
	}
	obs.Observe(Event{Kind: EventFileCommitted, Source: src.Name, Path: path, Game: game, Records: len(records)})
	return res
}

func (s *Scanner) fail(res FileResult, status string, ev Event) FileResult {
	res.Status = status
	res.Err = ev.Err
	if ev.Err != nil {
		res.ErrorMsg = ev.Err.Error()
	}
	s.observer().Observe(ev)
	return res
}

func (s *Scanner) resolve(romID string) games.Identity {
	if s.Games == nil {
		return games.Identity{RomID: romID, DisplayName: romID}
	}
	return s.Games.Resolve(romID)
}

func (s *Scanner) observer() Observer {
	if s.Observer == nil {
		return nopObserver{}
	}
	return s.Observer
}

// IsUnavailable reports whether err marks an unavailable source.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

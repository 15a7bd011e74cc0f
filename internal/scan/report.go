package scan

import (
	"errors"
	"fmt"

	"github.com/choplin/scorerelay/internal/config"
	"github.com/choplin/scorerelay/internal/upload"
)

const (
	FileStatusUnchanged      = "unchanged"
	FileStatusUploaded       = "uploaded"
	FileStatusParsed         = "parsed" // dry run: records found, nothing sent
	FileStatusReadFailure    = "read_failure"
	FileStatusNoRecords      = "no_valid_records"
	FileStatusTrackerFailure = "tracker_failure"
	FileStatusCancelled      = "cancelled" // pass stopped before every record was sent; not committed
)

// ErrSourceUnavailable is matched by every *SourceUnavailableError.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrNoValidRecords marks a file that was read but yielded no records.
var ErrNoValidRecords = errors.New("no valid scores")

// SourceUnavailableError reports a source directory that is missing, not a
// directory, or cannot be listed.
type SourceUnavailableError struct {
	Source    string
	Directory string
	Err       error
}

func (e *SourceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source %q unavailable: %s: %v", e.Source, e.Directory, e.Err)
	}
	return fmt.Sprintf("source %q unavailable: %s", e.Source, e.Directory)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

// FileResult describes what happened to one candidate file.
type FileResult struct {
	Path     string           `json:"path"`
	RomID    string           `json:"rom_id,omitempty"`
	Game     string           `json:"game,omitempty"`
	Status   string           `json:"status"`
	Records  int              `json:"records"`
	Outcomes []upload.Outcome `json:"-"`
	Err      error            `json:"-"`
	ErrorMsg string           `json:"error,omitempty"`
}

// Report is the result of scanning one source.
type Report struct {
	Source      config.Source `json:"source"`
	Unavailable error         `json:"-"`
	Files       []FileResult  `json:"files"`
}

// Summary aggregates a Report for display.
type Summary struct {
	Source            string `json:"source"`
	Available         bool   `json:"available"`
	Files             int    `json:"files"`
	Unchanged         int    `json:"unchanged"`
	Processed         int    `json:"processed"`
	Failed            int    `json:"failed"`
	Records           int    `json:"records"`
	Accepted          int    `json:"accepted"`
	Rejected          int    `json:"rejected"`
	TransportFailures int    `json:"transport_failures"`
}

// Summarize counts files and upload outcomes in r.
func (r Report) Summarize() Summary {
	s := Summary{Source: r.Source.Name, Available: r.Unavailable == nil, Files: len(r.Files)}
	for _, f := range r.Files {
		switch f.Status {
		case FileStatusUnchanged:
			s.Unchanged++
		case FileStatusUploaded, FileStatusParsed:
			s.Processed++
		default:
			s.Failed++
		}
		s.Records += f.Records
		for _, o := range f.Outcomes {
			switch o.Kind {
			case upload.Accepted:
				s.Accepted++
			case upload.Rejected:
				s.Rejected++
			case upload.TransportFailure:
				s.TransportFailures++
			}
		}
	}
	return s
}

package scan

import (
	"github.com/choplin/scorerelay/internal/games"
	"github.com/choplin/scorerelay/internal/score"
	"github.com/choplin/scorerelay/internal/upload"
)

// EventKind names a step of the scan pipeline.
type EventKind int

const (
	EventSourceUnavailable EventKind = iota
	EventFileUnchanged
	EventFileProcessing
	EventReadFailure
	EventNoValidRecords
	EventTrackerFailure
	EventRecordParsed // dry run only
	EventUpload
	EventFileCommitted
	EventFileCancelled
)

func (k EventKind) String() string {
	switch k {
	case EventSourceUnavailable:
		return "source_unavailable"
	case EventFileUnchanged:
		return "file_unchanged"
	case EventFileProcessing:
		return "file_processing"
	case EventReadFailure:
		return "read_failure"
	case EventNoValidRecords:
		return "no_valid_records"
	case EventTrackerFailure:
		return "tracker_failure"
	case EventRecordParsed:
		return "record_parsed"
	case EventUpload:
		return "upload"
	case EventFileCommitted:
		return "file_committed"
	case EventFileCancelled:
		return "file_cancelled"
	default:
		return "unknown"
	}
}

// Event is emitted by Scanner for every decision it makes. Fields that do not
// apply to Kind are zero.
type Event struct {
	Kind    EventKind
	Source  string
	Path    string
	Game    games.Identity
	Record  score.Record
	Records int
	Outcome upload.Outcome
	Err     error
}

// Observer receives scan events. The scanner never writes output itself.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

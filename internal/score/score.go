// Package score extracts player/score records from hi-score report files.
package score

import (
	"fmt"
	"iter"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Record is one parsed (player, score) pair.
type Record struct {
	Player string
	Score  int64
}

// ReadFailure reports that a score file could not be opened or read.
type ReadFailure struct {
	Path string
	Err  error
}

func (e *ReadFailure) Error() string {
	return fmt.Sprintf("read score file %s: %v", e.Path, e.Err)
}

func (e *ReadFailure) Unwrap() error { return e.Err }

var linePattern = regexp.MustCompile(`^Player:\s*(\S+)\s+Score:\s*(\d+)`)

// ParseLine matches a single line. Leading and trailing whitespace is ignored.
func ParseLine(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Record{}, false
	}
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, false
	}
	n, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		// digit run too long for int64
		return Record{}, false
	}
	return Record{Player: m[1], Score: n}, true
}

// Records yields every matching line of content in order. Lines that do not
// match are skipped. The sequence can be ranged over more than once.
func Records(content string) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		rest := content
		for rest != "" {
			var line string
			line, rest = nextLine(rest)
			rec, ok := ParseLine(line)
			if !ok {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// nextLine splits off the first line of s. "\n", "\r\n" and a lone "\r" all
// end a line.
func nextLine(s string) (line, rest string) {
	i := strings.IndexAny(s, "\r\n")
	if i < 0 {
		return s, ""
	}
	if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
		return s[:i], s[i+2:]
	}
	return s[:i], s[i+1:]
}

// ParseFile reads path and returns its records in file order. A file with no
// matching lines returns an empty slice and a nil error. Open or read errors
// are returned as *ReadFailure.
func ParseFile(path string) ([]Record, error) {
	//nolint:gosec // G304: path comes from a configured source directory
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadFailure{Path: path, Err: err}
	}

	var out []Record
	for rec := range Records(string(b)) {
		out = append(out, rec)
	}
	return out, nil
}

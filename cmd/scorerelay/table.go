package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

func getTerminalWidth() int {
	// Try to get terminal width from stdout
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	// Default width if terminal size cannot be determined
	return 80
}

// pathWidth is the room left for a path column once fixed columns are laid out.
func pathWidth(termWidth, fixed int) int {
	w := termWidth - fixed
	if w < 20 {
		w = 20
	}
	return w
}

// truncateLeft keeps the tail of s, which is the informative part of a path.
func truncateLeft(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	const ellipsis = "..."
	rs := []rune(s)
	width := runewidth.StringWidth(ellipsis)
	start := len(rs)
	for start > 0 {
		w := runewidth.RuneWidth(rs[start-1])
		if width+w > maxWidth {
			break
		}
		width += w
		start--
	}
	return ellipsis + string(rs[start:])
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

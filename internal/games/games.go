// Package games maps ROM identifiers to display names.
package games

import (
	"path/filepath"
	"strings"
)

// Identity is the game a score file belongs to.
type Identity struct {
	RomID       string
	DisplayName string
}

// Catalog is a static ROM id to display name lookup. Keys are matched
// case-insensitively.
type Catalog struct {
	names map[string]string
}

// NewCatalog copies names into a Catalog.
func NewCatalog(names map[string]string) *Catalog {
	c := &Catalog{names: make(map[string]string, len(names))}
	for rom, display := range names {
		rom = strings.ToLower(strings.TrimSpace(rom))
		display = strings.TrimSpace(display)
		if rom == "" || display == "" {
			continue
		}
		c.names[rom] = display
	}
	return c
}

// Resolve returns the identity for romID. Unmapped ids use romID verbatim as
// the display name.
func (c *Catalog) Resolve(romID string) Identity {
	if c != nil {
		if name, ok := c.names[strings.ToLower(romID)]; ok {
			return Identity{RomID: romID, DisplayName: name}
		}
	}
	return Identity{RomID: romID, DisplayName: romID}
}

// Len returns the number of mapped ROM ids.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// RomID derives the ROM identifier from a score file name: the base name with
// its final extension removed.
func RomID(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

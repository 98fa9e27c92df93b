package marker

import (
	"crypto/sha256"
	"encoding/hex"
)

// Line is a single marker line found in a source file.
type Line struct {
	File   string `json:"file"`
	Number int    `json:"number"` // 0-based physical line
	Label  string `json:"label"`
}

// Catalog is the immutable result of one scan.
// Files keep discovery order; lines within a file keep ascending line order.
type Catalog struct {
	files   []string
	lines   map[string][]Line
	sources map[string]SourceFile

	// occurrences counts the same-named files discovered before the owner of each name.
	occurrences map[string]int
}

func newCatalog() *Catalog {
	return &Catalog{
		files:       []string{},
		lines:       make(map[string][]Line),
		sources:     make(map[string]SourceFile),
		occurrences: make(map[string]int),
	}
}

// Len returns the number of files carrying at least one marker line.
func (c *Catalog) Len() int {
	return len(c.files)
}

// ScriptNames returns the files with markers in discovery order.
func (c *Catalog) ScriptNames() []string {
	names := make([]string, len(c.files))
	copy(names, c.files)
	return names
}

// Lines returns the marker lines of a file, or an empty slice if the file is unknown.
func (c *Catalog) Lines(name string) []Line {
	lines := c.lines[name]
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// Labels returns the labels of a file's marker lines in catalog order.
func (c *Catalog) Labels(name string) []string {
	lines := c.lines[name]
	labels := make([]string, len(lines))
	for i, line := range lines {
		labels[i] = line.Label
	}
	return labels
}

// ScriptIndex returns the position of name in ScriptNames, or -1.
func (c *Catalog) ScriptIndex(name string) int {
	for i, file := range c.files {
		if file == name {
			return i
		}
	}
	return -1
}

// LineNumber returns the 1-based physical line of the ordinal-th marker in name.
// ok is false when the file is unknown or the ordinal is out of range.
func (c *Catalog) LineNumber(name string, ordinal int) (line int, ok bool) {
	entry, ok := c.line(name, ordinal)
	if !ok {
		return 0, false
	}
	return entry.Number + 1, true
}

// Label returns the label stored at the given ordinal.
func (c *Catalog) Label(name string, ordinal int) (string, bool) {
	entry, ok := c.line(name, ordinal)
	if !ok {
		return "", false
	}
	return entry.Label, true
}

// Script returns the source file registered under name.
func (c *Catalog) Script(name string) (SourceFile, bool) {
	src, ok := c.sources[name]
	return src, ok
}

// Occurrence returns how many files with the same name were discovered before the
// file that owns name. Discovery can pair it with its own list of same-named paths.
func (c *Catalog) Occurrence(name string) (int, bool) {
	n, ok := c.occurrences[name]
	return n, ok
}

// Find returns the ordinal of the first line in name whose key matches.
func (c *Catalog) Find(name, key string) (int, bool) {
	for i, line := range c.lines[name] {
		if Key(name, line.Label) == key {
			return i, true
		}
	}
	return 0, false
}

func (c *Catalog) line(name string, ordinal int) (Line, bool) {
	lines, ok := c.lines[name]
	if !ok || ordinal < 0 || ordinal >= len(lines) {
		return Line{}, false
	}
	return lines[ordinal], true
}

// Key is a stable identifier for a marker line that survives reordering within a file.
// Two lines with the same label in one file share a key; Find resolves to the first.
func Key(file, label string) string {
	sum := sha256.Sum256([]byte(file + "\x00" + label))
	return hex.EncodeToString(sum[:8])
}

package marker

import (
	"strings"
	"time"
)

// SourceFile is a candidate file handed to the scanner by file discovery.
type SourceFile struct {
	Name string // File name without extension, used as the catalog key
	Text string // Full file content
}

// ScanStats describes the outcome of a single scan.
type ScanStats struct {
	FilesExamined    int           `json:"filesExamined"`
	FilesWithMarkers int           `json:"filesWithMarkers"`
	MarkerLines      int           `json:"markerLines"`
	Malformed        int           `json:"malformed"`
	Duplicates       int           `json:"duplicates"`
	Duration         time.Duration `json:"durationNs"`
}

// Pattern returns the substring a line must contain to be a marker line.
func Pattern(marker string) string {
	return "// " + marker + " : "
}

// Scan builds a fresh catalog from files using the given marker token.
// An empty or whitespace-only marker disables scanning and yields an empty catalog.
func Scan(marker string, files []SourceFile) (*Catalog, ScanStats) {
	start := time.Now()
	cat := newCatalog()
	var stats ScanStats

	if strings.TrimSpace(marker) == "" {
		return cat, stats
	}

	pattern := Pattern(marker)
	occurrences := make(map[string]int, len(files))
	for _, file := range files {
		stats.FilesExamined++
		occurrence := occurrences[file.Name]
		occurrences[file.Name]++

		var found []Line
		for i, raw := range strings.Split(file.Text, "\n") {
			raw = strings.TrimSuffix(raw, "\r")
			if !strings.Contains(raw, pattern) {
				continue
			}
			label, ok := parseLabel(raw, pattern)
			if !ok {
				stats.Malformed++
				continue
			}
			found = append(found, Line{File: file.Name, Number: i, Label: label})
		}

		if len(found) == 0 {
			continue
		}
		// Same base name in another directory: the first file with markers owns the name.
		if _, dup := cat.lines[file.Name]; dup {
			stats.Duplicates++
			continue
		}
		cat.files = append(cat.files, file.Name)
		cat.lines[file.Name] = found
		cat.sources[file.Name] = file
		cat.occurrences[file.Name] = occurrence
		stats.MarkerLines += len(found)
	}

	stats.FilesWithMarkers = len(cat.files)
	stats.Duration = time.Since(start)
	return cat, stats
}

// parseLabel extracts the label following the marker pattern.
// A lone space right after the pattern means the label is the next segment with only
// leading spaces removed; otherwise the first segment is trimmed on both sides.
func parseLabel(line, pattern string) (string, bool) {
	parts := strings.Split(line, pattern)
	if len(parts) < 2 {
		return "", false
	}
	if parts[1] == " " {
		if len(parts) < 3 {
			return "", false
		}
		return strings.TrimLeft(parts[2], " "), true
	}
	return strings.Trim(parts[1], " "), true
}

package marker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"codemarks/internal/contextutil"
	"codemarks/internal/settings"
)

// Sources supplies candidate source files, already filtered to the managed code tree.
type Sources interface {
	Sources(ctx context.Context) ([]SourceFile, error)
	// Reset drops whatever the previous discovery remembered about the tree.
	Reset()
}

// SettingsStore loads and persists the marker settings document.
type SettingsStore interface {
	Load(ctx context.Context) (settings.Settings, error)
	Save(ctx context.Context, s settings.Settings) error
}

// snapshot pairs a catalog with the settings it was built from.
type snapshot struct {
	settings  settings.Settings
	catalog   *Catalog
	stats     ScanStats
	scannedAt time.Time
}

// Index owns the settings and the current catalog.
// Queries on a stale index scan first. Rebuilt catalogs are published with an atomic swap,
// so readers never see a partially built catalog.
type Index struct {
	store   SettingsStore
	sources Sources

	mu       sync.Mutex // serialises settings loads and scans
	loaded   bool
	settings settings.Settings

	current atomic.Pointer[snapshot]
	stale   atomic.Bool
}

// NewIndex creates a stale index. Nothing is loaded until the first query.
func NewIndex(store SettingsStore, sources Sources) *Index {
	idx := &Index{
		store:   store,
		sources: sources,
	}
	idx.stale.Store(true)
	return idx
}

// Stale reports whether the next query will trigger a scan.
func (i *Index) Stale() bool {
	return i.stale.Load() || i.current.Load() == nil
}

// invalidate marks the catalog stale without scanning.
func (i *Index) invalidate() {
	i.stale.Store(true)
}

// Refresh loads settings on first use and rescans the code tree.
func (i *Index) Refresh(ctx context.Context) (ScanStats, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.loadLocked(ctx, false); err != nil {
		return ScanStats{}, err
	}
	return i.scanLocked(ctx)
}

// Reload re-reads the settings document and rescans.
// External edits to the document are only picked up through this call.
func (i *Index) Reload(ctx context.Context) (ScanStats, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.loadLocked(ctx, true); err != nil {
		return ScanStats{}, err
	}
	return i.scanLocked(ctx)
}

// Settings returns the settings the current catalog was built from.
func (i *Index) Settings(ctx context.Context) (settings.Settings, error) {
	if snap := i.current.Load(); snap != nil {
		return snap.settings, nil
	}
	if _, err := i.Refresh(ctx); err != nil && i.current.Load() == nil {
		return settings.Settings{}, err
	}
	return i.current.Load().settings, nil
}

// SetMarker persists a new marker token and rebuilds the catalog under it.
func (i *Index) SetMarker(ctx context.Context, marker string) (ScanStats, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.loadLocked(ctx, false); err != nil {
		return ScanStats{}, err
	}

	next := i.settings
	next.Marker = marker
	if err := i.store.Save(ctx, next); err != nil {
		return ScanStats{}, fmt.Errorf("failed to save settings: %w", err)
	}
	i.settings = next

	return i.scanLocked(ctx)
}

// SetStoragePath persists a new storage path. The catalog does not depend on it.
func (i *Index) SetStoragePath(ctx context.Context, path string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.loadLocked(ctx, false); err != nil {
		return err
	}

	next := i.settings
	next.StoragePath = path
	if err := i.store.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	i.settings = next

	if snap := i.current.Load(); snap != nil {
		updated := *snap
		updated.settings = next
		i.current.Store(&updated)
	}
	return nil
}

// Stats returns the statistics of the last completed scan.
func (i *Index) Stats() (ScanStats, time.Time, bool) {
	snap := i.current.Load()
	if snap == nil || snap.scannedAt.IsZero() {
		return ScanStats{}, time.Time{}, false
	}
	return snap.stats, snap.scannedAt, true
}

// Catalog returns the current catalog, scanning first if it is stale.
// A failed scan is logged and the last good catalog (or an empty one) is returned.
func (i *Index) Catalog(ctx context.Context) *Catalog {
	if snap := i.current.Load(); snap != nil && !i.stale.Load() {
		return snap.catalog
	}

	if _, err := i.Refresh(ctx); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "catalog refresh failed", "error", err)
	}
	if snap := i.current.Load(); snap != nil {
		return snap.catalog
	}
	return newCatalog()
}

// ScriptNames returns the files carrying marker lines in discovery order.
func (i *Index) ScriptNames(ctx context.Context) []string {
	return i.Catalog(ctx).ScriptNames()
}

// Labels returns the labels for a file, empty when the file is unknown.
func (i *Index) Labels(ctx context.Context, name string) []string {
	return i.Catalog(ctx).Labels(name)
}

// ScriptIndex returns the position of name in ScriptNames, or -1.
func (i *Index) ScriptIndex(ctx context.Context, name string) int {
	return i.Catalog(ctx).ScriptIndex(name)
}

// LineNumber resolves a file and ordinal to a 1-based line number.
func (i *Index) LineNumber(ctx context.Context, name string, ordinal int) (int, bool) {
	return i.Catalog(ctx).LineNumber(name, ordinal)
}

// Script returns the source registered under name.
func (i *Index) Script(ctx context.Context, name string) (SourceFile, bool) {
	return i.Catalog(ctx).Script(name)
}

func (i *Index) loadLocked(ctx context.Context, force bool) error {
	if i.loaded && !force {
		return nil
	}
	s, err := i.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	i.settings = s
	i.loaded = true
	return nil
}

func (i *Index) scanLocked(ctx context.Context) (ScanStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var (
		files       []SourceFile
		discoverErr error
	)
	if i.settings.Disabled() {
		i.sources.Reset()
	} else {
		files, discoverErr = i.sources.Sources(ctx)
		if discoverErr != nil && (errors.Is(discoverErr, context.Canceled) || errors.Is(discoverErr, context.DeadlineExceeded)) {
			// Settings changed but were never scanned: drop the catalog built under the old ones.
			if snap := i.current.Load(); snap != nil && snap.settings != i.settings {
				i.current.Store(&snapshot{settings: i.settings, catalog: newCatalog()})
			}
			i.invalidate()
			return ScanStats{}, discoverErr
		}
	}

	catalog, stats := Scan(i.settings.Marker, files)
	i.current.Store(&snapshot{
		settings:  i.settings,
		catalog:   catalog,
		stats:     stats,
		scannedAt: time.Now(),
	})
	i.stale.Store(false)

	logger.InfoContext(ctx, "catalog rebuilt",
		"marker", i.settings.Marker,
		"files_examined", stats.FilesExamined,
		"files_with_markers", stats.FilesWithMarkers,
		"marker_lines", stats.MarkerLines,
		"malformed", stats.Malformed,
		"duplicates", stats.Duplicates,
	)

	if discoverErr != nil {
		return stats, fmt.Errorf("failed to discover source files: %w", discoverErr)
	}
	return stats, nil
}

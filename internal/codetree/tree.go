// Package codetree discovers candidate source files inside the managed code tree.
package codetree

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"codemarks/internal/contextutil"
	"codemarks/internal/marker"
)

// File is a source file found while walking the tree.
type File struct {
	Name    string // Base name without extension (e.g., "player")
	RelPath string // Path relative to the tree root, forward slashes
	AbsPath string // Absolute path on disk
}

// cachedText is file content remembered between scans.
type cachedText struct {
	size    int64
	modTime time.Time
	text    string
}

// Tree walks a root directory for files with the configured extensions.
type Tree struct {
	root       string
	extensions map[string]struct{}
	ignoreDirs map[string]struct{}
	cache      *lru.Cache[string, cachedText]

	mu    sync.RWMutex
	paths map[string][]string // name -> absolute paths in discovery order
}

// New creates a Tree rooted at root.
// Extensions are matched case-insensitively and may be given with or without the leading dot.
func New(root string, extensions, ignoreDirs []string, cacheSize int) (*Tree, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve code root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to access code root %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("code root %s is not a directory", absRoot)
	}
	if len(extensions) == 0 {
		return nil, fmt.Errorf("at least one source extension is required")
	}

	cache, err := lru.New[string, cachedText](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create file cache: %w", err)
	}

	t := &Tree{
		root:       absRoot,
		extensions: make(map[string]struct{}, len(extensions)),
		ignoreDirs: make(map[string]struct{}, len(ignoreDirs)),
		cache:      cache,
		paths:      make(map[string][]string),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		t.extensions[ext] = struct{}{}
	}
	for _, dir := range ignoreDirs {
		if dir = strings.TrimSpace(dir); dir != "" {
			t.ignoreDirs[dir] = struct{}{}
		}
	}
	return t, nil
}

// Root returns the absolute tree root.
func (t *Tree) Root() string {
	return t.root
}

// Walk lists eligible files in lexical order.
func (t *Tree) Walk(ctx context.Context) ([]File, error) {
	var files []File

	err := filepath.WalkDir(t.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if path != t.root {
				if _, skip := t.ignoreDirs[d.Name()]; skip {
					return filepath.SkipDir
				}
			}
			return nil
		}

		// Symlinks and other non-regular entries may point outside the tree.
		if !d.Type().IsRegular() {
			return nil
		}

		ext := filepath.Ext(d.Name())
		if _, ok := t.extensions[strings.ToLower(ext)]; !ok {
			return nil
		}

		relPath, err := filepath.Rel(t.root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		files = append(files, File{
			Name:    strings.TrimSuffix(d.Name(), ext),
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("failed to walk code tree %s: %w", t.root, err)
	}

	return files, nil
}

// Sources walks the tree and reads every eligible file.
// Unreadable files are logged and skipped so one bad file does not abort a scan.
func (t *Tree) Sources(ctx context.Context) ([]marker.SourceFile, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, walkErr := t.Walk(ctx)
	if walkErr != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	sources := make([]marker.SourceFile, 0, len(files))
	paths := make(map[string][]string, len(files))
	for _, file := range files {
		text, err := t.read(file.AbsPath)
		if err != nil {
			logger.WarnContext(ctx, "skipping unreadable source file", "rel_path", file.RelPath, "error", err)
			continue
		}
		paths[file.Name] = append(paths[file.Name], file.AbsPath)
		sources = append(sources, marker.SourceFile{Name: file.Name, Text: text})
	}

	t.mu.Lock()
	t.paths = paths
	t.mu.Unlock()

	logger.DebugContext(ctx, "discovered source files", "root", t.root, "files", len(sources))
	return sources, walkErr
}

// Locate returns the absolute path of a discovered file. occurrence selects among files
// sharing the name, 0 being the first in discovery order.
func (t *Tree) Locate(name string, occurrence int) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	paths := t.paths[name]
	if occurrence < 0 || occurrence >= len(paths) {
		return "", false
	}
	return paths[occurrence], true
}

// Reset forgets the paths recorded by the last call to Sources.
func (t *Tree) Reset() {
	t.mu.Lock()
	t.paths = make(map[string][]string)
	t.mu.Unlock()
}

func (t *Tree) read(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if cached, ok := t.cache.Get(path); ok && cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
		return cached.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := string(data)
	t.cache.Add(path, cachedText{size: info.Size(), modTime: info.ModTime(), text: text})
	return text, nil
}

package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"codemarks/internal/checklist"
	"codemarks/internal/codetree"
	"codemarks/internal/config"
	"codemarks/internal/http"
	"codemarks/internal/marker"
	"codemarks/internal/opener"
	"codemarks/internal/settings"
	"codemarks/internal/storage"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	tree, err := codetree.New(cfg.CodeRoot, cfg.SourceExtensions, cfg.IgnoreDirs, cfg.FileCacheSize)
	if err != nil {
		log.Fatalf("Failed to open code tree: %v", err)
	}
	slog.Info("Code tree ready", "root", tree.Root(), "extensions", cfg.SourceExtensions)

	index := marker.NewIndex(settings.NewFileStore(cfg.SettingsPath), tree)

	// Scan once up front so the first request does not pay for it.
	ctx := context.Background()
	if _, err := index.Refresh(ctx); err != nil {
		slog.Error("Initial catalog scan failed", "error", err)
	}

	open := opener.New(cfg.OpenCommand)
	if _, disabled := open.(opener.Disabled); disabled {
		slog.Info("Line opener disabled, set OPEN_COMMAND to enable it")
	}

	svc := checklist.NewService(
		storage.NewProcessRepo(db),
		storage.NewTaskRepo(db),
		index,
		tree,
		open,
		tree.Root(),
	)

	router := http.NewRouter(&http.Deps{
		Index:     index,
		Checklist: svc,
		DB:        db,
	})

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr, "settings", cfg.SettingsPath)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

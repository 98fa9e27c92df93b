package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	CodeRoot         string
	SourceExtensions []string
	IgnoreDirs       []string
	DBPath           string
	SettingsPath     string
	FileCacheSize    int
	OpenCommand      string
	APIPort          string
	LogLevel         slog.Level
	LogFormat        string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or one of its parents, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		CodeRoot:         getEnv("CODE_ROOT", ""),
		SourceExtensions: getList("SOURCE_EXTENSIONS", ".go"),
		IgnoreDirs:       getList("IGNORE_DIRS", ".git,vendor,node_modules"),
		DBPath:           getEnv("DB_PATH", "./data/codemarks.db"),
		SettingsPath:     getEnv("SETTINGS_PATH", "./data/settings.json"),
		OpenCommand:      getEnv("OPEN_COMMAND", ""),
		APIPort:          getEnv("API_PORT", "9000"),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.CodeRoot == "" {
		return nil, fmt.Errorf("CODE_ROOT is required")
	}
	info, err := os.Stat(cfg.CodeRoot)
	if err != nil {
		return nil, fmt.Errorf("CODE_ROOT is not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("CODE_ROOT must be a directory: %s", cfg.CodeRoot)
	}

	if len(cfg.SourceExtensions) == 0 {
		return nil, fmt.Errorf("SOURCE_EXTENSIONS must list at least one extension")
	}

	cacheSize, err := strconv.Atoi(getEnv("FILE_CACHE_SIZE", "1024"))
	if err != nil {
		return nil, fmt.Errorf("FILE_CACHE_SIZE must be a valid integer: %w", err)
	}
	if cacheSize <= 0 {
		return nil, fmt.Errorf("FILE_CACHE_SIZE must be greater than 0")
	}
	cfg.FileCacheSize = cacheSize

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	for _, p := range []string{cfg.DBPath, cfg.SettingsPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getList splits a comma-separated environment variable, dropping empty items.
func getList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

var envVars = []string{
	"CODE_ROOT", "SOURCE_EXTENSIONS", "IGNORE_DIRS", "DB_PATH", "SETTINGS_PATH",
	"FILE_CACHE_SIZE", "OPEN_COMMAND", "API_PORT", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every config variable for the duration of the test.
// getEnv treats empty values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

// chdirTemp moves into an empty directory so no .env file is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to chdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
	})
	return tmpDir
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*testing.T, *Config)
	}{
		{
			name: "defaults with only CODE_ROOT",
			setupEnv: func(t *testing.T) {
				t.Setenv("CODE_ROOT", t.TempDir())
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if !reflect.DeepEqual(cfg.SourceExtensions, []string{".go"}) {
					t.Errorf("SourceExtensions = %v", cfg.SourceExtensions)
				}
				if !reflect.DeepEqual(cfg.IgnoreDirs, []string{".git", "vendor", "node_modules"}) {
					t.Errorf("IgnoreDirs = %v", cfg.IgnoreDirs)
				}
				if cfg.DBPath != "./data/codemarks.db" || cfg.SettingsPath != "./data/settings.json" {
					t.Errorf("DBPath = %s, SettingsPath = %s", cfg.DBPath, cfg.SettingsPath)
				}
				if cfg.FileCacheSize != 1024 || cfg.APIPort != "9000" || cfg.OpenCommand != "" {
					t.Errorf("FileCacheSize = %d, APIPort = %s, OpenCommand = %q", cfg.FileCacheSize, cfg.APIPort, cfg.OpenCommand)
				}
				if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
					t.Errorf("LogLevel = %v, LogFormat = %s", cfg.LogLevel, cfg.LogFormat)
				}
			},
		},
		{
			name: "custom values",
			setupEnv: func(t *testing.T) {
				dir := t.TempDir()
				t.Setenv("CODE_ROOT", t.TempDir())
				t.Setenv("SOURCE_EXTENSIONS", ".go, .cs ,,")
				t.Setenv("IGNORE_DIRS", "build")
				t.Setenv("DB_PATH", filepath.Join(dir, "db", "marks.db"))
				t.Setenv("SETTINGS_PATH", filepath.Join(dir, "conf", "settings.toml"))
				t.Setenv("FILE_CACHE_SIZE", "32")
				t.Setenv("OPEN_COMMAND", "code --goto {path}:{line}")
				t.Setenv("API_PORT", "8080")
				t.Setenv("LOG_LEVEL", "debug")
				t.Setenv("LOG_FORMAT", "JSON")
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if !reflect.DeepEqual(cfg.SourceExtensions, []string{".go", ".cs"}) {
					t.Errorf("SourceExtensions = %v", cfg.SourceExtensions)
				}
				if !reflect.DeepEqual(cfg.IgnoreDirs, []string{"build"}) {
					t.Errorf("IgnoreDirs = %v", cfg.IgnoreDirs)
				}
				if filepath.Base(cfg.DBPath) != "marks.db" || filepath.Base(cfg.SettingsPath) != "settings.toml" {
					t.Errorf("DBPath = %s, SettingsPath = %s", cfg.DBPath, cfg.SettingsPath)
				}
				if cfg.FileCacheSize != 32 || cfg.APIPort != "8080" {
					t.Errorf("FileCacheSize = %d, APIPort = %s", cfg.FileCacheSize, cfg.APIPort)
				}
				if cfg.OpenCommand != "code --goto {path}:{line}" {
					t.Errorf("OpenCommand = %q", cfg.OpenCommand)
				}
				if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
					t.Errorf("LogLevel = %v, LogFormat = %s", cfg.LogLevel, cfg.LogFormat)
				}
			},
		},
		{
			name:     "missing CODE_ROOT",
			setupEnv: func(t *testing.T) {},
			wantErr:  true,
		},
		{
			name: "CODE_ROOT does not exist",
			setupEnv: func(t *testing.T) {
				t.Setenv("CODE_ROOT", filepath.Join(t.TempDir(), "missing"))
			},
			wantErr: true,
		},
		{
			name: "CODE_ROOT is a file",
			setupEnv: func(t *testing.T) {
				p := filepath.Join(t.TempDir(), "file.go")
				if err := os.WriteFile(p, []byte("package x"), 0644); err != nil {
					t.Fatalf("Failed to create file: %v", err)
				}
				t.Setenv("CODE_ROOT", p)
			},
			wantErr: true,
		},
		{
			name: "empty extension list",
			setupEnv: func(t *testing.T) {
				t.Setenv("CODE_ROOT", t.TempDir())
				t.Setenv("SOURCE_EXTENSIONS", " , ")
			},
			wantErr: true,
		},
		{
			name: "invalid FILE_CACHE_SIZE",
			setupEnv: func(t *testing.T) {
				t.Setenv("CODE_ROOT", t.TempDir())
				t.Setenv("FILE_CACHE_SIZE", "many")
			},
			wantErr: true,
		},
		{
			name: "zero FILE_CACHE_SIZE",
			setupEnv: func(t *testing.T) {
				t.Setenv("CODE_ROOT", t.TempDir())
				t.Setenv("FILE_CACHE_SIZE", "0")
			},
			wantErr: true,
		},
		{
			name: "invalid LOG_LEVEL",
			setupEnv: func(t *testing.T) {
				t.Setenv("CODE_ROOT", t.TempDir())
				t.Setenv("LOG_LEVEL", "loud")
			},
			wantErr: true,
		},
		{
			name: "invalid LOG_FORMAT",
			setupEnv: func(t *testing.T) {
				t.Setenv("CODE_ROOT", t.TempDir())
				t.Setenv("LOG_FORMAT", "xml")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			clearEnv(t)
			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.checkConfig != nil {
				tt.checkConfig(t, cfg)
			}
		})
	}
}

func TestLoad_CreatesDataDirectories(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "db", "marks.db")
	settingsPath := filepath.Join(tmpDir, "conf", "settings.json")
	t.Setenv("CODE_ROOT", t.TempDir())
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("SETTINGS_PATH", settingsPath)

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, p := range []string{dbPath, settingsPath} {
		if _, err := os.Stat(filepath.Dir(p)); os.IsNotExist(err) {
			t.Errorf("Load() should create %s", filepath.Dir(p))
		}
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	clearEnv(t)

	// godotenv does not override variables that are already set, even to "".
	_ = os.Unsetenv("CODE_ROOT")
	_ = os.Unsetenv("API_PORT")

	root := t.TempDir()
	content := "CODE_ROOT=" + root + "\nAPI_PORT=7777\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CodeRoot != root || cfg.APIPort != "7777" {
		t.Errorf("CodeRoot = %s, APIPort = %s", cfg.CodeRoot, cfg.APIPort)
	}
	_ = os.Unsetenv("CODE_ROOT")
	_ = os.Unsetenv("API_PORT")
}

func TestGetList(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue string
		want         []string
	}{
		{name: "default used", value: "", defaultValue: "a,b", want: []string{"a", "b"}},
		{name: "spaces trimmed", value: " x , y ", defaultValue: "a", want: []string{"x", "y"}},
		{name: "empty items dropped", value: ",x,,", defaultValue: "a", want: []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_LIST_VAR", tt.value)
			if got := getList("TEST_LIST_VAR", tt.defaultValue); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("getList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue string
		want         string
	}{
		{name: "env var set", value: "set-value", defaultValue: "default", want: "set-value"},
		{name: "empty env var uses default", value: "", defaultValue: "default", want: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_VAR", tt.value)
			if got := getEnv("TEST_ENV_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}

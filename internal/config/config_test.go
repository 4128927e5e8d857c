package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"moviely/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndReadsEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PEXELS_API_KEY", "pexels-key")
	t.Setenv("MOVIELY_API_TOKEN", " secret ")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "moviely", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	wantData := filepath.Join(tempHome, ".local", "share", "moviely")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.ProjectsDir != filepath.Join(wantData, "projects") {
		t.Fatalf("unexpected projects dir: %q", cfg.Paths.ProjectsDir)
	}
	if cfg.Storage.Backend != config.BackendJSON {
		t.Fatalf("unexpected backend %q", cfg.Storage.Backend)
	}
	if cfg.Search.PexelsAPIKey != "pexels-key" {
		t.Fatalf("expected pexels key from env, got %q", cfg.Search.PexelsAPIKey)
	}
	if cfg.Server.APIToken != "secret" {
		t.Fatalf("expected trimmed token from env, got %q", cfg.Server.APIToken)
	}
	if cfg.Render.Codec != "libx264" || cfg.Render.Preset != "medium" || cfg.Render.AudioCodec != "aac" {
		t.Fatalf("unexpected render defaults %+v", cfg.Render)
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PIXABAY_API_KEY", "from-env")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := struct {
		Paths   map[string]any `toml:"paths"`
		Storage map[string]any `toml:"storage"`
		Search  map[string]any `toml:"search"`
		Logging map[string]any `toml:"logging"`
	}{
		Paths:   map[string]any{"data_dir": "~/media-data", "output_dir": "~/renders"},
		Storage: map[string]any{"backend": "SQLite"},
		Search:  map[string]any{"pixabay_api_key": "from-file", "default_limit": 25},
		Logging: map[string]any{"format": "JSON", "level": "Debug"},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "media-data") {
		t.Fatalf("unexpected data dir %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "renders") {
		t.Fatalf("unexpected output dir %q", cfg.Paths.OutputDir)
	}
	if cfg.Storage.Backend != config.BackendSQLite {
		t.Fatalf("expected lower-cased backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Search.PixabayAPIKey != "from-file" {
		t.Fatalf("file value should win over env, got %q", cfg.Search.PixabayAPIKey)
	}
	if cfg.Search.DefaultLimit != 25 || cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected overrides: %+v %+v", cfg.Search, cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown backend", "[storage]\nbackend = \"mongo\"\n", "storage.backend"},
		{"bad limit", "[search]\ndefault_limit = 90\n", "search.default_limit"},
		{"bad bind", "[server]\nbind = \"localhost\"\n", "server.bind"},
		{"bad log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"unknown key", "[render]\nencoder = \"x\"\n", "encoder"},
		{"bad base url", "[search]\npexels_base_url = \"not a url\"\n", "search.pexels_base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists || cfg.Storage.Backend != config.BackendJSON {
		t.Fatalf("unexpected sample load result exists=%v backend=%q", exists, cfg.Storage.Backend)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		DataDir:      filepath.Join(base, "data"),
		ProjectsDir:  filepath.Join(base, "projects"),
		TemplatesDir: filepath.Join(base, "templates"),
		DownloadDir:  filepath.Join(base, "downloads"),
		OutputDir:    filepath.Join(base, "output"),
		LogDir:       filepath.Join(base, "logs"),
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.ProjectsDir, cfg.Paths.DownloadDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeSearch()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	fields := []struct {
		name  string
		value *string
		sub   string
	}{
		{"paths.projects_dir", &c.Paths.ProjectsDir, "projects"},
		{"paths.templates_dir", &c.Paths.TemplatesDir, "templates"},
		{"paths.download_dir", &c.Paths.DownloadDir, "downloads"},
		{"paths.output_dir", &c.Paths.OutputDir, "output"},
		{"paths.log_dir", &c.Paths.LogDir, "logs"},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = filepath.Join(c.Paths.DataDir, field.sub)
		}
		if *field.value, err = expandPath(*field.value); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	if strings.TrimSpace(c.Storage.SQLitePath) == "" {
		c.Storage.SQLitePath = filepath.Join(c.Paths.DataDir, "moviely.db")
	}
	var err error
	if c.Storage.SQLitePath, err = expandPath(c.Storage.SQLitePath); err != nil {
		return fmt.Errorf("storage.sqlite_path: %w", err)
	}
	c.Storage.RedisAddr = strings.TrimSpace(c.Storage.RedisAddr)
	if c.Storage.RedisAddr == "" {
		c.Storage.RedisAddr = defaultRedisAddr
	}
	if c.Storage.RedisPassword == "" {
		if value, ok := os.LookupEnv("MOVIELY_REDIS_PASSWORD"); ok {
			c.Storage.RedisPassword = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Storage.RedisPrefix) == "" {
		c.Storage.RedisPrefix = defaultRedisPrefix
	}
	return nil
}

func (c *Config) normalizeRender() {
	c.Render.FFmpegBinary = strings.TrimSpace(c.Render.FFmpegBinary)
	if c.Render.FFmpegBinary == "" {
		c.Render.FFmpegBinary = defaultFFmpegBinary
	}
	c.Render.FFprobeBinary = strings.TrimSpace(c.Render.FFprobeBinary)
	if c.Render.FFprobeBinary == "" {
		c.Render.FFprobeBinary = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.Render.Codec) == "" {
		c.Render.Codec = defaultCodec
	}
	if strings.TrimSpace(c.Render.Preset) == "" {
		c.Render.Preset = defaultPreset
	}
	if strings.TrimSpace(c.Render.AudioCodec) == "" {
		c.Render.AudioCodec = defaultAudioCodec
	}
	if font := strings.TrimSpace(c.Render.FontFile); font != "" {
		if expanded, err := expandPath(font); err == nil {
			c.Render.FontFile = expanded
		}
	}
}

func (c *Config) normalizeSearch() {
	envFallbacks := []struct {
		value *string
		env   string
	}{
		{&c.Search.PexelsAPIKey, "PEXELS_API_KEY"},
		{&c.Search.PixabayAPIKey, "PIXABAY_API_KEY"},
		{&c.Search.JamendoClientID, "JAMENDO_CLIENT_ID"},
	}
	for _, fallback := range envFallbacks {
		*fallback.value = strings.TrimSpace(*fallback.value)
		if *fallback.value == "" {
			if value, ok := os.LookupEnv(fallback.env); ok {
				*fallback.value = strings.TrimSpace(value)
			}
		}
	}
	if c.Search.DefaultLimit == 0 {
		c.Search.DefaultLimit = defaultSearchLimit
	}
	if c.Search.TimeoutSeconds == 0 {
		c.Search.TimeoutSeconds = defaultSearchTimeout
	}
	if c.Search.RequestsPerSecond == 0 {
		c.Search.RequestsPerSecond = defaultSearchRate
	}
	c.Search.PexelsBaseURL = strings.TrimRight(strings.TrimSpace(c.Search.PexelsBaseURL), "/")
	if c.Search.PexelsBaseURL == "" {
		c.Search.PexelsBaseURL = defaultPexelsBaseURL
	}
	c.Search.PixabayBaseURL = strings.TrimRight(strings.TrimSpace(c.Search.PixabayBaseURL), "/")
	if c.Search.PixabayBaseURL == "" {
		c.Search.PixabayBaseURL = defaultPixabayBaseURL
	}
	c.Search.JamendoBaseURL = strings.TrimRight(strings.TrimSpace(c.Search.JamendoBaseURL), "/")
	if c.Search.JamendoBaseURL == "" {
		c.Search.JamendoBaseURL = defaultJamendoBaseURL
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultAPIBind
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	if c.Server.APIToken == "" {
		if value, ok := os.LookupEnv("MOVIELY_API_TOKEN"); ok {
			c.Server.APIToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

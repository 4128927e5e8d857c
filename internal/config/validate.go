package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendJSON, BackendSQLite:
	case BackendRedis:
		if _, _, err := net.SplitHostPort(c.Storage.RedisAddr); err != nil {
			return fmt.Errorf("storage.redis_addr must be host:port: %w", err)
		}
		if c.Storage.RedisDB < 0 {
			return errors.New("storage.redis_db must be >= 0")
		}
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (want memory, json, sqlite or redis)", c.Storage.Backend)
	}
	return nil
}

func (c *Config) validateRender() error {
	if strings.ContainsAny(c.Render.Codec, " \t") {
		return fmt.Errorf("render.codec must be a single encoder name, got %q", c.Render.Codec)
	}
	if strings.ContainsAny(c.Render.Preset, " \t") {
		return fmt.Errorf("render.preset must be a single preset name, got %q", c.Render.Preset)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.DefaultLimit < 1 || c.Search.DefaultLimit > 50 {
		return errors.New("search.default_limit must be between 1 and 50")
	}
	if c.Search.TimeoutSeconds < 1 {
		return errors.New("search.timeout_seconds must be positive")
	}
	if c.Search.RequestsPerSecond < 0 {
		return errors.New("search.requests_per_second must be >= 0")
	}
	for name, raw := range map[string]string{
		"search.pexels_base_url":  c.Search.PexelsBaseURL,
		"search.pixabay_base_url": c.Search.PixabayBaseURL,
		"search.jamendo_base_url": c.Search.JamendoBaseURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind must be host:port: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

package mediasearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"moviely/internal/fileutil"
	"moviely/internal/logging"
	"moviely/internal/services"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

var defaultExtensions = map[string]string{
	MediaVideo: ".mp4",
	MediaImage: ".jpg",
	MediaAudio: ".mp3",
}

// CachePath returns where result is stored inside dir.
func CachePath(dir string, result Result) string {
	ext := ""
	if parsed, err := url.Parse(result.URL); err == nil {
		ext = path.Ext(parsed.Path)
	}
	if ext == "" || len(ext) > 6 {
		ext = defaultExtensions[result.MediaType]
		if ext == "" {
			ext = ".bin"
		}
	}
	name := unsafeNameChars.ReplaceAllString(result.Provider+"_"+result.ID, "_")
	return filepath.Join(dir, name+ext)
}

// Download fetches result into the download directory and returns the local
// path. A file already present in the cache is returned as-is.
func (c *Client) Download(ctx context.Context, result Result) (string, error) {
	if strings.TrimSpace(result.URL) == "" {
		return "", services.Wrap(services.ErrValidation, "mediasearch", "download", "result has no download url", nil)
	}
	if c.cfg.DownloadDir == "" {
		return "", services.Wrap(services.ErrConfiguration, "mediasearch", "download", "download directory is not configured", nil)
	}
	target := CachePath(c.cfg.DownloadDir, result)
	if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() {
		c.logger.Debug("download cache hit", logging.String("path", target))
		return target, nil
	}
	if err := os.MkdirAll(c.cfg.DownloadDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrStorage, "mediasearch", "download", "create download directory", err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, result.URL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrSearch, "mediasearch", "download", "build request", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrSearch, "mediasearch", "download", "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", services.Wrap(services.ErrSearch, "mediasearch", "download",
			fmt.Sprintf("download failed (%s): %s", resp.Status, strings.TrimSpace(string(body))), nil)
	}

	written, err := fileutil.WriteAtomicFrom(target, resp.Body, 0o644)
	if err != nil {
		return "", services.Wrap(services.ErrStorage, "mediasearch", "download", "write "+target, err)
	}
	c.logger.Info("media downloaded",
		logging.String("provider", result.Provider),
		logging.String("id", result.ID),
		logging.String("path", target),
		logging.Int64("bytes", written),
		logging.String(logging.FieldEventType, "media_downloaded"),
	)
	return target, nil
}

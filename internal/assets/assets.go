// Package assets inspects local media files referenced by clips.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"moviely/internal/fileutil"
	"moviely/internal/services"
)

// Info describes a local asset.
type Info struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
}

// IsRemote reports whether path is an http(s) URL.
func IsRemote(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ResolvePath makes path absolute against baseDir, or the working directory
// when baseDir is empty. URLs are returned unchanged.
func ResolvePath(path, baseDir string) (string, error) {
	if IsRemote(path) || filepath.IsAbs(path) {
		return path, nil
	}
	if baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

// Stat returns Info for a local regular file.
func Stat(path string) (Info, error) {
	abs, err := ResolvePath(path, "")
	if err != nil {
		return Info{}, services.Wrap(services.ErrAsset, "assets", "stat", "", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, services.Wrap(services.ErrAsset, "assets", "stat", "asset not found: "+path, nil)
		}
		return Info{}, services.Wrap(services.ErrAsset, "assets", "stat", "", err)
	}
	if !info.Mode().IsRegular() {
		return Info{}, services.Wrap(services.ErrAsset, "assets", "stat", "asset is not a file: "+path, nil)
	}
	return Info{
		Path:      abs,
		Name:      filepath.Base(abs),
		Size:      info.Size(),
		Extension: filepath.Ext(abs),
	}, nil
}

// Hash returns the hex sha256 digest of the file at path.
func Hash(path string) (string, error) {
	sum, err := fileutil.HashFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrAsset, "assets", "hash", path, err)
	}
	return sum, nil
}

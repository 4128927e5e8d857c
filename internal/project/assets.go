package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"

	"moviely/internal/services"
)

// AssetChecker verifies that a media source can be read at construction time.
type AssetChecker interface {
	CheckAsset(path string) error
}

// AssetCheckerFunc adapts a function to the AssetChecker interface.
type AssetCheckerFunc func(path string) error

// CheckAsset calls f(path).
func (f AssetCheckerFunc) CheckAsset(path string) error { return f(path) }

// SkipAssets accepts every source. Stored projects decoded with it keep clips
// whose files have since vanished, so render reports them and operations can
// still remove them.
var SkipAssets AssetChecker = AssetCheckerFunc(func(string) error { return nil })

// FileAssets checks sources against the local filesystem.
type FileAssets struct{}

// CheckAsset requires path to be an existing regular file readable by the
// current process.
func (FileAssets) CheckAsset(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrAsset, "project", "asset",
				fmt.Sprintf("source file does not exist: %s", path), nil)
		}
		return services.Wrap(services.ErrAsset, "project", "asset",
			fmt.Sprintf("stat source %s", path), err)
	}
	if !info.Mode().IsRegular() {
		return services.Wrap(services.ErrAsset, "project", "asset",
			fmt.Sprintf("source is not a regular file: %s", path), nil)
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return services.Wrap(services.ErrAsset, "project", "asset",
			fmt.Sprintf("source file is not readable: %s", path), err)
	}
	return nil
}

func checkerOrDefault(assets AssetChecker) AssetChecker {
	if assets == nil {
		return FileAssets{}
	}
	return assets
}

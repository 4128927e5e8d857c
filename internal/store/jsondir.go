package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"moviely/internal/fileutil"
	"moviely/internal/project"
)

const jsonExt = ".json"

// JSONDir stores each project as <dir>/<id>.json.
type JSONDir struct {
	dir    string
	assets project.AssetChecker
}

// NewJSONDir returns a store rooted at dir, creating it if needed. assets
// validates media sources on load; nil checks the local filesystem.
func NewJSONDir(dir string, assets project.AssetChecker) (*JSONDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageError("create projects directory", err)
	}
	return &JSONDir{dir: dir, assets: assets}, nil
}

// Dir returns the root directory.
func (s *JSONDir) Dir() string { return s.dir }

// Path returns the file backing id.
func (s *JSONDir) Path(id string) string {
	return filepath.Join(s.dir, id+jsonExt)
}

func (s *JSONDir) Save(ctx context.Context, state project.State, id string) (string, error) {
	if err := contextOrBackground(ctx).Err(); err != nil {
		return "", err
	}
	id, err := ResolveID(state, id)
	if err != nil {
		return "", err
	}
	data, err := project.Marshal(state)
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteAtomic(s.Path(id), append(data, '\n'), 0o644); err != nil {
		return "", storageError("save "+id, err)
	}
	return id, nil
}

func (s *JSONDir) Load(ctx context.Context, id string) (project.State, error) {
	return s.load(ctx, id, s.assets)
}

func (s *JSONDir) LoadUnchecked(ctx context.Context, id string) (project.State, error) {
	return s.load(ctx, id, project.SkipAssets)
}

func (s *JSONDir) load(ctx context.Context, id string, assets project.AssetChecker) (project.State, error) {
	if err := contextOrBackground(ctx).Err(); err != nil {
		return project.State{}, err
	}
	if err := ValidateID(id); err != nil {
		return project.State{}, err
	}
	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return project.State{}, notFound(id)
		}
		return project.State{}, storageError("load "+id, err)
	}
	return project.Decode(data, assets)
}

func (s *JSONDir) List(ctx context.Context) ([]string, error) {
	if err := contextOrBackground(ctx).Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, storageError("list", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, jsonExt) || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, jsonExt))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *JSONDir) Delete(_ context.Context, id string) (bool, error) {
	if err := ValidateID(id); err != nil {
		return false, err
	}
	if err := os.Remove(s.Path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, storageError("delete "+id, err)
	}
	return true, nil
}

func (s *JSONDir) Exists(_ context.Context, id string) (bool, error) {
	if ValidateID(id) != nil {
		return false, nil
	}
	info, err := os.Stat(s.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, storageError("stat "+id, err)
	}
	return !info.IsDir(), nil
}

// Close is a no-op.
func (s *JSONDir) Close() error { return nil }

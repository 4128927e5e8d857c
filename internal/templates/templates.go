// Package templates loads named project seeds from the binary and from a
// user template directory holding JSON or YAML documents.
package templates

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"moviely/internal/fileutil"
	"moviely/internal/project"
	"moviely/internal/services"
)

//go:embed builtin/*.json
var builtinFS embed.FS

const (
	SourceBuiltin = "builtin"
	SourceUser    = "user"
)

var (
	namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)
	extensions  = []string{".json", ".yaml", ".yml"}
	titleCaser  = cases.Title(language.English)
)

// Info summarises a template for listings.
type Info struct {
	Name       string             `json:"name"`
	Title      string             `json:"title"`
	Source     string             `json:"source"`
	Resolution project.Resolution `json:"resolution"`
	FPS        int                `json:"fps"`
	ClipCount  int                `json:"clip_count"`
}

// Manager resolves templates, preferring user files over built-ins of the
// same name.
type Manager struct {
	dir    string
	assets project.AssetChecker
}

// NewManager returns a manager over dir. An empty dir serves built-ins only.
func NewManager(dir string, assets project.AssetChecker) *Manager {
	return &Manager{dir: dir, assets: assets}
}

// Dir returns the user template directory.
func (m *Manager) Dir() string { return m.dir }

// Title renders a template name for display, e.g. "tiktok_vertical" becomes
// "Tiktok Vertical".
func Title(name string) string {
	return titleCaser.String(strings.NewReplacer("_", " ", "-", " ").Replace(name))
}

// Load returns the project seeded by template name.
func (m *Manager) Load(name string) (project.State, error) {
	if err := validateName(name); err != nil {
		return project.State{}, err
	}
	if file, ok := m.userFile(name); ok {
		data, err := os.ReadFile(file)
		if err != nil {
			return project.State{}, services.Wrap(services.ErrStorage, "templates", "load", "read "+file, err)
		}
		return m.decode(name, filepath.Ext(file), data)
	}
	data, err := builtinFS.ReadFile(path.Join("builtin", name+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return project.State{}, services.Wrap(services.ErrNotFound, "templates", "load",
				fmt.Sprintf("template %q not found", name), nil)
		}
		return project.State{}, services.Wrap(services.ErrStorage, "templates", "load", "read builtin "+name, err)
	}
	return m.decode(name, ".json", data)
}

func (m *Manager) decode(name, ext string, data []byte) (project.State, error) {
	if ext == ".yaml" || ext == ".yml" {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return project.State{}, services.Wrap(services.ErrValidation, "templates", "load",
				fmt.Sprintf("template %q is not valid YAML", name), err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return project.State{}, services.Wrap(services.ErrValidation, "templates", "load",
				fmt.Sprintf("template %q cannot be represented as JSON", name), err)
		}
		data = converted
	}
	state, err := project.Decode(data, m.assets)
	if err != nil {
		return project.State{}, fmt.Errorf("template %s: %w", name, err)
	}
	return state, nil
}

// List returns every available template sorted by name. Templates that fail
// to decode are skipped.
func (m *Manager) List() ([]Info, error) {
	sources := map[string]string{}
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "templates", "list", "read builtins", err)
	}
	for _, entry := range entries {
		sources[strings.TrimSuffix(entry.Name(), ".json")] = SourceBuiltin
	}
	names, err := m.userNames()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		sources[name] = SourceUser
	}

	out := make([]Info, 0, len(sources))
	for name, source := range sources {
		state, err := m.Load(name)
		if err != nil {
			continue
		}
		out = append(out, Info{
			Name:       name,
			Title:      Title(name),
			Source:     source,
			Resolution: state.Resolution,
			FPS:        state.FPS,
			ClipCount:  state.ClipCount(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Names returns the sorted template names.
func (m *Manager) Names() ([]string, error) {
	infos, err := m.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names, nil
}

// Save writes state as a user JSON template and returns its path.
func (m *Manager) Save(state project.State, name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if m.dir == "" {
		return "", services.Wrap(services.ErrConfiguration, "templates", "save", "template directory is not configured", nil)
	}
	data, err := project.Marshal(state)
	if err != nil {
		return "", err
	}
	target := filepath.Join(m.dir, name+".json")
	if err := fileutil.WriteAtomic(target, append(data, '\n'), 0o644); err != nil {
		return "", services.Wrap(services.ErrStorage, "templates", "save", "write "+target, err)
	}
	for _, ext := range extensions[1:] {
		_ = os.Remove(filepath.Join(m.dir, name+ext))
	}
	return target, nil
}

// Delete removes a user template. Built-ins cannot be deleted and report
// false.
func (m *Manager) Delete(name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	file, ok := m.userFile(name)
	if !ok {
		return false, nil
	}
	if err := os.Remove(file); err != nil {
		return false, services.Wrap(services.ErrStorage, "templates", "delete", "remove "+file, err)
	}
	return true, nil
}

// Exists reports whether a user or built-in template named name exists.
func (m *Manager) Exists(name string) bool {
	if validateName(name) != nil {
		return false
	}
	if _, ok := m.userFile(name); ok {
		return true
	}
	_, err := fs.Stat(builtinFS, path.Join("builtin", name+".json"))
	return err == nil
}

func (m *Manager) userFile(name string) (string, bool) {
	if m.dir == "" {
		return "", false
	}
	for _, ext := range extensions {
		candidate := filepath.Join(m.dir, name+ext)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

func (m *Manager) userNames() ([]string, error) {
	if m.dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrStorage, "templates", "list", "read "+m.dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		name := strings.TrimSuffix(entry.Name(), ext)
		for _, known := range extensions {
			if ext == known && namePattern.MatchString(name) {
				names = append(names, name)
				break
			}
		}
	}
	return names, nil
}

func validateName(name string) error {
	if !namePattern.MatchString(name) {
		return services.Wrap(services.ErrValidation, "templates", "name",
			fmt.Sprintf("invalid template name %q", name), nil)
	}
	return nil
}

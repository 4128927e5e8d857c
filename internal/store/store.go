package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"moviely/internal/project"
	"moviely/internal/services"
)

// Store is a project persistence backend.
type Store interface {
	// Save persists state under id and returns the id used. An empty id is
	// derived from the project name.
	Save(ctx context.Context, state project.State, id string) (string, error)
	// Load returns the project stored under id or a not-found error.
	Load(ctx context.Context, id string) (project.State, error)
	// LoadUnchecked is Load without the media source check, for callers that
	// must see projects whose files have vanished.
	LoadUnchecked(ctx context.Context, id string) (project.State, error)
	// List returns stored ids in sorted order.
	List(ctx context.Context) ([]string, error)
	// Delete removes id and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
	// Exists reports whether id is stored.
	Exists(ctx context.Context, id string) (bool, error)
	// Close releases backend resources.
	Close() error
}

var (
	idPattern     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)
	slugSeparator = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slug derives a storage id from a project name.
func Slug(name string) string {
	slug := slugSeparator.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > 128 {
		slug = strings.TrimRight(slug[:128], "_")
	}
	if slug == "" {
		return "project"
	}
	return slug
}

// ResolveID returns id, or the slug of the project name when id is blank,
// after checking it is a safe storage key.
func ResolveID(state project.State, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = Slug(state.Name)
	}
	return id, ValidateID(id)
}

// ValidateID rejects ids that could escape a directory or key namespace.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) || strings.Contains(id, "..") {
		return services.Wrap(services.ErrValidation, "store", "id",
			fmt.Sprintf("invalid project id %q (letters, digits, '.', '_' and '-' only)", id), nil)
	}
	return nil
}

func notFound(id string) error {
	return services.Wrap(services.ErrNotFound, "store", "load", fmt.Sprintf("project %q not found", id), nil)
}

func storageError(op string, err error) error {
	return services.Wrap(services.ErrStorage, "store", op, "", err)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

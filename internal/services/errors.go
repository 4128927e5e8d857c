package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrAsset         = errors.New("asset error")
	ErrUnknownAction = errors.New("unknown action")
	ErrRender        = errors.New("render error")
	ErrStorage       = errors.New("storage error")
	ErrConfiguration = errors.New("configuration error")
	ErrExternalTool  = errors.New("external tool error")
	ErrSearch        = errors.New("search error")
)

// Render failure kinds. Each one also matches ErrRender under errors.Is.
var (
	ErrEmptyProject   = fmt.Errorf("%w: empty project", ErrRender)
	ErrMissingAsset   = fmt.Errorf("%w: missing asset", ErrRender)
	ErrBackendFailure = fmt.Errorf("%w: backend failure", ErrRender)
	ErrInvalidEffect  = fmt.Errorf("%w: invalid effect", ErrRender)
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind classifies err against the sentinel markers. Render sub-kinds are
// reported ahead of the generic render kind. Unclassified errors report
// "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyProject):
		return "empty_project"
	case errors.Is(err, ErrMissingAsset):
		return "missing_asset"
	case errors.Is(err, ErrBackendFailure):
		return "backend_failure"
	case errors.Is(err, ErrInvalidEffect):
		return "invalid_effect"
	case errors.Is(err, ErrRender):
		return "render"
	case errors.Is(err, ErrUnknownAction):
		return "unknown_action"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAsset):
		return "asset"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	case errors.Is(err, ErrSearch):
		return "search"
	default:
		return "internal"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

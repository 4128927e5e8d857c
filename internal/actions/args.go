package actions

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"moviely/internal/project"
	"moviely/internal/services"
)

// Args carries loosely typed operation arguments as they arrive from the CLI
// or a JSON request body.
type Args map[string]any

func argError(key, message string) error {
	return services.Wrap(services.ErrValidation, "actions", "argument "+key, message, nil)
}

// Has reports whether key is present and non-nil.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns a required string argument.
func (a Args) String(key string) (string, error) {
	if !a.Has(key) {
		return "", argError(key, "is required")
	}
	s, ok := a[key].(string)
	if !ok {
		return "", argError(key, fmt.Sprintf("must be a string, got %T", a[key]))
	}
	return s, nil
}

// OptionalString returns the string argument or fallback when absent.
func (a Args) OptionalString(key, fallback string) (string, error) {
	if !a.Has(key) {
		return fallback, nil
	}
	return a.String(key)
}

// Float returns a required numeric argument.
func (a Args) Float(key string) (float64, error) {
	if !a.Has(key) {
		return 0, argError(key, "is required")
	}
	f, ok := toFloat(a[key])
	if !ok {
		return 0, argError(key, fmt.Sprintf("must be a number, got %T", a[key]))
	}
	return f, nil
}

// OptionalFloat returns a pointer to the numeric argument, or nil when absent.
func (a Args) OptionalFloat(key string) (*float64, error) {
	if !a.Has(key) {
		return nil, nil
	}
	f, err := a.Float(key)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// OptionalInt returns a pointer to an integral argument, or nil when absent.
func (a Args) OptionalInt(key string) (*int, error) {
	f, err := a.OptionalFloat(key)
	if err != nil || f == nil {
		return nil, err
	}
	if math.Trunc(*f) != *f || math.IsInf(*f, 0) {
		return nil, argError(key, fmt.Sprintf("must be an integer, got %v", *f))
	}
	n := int(*f)
	return &n, nil
}

// Map returns an object argument, or an empty map when absent.
func (a Args) Map(key string) (map[string]any, error) {
	if !a.Has(key) {
		return map[string]any{}, nil
	}
	m, ok := a[key].(map[string]any)
	if !ok {
		return nil, argError(key, fmt.Sprintf("must be an object, got %T", a[key]))
	}
	return m, nil
}

// Effects decodes a list of {type, parameters} objects.
func (a Args) Effects(key string) ([]project.Effect, error) {
	if !a.Has(key) {
		return nil, nil
	}
	switch v := a[key].(type) {
	case []project.Effect:
		return v, nil
	case []any:
		out := make([]project.Effect, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, argError(key, fmt.Sprintf("entry %d must be an object", i))
			}
			effectType, _ := m["type"].(string)
			params, _ := m["parameters"].(map[string]any)
			if raw, present := m["parameters"]; present && raw != nil && params == nil {
				return nil, argError(key, fmt.Sprintf("entry %d parameters must be an object", i))
			}
			effect, err := project.NewEffect(effectType, params)
			if err != nil {
				return nil, err
			}
			out = append(out, effect)
		}
		return out, nil
	default:
		return nil, argError(key, fmt.Sprintf("must be a list of effects, got %T", a[key]))
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// ParseValue converts a command-line value into the type a JSON body would
// carry: numbers, booleans, objects and lists decode as JSON, everything
// else stays a string.
func ParseValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
		return decoded
	}
	return raw
}

// ParseAssignments turns key=value pairs into Args using ParseValue.
func ParseAssignments(pairs []string) (Args, error) {
	args := Args{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, services.Wrap(services.ErrValidation, "actions", "parse arguments",
				fmt.Sprintf("expected key=value, got %q", pair), nil)
		}
		args[key] = ParseValue(value)
	}
	return args, nil
}

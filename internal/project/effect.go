package project

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"moviely/internal/services"
)

// Effect is a named, parameterised adjustment attached to a clip. Parameters
// are not interpreted here; the render planner validates them per type.
type Effect struct {
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters"`
}

// NewEffect builds an effect with a deep, normalised copy of params. Numeric
// values of any Go numeric type become float64 so a persisted round trip
// reproduces the same value.
func NewEffect(effectType string, params map[string]any) (Effect, error) {
	effectType = strings.TrimSpace(effectType)
	if effectType == "" {
		return Effect{}, services.Wrap(services.ErrValidation, "project", "effect", "effect type is required", nil)
	}
	normalized, ok := normalizeValue(params).(map[string]any)
	if !ok || normalized == nil {
		normalized = map[string]any{}
	}
	return Effect{Type: effectType, Parameters: normalized}, nil
}

// Clone returns a deep copy of the effect.
func (e Effect) Clone() Effect {
	params, _ := normalizeValue(e.Parameters).(map[string]any)
	if params == nil {
		params = map[string]any{}
	}
	return Effect{Type: e.Type, Parameters: params}
}

// Equal reports structural equality. A nil and an empty parameter map compare
// equal.
func (e Effect) Equal(other Effect) bool {
	if e.Type != other.Type {
		return false
	}
	if len(e.Parameters) == 0 && len(other.Parameters) == 0 {
		return true
	}
	return reflect.DeepEqual(e.Parameters, other.Parameters)
}

// ParamKeys returns the parameter names in sorted order.
func (e Effect) ParamKeys() []string {
	keys := make([]string, 0, len(e.Parameters))
	for key := range e.Parameters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (e Effect) String() string {
	parts := make([]string, 0, len(e.Parameters))
	for _, key := range e.ParamKeys() {
		parts = append(parts, fmt.Sprintf("%s=%v", key, e.Parameters[key]))
	}
	if len(parts) == 0 {
		return e.Type
	}
	return e.Type + "(" + strings.Join(parts, ", ") + ")"
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case float64, string, bool:
		return v
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Map:
			if rv.Type().Key().Kind() != reflect.String {
				return fmt.Sprint(value)
			}
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				out[iter.Key().String()] = normalizeValue(iter.Value().Interface())
			}
			return out
		case reflect.Slice, reflect.Array:
			out := make([]any, rv.Len())
			for i := range out {
				out[i] = normalizeValue(rv.Index(i).Interface())
			}
			return out
		default:
			return fmt.Sprint(value)
		}
	}
}

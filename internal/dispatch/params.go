package dispatch

import (
	"fmt"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
)

// Params is the untyped parameter map of a command request, typically
// decoded from JSON.
type Params map[string]any

func (p Params) str(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// f64 accepts JSON numbers and the Go integer types a caller may hand in
// directly.
func (p Params) f64(key string) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fault.Invalid(key, fmt.Sprintf("expected number, got %T", v))
	}
}

func (p Params) integer(key string) (int, error) {
	f, err := p.f64(key)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fault.Invalid(key, "expected integer")
	}
	return int(f), nil
}

func (p Params) strSlice(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch items := v.(type) {
	case []string:
		return items, nil
	case []any:
		result := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fault.Invalid(key, "expected list of strings")
			}
			result = append(result, s)
		}
		return result, nil
	default:
		return nil, fault.Invalid(key, "expected list of strings")
	}
}

func (p Params) f64Map(key string) (map[string]float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch m := v.(type) {
	case map[string]float64:
		return m, nil
	case map[string]any:
		result := make(map[string]float64, len(m))
		for k, raw := range m {
			n, ok := raw.(float64)
			if !ok {
				return nil, fault.Invalid(key, fmt.Sprintf("value for %s must be a number", k))
			}
			result[k] = n
		}
		return result, nil
	default:
		return nil, fault.Invalid(key, "expected map of numbers")
	}
}

func (p Params) strMap(key string) (map[string]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch m := v.(type) {
	case map[string]string:
		return m, nil
	case map[string]any:
		result := make(map[string]string, len(m))
		for k, raw := range m {
			s, ok := raw.(string)
			if !ok {
				return nil, fault.Invalid(key, fmt.Sprintf("value for %s must be a string", k))
			}
			result[k] = s
		}
		return result, nil
	default:
		return nil, fault.Invalid(key, "expected map of strings")
	}
}

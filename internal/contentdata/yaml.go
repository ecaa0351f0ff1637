package contentdata

import "fmt"

// CoerceYAML converts values produced by yaml.v2 decoding, which uses
// map[interface{}]interface{} for nested objects, into JSON-compatible values.
func CoerceYAML(value any) any {
	switch v := value.(type) {
	case map[any]any:
		return coerceYAML(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = CoerceYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = CoerceYAML(item)
		}
		return out
	default:
		return v
	}
}

func coerceYAML(src map[any]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[fmt.Sprint(key)] = CoerceYAML(value)
	}
	return out
}

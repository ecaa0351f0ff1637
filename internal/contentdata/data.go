// Package contentdata models portfolio content as an open JSON-like value
// tree. Values are nil, bool, string, float64/int family numbers,
// []any and map[string]any.
package contentdata

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
)

// Data is the top-level content map keyed by field id or legacy namespace.
type Data map[string]any

// Clone returns a deep copy of d. A nil map clones to an empty Data.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for key, value := range d {
		out[key] = CloneValue(value)
	}
	return out
}

// Map returns d as a plain map.
func (d Data) Map() map[string]any {
	return map[string]any(d)
}

// CloneValue deep copies maps and slices. Scalars are returned as-is.
func CloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = CloneValue(item)
		}
		return out
	case Data:
		return map[string]any(v.Clone())
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = CloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = CloneValue(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	case map[any]any:
		return CloneValue(coerceYAML(v))
	default:
		return v
	}
}

// AsMap reports whether value is a record and returns it.
func AsMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case Data:
		return map[string]any(v), true
	default:
		return nil, false
	}
}

// AsSlice reports whether value is an array and returns it.
func AsSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	default:
		return nil, false
	}
}

// Truthy follows the JavaScript notion of truthiness that legacy content
// relies on: nil, false, 0 and "" are falsy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case float32:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case json.Number:
		return v.String() != "0" && v.String() != ""
	default:
		return true
	}
}

// Equal compares two value trees structurally. Typed slices and maps compare
// equal to their []any and map[string]any forms.
func Equal(a, b any) bool {
	if am, ok := AsMap(a); ok {
		bm, ok := AsMap(b)
		if !ok || len(am) != len(bm) {
			return false
		}
		for key, item := range am {
			other, exists := bm[key]
			if !exists || !Equal(item, other) {
				return false
			}
		}
		return true
	}
	if as, ok := AsSlice(a); ok {
		bs, ok := AsSlice(b)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	if _, ok := AsMap(b); ok {
		return false
	}
	if _, ok := AsSlice(b); ok {
		return false
	}
	if a != nil && !reflect.TypeOf(a).Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

// FromJSON decodes a JSON object into Data.
func FromJSON(raw []byte) (Data, error) {
	if len(raw) == 0 {
		return Data{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("contentdata: decode: %w", err)
	}
	if out == nil {
		return Data{}, nil
	}
	return Data(out), nil
}

// FromMap copies src into Data, converting YAML style maps on the way.
func FromMap(src map[string]any) Data {
	out := make(Data, len(src))
	for key, value := range src {
		out[key] = CloneValue(value)
	}
	return out
}

// Merge overlays src keys onto dst in place.
func Merge(dst map[string]any, src map[string]any) {
	maps.Copy(dst, src)
}

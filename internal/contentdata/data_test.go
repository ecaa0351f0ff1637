package contentdata

import "testing"

func TestCloneIsDeep(t *testing.T) {
	original := Data{
		"fullName": "Ada",
		"projects": []any{
			map[string]any{"title": "Engine"},
		},
		"basics": map[string]any{"title": "Analyst"},
	}

	clone := original.Clone()
	clone["fullName"] = "Grace"
	clone["projects"].([]any)[0].(map[string]any)["title"] = "Mutated"
	clone["basics"].(map[string]any)["title"] = "Mutated"

	if original["fullName"] != "Ada" {
		t.Fatalf("top-level value leaked: %v", original["fullName"])
	}
	if got := original["projects"].([]any)[0].(map[string]any)["title"]; got != "Engine" {
		t.Fatalf("nested array item leaked: %v", got)
	}
	if got := original["basics"].(map[string]any)["title"]; got != "Analyst" {
		t.Fatalf("nested map leaked: %v", got)
	}
}

func TestCloneNil(t *testing.T) {
	var d Data
	clone := d.Clone()
	if clone == nil || len(clone) != 0 {
		t.Fatalf("expected empty clone, got %#v", clone)
	}
}

func TestCoerceYAMLConvertsNestedMaps(t *testing.T) {
	in := map[string]any{
		"projects": []any{
			map[any]any{"title": "A", 1: "one"},
		},
	}
	out := CoerceYAML(in).(map[string]any)
	item, ok := AsMap(out["projects"].([]any)[0])
	if !ok {
		t.Fatalf("expected map item, got %T", out["projects"].([]any)[0])
	}
	if item["title"] != "A" || item["1"] != "one" {
		t.Fatalf("unexpected coerced item %#v", item)
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		value any
		want  bool
	}{
		{nil, false},
		{"", false},
		{"x", true},
		{0.0, false},
		{1, true},
		{false, false},
		{[]any{}, true},
		{map[string]any{}, true},
	}
	for _, tc := range cases {
		if got := Truthy(tc.value); got != tc.want {
			t.Fatalf("Truthy(%#v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestEqual(t *testing.T) {
	a := map[string]any{"x": []any{"a", map[string]any{"b": 1.0}}}
	b := map[string]any{"x": []any{"a", map[string]any{"b": 1.0}}}
	if !Equal(a, b) {
		t.Fatalf("expected structurally equal values")
	}
	b["x"].([]any)[1].(map[string]any)["b"] = 2.0
	if Equal(a, b) {
		t.Fatalf("expected values to differ")
	}
	if Equal(map[string]any{}, []any{}) {
		t.Fatalf("map and slice must not be equal")
	}
}

func TestEqualTypedCollections(t *testing.T) {
	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "string slices", a: []string{"go", "sql"}, b: []string{"go", "sql"}, want: true},
		{name: "string slice and any slice", a: []string{"go"}, b: []any{"go"}, want: true},
		{name: "string slices differ", a: []string{"go"}, b: []string{"rust"}, want: false},
		{name: "record slices", a: []map[string]any{{"title": "A"}}, b: []map[string]any{{"title": "A"}}, want: true},
		{name: "record slice and any slice", a: []any{map[string]any{"title": "A"}}, b: []map[string]any{{"title": "A"}}, want: true},
		{name: "data and map", a: Data{"x": 1.0}, b: map[string]any{"x": 1.0}, want: true},
		{name: "uncomparable scalars", a: []int{1}, b: []int{1}, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Fatalf("Equal(%#v, %#v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := Equal(tc.b, tc.a); got != tc.want {
				t.Fatalf("Equal(%#v, %#v) = %v, want %v", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestFromJSON(t *testing.T) {
	data, err := FromJSON([]byte(`{"fullName":"Ada","projects":[{"title":"X"}]}`))
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if data["fullName"] != "Ada" {
		t.Fatalf("unexpected data %#v", data)
	}
	if _, err := FromJSON([]byte(`[`)); err == nil {
		t.Fatalf("expected decode error")
	}
	empty, err := FromJSON(nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("FromJSON(nil) = %#v, %v", empty, err)
	}
}

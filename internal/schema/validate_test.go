package schema

import (
	"strings"
	"testing"
)

func TestWidgetConfig_Valid(t *testing.T) {
	v, err := WidgetConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := v.Validate([]byte(`{
		"webApiUrl": "https://api.example.com/items",
		"jsonPath": "$.items[*].name",
		"displayAs": "Dropdown",
		"sortOrder": "Asc",
		"isIntegratedAuth": true,
		"outcome": "b"
	}`))
	if !result.Valid {
		t.Errorf("expected valid, got errors: %v", result.Errors)
	}
}

func TestWidgetConfig_Invalid(t *testing.T) {
	v, err := WidgetConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown display variant", `{"displayAs": "Table"}`, "/displayAs"},
		{"unknown sort order", `{"sortOrder": "Random"}`, "/sortOrder"},
		{"wrong type", `{"isIntegratedAuth": "yes"}`, "/isIntegratedAuth"},
		{"unknown property", `{"jsonpath": "$."}`, "jsonpath"},
		{"not json", `{`, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate([]byte(tt.doc))
			if result.Valid {
				t.Fatal("expected invalid")
			}
			joined := strings.Join(result.Errors, "\n")
			if !strings.Contains(joined, tt.want) {
				t.Errorf("expected errors to mention %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestHeaders(t *testing.T) {
	v, err := Headers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r := v.Validate([]byte(`{ "Accept" : "application/json" }`)); !r.Valid {
		t.Errorf("expected valid, got errors: %v", r.Errors)
	}
	if r := v.Validate([]byte(`{}`)); !r.Valid {
		t.Errorf("expected empty object to be valid, got errors: %v", r.Errors)
	}

	for _, doc := range []string{`{"X-Count": 1}`, `["Accept"]`, `"Accept"`, `{Accept: json}`} {
		if r := v.Validate([]byte(doc)); r.Valid {
			t.Errorf("expected %s to be invalid", doc)
		}
	}
}

func TestForType_NonStruct(t *testing.T) {
	v, err := ForType[map[string]string]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r := v.Validate([]byte(`{"Accept": "text/plain"}`)); !r.Valid {
		t.Errorf("expected valid, got errors: %v", r.Errors)
	}
	if r := v.Validate([]byte(`{"Accept": 1}`)); r.Valid {
		t.Error("expected non-string value to be invalid")
	}
}

func TestValidator_Schema(t *testing.T) {
	v, err := WidgetConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, err := v.Schema()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	props, ok := m["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties, got %v", m)
	}
	for _, key := range []string{"jsonResponse", "webApiUrl", "jsonPath", "displayAs", "headers"} {
		if _, ok := props[key]; !ok {
			t.Errorf("missing property %q", key)
		}
	}
}

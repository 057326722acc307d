package jsonpath

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/jsonidx/internal/domain"
)

func TestValidate_Valid(t *testing.T) {
	paths := []string{
		"$",
		"$.name",
		"$.days.*",
		"$.times.*.military",
		"$.times[2].military",
		"$.responsible-parties.hosts.[0].email",
		"$.responsible-parties.hosts[0].phone",
		"$..email",
		"$['name']",
		`$["odd key"]`,
		"$.hosts[?(@.name=='Duncan Mills')].email",
		"$.a[*]",
		`$['it\'s']`,
		"$.a[?(@.b[0]==(1))]",
	}
	for _, p := range paths {
		if err := Validate(p); err != nil {
			t.Errorf("Validate(%q) unexpected error: %v", p, err)
		}
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		path   string
		reason string
	}{
		{"", "empty path"},
		{"name", "must start with $"},
		{"$name", "root must be followed by . or ["},
		{"$.times[2.military", "unbalanced ["},
		{"$.times]2[", "unbalanced ]"},
		{"$.a[]", "empty brackets"},
		{"$['name]", "unclosed quote"},
		{"$.'name'", "quoted name outside brackets"},
		{"$.a[?(@.b==1]", "mismatched ]"},
		{"$.a[?@.b==1)]", "mismatched )"},
		{"$[(])", "mismatched ]"},
		{"$.a[?(@.b[0)==1]]", "mismatched )"},
		{"$.a[?(@.b==1)", "unbalanced ["},
		{"$.a...b", "empty segment"},
		{"$.a.", "trailing dot"},
		{"$.a b", "whitespace outside brackets"},
		{"$.(a)", "expression outside brackets"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			err := Validate(tc.path)
			var pathErr *domain.InvalidJSONPathError
			if !errors.As(err, &pathErr) {
				t.Fatalf("Validate(%q) = %v, want InvalidJSONPathError", tc.path, err)
			}
			if pathErr.Reason != tc.reason {
				t.Errorf("reason = %q, want %q", pathErr.Reason, tc.reason)
			}
		})
	}
}

func TestIsPath(t *testing.T) {
	if !IsPath("$.name") {
		t.Error("expected $.name to be a path")
	}
	if IsPath("event_name") {
		t.Error("alias must not be a path")
	}
}

package dialect

import (
	"errors"
	"strings"
	"testing"
)

func TestEscape(t *testing.T) {
	valid := []string{"widget", "test_entity", "Col_1", "_", "A", "0abc", "blob_bytes_field"}
	for _, id := range valid {
		got, err := Escape(id, "`", "`")
		if err != nil {
			t.Errorf("Escape(%q) failed: %v", id, err)
			continue
		}
		if got != "`"+id+"`" {
			t.Errorf("Escape(%q) = %q", id, got)
		}
	}

	invalid := []string{"", "tbl;drop", "a b", "a-b", "a.b", "`a`", `"a"`, "a]", "naïve", "x'--", "tab\tle"}
	for _, id := range invalid {
		_, err := Escape(id, "`", "`")
		if !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("Escape(%q) expected ErrInvalidIdentifier, got %v", id, err)
		}
	}
}

func TestEscapeEveryASCIICharacter(t *testing.T) {
	for c := 0; c < 128; c++ {
		id := "col" + string(rune(c))
		allowed := c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		got, err := Escape(id, `"`, `"`)
		if allowed {
			if err != nil || !strings.Contains(got, id) {
				t.Errorf("char %q: expected success, got %q, %v", rune(c), got, err)
			}
		} else if err == nil {
			t.Errorf("char %q: expected failure, got %q", rune(c), got)
		}
	}
}

func TestRegisteredDialects(t *testing.T) {
	tests := []struct {
		name        string
		quoted      string
		placeholder string
	}{
		{"mysql", "`widget`", "?"},
		{"sqlite3", "`widget`", "?"},
		{"postgres", `"widget"`, "$3"},
		{"opengauss", `"widget"`, "$3"},
		{"sqlserver", "[widget]", "@p3"},
		{"mongodb", "widget", "?"},
		{"redis", "widget", "?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Get(tt.name)
			if !ok {
				t.Fatalf("%s dialect not registered", tt.name)
			}
			if d.Name() != tt.name {
				t.Errorf("Expected name %s, got %s", tt.name, d.Name())
			}
			q, err := d.Quote("widget")
			if err != nil {
				t.Fatalf("Quote failed: %v", err)
			}
			if q != tt.quoted {
				t.Errorf("Expected %s, got %s", tt.quoted, q)
			}
			if p := d.Placeholder(3); p != tt.placeholder {
				t.Errorf("Expected placeholder %s, got %s", tt.placeholder, p)
			}
			if _, err := d.Quote("tbl;drop"); !errors.Is(err, ErrInvalidIdentifier) {
				t.Errorf("Expected ErrInvalidIdentifier, got %v", err)
			}
		})
	}

	if _, ok := Get("oracle"); ok {
		t.Error("oracle dialect should not be registered")
	}
}

package binding

import (
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestExpand(t *testing.T) {
	data := decode(t, `{"app":{"name":"Habits","rating":4.8,"users":120000},"features":["Streaks","Widgets"]}`)
	cases := map[string]string{
		"Meet ${app.name}":            "Meet Habits",
		"Rated ${ app.rating } stars": "Rated 4.8 stars",
		"${app.users}+ users":         "120000+ users",
		"Now with ${features[1]}":     "Now with Widgets",
		"No placeholders":             "No placeholders",
	}
	for in, want := range cases {
		got, err := Expand(in, data)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Errorf("Expand(%q)=%q want %q", in, got, want)
		}
	}
}

func TestExpandMissing(t *testing.T) {
	_, err := Expand("${app.name} ${app.price} ${x[3]}", decode(t, `{"app":{"name":"A"},"x":[1]}`))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "app.price") || !strings.Contains(err.Error(), "x[3]") {
		t.Fatalf("error should list missing paths: %v", err)
	}
	if _, err := Expand("${a}", nil); err == nil {
		t.Fatalf("nil data with placeholders should fail")
	}
}

func TestHasPlaceholders(t *testing.T) {
	if !HasPlaceholders("a ${b}") || HasPlaceholders("a $b") {
		t.Fatalf("HasPlaceholders mismatch")
	}
}

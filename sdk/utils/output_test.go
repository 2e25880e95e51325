// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"strings"
	"testing"
)

func TestTraceID(t *testing.T) {
	id := TraceID()
	if len(id) != 32 {
		t.Fatalf("expected 32 hex chars, got %d (%q)", len(id), id)
	}
	if strings.Contains(id, "-") {
		t.Fatalf("expected no dashes in %q", id)
	}
	if id == TraceID() {
		t.Fatal("expected distinct ids on subsequent calls")
	}
}

func TestHasHTTPScheme(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"http://proxy:3128", true},
		{"https://proxy:3128", true},
		{"HTTP://proxy:3128", true},
		{"proxy:3128", false},
		{"ftp://host", false},
		{"", false},
	}
	for _, c := range cases {
		if got := HasHTTPScheme(c.in); got != c.want {
			t.Errorf("HasHTTPScheme(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTranslateFormat(t *testing.T) {
	cases := map[string]string{
		"json":  "json",
		"JSON":  "json",
		"yaml":  "yaml",
		"yml":   "yaml",
		"":      "short",
		"table": "short",
	}
	for in, want := range cases {
		if got := TranslateFormat(in); got != want {
			t.Errorf("TranslateFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRender(t *testing.T) {
	v := struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
	}{Name: "a.txt", Size: 42}

	out, err := Render(v, "json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"name": "a.txt"`) {
		t.Errorf("json output: %q", out)
	}

	out, err = Render(v, "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "name: a.txt") || !strings.Contains(out, "size: 42") {
		t.Errorf("yaml output: %q", out)
	}

	out, err = Render(v, "anything-else")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "a.txt") {
		t.Errorf("short output: %q", out)
	}
}

func TestPrettyJSON(t *testing.T) {
	got := PrettyJSON([]byte(`{"a":1}`))
	want := "{\n  \"a\": 1\n}"
	if got != want {
		t.Fatalf("PrettyJSON = %q, want %q", got, want)
	}

	// malformed input passes through untouched
	if got := PrettyJSON([]byte("not-json")); got != "not-json" {
		t.Fatalf("expected fallback on malformed input, got %q", got)
	}
}

func TestHuman(t *testing.T) {
	cases := map[int64]string{
		512:             "512 B",
		2048:            "2.00 KB",
		5 * 1024 * 1024: "5.00 MB",
	}
	for in, want := range cases {
		if got := human(in); got != want {
			t.Errorf("human(%d) = %q, want %q", in, got, want)
		}
	}
}

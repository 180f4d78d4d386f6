package textutil_test

import (
	"testing"

	"warble/internal/textutil"
)

func TestSanitizeTitle(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"punctuation stripped", "Song! (Official Video) [HD]", "Song Official Video HD"},
		{"unicode letters kept", "Café del Mar", "Café del Mar"},
		{"whitespace collapsed", "  a   b\tc  ", "a b c"},
		{"underscore kept", "mix_01", "mix_01"},
		{"empty", "", ""},
		{"only symbols", "!!!***", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.SanitizeTitle(tc.input); got != tc.want {
				t.Fatalf("SanitizeTitle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestDisplayTitleFallback(t *testing.T) {
	if got := textutil.DisplayTitle("***"); got != "Untitled" {
		t.Fatalf("expected fallback title, got %q", got)
	}
	if got := textutil.DisplayTitle("dark side of the moon"); got != "Dark Side Of The Moon" {
		t.Fatalf("unexpected cased title: %q", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := textutil.SanitizeFileName(`a/b\c:d*e?f"g<h>i|j`); got != "a-b-c-d-efghij" {
		t.Fatalf("unexpected sanitized name: %q", got)
	}
	if got := textutil.SanitizeFileName("  "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

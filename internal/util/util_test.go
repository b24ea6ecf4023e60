// internal/util/util_test.go
package util

import (
	"strings"
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "no truncation", in: "hello", max: 10, want: "hello"},
		{name: "ascii truncation", in: "helloworld", max: 5, want: "hello…"},
		{name: "multibyte truncation", in: "नमस्कार दुनिया", max: 4, want: "नमस्…"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateRunes(tt.in, tt.max); got != tt.want {
				t.Fatalf("TruncateRunes(%q,%d)=%q want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestWrapToWidth(t *testing.T) {
	t.Parallel()

	got := WrapToWidth("the quick brown fox jumps", 10)
	for _, line := range strings.Split(got, "\n") {
		if len([]rune(line)) > 10 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
	if !strings.Contains(got, "\n") {
		t.Fatalf("expected wrapping to insert line breaks: %q", got)
	}

	if got := WrapToWidth("short", 0); got != "short" {
		t.Fatalf("zero width should be a no-op, got %q", got)
	}
	if got := WrapToWidth("a\n\nb", 10); got != "a\n\nb" {
		t.Fatalf("blank lines should survive, got %q", got)
	}
}

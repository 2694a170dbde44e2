package chat

import (
	"strings"
	"testing"
)

func TestTitleFromMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "hello", "hello"},
		{"exactly max", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"long", strings.Repeat("a", 65), strings.Repeat("a", 50) + "..."},
		{"trailing space trimmed", strings.Repeat("b", 49) + " tail", strings.Repeat("b", 49) + "..."},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleFromMessage(tt.in); got != tt.want {
				t.Errorf("TitleFromMessage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitleFromMessage_TruncatedLength(t *testing.T) {
	got := TitleFromMessage(strings.Repeat("x", 65))
	if len(got) != 53 {
		t.Errorf("len = %d, want 53 (50 chars + ellipsis)", len(got))
	}
}

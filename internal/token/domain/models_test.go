package domain

import (
	"strings"
	"testing"
)

func TestValidValue(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"empty", "", false},
		{"fifteen digits", "123456789012345", false},
		{"sixteen digits", "1234567890123456", true},
		{"sixteen digits hyphenated", "1234-5678-9012-3456", true},
		{"forty six digits", strings.Repeat("7", 46), true},
		{"forty seven digits", strings.Repeat("7", 47), false},
		{"letters", "1234-5678-9012-345A", false},
		{"spaces", "1234 5678 9012 3456", false},
		{"only hyphens", "----", false},
		{"leading hyphen", "-1234567890123456", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidValue(tc.value); got != tc.want {
				t.Fatalf("ValidValue(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

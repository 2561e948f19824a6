package scanner

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "fits", in: "Björk", max: 5, want: "Björk"},
		{name: "ascii cut", in: "The Dark Side of the Moon", max: 10, want: "The Dar..."},
		{name: "multi-byte cut", in: "ÁÁÁÁÁÁÁÁÁÁÁÁÁÁÁÁ", max: 10, want: "ÁÁÁÁÁÁÁ..."},
		{name: "accent at boundary", in: "Sigur Rós - Ágætis byrjun", max: 11, want: "Sigur Ró..."},
		{name: "tiny width", in: "Ágætis", max: 2, want: "Ág"},
		{name: "zero width", in: "Ágætis", max: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Truncate(%q, %d) produced invalid UTF-8 %q", tt.in, tt.max, got)
			}
			if n := utf8.RuneCountInString(got); n > tt.max {
				t.Errorf("Truncate(%q, %d) has %d runes", tt.in, tt.max, n)
			}
		})
	}
}

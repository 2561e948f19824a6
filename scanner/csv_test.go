package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseWantsSkipsRows(t *testing.T) {
	input := strings.Join([]string{
		`UPC,Artist,Album,Format,Label,Wants`,
		`8712345678901,Artist One,Album One,LP,Label,4`,
		`123,Too,Short`,
		``,
		`12345678901234,Too,Long,LP,Label,1`,
		`AB12,Has,Letters,LP,Label,1`,
		`"0724-3 8",Artist Two,Album Two,CD,Label,2,extra`,
	}, "\n")

	wants, err := ParseWants(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(wants) != 2 {
		t.Fatalf("want 2 rows, got %d: %+v", len(wants), wants)
	}

	first := Want{Barcode: "8712345678901", Artist: "Artist One", Album: "Album One", Wants: "4"}
	if wants[0] != first {
		t.Errorf("row 0 = %+v, want %+v", wants[0], first)
	}
	second := Want{Barcode: "072438", Artist: "Artist Two", Album: "Album Two", Wants: "2"}
	if wants[1] != second {
		t.Errorf("row 1 = %+v, want %+v", wants[1], second)
	}
}

func TestParseWantsQuotingAndEscapes(t *testing.T) {
	input := "111,\"Smith, John\",\"Say \"\"Hi\"\"\",LP,L,1\r\n" +
		"222,\"Back\\\"slash\",\"Two\nLines\",LP,L,3\r\n" +
		"333,Lone\\x,C:\\\\dir,LP,L,5\r\n"

	wants, err := ParseWants(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(wants) != 3 {
		t.Fatalf("want 3 rows, got %d", len(wants))
	}

	tests := []struct {
		got, want string
	}{
		{wants[0].Artist, "Smith, John"},
		{wants[0].Album, `Say "Hi"`},
		{wants[0].Wants, "1"},
		{wants[1].Artist, `Back"slash`},
		{wants[1].Album, "Two\nLines"},
		{wants[1].Wants, "3"},
		{wants[2].Artist, "Lonex"},
		{wants[2].Album, `C:\dir`},
		{wants[2].Wants, "5"},
	}
	for i, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("case %d: got %q, want %q", i, tt.got, tt.want)
		}
	}
}

func TestParseWantsByteOrderMarkAndNoTrailingNewline(t *testing.T) {
	wants, err := ParseWants(strings.NewReader("\uFEFF999,A,B,C,D,7"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(wants) != 1 || wants[0].Barcode != "999" || wants[0].Wants != "7" {
		t.Fatalf("unexpected rows: %+v", wants)
	}
}

func TestParseWantsUnterminatedQuote(t *testing.T) {
	_, err := ParseWants(strings.NewReader("111,\"open,B,C,D,1\n"))
	if !errors.Is(err, ErrUnterminatedQuote) {
		t.Fatalf("expected ErrUnterminatedQuote, got %v", err)
	}
}

func TestLoadWantsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wants.csv")
	if err := os.WriteFile(path, []byte("8712345678901,A,B,LP,L,2\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	wants, err := LoadWantsFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(wants) != 1 {
		t.Fatalf("want 1 row, got %d", len(wants))
	}

	if _, err := LoadWantsFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

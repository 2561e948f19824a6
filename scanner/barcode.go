package scanner

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxCSVBarcodeDigits caps barcodes taken from an offline wants file (EAN-13).
const maxCSVBarcodeDigits = 13

// Normalize strips ASCII whitespace and hyphens from scanned or typed input
// and rejects anything that is not then a run of ASCII digits. Other Unicode
// spaces, such as NBSP, are rejected like any other character.
func Normalize(raw string) (string, error) {
	var sb strings.Builder
	for _, r := range raw {
		if isASCIISpace(r) || r == '-' {
			continue
		}
		if r < '0' || r > '9' {
			return "", ErrInvalidBarcode
		}
		sb.WriteRune(r)
	}
	if sb.Len() == 0 {
		return "", ErrInvalidBarcode
	}
	return sb.String(), nil
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// OfflineKey drops the first and last digit so a scan still hits when the
// wants file was exported without (or with a different) check digit.
// Shorter inputs are returned unchanged.
func OfflineKey(digits string) string {
	if len(digits) < 3 {
		return digits
	}
	return digits[1 : len(digits)-1]
}

// SanitizeCSVBarcode keeps the letters and digits of a wants file's first
// column. ok is false when a letter survives or the code is too long.
func SanitizeCSVBarcode(field string) (code string, ok bool) {
	var sb strings.Builder
	hasLetter := false
	for _, r := range field {
		switch {
		case unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsLetter(r):
			hasLetter = true
			sb.WriteRune(r)
		}
	}
	code = sb.String()
	if hasLetter || utf8.RuneCountInString(code) > maxCSVBarcodeDigits {
		return code, false
	}
	return code, true
}

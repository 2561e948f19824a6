package scanner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Column layout of a wants export.
const (
	colBarcode = 0
	colArtist  = 1
	colAlbum   = 2
	colWants   = 5
	minColumns = 6
)

// ParseWants reads a wants export and returns the usable rows in file order.
// Rows that are too short or whose barcode column is not a plausible
// barcode are skipped rather than reported.
func ParseWants(r io.Reader) ([]Want, error) {
	rr := newRecordReader(r)
	var wants []Want
	for {
		rec, err := rr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < minColumns {
			continue
		}
		code, ok := SanitizeCSVBarcode(rec[colBarcode])
		if !ok {
			continue
		}
		wants = append(wants, Want{
			Barcode: code,
			Artist:  rec[colArtist],
			Album:   rec[colAlbum],
			Wants:   rec[colWants],
		})
	}
	return wants, nil
}

// LoadWantsFile parses the wants export at path.
func LoadWantsFile(path string) ([]Want, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	wants, err := ParseWants(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return wants, nil
}

// recordReader splits comma separated records. Besides RFC 4180 quoting it
// honours backslash escapes, which encoding/csv rejects.
type recordReader struct {
	r    *bufio.Reader
	line int
}

func newRecordReader(r io.Reader) *recordReader {
	br := bufio.NewReader(r)
	if c, _, err := br.ReadRune(); err == nil && c != '\uFEFF' {
		br.UnreadRune()
	}
	return &recordReader{r: br, line: 1}
}

// next returns the following record, or io.EOF once the input is exhausted.
func (rr *recordReader) next() ([]string, error) {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
		started  bool
		start    = rr.line
	)
	for {
		c, _, err := rr.r.ReadRune()
		if err == io.EOF {
			if inQuotes {
				return nil, fmt.Errorf("record starting on line %d: %w", start, ErrUnterminatedQuote)
			}
			if !started {
				return nil, io.EOF
			}
			return append(fields, strings.TrimSuffix(field.String(), "\r")), nil
		}
		if err != nil {
			return nil, err
		}
		started = true

		switch {
		case c == '\\':
			n, _, err := rr.r.ReadRune()
			if err != nil {
				continue
			}
			if n == '"' || n == '\\' {
				field.WriteRune(n)
				continue
			}
			// A backslash that escapes nothing is dropped.
			rr.r.UnreadRune()
		case c == '"':
			if !inQuotes {
				inQuotes = true
				continue
			}
			n, _, err := rr.r.ReadRune()
			if err == nil {
				if n == '"' {
					field.WriteRune('"')
					continue
				}
				rr.r.UnreadRune()
			}
			inQuotes = false
		case c == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		case c == '\n':
			rr.line++
			if !inQuotes {
				return append(fields, strings.TrimSuffix(field.String(), "\r")), nil
			}
			field.WriteRune(c)
		default:
			field.WriteRune(c)
		}
	}
}

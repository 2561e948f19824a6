package scanner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// wantsEntry is the first element of the /API/wants response array.
type wantsEntry struct {
	Items     json.Number `json:"items"`
	Artist    *string     `json:"artist"`
	Title     *string     `json:"title"`
	WantCount json.Number `json:"want_count"`
}

// ParseLookup decodes a /API/wants response body for the queried barcode.
// An item count of zero is a clean miss, not an error.
func ParseLookup(digits string, body []byte) (LookupResult, error) {
	var entries []wantsEntry
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&entries); err != nil {
		return LookupResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(entries) == 0 {
		return LookupResult{}, fmt.Errorf("%w: empty array", ErrMalformedResponse)
	}
	e := entries[0]

	items, err := e.Items.Int64()
	if err != nil {
		return LookupResult{}, fmt.Errorf("%w: items %q", ErrMalformedResponse, e.Items)
	}
	if items == 0 {
		return LookupResult{Barcode: digits}, nil
	}

	if e.Artist == nil || e.Title == nil {
		return LookupResult{}, fmt.Errorf("%w: missing artist or title", ErrMalformedResponse)
	}
	count, err := e.WantCount.Int64()
	if err != nil {
		return LookupResult{}, fmt.Errorf("%w: want_count %q", ErrMalformedResponse, e.WantCount)
	}

	return LookupResult{
		Barcode: digits,
		Want: &Want{
			Barcode: digits,
			Artist:  *e.Artist,
			Album:   *e.Title,
			Wants:   strconv.FormatInt(count, 10),
		},
	}, nil
}

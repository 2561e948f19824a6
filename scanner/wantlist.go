package scanner

import (
	"context"
	"strings"
)

// WantList is an in-memory wants export. Matching is a linear scan in file
// order; the first barcode containing the lookup key wins.
type WantList struct {
	wants []Want
}

// NewWantList copies wants into a list.
func NewWantList(wants []Want) *WantList {
	return &WantList{wants: append([]Want(nil), wants...)}
}

// Len returns the number of loaded wants.
func (l *WantList) Len() int { return len(l.wants) }

// Find applies OfflineKey to digits and scans the list.
func (l *WantList) Find(_ context.Context, digits string) (LookupResult, error) {
	key := OfflineKey(digits)
	for i := range l.wants {
		if strings.Contains(l.wants[i].Barcode, key) {
			w := l.wants[i]
			return LookupResult{Barcode: digits, Want: &w}, nil
		}
	}
	return LookupResult{Barcode: digits}, nil
}

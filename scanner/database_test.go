package scanner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func tempDB(t *testing.T) *Database {
	t.Helper()
	dir := t.TempDir()
	db, err := NewDatabase(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var sampleWants = []Want{
	{Barcode: "8712345678901", Artist: "First", Album: "One", Wants: "3"},
	{Barcode: "5099912345678", Artist: "Second", Album: "Two", Wants: "1"},
	{Barcode: "0712345678900", Artist: "Third", Album: "Three", Wants: "7"},
}

func TestReplaceWantsAndFind(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	if err := db.ReplaceWants(sampleWants); err != nil {
		t.Fatalf("replace: %v", err)
	}
	n, err := db.CountWants()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("want 3 wants, got %d", n)
	}

	res, err := db.Find(ctx, "5099912345678")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !res.Matched() || res.Want.Artist != "Second" {
		t.Fatalf("expected Second, got %+v", res.Want)
	}

	// The check digits are ignored: a different first and last digit still hits.
	res, err = db.Find(ctx, "9509991234567")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !res.Matched() || res.Want.Artist != "Second" {
		t.Fatalf("expected Second via offline key, got %+v", res.Want)
	}

	res, err = db.Find(ctx, "4000000000004")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if res.Matched() {
		t.Fatalf("expected no match, got %+v", res.Want)
	}
}

func TestFindFirstMatchWins(t *testing.T) {
	db := tempDB(t)
	if err := db.ReplaceWants(sampleWants); err != nil {
		t.Fatalf("replace: %v", err)
	}
	// Key "1234567890" is in both the first and third barcodes.
	res, err := db.Find(context.Background(), "812345678909")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !res.Matched() || res.Want.Artist != "First" {
		t.Fatalf("expected first row, got %+v", res.Want)
	}
}

func TestReplaceWantsIsWholesale(t *testing.T) {
	db := tempDB(t)
	if err := db.ReplaceWants(sampleWants); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := db.ReplaceWants(sampleWants[:1]); err != nil {
		t.Fatalf("replace again: %v", err)
	}
	n, _ := db.CountWants()
	if n != 1 {
		t.Fatalf("want 1 want after replace, got %d", n)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "boomerang.db")
	db, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.ReplaceWants(sampleWants); err != nil {
		t.Fatalf("replace: %v", err)
	}
	db.Close()

	db, err = NewDatabase(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	n, _ := db.CountWants()
	if n != len(sampleWants) {
		t.Fatalf("want %d wants after reopen, got %d", len(sampleWants), n)
	}
}

func TestRecordAndListScans(t *testing.T) {
	db := tempDB(t)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	outcomes := []Outcome{
		{Kind: OutcomeMatched, Raw: "871 2345678901", Barcode: "8712345678901", Want: &sampleWants[0]},
		{Kind: OutcomeNoMatch, Raw: "123", Barcode: "123"},
		{Kind: OutcomeRejected, Raw: "abc", Err: ErrInvalidBarcode},
		{Kind: OutcomeFailed, Raw: "456", Barcode: "456", Err: errors.New("boom")},
	}
	for i, o := range outcomes {
		if _, err := db.RecordScan("run-1", o, at.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	scans, err := db.RecentScans(3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(scans) != 3 {
		t.Fatalf("want 3 scans, got %d", len(scans))
	}
	if scans[0].Outcome != OutcomeFailed || scans[2].Outcome != OutcomeNoMatch {
		t.Fatalf("scans not newest first: %v, %v", scans[0].Outcome, scans[2].Outcome)
	}

	all, _ := db.RecentScans(10)
	oldest := all[len(all)-1]
	if oldest.Artist != "First" || oldest.Album != "One" || oldest.Wants != "3" || oldest.RunID != "run-1" {
		t.Fatalf("matched scan not stored: %+v", oldest)
	}
	if !oldest.ScannedAt.Equal(at) {
		t.Fatalf("ScannedAt = %v, want %v", oldest.ScannedAt, at)
	}
}

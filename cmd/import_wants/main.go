package main

import (
	"fmt"
	"os"
	"strings"

	"boomerang-scanner/scanner"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: import_wants <wants.csv>")
		os.Exit(2)
	}
	csvPath := os.Args[1]

	_ = godotenv.Load()
	dbPath := os.Getenv("BOOMERANG_DB")
	if dbPath == "" {
		dbPath = "boomerang.db"
	}

	fmt.Printf("Loading barcodes from %s...\n", csvPath)
	wants, err := scanner.LoadWantsFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading file: %v\n", err)
		os.Exit(1)
	}

	db, err := scanner.NewDatabase(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.ReplaceWants(wants); err != nil {
		fmt.Fprintf(os.Stderr, "Error importing wants: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Loaded %d barcodes into %s\n", len(wants), dbPath)

	if len(wants) > 0 {
		shown := wants
		if len(shown) > 10 {
			shown = shown[:10]
		}
		fmt.Printf("\n%-14s %-40s %-30s %s\n", "Barcode", "Album", "Artist", "Wants")
		fmt.Println(strings.Repeat("-", 95))
		for _, w := range shown {
			fmt.Printf("%-14s %-40s %-30s %s\n", w.Barcode, scanner.Truncate(w.Album, 40), scanner.Truncate(w.Artist, 30), w.Wants)
		}
		if len(wants) > len(shown) {
			fmt.Printf("... and %d more\n", len(wants)-len(shown))
		}
	}
}

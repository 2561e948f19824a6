package main

import (
	"fmt"
	"io"
	"strings"

	"boomerang-scanner/scanner"

	"github.com/charmbracelet/lipgloss"
)

var (
	matchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FABD08"))
	missStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// printOutcome renders an outcome the way the scanner screen showed it:
// album, artist and want count on a match, a one-line cue otherwise.
func printOutcome(w io.Writer, o scanner.Outcome, bell bool) {
	switch o.Kind {
	case scanner.OutcomeMatched:
		fmt.Fprintln(w, matchStyle.Render("MATCH "+o.Barcode))
		fmt.Fprintf(w, "  %s\n  by %s\n  Wants: %s\n", o.Want.Album, o.Want.Artist, o.Want.Wants)
	case scanner.OutcomeNoMatch:
		fmt.Fprintln(w, missStyle.Render("No match for "+o.Barcode))
	case scanner.OutcomeRejected:
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("Invalid barcode %q", o.Raw)))
	default:
		fmt.Fprintln(w, errorStyle.Render("Lookup failed: ")+dimStyle.Render(fmt.Sprint(o.Err)))
	}

	if bell {
		switch o.Tone() {
		case scanner.ToneSuccess:
			fmt.Fprint(w, "\a")
		case scanner.ToneError:
			fmt.Fprint(w, "\a\a")
		}
	}
}

func printHistory(w io.Writer, scans []*scanner.ScanRecord) {
	if len(scans) == 0 {
		fmt.Fprintln(w, "No scans recorded.")
		return
	}

	fmt.Fprintf(w, "%-5s %-19s %-14s %-9s %-30s %-25s %s\n", "ID", "Scanned", "Barcode", "Outcome", "Album", "Artist", "Wants")
	fmt.Fprintln(w, strings.Repeat("-", 115))
	for _, s := range scans {
		barcode := s.Barcode
		if barcode == "" {
			barcode = s.Raw
		}
		fmt.Fprintf(w, "%-5d %-19s %-14s %-9s %-30s %-25s %s\n",
			s.ID,
			s.ScannedAt.Local().Format("2006-01-02 15:04:05"),
			scanner.Truncate(barcode, 14),
			s.Outcome,
			scanner.Truncate(s.Album, 30),
			scanner.Truncate(s.Artist, 25),
			s.Wants)
	}
}

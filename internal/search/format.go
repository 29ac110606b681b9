// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	titleWidth   = 56
	authorsWidth = 24
)

// FormatTable writes a result as a table to w. Column widths are measured
// in terminal cells so Japanese titles line up.
func FormatTable(res Result, w io.Writer) {
	if len(res.Articles) == 0 {
		fmt.Fprintln(w, "No results found.")
		if res.Skipped > 0 {
			fmt.Fprintf(w, "(%d malformed items skipped)\n", res.Skipped)
		}
		return
	}

	fmt.Fprintf(w, "%-4s  %s  %s  %s\n", "Rank",
		runewidth.FillRight("Title", titleWidth),
		runewidth.FillRight("Authors", authorsWidth),
		"Venue")
	fmt.Fprintln(w, strings.Repeat("-", 4+2+titleWidth+2+authorsWidth+2+20))

	for _, a := range res.Articles {
		fmt.Fprintf(w, "%-4d  %s  %s  %s\n", a.Rank,
			cell(a.Title, titleWidth),
			cell(formatAuthors(a.Authors), authorsWidth),
			runewidth.Truncate(a.Venue, 40, "..."))
	}

	fmt.Fprintf(w, "\n%d results", len(res.Articles))
	if res.Skipped > 0 {
		fmt.Fprintf(w, " (%d malformed items skipped)", res.Skipped)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes a result as indented JSON to w.
func FormatJSON(res Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "..."), width)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	default:
		return authors[0] + " et al."
	}
}

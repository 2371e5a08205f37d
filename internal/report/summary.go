// Package report renders the aggregated divergence maps for humans:
// a shared-vs-specific summary, a per-file breakdown, and a clustering
// of platforms by divergence distance.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"divmap/internal/walkers"
)

// setLabel renders a platform set for display.
func setLabel(set walkers.PlatformSet) string {
	if set == walkers.EmptySet {
		return "<unreachable>"
	}
	return strings.Join(set.Names(), " ")
}

// sortedSets returns the line map keys ordered by descending set size,
// then by name, so "shared by all" rows come first.
func sortedSets(lineMap walkers.LineMap) []walkers.PlatformSet {
	sets := make([]walkers.PlatformSet, 0, len(lineMap))
	for set := range lineMap {
		sets = append(sets, set)
	}
	sort.Slice(sets, func(i, j int) bool {
		if sets[i].Len() != sets[j].Len() {
			return sets[i].Len() > sets[j].Len()
		}
		return sets[i] < sets[j]
	})
	return sets
}

// TotalLines sums the line counts over every platform set.
func TotalLines(lineMap walkers.LineMap) int {
	total := 0
	for _, lines := range lineMap {
		total += lines
	}
	return total
}

// Summary renders the line counts per platform set with their share of
// the total.
func Summary(lineMap walkers.LineMap, useColors bool) string {
	var out strings.Builder

	if useColors {
		out.WriteString(color.CyanString("Platform divergence summary\n"))
	} else {
		out.WriteString("Platform divergence summary\n")
	}

	total := TotalLines(lineMap)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Platform set", "Lines", "% of total"})
	for _, set := range sortedSets(lineMap) {
		lines := lineMap[set]
		share := 0.0
		if total > 0 {
			share = float64(lines) / float64(total) * 100
		}
		tbl.AppendRow(table.Row{setLabel(set), humanize.Comma(int64(lines)), fmt.Sprintf("%.1f", share)})
	}
	footerShare := "100.0"
	if total == 0 {
		footerShare = "0.0"
	}
	tbl.AppendFooter(table.Row{"Total", humanize.Comma(int64(total)), footerShare})
	out.WriteString(tbl.Render())
	out.WriteString("\n")

	return out.String()
}

// FileMap renders the per-file breakdown of the divergence mapping.
func FileMap(fileMap walkers.FileMap, useColors bool) string {
	var out strings.Builder

	if useColors {
		out.WriteString(color.CyanString("Per-file breakdown\n"))
	} else {
		out.WriteString("Per-file breakdown\n")
	}

	// Invert to file -> set -> lines for a stable per-file listing.
	byFile := make(map[string]map[walkers.PlatformSet]int)
	for set, files := range fileMap {
		for filename, lines := range files {
			if byFile[filename] == nil {
				byFile[filename] = make(map[walkers.PlatformSet]int)
			}
			byFile[filename][set] = lines
		}
	}

	filenames := make([]string, 0, len(byFile))
	for filename := range byFile {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Platform set", "Lines"})
	for _, filename := range filenames {
		sets := byFile[filename]
		lineMap := make(walkers.LineMap, len(sets))
		for set, lines := range sets {
			lineMap[set] = lines
		}
		for _, set := range sortedSets(lineMap) {
			tbl.AppendRow(table.Row{filename, setLabel(set), humanize.Comma(int64(sets[set]))})
		}
	}
	out.WriteString(tbl.Render())
	out.WriteString("\n")

	return out.String()
}

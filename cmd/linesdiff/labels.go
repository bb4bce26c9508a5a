package main

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"linesdiff/internal/borderscan"
)

var titleCaser = cases.Title(language.Und)

// edgeLabel renders an edge name for humans, e.g. "bottom" as "Bottom".
func edgeLabel(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return titleCaser.String(name)
}

// perEdgeLabel renders non-zero tallies as "Left 2, Bottom 1".
func perEdgeLabel(counts [borderscan.EdgeCount]int) string {
	parts := make([]string, 0, borderscan.EdgeCount)
	for _, edge := range borderscan.Edges {
		if counts[edge] == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d", edgeLabel(edge.String()), counts[edge]))
	}
	return strings.Join(parts, ", ")
}

func formatDiff(diff float64) string {
	return fmt.Sprintf("%.6f", diff)
}

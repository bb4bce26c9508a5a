package report

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one flagged frame.
type Entry struct {
	Frame  int
	Edge   string
	Offset int
	Diff   float64
}

// LineFormat selects how entries are rendered in the report file.
type LineFormat string

const (
	// FormatDetailed renders "<frame> # <edge>, diff: <value>".
	FormatDetailed LineFormat = "detailed"
	// FormatFrames renders the bare frame index.
	FormatFrames LineFormat = "frames"
)

// ParseLineFormat accepts "detailed" or "frames" (case-insensitive); empty
// selects detailed.
func ParseLineFormat(value string) (LineFormat, error) {
	switch LineFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatDetailed:
		return FormatDetailed, nil
	case FormatFrames:
		return FormatFrames, nil
	}
	return "", fmt.Errorf("report format must be %q or %q, got %q", FormatDetailed, FormatFrames, value)
}

// Line renders an entry without the trailing newline.
func (f LineFormat) Line(e Entry) string {
	if f == FormatFrames {
		return strconv.Itoa(e.Frame)
	}
	return strconv.Itoa(e.Frame) + " # " + e.Edge + ", diff: " + strconv.FormatFloat(e.Diff, 'f', 6, 64)
}

// ParseLine reads a report line in either format back into an entry.
func ParseLine(line string) (Entry, error) {
	line = strings.TrimSpace(line)
	framePart, rest, detailed := strings.Cut(line, " # ")
	frame, err := strconv.Atoi(strings.TrimSpace(framePart))
	if err != nil {
		return Entry{}, fmt.Errorf("parse report line %q: frame: %w", line, err)
	}
	entry := Entry{Frame: frame}
	if !detailed {
		return entry, nil
	}
	edge, diffPart, ok := strings.Cut(rest, ", diff: ")
	if !ok {
		return Entry{}, fmt.Errorf("parse report line %q: missing diff", line)
	}
	diff, err := strconv.ParseFloat(strings.TrimSpace(diffPart), 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parse report line %q: diff: %w", line, err)
	}
	entry.Edge = strings.TrimSpace(edge)
	entry.Diff = diff
	return entry, nil
}

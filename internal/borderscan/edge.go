package borderscan

import (
	"fmt"
	"strings"

	"linesdiff/internal/plane"
)

// Edge identifies one of the four picture boundaries.
type Edge int

const (
	Left Edge = iota
	Top
	Right
	Bottom
)

// EdgeCount is the number of scanned edges.
const EdgeCount = 4

// Edges lists the edges in evaluation order.
var Edges = [EdgeCount]Edge{Left, Top, Right, Bottom}

func (e Edge) String() string {
	switch e {
	case Left:
		return "left"
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	default:
		return fmt.Sprintf("edge(%d)", int(e))
	}
}

// ParseEdge converts a case-insensitive edge name.
func ParseEdge(name string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left":
		return Left, nil
	case "top":
		return Top, nil
	case "right":
		return Right, nil
	case "bottom":
		return Bottom, nil
	}
	return 0, fmt.Errorf("unknown edge %q", name)
}

// Vertical reports whether the edge is scanned with columns.
func (e Edge) Vertical() bool {
	return e == Left || e == Right
}

// extent returns the number of strips available for the edge.
func (e Edge) extent(width, height int) int {
	if e.Vertical() {
		return width
	}
	return height
}

// StripPosition converts an inward offset from the edge into an absolute
// column (left/right) or row (top/bottom) index.
func StripPosition(edge Edge, offset, width, height int) int {
	switch edge {
	case Right:
		return width - 1 - offset
	case Bottom:
		return height - 1 - offset
	default:
		return offset
	}
}

// CutStrip extracts the strip at the given inward offset from a luma plane.
func CutStrip(p *plane.Plane, edge Edge, offset int) (plane.Strip, error) {
	if p == nil {
		return plane.Strip{}, fmt.Errorf("cut %s strip: nil plane", edge)
	}
	pos := StripPosition(edge, offset, p.Width, p.Height)
	if edge.Vertical() {
		return p.Column(pos)
	}
	return p.Row(pos)
}

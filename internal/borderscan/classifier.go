package borderscan

import "context"

// FrameVerdict is the outcome of classifying one frame. Edges holds at most
// one entry because classification stops at the first edge that crosses.
type FrameVerdict struct {
	Frame int
	Edges []EdgeVerdict
}

// Flagged reports whether any edge crossed its threshold.
func (v FrameVerdict) Flagged() bool {
	return len(v.Edges) > 0
}

// First returns the verdict that flagged the frame.
func (v FrameVerdict) First() (EdgeVerdict, bool) {
	if len(v.Edges) == 0 {
		return EdgeVerdict{}, false
	}
	return v.Edges[0], true
}

// Classifier evaluates the four edges of a frame with first-match-wins
// semantics.
type Classifier struct {
	scanner *Scanner
	edges   [EdgeCount]EdgeConfig
}

// NewClassifier builds a classifier over already validated edge configs.
func NewClassifier(scanner *Scanner, edges [EdgeCount]EdgeConfig) *Classifier {
	return &Classifier{scanner: scanner, edges: edges}
}

// Classify scans left, top, right and bottom in order. Once an edge produces
// a verdict for this frame the remaining edges are not scanned.
func (c *Classifier) Classify(ctx context.Context, n int) (FrameVerdict, error) {
	verdict := FrameVerdict{Frame: n}
	for _, edge := range Edges {
		if verdict.Flagged() {
			break
		}
		ev, found, err := c.scanner.Scan(ctx, n, edge, c.edges[edge])
		if err != nil {
			return FrameVerdict{Frame: n}, err
		}
		if found {
			verdict.Edges = append(verdict.Edges, ev)
		}
	}
	return verdict, nil
}

package borderscan

import (
	"context"
	"errors"
	"fmt"

	"linesdiff/internal/plane"
	"linesdiff/internal/services"
)

// StripProvider yields the luma strip at an inward offset from an edge of
// frame n. Implementations report undecodable frames with
// services.ErrFrameUnavailable.
type StripProvider interface {
	LumaStrip(ctx context.Context, frame int, edge Edge, offset int) (plane.Strip, error)
}

// EdgeVerdict records the first threshold crossing on an edge.
type EdgeVerdict struct {
	Edge   Edge
	Offset int
	Diff   float64
}

// Scanner compares adjacent strips along one edge at a time.
type Scanner struct {
	provider StripProvider
	metric   plane.Metric
}

// NewScanner binds a strip provider to a metric.
func NewScanner(provider StripProvider, metric plane.Metric) *Scanner {
	return &Scanner{provider: provider, metric: metric}
}

// Scan compares strip j with strip j+1 for j in [0, cfg.Depth) and returns
// the first pair whose metric exceeds cfg.Threshold.
func (s *Scanner) Scan(ctx context.Context, n int, edge Edge, cfg EdgeConfig) (EdgeVerdict, bool, error) {
	if cfg.Depth <= 0 {
		return EdgeVerdict{}, false, nil
	}
	var diff float64
	j, found, err := findFirst(cfg.Depth, func(j int) (bool, error) {
		d, err := s.compare(ctx, n, edge, j)
		if err != nil {
			return false, err
		}
		diff = d
		return d > cfg.Threshold, nil
	})
	if err != nil || !found {
		return EdgeVerdict{}, false, err
	}
	return EdgeVerdict{Edge: edge, Offset: j, Diff: diff}, true, nil
}

func (s *Scanner) compare(ctx context.Context, n int, edge Edge, j int) (float64, error) {
	outer, err := s.strip(ctx, n, edge, j)
	if err != nil {
		return 0, err
	}
	inner, err := s.strip(ctx, n, edge, j+1)
	if err != nil {
		return 0, err
	}
	return s.metric(outer, inner)
}

func (s *Scanner) strip(ctx context.Context, n int, edge Edge, offset int) (plane.Strip, error) {
	strip, err := s.provider.LumaStrip(ctx, n, edge, offset)
	if err == nil {
		return strip, nil
	}
	if errors.Is(err, services.ErrFrameUnavailable) {
		return plane.Strip{}, fmt.Errorf("frame %d %s strip %d: %w", n, edge, offset, err)
	}
	return plane.Strip{}, services.Wrap(services.ErrFrameUnavailable, "borderscan", "strip",
		fmt.Sprintf("frame %d %s offset %d", n, edge, offset), err)
}

// findFirst returns the smallest i in [0, n) for which pred holds. Evaluation
// stops at the first match or the first error.
func findFirst(n int, pred func(i int) (bool, error)) (int, bool, error) {
	for i := 0; i < n; i++ {
		ok, err := pred(i)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return i, true, nil
		}
	}
	return 0, false, nil
}

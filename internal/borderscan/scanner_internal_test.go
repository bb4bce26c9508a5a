package borderscan

import (
	"errors"
	"testing"
)

func TestFindFirstStopsAtFirstMatch(t *testing.T) {
	var visited []int
	idx, ok, err := findFirst(10, func(i int) (bool, error) {
		visited = append(visited, i)
		return i >= 3, nil
	})
	if err != nil || !ok || idx != 3 {
		t.Fatalf("findFirst = %d, %v, %v; want 3, true, nil", idx, ok, err)
	}
	if len(visited) != 4 {
		t.Fatalf("expected evaluation to stop after index 3, visited %v", visited)
	}
}

func TestFindFirstNoMatchAndError(t *testing.T) {
	if _, ok, err := findFirst(0, func(int) (bool, error) { return true, nil }); ok || err != nil {
		t.Fatalf("empty range should not match, got %v %v", ok, err)
	}
	if _, ok, err := findFirst(3, func(int) (bool, error) { return false, nil }); ok || err != nil {
		t.Fatalf("expected no match, got %v %v", ok, err)
	}
	boom := errors.New("boom")
	if _, _, err := findFirst(3, func(i int) (bool, error) {
		if i == 1 {
			return false, boom
		}
		return false, nil
	}); !errors.Is(err, boom) {
		t.Fatalf("expected error to propagate, got %v", err)
	}
}

func TestStripPosition(t *testing.T) {
	tests := []struct {
		edge   Edge
		offset int
		want   int
	}{
		{Left, 0, 0},
		{Left, 3, 3},
		{Top, 2, 2},
		{Right, 0, 99},
		{Right, 4, 95},
		{Bottom, 0, 49},
		{Bottom, 1, 48},
	}
	for _, tt := range tests {
		if got := StripPosition(tt.edge, tt.offset, 100, 50); got != tt.want {
			t.Errorf("StripPosition(%s, %d) = %d, want %d", tt.edge, tt.offset, got, tt.want)
		}
	}
}

func TestEdgeNamesRoundTrip(t *testing.T) {
	for _, edge := range Edges {
		parsed, err := ParseEdge(edge.String())
		if err != nil || parsed != edge {
			t.Fatalf("ParseEdge(%q) = %v, %v", edge, parsed, err)
		}
	}
	if _, err := ParseEdge("middle"); err == nil {
		t.Fatal("expected error for unknown edge")
	}
	if Edge(9).String() != "edge(9)" {
		t.Fatalf("unexpected fallback name %q", Edge(9).String())
	}
}

func TestDefaultSettings(t *testing.T) {
	normalized := DefaultSettings(ThresholdNormalized)
	raw := DefaultSettings(ThresholdRaw)
	for _, edge := range Edges {
		if normalized.Edges[edge] != (EdgeConfig{Depth: 5, Threshold: 0.14}) {
			t.Fatalf("unexpected normalized default for %s: %+v", edge, normalized.Edges[edge])
		}
		if raw.Edges[edge] != (EdgeConfig{Depth: 5, Threshold: 2.5}) {
			t.Fatalf("unexpected raw default for %s: %+v", edge, raw.Edges[edge])
		}
	}
	if DefaultSettings("").ThresholdMode != ThresholdNormalized {
		t.Fatal("expected empty mode to default to normalized")
	}
}

package main

import (
	"strings"
	"testing"

	"linesdiff/internal/borderscan"
)

func TestEdgeLabels(t *testing.T) {
	if got := edgeLabel("bottom"); got != "Bottom" {
		t.Fatalf("edgeLabel(bottom) = %q", got)
	}
	if got := edgeLabel(" "); got != "" {
		t.Fatalf("edgeLabel(blank) = %q", got)
	}
	var counts [borderscan.EdgeCount]int
	counts[borderscan.Left] = 2
	counts[borderscan.Bottom] = 1
	if got := perEdgeLabel(counts); got != "Left 2, Bottom 1" {
		t.Fatalf("perEdgeLabel = %q", got)
	}
}

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("Flagged", statusWarn, "3 frame(s)", false)
	if !strings.Contains(plain, "Flagged:") || !strings.Contains(plain, "[WARN] 3 frame(s)") {
		t.Fatalf("unexpected line %q", plain)
	}
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("plain line must not carry color codes: %q", plain)
	}
	colored := renderStatusLine("Frames", statusOK, "", true)
	if !strings.HasPrefix(colored, ansiGreen) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected green line, got %q", colored)
	}
}

func TestRenderTableFooter(t *testing.T) {
	out := renderTable([]string{"Frame", "Edge"}, [][]string{{"2", "Left"}, {"9"}}, []columnAlignment{alignRight}, "2 flagged")
	for _, want := range []string{"Frame", "Left", "9", "2 flagged"} {
		if !strings.Contains(strings.ToLower(out), strings.ToLower(want)) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
	if renderTable(nil, nil, nil, "") != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestProgressLineDrawsOnPercentChange(t *testing.T) {
	var b strings.Builder
	p := newProgressLine(&b)
	p.update(1, 200)
	p.update(2, 200)
	p.update(3, 200)
	p.finish()
	if got := strings.Count(b.String(), "scanning frame"); got != 2 {
		t.Fatalf("expected 2 redraws (0%% and 1%%), got %d: %q", got, b.String())
	}
}

package report

import "testing"

func TestLineFormats(t *testing.T) {
	entry := Entry{Frame: 12, Edge: "right", Offset: 1, Diff: 0.1875}
	if got := FormatDetailed.Line(entry); got != "12 # right, diff: 0.187500" {
		t.Fatalf("detailed line = %q", got)
	}
	if got := FormatFrames.Line(entry); got != "12" {
		t.Fatalf("frames line = %q", got)
	}
}

func TestParseLine(t *testing.T) {
	entry, err := ParseLine("12 # right, diff: 0.187500")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if entry.Frame != 12 || entry.Edge != "right" || entry.Diff != 0.1875 {
		t.Fatalf("unexpected entry %+v", entry)
	}

	bare, err := ParseLine("  40 ")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if bare.Frame != 40 || bare.Edge != "" {
		t.Fatalf("unexpected bare entry %+v", bare)
	}

	for _, bad := range []string{"", "x # left, diff: 1", "3 # left", "3 # left, diff: nope"} {
		if _, err := ParseLine(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseLineFormat(t *testing.T) {
	cases := map[string]LineFormat{"": FormatDetailed, "Detailed": FormatDetailed, "frames": FormatFrames}
	for in, want := range cases {
		got, err := ParseLineFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseLineFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseLineFormat("csv"); err == nil {
		t.Fatal("expected error for csv")
	}
}

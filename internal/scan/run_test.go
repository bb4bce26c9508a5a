package scan_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"linesdiff/internal/borderscan"
	"linesdiff/internal/history"
	"linesdiff/internal/plane"
	"linesdiff/internal/report"
	"linesdiff/internal/scan"
	"linesdiff/internal/services"
	"linesdiff/internal/testsupport"
)

// flagged paints a bright line on the left edge of frames in leftFrames and on
// the bottom edge of frames in bottomFrames.
func flagged(leftFrames, bottomFrames []int) testsupport.PaintFunc {
	in := func(set []int, n int) bool {
		for _, v := range set {
			if v == n {
				return true
			}
		}
		return false
	}
	return func(n int, p *plane.Plane) {
		if in(leftFrames, n) {
			testsupport.PaintStrip(p, borderscan.Left, 0, 235)
		}
		if in(bottomFrames, n) {
			testsupport.PaintStrip(p, borderscan.Bottom, 1, 200)
		}
	}
}

func newFilter(t *testing.T, src *testsupport.SyntheticSource, opts ...borderscan.Option) *borderscan.Filter {
	t.Helper()
	f, err := borderscan.NewFilter(src, src, borderscan.DefaultSettings(borderscan.ThresholdNormalized), opts...)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	return f
}

func TestRunScansEveryFrameInOrder(t *testing.T) {
	src := testsupport.NewSyntheticSource(t, "yuv420p", 32, 24, 8, 16, flagged([]int{1, 6}, []int{3}))
	filter := newFilter(t, src)

	var progress []int
	summary, err := scan.Run(context.Background(), scan.Request{
		Filter:   filter,
		Progress: func(done, total int) { progress = append(progress, done) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	calls := src.FrameCalls()
	for i, n := range calls {
		if n != i {
			t.Fatalf("frames requested out of order: %v", calls)
		}
	}
	if len(calls) != 8 || summary.Frames != 8 || !summary.Completed() {
		t.Fatalf("expected 8 frames processed, got calls=%v summary=%+v", calls, summary)
	}
	if len(progress) != 8 || progress[7] != 8 {
		t.Fatalf("unexpected progress callbacks %v", progress)
	}
	if summary.Flagged != 3 {
		t.Fatalf("flagged = %d, want 3", summary.Flagged)
	}
	if summary.PerEdge[borderscan.Left] != 2 || summary.PerEdge[borderscan.Bottom] != 1 {
		t.Fatalf("unexpected per-edge tallies %v", summary.PerEdge)
	}
	want := []report.Entry{
		{Frame: 1, Edge: "left", Offset: 0},
		{Frame: 3, Edge: "bottom", Offset: 0},
		{Frame: 6, Edge: "left", Offset: 0},
	}
	for i, entry := range summary.Findings {
		if entry.Frame != want[i].Frame || entry.Edge != want[i].Edge || entry.Offset != want[i].Offset {
			t.Fatalf("finding %d = %+v, want %+v", i, entry, want[i])
		}
	}
	if summary.RunID != "" {
		t.Fatalf("no history attached, got run id %q", summary.RunID)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory(), testsupport.WithReport("report.txt", false))
	store := testsupport.MustOpenHistory(t, cfg)

	rec, err := report.NewRecorder(report.Options{Path: cfg.Report.Path, Mode: report.ModeBatch})
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	src := testsupport.NewSyntheticSource(t, "yuv420p10le", 32, 24, 5, 64, flagged([]int{0, 4}, nil))
	filter := newFilter(t, src, borderscan.WithRecorder(rec))

	summary, err := scan.Run(context.Background(), scan.Request{
		Filter:     filter,
		History:    store,
		Source:     "/clips/a.mkv",
		ReportPath: cfg.Report.Path,
		Settings:   map[string]int{"left": 5},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id with history attached")
	}

	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != history.StatusCompleted || run.Frames != 5 || run.Findings != 2 || run.TotalFrames != 5 {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.Source != "/clips/a.mkv" || run.ReportPath != cfg.Report.Path || !strings.Contains(run.SettingsJSON, `"left":5`) {
		t.Fatalf("unexpected run metadata %+v", run)
	}
	findings, err := store.Findings(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("Findings: %v", err)
	}
	if len(findings) != 2 || findings[0].Frame != 0 || findings[1].Frame != 4 || findings[1].Edge != "left" {
		t.Fatalf("unexpected findings %+v", findings)
	}

	data, err := os.ReadFile(cfg.Report.Path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 2 {
		t.Fatalf("expected two report lines, got %q", data)
	}
}

func TestRunStopsOnUnavailableFrame(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	store := testsupport.MustOpenHistory(t, cfg)

	src := testsupport.NewSyntheticSource(t, "gray", 16, 16, 6, 16, flagged([]int{1}, nil))
	src.Fail[3] = errors.New("corrupt packet")
	filter := newFilter(t, src)

	summary, err := scan.Run(context.Background(), scan.Request{Filter: filter, History: store})
	if !errors.Is(err, services.ErrFrameUnavailable) {
		t.Fatalf("expected ErrFrameUnavailable, got %v", err)
	}
	if summary.Frames != 3 || summary.Flagged != 1 || summary.Completed() {
		t.Fatalf("unexpected partial summary %+v", summary)
	}

	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != history.StatusFailed || run.Frames != 3 || !strings.Contains(run.ErrorMessage, "corrupt packet") {
		t.Fatalf("unexpected failed run %+v", run)
	}
}

func TestRunHonorsCancellationBetweenFrames(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	store := testsupport.MustOpenHistory(t, cfg)

	src := testsupport.NewSyntheticSource(t, "gray", 16, 16, 10, 16, nil)
	filter := newFilter(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	summary, err := scan.Run(ctx, scan.Request{
		Filter:  filter,
		History: store,
		Progress: func(done, _ int) {
			if done == 4 {
				cancel()
			}
		},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if summary.Frames != 4 || len(src.FrameCalls()) != 4 {
		t.Fatalf("expected scan to stop after 4 frames, summary=%+v calls=%v", summary, src.FrameCalls())
	}

	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != history.StatusCancelled || run.Frames != 4 {
		t.Fatalf("unexpected cancelled run %+v", run)
	}
}

func TestRunSurfacesReportErrors(t *testing.T) {
	rec, err := report.NewRecorder(report.Options{
		Path: t.TempDir() + "/missing/report.txt",
		Mode: report.ModeAppend,
	})
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	src := testsupport.NewSyntheticSource(t, "gray", 16, 16, 3, 16, flagged([]int{2}, nil))
	filter := newFilter(t, src, borderscan.WithRecorder(rec))

	summary, err := scan.Run(context.Background(), scan.Request{Filter: filter})
	if err != nil {
		t.Fatalf("report failures must not fail the scan: %v", err)
	}
	if len(summary.ReportErrors) != 1 || !errors.Is(summary.ReportErrors[0], services.ErrReportWrite) {
		t.Fatalf("expected one report write error, got %v", summary.ReportErrors)
	}
}

func TestRunRejectsMissingFilterAndEmptyClip(t *testing.T) {
	if _, err := scan.Run(context.Background(), scan.Request{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	src := testsupport.NewSyntheticSource(t, "gray", 16, 16, 0, 16, nil)
	if _, err := scan.Run(context.Background(), scan.Request{Filter: emptyFilter{src}}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type emptyFilter struct {
	src *testsupport.SyntheticSource
}

func (f emptyFilter) Info() plane.VideoInfo { return f.src.Info() }

func (f emptyFilter) GetFrame(ctx context.Context, n int) (*plane.Frame, error) {
	return f.src.Frame(ctx, n)
}

func (emptyFilter) Verdict(int) (borderscan.FrameVerdict, bool) {
	return borderscan.FrameVerdict{}, false
}

func (emptyFilter) ReportErrors() []error { return nil }

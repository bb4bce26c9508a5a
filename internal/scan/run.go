package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"linesdiff/internal/borderscan"
	"linesdiff/internal/history"
	"linesdiff/internal/logging"
	"linesdiff/internal/plane"
	"linesdiff/internal/report"
	"linesdiff/internal/services"
)

// Filter is the frame-pull contract the driver needs; *borderscan.Filter
// implements it.
type Filter interface {
	Info() plane.VideoInfo
	GetFrame(ctx context.Context, n int) (*plane.Frame, error)
	Verdict(n int) (borderscan.FrameVerdict, bool)
	ReportErrors() []error
}

// Request describes one scan.
type Request struct {
	Filter Filter
	Logger *slog.Logger

	// History, when set, receives the run and every finding.
	History    *history.Store
	Source     string
	ReportPath string
	// Settings is stored with the run for later inspection.
	Settings any

	// Progress, when set, is called after each frame with the number of
	// frames processed so far.
	Progress func(done, total int)
}

// Summary is the outcome of a scan. It is returned even when the scan stops
// early, describing the frames processed until then.
type Summary struct {
	RunID        string
	TotalFrames  int
	Frames       int
	Flagged      int
	PerEdge      [borderscan.EdgeCount]int
	Findings     []report.Entry
	ReportErrors []error
	Elapsed      time.Duration
}

// Completed reports whether every frame of the clip was processed.
func (s Summary) Completed() bool {
	return s.TotalFrames > 0 && s.Frames == s.TotalFrames
}

// Run scans every frame of the filter's clip in order.
func Run(ctx context.Context, req Request) (Summary, error) {
	if req.Filter == nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "scan", "run", "filter is required", nil)
	}
	info := req.Filter.Info()
	summary := Summary{TotalFrames: info.NumFrames}
	if info.NumFrames <= 0 {
		return summary, services.Wrap(services.ErrValidation, "scan", "run", "clip reports no frames", nil)
	}

	started := time.Now()
	logger := logging.NewComponentLogger(req.Logger, "scan")
	if req.Source != "" {
		ctx = services.WithSource(ctx, req.Source)
	}

	var run *history.Run
	if req.History != nil {
		var err error
		run, err = req.History.BeginRun(ctx, history.BeginParams{
			Source:      req.Source,
			TotalFrames: info.NumFrames,
			ReportPath:  req.ReportPath,
			Settings:    req.Settings,
		})
		if err != nil {
			return summary, fmt.Errorf("record run start: %w", err)
		}
		summary.RunID = run.ID
		ctx = services.WithRunID(ctx, run.ID)
	}
	logger = logging.WithContext(ctx, logger)

	logger.Info(
		"scan started",
		logging.String(logging.FieldEventType, "scan_start"),
		logging.Int("total_frames", info.NumFrames),
		logging.Int("width", info.Width),
		logging.Int("height", info.Height),
		logging.String("pixel_format", info.PixelFormat.Name),
	)

	sampler := logging.NewProgressSampler(10)
	for n := 0; n < info.NumFrames; n++ {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(started)
			summary.ReportErrors = req.Filter.ReportErrors()
			logger.Warn(
				"scan cancelled",
				logging.String(logging.FieldEventType, "scan_cancelled"),
				logging.Int("frames_done", summary.Frames),
				logging.Int("total_frames", info.NumFrames),
			)
			finishRun(ctx, logger, req.History, run, history.StatusCancelled, summary, err)
			return summary, err
		}

		if _, err := req.Filter.GetFrame(ctx, n); err != nil {
			summary.Elapsed = time.Since(started)
			summary.ReportErrors = req.Filter.ReportErrors()
			status := history.StatusFailed
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				status = history.StatusCancelled
			}
			logging.ErrorWithContext(logger, "scan failed", "scan_failure",
				logging.Int(logging.FieldFrame, n),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the clip decodes through the last frame"),
			)
			finishRun(ctx, logger, req.History, run, status, summary, err)
			return summary, err
		}
		summary.Frames++

		if verdict, ok := req.Filter.Verdict(n); ok {
			if ev, flagged := verdict.First(); flagged {
				summary.record(n, ev)
				if run != nil {
					recordFinding(ctx, logger, req.History, run.ID, n, ev)
				}
			}
		}

		if req.Progress != nil {
			req.Progress(summary.Frames, info.NumFrames)
		}
		if sampler.ShouldLogFrame(summary.Frames, info.NumFrames, "scan") {
			logger.Info(
				"scan progress",
				logging.String(logging.FieldEventType, "scan_progress"),
				logging.Int("frames_done", summary.Frames),
				logging.Int("total_frames", info.NumFrames),
				logging.Int("flagged", summary.Flagged),
			)
		}
	}

	summary.Elapsed = time.Since(started)
	summary.ReportErrors = req.Filter.ReportErrors()
	logger.Info(
		"scan completed",
		logging.String(logging.FieldEventType, "scan_complete"),
		logging.Int("frames", summary.Frames),
		logging.Int("flagged", summary.Flagged),
		logging.Int("report_errors", len(summary.ReportErrors)),
		logging.Duration("elapsed", summary.Elapsed),
	)
	finishRun(ctx, logger, req.History, run, history.StatusCompleted, summary, nil)
	return summary, nil
}

func (s *Summary) record(n int, ev borderscan.EdgeVerdict) {
	s.Flagged++
	if ev.Edge >= 0 && int(ev.Edge) < len(s.PerEdge) {
		s.PerEdge[ev.Edge]++
	}
	s.Findings = append(s.Findings, report.Entry{Frame: n, Edge: ev.Edge.String(), Offset: ev.Offset, Diff: ev.Diff})
}

func recordFinding(ctx context.Context, logger *slog.Logger, store *history.Store, runID string, n int, ev borderscan.EdgeVerdict) {
	err := store.RecordFinding(ctx, runID, history.Finding{
		Frame:  n,
		Edge:   ev.Edge.String(),
		Offset: ev.Offset,
		Diff:   ev.Diff,
	})
	if err != nil {
		logging.WarnWithContext(logger, "history finding not recorded", "history_write_failed",
			logging.Int(logging.FieldFrame, n),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history is missing this finding"),
		)
	}
}

// finishRun closes the history run. It uses a context detached from
// cancellation so a cancelled scan still gets its final status.
func finishRun(ctx context.Context, logger *slog.Logger, store *history.Store, run *history.Run, status history.Status, summary Summary, runErr error) {
	if store == nil || run == nil {
		return
	}
	err := store.FinishRun(context.WithoutCancel(ctx), run.ID, history.FinishParams{
		Status:   status,
		Frames:   summary.Frames,
		Findings: summary.Flagged,
		Err:      runErr,
	})
	if err != nil {
		logging.WarnWithContext(logger, "history run not finalized", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run stays marked as running in history"),
		)
	}
}

package borderscan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"linesdiff/internal/logging"
	"linesdiff/internal/plane"
	"linesdiff/internal/report"
	"linesdiff/internal/services"
)

// FrameSource produces luma frames of a clip by index.
type FrameSource interface {
	Info() plane.VideoInfo
	Frame(ctx context.Context, n int) (*plane.Frame, error)
}

// Recorder receives findings and persists them.
type Recorder interface {
	Record(entry report.Entry)
	FlushIfDue(frame int, isLast bool) error
}

// ThreadingMode tells a frame-pull driver how the filter may be called.
type ThreadingMode int

const (
	// Serialized means at most one GetFrame call may execute at a time.
	Serialized ThreadingMode = iota
)

// Option customizes a Filter.
type Option func(*Filter)

// WithRecorder forwards findings to rec.
func WithRecorder(rec Recorder) Option {
	return func(f *Filter) {
		if rec != nil {
			f.recorder = rec
		}
	}
}

// WithTagger replaces the default frame-property tagger.
func WithTagger(t Tagger) Option {
	return func(f *Filter) {
		if t != nil {
			f.tagger = t
		}
	}
}

// WithLogger sets the logger used for findings and report failures.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) {
		f.logger = logging.NewComponentLogger(logger, "borderscan")
	}
}

type nopRecorder struct{}

func (nopRecorder) Record(report.Entry) {}

func (nopRecorder) FlushIfDue(int, bool) error { return nil }

// Filter is the per-frame entry point of the scan engine.
type Filter struct {
	mu sync.Mutex

	source     FrameSource
	info       plane.VideoInfo
	edges      [EdgeCount]EdgeConfig
	tagMode    TagMode
	classifier *Classifier
	tagger     Tagger
	recorder   Recorder
	logger     *slog.Logger

	seen         map[int]FrameVerdict
	reportErrors []error
}

// NewFilter validates settings against the source clip and builds a filter.
// Configuration problems are reported as services.ErrConfiguration.
func NewFilter(source FrameSource, provider StripProvider, settings Settings, opts ...Option) (*Filter, error) {
	if source == nil || provider == nil {
		return nil, services.Wrap(services.ErrConfiguration, "borderscan", "", "frame source and strip provider are required", nil)
	}
	info := source.Info()
	edges, err := settings.resolve(info)
	if err != nil {
		return nil, err
	}
	metric, err := plane.MetricFor(info.LumaFormat())
	if err != nil {
		return nil, err
	}
	tagMode := settings.TagMode
	if tagMode == "" {
		tagMode = TagPerEdge
	}

	f := &Filter{
		source:     source,
		info:       info,
		edges:      edges,
		tagMode:    tagMode,
		classifier: NewClassifier(NewScanner(provider, metric), edges),
		tagger:     PropTagger{},
		recorder:   nopRecorder{},
		logger:     logging.NewComponentLogger(nil, "borderscan"),
		seen:       make(map[int]FrameVerdict),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// ThreadingMode reports that calls must be serialized.
func (f *Filter) ThreadingMode() ThreadingMode {
	return Serialized
}

// Info returns the clip description the filter was validated against.
func (f *Filter) Info() plane.VideoInfo {
	return f.info
}

// EdgeConfigs returns the resolved per-edge configuration with thresholds on
// the normalized scale.
func (f *Filter) EdgeConfigs() [EdgeCount]EdgeConfig {
	return f.edges
}

// GetFrame fetches frame n, classifies it, tags it, and records any finding.
// Frame retrieval errors are returned; report write errors are logged and
// kept for ReportErrors while the tagged frame is still returned. A frame
// that was already classified by this filter is tagged from the cached
// verdict and not recorded again.
func (f *Filter) GetFrame(ctx context.Context, n int) (*plane.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n < 0 || (f.info.NumFrames > 0 && n >= f.info.NumFrames) {
		return nil, services.Wrap(services.ErrFrameUnavailable, "borderscan", "get frame",
			fmt.Sprintf("frame %d outside clip of %d frames", n, f.info.NumFrames), nil)
	}

	frame, err := f.source.Frame(ctx, n)
	if err != nil {
		if errors.Is(err, services.ErrFrameUnavailable) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrFrameUnavailable, "borderscan", "get frame", fmt.Sprintf("frame %d", n), err)
	}

	if verdict, ok := f.seen[n]; ok {
		applyTags(f.tagger, f.tagMode, frame, verdict)
		f.logger.Debug("frame revisited; reusing verdict", logging.Int("frame", n), logging.Bool("flagged", verdict.Flagged()))
		return frame, nil
	}

	verdict, err := f.classifier.Classify(ctx, n)
	if err != nil {
		return nil, err
	}
	f.seen[n] = verdict
	applyTags(f.tagger, f.tagMode, frame, verdict)

	if ev, ok := verdict.First(); ok {
		f.logger.Debug("border line detected",
			logging.Int("frame", n),
			logging.String("edge", ev.Edge.String()),
			logging.Int("offset", ev.Offset),
			logging.Float64("diff", ev.Diff),
		)
		f.recorder.Record(report.Entry{Frame: n, Edge: ev.Edge.String(), Offset: ev.Offset, Diff: ev.Diff})
	}

	isLast := f.info.NumFrames > 0 && n == f.info.NumFrames-1
	if err := f.recorder.FlushIfDue(n, isLast); err != nil {
		f.reportErrors = append(f.reportErrors, err)
		logging.WarnWithContext(f.logger, "report write failed", "report_write_failed",
			logging.Int("frame", n),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the report directory exists and is writable"),
			logging.String(logging.FieldImpact, "findings remain in memory but are missing from the report file"),
		)
	}
	return frame, nil
}

// Verdict returns the verdict computed for frame n, if it has been classified.
func (f *Filter) Verdict(n int) (FrameVerdict, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.seen[n]
	return v, ok
}

// ReportErrors returns the report write failures observed so far.
func (f *Filter) ReportErrors() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]error, len(f.reportErrors))
	copy(out, f.reportErrors)
	return out
}

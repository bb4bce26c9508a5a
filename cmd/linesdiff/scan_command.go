package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"linesdiff/internal/borderscan"
	"linesdiff/internal/config"
	"linesdiff/internal/history"
	"linesdiff/internal/logging"
	"linesdiff/internal/media/ffprobe"
	"linesdiff/internal/media/lumasource"
	"linesdiff/internal/plane"
	"linesdiff/internal/preflight"
	"linesdiff/internal/report"
	"linesdiff/internal/scan"
	"linesdiff/internal/services"
)

type scanOptions struct {
	left, top, right, bottom int
	tl, tt, tr, tb           float64
	output                   string
	flush                    bool
	thresholdMode            string
	tagMode                  string
	format                   string
	history                  bool
	json                     bool
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan <input>",
		Short: "Scan every frame of a clip for border lines",
		Long: "Scan decodes the luma plane of every frame, compares adjacent rows and\n" +
			"columns inward from each edge and reports the first edge whose\n" +
			"normalized difference exceeds its threshold.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, ctx, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.left, "left", 0, "Strip pairs to examine from the left edge (0 disables)")
	flags.IntVar(&opts.top, "top", 0, "Strip pairs to examine from the top edge (0 disables)")
	flags.IntVar(&opts.right, "right", 0, "Strip pairs to examine from the right edge (0 disables)")
	flags.IntVar(&opts.bottom, "bottom", 0, "Strip pairs to examine from the bottom edge (0 disables)")
	flags.Float64Var(&opts.tl, "tl", 0, "Left edge threshold")
	flags.Float64Var(&opts.tt, "tt", 0, "Top edge threshold")
	flags.Float64Var(&opts.tr, "tr", 0, "Right edge threshold")
	flags.Float64Var(&opts.tb, "tb", 0, "Bottom edge threshold")
	flags.StringVarP(&opts.output, "output", "o", "", "Report file for flagged frames (locked through a temporary <file>.lock)")
	flags.BoolVar(&opts.flush, "flush", false, "Append each finding to the report immediately")
	flags.StringVar(&opts.thresholdMode, "threshold-mode", "", "Threshold scale: normalized or raw")
	flags.StringVar(&opts.tagMode, "tag-mode", "", "Frame tags: edge or shared")
	flags.StringVar(&opts.format, "format", "", "Report line format: detailed or frames")
	flags.BoolVar(&opts.history, "history", false, "Record the run in the history database")
	flags.BoolVar(&opts.json, "json", false, "Print the summary as JSON")
	return cmd
}

// apply copies the flags the user set onto cfg.
func (o *scanOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	ints := []struct {
		name   string
		value  int
		target *int
	}{
		{"left", o.left, &cfg.Scan.Left},
		{"top", o.top, &cfg.Scan.Top},
		{"right", o.right, &cfg.Scan.Right},
		{"bottom", o.bottom, &cfg.Scan.Bottom},
	}
	for _, f := range ints {
		if changed(f.name) {
			*f.target = f.value
		}
	}
	floats := []struct {
		name   string
		value  float64
		target **float64
	}{
		{"tl", o.tl, &cfg.Scan.TL},
		{"tt", o.tt, &cfg.Scan.TT},
		{"tr", o.tr, &cfg.Scan.TR},
		{"tb", o.tb, &cfg.Scan.TB},
	}
	for _, f := range floats {
		if changed(f.name) {
			value := f.value
			*f.target = &value
		}
	}
	if changed("output") {
		cfg.Report.Path = o.output
	}
	if changed("flush") {
		cfg.Report.Flush = o.flush
	}
	if changed("threshold-mode") {
		cfg.Scan.ThresholdMode = o.thresholdMode
	}
	if changed("tag-mode") {
		cfg.Scan.TagMode = o.tagMode
	}
	if changed("format") {
		cfg.Report.Format = o.format
	}
	if changed("history") {
		cfg.History.Enabled = o.history
	}
}

func runScan(cmd *cobra.Command, ctx *commandContext, opts *scanOptions, input string) error {
	base, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg := *base
	opts.apply(cmd, &cfg)
	if err := cfg.Finalize(); err != nil {
		return err
	}

	source, err := filepath.Abs(input)
	if err != nil {
		return services.Wrap(services.ErrValidation, "scan", "resolve input", input, err)
	}
	if info, err := os.Stat(source); err != nil || info.IsDir() {
		if err == nil {
			err = errors.New("is a directory")
		}
		return services.Wrap(services.ErrValidation, "scan", "open input", source, err)
	}

	logger, err := ctx.logger(cmd, &cfg)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := preflight.AsError(preflight.RunAll(runCtx, &cfg)); err != nil {
		return err
	}

	info, _, err := ffprobe.Probe(runCtx, cfg.FFprobeBinary(), source)
	if err != nil {
		return err
	}

	src, err := lumasource.Open(source, cfg.FFmpegBinary(), info, lumasource.WithLogger(logger))
	if err != nil {
		return err
	}
	defer src.Close()

	format, err := report.ParseLineFormat(cfg.Report.Format)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "scan", "report format", "", err)
	}
	recorder, err := report.NewRecorder(report.Options{
		Path:   cfg.Report.Path,
		Mode:   report.Mode(cfg.ReportMode()),
		Format: format,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Debug("report lock cleanup failed", logging.Error(err))
		}
	}()

	filter, err := borderscan.NewFilter(src, src, filterSettings(&cfg),
		borderscan.WithRecorder(recorder),
		borderscan.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(&cfg)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
	}

	req := scan.Request{
		Filter:     filter,
		Logger:     logger,
		History:    store,
		Source:     source,
		ReportPath: cfg.Report.Path,
		Settings:   newSettingsView(&cfg, filter),
	}
	var progress *progressLine
	if !opts.json && shouldColorize(cmd.ErrOrStderr()) {
		progress = newProgressLine(cmd.ErrOrStderr())
		req.Progress = progress.update
	}

	summary, runErr := scan.Run(runCtx, req)
	if progress != nil {
		progress.finish()
	}

	if opts.json {
		if err := writeJSON(cmd, newScanView(source, info, &cfg, summary, runErr)); err != nil {
			return err
		}
	} else {
		renderScanSummary(cmd.OutOrStdout(), source, info, &cfg, summary, runErr, shouldColorize(cmd.OutOrStdout()))
	}

	if runErr != nil {
		return runErr
	}
	if n := len(summary.ReportErrors); n > 0 {
		return services.Wrap(services.ErrReportWrite, "scan", "report",
			fmt.Sprintf("%d report write(s) failed", n), summary.ReportErrors[n-1])
	}
	return nil
}

func filterSettings(cfg *config.Config) borderscan.Settings {
	settings := borderscan.Settings{
		ThresholdMode: borderscan.ThresholdMode(cfg.Scan.ThresholdMode),
		TagMode:       borderscan.TagMode(cfg.Scan.TagMode),
	}
	depths := cfg.Depths()
	thresholds := cfg.Thresholds()
	for _, edge := range borderscan.Edges {
		settings.Edges[edge] = borderscan.EdgeConfig{Depth: depths[edge], Threshold: thresholds[edge]}
	}
	return settings
}

type edgeSettingView struct {
	Depth     int     `json:"depth"`
	Threshold float64 `json:"threshold"`
}

type settingsView struct {
	Edges         map[string]edgeSettingView `json:"edges"`
	ThresholdMode string                     `json:"threshold_mode"`
	TagMode       string                     `json:"tag_mode"`
	ReportMode    string                     `json:"report_mode"`
	ReportFormat  string                     `json:"report_format"`
}

// newSettingsView describes the resolved filter settings; thresholds are on
// the normalized scale regardless of the configured mode.
func newSettingsView(cfg *config.Config, filter *borderscan.Filter) settingsView {
	edges := filter.EdgeConfigs()
	view := settingsView{
		Edges:         make(map[string]edgeSettingView, borderscan.EdgeCount),
		ThresholdMode: cfg.Scan.ThresholdMode,
		TagMode:       cfg.Scan.TagMode,
		ReportMode:    cfg.ReportMode(),
		ReportFormat:  cfg.Report.Format,
	}
	for _, edge := range borderscan.Edges {
		view.Edges[edge.String()] = edgeSettingView{Depth: edges[edge].Depth, Threshold: edges[edge].Threshold}
	}
	return view
}

type findingView struct {
	Frame  int     `json:"frame"`
	Edge   string  `json:"edge"`
	Offset int     `json:"offset"`
	Diff   float64 `json:"diff"`
}

type scanView struct {
	Source       string         `json:"source"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	PixelFormat  string         `json:"pixel_format"`
	TotalFrames  int            `json:"total_frames"`
	Frames       int            `json:"frames"`
	Flagged      int            `json:"flagged"`
	PerEdge      map[string]int `json:"per_edge"`
	Findings     []findingView  `json:"findings"`
	Report       string         `json:"report,omitempty"`
	ReportErrors []string       `json:"report_errors,omitempty"`
	RunID        string         `json:"run_id,omitempty"`
	ElapsedMS    int64          `json:"elapsed_ms"`
	Error        string         `json:"error,omitempty"`
}

func newScanView(source string, info plane.VideoInfo, cfg *config.Config, summary scan.Summary, runErr error) scanView {
	view := scanView{
		Source:      source,
		Width:       info.Width,
		Height:      info.Height,
		PixelFormat: info.PixelFormat.Name,
		TotalFrames: info.NumFrames,
		Frames:      summary.Frames,
		Flagged:     summary.Flagged,
		PerEdge:     make(map[string]int, borderscan.EdgeCount),
		Findings:    make([]findingView, 0, len(summary.Findings)),
		Report:      cfg.Report.Path,
		RunID:       summary.RunID,
		ElapsedMS:   summary.Elapsed.Milliseconds(),
	}
	for _, edge := range borderscan.Edges {
		view.PerEdge[edge.String()] = summary.PerEdge[edge]
	}
	for _, entry := range summary.Findings {
		view.Findings = append(view.Findings, findingView{Frame: entry.Frame, Edge: entry.Edge, Offset: entry.Offset, Diff: entry.Diff})
	}
	for _, err := range summary.ReportErrors {
		view.ReportErrors = append(view.ReportErrors, err.Error())
	}
	if runErr != nil {
		view.Error = runErr.Error()
	}
	return view
}

func renderScanSummary(w io.Writer, source string, info plane.VideoInfo, cfg *config.Config, summary scan.Summary, runErr error, colorize bool) {
	lines := renderSectionHeader("Scan", colorize)
	lines = append(lines,
		renderPlainLine("Input", source),
		renderPlainLine("Clip", fmt.Sprintf("%dx%d %s, %d frames", info.Width, info.Height, info.PixelFormat.Name, info.NumFrames)),
	)

	switch {
	case runErr != nil:
		lines = append(lines, renderStatusLine("Frames", statusError,
			fmt.Sprintf("stopped after %d/%d: %v", summary.Frames, summary.TotalFrames, runErr), colorize))
	default:
		lines = append(lines, renderStatusLine("Frames", statusOK,
			fmt.Sprintf("%d/%d scanned in %s", summary.Frames, summary.TotalFrames, summary.Elapsed.Round(time.Millisecond)), colorize))
	}

	if summary.Flagged == 0 {
		lines = append(lines, renderStatusLine("Flagged", statusOK, "none", colorize))
	} else {
		lines = append(lines, renderStatusLine("Flagged", statusWarn,
			fmt.Sprintf("%d frame(s) (%s)", summary.Flagged, perEdgeLabel(summary.PerEdge)), colorize))
	}

	switch {
	case cfg.Report.Path == "":
		lines = append(lines, renderStatusLine("Report", statusInfo, "disabled", colorize))
	case len(summary.ReportErrors) > 0:
		lines = append(lines, renderStatusLine("Report", statusError,
			fmt.Sprintf("%s (%d write(s) failed)", cfg.Report.Path, len(summary.ReportErrors)), colorize))
	default:
		lines = append(lines, renderStatusLine("Report", statusOK,
			fmt.Sprintf("%s (%s)", cfg.Report.Path, cfg.ReportMode()), colorize))
	}
	if summary.RunID != "" {
		lines = append(lines, renderPlainLine("Run", summary.RunID))
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))

	if len(summary.Findings) == 0 {
		return
	}
	rows := make([][]string, 0, len(summary.Findings))
	for _, entry := range summary.Findings {
		rows = append(rows, []string{
			strconv.Itoa(entry.Frame),
			edgeLabel(entry.Edge),
			strconv.Itoa(entry.Offset),
			formatDiff(entry.Diff),
		})
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, renderTable(
		[]string{"Frame", "Edge", "Offset", "Diff"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
		fmt.Sprintf("%d flagged", summary.Flagged),
	))
}

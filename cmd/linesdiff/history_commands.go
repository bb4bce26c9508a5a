package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"linesdiff/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded scan runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryRemoveCommand(ctx))
	return historyCmd
}

// withHistory opens the configured database. ok is false when no database
// exists yet, in which case fn is not called.
func withHistory(ctx *commandContext, fn func(*history.Store) error) (ok bool, err error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return false, err
	}
	if _, statErr := os.Stat(cfg.History.Path); errors.Is(statErr, os.ErrNotExist) {
		return false, nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		return false, fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return true, fn(store)
}

type runView struct {
	ID          string        `json:"id"`
	Source      string        `json:"source"`
	Status      string        `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  *time.Time    `json:"finished_at,omitempty"`
	TotalFrames int           `json:"total_frames"`
	Frames      int           `json:"frames"`
	Findings    int           `json:"findings"`
	ReportPath  string        `json:"report_path,omitempty"`
	Error       string        `json:"error,omitempty"`
	Flagged     []findingView `json:"flagged,omitempty"`
}

func newRunView(run history.Run) runView {
	view := runView{
		ID:          run.ID,
		Source:      run.Source,
		Status:      string(run.Status),
		StartedAt:   run.StartedAt,
		TotalFrames: run.TotalFrames,
		Frames:      run.Frames,
		Findings:    run.Findings,
		ReportPath:  run.ReportPath,
		Error:       run.ErrorMessage,
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		view.FinishedAt = &finished
	}
	return view
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var runs []history.Run
			_, err := withHistory(ctx, func(store *history.Store) error {
				var err error
				runs, err = store.ListRuns(cmd.Context(), limit)
				return err
			})
			if err != nil {
				return err
			}
			if asJSON {
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, newRunView(run))
				}
				return writeJSON(cmd, views)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					string(run.Status),
					fmt.Sprintf("%d/%d", run.Frames, run.TotalFrames),
					strconv.Itoa(run.Findings),
					run.Source,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Started", "Status", "Frames", "Flagged", "Source"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				"",
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run and its flagged frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				run      *history.Run
				findings []history.Finding
			)
			ok, err := withHistory(ctx, func(store *history.Store) error {
				var err error
				run, err = store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				findings, err = store.Findings(cmd.Context(), run.ID)
				return err
			})
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("run %s: %w", args[0], history.ErrRunNotFound)
			}

			view := newRunView(*run)
			for _, f := range findings {
				view.Flagged = append(view.Flagged, findingView{Frame: f.Frame, Edge: f.Edge, Offset: f.Offset, Diff: f.Diff})
			}
			if asJSON {
				return writeJSON(cmd, view)
			}
			renderRun(cmd, *run, findings)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newHistoryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <run-id>",
		Short: "Delete a run and its findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var removed string
			ok, err := withHistory(ctx, func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				removed = run.ID
				return store.DeleteRun(cmd.Context(), run.ID)
			})
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("run %s: %w", args[0], history.ErrRunNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed run %s\n", removed)
			return nil
		},
	}
}

func renderRun(cmd *cobra.Command, run history.Run, findings []history.Finding) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	lines := renderSectionHeader("Run "+shortID(run.ID), colorize)
	lines = append(lines,
		renderPlainLine("ID", run.ID),
		renderPlainLine("Source", run.Source),
		renderStatusLine("Status", runStatusKind(run.Status), string(run.Status), colorize),
		renderPlainLine("Started", run.StartedAt.Local().Format(time.RFC3339)),
	)
	if d := run.Duration(); d > 0 {
		lines = append(lines, renderPlainLine("Duration", d.Round(time.Millisecond).String()))
	}
	lines = append(lines,
		renderPlainLine("Frames", fmt.Sprintf("%d/%d", run.Frames, run.TotalFrames)),
		renderPlainLine("Flagged", strconv.Itoa(run.Findings)),
	)
	if run.ReportPath != "" {
		lines = append(lines, renderPlainLine("Report", run.ReportPath))
	}
	if run.ErrorMessage != "" {
		lines = append(lines, renderStatusLine("Error", statusError, run.ErrorMessage, colorize))
	}
	fmt.Fprintln(out, strings.Join(lines, "\n"))

	if len(findings) == 0 {
		return
	}
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, []string{strconv.Itoa(f.Frame), edgeLabel(f.Edge), strconv.Itoa(f.Offset), formatDiff(f.Diff)})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Frame", "Edge", "Offset", "Diff"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
		"",
	))
}

func runStatusKind(status history.Status) statusKind {
	switch status {
	case history.StatusCompleted:
		return statusOK
	case history.StatusCancelled, history.StatusRunning:
		return statusWarn
	case history.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

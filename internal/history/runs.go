package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when no run matches an id.
var ErrRunNotFound = errors.New("run not found")

// BeginParams describes a run that is about to start.
type BeginParams struct {
	Source      string
	TotalFrames int
	ReportPath  string
	// Settings is stored as JSON for later inspection.
	Settings any
}

// FinishParams describes how a run ended.
type FinishParams struct {
	Status   Status
	Frames   int
	Findings int
	Err      error
}

// BeginRun inserts a running run with a fresh UUID.
func (s *Store) BeginRun(ctx context.Context, params BeginParams) (*Run, error) {
	settingsJSON := ""
	if params.Settings != nil {
		data, err := json.Marshal(params.Settings)
		if err != nil {
			return nil, fmt.Errorf("marshal settings: %w", err)
		}
		settingsJSON = string(data)
	}

	run := &Run{
		ID:           uuid.NewString(),
		Source:       params.Source,
		Status:       StatusRunning,
		StartedAt:    time.Now().UTC(),
		TotalFrames:  params.TotalFrames,
		ReportPath:   params.ReportPath,
		SettingsJSON: settingsJSON,
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, source, status, started_at, total_frames, report_path, settings_json)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Source,
		run.Status,
		formatTime(run.StartedAt),
		run.TotalFrames,
		nullableString(run.ReportPath),
		nullableString(run.SettingsJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordFinding stores a flagged frame. Recording the same frame twice keeps
// the first finding.
func (s *Store) RecordFinding(ctx context.Context, runID string, finding Finding) error {
	_, err := s.exec(ctx,
		`INSERT OR IGNORE INTO findings (run_id, frame, edge, strip_offset, diff) VALUES (?, ?, ?, ?, ?)`,
		runID, finding.Frame, finding.Edge, finding.Offset, finding.Diff,
	)
	if err != nil {
		return fmt.Errorf("insert finding: %w", err)
	}
	return nil
}

// FinishRun records the outcome of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, params FinishParams) error {
	status := params.Status
	if status == "" {
		status = StatusCompleted
	}
	var message any
	if params.Err != nil {
		message = params.Err.Error()
	}
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, frames = ?, findings = ?, error_message = ? WHERE id = ?`,
		status,
		formatTime(time.Now()),
		params.Frames,
		params.Findings,
		message,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by id. A unique id prefix of at least eight characters
// is accepted so ids can be copied from abbreviated listings.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if len(id) < 8 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(id), id)
	if err != nil {
		return nil, fmt.Errorf("get run by prefix: %w", err)
	}
	defer rows.Close()
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// Findings returns the findings of a run ordered by frame.
func (s *Store) Findings(ctx context.Context, runID string) ([]Finding, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT frame, edge, strip_offset, diff FROM findings WHERE run_id = ? ORDER BY frame`, runID)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()

	var out []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.Frame, &f.Edge, &f.Offset, &f.Diff); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its findings.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.exec(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

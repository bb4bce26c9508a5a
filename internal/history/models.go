package history

import (
	"database/sql"
	"time"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run is one scan of one clip.
type Run struct {
	ID           string
	Source       string
	Status       Status
	StartedAt    time.Time
	FinishedAt   time.Time
	TotalFrames  int
	Frames       int
	Findings     int
	ReportPath   string
	SettingsJSON string
	ErrorMessage string
}

// Duration returns the elapsed run time, or zero while the run is open.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Finding is a flagged frame stored for a run.
type Finding struct {
	Frame  int
	Edge   string
	Offset int
	Diff   float64
}

const runColumns = "id, source, status, started_at, finished_at, total_frames, frames, findings, report_path, settings_json, error_message"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		status     string
		startedRaw string
		finished   sql.NullString
		reportPath sql.NullString
		settings   sql.NullString
		errMessage sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Source,
		&status,
		&startedRaw,
		&finished,
		&run.TotalFrames,
		&run.Frames,
		&run.Findings,
		&reportPath,
		&settings,
		&errMessage,
	); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.StartedAt = parseTime(startedRaw)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	run.ReportPath = reportPath.String
	run.SettingsJSON = settings.String
	run.ErrorMessage = errMessage.String
	return &run, nil
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(ts time.Time) string {
	return ts.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

package preflight

import (
	"context"
	"fmt"
	"strings"

	"linesdiff/internal/config"
	"linesdiff/internal/deps"
	"linesdiff/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result

	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, fromStatus(status))
	}

	if cfg.Report.Path != "" {
		results = append(results, CheckReportTarget(cfg.Report.Path))
	}
	if cfg.Logging.Dir != "" {
		results = append(results, CheckCreatableDirectory("Log directory", cfg.Logging.Dir))
	}
	if cfg.History.Enabled {
		results = append(results, CheckHistoryTarget(cfg.History.Path))
	}
	return results
}

// CheckSystemDeps evaluates the external binaries for the given config.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries(deps.FFmpegRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
	return deps.WithVersions(ctx, statuses)
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// AsError folds failed results into a configuration error, or returns nil.
func AsError(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "run", strings.Join(parts, "; "), nil)
}

func fromStatus(status deps.Status) Result {
	result := Result{Name: status.Name, Passed: status.Available || status.Optional}
	switch {
	case status.Available && status.Version != "":
		result.Detail = fmt.Sprintf("%s (%s)", status.Path, status.Version)
	case status.Available:
		result.Detail = status.Path
	default:
		result.Detail = status.Detail
	}
	return result
}

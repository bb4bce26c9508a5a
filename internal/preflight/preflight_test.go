package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"linesdiff/internal/services"
	"linesdiff/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCreatableDirectory(t *testing.T) {
	base := t.TempDir()
	result := CheckCreatableDirectory("logs", filepath.Join(base, "a", "b"))
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("expected creatable directory to pass, got %+v", result)
	}

	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckCreatableDirectory("logs", file); result.Passed {
		t.Fatal("expected failure when the path is a file")
	}
}

func TestCheckReportTarget(t *testing.T) {
	base := t.TempDir()

	if result := CheckReportTarget(filepath.Join(base, "report.txt")); !result.Passed {
		t.Fatalf("new report in existing dir should pass: %s", result.Detail)
	}

	existing := filepath.Join(base, "existing.txt")
	if err := os.WriteFile(existing, []byte("1 left 0 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckReportTarget(existing); !result.Passed || !strings.Contains(result.Detail, "writable") {
		t.Fatalf("existing writable report should pass, got %+v", result)
	}

	if result := CheckReportTarget(filepath.Join(base, "missing", "report.txt")); result.Passed {
		t.Fatal("report in a missing directory should fail")
	}
	if result := CheckReportTarget(base); result.Passed {
		t.Fatal("report path pointing at a directory should fail")
	}
}

func TestCheckHistoryTarget(t *testing.T) {
	if result := CheckHistoryTarget(""); result.Passed {
		t.Fatal("expected failure for empty path")
	}
	if result := CheckHistoryTarget(filepath.Join(t.TempDir(), "db", "history.db")); !result.Passed {
		t.Fatalf("expected pass for creatable path: %s", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_StubbedTools(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries("#!/bin/sh\necho 'stub version 1'\n"),
		testsupport.WithReport("report.txt", false),
		testsupport.WithHistory(),
	)

	results := RunAll(context.Background(), cfg)
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	want := []string{"FFmpeg", "FFprobe", "Report file", "History database"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("checks = %v, want %v", names, want)
	}
	if !strings.Contains(results[0].Detail, "stub version 1") {
		t.Fatalf("expected version in detail, got %q", results[0].Detail)
	}
	if err := AsError(results); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestAsErrorNamesFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Tools.FFmpeg = "clearly-not-present-ffmpeg"
	cfg.Tools.FFprobe = "clearly-not-present-ffprobe"
	cfg.Report.Path = filepath.Join(t.TempDir(), "missing", "report.txt")

	err := AsError(RunAll(context.Background(), cfg))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	for _, want := range []string{"FFmpeg", "FFprobe", "Report file"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

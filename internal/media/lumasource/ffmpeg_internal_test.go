package lumasource

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"linesdiff/internal/services"
)

func hasPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestDecodeArgs(t *testing.T) {
	args := decodeArgs("/clips/a b.mkv", "gray10le")
	for _, pair := range [][2]string{
		{"-i", "/clips/a b.mkv"},
		{"-pix_fmt", "gray10le"},
		{"-f", "rawvideo"},
		{"-map", "0:v:0"},
		{"-loglevel", "error"},
	} {
		if !hasPair(args, pair[0], pair[1]) {
			t.Fatalf("expected %s %s in %v", pair[0], pair[1], args)
		}
	}
	input, output := -1, -1
	for i, arg := range args {
		switch arg {
		case "-i":
			input = i
		case "pipe:1":
			output = i
		}
	}
	if input < 0 || output < input {
		t.Fatalf("expected stdout output after the input, got %v", args)
	}
}

func TestFFmpegOpenerStreamsStdout(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffmpeg")
	body := "#!/bin/sh\nprintf 'abcd'\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	stream, err := ffmpegOpener(script, "/clips/a.mkv", "gray")(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer stream.Close()
	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "abcd" {
		t.Fatalf("unexpected stream %q", data)
	}
}

func TestFFmpegOpenerReportsFailure(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffmpeg")
	body := "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	stream, err := ffmpegOpener(script, "/clips/a.mkv", "gray")(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer stream.Close()
	_, err = io.ReadAll(stream)
	if err == nil || !strings.Contains(err.Error(), "Invalid data") {
		t.Fatalf("expected ffmpeg stderr in error, got %v", err)
	}

	if _, err := ffmpegOpener(filepath.Join(dir, "missing"), "/clips/a.mkv", "gray")(context.Background()); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error for missing binary, got %v", err)
	}
}

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for all nil handlers")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner, nil); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRoutesByLevel(t *testing.T) {
	var console, file bytes.Buffer
	consoleLevel := new(slog.LevelVar)
	fileLevel := new(slog.LevelVar)
	fileLevel.Set(slog.LevelDebug)

	h := TeeHandler(newPrettyHandler(&console, consoleLevel, false), newJSONHandler(&file, fileLevel, false))
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout to accept debug because the file handler does")
	}
	logger := slog.New(h).With(String(FieldComponent, "scan"))

	logger.Debug("strip compared", Int(FieldFrame, 4))
	logger.Info("scan finished", Int("frames", 10))

	if strings.Contains(console.String(), "strip compared") {
		t.Fatalf("console received debug record: %q", console.String())
	}
	if !strings.Contains(console.String(), "scan: scan finished") {
		t.Fatalf("console missing info record: %q", console.String())
	}
	if !strings.Contains(file.String(), `"msg":"strip compared"`) || !strings.Contains(file.String(), `"component":"scan"`) {
		t.Fatalf("file missing debug record with attrs: %q", file.String())
	}
}

func TestFanoutHandlerWithGroup(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newFanoutHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))

	slog.New(h.WithGroup("scan")).Info("test", slog.String("edge", "left"))

	for i, buf := range []*bytes.Buffer{&buf1, &buf2} {
		if !bytes.Contains(buf.Bytes(), []byte(`"scan":{"edge":"left"}`)) {
			t.Fatalf("handler %d missing group: %q", i, buf.String())
		}
	}
}

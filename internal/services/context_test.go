package services_test

import (
	"context"
	"testing"

	"linesdiff/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithFrame(ctx, 42)
	ctx = services.WithSource(ctx, "/tmp/clip.mkv")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if n, ok := services.FrameFromContext(ctx); !ok || n != 42 {
		t.Fatalf("unexpected frame: %v %v", n, ok)
	}
	if src, ok := services.SourceFromContext(ctx); !ok || src != "/tmp/clip.mkv" {
		t.Fatalf("unexpected source: %v %v", src, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithSource(ctx, "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.SourceFromContext(ctx); ok {
		t.Fatal("expected no source value")
	}
	if _, ok := services.FrameFromContext(ctx); ok {
		t.Fatal("expected no frame value")
	}
}

func TestFrameZeroIsPresent(t *testing.T) {
	ctx := services.WithFrame(context.Background(), 0)
	if n, ok := services.FrameFromContext(ctx); !ok || n != 0 {
		t.Fatalf("expected frame 0 to be recorded, got %v %v", n, ok)
	}
}

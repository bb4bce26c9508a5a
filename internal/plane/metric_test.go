package plane_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"linesdiff/internal/plane"
	"linesdiff/internal/services"
)

func mustMetric(t *testing.T, format plane.Format) plane.Metric {
	t.Helper()
	metric, err := plane.MetricFor(format)
	if err != nil {
		t.Fatalf("MetricFor(%s): %v", format, err)
	}
	return metric
}

func TestMetricNormalizesByPeak(t *testing.T) {
	metric8 := mustMetric(t, plane.Gray8)
	got8, err := metric8(plane.Strip8(0, 0, 0, 0), plane.Strip8(51, 51, 51, 51))
	if err != nil {
		t.Fatalf("metric8: %v", err)
	}

	metric16 := mustMetric(t, plane.Gray16)
	got16, err := metric16(plane.Strip16(plane.Gray16, 0, 0, 0, 0), plane.Strip16(plane.Gray16, 13107, 13107, 13107, 13107))
	if err != nil {
		t.Fatalf("metric16: %v", err)
	}

	if math.Abs(got8-0.2) > 1e-12 {
		t.Fatalf("8-bit metric = %v, want 0.2", got8)
	}
	if math.Abs(got8-got16) > 1e-12 {
		t.Fatalf("expected identical relative jump to match across depths, got %v and %v", got8, got16)
	}
}

func TestMetricRawDifferenceFormula(t *testing.T) {
	tests := []struct {
		name   string
		format plane.Format
		a, b   plane.Strip
		sumAbs float64
		width  float64
	}{
		{"8-bit", plane.Gray8, plane.Strip8(10, 20, 30), plane.Strip8(13, 10, 30), 13, 3},
		{"10-bit", plane.Gray10, plane.Strip16(plane.Gray10, 1023, 0), plane.Strip16(plane.Gray10, 0, 0), 1023, 2},
		{"12-bit", plane.Gray12, plane.Strip16(plane.Gray12, 100, 200, 300, 400), plane.Strip16(plane.Gray12, 400, 300, 200, 100), 800, 4},
		{"14-bit", plane.Gray14, plane.Strip16(plane.Gray14, 16383), plane.Strip16(plane.Gray14, 1), 16382, 1},
		{"16-bit", plane.Gray16, plane.Strip16(plane.Gray16, 65535, 1), plane.Strip16(plane.Gray16, 0, 0), 65536, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metric := mustMetric(t, tt.format)
			got, err := metric(tt.a, tt.b)
			if err != nil {
				t.Fatalf("metric: %v", err)
			}
			want := tt.sumAbs / tt.width / tt.format.Peak()
			if math.Abs(got-want) > 1e-12 {
				t.Fatalf("metric = %v, want %v", got, want)
			}
		})
	}
}

func TestMetricFloatIsUnscaled(t *testing.T) {
	metric := mustMetric(t, plane.GrayFloat)
	got, err := metric(plane.StripFloat(0.25, 0.5), plane.StripFloat(0.75, 0.5))
	if err != nil {
		t.Fatalf("metric: %v", err)
	}
	if math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("metric = %v, want 0.25", got)
	}
}

func TestMetricSymmetryAndRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	metric := mustMetric(t, plane.Gray10)
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(64)
		a := make([]uint16, n)
		b := make([]uint16, n)
		for i := range a {
			a[i] = uint16(rng.Intn(1024))
			b[i] = uint16(rng.Intn(1024))
		}
		sa := plane.Strip16(plane.Gray10, a...)
		sb := plane.Strip16(plane.Gray10, b...)

		ab, err := metric(sa, sb)
		if err != nil {
			t.Fatalf("metric(a,b): %v", err)
		}
		ba, err := metric(sb, sa)
		if err != nil {
			t.Fatalf("metric(b,a): %v", err)
		}
		if ab != ba {
			t.Fatalf("metric not symmetric: %v vs %v", ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Fatalf("metric out of range: %v", ab)
		}
		self, err := metric(sa, sa)
		if err != nil {
			t.Fatalf("metric(a,a): %v", err)
		}
		if self != 0 {
			t.Fatalf("metric of identical strips = %v, want 0", self)
		}
	}
}

func TestMetricRejectsEmptyAndMismatchedStrips(t *testing.T) {
	metric := mustMetric(t, plane.Gray8)

	_, err := metric(plane.Strip8(), plane.Strip8())
	if !errors.Is(err, plane.ErrEmptyStrip) {
		t.Fatalf("expected ErrEmptyStrip, got %v", err)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}

	_, err = metric(plane.Strip8(1, 2, 3), plane.Strip8(1, 2))
	if !errors.Is(err, plane.ErrStripMismatch) {
		t.Fatalf("expected ErrStripMismatch for lengths, got %v", err)
	}

	_, err = metric(plane.Strip8(1, 2), plane.Strip16(plane.Gray16, 1, 2))
	if !errors.Is(err, plane.ErrStripMismatch) {
		t.Fatalf("expected ErrStripMismatch for formats, got %v", err)
	}
}

func TestMetricForRejectsUnsupportedFormat(t *testing.T) {
	_, err := plane.MetricFor(plane.Format{Kind: plane.KindInteger, BitDepth: 9})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

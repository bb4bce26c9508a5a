package plane

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"linesdiff/internal/services"
)

var (
	// ErrEmptyStrip is returned when a strip holds no samples.
	ErrEmptyStrip = errors.New("empty strip")
	// ErrStripMismatch is returned when two strips differ in length or format.
	ErrStripMismatch = errors.New("strip mismatch")
)

// Metric returns the mean absolute difference between two strips, normalized
// to [0, 1] by the format's peak value (float samples are left unscaled).
type Metric func(a, b Strip) (float64, error)

type sadFunc func(a, b []byte) float64

// MetricFor returns the comparison strategy for strips of the given format.
func MetricFor(format Format) (Metric, error) {
	if !format.Valid() {
		return nil, services.Wrap(services.ErrConfiguration, "plane", "metric", fmt.Sprintf("unsupported sample format %+v", format), nil)
	}
	var sad sadFunc
	switch {
	case format.Kind == KindFloat:
		sad = sadFloat32
	case format.BytesPerSample() == 2:
		sad = sadUint16
	default:
		sad = sadUint8
	}
	peak := format.Peak()
	return func(a, b Strip) (float64, error) {
		if a.format != format || b.format != format {
			return 0, services.Wrap(services.ErrValidation, "plane", "metric",
				fmt.Sprintf("strip formats %s/%s do not match %s", a.format, b.format, format), ErrStripMismatch)
		}
		n := a.Len()
		if n == 0 || b.Len() == 0 {
			return 0, services.Wrap(services.ErrValidation, "plane", "metric", "", ErrEmptyStrip)
		}
		if n != b.Len() {
			return 0, services.Wrap(services.ErrValidation, "plane", "metric",
				fmt.Sprintf("strip lengths %d and %d differ", n, b.Len()), ErrStripMismatch)
		}
		return sad(a.data, b.data) / float64(n) / peak, nil
	}, nil
}

func sadUint8(a, b []byte) float64 {
	var accum int64
	for i := range a {
		d := int64(a[i]) - int64(b[i])
		if d < 0 {
			d = -d
		}
		accum += d
	}
	return float64(accum)
}

func sadUint16(a, b []byte) float64 {
	var accum int64
	for i := 0; i+1 < len(a); i += 2 {
		d := int64(binary.LittleEndian.Uint16(a[i:])) - int64(binary.LittleEndian.Uint16(b[i:]))
		if d < 0 {
			d = -d
		}
		accum += d
	}
	return float64(accum)
}

func sadFloat32(a, b []byte) float64 {
	var accum float64
	for i := 0; i+3 < len(a); i += 4 {
		x := float64(math.Float32frombits(binary.LittleEndian.Uint32(a[i:])))
		y := float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i:])))
		accum += math.Abs(x - y)
	}
	return accum
}

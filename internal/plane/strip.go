package plane

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Strip is a read-only, one-sample-thick row or column of luma samples.
// Multi-byte samples are little-endian; float samples are IEEE-754 binary32.
type Strip struct {
	format Format
	data   []byte
}

// NewStrip wraps raw sample bytes. The slice is retained, not copied.
func NewStrip(format Format, data []byte) (Strip, error) {
	if !format.Valid() {
		return Strip{}, fmt.Errorf("strip: unsupported format %+v", format)
	}
	if len(data)%format.BytesPerSample() != 0 {
		return Strip{}, fmt.Errorf("strip: %d bytes is not a whole number of %s samples", len(data), format)
	}
	return Strip{format: format, data: data}, nil
}

// Strip8 builds an 8-bit strip from sample values.
func Strip8(samples ...uint8) Strip {
	data := make([]byte, len(samples))
	copy(data, samples)
	return Strip{format: Gray8, data: data}
}

// Strip16 builds a 10..16-bit strip from sample values.
func Strip16(format Format, samples ...uint16) Strip {
	data := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], v)
	}
	return Strip{format: format, data: data}
}

// StripFloat builds a float strip from sample values.
func StripFloat(samples ...float32) Strip {
	data := make([]byte, 4*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	return Strip{format: GrayFloat, data: data}
}

// Format returns the sample format.
func (s Strip) Format() Format { return s.format }

// Len returns the number of samples.
func (s Strip) Len() int {
	if s.format.BytesPerSample() == 0 {
		return 0
	}
	return len(s.data) / s.format.BytesPerSample()
}

// Sample returns sample i as a float64 in raw units.
func (s Strip) Sample(i int) float64 {
	switch s.format.BytesPerSample() {
	case 4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(s.data[4*i:])))
	case 2:
		return float64(binary.LittleEndian.Uint16(s.data[2*i:]))
	default:
		return float64(s.data[i])
	}
}

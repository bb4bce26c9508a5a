package plane

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// Plane holds one frame's luma samples, row-major with a fixed stride.
type Plane struct {
	Format Format
	Width  int
	Height int
	Stride int // bytes per row
	Data   []byte
}

// NewPlane allocates a zeroed plane.
func NewPlane(format Format, width, height int) *Plane {
	stride := width * format.BytesPerSample()
	return &Plane{
		Format: format,
		Width:  width,
		Height: height,
		Stride: stride,
		Data:   make([]byte, stride*height),
	}
}

// WrapPlane adopts a tightly packed sample buffer as a plane.
func WrapPlane(format Format, width, height int, data []byte) (*Plane, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("plane: unsupported format %+v", format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("plane: invalid dimensions %dx%d", width, height)
	}
	stride := width * format.BytesPerSample()
	if len(data) != stride*height {
		return nil, fmt.Errorf("plane: got %d bytes, want %d for %dx%d %s", len(data), stride*height, width, height, format)
	}
	return &Plane{Format: format, Width: width, Height: height, Stride: stride, Data: data}, nil
}

// Row returns row y as a strip sharing the plane's memory.
func (p *Plane) Row(y int) (Strip, error) {
	if y < 0 || y >= p.Height {
		return Strip{}, fmt.Errorf("plane: row %d out of range [0,%d)", y, p.Height)
	}
	start := y * p.Stride
	return Strip{format: p.Format, data: p.Data[start : start+p.Width*p.Format.BytesPerSample()]}, nil
}

// Column returns column x as a freshly gathered strip.
func (p *Plane) Column(x int) (Strip, error) {
	if x < 0 || x >= p.Width {
		return Strip{}, fmt.Errorf("plane: column %d out of range [0,%d)", x, p.Width)
	}
	bps := p.Format.BytesPerSample()
	data := make([]byte, p.Height*bps)
	for y := 0; y < p.Height; y++ {
		off := y*p.Stride + x*bps
		copy(data[y*bps:(y+1)*bps], p.Data[off:off+bps])
	}
	return Strip{format: p.Format, data: data}, nil
}

// At returns the sample at (x, y) in raw units.
func (p *Plane) At(x, y int) float64 {
	bps := p.Format.BytesPerSample()
	off := y*p.Stride + x*bps
	switch bps {
	case 4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(p.Data[off:])))
	case 2:
		return float64(binary.LittleEndian.Uint16(p.Data[off:]))
	default:
		return float64(p.Data[off])
	}
}

// Set stores v at (x, y). Integer formats clamp to [0, peak].
func (p *Plane) Set(x, y int, v float64) {
	bps := p.Format.BytesPerSample()
	off := y*p.Stride + x*bps
	if p.Format.Kind == KindFloat {
		binary.LittleEndian.PutUint32(p.Data[off:], math.Float32bits(float32(v)))
		return
	}
	v = math.Round(math.Max(0, math.Min(v, p.Format.Peak())))
	if bps == 2 {
		binary.LittleEndian.PutUint16(p.Data[off:], uint16(v))
		return
	}
	p.Data[off] = uint8(v)
}

// Fill sets every sample to v.
func (p *Plane) Fill(v float64) {
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			p.Set(x, y, v)
		}
	}
}

// Frame is one decoded picture reduced to its luma plane, plus the numeric
// properties attached to it while it travels through the filter chain.
type Frame struct {
	Index int
	Luma  *Plane
	props map[string]float64
}

// NewFrame wraps a luma plane as frame n.
func NewFrame(n int, luma *Plane) *Frame {
	return &Frame{Index: n, Luma: luma}
}

// SetProp attaches a numeric property, replacing any previous value.
func (f *Frame) SetProp(key string, value float64) {
	if f.props == nil {
		f.props = make(map[string]float64)
	}
	f.props[key] = value
}

// Prop returns a property value and whether it is set.
func (f *Frame) Prop(key string) (float64, bool) {
	v, ok := f.props[key]
	return v, ok
}

// HasProp reports whether key is set.
func (f *Frame) HasProp(key string) bool {
	_, ok := f.props[key]
	return ok
}

// PropKeys returns the set property keys in sorted order.
func (f *Frame) PropKeys() []string {
	keys := make([]string, 0, len(f.props))
	for k := range f.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// VideoInfo describes a clip as seen by the scan engine.
type VideoInfo struct {
	Width       int
	Height      int
	NumFrames   int
	PixelFormat PixelFormat
}

// LumaFormat returns the sample format of the clip's luma plane.
func (v VideoInfo) LumaFormat() Format {
	return v.PixelFormat.Luma
}

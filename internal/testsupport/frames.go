package testsupport

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"linesdiff/internal/borderscan"
	"linesdiff/internal/plane"
	"linesdiff/internal/services"
)

// StripCall records one LumaStrip request.
type StripCall struct {
	Frame  int
	Edge   borderscan.Edge
	Offset int
}

// PaintFunc draws frame n into a plane pre-filled with the background value.
type PaintFunc func(n int, p *plane.Plane)

// SyntheticSource is an in-memory clip that implements both
// borderscan.FrameSource and borderscan.StripProvider and records every
// request it serves.
type SyntheticSource struct {
	mu         sync.Mutex
	info       plane.VideoInfo
	background float64
	paint      PaintFunc

	// Fail makes Frame and LumaStrip return the error for that frame index.
	Fail map[int]error
	// OnStrip, when set, runs before a strip is served and may veto it.
	OnStrip func(call StripCall) error

	frameCalls []int
	stripCalls []StripCall
}

// NewSyntheticSource builds a clip of n frames with the given pixel format.
// paint may be nil for a flat clip.
func NewSyntheticSource(t testing.TB, pixFmt string, width, height, frames int, background float64, paint PaintFunc) *SyntheticSource {
	t.Helper()
	pf, err := plane.ParsePixelFormat(pixFmt)
	if err != nil {
		t.Fatalf("parse pixel format %q: %v", pixFmt, err)
	}
	return &SyntheticSource{
		info: plane.VideoInfo{
			Width:       width,
			Height:      height,
			NumFrames:   frames,
			PixelFormat: pf,
		},
		background: background,
		paint:      paint,
		Fail:       map[int]error{},
	}
}

// Info implements borderscan.FrameSource.
func (s *SyntheticSource) Info() plane.VideoInfo {
	return s.info
}

// Frame implements borderscan.FrameSource.
func (s *SyntheticSource) Frame(_ context.Context, n int) (*plane.Frame, error) {
	s.mu.Lock()
	s.frameCalls = append(s.frameCalls, n)
	failure := s.Fail[n]
	s.mu.Unlock()
	if failure != nil {
		return nil, services.Wrap(services.ErrFrameUnavailable, "synthetic", "frame", fmt.Sprintf("frame %d", n), failure)
	}
	return plane.NewFrame(n, s.render(n)), nil
}

// LumaStrip implements borderscan.StripProvider.
func (s *SyntheticSource) LumaStrip(_ context.Context, n int, edge borderscan.Edge, offset int) (plane.Strip, error) {
	call := StripCall{Frame: n, Edge: edge, Offset: offset}
	s.mu.Lock()
	s.stripCalls = append(s.stripCalls, call)
	failure := s.Fail[n]
	hook := s.OnStrip
	s.mu.Unlock()
	if failure != nil {
		return plane.Strip{}, failure
	}
	if hook != nil {
		if err := hook(call); err != nil {
			return plane.Strip{}, err
		}
	}
	return borderscan.CutStrip(s.render(n), edge, offset)
}

// StripCalls returns the strip requests served so far.
func (s *SyntheticSource) StripCalls() []StripCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StripCall, len(s.stripCalls))
	copy(out, s.stripCalls)
	return out
}

// StripCallsFor returns the strip requests for one edge.
func (s *SyntheticSource) StripCallsFor(edge borderscan.Edge) []StripCall {
	var out []StripCall
	for _, call := range s.StripCalls() {
		if call.Edge == edge {
			out = append(out, call)
		}
	}
	return out
}

// FrameCalls returns the frame indices requested so far.
func (s *SyntheticSource) FrameCalls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.frameCalls))
	copy(out, s.frameCalls)
	return out
}

func (s *SyntheticSource) render(n int) *plane.Plane {
	p := plane.NewPlane(s.info.LumaFormat(), s.info.Width, s.info.Height)
	p.Fill(s.background)
	if s.paint != nil {
		s.paint(n, p)
	}
	return p
}

// PaintStrip sets every sample of the strip at the given inward offset from
// edge to value.
func PaintStrip(p *plane.Plane, edge borderscan.Edge, offset int, value float64) {
	pos := borderscan.StripPosition(edge, offset, p.Width, p.Height)
	if edge.Vertical() {
		for y := 0; y < p.Height; y++ {
			p.Set(pos, y, value)
		}
		return
	}
	for x := 0; x < p.Width; x++ {
		p.Set(x, pos, value)
	}
}

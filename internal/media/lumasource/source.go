package lumasource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"linesdiff/internal/borderscan"
	"linesdiff/internal/logging"
	"linesdiff/internal/plane"
	"linesdiff/internal/services"
)

// Opener starts a fresh decode at frame 0 and returns the raw sample stream.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// Option customizes a Source.
type Option func(*Source)

// WithLogger sets the logger used for decoder restarts.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logging.NewComponentLogger(logger, "lumasource")
	}
}

// Source serves luma frames and strips of one clip. It implements
// borderscan.FrameSource and borderscan.StripProvider.
type Source struct {
	mu     sync.Mutex
	info   plane.VideoInfo
	format plane.Format
	open   Opener
	logger *slog.Logger

	stream     io.ReadCloser
	reader     *bufio.Reader
	next       int
	frameBytes int

	cached   *plane.Plane
	cachedN  int
	restarts int
}

// Open builds a Source that decodes path with the ffmpeg binary.
func Open(path, binary string, info plane.VideoInfo, opts ...Option) (*Source, error) {
	format := info.LumaFormat()
	if !format.Valid() {
		return nil, services.Wrap(services.ErrConfiguration, "lumasource", "open",
			fmt.Sprintf("pixel format %s has no decodable luma plane", info.PixelFormat.Name), nil)
	}
	return NewRaw(info, ffmpegOpener(binary, path, format.LumaPixelFormat()), opts...)
}

// NewRaw builds a Source over an arbitrary raw luma stream in the layout
// described by info.LumaFormat().
func NewRaw(info plane.VideoInfo, open Opener, opts ...Option) (*Source, error) {
	format := info.LumaFormat()
	if !format.Valid() || info.Width <= 0 || info.Height <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "lumasource", "open",
			fmt.Sprintf("unusable clip %dx%d %s", info.Width, info.Height, format), nil)
	}
	if open == nil {
		return nil, services.Wrap(services.ErrConfiguration, "lumasource", "open", "no stream opener", nil)
	}
	s := &Source{
		info:       info,
		format:     format,
		open:       open,
		logger:     logging.NewComponentLogger(nil, "lumasource"),
		frameBytes: info.Width * info.Height * format.BytesPerSample(),
		cachedN:    -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Info implements borderscan.FrameSource.
func (s *Source) Info() plane.VideoInfo {
	return s.info
}

// Frame implements borderscan.FrameSource. The returned frame has its own
// property set; its plane is shared with the cache and must not be modified.
func (s *Source) Frame(ctx context.Context, n int) (*plane.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load(ctx, n)
	if err != nil {
		return nil, err
	}
	return plane.NewFrame(n, p), nil
}

// LumaStrip implements borderscan.StripProvider.
func (s *Source) LumaStrip(ctx context.Context, n int, edge borderscan.Edge, offset int) (plane.Strip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load(ctx, n)
	if err != nil {
		return plane.Strip{}, err
	}
	strip, err := borderscan.CutStrip(p, edge, offset)
	if err != nil {
		return plane.Strip{}, services.Wrap(services.ErrFrameUnavailable, "lumasource", "strip",
			fmt.Sprintf("frame %d %s offset %d", n, edge, offset), err)
	}
	return strip, nil
}

// Restarts reports how many times the decoder was restarted to serve an
// earlier frame.
func (s *Source) Restarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts
}

// Close stops the decoder.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeStream()
}

func (s *Source) closeStream() error {
	if s.stream == nil {
		return nil
	}
	err := s.stream.Close()
	s.stream = nil
	s.reader = nil
	s.next = 0
	return err
}

func (s *Source) load(ctx context.Context, n int) (*plane.Plane, error) {
	if n < 0 || (s.info.NumFrames > 0 && n >= s.info.NumFrames) {
		return nil, s.unavailable(n, "outside clip", nil)
	}
	if s.cached != nil && s.cachedN == n {
		return s.cached, nil
	}
	if s.stream != nil && n < s.next {
		s.logger.Debug("restarting decoder for earlier frame",
			logging.Int(logging.FieldFrame, n),
			logging.Int("decode_position", s.next),
		)
		_ = s.closeStream()
		s.restarts++
	}
	if s.stream == nil {
		stream, err := s.open(ctx)
		if err != nil {
			return nil, s.unavailable(n, "open stream", err)
		}
		s.stream = stream
		s.reader = bufio.NewReaderSize(stream, s.frameBytes)
		s.next = 0
	}

	for s.next <= n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		buf := make([]byte, s.frameBytes)
		if _, err := io.ReadFull(s.reader, buf); err != nil {
			decoded := s.next
			_ = s.closeStream()
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, s.unavailable(n, fmt.Sprintf("stream ended after %d frames", decoded), err)
			}
			return nil, s.unavailable(n, "read", err)
		}
		p, err := plane.WrapPlane(s.format, s.info.Width, s.info.Height, buf)
		if err != nil {
			return nil, s.unavailable(n, "wrap", err)
		}
		s.cached = p
		s.cachedN = s.next
		s.next++
	}
	return s.cached, nil
}

func (s *Source) unavailable(n int, message string, err error) error {
	return services.Wrap(services.ErrFrameUnavailable, "lumasource", "decode", fmt.Sprintf("frame %d: %s", n, message), err)
}

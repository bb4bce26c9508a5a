package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"linesdiff/internal/plane"
	"linesdiff/internal/services"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index            int    `json:"index"`
	CodecName        string `json:"codec_name"`
	CodecType        string `json:"codec_type"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	PixFmt           string `json:"pix_fmt"`
	BitsPerRawSample string `json:"bits_per_raw_sample"`
	NBFrames         string `json:"nb_frames"`
	NBReadFrames     string `json:"nb_read_frames"`
	RFrameRate       string `json:"r_frame_rate"`
	AvgFrameRate     string `json:"avg_frame_rate"`
	Duration         string `json:"duration"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	return run(ctx, binary, path, "-show_format", "-show_streams")
}

// CountFrames decodes the first video stream and returns the number of frames
// read. It is slow and only needed when the container does not record
// nb_frames.
func CountFrames(ctx context.Context, binary string, path string) (int, error) {
	result, err := run(ctx, binary, path, "-select_streams", "v:0", "-count_frames", "-show_entries", "stream=nb_read_frames")
	if err != nil {
		return 0, err
	}
	if len(result.Streams) == 0 {
		return 0, toolError("count frames", "no video stream", nil)
	}
	n, err := strconv.Atoi(strings.TrimSpace(result.Streams[0].NBReadFrames))
	if err != nil || n <= 0 {
		return 0, toolError("count frames", fmt.Sprintf("unusable nb_read_frames %q", result.Streams[0].NBReadFrames), err)
	}
	return n, nil
}

// Probe inspects path and returns the scan-relevant description of its first
// video stream, counting frames when the container does not record them.
func Probe(ctx context.Context, binary string, path string) (plane.VideoInfo, Result, error) {
	result, err := Inspect(ctx, binary, path)
	if err != nil {
		return plane.VideoInfo{}, Result{}, err
	}
	info, err := result.VideoInfo()
	if err != nil {
		return plane.VideoInfo{}, result, err
	}
	if info.NumFrames <= 0 {
		count, err := CountFrames(ctx, binary, path)
		if err != nil {
			return plane.VideoInfo{}, result, err
		}
		info.NumFrames = count
	}
	return info, result, nil
}

func run(ctx context.Context, binary string, path string, args ...string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, toolError("inspect", "empty path", nil)
	}

	full := append([]string{"-v", "error", "-hide_banner"}, args...)
	full = append(full, "-of", "json", "--", path)
	cmd := exec.CommandContext(ctx, binary, full...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		detail := ""
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return Result{}, toolError("inspect", detail, err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, toolError("parse", "", err)
	}
	result.raw = append([]byte(nil), output...)
	return result, nil
}

func toolError(operation, message string, err error) error {
	return services.Wrap(services.ErrExternalTool, "ffprobe", operation, message, err)
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// VideoStream returns the first video stream.
func (r Result) VideoStream() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, true
		}
	}
	return Stream{}, false
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			count++
		}
	}
	return count
}

// VideoInfo converts the first video stream into a plane.VideoInfo.
// NumFrames is 0 when the container does not record a frame count.
// Pixel formats that cannot be scanned still parse; the filter rejects them
// with a descriptive message.
func (r Result) VideoInfo() (plane.VideoInfo, error) {
	stream, ok := r.VideoStream()
	if !ok {
		return plane.VideoInfo{}, services.Wrap(services.ErrValidation, "ffprobe", "video info", "no video stream", nil)
	}
	pf, err := plane.ParsePixelFormat(stream.PixFmt)
	if err != nil {
		return plane.VideoInfo{}, services.Wrap(services.ErrConfiguration, "ffprobe", "video info", "", err)
	}
	frames := 0
	if n, err := strconv.Atoi(strings.TrimSpace(stream.NBFrames)); err == nil && n > 0 {
		frames = n
	}
	return plane.VideoInfo{
		Width:       stream.Width,
		Height:      stream.Height,
		NumFrames:   frames,
		PixelFormat: pf,
	}, nil
}

// FrameRate returns the stream frame rate parsed from r_frame_rate
// ("num/den"), falling back to avg_frame_rate. It returns 0 when unknown.
func (s Stream) FrameRate() float64 {
	for _, value := range []string{s.RFrameRate, s.AvgFrameRate} {
		if rate := parseRational(value); rate > 0 {
			return rate
		}
	}
	return 0
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

func parseRational(value string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		f := parseFloat(num)
		if math.IsNaN(f) {
			return 0
		}
		return f
	}
	n, errN := strconv.ParseFloat(num, 64)
	d, errD := strconv.ParseFloat(den, 64)
	if errN != nil || errD != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

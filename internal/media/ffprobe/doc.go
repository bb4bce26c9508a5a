// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties, including the pixel format,
//     frame count and frame rate needed to scan a clip
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - CountFrames: decodes the first video stream to count its frames
//   - Probe: Inspect plus a frame count fallback, converted to plane.VideoInfo
package ffprobe

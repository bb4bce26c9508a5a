package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"linesdiff/internal/plane"
)

// WriteRawFrames writes frames as a headerless little-endian luma stream, the
// layout ffmpeg produces for -f rawvideo -pix_fmt gray*. It returns the path.
func WriteRawFrames(t testing.TB, dir string, frames ...*plane.Plane) string {
	t.Helper()

	path := filepath.Join(dir, "frames.raw")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	for _, p := range frames {
		if _, err := f.Write(RawBytes(p)); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return path
}

// RawBytes returns the tightly packed rawvideo bytes of p.
func RawBytes(p *plane.Plane) []byte {
	rowBytes := p.Width * p.Format.BytesPerSample()
	out := make([]byte, 0, rowBytes*p.Height)
	for y := 0; y < p.Height; y++ {
		start := y * p.Stride
		out = append(out, p.Data[start:start+rowBytes]...)
	}
	return out
}

package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// FFmpegRequirements returns the ffmpeg and ffprobe requirements for the
// configured binaries.
func FFmpegRequirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegBinary,
			Description: "Decodes luma frames for scanning",
		},
		{
			Name:        "FFprobe",
			Command:     ffprobeBinary,
			Description: "Reads clip dimensions, pixel format and frame count",
		},
	}
}

// WithVersions fills Version for every available status with the first line
// of "<command> -version". Failures leave Version empty.
func WithVersions(ctx context.Context, statuses []Status) []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	for i := range out {
		if !out[i].Available {
			continue
		}
		out[i].Version = toolVersion(ctx, out[i].Command)
	}
	return out
}

func toolVersion(ctx context.Context, command string) string {
	versionCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	output, err := exec.CommandContext(versionCtx, command, "-version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(line)
}

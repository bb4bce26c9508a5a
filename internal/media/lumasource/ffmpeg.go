package lumasource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"linesdiff/internal/services"
)

// decodeArgs returns the ffmpeg arguments that write the first video stream
// of path to stdout as headerless luma samples in pixFmt.
func decodeArgs(path, pixFmt string) []string {
	return ffmpeg.Input(path).
		Output("pipe:1", ffmpeg.KwArgs{
			"map":      "0:v:0",
			"format":   "rawvideo",
			"pix_fmt":  pixFmt,
			"fps_mode": "passthrough",
		}).
		GlobalArgs("-hide_banner", "-loglevel", "error", "-nostdin").
		GetArgs()
}

// process is a running ffmpeg decode whose stdout is the frame stream.
type process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	cancel context.CancelFunc
}

func ffmpegOpener(binary, path, pixFmt string) Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		if strings.TrimSpace(binary) == "" {
			binary = "ffmpeg"
		}
		procCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		cmd := exec.CommandContext(procCtx, binary, decodeArgs(path, pixFmt)...)
		stderr := &bytes.Buffer{}
		cmd.Stderr = stderr
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			cancel()
			return nil, services.Wrap(services.ErrExternalTool, "lumasource", "start ffmpeg", "", err)
		}
		if err := cmd.Start(); err != nil {
			cancel()
			return nil, services.Wrap(services.ErrExternalTool, "lumasource", "start ffmpeg", binary, err)
		}
		return &process{cmd: cmd, stdout: stdout, stderr: stderr, cancel: cancel}, nil
	}
}

func (p *process) Read(b []byte) (int, error) {
	n, err := p.stdout.Read(b)
	if errors.Is(err, io.EOF) {
		if waitErr := p.cmd.Wait(); waitErr != nil {
			p.cmd = nil
			return n, fmt.Errorf("ffmpeg: %w: %s", waitErr, strings.TrimSpace(p.stderr.String()))
		}
		p.cmd = nil
	}
	return n, err
}

// Close stops the decoder. Killing a decoder that is still producing frames
// is expected, so its exit status is ignored.
func (p *process) Close() error {
	p.cancel()
	if p.cmd != nil {
		_ = p.cmd.Wait()
		p.cmd = nil
	}
	return nil
}

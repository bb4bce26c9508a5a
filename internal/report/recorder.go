package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/gofrs/flock"

	"linesdiff/internal/fileutil"
	"linesdiff/internal/services"
)

// Mode selects when the report is written.
type Mode string

const (
	// ModeBatch writes the whole log once, when the final frame is classified.
	ModeBatch Mode = "batch"
	// ModeAppend appends each entry right after its frame is classified.
	ModeAppend Mode = "append"
)

const reportFileMode = 0o644

// Options configures a Recorder.
type Options struct {
	Path   string
	Mode   Mode
	Format LineFormat
}

// Recorder owns the in-memory log of findings and its persisted copy.
// It is not safe for concurrent use; the owning filter serializes access.
type Recorder struct {
	path   string
	mode   Mode
	format LineFormat
	lock   *flock.Flock

	entries   []Entry
	pending   bool
	lastFrame int
	written   bool
}

// NewRecorder validates opts. An empty path in batch mode yields a disabled
// recorder; append mode requires a path.
func NewRecorder(opts Options) (*Recorder, error) {
	path := strings.TrimSpace(opts.Path)
	mode := opts.Mode
	if mode == "" {
		mode = ModeBatch
	}
	if mode != ModeBatch && mode != ModeAppend {
		return nil, services.Wrap(services.ErrConfiguration, "report", "", fmt.Sprintf("mode must be %q or %q, got %q", ModeBatch, ModeAppend, opts.Mode), nil)
	}
	if mode == ModeAppend && path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "report", "", "flush requires a report path", nil)
	}
	format, err := ParseLineFormat(string(opts.Format))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "report", "", "", err)
	}

	r := &Recorder{path: path, mode: mode, format: format, lastFrame: -1}
	if path != "" {
		r.lock = flock.New(path + ".lock")
	}
	return r, nil
}

// Enabled reports whether findings are persisted.
func (r *Recorder) Enabled() bool {
	return r != nil && r.path != ""
}

// Path returns the report file path, or "" when disabled.
func (r *Recorder) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}

// Mode returns the write mode.
func (r *Recorder) Mode() Mode {
	return r.mode
}

// Record appends an entry to the log.
func (r *Recorder) Record(entry Entry) {
	if !r.Enabled() {
		return
	}
	r.entries = append(r.entries, entry)
	r.pending = true
	r.lastFrame = entry.Frame
}

// FlushIfDue persists the log according to the recorder mode. In append mode
// the newest entry is appended when it belongs to frame. In batch mode the
// whole log replaces the report the first time isLast is true. A failed write
// leaves the in-memory log untouched.
func (r *Recorder) FlushIfDue(frame int, isLast bool) error {
	if !r.Enabled() {
		return nil
	}
	switch r.mode {
	case ModeAppend:
		if !r.pending || r.lastFrame != frame {
			return nil
		}
		r.pending = false
		line := r.format.Line(r.entries[len(r.entries)-1])
		return r.withLock("append", func() error {
			return fileutil.AppendLine(r.path, line, reportFileMode)
		})
	default:
		if !isLast || r.written {
			return nil
		}
		r.written = true
		var b strings.Builder
		for _, e := range r.entries {
			b.WriteString(r.format.Line(e))
			b.WriteByte('\n')
		}
		data := []byte(b.String())
		return r.withLock("batch", func() error {
			return fileutil.WriteFileAtomic(r.path, data, reportFileMode)
		})
	}
}

// Entries returns a copy of the log.
func (r *Recorder) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of logged entries.
func (r *Recorder) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Close releases the report lock and removes its "<report>.lock" sidecar.
// Flushing after Close recreates the sidecar.
func (r *Recorder) Close() error {
	if !r.Enabled() || r.lock == nil {
		return nil
	}
	if err := r.lock.Close(); err != nil {
		return services.Wrap(services.ErrReportWrite, "report", "close", "unlock "+r.lock.Path(), err)
	}
	if err := os.Remove(r.lock.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrReportWrite, "report", "close", "remove "+r.lock.Path(), err)
	}
	return nil
}

func (r *Recorder) withLock(operation string, write func() error) error {
	if err := r.lock.Lock(); err != nil {
		return services.Wrap(services.ErrReportWrite, "report", operation, "lock "+r.lock.Path(), err)
	}
	defer func() { _ = r.lock.Unlock() }()
	if err := write(); err != nil {
		return services.Wrap(services.ErrReportWrite, "report", operation, r.path, err)
	}
	return nil
}

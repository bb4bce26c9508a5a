package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"linesdiff/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Scan contains per-edge depths and thresholds. Thresholds left unset in the
// file are filled with the default for the selected threshold mode.
type Scan struct {
	Left          int      `toml:"left"`
	Top           int      `toml:"top"`
	Right         int      `toml:"right"`
	Bottom        int      `toml:"bottom"`
	TL            *float64 `toml:"tl"`
	TT            *float64 `toml:"tt"`
	TR            *float64 `toml:"tr"`
	TB            *float64 `toml:"tb"`
	ThresholdMode string   `toml:"threshold_mode"`
	TagMode       string   `toml:"tag_mode"`
}

// Report contains configuration for the findings report file.
type Report struct {
	Path   string `toml:"path"`
	Flush  bool   `toml:"flush"`
	Format string `toml:"format"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// History contains configuration for the run history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Tools names the external binaries used for probing and decoding.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Config encapsulates all configuration values for linesdiff.
//
// Configuration sections:
//   - Scan: per-edge depth and threshold, threshold and tag modes
//   - Report: report file path, flush behaviour and line format
//   - Logging: log format, level and optional log directory
//   - History: sqlite run history
//   - Tools: ffmpeg/ffprobe binaries
type Config struct {
	Scan    Scan    `toml:"scan"`
	Report  Report  `toml:"report"`
	Logging Logging `toml:"logging"`
	History History `toml:"history"`
	Tools   Tools   `toml:"tools"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A missing file
// yields defaults. Failures are reported as services.ErrConfiguration.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, configError("resolve path", err)
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, configError("open", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, configError("parse", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, configError("normalize", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, configError("validate", err)
	}

	return &cfg, resolvedPath, exists, nil
}

// Finalize normalizes and validates a config assembled in code, for example
// after CLI flag overrides were applied.
func (c *Config) Finalize() error {
	if err := c.normalize(); err != nil {
		return configError("normalize", err)
	}
	if err := c.Validate(); err != nil {
		return configError("validate", err)
	}
	return nil
}

func configError(operation string, err error) error {
	var tomlErr *toml.DecodeError
	if errors.As(err, &tomlErr) {
		row, col := tomlErr.Position()
		return services.Wrap(services.ErrConfiguration, "config", operation, fmt.Sprintf("line %d, column %d", row, col), err)
	}
	return services.Wrap(services.ErrConfiguration, "config", operation, "", err)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Depths returns the scan depths in left, top, right, bottom order.
func (c *Config) Depths() [4]int {
	return [4]int{c.Scan.Left, c.Scan.Top, c.Scan.Right, c.Scan.Bottom}
}

// Thresholds returns the thresholds in left, top, right, bottom order. Unset
// thresholds resolve to the default for the configured mode.
func (c *Config) Thresholds() [4]float64 {
	fallback := defaultThresholdFor(c.Scan.ThresholdMode)
	out := [4]float64{}
	for i, value := range []*float64{c.Scan.TL, c.Scan.TT, c.Scan.TR, c.Scan.TB} {
		if value == nil {
			out[i] = fallback
			continue
		}
		out[i] = *value
	}
	return out
}

// ReportMode returns "append" when every finding is flushed immediately and
// "batch" otherwise.
func (c *Config) ReportMode() string {
	if c.Report.Flush {
		return "append"
	}
	return "batch"
}

// EnsureDirectories creates the directories the configured outputs live in.
func (c *Config) EnsureDirectories() error {
	dirs := []string{}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	if c.History.Enabled && c.History.Path != "" {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for decoding.
func (c *Config) FFmpegBinary() string {
	if c == nil || strings.TrimSpace(c.Tools.FFmpeg) == "" {
		return defaultFFmpegBinary
	}
	return c.Tools.FFmpeg
}

// FFprobeBinary returns the ffprobe executable used for stream inspection.
func (c *Config) FFprobeBinary() string {
	if c == nil || strings.TrimSpace(c.Tools.FFprobe) == "" {
		return defaultFFprobeBinary
	}
	return c.Tools.FFprobe
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

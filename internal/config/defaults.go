package config

const (
	defaultConfigPath          = "~/.config/linesdiff/config.toml"
	projectConfigName          = "linesdiff.toml"
	defaultDepth               = 5
	defaultNormalizedThreshold = 0.14
	defaultRawThreshold        = 2.5
	defaultThresholdMode       = "normalized"
	defaultTagMode             = "edge"
	defaultReportFormat        = "detailed"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultHistoryPath         = "~/.local/share/linesdiff/history.db"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Scan: Scan{
			Left:          defaultDepth,
			Top:           defaultDepth,
			Right:         defaultDepth,
			Bottom:        defaultDepth,
			ThresholdMode: defaultThresholdMode,
			TagMode:       defaultTagMode,
		},
		Report: Report{
			Format: defaultReportFormat,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Path: defaultHistoryPath,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
	}
}

func defaultThresholdFor(mode string) float64 {
	if mode == "raw" {
		return defaultRawThreshold
	}
	return defaultNormalizedThreshold
}

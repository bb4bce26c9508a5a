package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeScan()
	if err := c.normalizeReport(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeTools()
	return nil
}

func (c *Config) normalizeScan() {
	c.Scan.ThresholdMode = lowerOrDefault(c.Scan.ThresholdMode, defaultThresholdMode)
	c.Scan.TagMode = lowerOrDefault(c.Scan.TagMode, defaultTagMode)
}

func (c *Config) normalizeReport() error {
	c.Report.Format = lowerOrDefault(c.Report.Format, defaultReportFormat)
	c.Report.Path = strings.TrimSpace(c.Report.Path)
	var err error
	if c.Report.Path, err = expandPath(c.Report.Path); err != nil {
		return fmt.Errorf("report.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = lowerOrDefault(c.Logging.Format, defaultLogFormat)
	c.Logging.Level = lowerOrDefault(c.Logging.Level, defaultLogLevel)
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
}

func lowerOrDefault(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}

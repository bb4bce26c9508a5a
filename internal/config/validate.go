package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScan() error {
	var negative []string
	names := [4]string{"left", "top", "right", "bottom"}
	for i, depth := range c.Depths() {
		if depth < 0 {
			negative = append(negative, names[i])
		}
	}
	if len(negative) > 0 {
		return fmt.Errorf("scan.%s must be greater than or equal to 0", strings.Join(negative, ", scan."))
	}

	thresholdNames := [4]string{"tl", "tt", "tr", "tb"}
	thresholds := c.Thresholds()
	switch c.Scan.ThresholdMode {
	case "normalized":
		for i, value := range thresholds {
			if math.IsNaN(value) || value < 0 || value > 1 {
				return fmt.Errorf("scan.%s must be between 0.0..1.0", thresholdNames[i])
			}
		}
	case "raw":
		// The upper bound depends on the clip bit depth and is checked when
		// the filter is built.
		for i, value := range thresholds {
			if math.IsNaN(value) || value < 0 {
				return fmt.Errorf("scan.%s must be greater than or equal to 0", thresholdNames[i])
			}
		}
	default:
		return fmt.Errorf("scan.threshold_mode must be normalized or raw, got %q", c.Scan.ThresholdMode)
	}

	switch c.Scan.TagMode {
	case "edge", "shared":
	default:
		return fmt.Errorf("scan.tag_mode must be edge or shared, got %q", c.Scan.TagMode)
	}
	return nil
}

func (c *Config) validateReport() error {
	switch c.Report.Format {
	case "detailed", "frames":
	default:
		return fmt.Errorf("report.format must be detailed or frames, got %q", c.Report.Format)
	}
	if c.Report.Flush && c.Report.Path == "" {
		return errors.New("report.flush requires report.path")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

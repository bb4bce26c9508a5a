package borderscan

import (
	"fmt"
	"math"
	"strings"

	"linesdiff/internal/plane"
	"linesdiff/internal/services"
)

// ThresholdMode selects how edge thresholds are expressed.
type ThresholdMode string

const (
	// ThresholdNormalized thresholds are fractions of the peak sample value.
	ThresholdNormalized ThresholdMode = "normalized"
	// ThresholdRaw thresholds are in sample units and divided by the peak
	// value when the filter is built.
	ThresholdRaw ThresholdMode = "raw"
)

// TagMode selects the frame property keys written for a verdict.
type TagMode string

const (
	// TagPerEdge writes LinesDiffLeft, LinesDiffTop, LinesDiffRight or LinesDiffBottom.
	TagPerEdge TagMode = "edge"
	// TagShared writes LinesDiff with the diff and LinesDiffEdge with the edge ordinal.
	TagShared TagMode = "shared"
)

const (
	DefaultDepth               = 5
	DefaultNormalizedThreshold = 0.14
	DefaultRawThreshold        = 2.5
)

// EdgeConfig controls the scan of a single edge.
type EdgeConfig struct {
	// Depth is the number of adjacent strip pairs examined; 0 disables the edge.
	Depth int
	// Threshold is compared against the normalized metric (strictly greater
	// than counts as a crossing).
	Threshold float64
}

// Settings holds the per-edge scan configuration of a Filter.
type Settings struct {
	Edges         [EdgeCount]EdgeConfig
	ThresholdMode ThresholdMode
	TagMode       TagMode
}

// DefaultSettings returns depth 5 on every edge with the mode's default threshold.
func DefaultSettings(mode ThresholdMode) Settings {
	threshold := DefaultNormalizedThreshold
	if mode == ThresholdRaw {
		threshold = DefaultRawThreshold
	} else {
		mode = ThresholdNormalized
	}
	s := Settings{ThresholdMode: mode, TagMode: TagPerEdge}
	for _, edge := range Edges {
		s.Edges[edge] = EdgeConfig{Depth: DefaultDepth, Threshold: threshold}
	}
	return s
}

// resolve validates the settings against the clip and returns edge configs
// with thresholds expressed on the normalized scale.
func (s Settings) resolve(info plane.VideoInfo) ([EdgeCount]EdgeConfig, error) {
	var resolved [EdgeCount]EdgeConfig

	pf := info.PixelFormat
	if !pf.IsPlanar() || pf.IsRGB() {
		return resolved, configError(fmt.Sprintf("clip must be in YUV planar format (got %s, %s)", pf.Name, pf.Layout))
	}
	format := info.LumaFormat()
	if !format.Valid() {
		return resolved, configError(fmt.Sprintf("unsupported luma sample format %s", format))
	}
	if info.Width <= 0 || info.Height <= 0 {
		return resolved, configError(fmt.Sprintf("invalid clip dimensions %dx%d", info.Width, info.Height))
	}

	mode := s.ThresholdMode
	if mode == "" {
		mode = ThresholdNormalized
	}
	if mode != ThresholdNormalized && mode != ThresholdRaw {
		return resolved, configError(fmt.Sprintf("threshold mode must be %q or %q, got %q", ThresholdNormalized, ThresholdRaw, mode))
	}
	switch s.TagMode {
	case "", TagPerEdge, TagShared:
	default:
		return resolved, configError(fmt.Sprintf("tag mode must be %q or %q, got %q", TagPerEdge, TagShared, s.TagMode))
	}

	var negative []string
	for _, edge := range Edges {
		if s.Edges[edge].Depth < 0 {
			negative = append(negative, edge.String())
		}
	}
	if len(negative) > 0 {
		return resolved, configError(fmt.Sprintf("%s must be greater than or equal to 0", strings.Join(negative, ", ")))
	}

	peak := format.Peak()
	for _, edge := range Edges {
		cfg := s.Edges[edge]
		name := thresholdName(edge)
		switch mode {
		case ThresholdNormalized:
			if math.IsNaN(cfg.Threshold) || cfg.Threshold < 0 || cfg.Threshold > 1 {
				return resolved, configError(fmt.Sprintf("%s must be between 0.0..1.0", name))
			}
		case ThresholdRaw:
			if math.IsNaN(cfg.Threshold) || cfg.Threshold < 0 || cfg.Threshold > peak {
				return resolved, configError(fmt.Sprintf("%s must be between 0..%g for %s samples", name, peak, format))
			}
			cfg.Threshold /= peak
		}
		if extent := edge.extent(info.Width, info.Height); cfg.Depth >= extent {
			return resolved, configError(fmt.Sprintf("%s depth %d needs %d strips but the clip has %d", edge, cfg.Depth, cfg.Depth+1, extent))
		}
		resolved[edge] = cfg
	}
	return resolved, nil
}

func thresholdName(edge Edge) string {
	switch edge {
	case Left:
		return "tl"
	case Top:
		return "tt"
	case Right:
		return "tr"
	default:
		return "tb"
	}
}

func configError(message string) error {
	return services.Wrap(services.ErrConfiguration, "borderscan", "", message, nil)
}

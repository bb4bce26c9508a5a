package borderscan

import "linesdiff/internal/plane"

const (
	TagLeft   = "LinesDiffLeft"
	TagTop    = "LinesDiffTop"
	TagRight  = "LinesDiffRight"
	TagBottom = "LinesDiffBottom"
	// TagDiff and TagEdge are used in shared tag mode.
	TagDiff = "LinesDiff"
	TagEdge = "LinesDiffEdge"
)

// Tagger attaches verdict properties to frames handed back to the driver.
type Tagger interface {
	SetTag(frame *plane.Frame, key string, value float64)
	HasTag(frame *plane.Frame, key string) bool
}

// PropTagger stores tags as frame properties.
type PropTagger struct{}

func (PropTagger) SetTag(frame *plane.Frame, key string, value float64) {
	frame.SetProp(key, value)
}

func (PropTagger) HasTag(frame *plane.Frame, key string) bool {
	return frame.HasProp(key)
}

// EdgeTag returns the per-edge property key.
func EdgeTag(edge Edge) string {
	switch edge {
	case Left:
		return TagLeft
	case Top:
		return TagTop
	case Right:
		return TagRight
	default:
		return TagBottom
	}
}

func applyTags(tagger Tagger, mode TagMode, frame *plane.Frame, verdict FrameVerdict) {
	for _, ev := range verdict.Edges {
		if mode == TagShared {
			tagger.SetTag(frame, TagDiff, ev.Diff)
			tagger.SetTag(frame, TagEdge, float64(ev.Edge))
			continue
		}
		tagger.SetTag(frame, EdgeTag(ev.Edge), ev.Diff)
	}
}

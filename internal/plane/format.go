package plane

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SampleKind distinguishes integer samples from floating-point samples.
type SampleKind uint8

const (
	KindInteger SampleKind = iota
	KindFloat
)

// Format describes how luma samples are stored.
type Format struct {
	Kind     SampleKind
	BitDepth int
}

var (
	Gray8     = Format{Kind: KindInteger, BitDepth: 8}
	Gray10    = Format{Kind: KindInteger, BitDepth: 10}
	Gray12    = Format{Kind: KindInteger, BitDepth: 12}
	Gray14    = Format{Kind: KindInteger, BitDepth: 14}
	Gray16    = Format{Kind: KindInteger, BitDepth: 16}
	GrayFloat = Format{Kind: KindFloat, BitDepth: 32}
)

// Valid reports whether the format is one of the supported sample layouts.
func (f Format) Valid() bool {
	switch f.Kind {
	case KindInteger:
		switch f.BitDepth {
		case 8, 10, 12, 14, 16:
			return true
		}
	case KindFloat:
		return f.BitDepth == 32
	}
	return false
}

// BytesPerSample returns the storage size of one sample.
func (f Format) BytesPerSample() int {
	switch {
	case f.Kind == KindFloat:
		return 4
	case f.BitDepth > 8:
		return 2
	default:
		return 1
	}
}

// Peak returns the largest representable sample value: 2^bits-1 for integer
// samples and 1.0 for float samples.
func (f Format) Peak() float64 {
	if f.Kind == KindFloat {
		return 1
	}
	return float64(uint32(1)<<uint(f.BitDepth) - 1)
}

// LumaPixelFormat returns the ffmpeg gray pixel format that carries samples in
// this layout.
func (f Format) LumaPixelFormat() string {
	if f.Kind == KindFloat {
		return "grayf32le"
	}
	if f.BitDepth == 8 {
		return "gray"
	}
	return "gray" + strconv.Itoa(f.BitDepth) + "le"
}

func (f Format) String() string {
	if f.Kind == KindFloat {
		return "float32"
	}
	return strconv.Itoa(f.BitDepth) + "-bit"
}

// Layout classifies how a pixel format arranges its planes.
type Layout uint8

const (
	LayoutUnknown Layout = iota
	LayoutPlanarYUV
	LayoutGray
	LayoutSemiPlanar
	LayoutPacked
	LayoutRGB
)

func (l Layout) String() string {
	switch l {
	case LayoutPlanarYUV:
		return "planar yuv"
	case LayoutGray:
		return "gray"
	case LayoutSemiPlanar:
		return "semi-planar"
	case LayoutPacked:
		return "packed"
	case LayoutRGB:
		return "rgb"
	default:
		return "unknown"
	}
}

// PixelFormat is a parsed ffmpeg pixel format name.
type PixelFormat struct {
	Name   string
	Layout Layout
	Luma   Format
}

// IsPlanar reports whether every component lives in its own plane.
func (p PixelFormat) IsPlanar() bool {
	return p.Layout == LayoutPlanarYUV || p.Layout == LayoutGray
}

// IsRGB reports whether the format carries RGB rather than luma/chroma.
func (p PixelFormat) IsRGB() bool {
	return p.Layout == LayoutRGB
}

// NumComponents returns 1 for gray formats and 3 or more otherwise.
func (p PixelFormat) NumComponents() int {
	if p.Layout == LayoutGray {
		return 1
	}
	if strings.HasPrefix(p.Name, "yuva") {
		return 4
	}
	return 3
}

var (
	yuvPlanarPattern = regexp.MustCompile(`^(yuvj|yuva|yuv)4[0-4][0-4]p(\d+)?(le|be)?$`)
	grayPattern      = regexp.MustCompile(`^gray(f32|\d+)?(le|be)?$`)
	semiPlanarNames  = []string{"nv12", "nv21", "nv16", "nv20", "nv24", "nv42", "p010", "p012", "p016", "p210", "p212", "p216", "p410", "p412", "p416"}
	packedNames      = []string{"yuyv422", "uyvy422", "yvyu422", "uyyvyy411", "y210", "y212", "vuya", "vuyx", "ayuv64", "xv30", "xv36", "v30x", "y41p"}
	rgbPrefixes      = []string{"rgb", "bgr", "gbr", "argb", "abgr", "0rgb", "0bgr", "x2rgb", "x2bgr", "pal8", "monow", "monob"}
)

// ParsePixelFormat classifies an ffmpeg pixel format name. Non-planar and RGB
// formats parse successfully so callers can reject them with a precise
// message; names that cannot be classified, or planar formats with an
// unsupported bit depth, return an error.
func ParsePixelFormat(name string) (PixelFormat, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return PixelFormat{}, fmt.Errorf("pixel format: empty name")
	}
	pf := PixelFormat{Name: normalized}

	if m := grayPattern.FindStringSubmatch(normalized); m != nil {
		pf.Layout = LayoutGray
		switch m[1] {
		case "":
			pf.Luma = Gray8
		case "f32":
			pf.Luma = GrayFloat
		default:
			depth, _ := strconv.Atoi(m[1])
			pf.Luma = Format{Kind: KindInteger, BitDepth: depth}
		}
		if !pf.Luma.Valid() {
			return PixelFormat{}, fmt.Errorf("pixel format %q: unsupported bit depth", normalized)
		}
		return pf, nil
	}

	if m := yuvPlanarPattern.FindStringSubmatch(normalized); m != nil {
		pf.Layout = LayoutPlanarYUV
		depth := 8
		if m[2] != "" {
			depth, _ = strconv.Atoi(m[2])
		}
		pf.Luma = Format{Kind: KindInteger, BitDepth: depth}
		if !pf.Luma.Valid() {
			return PixelFormat{}, fmt.Errorf("pixel format %q: unsupported bit depth %d", normalized, depth)
		}
		return pf, nil
	}

	base := strings.TrimSuffix(strings.TrimSuffix(normalized, "le"), "be")
	for _, candidate := range semiPlanarNames {
		if base == candidate {
			pf.Layout = LayoutSemiPlanar
			return pf, nil
		}
	}
	for _, candidate := range packedNames {
		if base == candidate {
			pf.Layout = LayoutPacked
			return pf, nil
		}
	}
	for _, prefix := range rgbPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			pf.Layout = LayoutRGB
			return pf, nil
		}
	}
	return PixelFormat{}, fmt.Errorf("pixel format %q: unrecognized", normalized)
}

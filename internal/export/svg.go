package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/spirograph/internal/storage"
)

type SVGOptions struct {
	StrokeWidth float64
	Background  string
	// Scale multiplies canvas coordinates. Zero means 1.
	Scale float64
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{StrokeWidth: 2, Background: "#ffffff", Scale: 1}
}

// PatternColor gives each sub-pattern a distinct hue, stepping by the golden
// angle so neighbours stay apart.
func PatternColor(pattern int) string {
	hue := math.Mod(float64(pattern)*137.508, 360)
	return colorful.Hsl(hue, 0.8, 0.45).Hex()
}

// TraceToSVG draws the recorded trace in canvas coordinates, one polyline per
// run of drawn frames. A polyline breaks at every undrawn frame, so pattern
// restarts never connect.
func TraceToSVG(meta *storage.RunMetadata, trace []storage.TracePoint, opts SVGOptions) string {
	if meta == nil {
		return ""
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.StrokeWidth <= 0 {
		opts.StrokeWidth = 1
	}

	width := float64(meta.Width) * opts.Scale
	height := float64(meta.Height) * opts.Scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
`, width, height, width, height)
	if opts.Background != "" {
		fmt.Fprintf(&sb, "<rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", opts.Background)
	}

	for _, seg := range segments(trace) {
		fmt.Fprintf(&sb, `<polyline fill="none" stroke="%s" stroke-width="%.1f" stroke-linecap="round" stroke-linejoin="round" points="`,
			PatternColor(seg[0].Pattern), opts.StrokeWidth)
		for i, p := range seg {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", float64(p.X)*opts.Scale, float64(p.Y)*opts.Scale)
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// segments splits the trace into drawable polylines. Each starts at the
// anchor preceding its first drawn frame.
func segments(trace []storage.TracePoint) [][]storage.TracePoint {
	var out [][]storage.TracePoint
	var cur []storage.TracePoint
	for i, p := range trace {
		if !p.Drawn {
			if len(cur) > 1 {
				out = append(out, cur)
			}
			cur = nil
			continue
		}
		if cur == nil && i > 0 && trace[i-1].Pattern == p.Pattern {
			cur = append(cur, trace[i-1])
		}
		cur = append(cur, p)
	}
	if len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders a single-series bar chart.
func Bars(width, height int, series []float64, labels []string, opts Opts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	f, err := newFrame(width, height, opts)
	if err != nil {
		return "", err
	}
	fillColor := fallback(opts.FillColor, "rgba(44, 90, 160, 0.8)")
	strokeColor := fallback(opts.StrokeColor, "rgb(44, 90, 160)")

	minVal, maxVal := valueRange(series)
	scale := f.chartHeight / (maxVal - minVal)
	bottom := f.padding + f.chartHeight
	zeroY := bottom + minVal*scale

	slot := f.chartWidth / float64(len(series))
	barWidth := slot * 0.6

	var b strings.Builder
	f.open(&b, opts, "bar", "Bar chart", "Ranked values")
	f.grid(&b, opts, minVal, maxVal, zeroY)

	for i, value := range series {
		x := f.padding + float64(i)*slot + (slot-barWidth)/2
		y, h := barPosition(value, scale, zeroY, f.padding, bottom)
		fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" stroke=\"%s\" stroke-width=\"1\" aria-label=\"%s\"></rect>", x, y, barWidth, h, fillColor, strokeColor, template.HTMLEscapeString(labels[i]))
		f.categoryLabel(&b, f.padding+float64(i)*slot+slot/2, labels[i], opts.LabelRotation)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func barPosition(value, scale, zeroY, top, bottom float64) (float64, float64) {
	if value >= 0 {
		height := value * scale
		y := zeroY - height
		if y < top {
			height -= top - y
			y = top
		}
		return y, math.Max(height, 0)
	}
	height := math.Abs(value * scale)
	if zeroY+height > bottom {
		height = bottom - zeroY
	}
	return zeroY, math.Max(height, 0)
}

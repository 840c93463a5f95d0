package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders a single-series line chart with a shaded area.
func Line(width, height int, series []float64, labels []string, opts Opts) (template.HTML, error) {
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
	strokeColor := fallback(opts.StrokeColor, "rgb(44, 90, 160)")
	fillColor := fallback(opts.FillColor, "rgba(44, 90, 160, 0.1)")

	minVal, maxVal := valueRange(series)
	scale := f.chartHeight / (maxVal - minVal)
	base := f.padding + f.chartHeight
	zeroY := base + minVal*scale

	xAt := func(i int) float64 {
		if len(series) == 1 {
			return f.padding + f.chartWidth/2
		}
		return f.padding + float64(i)*f.chartWidth/float64(len(series)-1)
	}
	yAt := func(v float64) float64 {
		return base - (v-minVal)*scale
	}

	var path strings.Builder
	for i, value := range series {
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f", cmd, xAt(i), yAt(value))
	}

	var b strings.Builder
	f.open(&b, opts, "line", "Line chart", "Trend data")
	f.grid(&b, opts, minVal, maxVal, zeroY)

	area := fmt.Sprintf("%s L%.2f %.2f L%.2f %.2f Z", path.String(), xAt(len(series)-1), base, xAt(0), base)
	fmt.Fprintf(&b, "<path d=\"%s\" fill=\"%s\" stroke=\"none\" aria-hidden=\"true\"></path>", area, fillColor)
	fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", path.String(), strokeColor)
	for i, value := range series {
		fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"></circle>", xAt(i), yAt(value), strokeColor)
	}
	for i, label := range labels {
		f.categoryLabel(&b, xAt(i), label, opts.LabelRotation)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

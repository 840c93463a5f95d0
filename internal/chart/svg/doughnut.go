package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/fruitexport/portal/internal/chart"
)

// Doughnut renders segments proportional to series values with a legend
// on the right. Negative values count as zero.
func Doughnut(width, height int, series []float64, labels []string, opts Opts) (template.HTML, error) {
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
	palette := opts.Palette
	if len(palette) == 0 {
		palette = chart.StatusPalette[:]
	}

	total := 0.0
	for _, v := range series {
		total += math.Max(v, 0)
	}
	if almostEqual(total, 0) {
		return Empty(width, height, opts)
	}

	cy := float64(f.height) / 2
	radius := math.Min(f.chartHeight, f.chartWidth*0.6) / 2 * 0.8
	cx := f.padding + radius + radius*0.25
	strokeWidth := radius * 0.5
	circumference := 2 * math.Pi * radius

	var b strings.Builder
	f.open(&b, opts, "doughnut", "Doughnut chart", "Share by category")

	offset := 0.0
	for i, value := range series {
		share := math.Max(value, 0) / total * circumference
		color := palette[i%len(palette)]
		if share > 0 {
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\" stroke-dasharray=\"%.2f %.2f\" stroke-dashoffset=\"%.2f\" transform=\"rotate(-90 %.2f %.2f)\" aria-label=\"%s\"></circle>",
				cx, cy, radius, color, strokeWidth, share, circumference-share, -offset, cx, cy, template.HTMLEscapeString(labels[i]))
		}
		offset += share
	}

	legendX := cx + radius + strokeWidth + 24
	legendY := cy - float64(len(labels))*9
	for i, label := range labels {
		y := legendY + float64(i)*18
		fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", legendX, y-9, palette[i%len(palette)])
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"start\">%s (%s)</text>", legendX+16, y, f.axisColor, template.HTMLEscapeString(label), template.HTMLEscapeString(tickLabel(opts, series[i])))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

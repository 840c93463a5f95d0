package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/fruitexport/portal/internal/format"
)

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(series []float64) (float64, float64) {
	minVal := series[0]
	maxVal := series[0]
	for _, v := range series[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// valueRange widens bounds so zero is always on the axis.
func valueRange(series []float64) (float64, float64) {
	minVal, maxVal := bounds(series)
	if minVal > 0 {
		minVal = 0
	}
	if maxVal < 0 {
		maxVal = 0
	}
	if almostEqual(maxVal, minVal) {
		maxVal = minVal + 1
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return fmt.Sprintf("%s-%s", cleaned, suffix)
}

func tickLabel(opts Opts, v float64) string {
	if opts.TickFormat != nil {
		return opts.TickFormat(v)
	}
	return format.Number(math.Round(v))
}

type frame struct {
	width, height int
	padding       float64
	chartWidth    float64
	chartHeight   float64
	axisColor     string
	gridColor     string
	tickCount     int
}

func newFrame(width, height int, opts Opts) (frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	tickCount := opts.TickCount
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}
	f := frame{
		width:       width,
		height:      height,
		padding:     padding,
		chartWidth:  float64(width) - 2*padding,
		chartHeight: float64(height) - 2*padding,
		axisColor:   fallback(opts.AxisColor, "#475569"),
		gridColor:   fallback(opts.GridColor, "#cbd5f5"),
		tickCount:   tickCount,
	}
	if f.chartWidth <= 0 || f.chartHeight <= 0 {
		return frame{}, fmt.Errorf("svg: viewport too small")
	}
	return f, nil
}

func (f frame) open(b *strings.Builder, opts Opts, kind, defaultTitle, defaultDesc string) {
	titleID := makeID(opts.Title, kind+"-title")
	descID := makeID(opts.Title, kind+"-desc")
	fmt.Fprintf(b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", f.width, f.height, titleID, descID)
	fmt.Fprintf(b, "<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, defaultTitle)))
	fmt.Fprintf(b, "<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, defaultDesc)))
}

// grid draws horizontal grid lines, value ticks and both axes.
func (f frame) grid(b *strings.Builder, opts Opts, minVal, maxVal, zeroY float64) {
	for i := 0; i <= f.tickCount; i++ {
		ratio := float64(i) / float64(f.tickCount)
		y := f.padding + f.chartHeight - ratio*f.chartHeight
		value := minVal + (maxVal-minVal)*ratio
		fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", f.padding, y, f.padding+f.chartWidth, y, f.gridColor)
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", f.padding-6, y+4, f.axisColor, template.HTMLEscapeString(tickLabel(opts, value)))
	}
	fmt.Fprintf(b, "<g stroke=\"%s\" aria-label=\"Trục\">", f.axisColor)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", f.padding, f.padding, f.padding, f.padding+f.chartHeight)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", f.padding, zeroY, f.padding+f.chartWidth, zeroY)
	b.WriteString("</g>")
}

func (f frame) categoryLabel(b *strings.Builder, x float64, label string, rotation int) {
	y := f.padding + f.chartHeight + 14
	if rotation == 0 {
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x, y, f.axisColor, template.HTMLEscapeString(label))
		return
	}
	fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\" transform=\"rotate(-%d %.2f %.2f)\">%s</text>", x, y, f.axisColor, rotation, x, y, template.HTMLEscapeString(label))
}

// Empty renders a placeholder for a chart without data points.
func Empty(width, height int, opts Opts) (template.HTML, error) {
	f, err := newFrame(width, height, opts)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	f.open(&b, opts, "empty", "Chart", EmptyMessage)
	fmt.Fprintf(&b, "<text x=\"%d\" y=\"%d\" fill=\"%s\" font-size=\"12\" text-anchor=\"middle\">%s</text>", f.width/2, f.height/2, f.axisColor, template.HTMLEscapeString(EmptyMessage))
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

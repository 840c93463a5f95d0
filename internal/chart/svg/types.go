// Package svg renders dashboard chart configurations as static SVG for
// pages that cannot run the charting script.
package svg

import "github.com/fruitexport/portal/internal/chart"

// Opts customises a renderer.
type Opts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	// LabelRotation rotates category labels, in degrees.
	LabelRotation int
	// TickFormat renders value-axis ticks; nil uses format.Number.
	TickFormat chart.TickFormatter
	// Palette colours doughnut segments.
	Palette []string
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 280
	DefaultPadding = 40.0
	DefaultTicks   = 5
	EmptyMessage   = "Không có dữ liệu"
)

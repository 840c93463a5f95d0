// Package chart builds Chart.js configurations for the dashboard charts.
package chart

// Kind names one of the dashboard chart presets.
type Kind string

// Supported chart kinds.
const (
	KindRevenue  Kind = "revenue"
	KindOrders   Kind = "orders"
	KindProducts Kind = "products"
)

// Kinds lists every supported kind in dashboard order.
var Kinds = []Kind{KindRevenue, KindOrders, KindProducts}

// Series is an ordered sequence of (label, value) pairs held as parallel
// slices. Labels and Data must have equal length.
type Series struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// Len reports the number of points.
func (s Series) Len() int { return len(s.Data) }

// Clone returns a copy that shares no backing arrays with s.
func (s Series) Clone() Series {
	return Series{
		Labels: append(make([]string, 0, len(s.Labels)), s.Labels...),
		Data:   append(make([]float64, 0, len(s.Data)), s.Data...),
	}
}

// Config is a complete chart configuration, ready for JSON encoding.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

// Data holds the chart's labels and datasets.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is a single series as drawn by the charting library.
// BackgroundColor is a string or a per-point []string.
type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
}

// Options mirrors the subset of chart options the presets use.
type Options struct {
	Responsive          bool            `json:"responsive"`
	MaintainAspectRatio bool            `json:"maintainAspectRatio"`
	Plugins             *Plugins        `json:"plugins,omitempty"`
	Scales              map[string]Axis `json:"scales,omitempty"`
}

// Plugins configures legend and title.
type Plugins struct {
	Legend *Legend `json:"legend,omitempty"`
	Title  *Title  `json:"title,omitempty"`
}

// Legend positions the chart legend.
type Legend struct {
	Position string `json:"position"`
}

// Title configures the chart caption.
type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text,omitempty"`
	Font    *Font  `json:"font,omitempty"`
}

// Font describes caption typography.
type Font struct {
	Size   int    `json:"size"`
	Weight string `json:"weight"`
}

// Axis configures one scale.
type Axis struct {
	BeginAtZero bool   `json:"beginAtZero,omitempty"`
	Ticks       *Ticks `json:"ticks,omitempty"`
}

// TickFormatter renders an axis value as a label.
type TickFormatter func(float64) string

// Ticks configures axis tick labels. Callback is applied by server-side
// renderers; Format tells the page script which formatter to apply.
type Ticks struct {
	Callback    TickFormatter `json:"-"`
	Format      string        `json:"format,omitempty"`
	MinRotation *int          `json:"minRotation,omitempty"`
	MaxRotation *int          `json:"maxRotation,omitempty"`
}

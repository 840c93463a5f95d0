package chart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fruitexport/portal/internal/format"
)

// ErrUnknownKind is returned for chart kinds without a preset.
var ErrUnknownKind = errors.New("chart: invalid chart type")

// Preset colours.
const (
	brandStroke    = "rgb(44, 90, 160)"
	brandFillLight = "rgba(44, 90, 160, 0.1)"
	brandFillSolid = "rgba(44, 90, 160, 0.8)"
	lineTension    = 0.4
	labelRotation  = 45
)

// StatusPalette colours doughnut segments by index, cycling past its end.
var StatusPalette = [...]string{
	"#2c5aa0",
	"#198754",
	"#ffc107",
	"#dc3545",
	"#6c757d",
	"#0dcaf0",
}

// Chart captions and dataset labels.
const (
	TitleRevenue    = "Doanh thu theo tháng"
	TitleOrders     = "Đơn hàng theo trạng thái"
	TitleProducts   = "Sản phẩm bán chạy"
	LabelRevenue    = "Doanh thu"
	LabelQuantity   = "Số lượng bán"
	TickFormatValue = "number"
)

// defaults is never handed out directly; BaseOptions returns copies.
var defaults = Options{
	Responsive:          true,
	MaintainAspectRatio: false,
	Plugins: &Plugins{
		Legend: &Legend{Position: "top"},
		Title: &Title{
			Display: true,
			Font:    &Font{Size: 16, Weight: "bold"},
		},
	},
	Scales: map[string]Axis{
		"y": {
			BeginAtZero: true,
			Ticks: &Ticks{
				Callback: format.Number,
				Format:   TickFormatValue,
			},
		},
	},
}

// BaseOptions returns a fresh copy of the shared chart defaults.
func BaseOptions() Options {
	return defaults.Clone()
}

// Revenue builds the monthly revenue line chart.
func Revenue(s Series) Config {
	s = s.Clone()
	opts := BaseOptions()
	opts.Plugins.Title.Text = TitleRevenue
	return Config{
		Type: "line",
		Data: Data{
			Labels: s.Labels,
			Datasets: []Dataset{{
				Label:           LabelRevenue,
				Data:            s.Data,
				BorderColor:     brandStroke,
				BackgroundColor: brandFillLight,
				Tension:         lineTension,
			}},
		},
		Options: opts,
	}
}

// Orders builds the order status doughnut chart. Doughnuts have no axes,
// so the value-axis defaults are dropped.
func Orders(s Series) Config {
	s = s.Clone()
	opts := BaseOptions()
	opts.Scales = nil
	opts.Plugins.Legend.Position = "right"
	opts.Plugins.Title.Text = TitleOrders
	return Config{
		Type: "doughnut",
		Data: Data{
			Labels: s.Labels,
			Datasets: []Dataset{{
				Data:            s.Data,
				BackgroundColor: paletteFor(len(s.Data)),
			}},
		},
		Options: opts,
	}
}

// Products builds the top-sellers bar chart with labels fixed at 45°.
func Products(s Series) Config {
	s = s.Clone()
	opts := BaseOptions()
	opts.Plugins.Title.Text = TitleProducts
	rotation := labelRotation
	opts.Scales["x"] = Axis{Ticks: &Ticks{
		MinRotation: cloneInt(&rotation),
		MaxRotation: cloneInt(&rotation),
	}}
	return Config{
		Type: "bar",
		Data: Data{
			Labels: s.Labels,
			Datasets: []Dataset{{
				Label:           LabelQuantity,
				Data:            s.Data,
				BackgroundColor: brandFillSolid,
				BorderColor:     brandStroke,
				BorderWidth:     1,
			}},
		},
		Options: opts,
	}
}

func paletteFor(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = StatusPalette[i%len(StatusPalette)]
	}
	return colors
}

// ParseKind validates a chart kind name.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	switch kind {
	case KindRevenue, KindOrders, KindProducts:
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Build dispatches to the preset for kind.
func Build(kind Kind, s Series) (Config, error) {
	switch kind {
	case KindRevenue:
		return Revenue(s), nil
	case KindOrders:
		return Orders(s), nil
	case KindProducts:
		return Products(s), nil
	}
	return Config{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

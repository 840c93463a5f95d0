package svg

import (
	"fmt"
	"html/template"

	"github.com/fruitexport/portal/internal/chart"
)

// Render draws cfg with the renderer matching its type. Configurations
// without data points render the empty-state placeholder.
func Render(cfg chart.Config, width, height int) (template.HTML, error) {
	if len(cfg.Data.Datasets) == 0 {
		return "", fmt.Errorf("svg: config has no dataset")
	}
	ds := cfg.Data.Datasets[0]
	opts := Opts{}
	if p := cfg.Options.Plugins; p != nil && p.Title != nil {
		opts.Title = p.Title.Text
	}
	if y, ok := cfg.Options.Scales["y"]; ok && y.Ticks != nil {
		opts.TickFormat = y.Ticks.Callback
	}
	if x, ok := cfg.Options.Scales["x"]; ok && x.Ticks != nil && x.Ticks.MaxRotation != nil {
		opts.LabelRotation = *x.Ticks.MaxRotation
	}
	if len(ds.Data) == 0 {
		return Empty(width, height, opts)
	}

	switch cfg.Type {
	case "line":
		opts.StrokeColor = ds.BorderColor
		opts.FillColor, _ = ds.BackgroundColor.(string)
		return Line(width, height, ds.Data, cfg.Data.Labels, opts)
	case "bar":
		opts.StrokeColor = ds.BorderColor
		opts.FillColor, _ = ds.BackgroundColor.(string)
		return Bars(width, height, ds.Data, cfg.Data.Labels, opts)
	case "doughnut":
		opts.Palette, _ = ds.BackgroundColor.([]string)
		return Doughnut(width, height, ds.Data, cfg.Data.Labels, opts)
	}
	return "", fmt.Errorf("svg: unsupported chart type %q", cfg.Type)
}

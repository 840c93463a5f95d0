package chart

// Clone returns a deep copy of o. The copy shares no pointers, maps or
// slices with o, so callers may modify it freely.
func (o Options) Clone() Options {
	out := Options{
		Responsive:          o.Responsive,
		MaintainAspectRatio: o.MaintainAspectRatio,
		Plugins:             o.Plugins.clone(),
	}
	if o.Scales != nil {
		out.Scales = make(map[string]Axis, len(o.Scales))
		for name, axis := range o.Scales {
			out.Scales[name] = axis.clone()
		}
	}
	return out
}

func (p *Plugins) clone() *Plugins {
	if p == nil {
		return nil
	}
	out := &Plugins{}
	if p.Legend != nil {
		legend := *p.Legend
		out.Legend = &legend
	}
	out.Title = p.Title.clone()
	return out
}

func (t *Title) clone() *Title {
	if t == nil {
		return nil
	}
	out := *t
	if t.Font != nil {
		font := *t.Font
		out.Font = &font
	}
	return &out
}

func (a Axis) clone() Axis {
	out := a
	if a.Ticks != nil {
		ticks := *a.Ticks
		ticks.MinRotation = cloneInt(a.Ticks.MinRotation)
		ticks.MaxRotation = cloneInt(a.Ticks.MaxRotation)
		out.Ticks = &ticks
	}
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := Config{Type: c.Type, Options: c.Options.Clone()}
	out.Data.Labels = cloneSlice(c.Data.Labels)
	if c.Data.Datasets != nil {
		out.Data.Datasets = make([]Dataset, len(c.Data.Datasets))
		for i, ds := range c.Data.Datasets {
			ds.Data = cloneSlice(ds.Data)
			if colors, ok := ds.BackgroundColor.([]string); ok {
				ds.BackgroundColor = cloneSlice(colors)
			}
			out.Data.Datasets[i] = ds
		}
	}
	return out
}

// cloneSlice copies s, keeping nil and empty distinct for JSON output.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

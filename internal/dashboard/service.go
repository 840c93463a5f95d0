package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/fruitexport/portal/internal/chart"
)

// Service turns dashboard aggregates into chart series and presets.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
	now   func() time.Time
}

// NewService constructs the dashboard service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Series returns the chart series for kind, served from cache when fresh.
// Concurrent misses for the same key share one repository call.
func (s *Service) Series(ctx context.Context, kind chart.Kind) (chart.Series, error) {
	if _, err := chart.ParseKind(string(kind)); err != nil {
		return chart.Series{}, err
	}
	now := s.now()
	key, err := s.cache.BuildKey(ctx, "dashboard", "series", string(kind), now.Format("2006-01"))
	if err != nil {
		return chart.Series{}, err
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		var series chart.Series
		err := s.cache.FetchJSON(ctx, key, &series, func(ctx context.Context) (any, error) {
			return s.load(ctx, kind, now)
		})
		return series, err
	})
	if err != nil {
		return chart.Series{}, err
	}
	return v.(chart.Series).Clone(), nil
}

// Chart returns the preset configuration for kind filled with live data.
func (s *Service) Chart(ctx context.Context, kind chart.Kind) (chart.Config, error) {
	series, err := s.Series(ctx, kind)
	if err != nil {
		return chart.Config{}, err
	}
	return chart.Build(kind, series)
}

// Charts loads every dashboard chart concurrently.
func (s *Service) Charts(ctx context.Context) (map[chart.Kind]chart.Config, error) {
	configs := make([]chart.Config, len(chart.Kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range chart.Kinds {
		g.Go(func() error {
			cfg, err := s.Chart(gctx, kind)
			configs[i] = cfg
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[chart.Kind]chart.Config, len(configs))
	for i, kind := range chart.Kinds {
		out[kind] = configs[i]
	}
	return out, nil
}

// Warm populates the cache for every chart kind.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.Charts(ctx)
	return err
}

// Invalidate drops every cached series.
func (s *Service) Invalidate(ctx context.Context) error {
	_, err := s.cache.Bump(ctx)
	return err
}

func (s *Service) load(ctx context.Context, kind chart.Kind, now time.Time) (chart.Series, error) {
	switch kind {
	case chart.KindRevenue:
		from, to := revenueWindow(now, RevenueMonths)
		rows, err := s.repo.MonthlyRevenue(ctx, from, to)
		if err != nil {
			return chart.Series{}, err
		}
		return revenueSeries(from, RevenueMonths, rows), nil
	case chart.KindOrders:
		rows, err := s.repo.StatusCounts(ctx)
		if err != nil {
			return chart.Series{}, err
		}
		series := chart.Series{Labels: make([]string, 0, len(rows)), Data: make([]float64, 0, len(rows))}
		for _, row := range rows {
			series.Labels = append(series.Labels, StatusLabel(row.Status))
			series.Data = append(series.Data, float64(row.Count))
		}
		return series, nil
	default:
		rows, err := s.repo.TopProducts(ctx, TopProductsLimit)
		if err != nil {
			return chart.Series{}, err
		}
		series := chart.Series{Labels: make([]string, 0, len(rows)), Data: make([]float64, 0, len(rows))}
		for _, row := range rows {
			series.Labels = append(series.Labels, row.Name)
			series.Data = append(series.Data, row.Quantity)
		}
		return series, nil
	}
}

// revenueWindow returns [first day of the oldest month, first day of next month).
func revenueWindow(now time.Time, months int) (time.Time, time.Time) {
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return current.AddDate(0, -(months - 1), 0), current.AddDate(0, 1, 0)
}

// revenueSeries lays rows onto a dense month axis, oldest first, with
// zero for months without completed orders.
func revenueSeries(from time.Time, months int, rows []MonthlyRevenue) chart.Series {
	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[row.Month.Format("2006-01")] += row.Total
	}
	series := chart.Series{Labels: make([]string, 0, months), Data: make([]float64, 0, months)}
	for i := 0; i < months; i++ {
		month := from.AddDate(0, i, 0)
		series.Labels = append(series.Labels, month.Format("01/2006"))
		series.Data = append(series.Data, totals[month.Format("2006-01")])
	}
	return series
}

package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fruitexport/portal/internal/chart"
)

type mockRepo struct {
	revenue      []MonthlyRevenue
	statuses     []StatusCount
	products     []ProductQuantity
	err          error
	revenueCalls atomic.Int32
	statusCalls  atomic.Int32
	productCalls atomic.Int32
	lastFrom     time.Time
	lastTo       time.Time
	gate         chan struct{}
}

func (m *mockRepo) MonthlyRevenue(ctx context.Context, from, to time.Time) ([]MonthlyRevenue, error) {
	m.revenueCalls.Add(1)
	m.lastFrom, m.lastTo = from, to
	if m.gate != nil {
		<-m.gate
	}
	return m.revenue, m.err
}

func (m *mockRepo) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	m.statusCalls.Add(1)
	return m.statuses, m.err
}

func (m *mockRepo) TopProducts(ctx context.Context, limit int) ([]ProductQuantity, error) {
	m.productCalls.Add(1)
	return m.products, m.err
}

var fixedNow = time.Date(2025, 3, 18, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo Repository) (*Service, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache)
	svc.WithNow(func() time.Time { return fixedNow })
	return svc, cache
}

func TestRevenueSeriesFillsTwelveMonths(t *testing.T) {
	repo := &mockRepo{revenue: []MonthlyRevenue{
		{Month: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Total: 1500},
		{Month: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Total: 2500000},
	}}
	svc, _ := newTestService(t, repo)

	series, err := svc.Series(context.Background(), chart.KindRevenue)
	require.NoError(t, err)
	require.Len(t, series.Labels, RevenueMonths)
	require.Len(t, series.Data, RevenueMonths)
	assert.Equal(t, "04/2024", series.Labels[0])
	assert.Equal(t, "03/2025", series.Labels[11])
	assert.Equal(t, 1500.0, series.Data[0])
	assert.Equal(t, 0.0, series.Data[5])
	assert.Equal(t, 2500000.0, series.Data[11])
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), repo.lastFrom)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), repo.lastTo)
}

func TestOrdersSeriesUsesStatusLabels(t *testing.T) {
	repo := &mockRepo{statuses: []StatusCount{{Status: "completed", Count: 7}, {Status: "draft", Count: 2}, {Status: "archived", Count: 1}}}
	svc, _ := newTestService(t, repo)

	cfg, err := svc.Chart(context.Background(), chart.KindOrders)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hoàn thành", "Nháp", "archived"}, cfg.Data.Labels)
	assert.Equal(t, []float64{7, 2, 1}, cfg.Data.Datasets[0].Data)
	assert.Equal(t, chart.TitleOrders, cfg.Options.Plugins.Title.Text)
}

func TestSeriesIsCached(t *testing.T) {
	repo := &mockRepo{products: []ProductQuantity{{Name: "Xoài", Quantity: 120.5}}}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.Series(ctx, chart.KindProducts)
	require.NoError(t, err)
	second, err := svc.Series(ctx, chart.KindProducts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), repo.productCalls.Load())

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.Series(ctx, chart.KindProducts)
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.productCalls.Load())
}

func TestConcurrentMissesCoalesce(t *testing.T) {
	repo := &mockRepo{gate: make(chan struct{})}
	svc, _ := newTestService(t, repo)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Series(context.Background(), chart.KindRevenue)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(repo.gate)
	wg.Wait()
	assert.Equal(t, int32(1), repo.revenueCalls.Load())
}

func TestEmptyDataProducesEmptyCharts(t *testing.T) {
	svc, _ := newTestService(t, &mockRepo{})
	charts, err := svc.Charts(context.Background())
	require.NoError(t, err)
	require.Len(t, charts, 3)
	assert.Empty(t, charts[chart.KindOrders].Data.Datasets[0].Data)
	assert.Empty(t, charts[chart.KindProducts].Data.Datasets[0].Data)
	assert.Len(t, charts[chart.KindRevenue].Data.Datasets[0].Data, RevenueMonths)
}

func TestErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	svc, _ := newTestService(t, &mockRepo{err: boom})
	_, err := svc.Chart(context.Background(), chart.KindOrders)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, svc.Warm(context.Background()), boom)

	_, err = svc.Series(context.Background(), chart.Kind("pie"))
	assert.ErrorIs(t, err, chart.ErrUnknownKind)
}

func TestServiceWithoutCache(t *testing.T) {
	repo := &mockRepo{products: []ProductQuantity{{Name: "Bưởi", Quantity: 3}}}
	svc := NewService(repo, nil)
	series, err := svc.Series(context.Background(), chart.KindProducts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bưởi"}, series.Labels)
	assert.NoError(t, svc.Invalidate(context.Background()))
}

func TestCacheVersionBump(t *testing.T) {
	_, cache := newTestService(t, &mockRepo{})
	ctx := context.Background()
	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)

	key, err := cache.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b:v1", key)

	next, err := cache.Bump(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Đang vận chuyển", StatusLabel("in_transit"))
	assert.Equal(t, "unknown", StatusLabel("unknown"))
}

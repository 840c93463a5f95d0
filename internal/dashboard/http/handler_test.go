package dashboardhttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fruitexport/portal/internal/chart"
	"github.com/fruitexport/portal/internal/notify"
	"github.com/fruitexport/portal/internal/platform/httpx"
	"github.com/fruitexport/portal/internal/view"
)

type stubService struct {
	series         map[chart.Kind]chart.Series
	err            error
	invalidateErr  error
	invalidations  atomic.Int32
	requestedKinds []chart.Kind
}

func (s *stubService) Chart(_ context.Context, kind chart.Kind) (chart.Config, error) {
	s.requestedKinds = append(s.requestedKinds, kind)
	if s.err != nil {
		return chart.Config{}, s.err
	}
	return chart.Build(kind, s.series[kind])
}

func (s *stubService) Charts(ctx context.Context) (map[chart.Kind]chart.Config, error) {
	out := make(map[chart.Kind]chart.Config, len(chart.Kinds))
	for _, kind := range chart.Kinds {
		cfg, err := s.Chart(ctx, kind)
		if err != nil {
			return nil, err
		}
		out[kind] = cfg
	}
	return out, nil
}

func (s *stubService) Invalidate(context.Context) error {
	s.invalidations.Add(1)
	return s.invalidateErr
}

func newStubService() *stubService {
	return &stubService{series: map[chart.Kind]chart.Series{
		chart.KindRevenue:  {Labels: []string{"01/2025", "02/2025"}, Data: []float64{1500000, 2500000}},
		chart.KindOrders:   {Labels: []string{"Nháp", "Đã giao"}, Data: []float64{3, 7}},
		chart.KindProducts: {Labels: []string{"Xoài cát", "Thanh long"}, Data: []float64{1200, 800}},
	}}
}

func newTestRouter(t *testing.T, svc ChartService) (http.Handler, *notify.Outbox) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	engine, err := view.NewEngine()
	require.NoError(t, err)
	outbox := notify.NewOutbox(client, time.Minute)

	handler := NewHandler(nil, svc, engine, outbox, false)
	handler.WithNow(func() time.Time { return time.Date(2025, 3, 18, 9, 0, 0, 0, time.UTC) })
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, outbox
}

func refreshRequest() *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/dashboard/cache/refresh", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return req
}

func TestDashboardPage(t *testing.T) {
	router, _ := newTestRouter(t, newStubService())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	body := rr.Body.String()
	assert.Contains(t, body, `data-chart-kind="revenue"`)
	assert.Contains(t, body, `"type":"line"`)
	assert.Contains(t, body, `"type":"doughnut"`)
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "Xoài cát")
	assert.Contains(t, body, "4.000.000 đ")
	assert.Contains(t, body, "2025-03-18T09:00:00Z")
	assert.NotContains(t, body, notify.ContainerID)
	assert.NotEmpty(t, rr.Result().Cookies())
}

func TestDashboardPageShowsFallbackUntilScriptDraws(t *testing.T) {
	router, _ := newTestRouter(t, newStubService())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<script src="/static/js/portal.js"></script>`)
	assert.Contains(t, body, `<div class="chart-fallback"><svg`)
	assert.Contains(t, body, `<canvas id="chart-revenue" hidden></canvas>`)
	assert.NotContains(t, body, "<noscript>")
}

func TestDashboardPageServiceError(t *testing.T) {
	svc := newStubService()
	svc.err = errors.New("db down")
	router, _ := newTestRouter(t, svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "db down")
}

func TestChartJSON(t *testing.T) {
	svc := newStubService()
	router, _ := newTestRouter(t, svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/charts?type=Products", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var cfg chart.Config
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cfg))
	assert.Equal(t, "bar", cfg.Type)
	assert.Equal(t, []string{"Xoài cát", "Thanh long"}, cfg.Data.Labels)
}

func TestChartJSONDefaultsToRevenue(t *testing.T) {
	svc := newStubService()
	router, _ := newTestRouter(t, svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/charts", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []chart.Kind{chart.KindRevenue}, svc.requestedKinds)
}

func TestChartJSONRejectsUnknownType(t *testing.T) {
	svc := newStubService()
	router, _ := newTestRouter(t, svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/charts?type=pie", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid chart type"}`, rr.Body.String())
	assert.Empty(t, svc.requestedKinds)
}

func TestChartSVG(t *testing.T) {
	router, _ := newTestRouter(t, newStubService())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/charts/orders.svg", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(rr.Body.String()), "<svg"))
}

func TestChartSVGUnknownKind(t *testing.T) {
	router, _ := newTestRouter(t, newStubService())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/charts/pie.svg", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRefreshQueuesToastForNextPage(t *testing.T) {
	svc := newStubService()
	router, _ := newTestRouter(t, svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, refreshRequest())
	require.Equal(t, http.StatusOK, rr.Code)

	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, MessageRefreshed, env.Message)
	assert.EqualValues(t, 1, svc.invalidations.Load())

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)

	page := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		page.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, page)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), notify.ContainerID)
	assert.Contains(t, rr.Body.String(), MessageRefreshed)

	// drained on first render
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, page)
	assert.NotContains(t, rr.Body.String(), MessageRefreshed)
}

type stubWarmup struct{ reasons []string }

func (s *stubWarmup) EnqueueDashboardWarmup(_ context.Context, reason string) error {
	s.reasons = append(s.reasons, reason)
	return nil
}

func TestRefreshQueuesWarmup(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)
	warmup := &stubWarmup{}
	handler := NewHandler(nil, newStubService(), engine, nil, false)
	handler.WithWarmup(warmup)
	r := chi.NewRouter()
	handler.MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, refreshRequest())

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"refresh"}, warmup.reasons)
}

func TestRefreshFailure(t *testing.T) {
	svc := newStubService()
	svc.invalidateErr = errors.New("redis down")
	router, _ := newTestRouter(t, svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, refreshRequest())

	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, MessageRefreshFailed, env.Message)
}

func TestPlainRefreshPostRedirectsWithToast(t *testing.T) {
	svc := newStubService()
	router, _ := newTestRouter(t, svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/dashboard/cache/refresh", nil))

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))
	assert.EqualValues(t, 1, svc.invalidations.Load())

	page := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range rr.Result().Cookies() {
		page.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, page)
	assert.Contains(t, rr.Body.String(), MessageRefreshed)
	assert.Contains(t, rr.Body.String(), "bg-success")
}

func TestPlainRefreshFailureRedirectsWithDangerToast(t *testing.T) {
	svc := newStubService()
	svc.invalidateErr = errors.New("redis down")
	router, _ := newTestRouter(t, svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/dashboard/cache/refresh", nil))
	require.Equal(t, http.StatusSeeOther, rr.Code)

	page := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range rr.Result().Cookies() {
		page.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, page)
	assert.Contains(t, rr.Body.String(), MessageRefreshFailed)
	assert.Contains(t, rr.Body.String(), "bg-danger")
}

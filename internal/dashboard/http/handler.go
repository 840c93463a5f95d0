package dashboardhttp

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fruitexport/portal/internal/chart"
	"github.com/fruitexport/portal/internal/chart/svg"
	"github.com/fruitexport/portal/internal/notify"
	"github.com/fruitexport/portal/internal/platform/httpx"
	"github.com/fruitexport/portal/internal/view"
)

const requestTimeout = 5 * time.Second

// Messages shown by the dashboard endpoints.
const (
	MessageRefreshed     = "Đã làm mới dữ liệu biểu đồ"
	MessageRefreshFailed = "Không thể làm mới dữ liệu biểu đồ"
	errInvalidChartType  = "Invalid chart type"
)

// ChartService defines the data contract used by the handler.
type ChartService interface {
	Chart(ctx context.Context, kind chart.Kind) (chart.Config, error)
	Charts(ctx context.Context) (map[chart.Kind]chart.Config, error)
	Invalidate(ctx context.Context) error
}

// WarmupScheduler queues a background chart cache rebuild.
type WarmupScheduler interface {
	EnqueueDashboardWarmup(ctx context.Context, reason string) error
}

// Handler serves the dashboard page and its chart endpoints.
type Handler struct {
	logger        *slog.Logger
	service       ChartService
	templates     *view.Engine
	outbox        *notify.Outbox
	warmup        WarmupScheduler
	secureCookies bool
	now           func() time.Time
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service ChartService, templates *view.Engine, outbox *notify.Outbox, secureCookies bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:        logger,
		service:       service,
		templates:     templates,
		outbox:        outbox,
		secureCookies: secureCookies,
		now:           time.Now,
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// WithWarmup makes cache refreshes queue a background warmup.
func (h *Handler) WithWarmup(s WarmupScheduler) {
	h.warmup = s
}

// ChartView is one chart as embedded in the page.
type ChartView struct {
	Kind       chart.Kind
	ConfigJSON template.JS
	SVG        template.HTML
}

// RankedRow is a row of the top products table.
type RankedRow struct {
	Label string
	Value float64
}

// PageData is the dashboard view model.
type PageData struct {
	GeneratedAt  string
	Charts       []ChartView
	TopProducts  []RankedRow
	RevenueTotal float64
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	configs, err := h.service.Charts(ctx)
	if err != nil {
		h.handleServerError(w, "load charts", err)
		return
	}
	data, err := h.buildPage(configs)
	if err != nil {
		h.handleServerError(w, "build charts", err)
		return
	}

	var board notify.Board
	clientID := notify.ClientID(w, r, h.secureCookies)
	if err := h.outbox.DrainInto(ctx, clientID, &board); err != nil {
		h.logger.Warn("drain toasts", slog.Any("error", err))
	}
	toasts, err := notify.Render(&board)
	if err != nil {
		h.handleServerError(w, "render toasts", err)
		return
	}

	viewData := view.TemplateData{
		Title:       "Tổng quan",
		Toasts:      toasts,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) buildPage(configs map[chart.Kind]chart.Config) (PageData, error) {
	data := PageData{GeneratedAt: h.now().UTC().Format(time.RFC3339)}
	for _, kind := range chart.Kinds {
		cfg, ok := configs[kind]
		if !ok {
			continue
		}
		raw, err := json.Marshal(cfg)
		if err != nil {
			return PageData{}, err
		}
		fallbackSVG, err := svg.Render(cfg, 0, 0)
		if err != nil {
			return PageData{}, err
		}
		data.Charts = append(data.Charts, ChartView{Kind: kind, ConfigJSON: template.JS(raw), SVG: fallbackSVG})
	}
	if cfg, ok := configs[chart.KindProducts]; ok && len(cfg.Data.Datasets) > 0 {
		for i, v := range cfg.Data.Datasets[0].Data {
			data.TopProducts = append(data.TopProducts, RankedRow{Label: cfg.Data.Labels[i], Value: v})
		}
	}
	if cfg, ok := configs[chart.KindRevenue]; ok && len(cfg.Data.Datasets) > 0 {
		for _, v := range cfg.Data.Datasets[0].Data {
			data.RevenueTotal += v
		}
	}
	return data, nil
}

func (h *Handler) handleChartJSON(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("type")
	if strings.TrimSpace(name) == "" {
		name = string(chart.KindRevenue)
	}
	kind, err := chart.ParseKind(name)
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": errInvalidChartType})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	cfg, err := h.service.Chart(ctx, kind)
	if err != nil {
		h.handleServerError(w, "load chart", err)
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

func (h *Handler) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	kind, err := chart.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httpx.RespondError(w, errors.Join(httpx.ErrNotFound, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	cfg, err := h.service.Chart(ctx, kind)
	if err != nil {
		h.handleServerError(w, "load chart", err)
		return
	}
	out, err := svg.Render(cfg, 0, 0)
	if err != nil {
		h.handleServerError(w, "render svg", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "private, max-age=60")
	_, _ = w.Write([]byte(out))
}

// handleRefresh answers XHR callers with an envelope. Plain form posts
// get the result as a queued toast and a redirect back to the dashboard.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clientID := notify.ClientID(w, r, h.secureCookies)
	success, message := true, MessageRefreshed
	if err := h.service.Invalidate(ctx); err != nil {
		h.logger.Error("invalidate chart cache", slog.Any("error", err))
		success, message = false, MessageRefreshFailed
	} else if h.warmup != nil {
		if err := h.warmup.EnqueueDashboardWarmup(ctx, "refresh"); err != nil {
			h.logger.Warn("enqueue chart warmup", slog.Any("error", err))
		}
	}

	xhr := wantsEnvelope(r)
	if success || !xhr {
		severity := notify.Success
		if !success {
			severity = notify.Danger
		}
		h.queueToast(ctx, clientID, message, severity)
	}
	if !xhr {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	httpx.RespondEnvelope(w, http.StatusOK, success, message)
}

func (h *Handler) queueToast(ctx context.Context, clientID, message string, severity notify.Severity) {
	toast, err := notify.NewToast(message, severity)
	if err != nil {
		return
	}
	if err := h.outbox.Push(ctx, clientID, toast); err != nil {
		h.logger.Warn("queue toast", slog.Any("error", err))
	}
}

func wantsEnvelope(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (h *Handler) handleServerError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("dashboard "+op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

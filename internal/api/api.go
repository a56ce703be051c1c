// Package api serves the REST endpoints over the sales catalog: JSON listings,
// HTML report tables and PNG charts.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gamesales-api/internal/apperr"
	"gamesales-api/internal/catalog"
	"gamesales-api/internal/logging"
	"gamesales-api/internal/observability"
	"gamesales-api/internal/render"

	"github.com/go-chi/chi/v5"
	"github.com/jinzhu/inflection"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultLimit is the row limit of listing endpoints when ?limit= is absent.
const DefaultLimit = 100

// Options configures a Handler.
type Options struct {
	DefaultLimit                int
	UnknownLabel                string
	ChartLabelRotationThreshold int
	Metrics                     *observability.APIMetrics
}

// Handler holds the dependencies shared by every endpoint. It keeps no per-request state.
type Handler struct {
	catalog      *catalog.Catalog
	format       *render.Formatter
	charts       *render.ChartRenderer
	metrics      *observability.APIMetrics
	defaultLimit int
}

// New returns a Handler answering from c.
func New(c *catalog.Catalog, opts Options) *Handler {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	format := render.NewFormatter(opts.UnknownLabel)
	return &Handler{
		catalog:      c,
		format:       format,
		charts:       render.NewChartRenderer(format, opts.ChartLabelRotationThreshold),
		metrics:      opts.Metrics,
		defaultLimit: opts.DefaultLimit,
	}
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.root)

	r.Get("/tables", h.listTables)
	r.Get("/tables/{name}", h.listTable)
	r.Get("/tables/{name}/{id}", h.getTableRow)

	for path, table := range entityRoutes {
		r.Get(path, h.listEntity(table))
	}
	r.Get("/games/{id}", h.getGame)
	r.Get("/games/{id}/complete", h.getGameComplete)
	r.Get("/games/by-year/{year}", h.gamesByYear)

	r.Route("/stats", func(r chi.Router) {
		r.Get("/best-sellings-games/{top}", h.bestSellingGames)
		r.Get("/sales-by-genre", h.salesByGenre)
		r.Get("/sales-by-platform", h.salesByPlatform)
		r.Get("/sales-by-publisher", h.salesByPublisher)
		r.Get("/sales-by-year-platform", h.salesByYearPlatform)
	})

	r.Route("/pandas", func(r chi.Router) {
		r.Get("/top-generos/{top}", h.topGenresByGamesTable)
		r.Get("/juegos-menos-ventas/{top}", h.leastSellingGamesTable)
		r.Get("/top-publishers/{top}", h.topPublishersByGamesTable)
		r.Get("/top-plataformas/{top}", h.topPlatformsByGamesTable)
		r.Get("/juegos-mas-vendidos-region/{region}/{top}", h.regionBestSellersTable)
		r.Get("/lanzamientos-por-anio", h.releasesPerYearTable)
	})

	r.Route("/seaborn", func(r chi.Router) {
		r.Get("/top-juegos-ventas/{top}", h.bestSellingGamesChart)
		r.Get("/top-generos-ventas/{top}", h.topGenresBySalesChart)
		r.Get("/ventas-plataforma-region/{top}", h.platformRegionSalesChart)
		r.Get("/top-editoras/{top}", h.topPublishersByGamesChart)
		r.Get("/distribucion-ventas-region", h.regionSalesDistributionChart)
		r.Get("/lanzamientos-por-anio/{top}", h.yearsWithMostReleasesChart)
	})
}

// Router returns a chi router with only the API routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

// countMessage describes n rows of noun, e.g. "5 genres".
func countMessage(n int, noun string) string {
	if n != 1 {
		noun = inflection.Plural(noun)
	}
	return fmt.Sprintf("%d %s", n, noun)
}

// fail writes err as {"detail": ...}. Unclassified errors become upstream failures
// described by message and are logged; the driver error is not sent to the caller.
// The active span is tagged with the error kind.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	kind := apperr.KindOf(err)
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("error.kind", kind.String()))
	classified := apperr.Classify(err, message)
	if kind == apperr.KindUpstream {
		logging.FromContext(r.Context()).Error(message,
			slog.String("path", r.URL.Path),
			slog.String("error", classified.Error()),
		)
	}
	render.WriteError(w, classified.Kind.Status(), classified.Message)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	start := time.Now()
	body, err := render.EncodeJSON(v)
	h.metrics.RecordRender(r.Context(), "json", time.Since(start), err)
	if err != nil {
		h.fail(w, r, err, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) writeEnvelope(w http.ResponseWriter, r *http.Request, message string, t render.Table) {
	h.writeJSON(w, r, h.format.Envelope(message, t))
}

func (h *Handler) writeHTML(w http.ResponseWriter, r *http.Request, title string, t render.Table) {
	start := time.Now()
	body, err := h.format.HTML(title, t)
	h.metrics.RecordRender(r.Context(), "html", time.Since(start), err)
	if err != nil {
		h.fail(w, r, err, "failed to render table")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) writeChart(w http.ResponseWriter, r *http.Request, t render.Table, spec render.ChartSpec) {
	start := time.Now()
	body, err := h.charts.Render(t, spec)
	h.metrics.RecordRender(r.Context(), "png", time.Since(start), err)
	if err != nil {
		h.fail(w, r, err, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// title capitalises the first letter of s.
func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package api

import (
	"fmt"
	"net/http"

	"gamesales-api/internal/render"
)

// PNG charts.

func (h *Handler) bestSellingGamesChart(w http.ResponseWriter, r *http.Request) {
	top, err := h.topParam(r, "top")
	if err != nil {
		h.fail(w, r, err, "failed to generate sales chart")
		return
	}
	games, err := h.catalog.BestSellingGames(r.Context(), top)
	if err != nil {
		h.fail(w, r, err, "failed to generate sales chart")
		return
	}
	h.writeChart(w, r, render.FromRecords(games), render.ChartSpec{
		Kind:     render.BarChart,
		Title:    fmt.Sprintf("Top %d best-selling games", top.Int()),
		XLabel:   "Game",
		YLabel:   "Total sales (millions)",
		Category: "game_name",
		Key:      "id",
		Measure:  "total_sales",
	})
}

func (h *Handler) topGenresBySalesChart(w http.ResponseWriter, r *http.Request) {
	top, err := h.topParam(r, "top")
	if err != nil {
		h.fail(w, r, err, "failed to generate genre chart")
		return
	}
	genres, err := h.catalog.TopGenresBySales(r.Context(), top)
	if err != nil {
		h.fail(w, r, err, "failed to generate genre chart")
		return
	}
	h.writeChart(w, r, render.FromRecords(genres, "genre", "total_sales"), render.ChartSpec{
		Kind:     render.BarChart,
		Title:    fmt.Sprintf("Top %d genres by sales", top.Int()),
		XLabel:   "Genre",
		YLabel:   "Total sales (millions)",
		Category: "genre",
		Measure:  "total_sales",
	})
}

func (h *Handler) platformRegionSalesChart(w http.ResponseWriter, r *http.Request) {
	top, err := h.topParam(r, "top")
	if err != nil {
		h.fail(w, r, err, "failed to generate platform by region chart")
		return
	}
	rows, err := h.catalog.PlatformRegionSales(r.Context(), top)
	if err != nil {
		h.fail(w, r, err, "failed to generate platform by region chart")
		return
	}
	h.writeChart(w, r, render.FromRecords(rows), render.ChartSpec{
		Kind:     render.GroupedBarChart,
		Title:    fmt.Sprintf("Sales by region for the top %d platforms", top.Int()),
		XLabel:   "Platform",
		YLabel:   "Total sales (millions)",
		Category: "platform",
		Measure:  "total_sales",
		Hue:      "region",
	})
}

func (h *Handler) topPublishersByGamesChart(w http.ResponseWriter, r *http.Request) {
	top, err := h.topParam(r, "top")
	if err != nil {
		h.fail(w, r, err, "failed to generate publisher chart")
		return
	}
	publishers, err := h.catalog.TopPublishersByGameCount(r.Context(), top)
	if err != nil {
		h.fail(w, r, err, "failed to generate publisher chart")
		return
	}
	h.writeChart(w, r, render.FromRecords(publishers, "publisher", "game_count"), render.ChartSpec{
		Kind:     render.BarChart,
		Title:    fmt.Sprintf("Top %d publishers by games published", top.Int()),
		XLabel:   "Publisher",
		YLabel:   "Number of games",
		Category: "publisher",
		Measure:  "game_count",
	})
}

func (h *Handler) regionSalesDistributionChart(w http.ResponseWriter, r *http.Request) {
	regions, err := h.catalog.RegionSalesDistribution(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to generate region distribution chart")
		return
	}
	h.writeChart(w, r, render.FromRecords(regions, "region", "total_sales"), render.ChartSpec{
		Kind:     render.PieChart,
		Title:    "Global sales distribution by region",
		Category: "region",
		Measure:  "total_sales",
	})
}

func (h *Handler) yearsWithMostReleasesChart(w http.ResponseWriter, r *http.Request) {
	top, err := h.topParam(r, "top")
	if err != nil {
		h.fail(w, r, err, "failed to generate releases chart")
		return
	}
	years, err := h.catalog.YearsWithMostReleases(r.Context(), top)
	if err != nil {
		h.fail(w, r, err, "failed to generate releases chart")
		return
	}
	h.writeChart(w, r, render.FromRecords(years), render.ChartSpec{
		Kind:     render.LineChart,
		Title:    fmt.Sprintf("Top %d years with the most game releases", top.Int()),
		XLabel:   "Year",
		YLabel:   "Games released",
		Category: "year",
		Measure:  "release_count",
	})
}

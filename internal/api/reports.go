package api

import (
	"fmt"
	"net/http"

	"gamesales-api/internal/render"

	"github.com/go-chi/chi/v5"
)

// HTML report tables.

func (h *Handler) topGenresByGamesTable(w http.ResponseWriter, r *http.Request) {
	top, err := h.topParam(r, "top")
	if err != nil {
		h.fail(w, r, err, "failed to load top genres")
		return
	}
	genres, err := h.catalog.TopGenresByGameCount(r.Context(), top)
	if err != nil {
		h.fail(w, r, err, "failed to load top genres")
		return
	}
	h.writeHTML(w, r, fmt.Sprintf("Top %d genres with the most games", top.Int()),
		render.FromRecords(genres, "genre", "game_count"))
}

func (h *Handler) leastSellingGamesTable(w http.ResponseWriter, r *http.Request) {
	top, err := h.topParam(r, "top")
	if err != nil {
		h.fail(w, r, err, "failed to load least-selling games")
		return
	}
	games, err := h.catalog.LeastSellingGames(r.Context(), top)
	if err != nil {
		h.fail(w, r, err, "failed to load least-selling games")
		return
	}
	h.writeHTML(w, r, fmt.Sprintf("Top %d games with the fewest sales", top.Int()), render.FromRecords(games))
}

func (h *Handler) topPublishersByGamesTable(w http.ResponseWriter, r *http.Request) {
	top, err := h.topParam(r, "top")
	if err != nil {
		h.fail(w, r, err, "failed to load top publishers")
		return
	}
	publishers, err := h.catalog.TopPublishersByGameCount(r.Context(), top)
	if err != nil {
		h.fail(w, r, err, "failed to load top publishers")
		return
	}
	h.writeHTML(w, r, fmt.Sprintf("Top %d publishers with the most games", top.Int()),
		render.FromRecords(publishers, "publisher", "game_count"))
}

func (h *Handler) topPlatformsByGamesTable(w http.ResponseWriter, r *http.Request) {
	top, err := h.topParam(r, "top")
	if err != nil {
		h.fail(w, r, err, "failed to load top platforms")
		return
	}
	platforms, err := h.catalog.TopPlatformsByGameCount(r.Context(), top)
	if err != nil {
		h.fail(w, r, err, "failed to load top platforms")
		return
	}
	h.writeHTML(w, r, fmt.Sprintf("Top %d platforms with the most games", top.Int()),
		render.FromRecords(platforms, "platform", "game_count"))
}

func (h *Handler) regionBestSellersTable(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")
	top, err := h.topParam(r, "top")
	if err != nil {
		h.fail(w, r, err, "failed to load regional best sellers")
		return
	}
	games, err := h.catalog.RegionBestSellers(r.Context(), region, top)
	if err != nil {
		h.fail(w, r, err, "failed to load regional best sellers")
		return
	}
	h.writeHTML(w, r, fmt.Sprintf("Top %d best-selling games in %s", top.Int(), title(region)), render.FromRecords(games))
}

func (h *Handler) releasesPerYearTable(w http.ResponseWriter, r *http.Request) {
	years, err := h.catalog.ReleasesPerYear(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to load releases per year")
		return
	}
	h.writeHTML(w, r, "Game releases per year", render.FromRecords(years))
}

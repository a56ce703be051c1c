package api

import (
	"fmt"
	"net/http"

	"gamesales-api/internal/catalog"
	"gamesales-api/internal/render"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) bestSellingGames(w http.ResponseWriter, r *http.Request) {
	top, err := h.topParam(r, "top")
	if err != nil {
		h.fail(w, r, err, "failed to load best-selling games")
		return
	}
	games, err := h.catalog.BestSellingGames(r.Context(), top)
	if err != nil {
		h.fail(w, r, err, "failed to load best-selling games")
		return
	}
	h.writeEnvelope(w, r, fmt.Sprintf("Top %d best-selling games", top.Int()), render.FromRecords(games))
}

func (h *Handler) salesByGenre(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.SalesByGenre(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to load sales by genre")
		return
	}
	h.writeEnvelope(w, r, "Total sales by genre", render.FromRecords(groups, "genre", "total_sales"))
}

func (h *Handler) salesByPlatform(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.SalesByPlatform(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to load sales by platform")
		return
	}
	h.writeEnvelope(w, r, "Total sales by platform", render.FromRecords(groups, "platform", "total_sales"))
}

func (h *Handler) salesByPublisher(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.SalesByPublisher(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to load sales by publisher")
		return
	}
	h.writeEnvelope(w, r, "Total sales by publisher", render.FromRecords(groups, "publisher", "total_sales"))
}

func (h *Handler) salesByYearPlatform(w http.ResponseWriter, r *http.Request) {
	rows, err := h.catalog.SalesByYearPlatform(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to load sales by year and platform")
		return
	}
	h.writeEnvelope(w, r, "Total sales by year and platform", render.FromRecords(rows))
}

func (h *Handler) gamesByYear(w http.ResponseWriter, r *http.Request) {
	filter, err := catalog.ParseYearFilter(chi.URLParam(r, "year"))
	if err != nil {
		h.fail(w, r, err, "failed to load games by year")
		return
	}
	releases, err := h.catalog.GamesByYear(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err, "failed to load games by year")
		return
	}

	message := fmt.Sprintf("Games released in %d", filter.Year())
	if filter.All() {
		message = "All games organized by year"
	}
	h.writeEnvelope(w, r, message, render.FromRecords(releases))
}

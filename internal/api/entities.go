package api

import (
	"fmt"
	"net/http"
	"strings"

	"gamesales-api/internal/catalog"
	"gamesales-api/internal/render"

	"github.com/go-chi/chi/v5"
	"github.com/jinzhu/inflection"
)

// entityRoutes maps the per-table listing paths to catalog table names.
var entityRoutes = map[string]string{
	"/games":           "game",
	"/platforms":       "platform",
	"/publishers":      "publisher",
	"/genres":          "genre",
	"/regions":         "region",
	"/sales":           "region_sales",
	"/game-platforms":  "game_platform",
	"/game-publishers": "game_publisher",
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, map[string]string{"message": "Game Database API is running"})
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, map[string][]string{"tables": h.catalog.Tables()})
}

func (h *Handler) listTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	limit, err := h.limitQuery(r)
	if err != nil {
		h.fail(w, r, err, "failed to load table")
		return
	}
	rows, err := h.catalog.ListEntity(r.Context(), name, limit)
	if err != nil {
		h.fail(w, r, err, fmt.Sprintf("failed to load table %q", name))
		return
	}
	env := h.format.Envelope(countMessage(len(rows.Rows), "row"), render.FromMaps(rows.Columns, rows.Rows))
	env.Table = rows.Table
	h.writeJSON(w, r, env)
}

func (h *Handler) getTableRow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id, err := idParam(r, "id", name)
	if err != nil {
		h.fail(w, r, err, "failed to load row")
		return
	}
	row, err := h.catalog.GetEntityByID(r.Context(), name, id)
	if err != nil {
		h.fail(w, r, err, fmt.Sprintf("failed to load row from table %q", name))
		return
	}
	h.writeJSON(w, r, map[string]any{"table": name, "data": h.formatRow(row)})
}

func (h *Handler) formatRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = h.format.Value(k, v)
	}
	return out
}

func (h *Handler) listEntity(table string) http.HandlerFunc {
	noun := strings.ReplaceAll(table, "_", " ")
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := h.limitQuery(r)
		if err != nil {
			h.fail(w, r, err, "failed to load "+inflection.Plural(noun))
			return
		}
		rows, err := h.catalog.ListEntity(r.Context(), table, limit)
		if err != nil {
			h.fail(w, r, err, "failed to load "+inflection.Plural(noun))
			return
		}
		h.writeEnvelope(w, r, countMessage(len(rows.Rows), noun), render.FromMaps(rows.Columns, rows.Rows))
	}
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "game")
	if err != nil {
		h.fail(w, r, err, "failed to load game")
		return
	}
	game, err := h.catalog.GetGame(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "failed to load game")
		return
	}
	h.writeJSON(w, r, map[string]any{"data": h.format.Object(game.Columns(), game.Values())})
}

// gameCompleteResponse is the joined view of one game.
type gameCompleteResponse struct {
	Game       map[string]any   `json:"game"`
	Platforms  []map[string]any `json:"platforms"`
	Publishers []map[string]any `json:"publishers"`
	Sales      []map[string]any `json:"sales"`
}

func (h *Handler) getGameComplete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id", "game")
	if err != nil {
		h.fail(w, r, err, "failed to load game")
		return
	}
	complete, err := h.catalog.GetGameComplete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "failed to load complete game information")
		return
	}
	h.writeJSON(w, r, h.completeResponse(complete))
}

func (h *Handler) completeResponse(c catalog.GameComplete) gameCompleteResponse {
	game := h.format.Object(c.Game.Columns(), c.Game.Values())
	game["genre_name"] = h.format.Value("genre_name", c.Game.GenreName)
	return gameCompleteResponse{
		Game:       game,
		Platforms:  h.format.Objects(render.FromRecords(c.Platforms)),
		Publishers: h.format.Objects(render.FromRecords(c.Publishers)),
		Sales:      h.format.Objects(render.FromRecords(c.Sales)),
	}
}

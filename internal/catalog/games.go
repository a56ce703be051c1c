package catalog

import (
	"context"
	"strconv"
	"strings"

	"gamesales-api/internal/apperr"
	"gamesales-api/internal/dbexec"
)

const gameByIDQuery = `SELECT g.id, g.game_name, g.genre_id, gen.genre_name
FROM game g
LEFT JOIN genre gen ON g.genre_id = gen.id
WHERE g.id = ?`

const gamePlatformsQuery = `SELECT p.id, p.platform_name, gp.release_year
FROM game_publisher gpu
JOIN game_platform gp ON gp.game_publisher_id = gpu.id
JOIN platform p ON gp.platform_id = p.id
WHERE gpu.game_id = ?
ORDER BY gp.release_year, p.platform_name, p.id`

const gamePublishersQuery = `SELECT DISTINCT pu.id, pu.publisher_name
FROM game_publisher gpu
JOIN publisher pu ON gpu.publisher_id = pu.id
WHERE gpu.game_id = ?
ORDER BY pu.publisher_name, pu.id`

const gameRegionSalesQuery = `SELECT r.region_name, SUM(rs.num_sales) AS sales
FROM game_publisher gpu
JOIN game_platform gp ON gp.game_publisher_id = gpu.id
JOIN region_sales rs ON rs.game_platform_id = gp.id
JOIN region r ON rs.region_id = r.id
WHERE gpu.game_id = ?
GROUP BY r.id, r.region_name
ORDER BY r.region_name`

// GetGame returns the game with id, or a not-found error.
func (c *Catalog) GetGame(ctx context.Context, id int64) (Game, error) {
	games, err := queryAll(ctx, c, "get_game", gameByIDQuery, []any{id}, func(rows dbexec.Rows) (Game, error) {
		var g Game
		err := rows.Scan(&g.ID, &g.Name, &g.GenreID, &g.GenreName)
		return g, err
	})
	if err != nil {
		return Game{}, err
	}
	if len(games) == 0 {
		return Game{}, apperr.NotFound("game with id %d not found", id)
	}
	return games[0], nil
}

// GetGameComplete returns the game with its genre, platforms, publishers and
// per-region sales totals.
func (c *Catalog) GetGameComplete(ctx context.Context, id int64) (GameComplete, error) {
	game, err := c.GetGame(ctx, id)
	if err != nil {
		return GameComplete{}, err
	}

	platforms, err := queryAll(ctx, c, "game_platforms", gamePlatformsQuery, []any{id}, func(rows dbexec.Rows) (PlatformRelease, error) {
		var p PlatformRelease
		err := rows.Scan(&p.ID, &p.Name, &p.ReleaseYear)
		return p, err
	})
	if err != nil {
		return GameComplete{}, err
	}

	publishers, err := queryAll(ctx, c, "game_publishers", gamePublishersQuery, []any{id}, func(rows dbexec.Rows) (PublisherRef, error) {
		var p PublisherRef
		err := rows.Scan(&p.ID, &p.Name)
		return p, err
	})
	if err != nil {
		return GameComplete{}, err
	}

	sales, err := queryAll(ctx, c, "game_region_sales", gameRegionSalesQuery, []any{id}, func(rows dbexec.Rows) (RegionTotal, error) {
		var r RegionTotal
		err := rows.Scan(&r.Region, &r.Sales)
		return r, err
	})
	if err != nil {
		return GameComplete{}, err
	}

	return GameComplete{
		Game:       game,
		Platforms:  platforms,
		Publishers: publishers,
		Sales:      sales,
	}, nil
}

// YearFilter selects one release year or every year.
type YearFilter struct {
	year int64
	all  bool
}

// AllYears matches every release with a recorded year.
func AllYears() YearFilter { return YearFilter{all: true} }

// Year matches releases in y.
func Year(y int64) YearFilter { return YearFilter{year: y} }

// ParseYearFilter accepts "all" (any case) or an integer year.
func ParseYearFilter(raw string) (YearFilter, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "all") {
		return AllYears(), nil
	}
	y, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return YearFilter{}, apperr.BadRequest("the year must be a number or 'all'")
	}
	return Year(y), nil
}

// All reports whether the filter spans every year.
func (f YearFilter) All() bool { return f.all }

// Year returns the selected year. It is meaningless when All is true.
func (f YearFilter) Year() int64 { return f.year }

func (f YearFilter) String() string {
	if f.all {
		return "all"
	}
	return strconv.FormatInt(f.year, 10)
}

const gamesByYearSelect = `SELECT g.id, g.game_name, gen.genre_name, gp.release_year, p.platform_name, pu.publisher_name
FROM game g
LEFT JOIN genre gen ON g.genre_id = gen.id
JOIN game_publisher gpu ON gpu.game_id = g.id
JOIN publisher pu ON gpu.publisher_id = pu.id
JOIN game_platform gp ON gp.game_publisher_id = gpu.id
JOIN platform p ON gp.platform_id = p.id
`

// Within a year rows order by game, platform, publisher and id. The all-years
// listing uses the same order behind the year, so it is the concatenation of the
// per-year listings from the latest year down.
const gamesByYearOrder = "g.game_name, p.platform_name, pu.publisher_name, g.id"

// GamesByYear lists releases in the filtered year(s). Releases without a year are
// never included.
func (c *Catalog) GamesByYear(ctx context.Context, filter YearFilter) ([]GameRelease, error) {
	var (
		query string
		args  []any
	)
	if filter.All() {
		query = gamesByYearSelect + "WHERE gp.release_year IS NOT NULL\nORDER BY gp.release_year DESC, " + gamesByYearOrder
	} else {
		query = gamesByYearSelect + "WHERE gp.release_year = ?\nORDER BY " + gamesByYearOrder
		args = []any{filter.Year()}
	}

	return queryAll(ctx, c, "games_by_year", query, args, func(rows dbexec.Rows) (GameRelease, error) {
		var g GameRelease
		err := rows.Scan(&g.ID, &g.Name, &g.Genre, &g.Year, &g.Platform, &g.Publisher)
		return g, err
	})
}

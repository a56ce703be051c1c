package catalog

import (
	"context"
	"fmt"
	"sort"

	"gamesales-api/internal/apperr"
	"gamesales-api/internal/dbexec"
)

func scanGroupCount(dimension string) func(dbexec.Rows) (GroupCount, error) {
	return func(rows dbexec.Rows) (GroupCount, error) {
		g := GroupCount{Dimension: dimension}
		err := rows.Scan(&g.Name, &g.GameCount)
		return g, err
	}
}

func scanGameTotal(rows dbexec.Rows) (GameTotal, error) {
	var g GameTotal
	err := rows.Scan(&g.ID, &g.Name, &g.TotalSales)
	return g, err
}

// TopGenresByGameCount returns the n genres with the most games. Games without a
// genre count towards one group with an invalid name.
func (c *Catalog) TopGenresByGameCount(ctx context.Context, n Limit) ([]GroupCount, error) {
	if err := requireLimit(n); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT gen.genre_name AS genre, COUNT(g.id) AS game_count
FROM game g
LEFT JOIN genre gen ON g.genre_id = gen.id
GROUP BY gen.genre_name
ORDER BY game_count DESC, genre ASC
LIMIT %d`, n.Int())
	return queryAll(ctx, c, "top_genres_by_games", query, nil, scanGroupCount("genre"))
}

// LeastSellingGames returns the n games with the lowest total sales. Games whose
// sales sum to zero are left out.
func (c *Catalog) LeastSellingGames(ctx context.Context, n Limit) ([]GameTotal, error) {
	if err := requireLimit(n); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT g.id, g.game_name, SUM(rs.num_sales) AS total_sales
FROM game g
%s
GROUP BY g.id, g.game_name
HAVING SUM(rs.num_sales) > 0
ORDER BY total_sales ASC, g.game_name ASC, g.id ASC
LIMIT %d`, salesJoin, n.Int())
	return queryAll(ctx, c, "least_selling_games", query, nil, scanGameTotal)
}

// TopPublishersByGameCount returns the n publishers with the most distinct games.
func (c *Catalog) TopPublishersByGameCount(ctx context.Context, n Limit) ([]GroupCount, error) {
	if err := requireLimit(n); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT pu.publisher_name AS publisher, COUNT(DISTINCT gpu.game_id) AS game_count
FROM publisher pu
JOIN game_publisher gpu ON gpu.publisher_id = pu.id
GROUP BY pu.id, pu.publisher_name
ORDER BY game_count DESC, publisher ASC
LIMIT %d`, n.Int())
	return queryAll(ctx, c, "top_publishers_by_games", query, nil, scanGroupCount("publisher"))
}

// TopPlatformsByGameCount returns the n platforms carrying the most game releases.
func (c *Catalog) TopPlatformsByGameCount(ctx context.Context, n Limit) ([]GroupCount, error) {
	if err := requireLimit(n); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT p.platform_name AS platform, COUNT(DISTINCT gp.game_publisher_id) AS game_count
FROM platform p
JOIN game_platform gp ON gp.platform_id = p.id
GROUP BY p.id, p.platform_name
ORDER BY game_count DESC, platform ASC
LIMIT %d`, n.Int())
	return queryAll(ctx, c, "top_platforms_by_games", query, nil, scanGroupCount("platform"))
}

// regionIDQuery picks the lowest id when region names repeat.
const regionIDQuery = `SELECT id FROM region WHERE region_name = ? ORDER BY id LIMIT 1`

// RegionBestSellers returns the n best-selling games within the named region.
// An unknown region is a not-found error rather than an empty listing.
func (c *Catalog) RegionBestSellers(ctx context.Context, region string, n Limit) ([]GameTotal, error) {
	if err := requireLimit(n); err != nil {
		return nil, err
	}

	ids, err := queryAll(ctx, c, "region_lookup", regionIDQuery, []any{region}, func(rows dbexec.Rows) (int64, error) {
		var id int64
		err := rows.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperr.NotFound("region %q not found", region)
	}

	query := fmt.Sprintf(`SELECT g.id, g.game_name, SUM(rs.num_sales) AS total_sales
FROM game g
%s
WHERE rs.region_id = ?
GROUP BY g.id, g.game_name
HAVING SUM(rs.num_sales) > 0
ORDER BY total_sales DESC, g.game_name ASC, g.id ASC
LIMIT %d`, salesJoin, n.Int())
	return queryAll(ctx, c, "region_best_sellers", query, []any{ids[0]}, scanGameTotal)
}

const releasesPerYearQuery = `SELECT gp.release_year AS year, COUNT(*) AS release_count
FROM game_platform gp
GROUP BY gp.release_year
ORDER BY gp.release_year IS NULL, gp.release_year ASC`

// ReleasesPerYear counts platform releases per year in ascending year order. The
// releases without a year are reported last, as a row with an invalid year.
func (c *Catalog) ReleasesPerYear(ctx context.Context) ([]YearCount, error) {
	return queryAll(ctx, c, "releases_per_year", releasesPerYearQuery, nil, scanYearCount)
}

// YearsWithMostReleases returns the n busiest release years, ordered by year so
// they plot as a time series.
func (c *Catalog) YearsWithMostReleases(ctx context.Context, n Limit) ([]YearCount, error) {
	if err := requireLimit(n); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT gp.release_year AS year, COUNT(*) AS release_count
FROM game_platform gp
WHERE gp.release_year IS NOT NULL
GROUP BY gp.release_year
ORDER BY release_count DESC, year ASC
LIMIT %d`, n.Int())

	years, err := queryAll(ctx, c, "years_with_most_releases", query, nil, scanYearCount)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(years, func(i, j int) bool {
		return years[i].Year.Int64 < years[j].Year.Int64
	})
	return years, nil
}

func scanYearCount(rows dbexec.Rows) (YearCount, error) {
	var y YearCount
	err := rows.Scan(&y.Year, &y.ReleaseCount)
	return y, err
}

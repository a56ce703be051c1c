package catalog

import (
	"context"
	"fmt"

	"gamesales-api/internal/apperr"
	"gamesales-api/internal/dbexec"
)

// Ranking queries order by the measure and break ties by name ascending. LIMIT
// values come only from a validated Limit and are formatted as integers.

const salesJoin = `JOIN game_publisher gpu ON gpu.game_id = g.id
JOIN game_platform gp ON gp.game_publisher_id = gpu.id
JOIN region_sales rs ON rs.game_platform_id = gp.id`

func requireLimit(limit Limit) error {
	if !limit.Valid() {
		return apperr.BadRequest("the number must be greater than zero")
	}
	return nil
}

// BestSellingGames returns the n games with the highest total sales.
func (c *Catalog) BestSellingGames(ctx context.Context, n Limit) ([]GameSales, error) {
	if err := requireLimit(n); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT g.id, g.game_name, gen.genre_name, SUM(rs.num_sales) AS total_sales
FROM game g
LEFT JOIN genre gen ON g.genre_id = gen.id
%s
GROUP BY g.id, g.game_name, gen.genre_name
ORDER BY total_sales DESC, g.game_name ASC, g.id ASC
LIMIT %d`, salesJoin, n.Int())

	return queryAll(ctx, c, "best_selling_games", query, nil, func(rows dbexec.Rows) (GameSales, error) {
		var g GameSales
		err := rows.Scan(&g.ID, &g.Name, &g.Genre, &g.TotalSales)
		return g, err
	})
}

func scanGroupSales(dimension string) func(dbexec.Rows) (GroupSales, error) {
	return func(rows dbexec.Rows) (GroupSales, error) {
		g := GroupSales{Dimension: dimension}
		err := rows.Scan(&g.Name, &g.TotalSales)
		return g, err
	}
}

const salesByGenreQuery = `SELECT gen.genre_name AS genre, SUM(rs.num_sales) AS total_sales
FROM game g
LEFT JOIN genre gen ON g.genre_id = gen.id
` + salesJoin + `
GROUP BY gen.genre_name
ORDER BY total_sales DESC, genre ASC`

// SalesByGenre totals sales per genre. Games without a genre form one group
// whose name is invalid.
func (c *Catalog) SalesByGenre(ctx context.Context) ([]GroupSales, error) {
	return queryAll(ctx, c, "sales_by_genre", salesByGenreQuery, nil, scanGroupSales("genre"))
}

// TopGenresBySales returns the n genres with the highest total sales.
func (c *Catalog) TopGenresBySales(ctx context.Context, n Limit) ([]GroupSales, error) {
	if err := requireLimit(n); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("%s\nLIMIT %d", salesByGenreQuery, n.Int())
	return queryAll(ctx, c, "top_genres_by_sales", query, nil, scanGroupSales("genre"))
}

const salesByPlatformQuery = `SELECT p.platform_name AS platform, SUM(rs.num_sales) AS total_sales
FROM platform p
JOIN game_platform gp ON gp.platform_id = p.id
JOIN region_sales rs ON rs.game_platform_id = gp.id
GROUP BY p.id, p.platform_name
ORDER BY total_sales DESC, platform ASC`

// SalesByPlatform totals sales per platform.
func (c *Catalog) SalesByPlatform(ctx context.Context) ([]GroupSales, error) {
	return queryAll(ctx, c, "sales_by_platform", salesByPlatformQuery, nil, scanGroupSales("platform"))
}

const salesByPublisherQuery = `SELECT pu.publisher_name AS publisher, SUM(rs.num_sales) AS total_sales
FROM publisher pu
JOIN game_publisher gpu ON gpu.publisher_id = pu.id
JOIN game_platform gp ON gp.game_publisher_id = gpu.id
JOIN region_sales rs ON rs.game_platform_id = gp.id
GROUP BY pu.id, pu.publisher_name
ORDER BY total_sales DESC, publisher ASC`

// SalesByPublisher totals sales per publisher.
func (c *Catalog) SalesByPublisher(ctx context.Context) ([]GroupSales, error) {
	return queryAll(ctx, c, "sales_by_publisher", salesByPublisherQuery, nil, scanGroupSales("publisher"))
}

const salesByYearPlatformQuery = `SELECT gp.release_year AS year, p.platform_name AS platform, SUM(rs.num_sales) AS total_sales
FROM game_platform gp
JOIN platform p ON gp.platform_id = p.id
JOIN region_sales rs ON rs.game_platform_id = gp.id
WHERE gp.release_year IS NOT NULL
GROUP BY gp.release_year, p.id, p.platform_name
ORDER BY year DESC, total_sales DESC, platform ASC`

// SalesByYearPlatform totals sales per release year and platform, latest year
// first. Releases without a year are excluded.
func (c *Catalog) SalesByYearPlatform(ctx context.Context) ([]YearPlatformSales, error) {
	return queryAll(ctx, c, "sales_by_year_platform", salesByYearPlatformQuery, nil, func(rows dbexec.Rows) (YearPlatformSales, error) {
		var y YearPlatformSales
		err := rows.Scan(&y.Year, &y.Platform, &y.TotalSales)
		return y, err
	})
}

// PlatformRegionSales returns per-region totals for the n best-selling platforms.
// MySQL rejects LIMIT inside IN subqueries, so the top platforms are a derived table.
func (c *Catalog) PlatformRegionSales(ctx context.Context, n Limit) ([]PlatformRegionSales, error) {
	if err := requireLimit(n); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT p.platform_name AS platform, r.region_name AS region, SUM(rs.num_sales) AS total_sales
FROM (
	SELECT gp2.platform_id, SUM(rs2.num_sales) AS platform_sales
	FROM game_platform gp2
	JOIN region_sales rs2 ON rs2.game_platform_id = gp2.id
	GROUP BY gp2.platform_id
	ORDER BY platform_sales DESC, gp2.platform_id ASC
	LIMIT %d
) leaders
JOIN platform p ON p.id = leaders.platform_id
JOIN game_platform gp ON gp.platform_id = p.id
JOIN region_sales rs ON rs.game_platform_id = gp.id
JOIN region r ON rs.region_id = r.id
GROUP BY p.id, p.platform_name, r.id, r.region_name, leaders.platform_sales
ORDER BY leaders.platform_sales DESC, platform ASC, region ASC`, n.Int())

	return queryAll(ctx, c, "platform_region_sales", query, nil, func(rows dbexec.Rows) (PlatformRegionSales, error) {
		var p PlatformRegionSales
		err := rows.Scan(&p.Platform, &p.Region, &p.TotalSales)
		return p, err
	})
}

const regionSalesDistributionQuery = `SELECT r.region_name AS region, SUM(rs.num_sales) AS total_sales
FROM region r
JOIN region_sales rs ON rs.region_id = r.id
GROUP BY r.id, r.region_name
ORDER BY total_sales DESC, region ASC`

// RegionSalesDistribution totals sales per region.
func (c *Catalog) RegionSalesDistribution(ctx context.Context) ([]GroupSales, error) {
	return queryAll(ctx, c, "region_sales_distribution", regionSalesDistributionQuery, nil, scanGroupSales("region"))
}

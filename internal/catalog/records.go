package catalog

import "database/sql"

// Every record reports its column names and the matching values in the same order,
// so renderers can build a table without knowing the concrete type.

// Game is a row of the game table with its genre resolved when present.
type Game struct {
	ID        int64
	Name      string
	GenreID   sql.NullInt64
	GenreName sql.NullString
}

func (Game) Columns() []string { return []string{"id", "game_name", "genre_id"} }

func (g Game) Values() []any {
	var genreID any
	if g.GenreID.Valid {
		genreID = g.GenreID.Int64
	}
	return []any{g.ID, g.Name, genreID}
}

// PlatformRelease is one platform a game shipped on.
type PlatformRelease struct {
	ID          int64
	Name        string
	ReleaseYear sql.NullInt64
}

func (PlatformRelease) Columns() []string { return []string{"id", "platform_name", "release_year"} }

func (p PlatformRelease) Values() []any { return []any{p.ID, p.Name, p.ReleaseYear} }

// PublisherRef is one publisher of a game.
type PublisherRef struct {
	ID   int64
	Name string
}

func (PublisherRef) Columns() []string { return []string{"id", "publisher_name"} }

func (p PublisherRef) Values() []any { return []any{p.ID, p.Name} }

// RegionTotal is a game's summed sales in one region.
type RegionTotal struct {
	Region string
	Sales  float64
}

func (RegionTotal) Columns() []string { return []string{"region_name", "sales"} }

func (r RegionTotal) Values() []any { return []any{r.Region, r.Sales} }

// GameComplete is a game with everything joined to it.
type GameComplete struct {
	Game       Game
	Platforms  []PlatformRelease
	Publishers []PublisherRef
	Sales      []RegionTotal
}

// GameSales is a game ranked by its total sales across platforms and regions.
type GameSales struct {
	ID         int64
	Name       string
	Genre      sql.NullString
	TotalSales float64
}

func (GameSales) Columns() []string { return []string{"id", "game_name", "genre", "total_sales"} }

func (g GameSales) Values() []any { return []any{g.ID, g.Name, g.Genre, g.TotalSales} }

// GameTotal is a game name with a sales total, used by the summary listings.
type GameTotal struct {
	ID         int64
	Name       string
	TotalSales float64
}

func (GameTotal) Columns() []string { return []string{"id", "game_name", "total_sales"} }

func (g GameTotal) Values() []any { return []any{g.ID, g.Name, g.TotalSales} }

// GroupSales is the sales total of one genre, platform, publisher or region.
// Dimension names the grouping column.
type GroupSales struct {
	Dimension  string
	Name       sql.NullString
	TotalSales float64
}

func (g GroupSales) Columns() []string { return []string{g.Dimension, "total_sales"} }

func (g GroupSales) Values() []any { return []any{g.Name, g.TotalSales} }

// GroupCount is a genre, platform or publisher with the number of games in it.
type GroupCount struct {
	Dimension string
	Name      sql.NullString
	GameCount int64
}

func (g GroupCount) Columns() []string { return []string{g.Dimension, "game_count"} }

func (g GroupCount) Values() []any { return []any{g.Name, g.GameCount} }

// YearPlatformSales is the sales total of one platform in one release year.
type YearPlatformSales struct {
	Year       int64
	Platform   string
	TotalSales float64
}

func (YearPlatformSales) Columns() []string { return []string{"year", "platform", "total_sales"} }

func (y YearPlatformSales) Values() []any { return []any{y.Year, y.Platform, y.TotalSales} }

// GameRelease is one game/platform/publisher release in the by-year listing.
type GameRelease struct {
	ID        int64
	Name      string
	Genre     sql.NullString
	Year      int64
	Platform  string
	Publisher string
}

func (GameRelease) Columns() []string {
	return []string{"id", "game_name", "genre", "year", "platform_name", "publisher_name"}
}

func (g GameRelease) Values() []any {
	return []any{g.ID, g.Name, g.Genre, g.Year, g.Platform, g.Publisher}
}

// YearCount is the number of platform releases in a year. Year is invalid for
// releases with no recorded year.
type YearCount struct {
	Year         sql.NullInt64
	ReleaseCount int64
}

func (YearCount) Columns() []string { return []string{"year", "release_count"} }

func (y YearCount) Values() []any { return []any{y.Year, y.ReleaseCount} }

// PlatformRegionSales is one platform's sales total in one region.
type PlatformRegionSales struct {
	Platform   string
	Region     string
	TotalSales float64
}

func (PlatformRegionSales) Columns() []string { return []string{"platform", "region", "total_sales"} }

func (p PlatformRegionSales) Values() []any { return []any{p.Platform, p.Region, p.TotalSales} }

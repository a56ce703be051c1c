package catalog

import (
	"context"
	"sort"
	"strconv"

	"gamesales-api/internal/apperr"
	"gamesales-api/internal/dbexec"
	"gamesales-api/internal/sqlutil"

	sq "github.com/Masterminds/squirrel"
)

type columnKind int

const (
	kindInt columnKind = iota
	kindFloat
	kindString
)

type column struct {
	name string
	kind columnKind
}

type tableDef struct {
	name    string
	columns []column
	orderBy []string
	hasID   bool
}

func (t tableDef) columnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// tableDefs is the closed set of tables the API reads. Table names in requests are
// only ever matched against these keys, never passed through to SQL.
var tableDefs = map[string]tableDef{
	"game": {
		name:    "game",
		columns: []column{{"id", kindInt}, {"genre_id", kindInt}, {"game_name", kindString}},
		orderBy: []string{"id"},
		hasID:   true,
	},
	"genre": {
		name:    "genre",
		columns: []column{{"id", kindInt}, {"genre_name", kindString}},
		orderBy: []string{"id"},
		hasID:   true,
	},
	"platform": {
		name:    "platform",
		columns: []column{{"id", kindInt}, {"platform_name", kindString}},
		orderBy: []string{"id"},
		hasID:   true,
	},
	"publisher": {
		name:    "publisher",
		columns: []column{{"id", kindInt}, {"publisher_name", kindString}},
		orderBy: []string{"id"},
		hasID:   true,
	},
	"region": {
		name:    "region",
		columns: []column{{"id", kindInt}, {"region_name", kindString}},
		orderBy: []string{"id"},
		hasID:   true,
	},
	"game_publisher": {
		name:    "game_publisher",
		columns: []column{{"id", kindInt}, {"game_id", kindInt}, {"publisher_id", kindInt}},
		orderBy: []string{"id"},
		hasID:   true,
	},
	"game_platform": {
		name: "game_platform",
		columns: []column{
			{"id", kindInt}, {"game_publisher_id", kindInt}, {"platform_id", kindInt}, {"release_year", kindInt},
		},
		orderBy: []string{"id"},
		hasID:   true,
	},
	"region_sales": {
		name:    "region_sales",
		columns: []column{{"region_id", kindInt}, {"game_platform_id", kindInt}, {"num_sales", kindFloat}},
		orderBy: []string{"game_platform_id", "region_id"},
	},
}

// EntityRows is a page of raw rows from one table.
type EntityRows struct {
	Table   string
	Columns []string
	Rows    []map[string]any
}

// Tables returns the readable table names in alphabetical order.
func (c *Catalog) Tables() []string {
	names := make([]string, 0, len(tableDefs))
	for name := range tableDefs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupTable(name string) (tableDef, error) {
	def, ok := tableDefs[name]
	if !ok {
		return tableDef{}, apperr.NotFound("table %q not found", name)
	}
	return def, nil
}

// ListEntity returns at most limit rows of table in key order.
func (c *Catalog) ListEntity(ctx context.Context, table string, limit Limit) (EntityRows, error) {
	def, err := lookupTable(table)
	if err != nil {
		return EntityRows{}, err
	}
	if !limit.Valid() {
		return EntityRows{}, apperr.BadRequest("the number must be greater than zero")
	}

	query, args, err := sq.Select(sqlutil.QuoteIdentifiers(def.columnNames())...).
		From(sqlutil.QuoteIdentifier(def.name)).
		OrderBy(sqlutil.QuoteIdentifiers(def.orderBy)...).
		Limit(limit.Uint64()).
		ToSql()
	if err != nil {
		return EntityRows{}, err
	}

	rows, err := queryAll(ctx, c, "list_"+def.name, query, args, def.scanRow)
	if err != nil {
		return EntityRows{}, err
	}
	return EntityRows{Table: def.name, Columns: def.columnNames(), Rows: rows}, nil
}

// GetEntityByID returns the row of table whose id is id.
func (c *Catalog) GetEntityByID(ctx context.Context, table string, id int64) (map[string]any, error) {
	def, err := lookupTable(table)
	if err != nil {
		return nil, err
	}
	if !def.hasID {
		return nil, apperr.BadRequest("table %q has no id column", def.name)
	}

	query, args, err := sq.Select(sqlutil.QuoteIdentifiers(def.columnNames())...).
		From(sqlutil.QuoteIdentifier(def.name)).
		Where(sq.Eq{sqlutil.QuoteIdentifier("id"): id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := queryAll(ctx, c, "get_"+def.name, query, args, def.scanRow)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("%s with id %d not found", def.name, id)
	}
	return rows[0], nil
}

func (t tableDef) scanRow(rows dbexec.Rows) (map[string]any, error) {
	values := make([]any, len(t.columns))
	ptrs := make([]any, len(t.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	row := make(map[string]any, len(t.columns))
	for i, col := range t.columns {
		v, err := convertValue(col.kind, values[i])
		if err != nil {
			return nil, err
		}
		row[col.name] = v
	}
	return row, nil
}

// convertValue normalises driver values. The MySQL text protocol returns every
// column as []byte, so numbers are parsed according to the declared column kind.
func convertValue(kind columnKind, v any) (any, error) {
	raw, isBytes := v.([]byte)
	if !isBytes {
		return v, nil
	}
	switch kind {
	case kindInt:
		return strconv.ParseInt(string(raw), 10, 64)
	case kindFloat:
		return strconv.ParseFloat(string(raw), 64)
	default:
		return string(raw), nil
	}
}

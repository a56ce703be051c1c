package render

import (
	"bytes"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

type genreTotal struct {
	genre sql.NullString
	total float64
}

func (genreTotal) Columns() []string { return []string{"genre", "total_sales"} }

func (g genreTotal) Values() []any { return []any{g.genre, g.total} }

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestFormatterValue(t *testing.T) {
	f := NewFormatter("")
	assert.Equal(t, DefaultUnknownLabel, f.UnknownLabel())

	assert.Equal(t, "Unknown", f.Value("genre", sql.NullString{}))
	assert.Equal(t, "Action", f.Value("genre", sql.NullString{String: "Action", Valid: true}))
	assert.Equal(t, "Unknown", f.Value("year", sql.NullInt64{}))
	assert.Equal(t, int64(2006), f.Value("year", sql.NullInt64{Int64: 2006, Valid: true}))
	assert.Equal(t, 82.74, f.Value("total_sales", 82.7399999))
	assert.Equal(t, 1.01, f.Value("sales", 1.005000001))
	assert.Equal(t, 3.14159, f.Value("ratio", 3.14159))
	assert.Equal(t, "Wii", f.Value("platform", []byte("Wii")))
	assert.Nil(t, f.Value("genre_id", nil))
}

func TestFormatterCustomLabelAndMeasures(t *testing.T) {
	f := NewFormatter("N/A", "share")
	assert.Equal(t, "N/A", f.Value("genre", sql.NullString{}))
	assert.True(t, f.IsMeasure("share"))
	assert.Equal(t, 0.33, f.Value("share", 1.0/3))
}

func TestFromRecords(t *testing.T) {
	tbl := FromRecords([]genreTotal{
		{genre: sql.NullString{String: "Action", Valid: true}, total: 1751.18},
		{total: 12.5},
	})
	assert.Equal(t, []string{"genre", "total_sales"}, tbl.Columns)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 1, tbl.ColumnIndex("total_sales"))
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))

	empty := FromRecords([]genreTotal{}, "platform", "total_sales")
	assert.Equal(t, []string{"platform", "total_sales"}, empty.Columns)
	assert.Equal(t, 0, empty.Len())
}

func TestFromMaps(t *testing.T) {
	tbl := FromMaps([]string{"id", "name"}, []map[string]any{{"name": "x", "id": int64(1)}})
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []any{int64(1), "x"}, tbl.Rows[0])
}

func TestEnvelopeJSON(t *testing.T) {
	f := NewFormatter("Unknown")
	tbl := FromRecords([]genreTotal{
		{genre: sql.NullString{String: "Action", Valid: true}, total: 1751.1799999},
		{total: 0.105},
	})

	body, err := EncodeJSON(f.Envelope("2 genres", tbl))
	require.NoError(t, err)

	var decoded struct {
		Message string           `json:"message"`
		Count   int              `json:"count"`
		Data    []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "2 genres", decoded.Message)
	assert.Equal(t, 2, decoded.Count)
	assert.Equal(t, "Action", decoded.Data[0]["genre"])
	assert.Equal(t, 1751.18, decoded.Data[0]["total_sales"])
	assert.Equal(t, "Unknown", decoded.Data[1]["genre"])
	assert.NotContains(t, string(body), "null")
}

func TestEnvelopeEmptyDataIsArray(t *testing.T) {
	f := NewFormatter("Unknown")
	body, err := EncodeJSON(f.Envelope("0 genres", FromRecords([]genreTotal{})))
	require.NoError(t, err)
	assert.Contains(t, string(body), `"data":[]`)
	assert.Contains(t, string(body), `"count":0`)
}

func TestWriteJSONAndError(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusOK, map[string]string{"message": "ok"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "game with id 7 not found")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"game with id 7 not found"}`, rec.Body.String())
}

func TestHTMLDocument(t *testing.T) {
	f := NewFormatter("Unknown")
	tbl := FromRecords([]genreTotal{
		{genre: sql.NullString{String: "Action", Valid: true}, total: 1751.1799},
		{genre: sql.NullString{String: "<script>", Valid: true}, total: 2},
		{total: 0.5},
	})

	out, err := f.HTML("Top genres", tbl)
	require.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "<title>Top genres</title>")
	assert.Contains(t, doc, "<style>")
	assert.Contains(t, doc, "<th>genre</th><th>total_sales</th>")
	assert.Contains(t, doc, "<td>Action</td><td>1751.18</td>")
	assert.Contains(t, doc, "<td>Unknown</td><td>0.5</td>")
	assert.Contains(t, doc, "&lt;script&gt;")
	assert.NotContains(t, doc, "<script>")

	body := doc[strings.Index(doc, "<tbody>"):]
	assert.Equal(t, 3, strings.Count(body, "<tr>"))
}

func TestHTMLEmptyTable(t *testing.T) {
	f := NewFormatter("Unknown")
	out, err := f.HTML("Nothing", FromRecords([]genreTotal{}))
	require.NoError(t, err)
	doc := string(out)
	assert.Contains(t, doc, "<th>genre</th>")
	body := doc[strings.Index(doc, "<tbody>"):]
	assert.Equal(t, 0, strings.Count(body, "<tr>"))
}

func TestChartWidth(t *testing.T) {
	assert.Equal(t, 10*vg.Inch, ChartWidth(3))
	assert.Equal(t, 10*vg.Inch, ChartWidth(0))
	assert.InDelta(t, float64(16*vg.Inch), float64(ChartWidth(20)), 0.001)
}

func salesTable() Table {
	return Table{
		Columns: []string{"platform", "region", "total_sales"},
		Rows: [][]any{
			{"PS2", "North America", 583.84},
			{"PS2", "Europe", 339.29},
			{"X360", "North America", 601.05},
			{"X360", "Europe", 280.58},
			{"Wii", "Japan", sql.NullFloat64{Float64: 68.91, Valid: true}},
		},
	}
}

func TestChartRenderKinds(t *testing.T) {
	r := NewChartRenderer(NewFormatter("Unknown"), 5)

	cases := []struct {
		name string
		spec ChartSpec
	}{
		{"bar", ChartSpec{Kind: BarChart, Title: "Sales", Category: "platform", Measure: "total_sales"}},
		{"grouped", ChartSpec{Kind: GroupedBarChart, Category: "platform", Measure: "total_sales", Hue: "region"}},
		{"line", ChartSpec{Kind: LineChart, Category: "platform", Measure: "total_sales"}},
		{"pie", ChartSpec{Kind: PieChart, Category: "region", Measure: "total_sales"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := r.Render(salesTable(), tc.spec)
			require.NoError(t, err)
			require.NotEmpty(t, out)
			assert.True(t, bytes.HasPrefix(out, pngSignature))
		})
	}
}

func TestChartRenderRotatesManyCategories(t *testing.T) {
	r := NewChartRenderer(nil, 2)
	tbl := Table{Columns: []string{"game_name", "total_sales"}}
	for _, name := range []string{"Wii Sports", "Super Mario Bros.", "Mario Kart Wii", "Wii Sports Resort"} {
		tbl.Rows = append(tbl.Rows, []any{name, 10.0})
	}
	out, err := r.Render(tbl, ChartSpec{Kind: BarChart, Category: "game_name", Measure: "total_sales"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, pngSignature))
}

func TestChartRenderEmptyTable(t *testing.T) {
	r := NewChartRenderer(NewFormatter("Unknown"), 5)
	tbl := Table{Columns: []string{"platform", "total_sales"}}
	for _, kind := range []ChartKind{BarChart, GroupedBarChart, LineChart, PieChart} {
		out, err := r.Render(tbl, ChartSpec{Kind: kind, Category: "platform", Measure: "total_sales"})
		require.NoError(t, err, kind)
		assert.True(t, bytes.HasPrefix(out, pngSignature), kind)
	}
}

func TestChartRenderUnknownCategoryLabel(t *testing.T) {
	r := NewChartRenderer(NewFormatter("Unknown"), 5)
	tbl := Table{
		Columns: []string{"genre", "total_sales"},
		Rows:    [][]any{{sql.NullString{}, 3.0}, {sql.NullString{String: "Sports", Valid: true}, 5.0}},
	}
	series, err := r.extract(tbl, ChartSpec{Category: "genre", Measure: "total_sales"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Unknown", "Sports"}, series.categories)
	assert.Equal(t, []float64{3, 5}, series.totals())
}

func TestChartRenderKeepsSameNamedGamesApart(t *testing.T) {
	r := NewChartRenderer(NewFormatter("Unknown"), 5)
	tbl := Table{
		Columns: []string{"id", "game_name", "total_sales"},
		Rows: [][]any{
			{int64(1), "Need for Speed: Most Wanted", 4.37},
			{int64(2), "Need for Speed: Most Wanted", 4.0},
			{int64(3), "Tetris", 3.0},
		},
	}

	keyed, err := r.extract(tbl, ChartSpec{Category: "game_name", Key: "id", Measure: "total_sales"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Need for Speed: Most Wanted", "Need for Speed: Most Wanted", "Tetris"}, keyed.categories)
	assert.Equal(t, []float64{4.37, 4.0, 3.0}, keyed.totals())

	byName, err := r.extract(tbl, ChartSpec{Category: "game_name", Measure: "total_sales"})
	require.NoError(t, err)
	assert.Len(t, byName.categories, 2)

	out, err := r.Render(tbl, ChartSpec{Kind: BarChart, Category: "game_name", Key: "id", Measure: "total_sales"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, pngSignature))
}

func TestChartRenderErrors(t *testing.T) {
	r := NewChartRenderer(NewFormatter("Unknown"), 5)

	_, err := r.Render(salesTable(), ChartSpec{Kind: BarChart, Category: "missing", Measure: "total_sales"})
	assert.ErrorContains(t, err, `category column "missing"`)

	_, err = r.Render(salesTable(), ChartSpec{Kind: BarChart, Category: "platform", Measure: "missing"})
	assert.ErrorContains(t, err, `measure column "missing"`)

	_, err = r.Render(salesTable(), ChartSpec{Kind: GroupedBarChart, Category: "platform", Measure: "total_sales", Hue: "missing"})
	assert.ErrorContains(t, err, `hue column "missing"`)

	_, err = r.Render(salesTable(), ChartSpec{Kind: BarChart, Category: "platform", Key: "missing", Measure: "total_sales"})
	assert.ErrorContains(t, err, `key column "missing"`)

	_, err = r.Render(salesTable(), ChartSpec{Kind: "radar", Category: "platform", Measure: "total_sales"})
	assert.ErrorContains(t, err, "unsupported chart kind")

	_, err = r.Render(salesTable(), ChartSpec{Kind: BarChart, Category: "total_sales", Measure: "platform"})
	assert.ErrorContains(t, err, "non-numeric")
}

func TestSurfacePoolReusesBuffers(t *testing.T) {
	pool := newSurfacePool()
	s := pool.acquire(vg.Inch, vg.Inch)
	require.NotNil(t, s.canvas)
	s.buf.WriteString("leftover")
	pool.release(s)
	assert.Nil(t, s.buf)
	assert.Nil(t, s.canvas)

	again := pool.acquire(vg.Inch, vg.Inch)
	defer pool.release(again)
	assert.Equal(t, 0, again.buf.Len())
}

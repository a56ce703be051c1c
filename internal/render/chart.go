package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ChartKind selects how a table is drawn.
type ChartKind string

const (
	BarChart        ChartKind = "bar"
	GroupedBarChart ChartKind = "grouped-bar"
	LineChart       ChartKind = "line"
	PieChart        ChartKind = "pie"
)

const (
	minChartWidth     = 10 * vg.Inch
	chartHeight       = 6 * vg.Inch
	widthPerCategory  = 0.8 * vg.Inch
	defaultRotateOver = 5
)

// ChartSpec describes one chart over a table. Hue is only used by grouped bars.
// Rows sharing a Key value form one category; without a Key the Category label
// itself groups rows.
type ChartSpec struct {
	Kind     ChartKind
	Title    string
	XLabel   string
	YLabel   string
	Category string
	Key      string
	Measure  string
	Hue      string
}

// ChartRenderer draws tables as PNG charts.
type ChartRenderer struct {
	format            *Formatter
	rotationThreshold int
	surfaces          *surfacePool
}

// NewChartRenderer returns a renderer that labels categories through format and
// rotates category labels when there are more than rotationThreshold of them.
func NewChartRenderer(format *Formatter, rotationThreshold int) *ChartRenderer {
	if format == nil {
		format = NewFormatter(DefaultUnknownLabel)
	}
	if rotationThreshold <= 0 {
		rotationThreshold = defaultRotateOver
	}
	return &ChartRenderer{
		format:            format,
		rotationThreshold: rotationThreshold,
		surfaces:          newSurfacePool(),
	}
}

// ChartWidth returns the canvas width for n categories.
func ChartWidth(n int) vg.Length {
	return max(minChartWidth, vg.Length(n)*widthPerCategory)
}

// Render draws t according to spec and returns the encoded PNG.
func (r *ChartRenderer) Render(t Table, spec ChartSpec) ([]byte, error) {
	series, err := r.extract(t, spec)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel

	switch spec.Kind {
	case BarChart:
		err = r.addBars(p, series)
	case GroupedBarChart:
		err = r.addGroupedBars(p, series)
	case LineChart:
		err = r.addLine(p, series)
	case PieChart:
		p.HideAxes()
		p.Add(&pieChart{labels: series.categories, values: series.totals()})
	default:
		err = fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
	if err != nil {
		return nil, err
	}

	if spec.Kind != PieChart && len(series.categories) > r.rotationThreshold {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}

	s := r.surfaces.acquire(ChartWidth(len(series.categories)), chartHeight)
	defer r.surfaces.release(s)

	p.Draw(s.drawCanvas())
	return s.png()
}

// chartSeries is a table reshaped into categories, optional hues and a value
// per (category, hue) pair. keys and categories are parallel: keys group rows,
// categories are the tick labels.
type chartSeries struct {
	keys       []string
	categories []string
	hues       []string
	values     map[string]map[string]float64
}

func (s chartSeries) totals() []float64 {
	out := make([]float64, len(s.keys))
	for i, k := range s.keys {
		for _, v := range s.values[k] {
			out[i] += v
		}
	}
	return out
}

func (s chartSeries) hueValues(hue string) plotter.Values {
	out := make(plotter.Values, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.values[k][hue]
	}
	return out
}

func (r *ChartRenderer) extract(t Table, spec ChartSpec) (chartSeries, error) {
	catIdx := t.ColumnIndex(spec.Category)
	if catIdx < 0 {
		return chartSeries{}, fmt.Errorf("category column %q not in result", spec.Category)
	}
	measureIdx := t.ColumnIndex(spec.Measure)
	if measureIdx < 0 {
		return chartSeries{}, fmt.Errorf("measure column %q not in result", spec.Measure)
	}
	keyIdx := catIdx
	if spec.Key != "" {
		if keyIdx = t.ColumnIndex(spec.Key); keyIdx < 0 {
			return chartSeries{}, fmt.Errorf("key column %q not in result", spec.Key)
		}
	}
	hueIdx := -1
	if spec.Hue != "" {
		if hueIdx = t.ColumnIndex(spec.Hue); hueIdx < 0 {
			return chartSeries{}, fmt.Errorf("hue column %q not in result", spec.Hue)
		}
	}

	s := chartSeries{values: make(map[string]map[string]float64)}
	seenHue := make(map[string]bool)
	for _, row := range t.Rows {
		category := r.format.Label(spec.Category, row[catIdx])
		key := category
		if keyIdx != catIdx {
			key = r.format.Label(spec.Key, row[keyIdx])
		}
		hue := ""
		if hueIdx >= 0 {
			hue = r.format.Label(spec.Hue, row[hueIdx])
		}
		v, ok := r.format.Number(row[measureIdx])
		if !ok {
			return chartSeries{}, fmt.Errorf("measure column %q has non-numeric value %v", spec.Measure, row[measureIdx])
		}

		if _, ok := s.values[key]; !ok {
			s.keys = append(s.keys, key)
			s.categories = append(s.categories, category)
			s.values[key] = make(map[string]float64)
		}
		if !seenHue[hue] {
			seenHue[hue] = true
			s.hues = append(s.hues, hue)
		}
		s.values[key][hue] += v
	}
	return s, nil
}

// slotWidth is the horizontal space available per category on the canvas.
func slotWidth(n int) vg.Length {
	return ChartWidth(n) / vg.Length(n+1)
}

func (r *ChartRenderer) addBars(p *plot.Plot, s chartSeries) error {
	if len(s.categories) == 0 {
		return nil
	}
	bars, err := plotter.NewBarChart(plotter.Values(s.totals()), slotWidth(len(s.categories))*0.6)
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(s.categories...)
	return nil
}

func (r *ChartRenderer) addGroupedBars(p *plot.Plot, s chartSeries) error {
	if len(s.categories) == 0 {
		return nil
	}
	width := slotWidth(len(s.categories)) * 0.8 / vg.Length(len(s.hues))
	mid := float64(len(s.hues)-1) / 2
	for i, hue := range s.hues {
		bars, err := plotter.NewBarChart(s.hueValues(hue), width)
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(float64(i)-mid) * width
		p.Add(bars)
		p.Legend.Add(hue, bars)
	}
	p.Legend.Top = true
	p.NominalX(s.categories...)
	return nil
}

func (r *ChartRenderer) addLine(p *plot.Plot, s chartSeries) error {
	if len(s.categories) == 0 {
		return nil
	}
	pts := make(plotter.XYs, len(s.categories))
	for i, v := range s.totals() {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	points.Color = plotutil.Color(0)
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)
	p.NominalX(s.categories...)
	return nil
}

// Package charts renders the two dashboard charts: the expense breakdown by
// category and the monthly income vs expense comparison.
package charts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"expensetracker/internal/aggregate"
	"expensetracker/internal/core"
)

// ErrNoData is returned when there is nothing to plot. Presenters show a
// "no data" notice instead of an empty chart.
var ErrNoData = errors.New("no data to chart")

const (
	defaultWidth  = 1024
	defaultHeight = 600
	barWidth      = 40
	barSpacing    = 10
)

var (
	incomeColor  = drawing.ColorFromHex("2e7d32")
	expenseColor = drawing.ColorFromHex("c62828")
)

// Renderer turns aggregates into images. The HTTP server and the chart worker
// both depend on this interface rather than on a concrete plotting library.
type Renderer interface {
	CategoryPie(totals core.CategoryTotals) ([]byte, error)
	MonthlyBars(months []core.MonthTotals) ([]byte, error)
}

// PNGRenderer draws charts with go-chart and encodes them as PNG.
type PNGRenderer struct {
	Width  int
	Height int
}

// NewPNGRenderer returns a renderer for the given canvas size. Non-positive
// dimensions fall back to 1024x600.
func NewPNGRenderer(width, height int) *PNGRenderer {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return &PNGRenderer{Width: width, Height: height}
}

// CategoryPie draws the expense share of each category, largest first.
func (r *PNGRenderer) CategoryPie(totals core.CategoryTotals) ([]byte, error) {
	slices := aggregate.SortedCategories(totals)

	var total float64
	for _, c := range slices {
		total += c.Amount
	}
	// A pie of zero-sized slices cannot be drawn.
	if total <= 0 {
		return nil, ErrNoData
	}

	values := make([]chart.Value, 0, len(slices))
	for _, c := range slices {
		if c.Amount <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", c.Name, core.FormatAmount(c.Amount), c.Amount/total*100),
			Value: c.Amount,
		})
	}

	pie := chart.PieChart{
		Title:  "Expenses by Category",
		Width:  r.Width,
		Height: r.Height,
		Values: values,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: chart.ColorWhite,
		},
	}

	buf := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render category pie: %w", err)
	}
	return buf.Bytes(), nil
}

// MonthlyBars draws an income bar and an expense bar for every month, in
// chronological order.
func (r *PNGRenderer) MonthlyBars(months []core.MonthTotals) ([]byte, error) {
	if len(months) == 0 {
		return nil, ErrNoData
	}

	bars := make([]chart.Value, 0, len(months)*2)
	var peak float64
	for _, m := range months {
		bars = append(bars,
			chart.Value{
				Label: m.Month + " in",
				Value: m.Income,
				Style: chart.Style{StrokeColor: incomeColor, FillColor: incomeColor},
			},
			chart.Value{
				Label: m.Month + " out",
				Value: m.Expense,
				Style: chart.Style{StrokeColor: expenseColor, FillColor: expenseColor},
			},
		)
		peak = max(peak, m.Income, m.Expense)
	}
	if peak == 0 {
		peak = 1
	}

	width := max(r.Width, len(bars)*(barWidth+barSpacing)+200)

	graph := chart.BarChart{
		Title:      "Income vs Expense",
		TitleStyle: chart.Style{FontSize: 14, FontColor: chart.ColorBlack},
		Width:      width,
		Height:     r.Height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: peak * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return core.FormatAmount(f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	buf := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render monthly bars: %w", err)
	}
	return buf.Bytes(), nil
}

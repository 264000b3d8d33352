// Package charts renders dashboard aggregates as PNG images.
package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"finbook/internal/report"
)

// palette is the bucket color cycle; colors are assigned by bucket position
// modulo the palette length, independently per chart.
var palette = []drawing.Color{
	{R: 0x36, G: 0xa2, B: 0xeb, A: 255},
	{R: 0xff, G: 0x63, B: 0x84, A: 255},
	{R: 0x4b, G: 0xc0, B: 0xc0, A: 255},
	{R: 0xff, G: 0x9f, B: 0x40, A: 255},
	{R: 0x97, G: 0x66, B: 0xff, A: 255},
	{R: 0xff, G: 0xcd, B: 0x56, A: 255},
	{R: 0xc9, G: 0xcb, B: 0xcf, A: 255},
}

// BreakdownDonut renders a categorical breakdown as a donut chart. Returns
// nil bytes when there is nothing to draw.
func BreakdownDonut(title string, buckets []report.Bucket) ([]byte, error) {
	if len(buckets) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(buckets))
	for i, b := range buckets {
		if b.Amount.Cents <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: b.Amount.Float64(),
			Label: fmt.Sprintf("%s (%s)", b.Name, b.Amount),
			Style: chart.Style{FillColor: palette[i%len(palette)]},
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	graph := chart.DonutChart{
		Title:  title,
		Width:  600,
		Height: 450,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render donut chart: %w", err)
	}
	return buf.Bytes(), nil
}

// TrendChart renders the monthly income/expense series as a line chart.
// Fewer than two months yields nil bytes: a single point has no trend.
func TrendChart(points []report.MonthPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, nil
	}

	xValues := make([]time.Time, len(points))
	incomeValues := make([]float64, len(points))
	expenseValues := make([]float64, len(points))
	for i, p := range points {
		t, err := time.Parse("2006-01", p.Month)
		if err != nil {
			return nil, fmt.Errorf("parse month key %q: %w", p.Month, err)
		}
		xValues[i] = t
		incomeValues[i] = p.Income.Float64()
		expenseValues[i] = p.Expense.Float64()
	}

	graph := chart.Chart{
		Width:  900,
		Height: 450,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 40, Right: 40, Bottom: 40},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Income",
				XValues: xValues,
				YValues: incomeValues,
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 2},
			},
			chart.TimeSeries{
				Name:    "Expense",
				XValues: xValues,
				YValues: expenseValues,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render trend chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Package charts renders summary data as PNG images for chat delivery.
package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/okunev/financetracker/internal/report"
)

// Generator renders report summaries with go-chart.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// TrendChart draws daily income and expense series over the summary window.
// Returns nil bytes when the summary is empty.
func (g *Generator) TrendChart(s report.Summary, currency string) ([]byte, error) {
	if s.Empty || len(s.Daily) == 0 {
		return nil, nil
	}

	xValues := make([]time.Time, len(s.Daily))
	incomeValues := make([]float64, len(s.Daily))
	expenseValues := make([]float64, len(s.Daily))
	for i, day := range s.Daily {
		xValues[i] = day.Day
		incomeValues[i] = day.Income.InexactFloat64()
		expenseValues[i] = day.Expense.InexactFloat64()
	}

	graph := chart.Chart{
		Width:  1000,
		Height: 500,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 40, Right: 40, Bottom: 40},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 02"),
			Style:          chart.Style{FontSize: 11, FontColor: chart.ColorBlack},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%s%.0f", currency, v.(float64))
			},
			Style: chart.Style{FontSize: 11, FontColor: chart.ColorBlack},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Expenses",
				XValues: xValues,
				YValues: expenseValues,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2},
			},
			chart.TimeSeries{
				Name:    "Income",
				XValues: xValues,
				YValues: incomeValues,
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph, chart.Style{FontSize: 11, FontColor: chart.ColorBlack}),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render trend chart: %w", err)
	}
	return buf.Bytes(), nil
}

// CategoryPie draws the expense breakdown by category. Returns nil bytes
// when there are no expenses in the window.
func (g *Generator) CategoryPie(s report.Summary) ([]byte, error) {
	if s.Empty || len(s.ExpenseByCategory) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(s.ExpenseByCategory))
	for _, ct := range s.ExpenseByCategory {
		values = append(values, chart.Value{
			Value: ct.Amount.InexactFloat64(),
			Label: fmt.Sprintf("%s (%.1f%%)", ct.Name, ct.Share),
			Style: chart.Style{FontSize: 11},
		})
	}

	pie := chart.PieChart{
		Width:  700,
		Height: 700,
		Values: values,
		Background: chart.Style{
			Padding:   chart.Box{Top: 30, Left: 30, Right: 30, Bottom: 30},
			FillColor: chart.ColorWhite,
		},
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render category pie: %w", err)
	}
	return buf.Bytes(), nil
}

package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	echartstypes "github.com/go-echarts/go-echarts/v2/types"
	"github.com/shopspring/decimal"

	"optjournal/internal/journal"
	"optjournal/internal/types"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorProfit        = "#34d399"
	colorLoss          = "#f87171"
	colorCurve         = "#3b82f6"

	chartWidthPx  = 1200
	curveHeightPx = 480
	barHeightPx   = 300
)

// BuildProfitPage composes the performance page: a cumulative realized
// P&L curve and a per-trade P&L bar chart, both over the closed positions
// in close-date order.
func BuildProfitPage(positions []types.Position) (*components.Page, error) {
	closed := make([]types.Position, 0, len(positions))
	for _, p := range positions {
		if p.Status == types.StatusClosed && p.CloseDate != "" {
			closed = append(closed, p)
		}
	}
	if len(closed) == 0 {
		return nil, fmt.Errorf("no closed trades to chart")
	}
	sort.SliceStable(closed, func(i, j int) bool {
		return journal.CompareDates(closed[i].CloseDate, closed[j].CloseDate) < 0
	})

	xAxis := make([]string, len(closed))
	curve := make([]opts.LineData, len(closed))
	bars := make([]opts.BarData, len(closed))
	running := decimal.Zero
	for i, trade := range closed {
		running = running.Add(decimal.NewFromFloat(trade.PnL))
		cumulative, _ := running.Float64()
		xAxis[i] = fmt.Sprintf("%s %s", trade.CloseDate, trade.Ticker)
		curve[i] = opts.LineData{Value: cumulative}
		color := colorLoss
		if trade.PnL > 0 {
			color = colorProfit
		}
		bars[i] = opts.BarData{
			Value:     trade.PnL,
			ItemStyle: &opts.ItemStyle{Color: color, Opacity: opts.Float(0.8)},
		}
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(buildCurveChart(xAxis, curve), buildTradeBarChart(xAxis, bars))
	return page, nil
}

// RenderProfitHTML writes the performance page as a standalone HTML
// document.
func RenderProfitHTML(w io.Writer, positions []types.Position) error {
	page, err := BuildProfitPage(positions)
	if err != nil {
		return err
	}
	return page.Render(w)
}

func buildCurveChart(xAxis []string, curve []opts.LineData) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           echartstypes.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", curveHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      "Cumulative Realized P&L",
			Left:       "left",
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)
	line.SetXAxis(xAxis)
	line.AddSeries("cumulative", curve,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorCurve, Width: 2}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: colorCurve, Opacity: opts.Float(0.15)}),
	)
	return line
}

func buildTradeBarChart(xAxis []string, bars []opts.BarData) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           echartstypes.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", barHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      "Per-Trade P&L",
			Left:       "left",
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.15)}},
		}),
	)
	bar.SetXAxis(xAxis)
	bar.AddSeries("pnl", bars)
	return bar
}

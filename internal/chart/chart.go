// Package chart renders sentiment summaries as standalone echarts pages.
package chart

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"feedtrend/internal/core"
)

// Kind selects the chart type.
type Kind string

const (
	Bar  Kind = "bar"
	Line Kind = "line"
)

const (
	chartWidth  = "900px"
	chartHeight = "420px"

	// AssetsHost serves the echarts script the pages load.
	AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

	allMonthsLabel = "All months"
)

// Colors used for every label series.
var labelColors = map[core.Label]string{
	core.Positive: "#4CAF50",
	core.Neutral:  "#9E9E9E",
	core.Negative: "#F44336",
}

// Color returns the display color of l.
func Color(l core.Label) string {
	return labelColors[l]
}

// ParseKind returns the kind named by s, or def when s is empty or unknown.
func ParseKind(s string, def Kind) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Bar:
		return Bar
	case Line:
		return Line
	default:
		return def
	}
}

type Options struct {
	Title    string
	Subtitle string
	Kind     Kind
}

// Render writes an HTML page charting s. Each label is one series over
// the summary groups. Bars are stacked.
func Render(w io.Writer, s core.Summary, o Options) error {
	page := components.NewPage()
	page.PageTitle = o.Title
	page.AssetsHost = AssetsHost

	x := axis(s)
	switch o.Kind {
	case Line:
		page.AddCharts(lineChart(s, x, o))
	default:
		page.AddCharts(barChart(s, x, o))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render %s chart: %w", o.Kind, err)
	}
	return nil
}

// RenderBytes is Render into a buffer.
func RenderBytes(s core.Summary, o Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, s, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// axis names one x position per group.
func axis(s core.Summary) []string {
	x := make([]string, 0, len(s.Groups))
	for _, g := range s.Groups {
		if g.Month == "" {
			x = append(x, allMonthsLabel)
			continue
		}
		x = append(x, string(g.Month))
	}
	return x
}

func globalOpts(o Options) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  o.Title,
			Width:      chartWidth,
			Height:     chartHeight,
			AssetsHost: AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: o.Subtitle, Left: "left"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Feedback"}),
	}
}

// barChart stacks the label counts of each group.
func barChart(s core.Summary, x []string, o Options) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOpts(o)...)
	bar.SetXAxis(x)
	for _, l := range core.Labels() {
		series := s.Series(l)
		data := make([]opts.BarData, len(series))
		for i, n := range series {
			data[i] = opts.BarData{Value: n}
		}
		bar.AddSeries(l.String(), data,
			charts.WithBarChartOpts(opts.BarChart{Stack: "sentiment"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: Color(l)}),
		)
	}
	return bar
}

func lineChart(s core.Summary, x []string, o Options) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOpts(o)...)
	line.SetXAxis(x)
	for _, l := range core.Labels() {
		series := s.Series(l)
		data := make([]opts.LineData, len(series))
		for i, n := range series {
			data[i] = opts.LineData{Value: n}
		}
		line.AddSeries(l.String(), data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: Color(l)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: Color(l), Width: 2}),
		)
	}
	return line
}

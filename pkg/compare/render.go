package compare

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table renders the report as a text table.
func (r *Report) Table() string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(fmt.Sprintf("%s comparison", r.Family))
	tbl.AppendHeader(table.Row{"Algorithm", "Size", "Operations", "Comparisons", "Mutations", "Memory", "Elapsed"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	for _, row := range r.Rows {
		tbl.AppendRow(table.Row{
			row.Kind,
			humanize.Comma(int64(row.Size)),
			humanize.Comma(row.Operations),
			humanize.Comma(row.Comparisons),
			humanize.Comma(row.Mutations),
			humanize.IBytes(row.Memory),
			row.Elapsed.Round(time.Microsecond),
		})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("%d algorithms × %d sizes", len(r.Kinds), len(r.Sizes))})
	return tbl.Render()
}

// Chart writes an HTML page with operations and elapsed time per size.
func (r *Report) Chart(w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("stepwise: %s comparison", r.Family)
	page.AddCharts(
		r.line("Operations", "operations", func(row Row) any { return row.Operations }),
		r.line("Elapsed", "microseconds", func(row Row) any { return row.Elapsed.Microseconds() }),
	)
	return page.Render(w)
}

func (r *Report) line(title, unit string, value func(Row) any) *charts.Line {
	labels := make([]string, len(r.Sizes))
	for i, n := range r.Sizes {
		labels[i] = strconv.Itoa(n)
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "size"}),
		charts.WithYAxisOpts(opts.YAxis{Name: unit}),
	)
	line.SetXAxis(labels)
	for _, kind := range r.Kinds {
		data := make([]opts.LineData, 0, len(r.Sizes))
		for _, n := range r.Sizes {
			row, _ := r.Get(kind, n)
			data = append(data, opts.LineData{Value: value(row)})
		}
		line.AddSeries(string(kind), data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	}
	return line
}

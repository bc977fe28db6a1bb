package ui

import (
	"fmt"
	"strings"

	"tally/internal/tally"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

// seriesColors maps palette slots to the closest asciigraph colors.
var seriesColors = []asciigraph.AnsiColor{
	asciigraph.SlateBlue,
	asciigraph.Green,
	asciigraph.Red,
	asciigraph.DarkCyan,
	asciigraph.Purple,
	asciigraph.Orange,
	asciigraph.DeepSkyBlue,
	asciigraph.Fuchsia,
	asciigraph.MediumSeaGreen,
	asciigraph.DarkOrange,
}

func seriesColor(color string) asciigraph.AnsiColor {
	i := tally.PaletteIndex(color)
	if i < 0 {
		return asciigraph.Default
	}
	return seriesColors[i%len(seriesColors)]
}

// ChartPane draws one line per visible task over the selected range.
type ChartPane struct {
	tasks     []tally.Task
	series    []tally.SeriesRow
	rangeDays int
	focused   bool
	width     int
	height    int
	styles    *Styles
}

// NewChartPane creates an empty chart pane.
func NewChartPane(styles *Styles) *ChartPane {
	return &ChartPane{styles: styles}
}

// SetData replaces the plotted tasks and series.
func (p *ChartPane) SetData(tasks []tally.Task, series []tally.SeriesRow, rangeDays int) {
	p.tasks = tasks
	p.series = series
	p.rangeDays = rangeDays
}

// SetSize sets the pane dimensions.
func (p *ChartPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetFocused sets whether this pane is focused.
func (p *ChartPane) SetFocused(focused bool) {
	p.focused = focused
}

// View renders the chart pane.
func (p *ChartPane) View() string {
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render(fmt.Sprintf("LAST %d DAYS", p.rangeDays)))
	b.WriteString("\n")

	if len(p.tasks) == 0 || len(p.series) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorTextMuted).Italic(true).Render("  Nothing to chart."))
		b.WriteString("\n")
	} else {
		b.WriteString(p.plot())
		b.WriteString("\n")
		b.WriteString(p.axis())
		b.WriteString("\n\n")
		b.WriteString(p.legend())
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}

// plotWidth is the number of columns the data area gets; asciigraph
// interpolates the series to fit it.
func (p *ChartPane) plotWidth() int {
	return max(p.rangeDays, p.width-4-chartLabelWidth)
}

// chartLabelWidth is the y-axis label column plus the axis itself.
const chartLabelWidth = 7

func (p *ChartPane) plotHeight() int {
	// title, axis, blank and legend rows; asciigraph draws h+1 rows
	h := p.height - 4 - len(p.tasks)
	if h < 3 {
		h = 3
	}
	return h
}

func (p *ChartPane) plot() string {
	data := make([][]float64, 0, len(p.tasks))
	colors := make([]asciigraph.AnsiColor, 0, len(p.tasks))
	for _, t := range p.tasks {
		data = append(data, tally.SeriesFor(p.series, t.ID))
		colors = append(colors, seriesColor(t.Color))
	}

	opts := []asciigraph.Option{
		asciigraph.Height(p.plotHeight()),
		asciigraph.Width(p.plotWidth()),
		asciigraph.LowerBound(0),
		asciigraph.Precision(0),
		asciigraph.Offset(3),
	}
	if lipgloss.ColorProfile() != termenv.Ascii {
		opts = append(opts, asciigraph.SeriesColors(colors...))
	}
	return asciigraph.PlotMany(data, opts...)
}

// axis labels the first and last day under the plot.
func (p *ChartPane) axis() string {
	first := p.series[0].Label
	last := p.series[len(p.series)-1].Label
	gap := p.plotWidth() - runewidth.StringWidth(first) - runewidth.StringWidth(last)
	if gap < 1 {
		gap = 1
	}
	line := strings.Repeat(" ", chartLabelWidth) + first + strings.Repeat(" ", gap) + last
	return p.styles.ActivityTimeStyle.Render(line)
}

func (p *ChartPane) legend() string {
	var rows []string
	for _, t := range p.tasks {
		total := 0
		for _, v := range tally.SeriesFor(p.series, t.ID) {
			total += int(v)
		}
		name := runewidth.Truncate(t.Name, max(5, p.width-16), "..")
		rows = append(rows, fmt.Sprintf("%s %s %s", p.styles.Swatch(t.Color), name,
			p.styles.CountStyle.Render(fmt.Sprintf("(%d)", total))))
	}
	return strings.Join(rows, "\n")
}

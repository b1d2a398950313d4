package ui

import (
	styles "github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"
)

// sampleChart appends the current tallies of the leading segments to the
// vote-history series and redraws the braille canvas. The leading segment
// is highlighted, the rest are dimmed.
func (m *Model) sampleChart() {
	var highlight, dim plot.Color
	if styles.DefaultRenderer().HasDarkBackground() {
		highlight, dim = plot.Red, plot.DimGray
	} else {
		highlight, dim = plot.Black, plot.LightGray
	}

	n := min(len(m.view), maxChartSeries)
	for i := range m.chartData {
		series := m.chartData[i]
		copy(series, series[1:])
		value := 0.0
		// Series are stored leader-last so the highlighted line draws on
		// top of the dimmed ones.
		if i >= maxChartSeries-n {
			value = float64(m.view[maxChartSeries-1-i].Count)
		}
		series[len(series)-1] = value
		m.chartColors[i] = dim
	}
	m.chartColors[maxChartSeries-1] = highlight

	copy(m.chart.LineColors, m.chartColors)
	m.chart.Fill(m.chartData)
}

func (m *Model) resizeChart(w, h int) {
	p := plot.NewCanvas(max(1, w), max(1, h))
	p.NumDataPoints = m.chart.NumDataPoints
	p.ShowAxis = m.chart.ShowAxis
	p.LineColors = m.chart.LineColors
	m.chart = &p
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	styles "github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"

	"chatwheel/internal/ledger"
	"chatwheel/internal/wheel"
)

var (
	selectedColor = styles.AdaptiveColor{Light: "0", Dark: "9"}
	borderColor   = styles.AdaptiveColor{Light: "#555", Dark: "#555"}
	selectedFg    = styles.NewStyle().Foreground(selectedColor)
	borderFg      = styles.NewStyle().Foreground(borderColor)
	pickFg        = styles.NewStyle().Foreground(styles.Color("#00ff66")).Bold(true)
	errorFg       = styles.NewStyle().Foreground(styles.AdaptiveColor{Light: "1", Dark: "9"})
	timerFg       = styles.NewStyle().Bold(true)
	panelStyle    = styles.NewStyle().
			BorderStyle(styles.NormalBorder()).
			Foreground(borderColor).
			BorderForeground(borderColor)
)

// wheelPalette is the wedge color cycle.
var wheelPalette = []styles.Color{
	"#f94144", "#f3722c", "#f8961e", "#f9844a", "#f9c74f",
	"#90be6d", "#43aa8b", "#4d908e", "#577590", "#277da1",
}

func wedgeStyle(i int) styles.Style {
	return styles.NewStyle().Foreground(wheelPalette[i%len(wheelPalette)])
}

func segmentColumns(paneWidth int) []table.Column {
	phraseW := max(10, paneWidth-12)
	return []table.Column{
		{Title: "Phrase", Width: phraseW},
		{Title: "Votes", Width: 6},
	}
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.leftPaneWidth, m.rightPaneWidth = computePaneWidths(w, m.opts.ViewSplit)

	helpLines := 1
	topLines := 1
	available := max(1, h-helpLines-topLines)

	leftW := max(1, m.leftPaneWidth)
	rightW := max(1, m.rightPaneWidth)

	chattersLines := chatterTopN + 2
	inputLines := 1
	m.table.SetColumns(segmentColumns(leftW))
	m.table.SetWidth(leftW)
	m.table.SetHeight(max(3, available-chattersLines-inputLines-2))

	wheelLines := min(m.topK, len(wheelPalette)) + 6
	chartLines := 8
	m.feedView.Width = max(1, rightW-2)
	m.feedView.Height = max(3, available-wheelLines-chartLines-6)

	m.resizeChart(max(1, rightW-2), chartLines-2)
}

func (m *Model) View() string {
	top := timerFg.Render(m.timerLabel) + "   Status: " + m.statusLine()

	left := styles.NewStyle().Width(m.leftWidth()).Render(
		styles.JoinVertical(styles.Left,
			m.table.View(),
			m.inputLine(),
			m.chattersPanel(),
		),
	)
	rightW := m.rightWidth()
	right := styles.JoinVertical(styles.Left,
		panelStyle.Render(m.wheelPanel(max(1, rightW-2))),
		panelStyle.Render(m.chart.String()),
		panelStyle.Render(m.feedView.View()),
	)

	view := styles.JoinHorizontal(styles.Top, left, right)
	return styles.JoinVertical(styles.Left, top, view, m.help.View(keys))
}

func (m *Model) statusLine() string {
	s := m.status
	if m.connecting {
		s = m.connSpin.View() + " " + s
	}
	if strings.HasPrefix(s, "[ERROR]") || strings.Contains(s, "error") || strings.Contains(s, "Failed") {
		return errorFg.Render(s)
	}
	return s
}

func (m *Model) inputLine() string {
	if m.inputMode == modeNone {
		return ""
	}
	label := map[inputMode]string{
		modeAdd:      "add/update",
		modeRename:   "rename",
		modeSetCount: "set count",
		modeTopK:     "top-k",
	}[m.inputMode]
	if m.inputTarget != "" {
		label += " " + fmt.Sprintf("%q", m.inputTarget)
	}
	return selectedFg.Render(label+": ") + m.input.View()
}

// wheelPanel renders the top-K view as an unrolled wheel: a pointer marker
// over a proportional color bar in wheel-angle space, a legend line per
// wedge and the current pointer readout.
func (m *Model) wheelPanel(w int) string {
	total := ledger.TotalWeight(m.view)
	if total <= 0 {
		return runewidth.Truncate("No wheel segments yet", w, "…")
	}

	barW := max(10, w)
	wheelAngle := wheel.Angle(m.engine.Rotation())
	markerPos := min(barW-1, int(wheelAngle/360.0*float64(barW)))
	marker := strings.Repeat(" ", markerPos) + "▼"

	var bar strings.Builder
	filled := 0
	running := 0.0
	for i, seg := range m.view {
		if filled >= barW {
			break
		}
		running += float64(seg.Count) / float64(total) * float64(barW)
		cells := min(barW-filled, max(1, int(running)-filled))
		if i == len(m.view)-1 {
			cells = barW - filled
		}
		bar.WriteString(wedgeStyle(i).Render(strings.Repeat("█", cells)))
		filled += cells
	}

	lines := []string{marker, bar.String()}
	for i, seg := range m.view {
		if i >= len(wheelPalette) {
			break
		}
		share := 100 * float64(seg.Count) / float64(total)
		entry := fmt.Sprintf("■ %s (%d, %.0f%%)", seg.Phrase, seg.Count, share)
		lines = append(lines, wedgeStyle(i).Render(runewidth.Truncate(entry, w, "…")))
	}

	if m.hasPick {
		voter := m.pick.Voter
		if voter == "" {
			voter = "-"
		}
		lines = append(lines,
			pickFg.Render(runewidth.Truncate(m.pick.Phrase, w, "…")),
			pickFg.Render(runewidth.Truncate("voted by: "+voter, w, "…")))
	}
	return strings.Join(lines, "\n")
}

// chattersPanel lists the most active senders over the sliding window,
// whether or not their messages counted as votes.
func (m *Model) chattersPanel() string {
	lines := []string{borderFg.Render(fmt.Sprintf("ACTIVE CHATTERS (%ds)", chatterWindow))}
	for i, item := range m.chatters.SortedSlice() {
		if i >= chatterTopN {
			break
		}
		lines = append(lines, runewidth.Truncate(
			fmt.Sprintf("%s (%d)", item.Item, item.Count), max(1, m.leftWidth()), "…"))
	}
	if len(lines) == 1 {
		lines = append(lines, borderFg.Render("-"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) leftWidth() int {
	if m.leftPaneWidth > 0 {
		return m.leftPaneWidth
	}
	left, _ := computePaneWidths(m.width, m.opts.ViewSplit)
	return left
}

func (m *Model) rightWidth() int {
	if m.rightPaneWidth > 0 {
		return m.rightPaneWidth
	}
	_, right := computePaneWidths(m.width, m.opts.ViewSplit)
	return right
}

func computePaneWidths(totalWidth int, splitPercent int) (left, right int) {
	if totalWidth <= 1 {
		return 1, 1
	}
	left = totalWidth * splitPercent / 100
	if left < 1 {
		left = 1
	}
	if left > totalWidth-1 {
		left = totalWidth - 1
	}
	right = totalWidth - left

	// Keep panes readable when the terminal is wide enough.
	const minPane = 18
	if totalWidth >= minPane*2 {
		if left < minPane {
			left = minPane
			right = totalWidth - left
		}
		if right < minPane {
			right = minPane
			left = totalWidth - right
		}
	}
	return max(1, left), max(1, right)
}

package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tomato/internal/export"
	"github.com/sadopc/tomato/internal/store"
)

const historyWindow = 7 // days per page

var exportFormats = []string{"CSV", "JSON"}

type historyModel struct {
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	days   []store.DayCount
	offset int // pages back from the current week (0 = ending today)

	exportPicking bool
	exportCursor  int

	chart barchart.Model
}

func newHistoryModel(s *store.Store, now func() time.Time) historyModel {
	return historyModel{
		store: s,
		now:   now,
		chart: barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
	h.buildChart()
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		days, err := h.store.History()
		return historyDataMsg{days: days, err: err}
	}
}

// dateRange returns the half-open window of days shown on the current page.
func (h historyModel) dateRange() (time.Time, time.Time) {
	now := h.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := today.AddDate(0, 0, 1-historyWindow*h.offset)
	return end.AddDate(0, 0, -historyWindow), end
}

// window returns the stored counters inside the current page, keyed by day.
func (h historyModel) window() map[string]store.DayCount {
	from, to := h.dateRange()
	out := make(map[string]store.DayCount)
	for _, d := range h.days {
		if d.Date.Before(from) || !d.Date.Before(to) {
			continue
		}
		out[store.DayKey(d.Date)] = d
	}
	return out
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		if msg.err != nil {
			return h, errorStatus("load history", msg.err)
		}
		h.days = msg.days
		h.buildChart()
		return h, nil

	case tea.KeyMsg:
		if h.exportPicking {
			return h.updateExportPicker(msg)
		}
		switch {
		case key.Matches(msg, keys.Left):
			h.offset++
			h.buildChart()
			return h, nil
		case key.Matches(msg, keys.Right):
			if h.offset > 0 {
				h.offset--
			}
			h.buildChart()
			return h, nil
		case key.Matches(msg, keys.Export):
			h.exportPicking = true
			h.exportCursor = 0
			return h, nil
		}
	}
	return h, nil
}

func (h historyModel) updateExportPicker(msg tea.KeyMsg) (historyModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if h.exportCursor > 0 {
			h.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if h.exportCursor < len(exportFormats)-1 {
			h.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		h.exportPicking = false
		return h, h.doExport(h.exportCursor)
	case key.Matches(msg, keys.Back):
		h.exportPicking = false
	}
	return h, nil
}

func (h historyModel) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		days, err := h.store.History()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dateStr := h.now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("tomato-export-%s.csv", dateStr))
			if err := export.ToCSV(days, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("tomato-export-%s.json", dateStr))
			if err := export.ToJSON(days, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}

func (h *historyModel) buildChart() {
	chartWidth := h.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if h.height > 30 {
		chartHeight = 14
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	from, to := h.dateRange()
	days := h.window()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		day := days[store.DayKey(d)]
		bars = append(bars, barchart.BarData{
			Label: d.Format("Mon 02"),
			Values: []barchart.BarValue{
				{Name: "Run", Value: float64(day.Run), Style: successStyle},
				{Name: "Pause", Value: float64(day.Pause), Style: warningStyle},
			},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	if h.exportPicking {
		return h.renderExportPicker(w)
	}

	from, to := h.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("History"), "  ", dateLabel)

	legend := "  " + successStyle.Render("● Run") + "  " + warningStyle.Render("● Pause")
	nav := mutedStyle.Render("  ←/→: navigate  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", h.chart.View(), "", legend, "", h.renderTable(w), "", nav,
		),
	)
}

func (h historyModel) renderTable(w int) string {
	days := h.window()
	if len(days) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-16s %6s %6s", "Day", "Run", "Pause")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 30))))

	var totalRun, totalPause int
	from, to := h.dateRange()
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		day, ok := days[store.DayKey(d)]
		if !ok {
			continue
		}
		totalRun += day.Run
		totalPause += day.Pause
		rows = append(rows, fmt.Sprintf("  %-16s %6d %6d", day.Key, day.Run, day.Pause))
	}
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 30))))
	rows = append(rows, highlightStyle.Render(fmt.Sprintf("  %-16s %6d %6d", "Total", totalRun, totalPause)))

	return strings.Join(rows, "\n")
}

func (h historyModel) renderExportPicker(w int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"))
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == h.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

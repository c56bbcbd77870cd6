package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/sadopc/tomato/internal/audio"
	"github.com/sadopc/tomato/internal/store"
)

const (
	zoneCountdown = "countdown"
	zoneToggle    = "toggle"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	player audio.Player
	zones  *zone.Manager
	now    func() time.Time
	today  string

	width  int
	height int

	activeView viewState
	showHelp   bool

	timer   timerModel
	gesture exitGesture
	tickGen int

	history  historyModel
	settings settingsModel

	help      help.Model
	status    string
	statusErr bool

	quitting bool
	err      error
}

// NewApp builds the root model for today's counters in cfg.
func NewApp(s *store.Store, p audio.Player, today string, cfg *store.Config) App {
	return newApp(s, p, zone.New(), today, cfg, time.Now)
}

func newApp(s *store.Store, p audio.Player, zones *zone.Manager, today string, cfg *store.Config, now func() time.Time) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:    s,
		player:   p,
		zones:    zones,
		now:      now,
		today:    today,
		timer:    newTimerModel(cfg.Cycle, cfg.RunTimes, cfg.PauseTimes, now),
		history:  newHistoryModel(s, now),
		settings: newSettingsModel(s, cfg.Cycle, cfg.Music),
		help:     h,
	}
}

// Err reports a failure to persist the final counters on exit.
func (a App) Err() error {
	return a.err
}

// Init schedules nothing: a paused timer waits for input.
func (a App) Init() tea.Cmd {
	return nil
}

func (a App) tickCmd() tea.Cmd {
	gen := a.tickGen
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.history.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// ctrl+c always quits; q is text while a form has focus.
		if msg.Type == tea.KeyCtrlC {
			return a.exit()
		}
		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a.exit()
		case key.Matches(msg, keys.Toggle):
			return a.toggle()
		case key.Matches(msg, keys.Activate):
			return a.activateCountdown()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewHistory
			return a, a.history.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return a, nil
		}
		if a.activeView != viewTimer {
			return a, nil
		}
		switch {
		case a.zones.Get(zoneCountdown).InBounds(msg):
			return a.activateCountdown()
		case a.zones.Get(zoneToggle).InBounds(msg):
			return a.toggle()
		}
		return a, nil

	case tickMsg:
		if msg.gen != a.tickGen || !a.timer.running() {
			return a, nil
		}
		if a.timer.tick() {
			return a, a.pauseAudio()
		}
		return a, a.tickCmd()

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case settingsSavedMsg:
		a.timer.setDefault(msg.cycle)
		a.status = "Settings saved"
		a.statusErr = false
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		return a, nil

	case historyDataMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewSettings:
		return a.settings.formActive
	case viewHistory:
		return a.history.exportPicking
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	if a.activeView == viewHistory {
		return a.history.refresh()
	}
	return nil
}

// toggle flips between running and paused, counting and persisting the
// transition.
func (a App) toggle() (App, tea.Cmd) {
	var cmds []tea.Cmd

	a.timer.toggle()
	if a.timer.running() {
		if err := a.player.Unpause(); err != nil {
			cmds = append(cmds, errorStatus("audio", err))
		}
		a.tickGen++
		cmds = append(cmds, a.tickCmd())
	} else {
		cmds = append(cmds, a.pauseAudio())
	}

	if err := a.store.SaveTimes(a.today, a.timer.runTimes, a.timer.pauseTimes); err != nil {
		cmds = append(cmds, errorStatus("save counters", err))
	}
	if a.activeView == viewHistory {
		cmds = append(cmds, a.history.refresh())
	}
	return a, tea.Batch(cmds...)
}

// activateCountdown handles a press on the countdown. A second press
// within a second saves and quits.
func (a App) activateCountdown() (App, tea.Cmd) {
	if a.gesture.activate(a.now()) {
		return a.exit()
	}
	return a, nil
}

// exit persists the final counters and quits.
func (a App) exit() (App, tea.Cmd) {
	runTimes, pauseTimes := a.timer.finalCounts()
	a.err = a.store.SaveTimes(a.today, runTimes, pauseTimes)
	a.quitting = true
	return a, tea.Quit
}

func (a App) pauseAudio() tea.Cmd {
	if err := a.player.Pause(); err != nil {
		return errorStatus("audio", err)
	}
	return nil
}

func (a App) View() string {
	if a.quitting {
		return ""
	}
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.renderTimer()
	case viewHistory:
		content = a.history.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return a.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, header, content, footer))
}

func (a App) renderTimer() string {
	style := countdownStyle
	if a.timer.running() {
		style = countdownRunningStyle
	}
	countdown := a.zones.Mark(zoneCountdown, style.Render(a.timer.countdownText()))

	button := a.zones.Mark(zoneToggle, buttonStyle.Render(a.timer.state.label()))
	counts := countsStyle.Render(a.timer.timesText())
	controls := lipgloss.JoinVertical(lipgloss.Center, button, counts)

	body := lipgloss.JoinHorizontal(lipgloss.Center, countdown, "  ", controls)

	w := a.width - 4
	return panelStyle.Width(w).Align(lipgloss.Center).Render(body)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tomato")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Timer indicator in footer when another view is showing
	timerInfo := ""
	if a.activeView != viewTimer {
		if a.timer.running() {
			timerInfo = successStyle.Render(" ● " + a.timer.countdownText())
		} else {
			timerInfo = warningStyle.Render(" ⏸ " + a.timer.countdownText())
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

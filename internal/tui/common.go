package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/tomato/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewHistory
	viewSettings
)

var viewNames = []string{"Timer", "History", "Settings"}

// pollInterval is how often the countdown is recomputed while running.
const pollInterval = 10 * time.Millisecond

// --- Messages ---

// tickMsg drives the countdown. gen ties a tick to the run segment that
// scheduled it so ticks from an earlier segment are dropped.
type tickMsg struct {
	gen int
	at  time.Time
}

type statusMsg struct {
	text    string
	isError bool
}

type historyDataMsg struct {
	days []store.DayCount
	err  error
}

type settingsSavedMsg struct {
	cycle int
	music string
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// countdownText renders seconds as MM:SS. Negative values render as 00:00.
func countdownText(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func timesText(runTimes, pauseTimes int) string {
	return fmt.Sprintf("R/P: %03d/%03d", runTimes, pauseTimes)
}

// centis returns t in hundredths of a second since the Unix epoch.
func centis(t time.Time) int64 {
	return t.UnixMilli() / 10
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func errorStatus(context string, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("%s: %v", context, err), isError: true}
	}
}

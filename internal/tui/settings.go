package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tomato/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	cycle int
	music string

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	cycleInput *string
	musicInput *string
}

func newSettingsModel(s *store.Store, cycle int, music string) settingsModel {
	ci, mi := "", ""
	return settingsModel{
		store:      s,
		cycle:      cycle,
		music:      music,
		cycleInput: &ci,
		musicInput: &mi,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Enter) {
		return s.showForm()
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.cycleInput = countdownText(s.cycle)
	*s.musicInput = s.music

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Cycle (mm:ss)").Value(s.cycleInput).Validate(validateCycle),
			huh.NewInput().Title("Music file").Value(s.musicInput),
		).Title("Timer"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.formActive = false
		s.form = nil
		return s.saveSettings()
	case huh.StateAborted:
		s.formActive = false
		s.form = nil
		return s, nil
	}

	return s, cmd
}

func (s settingsModel) saveSettings() (settingsModel, tea.Cmd) {
	cycle, err := parseCycle(*s.cycleInput)
	if err != nil {
		return s, errorStatus("cycle", err)
	}
	music := strings.TrimSpace(*s.musicInput)
	if music == "" {
		music = store.DefaultMusic
	}

	if err := s.store.SaveSettings(cycle, music); err != nil {
		return s, errorStatus("save settings", err)
	}
	s.cycle = cycle
	s.music = music
	return s, func() tea.Msg {
		return settingsSavedMsg{cycle: cycle, music: music}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(12).Render(label), highlightStyle.Render(value))
	}

	rows := []string{
		title,
		"",
		row("cycle", countdownText(s.cycle)),
		row("music", s.music),
		row("data file", s.store.Path()),
		"",
		mutedStyle.Render("Press enter to edit settings. Music changes apply on next launch."),
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// parseCycle accepts "mm:ss" or a bare number of minutes.
func parseCycle(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("cycle is required")
	}

	var secs int
	if mm, ss, ok := strings.Cut(v, ":"); ok {
		m, err := strconv.Atoi(mm)
		if err != nil {
			return 0, fmt.Errorf("invalid minutes %q", mm)
		}
		sec, err := strconv.Atoi(ss)
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid seconds %q", ss)
		}
		secs = m*60 + sec
	} else {
		m, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid minutes %q", v)
		}
		secs = m * 60
	}

	if secs < 1 || secs > store.MaxCycle {
		return 0, fmt.Errorf("cycle must be between 00:01 and %s", countdownText(store.MaxCycle))
	}
	return secs, nil
}

func validateCycle(v string) error {
	_, err := parseCycle(v)
	return err
}

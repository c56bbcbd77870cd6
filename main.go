package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/tomato/internal/audio"
	"github.com/sadopc/tomato/internal/store"
	"github.com/sadopc/tomato/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	today := store.DayKey(time.Now())

	s := store.New(store.DefaultPath)
	cfg, err := s.Load(today)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.Path(), err)
	}

	player := audio.Open(audio.DefaultEndpoints(), cfg.Music)
	defer player.Close()

	app := tui.NewApp(s, player, today, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	m, err := p.Run()
	if err != nil {
		return err
	}
	if final, ok := m.(tui.App); ok && final.Err() != nil {
		return fmt.Errorf("save counters: %w", final.Err())
	}
	return nil
}

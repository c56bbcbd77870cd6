package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DefaultPath is the document location, relative to the working directory.
const DefaultPath = "tomato.json"

// document is the raw persisted object. Values stay raw so keys and day
// fields this package does not know about survive a rewrite.
type document map[string]json.RawMessage

// Store reads and rewrites the JSON document holding the cycle length,
// the music file and the per-day run/pause counters.
type Store struct {
	path string
}

// New returns a store backed by the document at path. The file is not
// touched until the first Load or Save.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the backing document.
func (s *Store) Path() string {
	return s.path
}

// DayKey returns the document key for the calendar day of t.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// Load returns the configured cycle and music along with the counters
// stored under today. A missing document yields the defaults.
func (s *Store) Load(today string) (*Config, error) {
	cfg := defaultConfig()

	info, err := os.Stat(s.path)
	if err != nil || !info.Mode().IsRegular() {
		return cfg, nil
	}

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	if raw, ok := doc[keyCycle]; ok {
		cycle, err := decodeSeconds(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", keyCycle, err)
		}
		cfg.Cycle = cycle
	}
	if cfg.Cycle > MaxCycle {
		cfg.Cycle = MaxCycle
	}

	if raw, ok := doc[keyMusic]; ok {
		if err := json.Unmarshal(raw, &cfg.Music); err != nil {
			return nil, fmt.Errorf("parse %s: %w", keyMusic, err)
		}
	}

	if raw, ok := doc[today]; ok {
		run, pause, err := decodeDay(raw)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", today, err)
		}
		cfg.RunTimes, cfg.PauseTimes = run, pause
	}
	return cfg, nil
}

// SaveTimes upserts the counters for today and rewrites the whole document.
func (s *Store) SaveTimes(today string, runTimes, pauseTimes int) error {
	doc, err := s.readOrEmpty()
	if err != nil {
		return err
	}

	day := make(map[string]json.RawMessage)
	if raw, ok := doc[today]; ok {
		if err := json.Unmarshal(raw, &day); err != nil {
			return fmt.Errorf("parse day %q: %w", today, err)
		}
	}
	day[keyRun] = mustRaw(runTimes)
	day[keyPause] = mustRaw(pauseTimes)

	data, err := json.Marshal(day)
	if err != nil {
		return fmt.Errorf("marshal day %q: %w", today, err)
	}
	doc[today] = data

	return s.write(doc)
}

// SaveSettings stores the cycle length and music file name, leaving the
// day counters untouched. The cycle is clamped to [1, MaxCycle].
func (s *Store) SaveSettings(cycle int, music string) error {
	if cycle < 1 {
		cycle = 1
	}
	if cycle > MaxCycle {
		cycle = MaxCycle
	}
	if music == "" {
		music = DefaultMusic
	}

	doc, err := s.readOrEmpty()
	if err != nil {
		return err
	}
	doc[keyCycle] = mustRaw(cycle)
	doc[keyMusic] = mustRaw(music)
	return s.write(doc)
}

// History returns the counters of every day in the document, oldest first.
func (s *Store) History() ([]DayCount, error) {
	doc, err := s.readOrEmpty()
	if err != nil {
		return nil, err
	}

	days := make([]DayCount, 0, len(doc))
	for k, raw := range doc {
		date, err := time.ParseInLocation(DayKeyLayout, k, time.Local)
		if err != nil {
			continue
		}
		run, pause, err := decodeDay(raw)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", k, err)
		}
		days = append(days, DayCount{Key: k, Date: date, Run: run, Pause: pause})
	}

	sort.Slice(days, func(i, j int) bool {
		if days[i].Date.Equal(days[j].Date) {
			return days[i].Key < days[j].Key
		}
		return days[i].Date.Before(days[j].Date)
	})
	return days, nil
}

func (s *Store) read() (document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if doc == nil {
		doc = document{}
	}
	return doc, nil
}

func (s *Store) readOrEmpty() (document, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return document{}, nil
	}
	return s.read()
}

func (s *Store) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create document directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func decodeDay(raw json.RawMessage) (run, pause int, err error) {
	var day struct {
		Run   int `json:"Run"`
		Pause int `json:"Pause"`
	}
	if err := json.Unmarshal(raw, &day); err != nil {
		return 0, 0, err
	}
	return day.Run, day.Pause, nil
}

func mustRaw(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// decodeSeconds accepts any JSON number; fractional seconds are dropped.
func decodeSeconds(raw json.RawMessage) (int, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

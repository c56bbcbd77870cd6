package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testDay = "2024-03-05 Tue"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "tomato.json"))
}

func writeDoc(t *testing.T, s *Store, body string) {
	t.Helper()
	if err := os.WriteFile(s.Path(), []byte(body), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
}

func readDoc(t *testing.T, s *Store) map[string]any {
	t.Helper()
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}
	return doc
}

// ============================================================
// Day keys
// ============================================================

func TestDayKey(t *testing.T) {
	d := time.Date(2024, 3, 5, 18, 30, 0, 0, time.Local)
	if got := DayKey(d); got != testDay {
		t.Fatalf("expected %q, got %q", testDay, got)
	}
}

// ============================================================
// Load
// ============================================================

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s := newTestStore(t)
	cfg, err := s.Load(testDay)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cycle != DefaultCycle || cfg.Music != DefaultMusic {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RunTimes != 0 || cfg.PauseTimes != 0 {
		t.Fatalf("expected zero counters, got %+v", cfg)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatal("load should not create the document")
	}
}

func TestLoadDirectoryUsesDefaults(t *testing.T) {
	s := New(t.TempDir())
	cfg, err := s.Load(testDay)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cycle != DefaultCycle {
		t.Fatalf("expected default cycle, got %d", cfg.Cycle)
	}
}

func TestLoadWithoutTodayKey(t *testing.T) {
	s := newTestStore(t)
	writeDoc(t, s, `{"cycle": 600, "music": "waves.ogg", "2024-03-04 Mon": {"Run": 4, "Pause": 2}}`)

	cfg, err := s.Load(testDay)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cycle != 600 || cfg.Music != "waves.ogg" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.RunTimes != 0 || cfg.PauseTimes != 0 {
		t.Fatalf("expected zero counters for a new day, got %d/%d", cfg.RunTimes, cfg.PauseTimes)
	}
}

func TestLoadTodayCounters(t *testing.T) {
	s := newTestStore(t)
	writeDoc(t, s, `{"cycle": 600, "2024-03-05 Tue": {"Run": 3, "Pause": 7}}`)

	cfg, err := s.Load(testDay)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RunTimes != 3 || cfg.PauseTimes != 7 {
		t.Fatalf("expected 3/7, got %d/%d", cfg.RunTimes, cfg.PauseTimes)
	}
	if cfg.Music != DefaultMusic {
		t.Fatalf("missing music should default, got %q", cfg.Music)
	}
}

func TestLoadPartialDay(t *testing.T) {
	s := newTestStore(t)
	writeDoc(t, s, `{"2024-03-05 Tue": {"Run": 2}}`)

	cfg, err := s.Load(testDay)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RunTimes != 2 || cfg.PauseTimes != 0 {
		t.Fatalf("expected 2/0, got %d/%d", cfg.RunTimes, cfg.PauseTimes)
	}
	if cfg.Cycle != DefaultCycle {
		t.Fatalf("missing cycle should default, got %d", cfg.Cycle)
	}
}

func TestLoadClampsCycle(t *testing.T) {
	tests := []struct {
		cycle int
		want  int
	}{
		{3599, 3599},
		{3600, 3599},
		{99999, 3599},
		{60, 60},
	}
	for _, tt := range tests {
		s := newTestStore(t)
		body, _ := json.Marshal(map[string]int{"cycle": tt.cycle})
		writeDoc(t, s, string(body))

		cfg, err := s.Load(testDay)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Cycle != tt.want {
			t.Errorf("cycle %d: expected %d, got %d", tt.cycle, tt.want, cfg.Cycle)
		}
	}
}

func TestLoadMalformedDocument(t *testing.T) {
	s := newTestStore(t)
	writeDoc(t, s, `{"cycle": 1500,`)

	if _, err := s.Load(testDay); err == nil {
		t.Fatal("expected parse error for malformed document")
	}
}

func TestLoadBadCycleType(t *testing.T) {
	s := newTestStore(t)
	writeDoc(t, s, `{"cycle": "long"}`)

	if _, err := s.Load(testDay); err == nil {
		t.Fatal("expected error for non-integer cycle")
	}
}

func TestLoadFloatCycle(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{`{"cycle": 1500.0}`, 1500},
		{`{"cycle": 90.75}`, 90},
		{`{"cycle": 4000.5}`, MaxCycle},
		{`{"cycle": 1.2e3}`, 1200},
	}
	for _, tt := range tests {
		s := newTestStore(t)
		writeDoc(t, s, tt.body)

		cfg, err := s.Load(testDay)
		if err != nil {
			t.Fatalf("%s: %v", tt.body, err)
		}
		if cfg.Cycle != tt.want {
			t.Errorf("%s: cycle = %d, want %d", tt.body, cfg.Cycle, tt.want)
		}
	}
}

// ============================================================
// SaveTimes
// ============================================================

func TestSaveTimesCreatesDocument(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveTimes(testDay, 1, 0); err != nil {
		t.Fatal(err)
	}

	cfg, err := s.Load(testDay)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RunTimes != 1 || cfg.PauseTimes != 0 {
		t.Fatalf("expected 1/0, got %d/%d", cfg.RunTimes, cfg.PauseTimes)
	}
	// No cycle written yet, so defaults still apply.
	if cfg.Cycle != DefaultCycle || cfg.Music != DefaultMusic {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	writeDoc(t, s, `{"cycle": 900, "music": "rain.ogg"}`)

	if err := s.SaveTimes(testDay, 5, 4); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTimes(testDay, 6, 4); err != nil {
		t.Fatal(err)
	}

	cfg, err := s.Load(testDay)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RunTimes != 6 || cfg.PauseTimes != 4 {
		t.Fatalf("expected 6/4, got %d/%d", cfg.RunTimes, cfg.PauseTimes)
	}
	if cfg.Cycle != 900 || cfg.Music != "rain.ogg" {
		t.Fatalf("save should keep settings, got %+v", cfg)
	}
}

func TestSaveTimesKeepsOtherDaysAndKeys(t *testing.T) {
	s := newTestStore(t)
	writeDoc(t, s, `{
  "cycle": 1500,
  "music": "RainyMood.ogg",
  "theme": "dark",
  "2024-03-04 Mon": {"Run": 9, "Pause": 8},
  "2024-03-05 Tue": {"Run": 1, "Pause": 1, "Note": "focus"}
}`)

	if err := s.SaveTimes(testDay, 2, 1); err != nil {
		t.Fatal(err)
	}

	doc := readDoc(t, s)
	if doc["theme"] != "dark" {
		t.Fatalf("unknown key lost: %v", doc)
	}
	prev, ok := doc["2024-03-04 Mon"].(map[string]any)
	if !ok || prev["Run"] != float64(9) || prev["Pause"] != float64(8) {
		t.Fatalf("previous day changed: %v", doc["2024-03-04 Mon"])
	}
	today, ok := doc[testDay].(map[string]any)
	if !ok {
		t.Fatalf("today missing: %v", doc)
	}
	if today["Run"] != float64(2) || today["Pause"] != float64(1) || today["Note"] != "focus" {
		t.Fatalf("unexpected today: %v", today)
	}
}

func TestSaveTimesFormatting(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveTimes(testDay, 3, 7); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if strings.Contains(text, "\r") {
		t.Fatal("document should use \\n line endings")
	}
	if !strings.Contains(text, "\n  \"2024-03-05 Tue\": {\n    \"Pause\": 7,\n    \"Run\": 3\n  }") {
		t.Fatalf("unexpected indentation:\n%s", text)
	}
}

func TestSaveTimesMalformedDocument(t *testing.T) {
	s := newTestStore(t)
	writeDoc(t, s, `not json`)

	if err := s.SaveTimes(testDay, 1, 0); err == nil {
		t.Fatal("expected error when the document is malformed")
	}
}

// ============================================================
// SaveSettings
// ============================================================

func TestSaveSettings(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveTimes(testDay, 2, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSettings(300, "waves.ogg"); err != nil {
		t.Fatal(err)
	}

	cfg, err := s.Load(testDay)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cycle != 300 || cfg.Music != "waves.ogg" {
		t.Fatalf("unexpected settings: %+v", cfg)
	}
	if cfg.RunTimes != 2 || cfg.PauseTimes != 2 {
		t.Fatalf("settings should keep counters, got %d/%d", cfg.RunTimes, cfg.PauseTimes)
	}
}

func TestSaveSettingsClamps(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveSettings(0, ""); err != nil {
		t.Fatal(err)
	}
	cfg, _ := s.Load(testDay)
	if cfg.Cycle != 1 || cfg.Music != DefaultMusic {
		t.Fatalf("expected clamp to 1 and default music, got %+v", cfg)
	}

	if err := s.SaveSettings(7200, "x.ogg"); err != nil {
		t.Fatal(err)
	}
	cfg, _ = s.Load(testDay)
	if cfg.Cycle != MaxCycle {
		t.Fatalf("expected clamp to %d, got %d", MaxCycle, cfg.Cycle)
	}
}

func TestSaveIntoNestedDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "sub", "tomato.json"))
	if err := s.SaveTimes(testDay, 1, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("document not created: %v", err)
	}
}

// ============================================================
// History
// ============================================================

func TestHistoryMissingFile(t *testing.T) {
	s := newTestStore(t)
	days, err := s.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 0 {
		t.Fatalf("expected no days, got %d", len(days))
	}
}

func TestHistorySortedAndFiltered(t *testing.T) {
	s := newTestStore(t)
	writeDoc(t, s, `{
  "cycle": 1500,
  "music": "RainyMood.ogg",
  "2024-03-05 Tue": {"Run": 3, "Pause": 2},
  "2023-12-31 Sun": {"Run": 1, "Pause": 0},
  "2024-03-04 Mon": {"Run": 5, "Pause": 5},
  "notes": {"Run": 100}
}`)

	days, err := s.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d: %+v", len(days), days)
	}
	wantKeys := []string{"2023-12-31 Sun", "2024-03-04 Mon", "2024-03-05 Tue"}
	for i, k := range wantKeys {
		if days[i].Key != k {
			t.Fatalf("day %d: expected %q, got %q", i, k, days[i].Key)
		}
	}
	if days[2].Run != 3 || days[2].Pause != 2 {
		t.Fatalf("unexpected counters: %+v", days[2])
	}
	if days[0].Date.Year() != 2023 || days[0].Date.Month() != time.December {
		t.Fatalf("unexpected date: %v", days[0].Date)
	}
}

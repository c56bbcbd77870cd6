package store

import "time"

const (
	DefaultCycle = 25 * 60
	MaxCycle     = 60*60 - 1
	DefaultMusic = "RainyMood.ogg"
)

// DayKeyLayout is the layout of the per-day keys, e.g. "2024-03-05 Tue".
const DayKeyLayout = "2006-01-02 Mon"

const (
	keyCycle = "cycle"
	keyMusic = "music"
	keyRun   = "Run"
	keyPause = "Pause"
)

// Config is the loaded view of the document for one day.
type Config struct {
	Cycle      int // seconds
	Music      string
	RunTimes   int
	PauseTimes int
}

// DayCount holds the counters stored under one date key.
type DayCount struct {
	Key   string
	Date  time.Time
	Run   int
	Pause int
}

func defaultConfig() *Config {
	return &Config{
		Cycle: DefaultCycle,
		Music: DefaultMusic,
	}
}

package tui

import "time"

// timerState is the run state of the countdown.
type timerState int

const (
	timerPaused timerState = iota
	timerRunning
)

// label is the text of the toggle button, which names the action the
// button performs from this state.
func (s timerState) label() string {
	if s == timerRunning {
		return "Pause"
	}
	return "Run"
}

// timerModel holds the countdown and today's counters.
type timerModel struct {
	now func() time.Time

	state       timerState
	defaultTime int   // seconds per cycle
	currentTime int   // seconds remaining
	startCentis int64 // end of the running segment, in hundredths of a second

	runTimes   int
	pauseTimes int
}

func newTimerModel(defaultTime, runTimes, pauseTimes int, now func() time.Time) timerModel {
	if now == nil {
		now = time.Now
	}
	return timerModel{
		now:         now,
		state:       timerPaused,
		defaultTime: defaultTime,
		currentTime: defaultTime,
		runTimes:    runTimes,
		pauseTimes:  pauseTimes,
	}
}

// run starts a fresh segment of the full cycle length.
func (t *timerModel) run() {
	if t.state == timerRunning {
		return
	}
	t.state = timerRunning
	t.startCentis = centis(t.now()) + int64(t.defaultTime)*100
	t.currentTime = t.defaultTime
	t.runTimes++
}

func (t *timerModel) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pauseTimes++
}

func (t *timerModel) toggle() {
	switch t.state {
	case timerPaused:
		t.run()
	case timerRunning:
		t.pause()
	}
}

// tick recomputes the remaining time. It reports true when the countdown
// ran out, in which case the timer is paused and reset without counting.
func (t *timerModel) tick() bool {
	if t.state != timerRunning {
		return false
	}
	t.currentTime = int(floorDiv(t.startCentis-centis(t.now()), 100))
	if t.countdownText() != "00:00" {
		return false
	}
	t.state = timerPaused
	t.currentTime = t.defaultTime
	return true
}

// setDefault changes the cycle length. A paused timer shows it right away;
// a running one picks it up on the next run.
func (t *timerModel) setDefault(secs int) {
	t.defaultTime = secs
	if t.state == timerPaused {
		t.currentTime = secs
	}
}

// finalCounts returns the counters to persist on exit. Quitting while
// running counts as a pause.
func (t timerModel) finalCounts() (runTimes, pauseTimes int) {
	if t.state == timerRunning {
		return t.runTimes, t.pauseTimes + 1
	}
	return t.runTimes, t.pauseTimes
}

func (t timerModel) running() bool {
	return t.state == timerRunning
}

func (t timerModel) countdownText() string {
	return countdownText(t.currentTime)
}

func (t timerModel) timesText() string {
	return timesText(t.runTimes, t.pauseTimes)
}

// exitGesture detects the countdown being activated twice within a second.
type exitGesture struct {
	last time.Time
}

func (g *exitGesture) activate(now time.Time) bool {
	if !g.last.IsZero() {
		if d := now.Sub(g.last); d >= 0 && d < time.Second {
			return true
		}
	}
	g.last = now
	return false
}

package timer

import "time"

type State int

const (
	StateIdle State = iota
	StateRunning
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Timer is the countdown state of one product. Times are Unix milliseconds.
type Timer struct {
	TotalMs     int64  `json:"totalMs"`
	RemainingMs int64  `json:"remainingMs"`
	Running     bool   `json:"running"`
	EndTimeMs   *int64 `json:"endTimeMs"`
}

func New(totalMs int64) *Timer {
	return &Timer{TotalMs: totalMs, RemainingMs: totalMs}
}

// State infers the state; expired is not stored and exists only until the next start or stop.
func (t *Timer) State() State {
	switch {
	case t.Running:
		return StateRunning
	case t.RemainingMs <= 0 && t.TotalMs > 0:
		return StateExpired
	default:
		return StateIdle
	}
}

// Start always counts down from the full duration; it never resumes.
func (t *Timer) Start(now time.Time) {
	t.RemainingMs = t.TotalMs
	t.Running = true
	end := now.UnixMilli() + t.RemainingMs
	t.EndTimeMs = &end
}

// Stop discards progress.
func (t *Timer) Stop() {
	t.Running = false
	t.RemainingMs = t.TotalMs
	t.EndTimeMs = nil
}

// Advance recomputes the remaining time of a running timer from its expiry
// instant and reports whether the timer expired on this call.
func (t *Timer) Advance(now time.Time) bool {
	if !t.Running {
		return false
	}
	if t.EndTimeMs == nil {
		// Running without an expiry cannot count down; treat it as finished.
		t.RemainingMs = 0
		t.Running = false
		return true
	}
	t.RemainingMs = max(0, *t.EndTimeMs-now.UnixMilli())
	if t.RemainingMs <= 0 {
		t.Running = false
		t.EndTimeMs = nil
		return true
	}
	return false
}

// Retarget applies a new configured total. An idle or expired timer is
// re-seeded to it; a running countdown keeps its remaining time and expiry.
// It reports whether anything changed.
func (t *Timer) Retarget(totalMs int64) bool {
	if t.TotalMs == totalMs {
		return false
	}
	t.TotalMs = totalMs
	if !t.Running {
		t.RemainingMs = totalMs
	}
	return true
}

// Progress is remaining/total clamped to [0,1]; a zero total counts as 1ms.
func (t *Timer) Progress() float64 {
	total := max(t.TotalMs, 1)
	ratio := float64(t.RemainingMs) / float64(total)
	return min(1, max(0, ratio))
}

// Package timer records wall-clock durations of pipeline stages for the
// final report.
package timer

import (
	"fmt"
	"strings"
	"time"
)

// Stage is one finished measurement.
type Stage struct {
	Name     string
	Duration time.Duration
}

// Timer accumulates stage timings. Start/Stop pairs must not nest.
type Timer struct {
	stages  []Stage
	current string
	started time.Time
	now     func() time.Time
}

func New() *Timer {
	return &Timer{now: time.Now}
}

// Start begins timing a stage.
func (t *Timer) Start(name string) {
	t.current = name
	t.started = t.now()
}

// Stop finishes the current stage.
func (t *Timer) Stop() {
	if t.current == "" {
		return
	}
	t.stages = append(t.stages, Stage{Name: t.current, Duration: t.now().Sub(t.started)})
	t.current = ""
}

// Stages returns the finished measurements in order.
func (t *Timer) Stages() []Stage {
	out := make([]Stage, len(t.stages))
	copy(out, t.stages)
	return out
}

// Summary renders one line per stage plus a total.
func (t *Timer) Summary() string {
	var b strings.Builder
	var total time.Duration
	for _, s := range t.stages {
		fmt.Fprintf(&b, "%s time: %s\n", s.Name, s.Duration.Round(time.Millisecond))
		total += s.Duration
	}
	fmt.Fprintf(&b, "Total time: %s", total.Round(time.Millisecond))
	return b.String()
}

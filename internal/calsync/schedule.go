package calsync

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultInterval matches the board's refresh cadence.
const DefaultInterval = 10 * time.Second

// Schedule decides when the next background tick fires. Either a fixed
// interval or a standard five-field cron expression.
type Schedule struct {
	interval time.Duration
	cron     cron.Schedule
}

// ParseSchedule builds a Schedule. A non-empty cron expression wins over
// the interval; a zero interval falls back to DefaultInterval.
func ParseSchedule(interval time.Duration, cronExpr string) (Schedule, error) {
	if cronExpr != "" {
		sched, err := cron.ParseStandard(cronExpr)
		if err != nil {
			return Schedule{}, fmt.Errorf("parse poll schedule %q: %w", cronExpr, err)
		}
		return Schedule{cron: sched}, nil
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Schedule{interval: interval}, nil
}

// Next returns the first tick time strictly after from.
func (s Schedule) Next(from time.Time) time.Time {
	if s.cron != nil {
		return s.cron.Next(from)
	}
	interval := s.interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return from.Add(interval)
}

// intervalTicker abstracts the tick source so tests can drive the engine
// deterministically.
type intervalTicker interface {
	C() <-chan time.Time
	Stop()
}

type scheduleTicker struct {
	ch   chan time.Time
	stop chan struct{}
}

func newScheduleTicker(s Schedule, now func() time.Time) intervalTicker {
	t := &scheduleTicker{
		ch:   make(chan time.Time, 1),
		stop: make(chan struct{}),
	}
	go t.run(s, now)
	return t
}

func (t *scheduleTicker) run(s Schedule, now func() time.Time) {
	for {
		at := now()
		next := s.Next(at)
		timer := time.NewTimer(next.Sub(at))
		select {
		case fired := <-timer.C:
			select {
			case t.ch <- fired:
			case <-t.stop:
				timer.Stop()
				return
			}
		case <-t.stop:
			timer.Stop()
			return
		}
	}
}

func (t *scheduleTicker) C() <-chan time.Time { return t.ch }

func (t *scheduleTicker) Stop() {
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
}

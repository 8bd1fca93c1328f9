package sonyir

import "time"

// ClockTicker is a software tick source for targets without a spare timer
// interrupt. Each Poll fires every expiry that has come due since Start.
// It runs in the foreground, so pair it with NoCriticalSection.
type ClockTicker struct {
	// Now defaults to time.Now.
	Now func() time.Time

	fire  func()
	rate  uint64 // expiries per second
	start time.Time
	fired uint64
}

// NewClockTicker returns a ticker calling fire twice per carrier cycle of freq hertz.
func NewClockTicker(freq uint32, fire func()) *ClockTicker {
	t := &ClockTicker{
		Now:  time.Now,
		fire: fire,
		rate: 2 * uint64(freq),
	}
	t.Start()
	return t
}

// Start restarts the expiry schedule from the current instant.
func (t *ClockTicker) Start() {
	t.start = t.Now()
	t.fired = 0
}

// Poll fires the expiries that are due. A backlog of more than one second,
// left by a long sleep, is dropped rather than replayed.
func (t *ClockTicker) Poll() {
	elapsed := t.Now().Sub(t.start)
	if elapsed < 0 {
		return
	}
	due := uint64(elapsed) * t.rate / uint64(time.Second)
	if due-t.fired > t.rate {
		t.fired = due - 1
	}
	for t.fired < due {
		t.fired++
		t.fire()
	}
	if elapsed > time.Hour {
		t.Start()
	}
}

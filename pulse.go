package sonyir

// PollUntil spins until done reports true, calling idle between checks.
// On hardware idle is nil and the interrupt moves the state along; a
// simulated or software tick source is injected through idle.
func PollUntil(done func() bool, idle func()) {
	for !done() {
		if idle != nil {
			idle()
		}
	}
}

// Scheduler plays single pulses on a Carrier and waits for them to finish.
type Scheduler struct {
	carrier *Carrier
	idle    func()
	resync  func()
}

// NewScheduler returns a Scheduler for c. idle is called while waiting on a
// pulse, it may be nil.
func NewScheduler(c *Carrier, idle func()) *Scheduler {
	return &Scheduler{carrier: c, idle: idle}
}

// NewClockScheduler returns a Scheduler for c whose expiries come from tk.
// The ticker is restarted at the start of every transmission, so time that
// passed between transmissions is never replayed as expiries.
func NewClockScheduler(c *Carrier, tk *ClockTicker) *Scheduler {
	return &Scheduler{carrier: c, idle: tk.Poll, resync: tk.Start}
}

// Resync realigns a software tick source with the present. It does nothing
// for interrupt driven carriers.
func (s *Scheduler) Resync() {
	if s.resync != nil {
		s.resync()
	}
}

// Carrier returns the oscillator the scheduler drives.
func (s *Scheduler) Carrier() *Carrier {
	return s.carrier
}

// RunPulse arms the carrier for ticks expiries and returns once they have elapsed.
func (s *Scheduler) RunPulse(enabled bool, ticks uint16) {
	s.carrier.Arm(enabled, ticks)
	PollUntil(s.pulseDone, s.idle)
}

func (s *Scheduler) pulseDone() bool {
	return !s.carrier.Busy()
}

// Play runs one decoded pulse.
func (s *Scheduler) Play(p Pulse) {
	s.RunPulse(p.Level, p.Ticks())
}

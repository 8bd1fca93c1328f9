package sonyir

// DelayMS waits ms milliseconds by playing dark pulses on the carrier timer.
// Instruction counting loops drift once the tick interrupt is stealing
// cycles, the timer does not.
func (s *Scheduler) DelayMS(ms uint16) {
	ticks := s.carrier.TicksPerMillisecond()
	for ; ms > 0; ms-- {
		s.RunPulse(false, ticks)
	}
}

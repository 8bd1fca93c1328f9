package sonyir

import "sync/atomic"

// Line is the output that drives the IR LED.
type Line interface {
	// Toggle inverts the output level.
	Toggle()
	// Drive makes the line a driven output.
	Drive()
	// Release returns the line to a floating input so it draws no current.
	Release()
}

// Gate is implemented by lines that generate the carrier in hardware. The
// Carrier gates them once per pulse instead of toggling them every tick.
type Gate interface {
	Gate(on bool)
}

// CriticalSection masks the tick interrupt. It follows the shape of TinyGo's
// runtime/interrupt: Disable returns the previous state for Restore.
type CriticalSection interface {
	Disable() uintptr
	Restore(state uintptr)
}

// NoCriticalSection is for tick sources that run in the foreground, such as ClockTicker.
type NoCriticalSection struct{}

func (NoCriticalSection) Disable() uintptr { return 0 }

func (NoCriticalSection) Restore(uintptr) {}

// TimerTop returns the compare value that makes a timer clocked at timerClock
// expire twice per carrier cycle of freq hertz.
func TimerTop(timerClock, freq uint32) uint32 {
	return timerClock/(freq*2) - 1
}

// Carrier is the interrupt driven carrier oscillator. Tick must be called on
// every timer expiry, from the interrupt handler or an equivalent source.
//
// enabled and remaining are written by Arm only with the interrupt masked;
// the rest of the time Tick owns them. Tick is the only code that clears busy.
type Carrier struct {
	line Line
	gate Gate
	cs   CriticalSection
	freq uint32

	enabled   bool
	remaining uint16
	busy      atomic.Bool
}

// NewCarrier returns an idle Carrier toggling line at freq hertz.
func NewCarrier(line Line, cs CriticalSection, freq uint32) *Carrier {
	if cs == nil {
		cs = NoCriticalSection{}
	}
	c := &Carrier{
		line: line,
		cs:   cs,
		freq: freq,
	}
	if g, ok := line.(Gate); ok {
		c.gate = g
	}
	return c
}

// Freq is the carrier frequency in hertz.
func (c *Carrier) Freq() uint32 {
	return c.freq
}

// TicksPerMillisecond is the number of expiries in one millisecond.
func (c *Carrier) TicksPerMillisecond() uint16 {
	return uint16(c.freq / 500)
}

// Tick is the expiry handler body.
func (c *Carrier) Tick() {
	if c.remaining == 0 {
		return
	}
	c.remaining--
	if c.enabled && c.gate == nil {
		c.line.Toggle()
	}
	if c.remaining == 0 {
		if c.enabled && c.gate != nil {
			c.gate.Gate(false)
		}
		c.busy.Store(false)
	}
}

// Arm loads the next pulse: ticks expiries with the carrier on or off.
// The previous pulse must have finished. Arming zero ticks is a no-op.
func (c *Carrier) Arm(enabled bool, ticks uint16) {
	state := c.cs.Disable()
	c.enabled = enabled
	c.remaining = ticks
	if c.gate != nil {
		c.gate.Gate(enabled && ticks > 0)
	}
	c.busy.Store(ticks > 0)
	c.cs.Restore(state)
}

// Busy reports whether a pulse is in flight.
func (c *Carrier) Busy() bool {
	return c.busy.Load()
}

// Reset clears all pulse state.
func (c *Carrier) Reset() {
	state := c.cs.Disable()
	c.enabled = false
	c.remaining = 0
	if c.gate != nil {
		c.gate.Gate(false)
	}
	c.busy.Store(false)
	c.cs.Restore(state)
}

// Attach drives the output line for a transmission.
func (c *Carrier) Attach() {
	c.line.Drive()
}

// Detach floats the output line again.
func (c *Carrier) Detach() {
	c.line.Release()
}

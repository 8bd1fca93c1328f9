// sim provides a simulated timer, LED line and button for exercising the
// transmitter without hardware. Every expiry is delivered synchronously from
// the scheduler's idle hook, so a run is fully deterministic.
package sim

import (
	"time"

	sonyir "github.com/krupski/sony-ir"
)

// Mask is a CriticalSection that tracks nesting. Delivering an expiry
// while it is held is a bug in the code under test and panics.
type Mask struct {
	depth    int
	Disabled int // number of Disable calls
}

func (m *Mask) Disable() uintptr {
	m.Disabled++
	m.depth++
	return uintptr(m.depth - 1)
}

func (m *Mask) Restore(state uintptr) {
	m.depth = int(state)
}

// Held reports whether the interrupt is currently masked.
func (m *Mask) Held() bool {
	return m.depth > 0
}

// Line records every change made to the LED output, stamped with the expiry
// count at which it happened.
type Line struct {
	clock *uint64

	Level  bool
	Driven bool

	Toggles  []uint64
	Drives   []uint64
	Releases []uint64
	// UndrivenToggles counts toggles made while the line was floating.
	UndrivenToggles int
}

func (l *Line) Toggle() {
	l.Level = !l.Level
	l.Toggles = append(l.Toggles, *l.clock)
	if !l.Driven {
		l.UndrivenToggles++
	}
}

func (l *Line) Drive() {
	l.Driven = true
	l.Drives = append(l.Drives, *l.clock)
}

func (l *Line) Release() {
	l.Driven = false
	l.Releases = append(l.Releases, *l.clock)
}

// Bench is a complete simulated transmitter.
type Bench struct {
	Ticks uint64 // expiries delivered so far
	Freq  uint32

	Line    *Line
	Mask    *Mask
	Carrier *sonyir.Carrier
	Sched   *sonyir.Scheduler
	Tx      *sonyir.TxDevice
}

// NewBench wires a simulated transmitter running at freq hertz.
func NewBench(freq uint32) *Bench {
	b := &Bench{Freq: freq, Mask: &Mask{}}
	b.Line = &Line{clock: &b.Ticks}
	b.Carrier = sonyir.NewCarrier(b.Line, b.Mask, freq)
	b.Sched = sonyir.NewScheduler(b.Carrier, b.Tick)
	b.Tx = sonyir.NewTxDevice(b.Sched)
	return b
}

// Tick delivers one timer expiry.
func (b *Bench) Tick() {
	if b.Mask.Held() {
		panic("sim: expiry delivered with the interrupt masked")
	}
	b.Ticks++
	b.Carrier.Tick()
}

// At converts an expiry count into elapsed time.
func (b *Bench) At(tick uint64) time.Duration {
	return time.Duration(tick * uint64(time.Second) / (2 * uint64(b.Freq)))
}

// Burst is a run of carrier toggles. Start is the expiry count when the burst
// was armed and End the count at its last toggle.
type Burst struct {
	Start, End uint64
}

// Len is the burst length in expiries.
func (b Burst) Len() uint64 {
	return b.End - b.Start
}

// Bursts groups the recorded toggles into carrier bursts.
func (b *Bench) Bursts() []Burst {
	var out []Burst
	for i, t := range b.Line.Toggles {
		if i > 0 && t == b.Line.Toggles[i-1]+1 {
			out[len(out)-1].End = t
			continue
		}
		out = append(out, Burst{Start: t - 1, End: t})
	}
	return out
}

// End is the expiry count at which the last transmission released the line,
// or the current count if the line was never released.
func (b *Bench) End() uint64 {
	if n := len(b.Line.Releases); n > 0 {
		return b.Line.Releases[n-1]
	}
	return b.Ticks
}

// TickPairs returns the recorded waveform as on-off pairs counted in expiries.
// The last space runs until End.
func (b *Bench) TickPairs() [][2]uint64 {
	bursts := b.Bursts()
	out := make([][2]uint64, len(bursts))
	for i, bu := range bursts {
		next := b.End()
		if i+1 < len(bursts) {
			next = bursts[i+1].Start
		}
		out[i] = [2]uint64{bu.Len(), next - bu.End}
	}
	return out
}

// Pairs is TickPairs converted to time.
func (b *Bench) Pairs() []sonyir.TimePair {
	tp := b.TickPairs()
	out := make([]sonyir.TimePair, len(tp))
	for i, p := range tp {
		out[i] = sonyir.TimePair{b.At(p[0]), b.At(p[1])}
	}
	return out
}

// Replay feeds the recorded waveform to sm through an Envelope, as a
// receiver watching the LED would.
func (b *Bench) Replay(sm sonyir.RxStateMachine) {
	env := sonyir.NewEnvelope(sm)
	bursts := b.Bursts()
	for _, bu := range bursts {
		env.Mark(b.At(bu.Start))
		env.Space(b.At(bu.End))
	}
	if len(bursts) > 0 {
		env.Flush(b.At(b.End()))
	}
}

// Reset forgets the recording and the expiry count.
func (b *Bench) Reset() {
	b.Ticks = 0
	b.Line.Toggles = nil
	b.Line.Drives = nil
	b.Line.Releases = nil
	b.Line.UndrivenToggles = 0
}

// Button plays back a list of samples, then holds Rest.
type Button struct {
	Samples []bool
	Rest    bool
	Reads   int
}

func (b *Button) Pressed() bool {
	b.Reads++
	if len(b.Samples) == 0 {
		return b.Rest
	}
	s := b.Samples[0]
	b.Samples = b.Samples[1:]
	return s
}

// Sleeper wakes only for edges supplied through Press. Like the INT0 edge it
// models, the wake is disabled again as soon as it fires.
type Sleeper struct {
	pending bool
	Sleeps  int
	Wakes   int
}

// Press latches a falling edge.
func (s *Sleeper) Press() {
	s.pending = true
}

func (s *Sleeper) Sleep() bool {
	s.Sleeps++
	if !s.pending {
		return false
	}
	s.pending = false
	s.Wakes++
	return true
}

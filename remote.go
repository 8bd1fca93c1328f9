package sonyir

import "context"

const (
	// DefaultDebounce is the number of agreeing 1 ms samples that settle the button.
	DefaultDebounce = 10
	// ShutterRepeat is how many times the shutter command is sent per press.
	ShutterRepeat = 3
)

// Button reports the state of the trigger button.
type Button interface {
	// Pressed is true while the button pulls its line low.
	Pressed() bool
}

// Sleeper puts the device in its lowest power state until the button edge.
type Sleeper interface {
	// Sleep arms the wake edge and powers down. It returns false when it
	// came back without the edge having fired.
	Sleep() bool
}

// CycleResult describes one pass through Remote.Cycle.
type CycleResult struct {
	Woken bool
	Sent  bool
	Err   error
}

// Remote is the button triggered transmitter loop.
type Remote struct {
	Tx      *TxDevice
	Button  Button
	Sleeper Sleeper

	Command WordReader
	Repeat  uint16
	Gap     uint16 // milliseconds after each repeat

	// Debounce is the count of consecutive 1 ms samples that must agree.
	Debounce int
	// PressWindow bounds the press debounce in milliseconds. Zero waits forever.
	PressWindow int

	// OnCycle, if set, is called after every cycle.
	OnCycle func(CycleResult)
}

// Cycle sleeps until the button wakes the device, settles the press, sends
// the command and waits for the release to settle.
func (r *Remote) Cycle() CycleResult {
	var res CycleResult
	if !r.Sleeper.Sleep() {
		r.report(res)
		return res
	}
	res.Woken = true

	if !r.settle(true, r.PressWindow) {
		r.report(res)
		return res
	}

	res.Err = r.Tx.Send(r.Command, r.Repeat, r.Gap)
	res.Sent = res.Err == nil

	// a held button must not retrigger
	r.settle(false, 0)
	r.report(res)
	return res
}

// Run repeats Cycle until ctx is done.
func (r *Remote) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Cycle()
	}
}

// settle samples the button once per millisecond until debounce samples in a
// row read pressed. window > 0 gives up after that many samples.
func (r *Remote) settle(pressed bool, window int) bool {
	need := r.Debounce
	if need <= 0 {
		need = DefaultDebounce
	}
	sched := r.Tx.Scheduler()
	for n, taken := need, 0; n > 0; taken++ {
		if window > 0 && taken >= window {
			return false
		}
		if r.Button.Pressed() == pressed {
			n--
		} else {
			n = need
		}
		sched.DelayMS(1)
	}
	return true
}

func (r *Remote) report(res CycleResult) {
	if r.OnCycle != nil {
		r.OnCycle(res)
	}
}

//go:build tinygo && !avr

// pwmled runs the transmitter on boards with hardware PWM, like the RP2040.
// The PWM slice generates the carrier and is gated per pulse; pulse timing
// comes from a ClockTicker polled while the scheduler waits.
package pwmled

import (
	"machine"
	"sync/atomic"
	"time"

	"github.com/sparques/pwm"

	sonyir "github.com/krupski/sony-ir"
)

// Line is a PWM backed carrier output. It implements sonyir.Gate.
type Line struct {
	pin    machine.Pin
	pgroup pwm.Group
	ch     uint8
	duty   uint32
	freq   uint32
	on     bool
}

func NewLine(pin machine.Pin, freq uint32) *Line {
	l := &Line{pin: pin, freq: freq}
	l.Drive()
	l.Release()
	return l
}

func (l *Line) Gate(on bool) {
	l.on = on
	if on {
		l.pgroup.Set(l.ch, l.duty)
		return
	}
	l.pgroup.Set(l.ch, 0)
}

func (l *Line) Toggle() {
	l.Gate(!l.on)
}

func (l *Line) Drive() {
	l.pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	l.pgroup = pwm.Get(l.pin)
	l.pgroup.Configure(machine.PWMConfig{Period: uint64(1e9) / uint64(l.freq)})
	l.ch, _ = l.pgroup.Channel(l.pin)
	l.duty = l.pgroup.Top() / 2
	l.Gate(false)
}

func (l *Line) Release() {
	l.Gate(false)
	l.pin.Configure(machine.PinConfig{Mode: machine.PinInput})
}

// Button is an active low push button with the internal pull up enabled.
type Button struct {
	pin  machine.Pin
	woke atomic.Bool
}

func NewButton(pin machine.Pin) *Button {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &Button{pin: pin}
}

func (b *Button) Pressed() bool {
	return !b.pin.Get()
}

// Sleep waits for a falling edge on the button. The scheduler idles the
// core between checks.
func (b *Button) Sleep() bool {
	b.woke.Store(false)
	b.pin.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		b.woke.Store(true)
	})
	for !b.woke.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	b.pin.SetInterrupt(machine.PinFalling, nil)
	return true
}

// Board bundles the pieces of a PWM transmitter.
type Board struct {
	Tx     *sonyir.TxDevice
	Button *Button
	Ticker *sonyir.ClockTicker
}

func New(led, button machine.Pin, freq uint32) *Board {
	c := sonyir.NewCarrier(NewLine(led, freq), sonyir.NoCriticalSection{}, freq)
	tk := sonyir.NewClockTicker(freq, c.Tick)
	return &Board{
		Tx:     sonyir.NewTxDevice(sonyir.NewClockScheduler(c, tk)),
		Button: NewButton(button),
		Ticker: tk,
	}
}

// periphio runs the transmitter on a Linux board through periph.io. The
// carrier comes from the pin's hardware PWM, gated once per pulse; pulse
// timing comes from a ClockTicker.
package periphio

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	sonyir "github.com/krupski/sony-ir"
)

var (
	ErrNoPin = errors.New("no such gpio pin")
)

// Line drives the IR LED from a PWM capable gpio. It implements sonyir.Gate.
type Line struct {
	pin   gpio.PinIO
	freq  physic.Frequency
	level gpio.Level
	err   error
}

func NewLine(pin gpio.PinIO, freq uint32) *Line {
	return &Line{pin: pin, freq: physic.Frequency(freq) * physic.Hertz}
}

func (l *Line) Gate(on bool) {
	if on {
		l.keep(l.pin.PWM(gpio.DutyHalf, l.freq))
		return
	}
	l.level = gpio.Low
	l.keep(l.pin.Out(gpio.Low))
}

func (l *Line) Toggle() {
	l.level = !l.level
	l.keep(l.pin.Out(l.level))
}

func (l *Line) Drive() {
	l.level = gpio.Low
	l.keep(l.pin.Out(gpio.Low))
}

func (l *Line) Release() {
	l.keep(l.pin.In(gpio.Float, gpio.NoEdge))
}

// Err returns the first error the pin reported, if any.
func (l *Line) Err() error {
	return l.err
}

func (l *Line) keep(err error) {
	if err != nil && l.err == nil {
		l.err = fmt.Errorf("%s: %w", l.pin.Name(), err)
	}
}

// Button is an active low push button. It also serves as the Sleeper:
// Sleep blocks on the falling edge for at most Timeout.
type Button struct {
	pin     gpio.PinIO
	Timeout time.Duration
	err     error
}

func NewButton(pin gpio.PinIO) (*Button, error) {
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("%s: %w", pin.Name(), err)
	}
	return &Button{pin: pin, Timeout: time.Second}, nil
}

func (b *Button) Pressed() bool {
	return b.pin.Read() == gpio.Low
}

// Sleep arms the falling edge, waits for it and disarms it again.
func (b *Button) Sleep() bool {
	if err := b.pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		b.keep(err)
		return false
	}
	ok := b.pin.WaitForEdge(b.Timeout)
	if err := b.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		b.keep(err)
		return false
	}
	return ok
}

// Err returns the first error the pin reported, if any.
func (b *Button) Err() error {
	return b.err
}

func (b *Button) keep(err error) {
	if b.err == nil {
		b.err = fmt.Errorf("%s: %w", b.pin.Name(), err)
	}
}

// Board bundles a periph.io transmitter.
type Board struct {
	Line   *Line
	Button *Button
	Ticker *sonyir.ClockTicker
	Tx     *sonyir.TxDevice
}

// Open initialises periph.io and claims the named pins.
func Open(ledName, buttonName string, freq uint32) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %w", err)
	}
	led := gpioreg.ByName(ledName)
	if led == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPin, ledName)
	}
	btn := gpioreg.ByName(buttonName)
	if btn == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPin, buttonName)
	}
	button, err := NewButton(btn)
	if err != nil {
		return nil, err
	}
	return New(led, button, freq), nil
}

// New builds a Board on already configured pins.
func New(led gpio.PinIO, button *Button, freq uint32) *Board {
	line := NewLine(led, freq)
	line.Release()
	c := sonyir.NewCarrier(line, sonyir.NoCriticalSection{}, freq)
	tk := sonyir.NewClockTicker(freq, c.Tick)
	return &Board{
		Line:   line,
		Button: button,
		Ticker: tk,
		Tx:     sonyir.NewTxDevice(sonyir.NewClockScheduler(c, tk)),
	}
}

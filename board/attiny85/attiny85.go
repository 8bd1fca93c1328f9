//go:build tinygo && attiny85

// attiny85 runs the transmitter on an ATtiny85 clocked at 16 MHz.
//
// Timer0 in CTC mode expires twice per carrier cycle and its compare match
// interrupt drives the Carrier. PB0 (pin 5) drives the IR LED, PB2 (pin 7)
// is the button, pulled low when pressed and wired to INT0. PB1 (pin 6) is
// reserved for selecting a code.
package attiny85

import (
	"device/avr"
	"runtime/interrupt"
	"sync/atomic"

	sonyir "github.com/krupski/sony-ir"
)

const (
	CPUFreq = 16000000

	irBit     = 1 << 0
	selectBit = 1 << 1
	buttonBit = 1 << 2
)

var (
	carrier *sonyir.Carrier
	woke    atomic.Bool
)

// Line toggles PB0 through the PINB write-to-toggle latch.
type Line struct{}

func (Line) Toggle() { avr.PINB.Set(irBit) }

func (Line) Drive() { avr.DDRB.SetBits(irBit) }

func (Line) Release() { avr.DDRB.ClearBits(irBit) }

type irqSection struct{}

func (irqSection) Disable() uintptr { return uintptr(interrupt.Disable()) }

func (irqSection) Restore(state uintptr) { interrupt.Restore(interrupt.State(state)) }

// Button reads PB2.
type Button struct{}

func (Button) Pressed() bool { return !avr.PINB.HasBits(buttonBit) }

// Select reads the reserved code select input on PB1.
func Select() bool { return !avr.PINB.HasBits(selectBit) }

// Sleeper powers the chip down until INT0 sees the button held low.
type Sleeper struct{}

func (Sleeper) Sleep() bool {
	state := interrupt.Disable()
	woke.Store(false)
	avr.GIMSK.SetBits(avr.GIMSK_INT0)
	avr.MCUCR.ClearBits(avr.MCUCR_SM0)
	avr.MCUCR.SetBits(avr.MCUCR_SM1 | avr.MCUCR_SE)
	interrupt.Restore(state)

	// an edge between Restore and here clears SE, making this a no-op
	avr.Asm("sleep")
	avr.MCUCR.ClearBits(avr.MCUCR_SE)
	return woke.Load()
}

func handleWake(interrupt.Interrupt) {
	// latch once, the release debounce must not wake us again
	avr.GIMSK.ClearBits(avr.GIMSK_INT0)
	avr.MCUCR.ClearBits(avr.MCUCR_SE)
	woke.Store(true)
}

// Configure sets up timer0 for a carrier of freq hertz and returns the
// transmitter that plays on it.
func Configure(freq uint32) *sonyir.TxDevice {
	state := interrupt.Disable()

	carrier = sonyir.NewCarrier(Line{}, irqSection{}, freq)

	// button is an input, LED floats until a transmission drives it
	avr.DDRB.ClearBits(irBit | selectBit | buttonBit)
	avr.PORTB.ClearBits(irBit)

	avr.TCCR0A.Set(avr.TCCR0A_WGM01) // CTC, OCR0A is top
	avr.TCCR0B.Set(avr.TCCR0B_CS00)  // F_CPU/1
	avr.OCR0A.Set(uint8(sonyir.TimerTop(CPUFreq, freq)))
	avr.TIMSK.Set(avr.TIMSK_OCIE0A)

	interrupt.New(avr.IRQ_TIMER0_COMPA, func(interrupt.Interrupt) {
		carrier.Tick()
	})
	interrupt.New(avr.IRQ_INT0, handleWake)

	interrupt.Restore(state)

	return sonyir.NewTxDevice(sonyir.NewScheduler(carrier, nil))
}

// sirc implements the Sony SIRC remote protocol: an encoder that turns a code
// into a timing script and an sonyir.RxStateMachine that decodes it again.
package sirc

import (
	"errors"
	"time"

	sonyir "github.com/krupski/sony-ir"
)

const (
	// Unit is the SIRC base time; every mark and space is a multiple of it.
	Unit = 600 * time.Microsecond
	// FramePeriod is the time from the start of one frame to the next.
	FramePeriod = 45 * time.Millisecond
)

var (
	// ErrFrameBits is returned for frames that are not 12, 15 or 20 bits wide.
	ErrFrameBits = errors.New("sirc frames are 12, 15 or 20 bits")
)

var (
	StartPair = sonyir.TimePair{4 * Unit, Unit}
	ZeroPair  = sonyir.TimePair{Unit, Unit}
	OnePair   = sonyir.TimePair{2 * Unit, Unit}
)

// ShutterCode is the shutter release (focus and shoot) code of Sony DSLRs.
const ShutterCode = 0xB4B8F

// Shutter is the shutter release command as a 40 kHz timing script:
// header, then 20 bits sent most significant bit first.
var Shutter = sonyir.Script{
	// header
	0x8060, 0x0018,
	// data
	0x8030, 0x0018, 0x8018, 0x0018, 0x8030, 0x0018, 0x8030, 0x0018, // B
	0x8018, 0x0018, 0x8030, 0x0018, 0x8018, 0x0018, 0x8018, 0x0018, // 4
	0x8030, 0x0018, 0x8018, 0x0018, 0x8030, 0x0018, 0x8030, 0x0018, // B
	0x8030, 0x0018, 0x8018, 0x0018, 0x8018, 0x0018, 0x8018, 0x0018, // 8
	0x8030, 0x0018, 0x8030, 0x0018, 0x8030, 0x0018, 0x8030, 0x01C8, // F
	sonyir.Terminator,
}

type Frame struct {
	Code uint32
	Bits int
}

// Validate checks that f has a SIRC frame width.
func (f Frame) Validate() error {
	switch f.Bits {
	case 12, 15, 20:
		return nil
	}
	return ErrFrameBits
}

// MarshalFrame implements sonyir.FrameMarshaller. The final space is
// stretched so the whole frame lasts FramePeriod. A frame that fails
// Validate marshals to nothing.
func (f Frame) MarshalFrame() []sonyir.TimePair {
	if f.Validate() != nil {
		return nil
	}
	out := make([]sonyir.TimePair, f.Bits+1)
	out[0] = StartPair
	total := StartPair[0] + StartPair[1]

	for i := 0; i < f.Bits; i++ {
		p := ZeroPair
		if (f.Code>>(f.Bits-1-i))&1 == 1 {
			p = OnePair
		}
		out[i+1] = p
		total += p[0] + p[1]
	}

	last := &out[f.Bits]
	if pad := FramePeriod - total; pad > 0 {
		last[1] += pad
	}
	return out
}

// Script encodes f for a carrier of freq hertz.
func (f Frame) Script(freq uint32) (sonyir.Script, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return sonyir.EncodePairs(freq, f.MarshalFrame()...), nil
}

// StateMachine decodes SIRC frames of a fixed width.
type StateMachine struct {
	CmdHandler func(Frame)
	Bits       int

	buf      uint32
	bitcount int
	synced   bool
}

// NewStateMachine returns a decoder for frames of bits width calling
// cmdHandler for every complete frame.
func NewStateMachine(bits int, cmdHandler func(Frame)) *StateMachine {
	return &StateMachine{CmdHandler: cmdHandler, Bits: bits}
}

func (sm *StateMachine) HandleTimePair(pair sonyir.TimePair) {
	on := pair[0]
	if on > 3*time.Millisecond {
		return
	}
	if on > 2*time.Millisecond {
		// start of frame
		sm.buf = 0
		sm.bitcount = 0
		sm.synced = true
		return
	}
	if !sm.synced {
		return
	}

	sm.buf <<= 1
	if on > 900*time.Microsecond {
		sm.buf |= 1
	}
	sm.bitcount++

	if sm.bitcount != sm.Bits {
		return
	}
	sm.synced = false
	if sm.CmdHandler != nil {
		sm.CmdHandler(Frame{Code: sm.buf, Bits: sm.Bits})
	}
}

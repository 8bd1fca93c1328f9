package sonyir

import "errors"

const (
	// LevelBit is the descriptor bit that turns the carrier on for a pulse.
	LevelBit = 0x8000
	// MaxDuration is the largest duration a descriptor carries, in carrier cycles.
	MaxDuration = 0x7FFF
	// Terminator ends a Script.
	Terminator = 0x0000
)

var (
	// ErrUnterminated is returned when a script runs out of words before its terminator.
	ErrUnterminated = errors.New("script has no terminator")
)

// Pulse is one decoded script descriptor.
//
// Word layout, 16 bits:
//
//	15     14                         0
//	+-----+----------------------------+
//	|level|  duration (carrier cycles) |
//	+-----+----------------------------+
type Pulse struct {
	Level    bool
	Duration uint16
}

// Decode splits a script word into its level and duration.
func Decode(w uint16) Pulse {
	return Pulse{
		Level:    w&LevelBit != 0,
		Duration: w & MaxDuration,
	}
}

// Encode packs p into a script word. Durations above MaxDuration lose their top bit.
func Encode(p Pulse) uint16 {
	w := p.Duration & MaxDuration
	if p.Level {
		w |= LevelBit
	}
	return w
}

// IsTerminator reports whether p ends a script. The level bit is ignored.
func (p Pulse) IsTerminator() bool {
	return p.Duration == 0
}

// Ticks is the pulse length in carrier half-periods, the unit the Carrier counts.
func (p Pulse) Ticks() uint16 {
	return p.Duration << 1
}

// WordReader gives indexed access to a stored script. Implementations may
// read from flash, EEPROM or plain memory; the player only ever reads.
type WordReader interface {
	Len() int
	Word(i int) uint16
}

// Script is a terminated sequence of descriptor words held in memory.
type Script []uint16

func (s Script) Len() int { return len(s) }

func (s Script) Word(i int) uint16 { return s[i] }

// Pulses decodes s up to, not including, its terminator.
func (s Script) Pulses() ([]Pulse, error) {
	var out []Pulse
	for _, w := range s {
		p := Decode(w)
		if p.IsTerminator() {
			return out, nil
		}
		out = append(out, p)
	}
	return out, ErrUnterminated
}

// Ticks sums the half-periods one pass over s takes.
func (s Script) Ticks() (uint64, error) {
	pulses, err := s.Pulses()
	var n uint64
	for _, p := range pulses {
		n += uint64(p.Ticks())
	}
	return n, err
}

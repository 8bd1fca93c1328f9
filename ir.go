package sonyir

import "time"

const (
	// Freq38Khz is the most commonly used frequency for IR remotes
	Freq38Khz = 38000
	// Freq40Khz is the carrier Sony uses for SIRC
	Freq40Khz = 40000
)

// TimePair encodes two durations used to encode an on-off amount of time.
type TimePair [2]time.Duration

// FrameMarshaller defines an interface for marshalling data to slice of TimePairs
type FrameMarshaller interface {
	MarshalFrame() []TimePair
}

// Cycles converts d into whole carrier cycles at freq, rounded to nearest.
func Cycles(d time.Duration, freq uint32) uint32 {
	return uint32((uint64(d)*uint64(freq) + uint64(time.Second)/2) / uint64(time.Second))
}

// EncodePairs converts on-off pairs into a terminated Script for a carrier of
// freq hertz. Zero length halves are skipped; a half longer than MaxDuration
// cycles is split over several descriptors.
func EncodePairs(freq uint32, pairs ...TimePair) Script {
	out := make(Script, 0, 2*len(pairs)+1)
	for _, p := range pairs {
		out = appendSplit(out, true, Cycles(p[0], freq))
		out = appendSplit(out, false, Cycles(p[1], freq))
	}
	return append(out, Terminator)
}

func appendSplit(s Script, level bool, cycles uint32) Script {
	for cycles > 0 {
		n := cycles
		if n > MaxDuration {
			n = MaxDuration
		}
		s = append(s, Encode(Pulse{Level: level, Duration: uint16(n)}))
		cycles -= n
	}
	return s
}

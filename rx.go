package sonyir

import "time"

// RxStateMachine consumes on-off pairs as a receiver reports them.
type RxStateMachine interface {
	HandleTimePair(TimePair)
}

// Fanout passes every pair to each of its machines in order.
type Fanout []RxStateMachine

func (f Fanout) HandleTimePair(pair TimePair) {
	for _, sm := range f {
		sm.HandleTimePair(pair)
	}
}

// MultiRxStateMachine combines machines so one pair stream feeds all of them.
// Nil entries are dropped.
func MultiRxStateMachine(machines ...RxStateMachine) Fanout {
	f := make(Fanout, 0, len(machines))
	for _, sm := range machines {
		if sm != nil {
			f = append(f, sm)
		}
	}
	return f
}

// PairStats tallies the pairs it sees.
type PairStats struct {
	Pairs       int
	LongestMark time.Duration
	Total       time.Duration
}

func (ps *PairStats) HandleTimePair(pair TimePair) {
	ps.Pairs++
	if pair[0] > ps.LongestMark {
		ps.LongestMark = pair[0]
	}
	ps.Total += pair[0] + pair[1]
}

// Envelope rebuilds on-off pairs from the edges of a demodulated signal,
// the way a receiver module reports them. Mark is when the carrier appears,
// Space when it stops. Times are offsets from any fixed origin.
type Envelope struct {
	sm        RxStateMachine
	lastEdge  time.Duration
	lastMark  time.Duration
	inMark    bool
	seenFirst bool
}

func NewEnvelope(sm RxStateMachine) *Envelope {
	return &Envelope{sm: sm}
}

// Mark records the start of a carrier burst. It closes the previous pair.
func (e *Envelope) Mark(at time.Duration) {
	if e.inMark {
		return
	}
	if e.seenFirst {
		e.sm.HandleTimePair(TimePair{e.lastMark, at - e.lastEdge})
	}
	e.inMark = true
	e.seenFirst = true
	e.lastEdge = at
}

// Space records the end of a carrier burst.
func (e *Envelope) Space(at time.Duration) {
	if !e.inMark {
		return
	}
	e.lastMark = at - e.lastEdge
	e.lastEdge = at
	e.inMark = false
}

// Flush emits the pending pair, ending its space at at.
func (e *Envelope) Flush(at time.Duration) {
	if e.inMark {
		e.Space(at)
	}
	if e.seenFirst {
		e.sm.HandleTimePair(TimePair{e.lastMark, at - e.lastEdge})
	}
	e.seenFirst = false
}

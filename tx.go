package sonyir

// TxDevice transmits command scripts through a Scheduler.
type TxDevice struct {
	sched *Scheduler
}

func NewTxDevice(sched *Scheduler) *TxDevice {
	return &TxDevice{sched: sched}
}

// Scheduler returns the scheduler the device plays pulses on.
func (tx *TxDevice) Scheduler() *Scheduler {
	return tx.sched
}

// Send plays script repeat times, waiting delayMS milliseconds after every
// pass including the last. The LED line is driven only while sending.
//
// A script that runs out of words before its terminator stops the
// transmission and Send returns ErrUnterminated.
func (tx *TxDevice) Send(script WordReader, repeat, delayMS uint16) error {
	if repeat == 0 {
		return nil
	}
	tx.sched.Resync()
	c := tx.sched.Carrier()
	c.Attach()
	defer c.Detach()

	for ; repeat > 0; repeat-- {
		if err := tx.sendOnce(script); err != nil {
			return err
		}
		tx.sched.DelayMS(delayMS)
	}
	return nil
}

func (tx *TxDevice) sendOnce(script WordReader) error {
	n := script.Len()
	for i := 0; i < n; i++ {
		p := Decode(script.Word(i))
		if p.IsTerminator() {
			return nil
		}
		tx.sched.Play(p)
	}
	return ErrUnterminated
}

// SendFrame encodes fm for the carrier frequency and sends it. If fm has a
// Validate method its error aborts the send before the LED is driven.
func (tx *TxDevice) SendFrame(fm FrameMarshaller, repeat, delayMS uint16) error {
	if v, ok := fm.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return tx.Send(EncodePairs(tx.sched.Carrier().Freq(), fm.MarshalFrame()...), repeat, delayMS)
}

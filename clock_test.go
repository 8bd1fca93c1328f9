package sonyir

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestClockTicker(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	fired := 0
	tk := NewClockTicker(Freq40Khz, func() { fired++ })
	tk.Now = clk.now
	tk.Start()

	tk.Poll()
	if fired != 0 {
		t.Fatalf("fired %d before any time passed", fired)
	}

	clk.advance(time.Millisecond)
	tk.Poll()
	if fired != 80 {
		t.Errorf("after 1ms fired %d, want 80", fired)
	}

	clk.advance(10 * time.Microsecond)
	tk.Poll()
	if fired != 80 {
		t.Errorf("after a partial period fired %d, want 80", fired)
	}

	clk.advance(2500 * time.Nanosecond)
	tk.Poll()
	if fired != 81 {
		t.Errorf("after completing the period fired %d, want 81", fired)
	}

	clk.advance(5 * time.Second)
	tk.Poll()
	if fired != 82 {
		t.Errorf("after a long stall fired %d, want the backlog dropped to 82", fired)
	}
}

func TestSchedulerOnClockTicker(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	line := &countingLine{}
	c := NewCarrier(line, NoCriticalSection{}, Freq40Khz)
	tk := NewClockTicker(Freq40Khz, c.Tick)
	tk.Now = func() time.Time {
		clk.advance(12500 * time.Nanosecond)
		return clk.now()
	}
	tk.Start()

	s := NewScheduler(c, tk.Poll)
	s.RunPulse(true, 10)
	s.DelayMS(2)
	if line.toggles != 10 {
		t.Errorf("toggled %d times, want 10", line.toggles)
	}
	if c.Busy() {
		t.Error("carrier still busy")
	}
}

func TestSendResyncsClockTicker(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	line := &countingLine{}
	c := NewCarrier(line, NoCriticalSection{}, Freq40Khz)
	fired := 0
	tk := NewClockTicker(Freq40Khz, func() {
		fired++
		c.Tick()
	})
	tk.Now = func() time.Time {
		clk.advance(12500 * time.Nanosecond)
		return clk.now()
	}
	tk.Start()
	tx := NewTxDevice(NewClockScheduler(c, tk))

	// idle time before the button press must not be replayed
	clk.advance(500 * time.Millisecond)
	if err := tx.Send(Script{0x8005, Terminator}, 1, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if fired != 10 {
		t.Errorf("fired %d expiries, want 10", fired)
	}
	if line.toggles != 10 {
		t.Errorf("toggled %d times, want 10", line.toggles)
	}
}

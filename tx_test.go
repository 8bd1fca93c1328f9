package sonyir_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	sonyir "github.com/krupski/sony-ir"
	"github.com/krupski/sony-ir/sim"
	"github.com/krupski/sony-ir/sirc"
)

// countingReader records which words the player reads.
type countingReader struct {
	sonyir.Script
	reads   int
	maxRead int
}

func (r *countingReader) Word(i int) uint16 {
	r.reads++
	if i > r.maxRead {
		r.maxRead = i
	}
	return r.Script[i]
}

func scriptTicks(t *testing.T, s sonyir.Script) uint64 {
	t.Helper()
	n, err := s.Ticks()
	if err != nil {
		t.Fatalf("script ticks: %v", err)
	}
	return n
}

// wantPairs are the on-off pairs, in expiries, one pass over s should produce.
func wantPairs(s sonyir.Script, delayTicks uint64) [][2]uint64 {
	pulses, _ := s.Pulses()
	var out [][2]uint64
	for i := 0; i+1 < len(pulses); i += 2 {
		out = append(out, [2]uint64{uint64(pulses[i].Ticks()), uint64(pulses[i+1].Ticks())})
	}
	if len(out) > 0 {
		out[len(out)-1][1] += delayTicks
	}
	return out
}

func TestSendShutter(t *testing.T) {
	b := sim.NewBench(sonyir.Freq40Khz)
	if err := b.Tx.Send(sirc.Shutter, 3, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}

	one := wantPairs(sirc.Shutter, 0)
	if len(one) != 21 {
		t.Fatalf("shutter script has %d pairs, want 21", len(one))
	}
	var want [][2]uint64
	for i := 0; i < 3; i++ {
		want = append(want, one...)
	}
	if diff := cmp.Diff(want, b.TickPairs()); diff != "" {
		t.Errorf("waveform mismatch (-want +got):\n%s", diff)
	}

	total := 3 * scriptTicks(t, sirc.Shutter)
	if total != 3*3600 {
		t.Errorf("three shutter frames = %d ticks, want %d", total, 3*3600)
	}
	if b.Ticks != total {
		t.Errorf("consumed %d ticks, want %d", b.Ticks, total)
	}
	if diff := cmp.Diff([]uint64{0}, b.Line.Drives); diff != "" {
		t.Errorf("drives (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint64{total}, b.Line.Releases); diff != "" {
		t.Errorf("releases (-want +got):\n%s", diff)
	}
	if b.Line.Driven || b.Line.Level {
		t.Errorf("after send: driven %v level %v, want released and low", b.Line.Driven, b.Line.Level)
	}
	if b.Line.UndrivenToggles != 0 {
		t.Errorf("%d toggles while the line was floating", b.Line.UndrivenToggles)
	}
}

func TestSendShutterDecodes(t *testing.T) {
	b := sim.NewBench(sonyir.Freq40Khz)
	if err := b.Tx.Send(sirc.Shutter, 3, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}
	var got []sirc.Frame
	b.Replay(sirc.NewStateMachine(20, func(f sirc.Frame) {
		got = append(got, f)
	}))
	want := []sirc.Frame{
		{Code: sirc.ShutterCode, Bits: 20},
		{Code: sirc.ShutterCode, Bits: 20},
		{Code: sirc.ShutterCode, Bits: 20},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded frames (-want +got):\n%s", diff)
	}
}

func TestSendReadsUpToTerminator(t *testing.T) {
	r := &countingReader{Script: sonyir.Script{0x8004, 0x0004, sonyir.Terminator, 0x8FFF, 0x0FFF}}
	b := sim.NewBench(sonyir.Freq40Khz)
	if err := b.Tx.Send(r, 4, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if r.reads != 12 {
		t.Errorf("read %d words, want 12", r.reads)
	}
	if r.maxRead != 2 {
		t.Errorf("read up to index %d, want 2", r.maxRead)
	}
	if b.Ticks != 4*16 {
		t.Errorf("consumed %d ticks, want %d", b.Ticks, 4*16)
	}
}

func TestSendZeroRepeat(t *testing.T) {
	b := sim.NewBench(sonyir.Freq40Khz)
	if err := b.Tx.Send(sirc.Shutter, 0, 100); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if b.Ticks != 0 || len(b.Line.Toggles) != 0 || len(b.Line.Drives) != 0 {
		t.Errorf("repeat 0: ticks %d toggles %d drives %d, want nothing", b.Ticks, len(b.Line.Toggles), len(b.Line.Drives))
	}
}

func TestSendInterRepeatDelay(t *testing.T) {
	s := sonyir.Script{0x8010, 0x0010, sonyir.Terminator}
	b := sim.NewBench(sonyir.Freq40Khz)
	if err := b.Tx.Send(s, 2, 5); err != nil {
		t.Fatalf("Send: %v", err)
	}
	// the delay follows the last repeat as well
	want := append(wantPairs(s, 5*80), wantPairs(s, 5*80)...)
	if diff := cmp.Diff(want, b.TickPairs()); diff != "" {
		t.Errorf("waveform mismatch (-want +got):\n%s", diff)
	}
	if b.Ticks != 2*(64+400) {
		t.Errorf("consumed %d ticks, want %d", b.Ticks, 2*(64+400))
	}
}

func TestSendEmptyScript(t *testing.T) {
	b := sim.NewBench(sonyir.Freq40Khz)
	if err := b.Tx.Send(sonyir.Script{sonyir.Terminator}, 4, 2); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(b.Line.Toggles) != 0 {
		t.Errorf("empty script toggled %d times", len(b.Line.Toggles))
	}
	if b.Ticks != 4*2*80 {
		t.Errorf("consumed %d ticks, want %d", b.Ticks, 4*2*80)
	}
}

func TestSendUnterminated(t *testing.T) {
	b := sim.NewBench(sonyir.Freq40Khz)
	err := b.Tx.Send(sonyir.Script{0x8004, 0x0004}, 3, 1)
	if !errors.Is(err, sonyir.ErrUnterminated) {
		t.Fatalf("err = %v, want ErrUnterminated", err)
	}
	if b.Ticks != 16 {
		t.Errorf("consumed %d ticks, want one pass of 16", b.Ticks)
	}
	if b.Line.Driven {
		t.Error("line left driven after a failed send")
	}
}

func TestSendNoScript(t *testing.T) {
	b := sim.NewBench(sonyir.Freq40Khz)
	if err := b.Tx.Send(sonyir.Script{}, 1, 0); !errors.Is(err, sonyir.ErrUnterminated) {
		t.Errorf("err = %v, want ErrUnterminated", err)
	}
}

func TestSendLongestPulse(t *testing.T) {
	s := sonyir.Script{sonyir.Encode(sonyir.Pulse{Level: true, Duration: sonyir.MaxDuration}), sonyir.Terminator}
	b := sim.NewBench(sonyir.Freq40Khz)
	if err := b.Tx.Send(s, 1, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if b.Ticks != 2*sonyir.MaxDuration || len(b.Line.Toggles) != 2*sonyir.MaxDuration {
		t.Errorf("ticks %d toggles %d, want %d", b.Ticks, len(b.Line.Toggles), 2*sonyir.MaxDuration)
	}
}

func TestSendFrame(t *testing.T) {
	b := sim.NewBench(sonyir.Freq40Khz)
	if err := b.Tx.SendFrame(sirc.Frame{Code: sirc.ShutterCode, Bits: 20}, 1, 0); err != nil {
		t.Fatalf("SendFrame: %v", err)
	}
	if diff := cmp.Diff(wantPairs(sirc.Shutter, 0), b.TickPairs()); diff != "" {
		t.Errorf("waveform mismatch (-want +got):\n%s", diff)
	}
}

func TestSendFrameBadWidth(t *testing.T) {
	for _, bits := range []int{-1, 7} {
		b := sim.NewBench(sonyir.Freq40Khz)
		err := b.Tx.SendFrame(sirc.Frame{Code: sirc.ShutterCode, Bits: bits}, 3, 10)
		if !errors.Is(err, sirc.ErrFrameBits) {
			t.Errorf("%d bit frame: err = %v, want ErrFrameBits", bits, err)
		}
		if b.Ticks != 0 || len(b.Line.Drives) != 0 {
			t.Errorf("%d bit frame: %d ticks and %d drives, want nothing sent", bits, b.Ticks, len(b.Line.Drives))
		}
	}
}

func TestDelayMS(t *testing.T) {
	tests := []struct {
		freq uint32
		ms   uint16
	}{
		{sonyir.Freq40Khz, 0},
		{sonyir.Freq40Khz, 1},
		{sonyir.Freq40Khz, 10},
		{sonyir.Freq40Khz, 65535},
		{sonyir.Freq38Khz, 1},
		{sonyir.Freq38Khz, 250},
	}
	for _, tt := range tests {
		b := sim.NewBench(tt.freq)
		b.Sched.DelayMS(tt.ms)
		want := uint64(tt.ms) * uint64(tt.freq/500)
		if b.Ticks != want {
			t.Errorf("DelayMS(%d) at %d Hz took %d ticks, want %d", tt.ms, tt.freq, b.Ticks, want)
		}
		if len(b.Line.Toggles) != 0 {
			t.Errorf("DelayMS(%d) toggled the line", tt.ms)
		}
	}
}

func TestRunPulseDarkMatchesLit(t *testing.T) {
	for _, d := range []uint16{1, 2, 3, 100, 4097} {
		lit := sim.NewBench(sonyir.Freq40Khz)
		lit.Sched.RunPulse(true, d)
		dark := sim.NewBench(sonyir.Freq40Khz)
		dark.Sched.RunPulse(false, d)

		if lit.Ticks != uint64(d) || dark.Ticks != uint64(d) {
			t.Errorf("pulse %d: lit %d ticks, dark %d ticks", d, lit.Ticks, dark.Ticks)
		}
		if len(lit.Line.Toggles) != int(d) || len(dark.Line.Toggles) != 0 {
			t.Errorf("pulse %d: lit toggled %d, dark toggled %d", d, len(lit.Line.Toggles), len(dark.Line.Toggles))
		}
	}
}

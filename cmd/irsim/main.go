// irsim plays a command on the simulated transmitter and reports the
// waveform it produced, decoded back through the SIRC receiver.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	sonyir "github.com/krupski/sony-ir"
	"github.com/krupski/sony-ir/internal/config"
	"github.com/krupski/sony-ir/sim"
	"github.com/krupski/sony-ir/sirc"
)

var log = logrus.New()

func main() {
	var (
		configFile = flag.String("config", "", "YAML config file")
		code       = flag.String("code", "", "SIRC code to encode instead of the shutter table, e.g. 0x095")
		bits       = flag.Int("bits", 20, "SIRC frame width for -code")
		dump       = flag.Bool("dump", false, "print every on-off pair")
	)
	flag.Parse()

	log.Formatter = new(logrus.TextFormatter)
	log.Out = os.Stdout

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lvl, _ := cfg.Level()
	log.Level = lvl

	script, err := pickScript(*code, *bits, cfg.CarrierHz)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(cfg, script, *bits, *dump); err != nil {
		log.Fatal(err)
	}
}

func pickScript(code string, bits int, freq uint32) (sonyir.Script, error) {
	if code == "" {
		if freq != sonyir.Freq40Khz {
			log.Warnf("shutter table is timed for %d Hz, carrier is %d Hz", sonyir.Freq40Khz, freq)
		}
		return sirc.Shutter, nil
	}
	n, err := strconv.ParseUint(code, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("parse code %q: %w", code, err)
	}
	return sirc.Frame{Code: uint32(n), Bits: bits}.Script(freq)
}

func run(cfg config.Config, script sonyir.Script, bits int, dump bool) error {
	bench := sim.NewBench(cfg.CarrierHz)
	if err := bench.Tx.Send(script, cfg.Repeat, cfg.GapMS); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	log.WithFields(logrus.Fields{
		"carrier_hz": cfg.CarrierHz,
		"repeat":     cfg.Repeat,
		"gap_ms":     cfg.GapMS,
		"ticks":      bench.Ticks,
		"toggles":    len(bench.Line.Toggles),
		"duration":   bench.At(bench.Ticks),
	}).Info("transmission simulated")

	if dump {
		for i, p := range bench.Pairs() {
			fmt.Printf("%3d  on %-10v off %v\n", i, p[0], p[1])
		}
	}

	replay(bench, bits, cfg.Repeat)
	return nil
}

// replay decodes the recorded waveform and returns the decoded frames along
// with a tally of the pairs the receiver saw.
func replay(bench *sim.Bench, bits int, sent uint16) ([]sirc.Frame, sonyir.PairStats) {
	var (
		frames []sirc.Frame
		stats  sonyir.PairStats
	)
	decoder := sirc.NewStateMachine(bits, func(f sirc.Frame) {
		frames = append(frames, f)
		log.WithField("code", fmt.Sprintf("%#x", f.Code)).Debug("frame decoded")
	})
	bench.Replay(sonyir.MultiRxStateMachine(decoder, &stats))

	entry := log.WithFields(logrus.Fields{
		"pairs":        stats.Pairs,
		"longest_mark": stats.LongestMark,
		"received":     stats.Total,
		"frames":       len(frames),
	})
	if len(frames) != int(sent) {
		entry.Warnf("decoded %d frames, sent %d", len(frames), sent)
	} else {
		entry.Info("waveform decoded")
	}
	return frames, stats
}

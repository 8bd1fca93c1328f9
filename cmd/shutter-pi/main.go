// shutter-pi is the shutter remote on a Linux board: an IR LED on a PWM
// capable pin and a push button to ground.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	sonyir "github.com/krupski/sony-ir"
	"github.com/krupski/sony-ir/host/periphio"
	"github.com/krupski/sony-ir/internal/config"
	"github.com/krupski/sony-ir/sirc"
)

var log = logrus.New()

func main() {
	configFile := flag.String("config", "", "YAML config file")
	flag.Parse()

	log.Formatter = new(logrus.TextFormatter)
	log.Out = os.Stdout

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lvl, _ := cfg.Level()
	log.Level = lvl

	board, err := periphio.Open(cfg.Pins.LED, cfg.Pins.Button, cfg.CarrierHz)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	remote := &sonyir.Remote{
		Tx:          board.Tx,
		Button:      board.Button,
		Sleeper:     board.Button,
		Command:     sirc.Shutter,
		Repeat:      cfg.Repeat,
		Gap:         cfg.GapMS,
		Debounce:    cfg.Debounce,
		PressWindow: cfg.PressWindowMS,
		OnCycle: func(res sonyir.CycleResult) {
			switch {
			case res.Err != nil:
				log.WithError(res.Err).Error("transmission failed")
			case res.Sent:
				log.Info("shutter released")
			case res.Woken:
				log.Debug("press did not settle")
			}
			if err := board.Line.Err(); err != nil {
				log.WithError(err).Warn("led pin")
			}
		},
	}

	log.WithFields(logrus.Fields{
		"led":        cfg.Pins.LED,
		"button":     cfg.Pins.Button,
		"carrier_hz": cfg.CarrierHz,
	}).Info("waiting for the button")

	if err := remote.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal(err)
	}
	log.Info("stopped")
}

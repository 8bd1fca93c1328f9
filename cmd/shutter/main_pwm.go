//go:build tinygo && rp2040

package main

import (
	"context"
	"machine"

	sonyir "github.com/krupski/sony-ir"
	"github.com/krupski/sony-ir/board/pwmled"
	"github.com/krupski/sony-ir/sirc"
)

const (
	ledPin    = machine.GP15
	buttonPin = machine.GP14
)

func main() {
	board := pwmled.New(ledPin, buttonPin, sonyir.Freq40Khz)

	remote := &sonyir.Remote{
		Tx:       board.Tx,
		Button:   board.Button,
		Sleeper:  board.Button,
		Command:  sirc.Shutter,
		Repeat:   sonyir.ShutterRepeat,
		Debounce: sonyir.DefaultDebounce,
	}
	remote.Run(context.Background())
}

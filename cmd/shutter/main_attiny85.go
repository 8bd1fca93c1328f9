//go:build tinygo && attiny85

package main

import (
	"context"

	sonyir "github.com/krupski/sony-ir"
	"github.com/krupski/sony-ir/board/attiny85"
	"github.com/krupski/sony-ir/sirc"
)

func main() {
	tx := attiny85.Configure(sonyir.Freq40Khz)

	remote := &sonyir.Remote{
		Tx:       tx,
		Button:   attiny85.Button{},
		Sleeper:  attiny85.Sleeper{},
		Command:  sirc.Shutter,
		Repeat:   sonyir.ShutterRepeat,
		Debounce: sonyir.DefaultDebounce,
	}
	remote.Run(context.Background())
}

//go:build tinygo

package screen

import (
	"machine"

	"tinygo.org/x/drivers/sh1106"
)

const ADDR = 0x3C

// NewSH1106 configures a 128x64 SH1106 panel on bus. With a multiplexer the
// channel must already be selected.
func NewSH1106(bus *machine.I2C) Panel {
	disp := sh1106.NewI2C(bus)
	disp.Configure(sh1106.Config{
		Width:    128,
		Height:   64,
		VccState: sh1106.SWITCHCAPVCC,
		Address:  ADDR,
	})
	disp.ClearBuffer()
	return &disp
}

//go:build tinygo

package matrix

import (
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// NewStrip configures pin as an output and returns a WS2812 strip on it.
func NewStrip(pin machine.Pin) Writer {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return ws2812.NewWS2812(pin)
}

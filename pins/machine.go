//go:build tinygo

package pins

import (
	"machine"
	"time"
)

// Machine samples microcontroller pins through the TinyGo machine package.
type Machine struct {
	start time.Time
}

func NewMachine() *Machine {
	return &Machine{start: time.Now()}
}

func (m *Machine) ReadDigital(pin Pin) bool {
	return machine.Pin(pin).Get()
}

func (m *Machine) NowMillis() int64 {
	return time.Since(m.start).Milliseconds()
}

// ConfigureInputs sets every pin to a pulled-up input.
func (m *Machine) ConfigureInputs(pins ...Pin) error {
	for _, p := range pins {
		machine.Pin(p).Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	return nil
}

//go:build tinygo

package joystick

import "machine"

// ADC reads joystick axes through the microcontroller's ADC. TinyGo returns
// 16-bit samples; they are scaled down to 0..1023.
type ADC struct {
	channels map[int]machine.ADC
}

func NewADC(pins ...machine.Pin) *ADC {
	machine.InitADC()
	a := &ADC{channels: make(map[int]machine.ADC, len(pins))}
	for _, p := range pins {
		ch := machine.ADC{Pin: p}
		ch.Configure(machine.ADCConfig{})
		a.channels[int(p)] = ch
	}
	return a
}

func (a *ADC) ReadAnalog(pin int) int {
	ch, ok := a.channels[pin]
	if !ok {
		return 0
	}
	return int(ch.Get() >> 6)
}

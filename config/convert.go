package config

import (
	"log/slog"
	"strings"

	"encoder-ctrl/joystick"
	"encoder-ctrl/matrix"
	"encoder-ctrl/pins"
	"encoder-ctrl/rotary"
)

// ToEncoderPins returns the encoder lines. A negative sw_pin means no button.
func (e EncoderConfig) ToEncoderPins() rotary.Pins {
	sw := pins.Pin(e.SWPin)
	if e.SWPin < 0 {
		sw = pins.NoPin
	}
	return rotary.Pins{
		CLK: pins.Pin(e.CLKPin),
		DT:  pins.Pin(e.DTPin),
		SW:  sw,
	}
}

func (e EncoderConfig) ToEncoderOptions(logger *slog.Logger) []rotary.Option {
	opts := []rotary.Option{
		rotary.WithStepsPerDetent(e.StepsPerDetent),
		rotary.WithSampleInterval(e.SampleInterval()),
		rotary.WithInvertDirection(e.InvertDirection),
		rotary.WithPressDebounce(e.PressDebounce()),
	}
	if logger != nil {
		opts = append(opts, rotary.WithLogger(logger))
	}
	return opts
}

func (j JoystickConfig) ToThresholds() joystick.Thresholds {
	return joystick.Thresholds{Low: j.Low, High: j.High, Press: j.Press}
}

// ToLayout maps the layout name; anything but "rows" is a zigzag strip.
func (m MatrixConfig) ToLayout() matrix.Layout {
	if strings.ToLower(m.Layout) == LayoutRows {
		return matrix.Rows
	}
	return matrix.ZigZag
}

// Package config holds the YAML configuration shared by the firmware and the
// host daemon. Defaults are the canonical hardware setup; a file only needs
// the keys it changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Encoder  EncoderConfig  `yaml:"encoder"`
	Joystick JoystickConfig `yaml:"joystick"`
	Matrix   MatrixConfig   `yaml:"matrix"`
	Screen   ScreenConfig   `yaml:"screen"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type EncoderConfig struct {
	CLKPin           int  `yaml:"clk_pin"`
	DTPin            int  `yaml:"dt_pin"`
	SWPin            int  `yaml:"sw_pin"` // -1 when the button is not wired
	StepsPerDetent   int  `yaml:"steps_per_detent"`
	SampleIntervalMS int  `yaml:"sample_interval_ms"`
	InvertDirection  bool `yaml:"invert_direction"`
	PressDebounceMS  int  `yaml:"press_debounce_ms"`
}

type JoystickConfig struct {
	Enabled        bool `yaml:"enabled"`
	XPin           int  `yaml:"x_pin"`
	YPin           int  `yaml:"y_pin"`
	Low            int  `yaml:"low"`
	High           int  `yaml:"high"`
	Press          int  `yaml:"press"`
	PollIntervalMS int  `yaml:"poll_interval_ms"`
}

type MatrixConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Pin           int    `yaml:"pin"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Layout        string `yaml:"layout"` // "zigzag" or "rows"
	Brightness    int    `yaml:"brightness"`
	ScrollDelayMS int    `yaml:"scroll_delay_ms"`
}

// ScreenConfig describes an SH1106 OLED on I2C0, optionally behind a
// TCA9548A multiplexer.
type ScreenConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SDAPin     int    `yaml:"sda_pin"`
	SCLPin     int    `yaml:"scl_pin"`
	MuxAddress int    `yaml:"mux_address"` // 0 when the panel is wired directly
	MuxChannel int    `yaml:"mux_channel"`
	Label      string `yaml:"label"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

const (
	LayoutZigZag = "zigzag"
	LayoutRows   = "rows"
)

// Default returns the canonical configuration: 4 quarter-steps per detent,
// 1 ms sampling and a 30 ms press debounce.
func Default() Config {
	return Config{
		Encoder: EncoderConfig{
			CLKPin:           13,
			DTPin:            14,
			SWPin:            16,
			StepsPerDetent:   4,
			SampleIntervalMS: 1,
			InvertDirection:  false,
			PressDebounceMS:  30,
		},
		Joystick: JoystickConfig{
			Enabled:        false,
			XPin:           0,
			YPin:           1,
			Low:            400,
			High:           600,
			Press:          1000,
			PollIntervalMS: 50,
		},
		Matrix: MatrixConfig{
			Enabled:       false,
			Pin:           2,
			Width:         8,
			Height:        8,
			Layout:        LayoutZigZag,
			Brightness:    32,
			ScrollDelayMS: 150,
		},
		Screen: ScreenConfig{
			Enabled:    false,
			SDAPin:     0,
			SCLPin:     1,
			MuxAddress: 0x70,
			MuxChannel: 0,
			Label:      "Level",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Parse overlays YAML data onto the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	return cfg, nil
}

// Load reads, parses and validates the file at path.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	e := c.Encoder
	if e.CLKPin < 0 || e.DTPin < 0 {
		return errors.New("encoder.clk_pin and encoder.dt_pin must be >= 0")
	}
	if e.CLKPin == e.DTPin {
		return errors.New("encoder.clk_pin and encoder.dt_pin must differ")
	}
	if e.SWPin < -1 {
		return errors.New("encoder.sw_pin must be >= 0, or -1 when unused")
	}
	if e.SWPin >= 0 && (e.SWPin == e.CLKPin || e.SWPin == e.DTPin) {
		return errors.New("encoder.sw_pin must differ from clk_pin and dt_pin")
	}
	if e.StepsPerDetent <= 0 {
		return errors.New("encoder.steps_per_detent must be > 0")
	}
	if e.SampleIntervalMS <= 0 || e.SampleIntervalMS > 1000 {
		return errors.New("encoder.sample_interval_ms must be between 1 and 1000")
	}
	if e.PressDebounceMS < 0 {
		return errors.New("encoder.press_debounce_ms must be >= 0")
	}

	if c.Joystick.Enabled {
		j := c.Joystick
		if j.XPin < 0 || j.YPin < 0 {
			return errors.New("joystick.x_pin and joystick.y_pin must be >= 0")
		}
		if j.Low >= j.High {
			return errors.New("joystick.low must be < joystick.high")
		}
		if j.High >= j.Press {
			return errors.New("joystick.high must be < joystick.press")
		}
		if j.PollIntervalMS <= 0 {
			return errors.New("joystick.poll_interval_ms must be > 0")
		}
	}

	if c.Matrix.Enabled {
		m := c.Matrix
		if m.Width <= 0 || m.Height <= 0 {
			return errors.New("matrix.width and matrix.height must be > 0")
		}
		switch strings.ToLower(m.Layout) {
		case LayoutZigZag, LayoutRows:
		default:
			return fmt.Errorf("matrix.layout must be %q or %q", LayoutZigZag, LayoutRows)
		}
		if m.Brightness < 0 || m.Brightness > 255 {
			return errors.New("matrix.brightness must be between 0 and 255")
		}
		if m.ScrollDelayMS <= 0 {
			return errors.New("matrix.scroll_delay_ms must be > 0")
		}
	}

	if c.Screen.Enabled {
		sc := c.Screen
		if sc.SDAPin < 0 || sc.SCLPin < 0 || sc.SDAPin == sc.SCLPin {
			return errors.New("screen.sda_pin and screen.scl_pin must be distinct pins >= 0")
		}
		if sc.MuxAddress != 0 && (sc.MuxAddress < 0x08 || sc.MuxAddress > 0x77) {
			return errors.New("screen.mux_address must be 0 or a 7-bit address between 0x08 and 0x77")
		}
		if sc.MuxChannel < 0 || sc.MuxChannel > 7 {
			return errors.New("screen.mux_channel must be between 0 and 7")
		}
	}

	if c.Logging.Level == "" {
		return errors.New("logging.level must not be empty")
	}
	return nil
}

func (e EncoderConfig) SampleInterval() time.Duration {
	return time.Duration(e.SampleIntervalMS) * time.Millisecond
}

func (e EncoderConfig) PressDebounce() time.Duration {
	return time.Duration(e.PressDebounceMS) * time.Millisecond
}

func (j JoystickConfig) PollInterval() time.Duration {
	return time.Duration(j.PollIntervalMS) * time.Millisecond
}

func (m MatrixConfig) ScrollDelay() time.Duration {
	return time.Duration(m.ScrollDelayMS) * time.Millisecond
}

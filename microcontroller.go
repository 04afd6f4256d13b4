//go:build tinygo

package main

import (
	"context"
	_ "embed"
	"errors"
	"image/color"
	"machine"
	"time"

	"encoder-ctrl/config"
	"encoder-ctrl/dial"
	"encoder-ctrl/joystick"
	"encoder-ctrl/matrix"
	"encoder-ctrl/multiplexer"
	"encoder-ctrl/pins"
	"encoder-ctrl/rotary"
	"encoder-ctrl/screen"
)

//go:embed config.yaml
var configYAML []byte

var (
	bannerColor = color.RGBA{0, 128, 255, 255}
	keyColor    = color.RGBA{255, 96, 0, 255}
)

func main() {
	time.Sleep(time.Second * 2)

	cfg, err := config.Parse(configYAML)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		println("Invalid config:", err.Error())
		return
	}

	ctx := context.Background()
	sampler := pins.NewMachine()

	enc := rotary.NewEncoder(sampler, cfg.Encoder.ToEncoderPins(), cfg.Encoder.ToEncoderOptions(nil)...)

	var displays []dial.Display

	var leds *matrix.Matrix
	if cfg.Matrix.Enabled {
		strip := matrix.NewStrip(machine.Pin(cfg.Matrix.Pin))
		leds = matrix.New(strip, int16(cfg.Matrix.Width), int16(cfg.Matrix.Height), cfg.Matrix.ToLayout())
		if err := leds.SetBrightness(uint8(cfg.Matrix.Brightness)); err != nil {
			println("Failed to set brightness:", err.Error())
		}
		if err := leds.ScrollText(ctx, "hi", bannerColor, cfg.Matrix.ScrollDelay()); err != nil {
			println("Failed to scroll banner:", err.Error())
		}
		displays = append(displays, leds)
	}

	if cfg.Screen.Enabled {
		oled, err := initScreen(cfg.Screen)
		if err != nil {
			println("Failed to initialize screen:", err.Error())
		} else {
			displays = append(displays, oled)
		}
	}

	level := dial.New(sampler.NowMillis, 0, displays...)
	level.Attach(enc)
	if err := level.Draw(); err != nil {
		println("Failed to draw level:", err.Error())
	}

	enc.OnTurned(rotary.Clockwise, func() {
		println("Clockwise", enc.Position(), level.Level())
	})
	enc.OnTurned(rotary.CounterClockwise, func() {
		println("Counter Clockwise", enc.Position(), level.Level())
	})
	enc.OnPressed(func() {
		println("Pressed")
	})

	if cfg.Joystick.Enabled {
		j := cfg.Joystick
		adc := joystick.NewADC(machine.Pin(j.XPin), machine.Pin(j.YPin))
		watcher := joystick.NewWatcher(adc, j.XPin, j.YPin, j.ToThresholds(), j.PollInterval(), nil)
		for k := joystick.Right; k <= joystick.Press; k++ {
			key := k
			watcher.OnKey(key, func() {
				println("Joystick:", key.String())
				if leds == nil {
					return
				}
				if err := leds.ShowLetter(key.String(), keyColor); err != nil {
					println("Failed to show key:", err.Error())
				}
			})
		}
		watcher.Start(ctx)
	}

	println("Starting encoder")
	if err := enc.Initialize(ctx); err != nil {
		println("Failed to start encoder:", err.Error())
		return
	}

	select {}
}

func initScreen(sc config.ScreenConfig) (*screen.Screen, error) {
	i2c := machine.I2C0
	err := i2c.Configure(machine.I2CConfig{
		SDA:       machine.Pin(sc.SDAPin),
		SCL:       machine.Pin(sc.SCLPin),
		Frequency: 400000,
	})
	if err != nil {
		return nil, err
	}

	var mux *multiplexer.Multiplexer
	if sc.MuxAddress != 0 {
		mux = multiplexer.NewMultiplexer(i2c, uint16(sc.MuxAddress))
		if err := mux.Select(uint8(sc.MuxChannel)); err != nil {
			return nil, err
		}
	}
	if i2c.Tx(screen.ADDR, []byte{0x00}, nil) != nil {
		return nil, errors.New("no display found at 0x3C")
	}

	panel := screen.NewSH1106(i2c)
	if mux == nil {
		return screen.NewScreen(panel, nil, 0, sc.Label), nil
	}
	return screen.NewScreen(panel, mux, uint8(sc.MuxChannel), sc.Label), nil
}

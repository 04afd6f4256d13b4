package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"encoder-ctrl/pins"
	"encoder-ctrl/rotary"
)

// Sample is one recorded reading of the encoder lines. Levels are 0 or 1;
// the button is active low.
type Sample struct {
	At  int64 `yaml:"at"`
	CLK int   `yaml:"clk"`
	DT  int   `yaml:"dt"`
	SW  int   `yaml:"sw"`
}

var errEmptyTrace = errors.New("trace has no samples")

func LoadTrace(path string) ([]Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace file: %w", err)
	}
	return ParseTrace(data)
}

// ParseTrace decodes a YAML list of samples. Timestamps must not go
// backwards and every level must be 0 or 1.
func ParseTrace(data []byte) ([]Sample, error) {
	var samples []Sample
	if err := yaml.UnmarshalStrict(data, &samples); err != nil {
		return nil, fmt.Errorf("decode trace yaml: %w", err)
	}
	if len(samples) == 0 {
		return nil, errEmptyTrace
	}
	for i, s := range samples {
		if i > 0 && s.At < samples[i-1].At {
			return nil, fmt.Errorf("sample %d: at %d is before %d", i, s.At, samples[i-1].At)
		}
		for _, v := range []int{s.CLK, s.DT, s.SW} {
			if v != 0 && v != 1 {
				return nil, fmt.Errorf("sample %d: level %d must be 0 or 1", i, v)
			}
		}
	}
	return samples, nil
}

// Replay drives enc through samples on script. The first sample is the
// resting state captured by the encoder; every later one is a single Poll.
func Replay(ctx context.Context, enc *rotary.Encoder, script *pins.Script, p rotary.Pins, samples []Sample) error {
	if len(samples) == 0 {
		return errEmptyTrace
	}

	apply := func(s Sample) {
		script.SetNow(s.At)
		script.SetPair(p.CLK, p.DT, s.CLK == 1, s.DT == 1)
		if p.SW != pins.NoPin {
			script.Set(p.SW, s.SW == 1)
		}
	}

	apply(samples[0])
	if err := enc.Capture(); err != nil {
		return err
	}
	for _, s := range samples[1:] {
		if err := ctx.Err(); err != nil {
			return err
		}
		apply(s)
		enc.Poll()
	}
	return nil
}

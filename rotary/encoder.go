package rotary

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"encoder-ctrl/event"
	"encoder-ctrl/pins"
)

const DefaultSampleInterval = time.Millisecond

// Pins names the encoder lines. SW may be pins.NoPin when the push button
// is not wired.
type Pins struct {
	CLK pins.Pin
	DT  pins.Pin
	SW  pins.Pin
}

type Option func(*Encoder)

func WithStepsPerDetent(n int) Option {
	return func(e *Encoder) { e.stepsPerDetent = n }
}

func WithInvertDirection(invert bool) Option {
	return func(e *Encoder) { e.invert = invert }
}

func WithSampleInterval(d time.Duration) Option {
	return func(e *Encoder) {
		if d > 0 {
			e.sampleInterval = d
		}
	}
}

func WithPressDebounce(d time.Duration) Option {
	return func(e *Encoder) { e.pressDebounce = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Encoder) {
		if l != nil {
			e.logger = l
		}
	}
}

// Encoder owns the decoder and debouncer of one rotary encoder and the
// polling task that feeds them. Handlers registered with OnTurned and
// OnPressed run on the polling goroutine.
type Encoder struct {
	sampler pins.Sampler
	pins    Pins
	bus     *event.Bus[Event]
	logger  *slog.Logger

	stepsPerDetent int
	invert         bool
	sampleInterval time.Duration
	pressDebounce  time.Duration

	decoder   *Decoder
	debouncer *Debouncer

	// only touched by the polling task
	lastSW     bool
	configured bool

	pending  atomic.Bool
	position atomic.Int64
	started  atomic.Bool
	done     chan struct{}
}

func NewEncoder(sampler pins.Sampler, p Pins, opts ...Option) *Encoder {
	e := &Encoder{
		sampler:        sampler,
		pins:           p,
		bus:            event.NewBus[Event](),
		logger:         slog.Default(),
		stepsPerDetent: DefaultStepsPerDetent,
		sampleInterval: DefaultSampleInterval,
		pressDebounce:  DefaultPressDebounceMillis * time.Millisecond,
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.decoder = NewDecoder(e.stepsPerDetent, e.invert)
	e.debouncer = NewDebouncer(e.pressDebounce.Milliseconds())
	return e
}

// Capture configures the input lines (when the sampler supports it, and
// only on the first successful call) and records the resting quadrature
// state. Poll may be called afterwards.
func (e *Encoder) Capture() error {
	if c, ok := e.sampler.(pins.Configurer); ok && !e.configured {
		lines := []pins.Pin{e.pins.CLK, e.pins.DT}
		if e.pins.SW != pins.NoPin {
			lines = append(lines, e.pins.SW)
		}
		if err := c.ConfigureInputs(lines...); err != nil {
			return fmt.Errorf("configure encoder inputs: %w", err)
		}
		e.configured = true
	}

	a, b := pins.ReadPair(e.sampler, e.pins.CLK, e.pins.DT)
	e.decoder.Initialize(a, b)
	e.lastSW = e.readSW()

	e.logger.Info("rotary encoder initialized",
		"state", e.decoder.State(),
		"stepsPerDetent", e.decoder.stepsPerDetent,
		"invert", e.invert,
		"sampleInterval", e.sampleInterval,
	)
	return nil
}

// Initialize captures the initial state and starts the polling task, which
// runs until ctx is cancelled. It panics when called twice.
func (e *Encoder) Initialize(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		panic("rotary: encoder already initialized")
	}
	if err := e.Capture(); err != nil {
		e.started.Store(false)
		return err
	}
	go e.run(ctx)
	return nil
}

func (e *Encoder) run(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Debug("rotary polling stopped", "err", ctx.Err())
			return
		case <-ticker.C:
			e.Poll()
		}
	}
}

// Done is closed when the polling task has exited.
func (e *Encoder) Done() <-chan struct{} {
	return e.done
}

// Poll runs one sampling iteration: a quadrature step, press edge detection
// and delivery of presses reported through PressEdge.
func (e *Encoder) Poll() {
	a, b := pins.ReadPair(e.sampler, e.pins.CLK, e.pins.DT)
	if ev, ok := e.decoder.Step(a, b); ok {
		if ev == Clockwise {
			e.position.Add(1)
		} else {
			e.position.Add(-1)
		}
		e.logger.Debug("detent", "direction", ev, "position", e.position.Load())
		e.bus.Publish(ev)
	}

	if e.pins.SW != pins.NoPin {
		sw := e.readSW()
		// active low: a falling edge is a raw press
		if e.lastSW && !sw {
			e.pressAt(e.sampler.NowMillis())
		}
		e.lastSW = sw
	}

	if e.pending.Swap(false) {
		e.publishPress()
	}
}

// PressEdge feeds a raw press edge from outside the polling task, typically
// a pin interrupt. An accepted press is delivered on the next Poll.
func (e *Encoder) PressEdge() {
	if e.debouncer.Accept(e.sampler.NowMillis()) {
		e.pending.Store(true)
	}
}

func (e *Encoder) pressAt(now int64) {
	if e.debouncer.Accept(now) {
		e.publishPress()
	}
}

func (e *Encoder) publishPress() {
	e.logger.Debug("press")
	e.bus.Publish(Pressed)
}

func (e *Encoder) readSW() bool {
	if e.pins.SW == pins.NoPin {
		return true
	}
	return e.sampler.ReadDigital(e.pins.SW)
}

// OnTurned registers h for Clockwise or CounterClockwise detents.
func (e *Encoder) OnTurned(direction Event, h event.Handler) {
	if direction != Clockwise && direction != CounterClockwise {
		panic("rotary: OnTurned needs Clockwise or CounterClockwise, got " + direction.String())
	}
	e.bus.Subscribe(direction, h)
}

// OnPressed registers h for debounced presses.
func (e *Encoder) OnPressed(h event.Handler) {
	e.bus.Subscribe(Pressed, h)
}

// Position returns the net number of detents turned, clockwise positive.
func (e *Encoder) Position() int64 {
	return e.position.Load()
}

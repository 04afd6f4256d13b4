// Package rotary decodes a mechanical quadrature encoder with push button.
package rotary

import "encoder-ctrl/pins"

type Event byte

const (
	Idle             Event = 0x00
	Pressed          Event = 0x01
	CounterClockwise Event = 0x05
	Clockwise        Event = 0x06
)

func (e Event) String() string {
	switch e {
	case Idle:
		return "Idle"
	case Pressed:
		return "Pressed"
	case CounterClockwise:
		return "Counter Clockwise"
	case Clockwise:
		return "Clockwise"
	default:
		return "Unknown"
	}
}

// State is the 2-bit quadrature value (A<<1)|B, A = CLK and B = DT.
type State uint8

func StateOf(a, b bool) State {
	return State(pins.Bit(a)<<1 | pins.Bit(b))
}

// transitions is indexed by (previous<<2)|current. Valid Gray-code steps
// are ±1; no change and the double-bit jumps 00<->11 and 01<->10 are 0.
var transitions = [16]int8{
	// from 00: 00  01  10  11
	0, +1, -1, 0,
	// from 01
	-1, 0, 0, +1,
	// from 10
	+1, 0, 0, -1,
	// from 11
	0, -1, +1, 0,
}

// Delta returns the quarter-step movement from prev to curr.
func Delta(prev, curr State) int {
	return int(transitions[(prev&0b11)<<2|(curr&0b11)])
}

const (
	DefaultStepsPerDetent = 4
)

// Decoder turns successive quadrature samples into detent events. It is not
// safe for concurrent use; one polling task owns it.
type Decoder struct {
	stepsPerDetent int
	invert         bool

	prev        State
	accumulator int
	initialized bool
}

// NewDecoder returns a decoder firing one event every stepsPerDetent
// quarter-steps. Values below 1 fall back to DefaultStepsPerDetent.
func NewDecoder(stepsPerDetent int, invert bool) *Decoder {
	if stepsPerDetent < 1 {
		stepsPerDetent = DefaultStepsPerDetent
	}
	return &Decoder{
		stepsPerDetent: stepsPerDetent,
		invert:         invert,
	}
}

// Initialize captures the resting state and clears the accumulator. It must
// be called before the first Step.
func (d *Decoder) Initialize(a, b bool) {
	d.prev = StateOf(a, b)
	d.accumulator = 0
	d.initialized = true
}

// Step consumes one sample. It returns Clockwise or CounterClockwise with
// ok set when a full detent has accumulated.
func (d *Decoder) Step(a, b bool) (Event, bool) {
	if !d.initialized {
		panic("rotary: Step called before Initialize")
	}

	curr := StateOf(a, b)
	delta := Delta(d.prev, curr)
	d.prev = curr

	if delta == 0 {
		return Idle, false
	}
	if d.invert {
		delta = -delta
	}
	d.accumulator += delta

	switch {
	case d.accumulator >= d.stepsPerDetent:
		d.accumulator = 0
		return Clockwise, true
	case d.accumulator <= -d.stepsPerDetent:
		d.accumulator = 0
		return CounterClockwise, true
	}
	return Idle, false
}

// Accumulator returns the quarter-steps counted since the last detent.
func (d *Decoder) Accumulator() int {
	return d.accumulator
}

func (d *Decoder) State() State {
	return d.prev
}

func (d *Decoder) Initialized() bool {
	return d.initialized
}

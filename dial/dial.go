package dial

import (
	"image/color"
	"math"
	"strconv"

	"encoder-ctrl/rotary"
)

var (
	drawColor = color.RGBA{255, 255, 255, 255}
)

// Display is the part of matrix.Matrix the dial draws on.
type Display interface {
	Size() (x, y int16)
	TextWidth(text string) int16
	ShowText(text string, c color.RGBA, x, y int16) error
}

// LevelDisplay draws the level itself, e.g. as a bar.
type LevelDisplay interface {
	ShowLevel(level uint8) error
}

// Dial is a 0..100 level turned by encoder detents. Detents closer together
// than fastTurnMillis move the level in growing steps.
type Dial struct {
	displays []Display
	clock    func() int64

	level      uint8
	lastMillis int64
	turned     bool
	exactStep  float64
}

const (
	stepIncrease   = .8
	maxStep        = 8
	fastTurnMillis = 60
	maxLevel       = 100
)

// New returns a dial at level that reads detent times from clock and draws
// on displays.
func New(clock func() int64, level uint8, displays ...Display) *Dial {
	if level > maxLevel {
		level = maxLevel
	}
	return &Dial{
		displays:  displays,
		clock:     clock,
		level:     level,
		exactStep: 1,
	}
}

// Attach subscribes the dial to enc: turns move the level, a press resets
// it, and every change is drawn.
func (d *Dial) Attach(enc *rotary.Encoder) {
	enc.OnTurned(rotary.Clockwise, func() {
		if d.Turn(rotary.Clockwise) {
			d.draw()
		}
	})
	enc.OnTurned(rotary.CounterClockwise, func() {
		if d.Turn(rotary.CounterClockwise) {
			d.draw()
		}
	})
	enc.OnPressed(func() {
		d.Press()
		d.draw()
	})
}

func (d *Dial) Level() uint8 {
	return d.level
}

// Press resets the level to 0.
func (d *Dial) Press() {
	d.level = 0
}

// Turn applies one detent and reports whether the level changed.
func (d *Dial) Turn(direction rotary.Event) bool {
	var delta int
	switch direction {
	case rotary.Clockwise:
		delta = 1
	case rotary.CounterClockwise:
		delta = -1
	default:
		return false
	}

	now := d.clock()
	fast := d.turned && now-d.lastMillis < fastTurnMillis
	d.lastMillis = now
	d.turned = true

	step := 1
	if fast {
		newStep := math.Min(d.exactStep+stepIncrease, maxStep)
		step = int(math.Round(newStep))
		if step < 1 {
			step = 1
		}
		d.exactStep = newStep
	} else {
		d.exactStep = 1
	}

	newLevel := int(d.level) + delta*step
	if newLevel < 0 {
		newLevel = 0
	}
	if newLevel > maxLevel {
		newLevel = maxLevel
	}
	if uint8(newLevel) == d.level {
		return false
	}
	d.level = uint8(newLevel)
	return true
}

// Draw shows the level on every display, centred unless the display draws
// levels itself. It returns the first error.
func (d *Dial) Draw() error {
	var first error
	for _, disp := range d.displays {
		if err := d.drawOn(disp); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (d *Dial) drawOn(disp Display) error {
	if lv, ok := disp.(LevelDisplay); ok {
		return lv.ShowLevel(d.level)
	}
	text := strconv.Itoa(int(d.level))
	w, h := disp.Size()
	x := (w - disp.TextWidth(text)) / 2
	if x < 0 {
		x = 0
	}
	y := (h - 5) / 2
	return disp.ShowText(text, drawColor, x, y)
}

func (d *Dial) draw() {
	if err := d.Draw(); err != nil {
		println("dial: draw failed:", err.Error())
	}
}

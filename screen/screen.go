// Package screen draws the dial level on a monochrome OLED panel, optionally
// behind an I2C multiplexer channel.
package screen

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
)

// Panel is a buffered monochrome display. *sh1106.Device implements it.
type Panel interface {
	drivers.Displayer
	ClearBuffer()
}

// Selector routes the bus to one panel. *multiplexer.Multiplexer implements it.
type Selector interface {
	Select(channel uint8) error
}

const (
	TEXT_HEIGHT = 9
	muxSettle   = 5 * time.Millisecond
)

var (
	onColor = color.RGBA{255, 255, 255, 255}
)

type Screen struct {
	panel      Panel
	mux        Selector
	MuxChannel uint8
	label      string
	font       *tinyfont.Font
}

// NewScreen returns a screen on panel. mux may be nil when the panel sits
// directly on the bus.
func NewScreen(panel Panel, mux Selector, muxChannel uint8, label string) *Screen {
	return &Screen{
		panel:      panel,
		mux:        mux,
		MuxChannel: muxChannel,
		label:      label,
		font:       &freemono.Regular9pt7b,
	}
}

func (s *Screen) Activate() error {
	if s.mux == nil {
		return nil
	}
	if err := s.mux.Select(s.MuxChannel); err != nil {
		return fmt.Errorf("activate screen %q: %w", s.label, err)
	}
	time.Sleep(muxSettle)
	return nil
}

func (s *Screen) Size() (x, y int16) {
	return s.panel.Size()
}

func (s *Screen) TextWidth(text string) int16 {
	_, outBox := tinyfont.LineWidth(s.font, text)
	return int16(outBox)
}

// ShowText clears the panel and writes text with its top-left corner at (x, y).
func (s *Screen) ShowText(text string, c color.RGBA, x, y int16) error {
	if err := s.Activate(); err != nil {
		return err
	}
	s.panel.ClearBuffer()
	tinyfont.WriteLine(s.panel, s.font, x, y+TEXT_HEIGHT, text, c)
	return s.panel.Display()
}

// ShowLevel draws the label and a rounded bar filled level pixels from the left.
func (s *Screen) ShowLevel(level uint8) error {
	if err := s.Activate(); err != nil {
		return err
	}
	s.panel.ClearBuffer()
	s.centerText(s.label, TEXT_HEIGHT+2)
	s.bar(int(level))
	return s.panel.Display()
}

func (s *Screen) Clear() error {
	if err := s.Activate(); err != nil {
		return err
	}
	s.panel.ClearBuffer()
	return s.panel.Display()
}

func (s *Screen) centerText(text string, baseline int16) {
	w, _ := s.panel.Size()
	x := (w - s.TextWidth(text)) / 2
	if x < 0 {
		x = 0
	}
	tinyfont.WriteLine(s.panel, s.font, x, baseline, text, onColor)
}

// The bar is a 100 px track between barLeft and barRight with semicircular
// ends of radius barRadius.
const (
	barLeft   int16 = 17
	barRight  int16 = 118
	barTop    int16 = 17
	barBottom int16 = 47
	barRadius int16 = 10
)

// corners lists each rounded corner's centre and the direction it bulges in.
var corners = [4]struct{ cx, cy, sx, sy int16 }{
	{barLeft + barRadius, barTop + barRadius, -1, -1},
	{barRight - barRadius, barTop + barRadius, 1, -1},
	{barLeft + barRadius, barBottom - barRadius, -1, 1},
	{barRight - barRadius, barBottom - barRadius, 1, 1},
}

func (s *Screen) bar(fill int) {
	s.outline()

	last := barLeft + int16(fill)
	if last > barRight-1 {
		last = barRight - 1
	}
	for x := barLeft + 1; x <= last; x++ {
		top, bottom := columnSpan(x)
		for y := top; y <= bottom; y++ {
			s.panel.SetPixel(x, y, onColor)
		}
	}
}

// outline draws the straight edges and the four quarter circles.
func (s *Screen) outline() {
	for x := barLeft + barRadius; x <= barRight-barRadius; x++ {
		s.panel.SetPixel(x, barTop, onColor)
		s.panel.SetPixel(x, barBottom, onColor)
	}
	for y := barTop + barRadius; y <= barBottom-barRadius; y++ {
		s.panel.SetPixel(barLeft, y, onColor)
		s.panel.SetPixel(barRight, y, onColor)
	}
	for _, c := range corners {
		for a := int16(0); a <= barRadius; a++ {
			b := arc(a, math.Round)
			s.panel.SetPixel(c.cx+c.sx*a, c.cy+c.sy*b, onColor)
			s.panel.SetPixel(c.cx+c.sx*b, c.cy+c.sy*a, onColor)
		}
	}
}

// columnSpan returns the rows inside the outline at column x.
func columnSpan(x int16) (top, bottom int16) {
	var dx int16
	switch {
	case x < barLeft+barRadius:
		dx = barLeft + barRadius - x
	case x > barRight-barRadius:
		dx = x - (barRight - barRadius)
	default:
		return barTop + 1, barBottom - 1
	}
	dy := arc(dx, math.Ceil)
	return barTop + barRadius - dy + 1, barBottom - barRadius + dy - 1
}

// arc returns the height of the corner circle at horizontal offset d.
func arc(d int16, round func(float64) float64) int16 {
	return int16(round(math.Sqrt(float64(barRadius*barRadius - d*d))))
}

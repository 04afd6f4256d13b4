// Package matrix renders text on a NeoPixel (WS2812) LED matrix. The matrix
// is a drivers.Displayer, so any tinyfont font can be drawn on it; the
// default is the 3x5 TomThumb font.
package matrix

import (
	"context"
	"image/color"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

type Layout uint8

const (
	// ZigZag strips run left to right on even rows and right to left on odd rows.
	ZigZag Layout = iota
	// Rows strips run left to right on every row.
	Rows
)

// Writer pushes one frame of colours to the strip. ws2812.Device implements it.
type Writer interface {
	WriteColors(buf []color.RGBA) error
}

// glyphHeight is the cap height of the default font.
const glyphHeight = 5

// Matrix is safe for concurrent use; every frame is drawn and written
// under one lock.
type Matrix struct {
	mu sync.Mutex

	strip         Writer
	width, height int16
	layout        Layout
	brightness    uint8
	font          *tinyfont.Font

	buf []color.RGBA
	out []color.RGBA
}

var (
	_ drivers.Displayer = (*Matrix)(nil)
	_ drivers.Displayer = (*canvas)(nil)
)

// canvas is the unlocked view of a Matrix that tinyfont draws on while the
// lock is held.
type canvas Matrix

func New(strip Writer, width, height int16, layout Layout) *Matrix {
	n := int(width) * int(height)
	return &Matrix{
		strip:      strip,
		width:      width,
		height:     height,
		layout:     layout,
		brightness: 255,
		font:       &tinyfont.TomThumb,
		buf:        make([]color.RGBA, n),
		out:        make([]color.RGBA, n),
	}
}

// SetFont replaces the text font.
func (m *Matrix) SetFont(f *tinyfont.Font) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.font = f
}

// Index maps a coordinate to its position on the strip, or -1 when it lies
// outside the matrix.
func (m *Matrix) Index(x, y int16) int {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return -1
	}
	col := x
	if m.layout == ZigZag && y%2 == 1 {
		col = m.width - 1 - x
	}
	return int(y)*int(m.width) + int(col)
}

func (m *Matrix) Size() (x, y int16) {
	return m.width, m.height
}

func (m *Matrix) SetPixel(x, y int16, c color.RGBA) {
	m.mu.Lock()
	defer m.mu.Unlock()
	(*canvas)(m).SetPixel(x, y, c)
}

// Pixel returns the buffered colour at (x, y) before brightness scaling.
func (m *Matrix) Pixel(x, y int16) color.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.Index(x, y); i >= 0 {
		return m.buf[i]
	}
	return color.RGBA{}
}

// Display scales the buffer by the brightness and writes it to the strip.
func (m *Matrix) Display() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*canvas)(m).Display()
}

func (m *Matrix) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	(*canvas)(m).clear()
}

// SetBrightness sets the output brightness (0..255) and refreshes the strip.
func (m *Matrix) SetBrightness(b uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brightness = b
	return (*canvas)(m).Display()
}

func (m *Matrix) Brightness() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.brightness
}

// TextWidth returns the width in pixels of text in the current font.
func (m *Matrix) TextWidth(text string) int16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*canvas)(m).textWidth(text)
}

// ShowLetter clears the matrix and shows the first letter of s centred.
func (m *Matrix) ShowLetter(s string, c color.RGBA) error {
	letter := " "
	for _, r := range s {
		letter = string(r)
		break
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cv := (*canvas)(m)
	x := (m.width - cv.textWidth(letter)) / 2
	y := (m.height - glyphHeight) / 2
	return cv.show(letter, c, x, y)
}

// ShowText clears the matrix and draws text from (x, y). Whatever does not
// fit is cut off.
func (m *Matrix) ShowText(text string, c color.RGBA, x, y int16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*canvas)(m).show(text, c, x, y)
}

// ScrollText moves text in from the right edge, starting with its first
// column on the last matrix column, until it has left the left edge. It
// shows one frame per delay and returns early with ctx's error.
func (m *Matrix) ScrollText(ctx context.Context, text string, c color.RGBA, delay time.Duration) error {
	y := (m.height - glyphHeight) / 2
	w := m.TextWidth(text)
	if delay <= 0 {
		delay = time.Millisecond
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for x := m.width - 1; x > -w; x-- {
		if err := m.ShowText(text, c, x, y); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (cv *canvas) Size() (x, y int16) {
	return cv.width, cv.height
}

func (cv *canvas) SetPixel(x, y int16, c color.RGBA) {
	if i := (*Matrix)(cv).Index(x, y); i >= 0 {
		cv.buf[i] = c
	}
}

func (cv *canvas) Display() error {
	for i, c := range cv.buf {
		cv.out[i] = scale(c, cv.brightness)
	}
	return cv.strip.WriteColors(cv.out)
}

func scale(c color.RGBA, b uint8) color.RGBA {
	if b == 255 {
		return c
	}
	f := func(v uint8) uint8 { return uint8(uint16(v) * uint16(b) / 255) }
	return color.RGBA{R: f(c.R), G: f(c.G), B: f(c.B), A: c.A}
}

func (cv *canvas) clear() {
	for i := range cv.buf {
		cv.buf[i] = color.RGBA{}
	}
}

func (cv *canvas) textWidth(text string) int16 {
	_, outbox := tinyfont.LineWidth(cv.font, strings.ToUpper(text))
	return int16(outbox)
}

// show replaces the frame with text whose top-left corner is at (x, y).
func (cv *canvas) show(text string, c color.RGBA, x, y int16) error {
	cv.clear()
	tinyfont.WriteLine(cv, cv.font, x, y+glyphHeight, strings.ToUpper(text), c)
	return cv.Display()
}

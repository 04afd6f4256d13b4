package matrix

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStrip struct {
	mu     sync.Mutex
	frames [][]color.RGBA
	err    error
}

func (f *fakeStrip) WriteColors(buf []color.RGBA) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, append([]color.RGBA(nil), buf...))
	return nil
}

func (f *fakeStrip) last() []color.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[len(f.frames)-1]
}

func (f *fakeStrip) all() [][]color.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]color.RGBA(nil), f.frames...)
}

func lit(frame []color.RGBA) int {
	n := 0
	for _, c := range frame {
		if c != (color.RGBA{}) {
			n++
		}
	}
	return n
}

var red = color.RGBA{R: 255, A: 255}

func TestIndexZigZag(t *testing.T) {
	m := New(&fakeStrip{}, 8, 8, ZigZag)

	assert.Equal(t, 0, m.Index(0, 0))
	assert.Equal(t, 7, m.Index(7, 0))
	assert.Equal(t, 15, m.Index(0, 1))
	assert.Equal(t, 8, m.Index(7, 1))
	assert.Equal(t, 16, m.Index(0, 2))
	assert.Equal(t, 63, m.Index(0, 7))
	assert.Equal(t, 56, m.Index(7, 7))
}

func TestIndexRows(t *testing.T) {
	m := New(&fakeStrip{}, 8, 4, Rows)

	assert.Equal(t, 0, m.Index(0, 0))
	assert.Equal(t, 8, m.Index(0, 1))
	assert.Equal(t, 15, m.Index(7, 1))
	assert.Equal(t, 31, m.Index(7, 3))
}

func TestIndexOutOfRange(t *testing.T) {
	m := New(&fakeStrip{}, 8, 8, ZigZag)

	assert.Equal(t, -1, m.Index(-1, 0))
	assert.Equal(t, -1, m.Index(0, -1))
	assert.Equal(t, -1, m.Index(8, 0))
	assert.Equal(t, -1, m.Index(0, 8))
}

func TestSetPixelAndDisplay(t *testing.T) {
	strip := &fakeStrip{}
	m := New(strip, 8, 8, ZigZag)

	m.SetPixel(0, 1, red)
	m.SetPixel(20, 20, red)
	require.NoError(t, m.Display())

	frame := strip.last()
	require.Len(t, frame, 64)
	assert.Equal(t, red, frame[15])
	assert.Equal(t, 1, lit(frame))
	assert.Equal(t, red, m.Pixel(0, 1))
	assert.Equal(t, color.RGBA{}, m.Pixel(20, 20))
}

func TestBrightness(t *testing.T) {
	strip := &fakeStrip{}
	m := New(strip, 2, 1, Rows)
	m.SetPixel(0, 0, color.RGBA{R: 255, G: 100, B: 0, A: 255})

	require.NoError(t, m.SetBrightness(0))
	assert.Equal(t, color.RGBA{A: 255}, strip.last()[0])

	require.NoError(t, m.SetBrightness(51))
	assert.Equal(t, color.RGBA{R: 51, G: 20, B: 0, A: 255}, strip.last()[0])
	assert.Equal(t, uint8(51), m.Brightness())

	// the buffer keeps full intensity
	assert.Equal(t, uint8(255), m.Pixel(0, 0).R)
}

func TestClear(t *testing.T) {
	strip := &fakeStrip{}
	m := New(strip, 4, 4, ZigZag)
	m.SetPixel(1, 1, red)

	m.Clear()
	require.NoError(t, m.Display())

	assert.Zero(t, lit(strip.last()))
}

func TestShowText(t *testing.T) {
	strip := &fakeStrip{}
	m := New(strip, 8, 8, ZigZag)

	require.NoError(t, m.ShowText("hi", red, 0, 1))

	require.Len(t, strip.frames, 1)
	assert.NotZero(t, lit(strip.last()))
	// nothing above the text's top row
	for x := int16(0); x < 8; x++ {
		assert.Equal(t, color.RGBA{}, m.Pixel(x, 0))
	}
}

func TestShowTextUppercases(t *testing.T) {
	lower := &fakeStrip{}
	upper := &fakeStrip{}

	require.NoError(t, New(lower, 8, 8, ZigZag).ShowText("ab", red, 0, 1))
	require.NoError(t, New(upper, 8, 8, ZigZag).ShowText("AB", red, 0, 1))

	assert.Equal(t, upper.last(), lower.last())
}

func TestShowLetter(t *testing.T) {
	strip := &fakeStrip{}
	m := New(strip, 8, 8, ZigZag)

	require.NoError(t, m.ShowLetter("Z", red))
	assert.NotZero(t, lit(strip.last()))

	require.NoError(t, m.ShowLetter("", red))
	assert.Zero(t, lit(strip.last()))
}

func TestDisplayError(t *testing.T) {
	strip := &fakeStrip{err: errors.New("bus")}
	m := New(strip, 8, 8, ZigZag)

	assert.Error(t, m.ShowText("A", red, 0, 0))
}

func TestScrollText(t *testing.T) {
	strip := &fakeStrip{}
	m := New(strip, 8, 8, ZigZag)
	w := m.TextWidth("AB")
	require.Positive(t, w)

	require.NoError(t, m.ScrollText(context.Background(), "AB", red, time.Microsecond))

	frames := strip.all()
	assert.Len(t, frames, int(8+w-1))
	// the first frame already shows the leading column on the right edge
	assert.NotZero(t, lit(frames[0]))
	for y := int16(0); y < 8; y++ {
		for x := int16(0); x < 7; x++ {
			assert.Equal(t, color.RGBA{}, frames[0][m.Index(x, y)], "x=%d y=%d", x, y)
		}
	}
	// the last frame keeps only the trailing column on the left edge
	assert.NotZero(t, lit(frames[len(frames)-1]))
}

func TestScrollTextCancelled(t *testing.T) {
	strip := &fakeStrip{}
	m := New(strip, 8, 8, ZigZag)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.ScrollText(ctx, "HELLO", red, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, strip.frames, 1)
}

func TestConcurrentWriters(t *testing.T) {
	strip := &fakeStrip{}
	m := New(strip, 8, 8, ZigZag)
	blue := color.RGBA{B: 255, A: 255}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			assert.NoError(t, m.ShowText("12", red, 0, 1))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			assert.NoError(t, m.ShowLetter("U", blue))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			assert.NoError(t, m.SetBrightness(uint8(i)))
			m.Pixel(0, 0)
		}
	}()
	wg.Wait()

	// a frame from ShowText or ShowLetter never mixes the two colours
	for _, frame := range strip.all() {
		var reds, blues int
		for _, c := range frame {
			switch {
			case c.R > 0 && c.B == 0:
				reds++
			case c.B > 0:
				blues++
			}
		}
		assert.False(t, blues > 0 && reds > 0, "mixed frame: %d red, %d blue", reds, blues)
	}
}

package dial

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"encoder-ctrl/joystick"
	"encoder-ctrl/matrix"
	"encoder-ctrl/pins"
	"encoder-ctrl/rotary"
)

type fakeDisplay struct {
	texts []string
	xs    []int16
}

func (f *fakeDisplay) Size() (int16, int16) { return 8, 8 }

func (f *fakeDisplay) TextWidth(text string) int16 { return int16(4 * len(text)) }

func (f *fakeDisplay) ShowText(text string, _ color.RGBA, x, _ int16) error {
	f.texts = append(f.texts, text)
	f.xs = append(f.xs, x)
	return nil
}

type fakeLevel struct {
	fakeDisplay
	levels []uint8
	err    error
}

func (f *fakeLevel) ShowLevel(level uint8) error {
	f.levels = append(f.levels, level)
	return f.err
}

type clock struct{ now int64 }

func (c *clock) millis() int64 { return c.now }

func TestTurnSlowSingleSteps(t *testing.T) {
	c := &clock{}
	d := New(c.millis, 50)

	for i := 0; i < 3; i++ {
		c.now += 100
		require.True(t, d.Turn(rotary.Clockwise))
	}
	assert.Equal(t, uint8(53), d.Level())

	c.now += 100
	d.Turn(rotary.CounterClockwise)
	assert.Equal(t, uint8(52), d.Level())
}

func TestTurnAccelerates(t *testing.T) {
	c := &clock{}
	d := New(c.millis, 0)

	var levels []uint8
	for i := 0; i < 5; i++ {
		c.now += 10
		d.Turn(rotary.Clockwise)
		levels = append(levels, d.Level())
	}

	// steps: 1 (first turn), round(1.8)=2, round(2.6)=3, round(3.4)=3, round(4.2)=4
	assert.Equal(t, []uint8{1, 3, 6, 9, 13}, levels)
}

func TestTurnStepCapped(t *testing.T) {
	c := &clock{}
	d := New(c.millis, 0)

	for i := 0; i < 30; i++ {
		c.now += 10
		d.Turn(rotary.Clockwise)
	}
	before := d.Level()
	c.now += 10
	d.Turn(rotary.CounterClockwise)

	assert.Equal(t, int(before)-maxStep, int(d.Level()))
}

func TestTurnClamps(t *testing.T) {
	c := &clock{}
	d := New(c.millis, 100)

	c.now += 100
	assert.False(t, d.Turn(rotary.Clockwise))
	assert.Equal(t, uint8(100), d.Level())

	d = New(c.millis, 0)
	c.now += 100
	assert.False(t, d.Turn(rotary.CounterClockwise))
	assert.Equal(t, uint8(0), d.Level())

	assert.Equal(t, uint8(100), New(c.millis, 250).Level())
}

func TestTurnIgnoresNonDirections(t *testing.T) {
	d := New((&clock{}).millis, 10)

	assert.False(t, d.Turn(rotary.Pressed))
	assert.Equal(t, uint8(10), d.Level())
}

func TestDrawCentres(t *testing.T) {
	disp := &fakeDisplay{}
	d := New((&clock{}).millis, 7, disp)

	require.NoError(t, d.Draw())
	d.Press()
	require.NoError(t, d.Draw())
	d.level = 100
	require.NoError(t, d.Draw())

	assert.Equal(t, []string{"7", "0", "100"}, disp.texts)
	assert.Equal(t, []int16{2, 2, 0}, disp.xs)
}

func TestAttach(t *testing.T) {
	s := pins.NewScript()
	enc := rotary.NewEncoder(s, rotary.Pins{CLK: 1, DT: 2, SW: 3})
	s.SetPair(1, 2, false, false)
	require.NoError(t, enc.Capture())

	disp := &fakeDisplay{}
	d := New(s.NowMillis, 10, disp)
	d.Attach(enc)

	for _, st := range [][2]bool{{false, true}, {true, true}, {true, false}, {false, false}} {
		s.Advance(100)
		s.SetPair(1, 2, st[0], st[1])
		enc.Poll()
	}
	assert.Equal(t, uint8(11), d.Level())

	s.Advance(100)
	s.Set(3, false)
	enc.Poll()
	assert.Equal(t, uint8(0), d.Level())

	assert.Equal(t, []string{"11", "0"}, disp.texts)
}

func TestDrawAllDisplays(t *testing.T) {
	text := &fakeDisplay{}
	bar := &fakeLevel{err: errors.New("i2c")}
	d := New((&clock{}).millis, 42, bar, text)

	assert.EqualError(t, d.Draw(), "i2c")

	assert.Equal(t, []uint8{42}, bar.levels)
	assert.Empty(t, bar.texts)
	assert.Equal(t, []string{"42"}, text.texts)
}

func TestDrawWithoutDisplays(t *testing.T) {
	assert.NoError(t, New((&clock{}).millis, 42).Draw())
}

type stickADC struct {
	mu sync.Mutex
	x  int
}

func (a *stickADC) ReadAnalog(pin int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if pin == 0 {
		return a.x
	}
	return 512
}

func (a *stickADC) set(x int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.x = x
}

type countingStrip struct {
	frames atomic.Int32
}

func (s *countingStrip) WriteColors([]color.RGBA) error {
	s.frames.Add(1)
	return nil
}

// The encoder task draws the level while the joystick task shows letters on
// the same matrix.
func TestSharedMatrixWithJoystick(t *testing.T) {
	strip := &countingStrip{}
	leds := matrix.New(strip, 8, 8, matrix.ZigZag)

	s := pins.NewScript()
	p := rotary.Pins{CLK: 1, DT: 2, SW: 3}
	s.SetPair(p.CLK, p.DT, false, false)
	enc := rotary.NewEncoder(s, p, rotary.WithSampleInterval(time.Millisecond))
	New(s.NowMillis, 0, leds).Attach(enc)

	adc := &stickADC{x: 512}
	watcher := joystick.NewWatcher(adc, 0, 1, joystick.DefaultThresholds, time.Millisecond, nil)
	var keys atomic.Int32
	for _, k := range []joystick.Key{joystick.None, joystick.Right, joystick.Left} {
		watcher.OnKey(k, func() {
			keys.Add(1)
			assert.NoError(t, leds.ShowLetter(k.String(), color.RGBA{B: 255, A: 255}))
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, enc.Initialize(ctx))
	watcher.Start(ctx)

	cw := [][2]bool{{false, true}, {true, true}, {true, false}, {false, false}}
	stick := []int{700, 512, 300, 512}
	i := 0
	require.Eventually(t, func() bool {
		st := cw[i%len(cw)]
		s.Advance(100)
		s.SetPair(p.CLK, p.DT, st[0], st[1])
		adc.set(stick[i%len(stick)])
		i++
		time.Sleep(3 * time.Millisecond)
		return enc.Position() >= 3 && keys.Load() >= 3
	}, 5*time.Second, time.Millisecond)

	cancel()
	<-enc.Done()
	assert.NotZero(t, strip.frames.Load())
}

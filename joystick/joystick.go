// Package joystick reads a Grove thumb joystick: two analog axes on a
// 0..1023 scale, where pushing the stick in drives X past the press
// threshold.
package joystick

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"encoder-ctrl/event"
)

type Key uint8

const (
	None Key = iota
	Right
	Left
	Up
	Down
	UpperLeft
	UpperRight
	LowerLeft
	LowerRight
	Press
)

func (k Key) String() string {
	switch k {
	case None:
		return "None"
	case Right:
		return "Right"
	case Left:
		return "Left"
	case Up:
		return "Up"
	case Down:
		return "Down"
	case UpperLeft:
		return "Upper Left"
	case UpperRight:
		return "Upper Right"
	case LowerLeft:
		return "Lower Left"
	case LowerRight:
		return "Lower Right"
	case Press:
		return "Press"
	default:
		return "Unknown"
	}
}

type Thresholds struct {
	Low   int
	High  int
	Press int
}

var DefaultThresholds = Thresholds{Low: 400, High: 600, Press: 1000}

// Classify maps an (x, y) reading to one of the nine zones or Press.
func Classify(x, y int, th Thresholds) Key {
	row := func(up, down, mid Key) Key {
		switch {
		case y > th.High:
			return up
		case y < th.Low:
			return down
		default:
			return mid
		}
	}

	switch {
	case x > th.Press:
		return Press
	case x > th.High:
		return row(UpperRight, LowerRight, Right)
	case x < th.Low:
		return row(UpperLeft, LowerLeft, Left)
	default:
		return row(Up, Down, None)
	}
}

// AnalogReader reads an analog channel scaled to 0..1023.
type AnalogReader interface {
	ReadAnalog(pin int) int
}

const DefaultPollInterval = 50 * time.Millisecond

// Watcher polls the joystick and publishes a key whenever the classified
// zone changes. One watcher serves every registered handler.
type Watcher struct {
	reader     AnalogReader
	xPin, yPin int
	thresholds Thresholds
	interval   time.Duration
	logger     *slog.Logger
	bus        *event.Bus[Key]

	mu   sync.Mutex
	last Key

	once sync.Once
}

func NewWatcher(reader AnalogReader, xPin, yPin int, th Thresholds, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		reader:     reader,
		xPin:       xPin,
		yPin:       yPin,
		thresholds: th,
		interval:   interval,
		logger:     logger,
		bus:        event.NewBus[Key](),
	}
}

// OnKey registers h for key.
func (w *Watcher) OnKey(key Key, h event.Handler) {
	w.bus.Subscribe(key, h)
}

// Key classifies the current reading without publishing.
func (w *Watcher) Key() Key {
	return Classify(w.ReadX(), w.ReadY(), w.thresholds)
}

func (w *Watcher) ReadX() int {
	return w.reader.ReadAnalog(w.xPin)
}

func (w *Watcher) ReadY() int {
	return w.reader.ReadAnalog(w.yPin)
}

// Poll samples once and publishes the key if it differs from the last one.
// It reports whether a change was published.
func (w *Watcher) Poll() bool {
	k := w.Key()

	w.mu.Lock()
	changed := k != w.last
	w.last = k
	w.mu.Unlock()

	if !changed {
		return false
	}
	w.logger.Debug("joystick", "key", k)
	w.bus.Publish(k)
	return true
}

// Start launches the polling task once; later calls are no-ops.
func (w *Watcher) Start(ctx context.Context) {
	w.once.Do(func() {
		go w.run(ctx)
	})
}

func (w *Watcher) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Poll()
		}
	}
}

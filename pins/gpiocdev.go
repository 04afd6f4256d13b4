//go:build linux && !tinygo

package pins

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "encoder-ctrl"

var ErrNotConfigured = errors.New("pins: lines not requested")

// Chip samples lines of a Linux GPIO character device. All configured lines
// are held in one request so a pair read comes from a single snapshot.
type Chip struct {
	name   string
	logger *slog.Logger
	start  time.Time

	mu      sync.Mutex
	lines   *gpiocdev.Lines
	index   map[Pin]int
	values  []int
	lastErr error
}

func NewChip(name string, logger *slog.Logger) *Chip {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chip{
		name:   name,
		logger: logger,
		start:  time.Now(),
		index:  make(map[Pin]int),
	}
}

// ConfigureInputs requests the given offsets as pulled-up inputs.
func (c *Chip) ConfigureInputs(pins ...Pin) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lines != nil {
		return fmt.Errorf("pins: %s already configured", c.name)
	}

	offsets := make([]int, len(pins))
	for i, p := range pins {
		offsets[i] = int(p)
		c.index[p] = i
	}

	lines, err := gpiocdev.RequestLines(c.name, offsets,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithConsumer(consumer),
	)
	if err != nil {
		return fmt.Errorf("request lines %v on %s: %w", offsets, c.name, err)
	}
	c.lines = lines
	c.values = make([]int, len(offsets))
	c.logger.Info("gpio lines requested", "chip", c.name, "offsets", offsets)
	return nil
}

func (c *Chip) ReadDigital(pin Pin) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.refresh() {
		return true
	}
	return c.valueOf(pin)
}

func (c *Chip) ReadPair(a, b Pin) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.refresh() {
		return true, true
	}
	return c.valueOf(a), c.valueOf(b)
}

func (c *Chip) NowMillis() int64 {
	return time.Since(c.start).Milliseconds()
}

// refresh reads all lines. A failed read is reported once per distinct error
// and the caller falls back to the idle (high) level.
func (c *Chip) refresh() bool {
	err := ErrNotConfigured
	if c.lines != nil {
		err = c.lines.Values(c.values)
	}
	if err != nil {
		if c.lastErr == nil || c.lastErr.Error() != err.Error() {
			c.logger.Warn("gpio read failed", "chip", c.name, "err", err)
		}
		c.lastErr = err
		return false
	}
	c.lastErr = nil
	return true
}

func (c *Chip) valueOf(pin Pin) bool {
	i, ok := c.index[pin]
	if !ok {
		return true
	}
	return c.values[i] != 0
}

func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lines == nil {
		return nil
	}
	err := c.lines.Close()
	c.lines = nil
	return err
}

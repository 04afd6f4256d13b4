package rotary

import (
	"math"
	"sync/atomic"
)

const DefaultPressDebounceMillis = 30

// never marks a debouncer that has not accepted a press yet.
const never = math.MinInt64

// Debouncer rate-limits raw press edges. Its state is a single atomic
// timestamp so edges may arrive from an interrupt handler.
type Debouncer struct {
	intervalMillis int64
	last           atomic.Int64
}

func NewDebouncer(intervalMillis int64) *Debouncer {
	if intervalMillis < 0 {
		intervalMillis = DefaultPressDebounceMillis
	}
	d := &Debouncer{intervalMillis: intervalMillis}
	d.last.Store(never)
	return d
}

// Accept reports whether a raw edge at nowMillis is a new logical press.
// The first edge is always accepted; later ones only once more than the
// debounce interval has passed since the last accepted press.
func (d *Debouncer) Accept(nowMillis int64) bool {
	for {
		last := d.last.Load()
		if last != never && nowMillis-last <= d.intervalMillis {
			return false
		}
		if d.last.CompareAndSwap(last, nowMillis) {
			return true
		}
	}
}

// LastAccepted returns the timestamp of the last accepted press.
func (d *Debouncer) LastAccepted() (int64, bool) {
	last := d.last.Load()
	return last, last != never
}

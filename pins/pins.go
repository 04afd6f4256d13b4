// Package pins abstracts the digital pin reads and the millisecond clock
// the input decoders consume. Pin numbering and pull configuration belong to
// the concrete sampler.
package pins

// Pin identifies a digital input line. Its meaning depends on the sampler:
// a machine.Pin number on a microcontroller, a line offset on a gpiochip.
type Pin int

// NoPin marks an optional line that is not wired.
const NoPin Pin = -1

// Sampler is the hardware boundary of the decoders.
type Sampler interface {
	// ReadDigital returns the logic level of pin (true = high).
	ReadDigital(pin Pin) bool

	// NowMillis returns a monotonic millisecond timestamp.
	NowMillis() int64
}

// PairReader is implemented by samplers that can read two lines in one
// operation. Decoders prefer it so they never see a torn (A, B) pair.
type PairReader interface {
	ReadPair(a, b Pin) (bool, bool)
}

// Configurer is implemented by samplers that need the lines set up as
// pulled-up inputs before the first read.
type Configurer interface {
	ConfigureInputs(pins ...Pin) error
}

// Bit converts a logic level to 0 or 1.
func Bit(level bool) uint8 {
	if level {
		return 1
	}
	return 0
}

// ReadPair reads a and b through s, using a single call when s supports it.
func ReadPair(s Sampler, a, b Pin) (bool, bool) {
	if pr, ok := s.(PairReader); ok {
		return pr.ReadPair(a, b)
	}
	return s.ReadDigital(a), s.ReadDigital(b)
}

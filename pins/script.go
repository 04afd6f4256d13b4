package pins

import "sync"

// Script is a Sampler driven by hand: tests and trace replay set line
// levels and advance the clock explicitly. Unset lines read high, like an
// idle pulled-up input.
type Script struct {
	mu     sync.Mutex
	levels map[Pin]bool
	now    int64

	configured []Pin
}

func NewScript() *Script {
	return &Script{
		levels: make(map[Pin]bool),
	}
}

func (s *Script) ReadDigital(pin Pin) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level(pin)
}

func (s *Script) ReadPair(a, b Pin) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level(a), s.level(b)
}

func (s *Script) level(pin Pin) bool {
	l, ok := s.levels[pin]
	if !ok {
		return true
	}
	return l
}

func (s *Script) NowMillis() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Script) ConfigureInputs(pins ...Pin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configured = append(s.configured, pins...)
	return nil
}

// Configured returns the pins passed to ConfigureInputs so far.
func (s *Script) Configured() []Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Pin(nil), s.configured...)
}

// Set drives pin to level.
func (s *Script) Set(pin Pin, level bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[pin] = level
}

// SetPair drives both quadrature lines at once.
func (s *Script) SetPair(a, b Pin, levelA, levelB bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[a] = levelA
	s.levels[b] = levelB
}

// Advance moves the clock forward by ms.
func (s *Script) Advance(ms int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now += ms
}

// SetNow moves the clock to an absolute timestamp.
func (s *Script) SetNow(ms int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = ms
}

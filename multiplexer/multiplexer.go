package multiplexer

import "fmt"

const (
	// DefaultAddress is the TCA9548A address with A0..A2 low.
	DefaultAddress = 0x70
	Channels       = 8
)

// Bus is an I2C bus. *machine.I2C implements it.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// TCA9548A multiplexer
type Multiplexer struct {
	i2c     Bus
	addr    uint16
	Channel int // -1 until the first successful Select
}

func NewMultiplexer(i2c Bus, addr uint16) *Multiplexer {
	return &Multiplexer{
		i2c:     i2c,
		addr:    addr,
		Channel: -1,
	}
}

// Select routes the downstream bus to channel. Selecting the active channel
// again does not touch the bus.
func (m *Multiplexer) Select(channel uint8) error {
	if channel >= Channels {
		return fmt.Errorf("multiplexer: channel %d out of range", channel)
	}
	if m.Channel == int(channel) {
		return nil
	}
	data := []byte{1 << channel}
	if err := m.i2c.Tx(m.addr, data, nil); err != nil {
		m.Channel = -1
		return fmt.Errorf("multiplexer: select channel %d: %w", channel, err)
	}
	m.Channel = int(channel)
	return nil
}

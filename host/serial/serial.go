package serial

import (
	"io"
	"strings"
	"time"
)

// Port is a byte link to the board's register monitor.
// Implementations:
// - Native serial (github.com/tarm/serial), e.g. the Zynq PS UART
// - TCP, for a monitor served over the network
// - net.Pipe or similar in tests
type Port interface {
	io.ReadWriteCloser

	// Flush discards data not yet transmitted or read
	Flush() error
}

// Config holds link configuration
type Config struct {
	// Device path (e.g. "/dev/ttyUSB1", "COM3") or "tcp://host:port"
	Device string

	// Baud rate, ignored for TCP
	Baud int

	// Read timeout (0 = blocking)
	ReadTimeout time.Duration
}

// DefaultBaud is the Zybo PS UART rate
const DefaultBaud = 115200

// tcpPrefix selects a network link instead of a serial device
const tcpPrefix = "tcp://"

// DefaultConfig returns the default configuration for device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// IsTCP reports whether the config names a network address
func (c *Config) IsTCP() bool {
	return strings.HasPrefix(c.Device, tcpPrefix)
}

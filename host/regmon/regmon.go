// Package regmon is the host side of the register monitor: a core.Bus whose
// reads and writes travel over a serial link to a monitor on the board.
package regmon

import (
	"fmt"
	"io"
	"sync"
	"time"

	"zynqhal/host/serial"
	"zynqhal/protocol"
)

// Client implements core.Bus over the monitor protocol.
//
// The bus interface has no error results, so a failed transaction is
// recorded and every later access becomes a no-op returning zero. Check Err
// after a sequence of operations, as with bufio.Scanner.
type Client struct {
	transport *protocol.HostTransport
	timeout   time.Duration

	mu  sync.Mutex
	err error

	// Version reported by the board on Identify
	Version string
}

// Connect opens the link described by cfg and identifies the board
func Connect(cfg *serial.Config) (*Client, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}

	c := NewClient(port)
	if _, err := c.Identify(); err != nil {
		c.Close()
		return nil, fmt.Errorf("board on %s did not identify: %w", cfg.Device, err)
	}
	return c, nil
}

// NewClient wraps an open link
func NewClient(port io.ReadWriteCloser) *Client {
	return &Client{
		transport: protocol.NewHostTransport(port),
		timeout:   protocol.DefaultTimeout,
	}
}

// SetTimeout changes how long each register transaction may take
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// Identify asks the board for its protocol version
func (c *Client) Identify() (string, error) {
	rspID, args, err := c.transport.Request(protocol.CmdIdentify, nil, c.timeout)
	if err != nil {
		return "", err
	}
	if rspID != protocol.RspIdentify {
		return "", fmt.Errorf("unexpected response 0x%02x to identify", rspID)
	}

	version, err := protocol.DecodeVLQString(&args)
	if err != nil {
		return "", fmt.Errorf("malformed identify response: %w", err)
	}
	if version != protocol.Version {
		return "", fmt.Errorf("unsupported monitor version %q (want %q)", version, protocol.Version)
	}
	c.Version = version
	return version, nil
}

// ReadRegister reads one 32-bit register on the board
func (c *Client) ReadRegister(addr uint32) (uint32, error) {
	rspID, args, err := c.transport.Request(protocol.CmdReadReg, func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, addr)
	}, c.timeout)
	if err != nil {
		return 0, fmt.Errorf("read 0x%08x: %w", addr, err)
	}
	if rspID != protocol.RspRegValue {
		return 0, fmt.Errorf("read 0x%08x: unexpected response 0x%02x", addr, rspID)
	}

	gotAddr, err := protocol.DecodeVLQUint(&args)
	if err != nil {
		return 0, fmt.Errorf("read 0x%08x: %w", addr, err)
	}
	value, err := protocol.DecodeVLQUint(&args)
	if err != nil {
		return 0, fmt.Errorf("read 0x%08x: %w", addr, err)
	}
	if gotAddr != addr {
		return 0, fmt.Errorf("read 0x%08x: board answered for 0x%08x", addr, gotAddr)
	}
	return value, nil
}

// WriteRegister writes one 32-bit register on the board
func (c *Client) WriteRegister(addr uint32, value uint32) error {
	rspID, args, err := c.transport.Request(protocol.CmdWriteReg, func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, addr)
		protocol.EncodeVLQUint(o, value)
	}, c.timeout)
	if err != nil {
		return fmt.Errorf("write 0x%08x: %w", addr, err)
	}
	if rspID != protocol.RspWriteDone {
		return fmt.Errorf("write 0x%08x: unexpected response 0x%02x", addr, rspID)
	}
	if gotAddr, err := protocol.DecodeVLQUint(&args); err != nil || gotAddr != addr {
		return fmt.Errorf("write 0x%08x: bad acknowledgement", addr)
	}
	return nil
}

// Read32 implements core.Bus
func (c *Client) Read32(addr uint32) uint32 {
	if c.Err() != nil {
		return 0
	}
	value, err := c.ReadRegister(addr)
	if err != nil {
		c.fail(err)
		return 0
	}
	return value
}

// Write32 implements core.Bus
func (c *Client) Write32(addr uint32, value uint32) {
	if c.Err() != nil {
		return
	}
	if err := c.WriteRegister(addr, value); err != nil {
		c.fail(err)
	}
}

// Err returns the first transaction failure, if any
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ClearErr forgets a recorded failure so the bus can be used again
func (c *Client) ClearErr() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = nil
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

// Close shuts down the link
func (c *Client) Close() error {
	return c.transport.Close()
}

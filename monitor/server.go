// Package monitor serves a register bus to a remote host over a byte stream.
//
// The board runs a Server on top of its local bus (normally /dev/mem
// mappings). The host talks to it with host/regmon, which turns the link
// back into a core.Bus so the timer HAL runs unchanged on the host.
package monitor

import (
	"io"
	"strconv"

	"github.com/pkg/errors"

	"zynqhal/core"
	"zynqhal/mmio"
	"zynqhal/protocol"
)

// AddressError rejects a register access the server will not perform
type AddressError struct {
	Addr   uint32
	Reason string
}

func (e *AddressError) Error() string {
	return e.Reason + " address 0x" + strconv.FormatUint(uint64(e.Addr), 16)
}

// Server answers identify, read_reg and write_reg commands against a bus
type Server struct {
	bus       core.Bus
	regions   []mmio.Region
	registry  *Registry
	transport *protocol.Transport

	// Register traffic counters
	Reads  int
	Writes int
}

// NewServer creates a server for bus. When regions are given, accesses
// outside them are refused instead of reaching the bus.
func NewServer(bus core.Bus, regions ...mmio.Region) *Server {
	s := &Server{
		bus:      bus,
		regions:  regions,
		registry: NewRegistry(),
	}

	s.registry.Register(protocol.CmdIdentify, "identify", "", s.handleIdentify)
	s.registry.Register(protocol.CmdReadReg, "read_reg", "addr=%u", s.handleReadReg)
	s.registry.Register(protocol.CmdWriteReg, "write_reg", "addr=%u value=%u", s.handleWriteReg)
	s.registry.RegisterResponse(protocol.RspIdentify, "identify_response", "version=%s")
	s.registry.RegisterResponse(protocol.RspRegValue, "reg_value", "addr=%u value=%u")
	s.registry.RegisterResponse(protocol.RspWriteDone, "write_done", "addr=%u")
	s.registry.RegisterResponse(protocol.RspError, "error", "msg=%s")

	s.transport = protocol.NewTransport(s.registry.Dispatch)
	return s
}

// Registry returns the server's command dictionary
func (s *Server) Registry() *Registry {
	return s.registry
}

// Handle feeds received bytes to the server and returns the reply bytes
func (s *Server) Handle(data []byte) []byte {
	return s.transport.Receive(data)
}

// Serve answers requests from rw until it reports EOF
func (s *Server) Serve(rw io.ReadWriter) error {
	buf := make([]byte, 256)
	for {
		n, err := rw.Read(buf)
		if n > 0 {
			if reply := s.Handle(buf[:n]); len(reply) > 0 {
				if _, werr := rw.Write(reply); werr != nil {
					return errors.Wrap(werr, "monitor: write reply")
				}
			}
		}
		if err == io.EOF {
			core.DebugPrintln("[MONITOR] link closed")
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "monitor: read")
		}
	}
}

func (s *Server) checkAddress(addr uint32) error {
	if addr&3 != 0 {
		return &AddressError{Addr: addr, Reason: "unaligned"}
	}
	if len(s.regions) == 0 {
		return nil
	}
	for _, r := range s.regions {
		if r.Contains(addr) {
			return nil
		}
	}
	return &AddressError{Addr: addr, Reason: "unmapped"}
}

func (s *Server) handleIdentify(args *[]byte, reply protocol.OutputBuffer) error {
	protocol.EncodeVLQUint(reply, uint32(protocol.RspIdentify))
	protocol.EncodeVLQString(reply, protocol.Version)
	return nil
}

func (s *Server) handleReadReg(args *[]byte, reply protocol.OutputBuffer) error {
	addr, err := protocol.DecodeVLQUint(args)
	if err != nil {
		return err
	}
	if err := s.checkAddress(addr); err != nil {
		return err
	}

	value := s.bus.Read32(addr)
	s.Reads++

	protocol.EncodeVLQUint(reply, uint32(protocol.RspRegValue))
	protocol.EncodeVLQUint(reply, addr)
	protocol.EncodeVLQUint(reply, value)
	return nil
}

func (s *Server) handleWriteReg(args *[]byte, reply protocol.OutputBuffer) error {
	addr, err := protocol.DecodeVLQUint(args)
	if err != nil {
		return err
	}
	value, err := protocol.DecodeVLQUint(args)
	if err != nil {
		return err
	}
	if err := s.checkAddress(addr); err != nil {
		return err
	}

	s.bus.Write32(addr, value)
	s.Writes++

	protocol.EncodeVLQUint(reply, uint32(protocol.RspWriteDone))
	protocol.EncodeVLQUint(reply, addr)
	return nil
}

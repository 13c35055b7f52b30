package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"zynqhal/config"
	"zynqhal/core"
	"zynqhal/gpio"
	"zynqhal/host/regmon"
	"zynqhal/mmio"
	"zynqhal/sim"
)

// session is an open connection to the board's registers
type session struct {
	cfg    *config.BoardConfig
	bus    core.Bus
	timers *core.IntervalTimers
	delay  core.Delayer

	board  *sim.Board     // Set for the sim backend
	remote *regmon.Client // Set for the serial backend
	closer func() error
}

// shellSession is reused by commands run from the interactive shell
var shellSession *session

func openSession(cfg *config.BoardConfig) (*session, error) {
	s := &session{
		cfg:   cfg,
		delay: core.DelayFunc(sleepMS),
	}

	switch cfg.Backend {
	case config.BackendSim:
		board := sim.New(cfg.ClockHz, uint32(cfg.Timers[0]), uint32(cfg.Timers[1]), uint32(cfg.Timers[2]))
		board.AddGPIO(uint32(cfg.Buttons), 4)
		board.AddGPIO(uint32(cfg.Switches), 4)
		s.board = board
		s.bus = board
		s.delay = board // Delays advance simulated time

	case config.BackendDevMem:
		mem, err := mmio.OpenDevMem(cfg.DevMem, cfg.Regions()...)
		if err != nil {
			return nil, err
		}
		s.bus = mem
		s.closer = mem.Close

	case config.BackendSerial:
		client, err := regmon.Connect(cfg.Serial.PortConfig())
		if err != nil {
			return nil, err
		}
		s.remote = client
		s.bus = client
		s.closer = client.Close

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	s.timers = core.NewIntervalTimers(s.bus, cfg.TimerBases(), cfg.ClockHz)
	return s, nil
}

// withSession runs fn against the shell's session or a freshly opened one
func withSession(cmd *cobra.Command, fn func(s *session) error) error {
	if shellSession != nil {
		return shellSession.check(fn(shellSession))
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.check(fn(s))
}

// check folds a recorded remote bus failure into err
func (s *session) check(err error) error {
	if err != nil {
		return err
	}
	if s.remote != nil {
		if busErr := s.remote.Err(); busErr != nil {
			s.remote.ClearErr()
			return fmt.Errorf("register bus: %w", busErr)
		}
	}
	return nil
}

func (s *session) buttons() *gpio.Input {
	return gpio.Buttons(s.bus, uint32(s.cfg.Buttons))
}

func (s *session) switches() *gpio.Input {
	return gpio.Switches(s.bus, uint32(s.cfg.Switches))
}

// Close releases the backend
func (s *session) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

func sleepMS(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// parseTimers turns command arguments into timer IDs; "all" or no
// arguments select every timer
func parseTimers(args []string) ([]core.TimerID, error) {
	if len(args) == 0 {
		return core.AllTimers[:], nil
	}
	ids := make([]core.TimerID, 0, len(args))
	for _, arg := range args {
		if arg == "all" {
			return core.AllTimers[:], nil
		}
		id, err := core.ParseTimerID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

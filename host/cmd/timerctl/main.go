// Command timerctl drives the board's AXI interval timers from a host or
// from Linux on the board itself.
//
// The register backend is chosen by the board configuration: "sim" runs a
// simulated board in-process, "devmem" maps the timers through /dev/mem, and
// "serial" talks to a register monitor (started with "timerctl serve") over
// a serial line or TCP.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"zynqhal/config"
	"zynqhal/core"
)

// Global flags
var (
	configPath string
	backend    string
	device     string
	baud       int
	devmemPath string
	clockHz    float64
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "timerctl",
		Short:         "Control and test the Zynq AXI interval timers",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				core.SetDebugWriter(func(s string) { log.Println(s) })
				core.SetDebugEnabled(true)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Board configuration file (JSON)")
	flags.StringVarP(&backend, "backend", "b", "", "Register backend: sim, devmem or serial")
	flags.StringVarP(&device, "device", "d", "", "Monitor link: serial device or tcp://host:port")
	flags.IntVar(&baud, "baud", 0, "Serial baud rate")
	flags.StringVar(&devmemPath, "devmem", "", "Physical memory device")
	flags.Float64Var(&clockHz, "clock", 0, "Timer clock frequency in Hz")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log timer events")

	root.AddCommand(
		newInitCmd(),
		newStartCmd(),
		newStopCmd(),
		newResetCmd(),
		newElapsedCmd(),
		newTestCmd(),
		newBenchCmd(),
		newWatchCmd(),
		newShellCmd(),
		newServeCmd(),
	)
	return root
}

// loadConfig reads the configuration file, if any, and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.BoardConfig, error) {
	cfg := config.DefaultZyboConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFile(configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("device") {
		cfg.Serial.Device = device
		if !flags.Changed("backend") && configPath == "" {
			cfg.Backend = config.BackendSerial
		}
	}
	if flags.Changed("baud") {
		cfg.Serial.Baud = baud
	}
	if flags.Changed("devmem") {
		cfg.DevMem = devmemPath
	}
	if flags.Changed("clock") {
		cfg.ClockHz = clockHz
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

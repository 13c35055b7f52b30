package config

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/exp/slices"

	"zynqhal/core"
	"zynqhal/host/serial"
	"zynqhal/mmio"
)

// Zybo Z7 block design addresses
const (
	ZyboTimer0   = 0x42800000
	ZyboTimer1   = 0x42840000
	ZyboTimer2   = 0x42880000
	ZyboButtons  = 0x41240000
	ZyboSwitches = 0x41220000
)

// LoadConfig parses a JSON configuration and returns a validated BoardConfig
func LoadConfig(jsonData []byte) (*BoardConfig, error) {
	var config BoardConfig

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads and parses a configuration file
func LoadFile(path string) (*BoardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills in missing values from the Zybo board
func applyDefaults(config *BoardConfig) {
	if config.Name == "" {
		config.Name = "zybo"
	}
	if config.ClockHz == 0 {
		config.ClockHz = core.DefaultClockHz
	}
	if len(config.Timers) == 0 {
		config.Timers = []Address{ZyboTimer0, ZyboTimer1, ZyboTimer2}
	}
	if config.Buttons == 0 {
		config.Buttons = ZyboButtons
	}
	if config.Switches == 0 {
		config.Switches = ZyboSwitches
	}
	if config.Backend == "" {
		config.Backend = BackendSim
	}
	if config.DevMem == "" {
		config.DevMem = mmio.DefaultDevMem
	}
	if config.Serial.Baud == 0 {
		config.Serial.Baud = serial.DefaultBaud
	}
	if config.Serial.TimeoutMS == 0 {
		config.Serial.TimeoutMS = 100
	}
	if config.Harness.Tolerance == 0 {
		config.Harness.Tolerance = 0.05 // 50ms
	}
}

// Validate checks the configuration for values the HAL cannot use
func (c *BoardConfig) Validate() error {
	if c.ClockHz <= 0 {
		return fmt.Errorf("clock_hz must be positive, got %v", c.ClockHz)
	}
	if len(c.Timers) != core.NumTimers {
		return fmt.Errorf("need exactly %d timer addresses, got %d", core.NumTimers, len(c.Timers))
	}

	bases := make([]Address, 0, len(c.Timers)+2)
	bases = append(bases, c.Timers...)
	bases = append(bases, c.Buttons, c.Switches)
	for i, b := range bases {
		if b == 0 {
			if i < len(c.Timers) {
				return fmt.Errorf("timer%d address is zero", i)
			}
			continue
		}
		if b%mmio.DefaultWindow != 0 {
			return fmt.Errorf("address %s is not aligned to a peripheral window", b)
		}
		if slices.Index(bases[:i], b) >= 0 {
			return fmt.Errorf("address %s is used twice", b)
		}
	}

	if !slices.Contains(Backends, c.Backend) {
		return fmt.Errorf("unknown backend %q (want one of %v)", c.Backend, Backends)
	}
	if c.Backend == BackendSerial && c.Serial.Device == "" {
		return fmt.Errorf("serial backend needs serial.device")
	}
	if c.Harness.Tolerance < 0 {
		return fmt.Errorf("harness.tolerance must not be negative")
	}
	return nil
}

// DefaultZyboConfig returns the configuration of the stock Zybo design
func DefaultZyboConfig() *BoardConfig {
	config := &BoardConfig{}
	applyDefaults(config)
	return config
}

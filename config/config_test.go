package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultZyboConfig(t *testing.T) {
	cfg := DefaultZyboConfig()

	bases := cfg.TimerBases()
	if bases[0] != 0x42800000 || bases[1] != 0x42840000 || bases[2] != 0x42880000 {
		t.Errorf("Unexpected timer bases: %#x", bases)
	}
	if cfg.ClockHz != 100e6 {
		t.Errorf("Expected 100 MHz clock, got %v", cfg.ClockHz)
	}
	if cfg.Buttons != 0x41240000 || cfg.Switches != 0x41220000 {
		t.Errorf("Unexpected GPIO bases: buttons=%s switches=%s", cfg.Buttons, cfg.Switches)
	}
	if cfg.Backend != BackendSim {
		t.Errorf("Expected sim backend by default, got %q", cfg.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
	if n := len(cfg.Regions()); n != 5 {
		t.Errorf("Expected 5 peripheral windows, got %d", n)
	}
}

func TestLoadConfig(t *testing.T) {
	data := []byte(`{
		"name": "lab-bench",
		"clock_hz": 50000000,
		"timers": ["0x43C00000", "0x43C10000", 1136787456],
		"backend": "serial",
		"serial": {"device": "/dev/ttyUSB1", "baud": 921600}
	}`)

	cfg, err := LoadConfig(data)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "lab-bench" || cfg.ClockHz != 50e6 {
		t.Errorf("Expected name and clock from file, got %q %v", cfg.Name, cfg.ClockHz)
	}
	if cfg.Timers[2] != 0x43C20000 {
		t.Errorf("Expected numeric address 0x43c20000, got %s", cfg.Timers[2])
	}
	// Defaults fill the rest
	if cfg.Buttons != ZyboButtons {
		t.Errorf("Expected default buttons address, got %s", cfg.Buttons)
	}
	if cfg.Serial.TimeoutMS != 100 {
		t.Errorf("Expected default timeout 100ms, got %d", cfg.Serial.TimeoutMS)
	}

	port := cfg.Serial.PortConfig()
	if port.Device != "/dev/ttyUSB1" || port.Baud != 921600 || port.ReadTimeout != 100*time.Millisecond {
		t.Errorf("Unexpected port config: %+v", port)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"bad backend", `{"backend": "jtag"}`, "unknown backend"},
		{"two timers", `{"timers": ["0x42800000", "0x42840000"]}`, "exactly 3"},
		{"duplicate", `{"timers": ["0x42800000", "0x42800000", "0x42880000"]}`, "used twice"},
		{"gpio overlaps timer", `{"buttons": "0x42800000"}`, "used twice"},
		{"unaligned", `{"switches": "0x41220004"}`, "not aligned"},
		{"serial without device", `{"backend": "serial"}`, "serial.device"},
		{"negative clock", `{"clock_hz": -1}`, "clock_hz"},
		{"bad address", `{"buttons": "zz"}`, "address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig([]byte(tt.json))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestAddressJSON(t *testing.T) {
	out, err := json.Marshal(Address(0x42800000))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `"0x42800000"` {
		t.Errorf("Expected hex string, got %s", out)
	}

	var a Address
	if err := json.Unmarshal([]byte(`"0x41240000"`), &a); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if a != 0x41240000 {
		t.Errorf("Expected 0x41240000, got %s", a)
	}

	if err := json.Unmarshal([]byte(`true`), &a); err == nil {
		t.Error("Expected error for boolean address")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	if err := os.WriteFile(path, []byte(`{"backend": "devmem"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Backend != BackendDevMem || cfg.DevMem != "/dev/mem" {
		t.Errorf("Expected devmem backend on /dev/mem, got %q %q", cfg.Backend, cfg.DevMem)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

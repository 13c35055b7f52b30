package main

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"zynqhal/config"
	"zynqhal/core"
)

func TestParseTimers(t *testing.T) {
	tests := []struct {
		args    []string
		want    []core.TimerID
		wantErr bool
	}{
		{nil, []core.TimerID{core.Timer0, core.Timer1, core.Timer2}, false},
		{[]string{"all"}, []core.TimerID{core.Timer0, core.Timer1, core.Timer2}, false},
		{[]string{"2", "timer0"}, []core.TimerID{core.Timer2, core.Timer0}, false},
		{[]string{"3"}, nil, true},
	}

	for _, tt := range tests {
		got, err := parseTimers(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTimers(%v): unexpected error state %v", tt.args, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("parseTimers(%v): expected %v, got %v", tt.args, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseTimers(%v): expected %v, got %v", tt.args, tt.want, got)
				break
			}
		}
	}
}

func TestLoadConfigFlags(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"--device", "tcp://board:9000", "--clock", "50000000", "elapsed"})

	// Replace the action so nothing is opened
	var cfg *config.BoardConfig
	for _, c := range root.Commands() {
		if c.Name() == "elapsed" {
			c.RunE = nil
			c.Run = func(cmd *cobra.Command, args []string) {
				var err error
				if cfg, err = loadConfig(cmd); err != nil {
					t.Errorf("loadConfig failed: %v", err)
				}
			}
		}
	}
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if cfg == nil {
		t.Fatal("Expected configuration to be loaded")
	}
	if cfg.Backend != config.BackendSerial {
		t.Errorf("Expected --device to select the serial backend, got %q", cfg.Backend)
	}
	if cfg.ClockHz != 50e6 {
		t.Errorf("Expected clock override 50e6, got %v", cfg.ClockHz)
	}
}

func TestSelfTestOnSimulator(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"--backend", "sim", "test", "1"})
	if err := root.Execute(); err != nil {
		t.Fatalf("test subcommand failed: %v", err)
	}
}

func TestShellSessionReuse(t *testing.T) {
	cfg := config.DefaultZyboConfig()
	s, err := openSession(cfg)
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	shellSession = s
	defer func() { shellSession = nil }()

	for _, args := range [][]string{{"init", "0"}, {"start", "0"}} {
		root := newRootCmd()
		root.SetArgs(args)
		if err := root.Execute(); err != nil {
			t.Fatalf("%v failed: %v", args, err)
		}
	}
	if err := shellAdvance(s, []string{"2500"}); err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	secs, err := s.timers.ElapsedSeconds(core.Timer0)
	if err != nil {
		t.Fatalf("ElapsedSeconds failed: %v", err)
	}
	if secs != 2.5 {
		t.Errorf("Expected 2.5 s on the shared session, got %v", secs)
	}
}

func TestTextDisplay(t *testing.T) {
	var out bytes.Buffer
	d := newTextDisplay(4, 2, &out)

	d.SetPixel(0, 0, color.RGBA{G: 0xC0, A: 0xFF})
	d.SetPixel(1, 0, color.RGBA{R: 0xC0, A: 0xFF})
	d.SetPixel(2, 0, color.RGBA{A: 0xFF})
	d.SetPixel(9, 9, color.RGBA{G: 0xFF}) // Off screen

	if err := d.Display(); err != nil {
		t.Fatalf("Display failed: %v", err)
	}
	if !strings.Contains(out.String(), "#=. ") {
		t.Errorf("Expected first row \"#=. \", got %q", out.String())
	}

	out.Reset()
	d.Display()
	if !strings.HasPrefix(out.String(), "\r\x1b[2A") {
		t.Errorf("Expected cursor to move up on redraw, got %q", out.String())
	}
}

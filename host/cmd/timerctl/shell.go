package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"zynqhal/core"
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session keeping one connection (and one simulated board) open",
		RunE: func(cmd *cobra.Command, args []string) error {
			if shellSession != nil {
				return fmt.Errorf("already in a shell")
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

			shellSession = s
			defer func() { shellSession = nil }()
			return runShell(s)
		},
	}
}

func runShell(s *session) error {
	fmt.Printf("timerctl shell (%s backend, %s). Type 'help' for commands.\n", s.cfg.Backend, s.cfg.Name)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		args, err := shlex.Split(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit", "q":
			return nil

		case "help", "?":
			printShellHelp()

		case "read":
			err = shellRead(s, args[1:])

		case "write":
			err = shellWrite(s, args[1:])

		case "advance":
			err = shellAdvance(s, args[1:])

		case "buttons":
			err = shellInput(s, "buttons", s.buttons().Init, s.buttons().Read)

		case "switches":
			err = shellInput(s, "switches", s.switches().Init, s.switches().Read)

		case "events":
			for _, evt := range core.Events() {
				fmt.Println(evt)
			}

		case "shell", "serve":
			err = fmt.Errorf("%s is not available inside the shell", args[0])

		default:
			// Everything else is a timerctl subcommand run on this session
			root := newRootCmd()
			root.SetArgs(args)
			root.Execute() // Cobra reports its own errors
		}

		if err == nil {
			err = s.check(nil)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	return scanner.Err()
}

func printShellHelp() {
	fmt.Println("\nTimer commands:")
	fmt.Println("  init|start|stop|reset|elapsed [timer...|all]")
	fmt.Println("  test [timer...|all]       - Run the self-test")
	fmt.Println("  bench [timer] --ms N -n N - Time repeated runs")
	fmt.Println("  watch                     - Live view")
	fmt.Println("Register commands:")
	fmt.Println("  read <addr>               - Read a 32-bit register")
	fmt.Println("  write <addr> <value>      - Write a 32-bit register")
	fmt.Println("  buttons | switches        - Read the input blocks")
	fmt.Println("Other:")
	fmt.Println("  advance <ms>              - Move simulated time forward (sim only)")
	fmt.Println("  events                    - Show recent timer events")
	fmt.Println("  quit/exit/q               - Leave the shell")
	fmt.Println()
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return uint32(v), nil
}

func shellRead(s *session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: read <addr>")
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	value := s.bus.Read32(addr)
	if err := s.check(nil); err != nil {
		return err
	}
	fmt.Printf("[0x%08x] = 0x%08x (%d)\n", addr, value, value)
	return nil
}

func shellWrite(s *session, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: write <addr> <value>")
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	value, err := parseUint32(args[1])
	if err != nil {
		return err
	}
	s.bus.Write32(addr, value)
	return nil
}

func shellAdvance(s *session, args []string) error {
	if s.board == nil {
		return fmt.Errorf("advance needs the sim backend")
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: advance <ms>")
	}
	ms, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	s.board.DelayMS(ms)
	return nil
}

func shellInput(s *session, name string, initFn func() error, read func() uint32) error {
	if err := initFn(); err != nil {
		return err
	}
	levels := read()
	fmt.Printf("%s: 0b%04b\n", name, levels)
	return nil
}

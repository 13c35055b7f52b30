package main

import (
	"fmt"
	"image/color"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-tty"
	"github.com/spf13/cobra"

	"zynqhal/core"
	"zynqhal/harness"
)

func newWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		bars     bool
		panel    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show live elapsed times; keys 0-2 select, s start, p stop, r reset, q quit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				return watch(s, interval, bars, panel)
			})
		},
	}
	cmd.Flags().DurationVarP(&interval, "interval", "i", 100*time.Millisecond, "Refresh interval")
	cmd.Flags().BoolVar(&bars, "bars", false, "Draw elapsed-time bars")
	cmd.Flags().BoolVar(&panel, "panel", false, "Also take commands from the board buttons")
	return cmd
}

func watch(s *session, interval time.Duration, bars, usePanel bool) error {
	t, err := tty.Open()
	if err != nil {
		return fmt.Errorf("watch needs a terminal: %w", err)
	}
	defer t.Close()
	out := t.Output()

	if err := s.timers.InitAll(); err != nil {
		return err
	}

	if s.board != nil {
		stop := s.board.StartClock(10 * time.Millisecond)
		defer stop()
	}

	var p *harness.Panel
	if usePanel {
		p = harness.NewPanel(s.timers, s.buttons(), s.switches())
		if err := p.Init(); err != nil {
			return err
		}
	}

	var screen *textDisplay
	var status *harness.StatusDisplay
	if bars {
		screen = newTextDisplay(40, 3*core.NumTimers, out)
		status = harness.NewStatusDisplay(screen, s.timers, 60)
	}

	keys := make(chan rune)
	go func() {
		defer close(keys)
		for {
			r, err := t.ReadRune()
			if err != nil {
				return
			}
			keys <- r
		}
	}()

	selected := core.Timer0
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case r, ok := <-keys:
			if !ok {
				return nil
			}
			switch r {
			case '0', '1', '2':
				selected = core.TimerID(r - '0')
			case 's':
				err = s.timers.Start(selected)
			case 'p':
				err = s.timers.Stop(selected)
			case 'r':
				err = s.timers.Reset(selected)
			case 'q', 3: // Ctrl-C arrives as a key in raw mode
				fmt.Fprintln(out)
				return nil
			}
			if err != nil {
				return err
			}

		case <-ticker.C:
			if p != nil {
				action, err := p.Poll()
				if err != nil {
					return err
				}
				if action == harness.ActionQuit {
					fmt.Fprintln(out)
					return nil
				}
			}
			if status != nil {
				if err := status.Update(); err != nil {
					return err
				}
			}
			if err := printWatchLine(out, s, selected); err != nil {
				return err
			}
			if err := s.check(nil); err != nil {
				return err
			}
		}
	}
}

func printWatchLine(out io.Writer, s *session, selected core.TimerID) error {
	var sb strings.Builder
	sb.WriteString("\r")
	for _, id := range core.AllTimers {
		secs, err := s.timers.ElapsedSeconds(id)
		if err != nil {
			return err
		}
		running, err := s.timers.Running(id)
		if err != nil {
			return err
		}

		mark := " "
		if id == selected {
			mark = ">"
		}
		state := "stop"
		if running {
			state = "run "
		}
		fmt.Fprintf(&sb, "%s%s %12.6f s %s  ", mark, id, secs, state)
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

// textDisplay renders a pixel display as characters on a terminal, one
// character per pixel
type textDisplay struct {
	width, height int16
	cells         [][]byte
	out           io.Writer
	drawn         bool
}

func newTextDisplay(width, height int16, out io.Writer) *textDisplay {
	cells := make([][]byte, height)
	for i := range cells {
		cells[i] = []byte(strings.Repeat(" ", int(width)))
	}
	return &textDisplay{width: width, height: height, cells: cells, out: out}
}

func (d *textDisplay) Size() (x, y int16) {
	return d.width, d.height
}

func (d *textDisplay) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return
	}
	ch := byte('.')
	switch {
	case c.G > c.R:
		ch = '#'
	case c.R > 0:
		ch = '='
	}
	d.cells[y][x] = ch
}

// Display redraws the canvas above the status line
func (d *textDisplay) Display() error {
	var sb strings.Builder
	if d.drawn {
		// Move back up over the previous frame
		fmt.Fprintf(&sb, "\r\x1b[%dA", d.height)
	}
	sb.WriteString("\r")
	for _, row := range d.cells {
		sb.Write(row)
		sb.WriteString("\r\n")
	}
	d.drawn = true
	_, err := io.WriteString(d.out, sb.String())
	return err
}

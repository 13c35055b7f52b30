package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zynqhal/core"
)

// timerAction builds a subcommand applying op to each named timer
func timerAction(use, short string, op func(s *session, id core.TimerID) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [timer...|all]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseTimers(args)
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				for _, id := range ids {
					if err := op(s, id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newInitCmd() *cobra.Command {
	return timerAction("init", "Initialize timers in cascade mode and verify them", func(s *session, id core.TimerID) error {
		if err := s.timers.Init(id); err != nil {
			return err
		}
		fmt.Printf("%s initialized\n", id)
		return nil
	})
}

func newStartCmd() *cobra.Command {
	return timerAction("start", "Start counting", func(s *session, id core.TimerID) error {
		return s.timers.Start(id)
	})
}

func newStopCmd() *cobra.Command {
	return timerAction("stop", "Stop counting", func(s *session, id core.TimerID) error {
		return s.timers.Stop(id)
	})
}

func newResetCmd() *cobra.Command {
	return timerAction("reset", "Stop and zero the counters", func(s *session, id core.TimerID) error {
		return s.timers.Reset(id)
	})
}

func newElapsedCmd() *cobra.Command {
	return timerAction("elapsed", "Print elapsed time and raw counter values", printStatus)
}

func printStatus(s *session, id core.TimerID) error {
	ticks, err := s.timers.Ticks(id)
	if err != nil {
		return err
	}
	control, err := s.timers.Control(id)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %.9f s (%d ticks, TCR1=%d TCR0=%d) TCSR0=%s\n",
		id, core.TicksToSeconds(ticks, s.timers.ClockHz()), ticks,
		uint32(ticks>>32), uint32(ticks), control)
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zynqhal/core"
	"zynqhal/harness"
)

func newTestCmd() *cobra.Command {
	var tolerance float64

	cmd := &cobra.Command{
		Use:   "test [timer...|all]",
		Short: "Run the timer self-test (about a minute per timer on hardware)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseTimers(args)
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				h := harness.New(s.timers, s.delay, os.Stdout)
				h.Tolerance = s.cfg.Harness.Tolerance
				if cmd.Flags().Changed("tolerance") {
					h.Tolerance = tolerance
				}

				if len(ids) == core.NumTimers {
					if _, err := h.RunAll(); err != nil {
						return err
					}
					fmt.Println("All timer tests passed")
					return nil
				}
				for _, id := range ids {
					if _, err := h.RunTimerTest(id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Allowed run time error in seconds (0 disables)")
	return cmd
}

func newBenchCmd() *cobra.Command {
	var (
		ms   uint32
		runs int
	)

	cmd := &cobra.Command{
		Use:   "bench [timer...|all]",
		Short: "Time repeated fixed-length runs and report statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseTimers(args)
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				h := harness.New(s.timers, s.delay, nil)
				if err := s.timers.InitAll(); err != nil {
					return err
				}
				for _, id := range ids {
					stats, err := h.Measure(id, ms, runs)
					if err != nil {
						return err
					}
					fmt.Println(stats)
					fmt.Printf("%s: mean offset %+.3f us\n", id, stats.Offset()*1e6)
				}
				return nil
			})
		},
	}
	cmd.Flags().Uint32Var(&ms, "ms", 100, "Length of each run in milliseconds")
	cmd.Flags().IntVarP(&runs, "runs", "n", 10, "Number of runs per timer")
	return cmd
}

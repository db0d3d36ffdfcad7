package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"grip/internal/stress"
	"grip/internal/ui"
)

var (
	stressKind string
	stressJobs int
	stressOps  int
	stressUI   string
)

func init() {
	stressCmd.Flags().StringVar(&stressKind, "kind", "arc", "workload kind (arc|mutex)")
	stressCmd.Flags().IntVar(&stressJobs, "jobs", 0, "worker goroutines (0 = GOMAXPROCS)")
	stressCmd.Flags().IntVar(&stressOps, "ops", 10000, "operations per worker")
	stressCmd.Flags().StringVar(&stressUI, "ui", "auto", "progress display (auto|on|off)")
}

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Hammer a primitive from many goroutines",
	Long: `Run a concurrency workload and verify the invariants afterwards:
arc churns clone/drop pairs and checks the count returns to one with the
payload intact; mutex races increments through the closure form and checks
none are lost.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		styles, err := stylesFromFlags(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		withUI, err := resolveStressUI(stressUI)
		if err != nil {
			return err
		}

		switch strings.ToLower(stressKind) {
		case "arc":
			cfg := stress.ArcConfig{Workers: stressJobs, Ops: stressOps, Payload: 5}
			var res stress.ArcResult
			if withUI {
				res, err = runArcWithUI(cmd, cfg)
			} else {
				res, err = stress.RunArc(cmd.Context(), cfg)
			}
			if err != nil {
				return err
			}
			styles.OKf(out, "arc: %d workers x %d ops, final count %d, payload %d, destroyed %d",
				res.Workers, res.Ops/res.Workers, res.FinalCount, res.Payload, res.Destroyed)
		case "mutex":
			cfg := stress.MutexConfig{Workers: stressJobs, Ops: stressOps}
			var res stress.MutexResult
			if withUI {
				res, err = runMutexWithUI(cmd, cfg)
			} else {
				res, err = stress.RunMutex(cmd.Context(), cfg)
			}
			if err != nil {
				return err
			}
			styles.OKf(out, "mutex: %d workers x %d ops, final value %d",
				res.Workers, res.Ops/res.Workers, res.Final)
		default:
			return fmt.Errorf("unknown workload %q (must be arc or mutex)", stressKind)
		}
		return nil
	},
}

func resolveStressUI(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return isTerminal(os.Stdout), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

type arcOutcome struct {
	result stress.ArcResult
	err    error
}

type mutexOutcome struct {
	result stress.MutexResult
	err    error
}

func runArcWithUI(cmd *cobra.Command, cfg stress.ArcConfig) (stress.ArcResult, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	ticks := make(chan stress.Tick, 256)
	outcomeCh := make(chan arcOutcome, 1)

	go func() {
		cfg.Ticks = ticks
		res, err := stress.RunArc(cmd.Context(), cfg)
		outcomeCh <- arcOutcome{result: res, err: err}
		close(ticks)
	}()

	model := ui.NewProgressModel("arc churn", cfg.Workers, cfg.Ops, ticks)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

func runMutexWithUI(cmd *cobra.Command, cfg stress.MutexConfig) (stress.MutexResult, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	ticks := make(chan stress.Tick, 256)
	outcomeCh := make(chan mutexOutcome, 1)

	go func() {
		cfg.Ticks = ticks
		res, err := stress.RunMutex(cmd.Context(), cfg)
		outcomeCh <- mutexOutcome{result: res, err: err}
		close(ticks)
	}()

	model := ui.NewProgressModel("mutex contention", cfg.Workers, cfg.Ops, ticks)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

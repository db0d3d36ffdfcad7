package main

import (
	"io"

	"github.com/spf13/cobra"

	"grip/internal/audit"
	"grip/internal/replay"
	"grip/internal/script"
	"grip/internal/trace"
)

var (
	runShowTrace  bool
	runRecordPath string
)

func init() {
	runCmd.Flags().BoolVar(&runShowTrace, "trace", false, "dump the recorded event trace after the run")
	runCmd.Flags().StringVar(&runRecordPath, "record", "", "save the recorded trace to a file for later replay")
}

var runCmd = &cobra.Command{
	Use:   "run <scenario.toml>",
	Short: "Run a scenario file",
	Long: `Load a TOML scenario and drive its steps against a fresh primitive.
Steps that declare want_fault must fault with that code; anything else
aborts the run. The run finishes with a leak check over the recorded
trace.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		styles, err := stylesFromFlags(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		quiet, err := quietFromFlags(cmd)
		if err != nil {
			return err
		}

		scenario, err := script.Load(args[0])
		if err != nil {
			return err
		}

		// Quiet mode drops the step narration but keeps the verdict.
		narration := out
		if quiet {
			narration = io.Discard
		}
		ring := trace.NewRingTracer(4096)
		if err := script.NewRunner(scenario, ring, narration).Run(); err != nil {
			return err
		}

		events := ring.Snapshot()
		if runShowTrace {
			styles.Headerf(out, "trace (%d events)", len(events))
			if err := ring.Dump(out, trace.FormatText); err != nil {
				return err
			}
		}
		if runRecordPath != "" {
			if err := replay.Save(runRecordPath, events); err != nil {
				return err
			}
			styles.Stepf(out, "trace saved to %s", runRecordPath)
		}

		rep := audit.Scan(events)
		if rep.Clean() {
			styles.OKf(out, "%s", rep)
		} else {
			styles.Faultf(out, "%s", rep)
		}
		return rep.Err()
	},
}

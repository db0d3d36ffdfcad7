package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"grip/internal/audit"
	"grip/internal/replay"
	"grip/internal/trace"
)

var (
	replayFormat string
	replayAudit  bool
)

func init() {
	replayCmd.Flags().StringVar(&replayFormat, "format", "text", "output format (text|ndjson)")
	replayCmd.Flags().BoolVar(&replayAudit, "audit", false, "re-run the leak check over the loaded trace")
}

var replayCmd = &cobra.Command{
	Use:   "replay <trace file>",
	Short: "Print a previously recorded trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		styles, err := stylesFromFlags(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		var format trace.Format
		switch strings.ToLower(replayFormat) {
		case "text":
			format = trace.FormatText
		case "ndjson":
			format = trace.FormatNDJSON
		default:
			return fmt.Errorf("unsupported format %q (must be text or ndjson)", replayFormat)
		}

		events, err := replay.Load(args[0])
		if err != nil {
			return err
		}
		for _, ev := range events {
			if _, err := out.Write(trace.FormatEvent(ev, format)); err != nil {
				return err
			}
		}

		if replayAudit {
			rep := audit.Scan(events)
			if rep.Clean() {
				styles.OKf(out, "%s", rep)
			} else {
				styles.Faultf(out, "%s", rep)
			}
			return rep.Err()
		}
		return nil
	},
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"grip/internal/demo"
)

var (
	demoShowTrace  bool
	demoRecordPath string
)

func init() {
	demoCmd.Flags().BoolVar(&demoShowTrace, "trace", false, "dump the recorded event trace after the run")
	demoCmd.Flags().StringVar(&demoRecordPath, "record", "", "save the recorded trace to a file for later replay")
}

var demoCmd = &cobra.Command{
	Use:   "demo [name]",
	Short: "Run an ownership demonstration",
	Long: `Run one of the built-in demonstrations. Each walks a single
primitive through its lifecycle, narrating every transition, and finishes
with a leak check. Without a name, lists what is available.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		styles, err := stylesFromFlags(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			styles.Headerf(out, "available demonstrations")
			for _, d := range demo.All() {
				fmt.Fprintf(out, "  %-10s %s\n", d.Name, d.Short)
			}
			return nil
		}

		d, ok := demo.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown demo %q (run `grip demo` to list)", args[0])
		}
		quiet, err := quietFromFlags(cmd)
		if err != nil {
			return err
		}
		if quiet {
			out = io.Discard
		}
		opts := demo.Options{
			Styles:     styles,
			ShowTrace:  demoShowTrace,
			RecordPath: demoRecordPath,
		}
		return d.Run(out, opts)
	},
}

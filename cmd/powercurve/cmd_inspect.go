package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/power-curve-service/internal/adapter/spreadsheet"
)

var inspectFlags struct {
	input  string
	asJSON bool
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show record and turbine counts for an export without rendering",
	RunE:  runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVarP(&inspectFlags.input, "input", "i", "", "Telemetry export (.xlsx or .csv) (required)")
	f.BoolVar(&inspectFlags.asJSON, "json", false, "Print the overview as JSON")

	_ = inspectCmd.MarkFlagRequired("input")
}

func runInspect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, 0)
	if err != nil {
		return err
	}
	defer a.Close()

	src, err := spreadsheet.Open(inspectFlags.input)
	if err != nil {
		return err
	}
	s, err := a.pipeline.Summarize(ctx, src)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if inspectFlags.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(out, "Total records:   %d\n", s.TotalRecords)
	fmt.Fprintf(out, "Unique turbines: %d\n", s.UniqueTurbines)
	fmt.Fprintf(out, "Unique models:   %d\n", s.UniqueModels)
	if s.SkippedRows > 0 {
		fmt.Fprintf(out, "Skipped rows:    %d (no turbine)\n", s.SkippedRows)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TURBINE\tMODEL\tRECORDS")
	for _, t := range s.Turbines {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", t.Turbine, t.Model, t.Records)
	}
	return tw.Flush()
}

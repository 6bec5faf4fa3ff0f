package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/power-curve-service/internal/adapter/spreadsheet"
)

var renderFlags struct {
	input  string
	output string
	dpi    int
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render power curves for every turbine in an export into a ZIP archive",
	RunE:  runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderFlags.input, "input", "i", "", "Telemetry export (.xlsx or .csv) (required)")
	f.StringVarP(&renderFlags.output, "output", "o", "", "Archive path (default: timestamped name in the working directory)")
	f.IntVar(&renderFlags.dpi, "dpi", 0, "Override RENDER_DPI")

	_ = renderCmd.MarkFlagRequired("input")
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, renderFlags.dpi)
	if err != nil {
		return err
	}
	defer a.Close()

	src, err := spreadsheet.Open(renderFlags.input)
	if err != nil {
		return err
	}
	res, err := a.pipeline.Run(ctx, src)
	if err != nil {
		return err
	}

	path := renderFlags.output
	if path == "" {
		path = res.Name
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	if _, err := io.Copy(f, res.Archive); err != nil {
		f.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Archive: %s (%d charts, %d bytes)\n", path, len(res.Manifest.Entries), res.Manifest.SizeBytes)
	for _, e := range res.Manifest.Entries {
		note := ""
		if !e.Reference {
			note = " [no reference curve]"
		}
		fmt.Fprintf(out, "  %s: %d points%s\n", e.Filename, e.Points, note)
	}
	return nil
}

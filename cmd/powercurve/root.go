package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "powercurve",
	Short: "Turbine power curve charts from SCADA telemetry exports",
	Long: "powercurve groups SCADA telemetry by turbine, plots measured operating points\n" +
		"against the manufacturer reference curve and bundles the charts into a ZIP archive.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

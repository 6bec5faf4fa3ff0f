// powercurve renders per-turbine power curve charts from SCADA telemetry
// exports and packages them into a ZIP archive.
//
// Usage:
//
//	powercurve render --input export.xlsx [--output curves.zip]
//	powercurve inspect --input export.xlsx [--json]
//	powercurve models
//	powercurve serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

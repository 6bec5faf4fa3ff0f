package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List turbine models with a reference power curve",
	RunE:  runModels,
}

func runModels(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), 0)
	if err != nil {
		return err
	}
	defer a.Close()

	catalog := a.pipeline.Catalog()
	out := cmd.OutOrStdout()
	for _, name := range catalog.Models() {
		curve, _ := catalog.Lookup(name)
		fmt.Fprintf(out, "%s\t%d samples\n", name, len(curve.Points))
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"

	"dcf_valuation/pkg/core/export"
	"dcf_valuation/pkg/core/report"

	"github.com/spf13/cobra"
)

func newSensitivityCmd(opts *options) *cobra.Command {
	var (
		rates   []float64
		growths []float64
		format  string
	)

	cmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "Print value per share across discount rates and terminal growth rates",
		Long: `Print the sensitivity grid. Rates are decimal fractions, e.g.
--wacc 0.07,0.08,0.09 --growth 0.02,0.025. Without explicit axes the grid
spans the configured range around the base case.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := opts.evaluate(true, rates, growths)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(ev.grid)
			case "csv":
				return export.Sensitivity(out, ev.bundle(opts.units()))
			case "table":
				text, err := report.Terminal(report.Document{
					Company: ev.scenario.Company,
					Inputs:  ev.inputs,
					Result:  ev.result,
					Grid:    ev.grid,
					Units:   opts.units(),
				})
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, text)
				return err
			default:
				return fmt.Errorf("unknown format %q (want table, csv or json)", format)
			}
		},
	}

	cmd.Flags().Float64SliceVar(&rates, "wacc", nil, "discount rates (decimal fractions)")
	cmd.Flags().Float64SliceVar(&growths, "growth", nil, "terminal growth rates (decimal fractions)")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, csv or json")
	return cmd
}

package cmd

import (
	"encoding/json"
	"fmt"

	"dcf_valuation/pkg/core/report"

	"github.com/spf13/cobra"
)

func newValuateCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "valuate",
		Short: "Value the scenario and print key metrics and the forecast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := opts.evaluate(false, nil, nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(ev.result)
			}

			text, err := report.Terminal(report.Document{
				Company: ev.scenario.Company,
				Inputs:  ev.inputs,
				Result:  ev.result,
				Units:   opts.units(),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, text)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result as JSON")
	return cmd
}

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"dcf_valuation/pkg/core/commentary"
	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/logger"
	"dcf_valuation/pkg/core/report"

	"github.com/spf13/cobra"
)

func newReportCmd(opts *options) *cobra.Command {
	var (
		output       string
		withComments bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the valuation report as HTML or markdown",
		Long: `Render the full report: key metrics, assumptions, forecast and the
sensitivity grid. -o file.md writes markdown, any other name HTML; without
-o markdown goes to stdout. --commentary adds an LLM-written note when
GEMINI_API_KEY is set and commentary is enabled in the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := opts.evaluate(true, nil, nil)
			if err != nil {
				return err
			}

			doc := report.Document{
				Company: ev.scenario.Company,
				Inputs:  ev.inputs,
				Result:  ev.result,
				Grid:    ev.grid,
				Units:   opts.units(),
			}
			if withComments {
				if p := opts.cfg.Provider(); p != nil {
					w := commentary.New(p, llm.Options{Model: opts.cfg.Commentary.Model}, opts.logger())
					doc.Commentary = w.TryWrite(cmd.Context(), commentary.Request{
						Company: doc.Company,
						Inputs:  doc.Inputs,
						Result:  doc.Result,
						Grid:    doc.Grid,
					})
				} else {
					logger.FromContext(cmd.Context()).Warnw("commentary requested but not configured")
				}
			}

			markdown := output == "" || strings.EqualFold(filepath.Ext(output), ".md")
			render := func(w io.Writer) error {
				var text string
				var err error
				if markdown {
					text, err = report.Markdown(doc)
				} else {
					text, err = report.HTML(doc)
				}
				if err != nil {
					return err
				}
				_, err = io.WriteString(w, text)
				return err
			}

			if output == "" {
				return render(cmd.OutOrStdout())
			}
			if err := writeFile(output, render); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.html or .md)")
	cmd.Flags().BoolVar(&withComments, "commentary", false, "add LLM commentary")
	return cmd
}

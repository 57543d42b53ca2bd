package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dcf_valuation/pkg/core/export"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		kindName string
		output   string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write forecast, summary, assumptions or sensitivity CSV",
		Long: `Write a CSV export. With -o a file or directory is written; a directory
receives <Company>_DCF_<Kind>.csv. Without -o the CSV goes to stdout.
--all writes every kind into the -o directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := export.Kinds
			if !all {
				kind, err := export.ParseKind(kindName)
				if err != nil {
					return err
				}
				kinds = []export.Kind{kind}
			} else if output == "" {
				return fmt.Errorf("--all needs an output directory (-o)")
			}

			ev, err := opts.evaluate(true, nil, nil)
			if err != nil {
				return err
			}
			b := ev.bundle(opts.units())

			if output == "" {
				return export.Write(cmd.OutOrStdout(), kinds[0], b)
			}
			for _, kind := range kinds {
				path := output
				if info, err := os.Stat(output); (err == nil && info.IsDir()) || all {
					path = filepath.Join(output, export.FileName(ev.scenario.FileStem(), kind))
				}
				if err := writeFile(path, func(w io.Writer) error { return export.Write(w, kind, b) }); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", string(export.KindForecast), "forecast, summary, assumptions or sensitivity")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory")
	cmd.Flags().BoolVar(&all, "all", false, "write every kind")
	return cmd
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

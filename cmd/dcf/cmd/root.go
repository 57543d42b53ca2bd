// Package cmd implements the dcf command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/export"
	"dcf_valuation/pkg/core/logger"
	"dcf_valuation/pkg/core/scenario"
	"dcf_valuation/pkg/core/valuation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	scenarioFile string
	configFile   string
	absolute     bool
	verbose      bool

	cfg config.Config
	log *zap.SugaredLogger
}

// NewRootCmd builds the dcf command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "dcf",
		Short: "Discounted cash flow valuation",
		Long: `dcf values a company from revenue, growth, margin, tax, reinvestment,
discount rate and terminal growth assumptions.

Without -f the built-in TechCorp Inc scenario is used. Scenario files may
be YAML (.yaml, .yml), JSON (.json) or Hjson (.hjson).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			env := cfg.Env
			if opts.verbose {
				env = "dev"
			}
			opts.log = logger.NewForEnv(env)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logger.WithContext(ctx, opts.log))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.scenarioFile, "file", "f", "", "scenario file (default: built-in TechCorp Inc)")
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: $DCF_CONFIG or config/dcf.yaml)")
	root.PersistentFlags().BoolVar(&opts.absolute, "absolute", false, "show money in absolute units instead of millions")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "development logging")

	root.AddCommand(
		newValuateCmd(opts),
		newSensitivityCmd(opts),
		newExportCmd(opts),
		newReportCmd(opts),
	)
	return root
}

// Execute runs the command line and prints any error.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func (o *options) units() export.Units {
	if o.absolute {
		return export.Absolute
	}
	return export.Millions
}

func (o *options) logger() *zap.SugaredLogger {
	if o.log == nil {
		return zap.NewNop().Sugar()
	}
	return o.log
}

// evaluation is one scenario run through the engine.
type evaluation struct {
	scenario *scenario.Scenario
	inputs   *valuation.Inputs
	result   *valuation.Result
	grid     *valuation.Grid
}

// evaluate loads the scenario and valuates it. Explicit axes override the
// scenario's; a grid is built when withGrid is set and the axes fit within
// grid.max_cells.
func (o *options) evaluate(withGrid bool, rates, growths []float64) (*evaluation, error) {
	s := scenario.Default()
	sc := &s
	if o.scenarioFile != "" {
		loaded, err := scenario.Load(o.scenarioFile)
		if err != nil {
			return nil, err
		}
		sc = loaded
	}

	in, err := sc.Inputs()
	if err != nil {
		return nil, err
	}
	res, err := valuation.Valuate(in)
	if err != nil {
		return nil, err
	}
	ev := &evaluation{scenario: sc, inputs: in, result: res}

	if withGrid {
		defRates, defGrowths := sc.Ranges(in, o.cfg.Grid.RangeConfig)
		if len(rates) == 0 {
			rates = defRates
		}
		if len(growths) == 0 {
			growths = defGrowths
		}
		if n := len(rates) * len(growths); n > o.cfg.Grid.MaxCells {
			return nil, fmt.Errorf("sensitivity grid of %d cells exceeds the limit of %d", n, o.cfg.Grid.MaxCells)
		}
		ev.grid = valuation.Sensitivity(in, rates, growths)
		o.logger().Debugw("sensitivity grid built",
			"cells", ev.grid.Size(),
			"invalid_cells", ev.grid.InvalidCount(),
		)
	}

	o.logger().Debugw("valuation complete",
		"company", sc.Company,
		"years", in.HorizonYears(),
		"value_per_share", res.ValuePerShare,
	)
	return ev, nil
}

func (ev *evaluation) bundle(u export.Units) export.Bundle {
	return export.Bundle{
		Company: ev.scenario.Company,
		Inputs:  ev.inputs,
		Result:  ev.result,
		Grid:    ev.grid,
		Units:   u,
	}
}

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/forecastcv/forecastcv/pkg/forecast"
	"github.com/forecastcv/forecastcv/pkg/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a hyperparameter search and print the ranked results table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, series, exog, err := setup()
		if err != nil {
			return err
		}
		f, err := forecast.Create(cfg.Search.Forecaster)
		if err != nil {
			return err
		}
		strategy, err := cfg.BuildStrategy()
		if err != nil {
			return err
		}

		engine := search.NewEngine(logger)
		result, err := engine.Search(cmd.Context(), f, series, exog, strategy, search.Options{
			Policy:      cfg.WindowPolicy(),
			Metrics:     cfg.Search.Metrics,
			RefitMetric: cfg.Search.RefitMetric,
			Refit:       cfg.Search.Refit,
			Parallelism: cfg.Search.Parallelism,
			FoldWeights: cfg.Search.FoldWeights,
		})
		if err != nil {
			return err
		}

		table := result.Table
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		header := "candidate\tparams"
		for _, name := range table.Metrics {
			header += fmt.Sprintf("\tmean %s\tstd %s\trank %s", name, name, name)
		}
		fmt.Fprintln(w, header)
		for c, params := range table.Candidates {
			row := fmt.Sprintf("%d\t%v", c, params)
			for _, name := range table.Metrics {
				row += fmt.Sprintf("\t%.6f\t%.6f\t%d",
					table.MeanScores[name][c], table.StdScores[name][c], table.Ranks[name][c])
			}
			fmt.Fprintln(w, row)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\nbest candidate (%s): %v, mean %s = %.6f\n",
			cfg.Search.RefitMetric, result.BestParams, cfg.Search.RefitMetric, result.BestScore)
		if result.BestForecaster != nil {
			fmt.Printf("refit on full series in %s\n", result.RefitTime)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

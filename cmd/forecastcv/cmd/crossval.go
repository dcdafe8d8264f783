package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/forecastcv/forecastcv/pkg/crossval"
	"github.com/forecastcv/forecastcv/pkg/forecast"
)

var crossvalCmd = &cobra.Command{
	Use:   "crossval",
	Short: "Cross-validate the configured forecaster and print per-fold scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, series, exog, err := setup()
		if err != nil {
			return err
		}
		f, err := forecast.Create(cfg.Search.Forecaster)
		if err != nil {
			return err
		}

		result, err := crossval.CrossValidate(cmd.Context(), f, series, exog, cfg.WindowPolicy(), crossval.Options{
			Metrics:     cfg.Search.Metrics,
			Parallelism: cfg.Search.Parallelism,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "metric\tfold scores\tmean")
		for _, name := range cfg.Search.Metrics {
			scores := result.Scores[name]
			var sum float64
			for _, v := range scores {
				sum += v
			}
			fmt.Fprintf(w, "%s\t%v\t%.6f\n", name, scores, sum/float64(len(scores)))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(crossvalCmd)
}

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/forecastcv/forecastcv/pkg/search"
)

var compareForecasters []string

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Cross-validate registered forecasters and rank them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, series, exog, err := setup()
		if err != nil {
			return err
		}

		engine := search.NewEngine(logger)
		comparison, err := engine.Compare(cmd.Context(), compareForecasters, series, exog, cfg.Search.RefitMetric, search.Options{
			Policy:      cfg.WindowPolicy(),
			Metrics:     cfg.Search.Metrics,
			Parallelism: cfg.Search.Parallelism,
			FoldWeights: cfg.Search.FoldWeights,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		header := "forecaster"
		for _, name := range comparison.Metrics {
			header += fmt.Sprintf("\tmean %s\trank %s", name, name)
		}
		header += "\tmean fit time"
		fmt.Fprintln(w, header)
		for i, name := range comparison.Names {
			row := name
			for _, metric := range comparison.Metrics {
				row += fmt.Sprintf("\t%.6f\t%d", comparison.MeanScores[metric][i], comparison.Ranks[metric][i])
			}
			row += fmt.Sprintf("\t%s", comparison.MeanFitTime[i])
			fmt.Fprintln(w, row)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\nbest forecaster (%s): %s\n", comparison.SortMetric, comparison.Names[comparison.BestIndex])
		return nil
	},
}

func init() {
	compareCmd.Flags().StringSliceVar(&compareForecasters, "forecasters", nil, "forecasters to compare (default: all registered)")
	rootCmd.AddCommand(compareCmd)
}

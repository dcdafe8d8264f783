package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/forecastcv/forecastcv/pkg/crossval"
)

var foldsCmd = &cobra.Command{
	Use:   "folds",
	Short: "Print the train/test splits the window policy produces",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, series, _, err := setup()
		if err != nil {
			return err
		}
		folds, err := crossval.GenerateFolds(series.Len(), cfg.WindowPolicy())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "fold\ttrain\ttest\ttrain end\tfirst test")
		for _, fold := range folds {
			trainEnd := fold.TrainPos[len(fold.TrainPos)-1]
			fmt.Fprintf(w, "%d\t%d..%d\t%v\t%s\t%s\n",
				fold.Number,
				fold.TrainPos[0], trainEnd,
				fold.TestPos,
				series.TimeAt(trainEnd).Format(time.DateOnly),
				series.TimeAt(fold.TestPos[0]).Format(time.DateOnly),
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(foldsCmd)
}

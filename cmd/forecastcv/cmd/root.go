// Package cmd implements the forecastcv command line tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/forecastcv/forecastcv/internal/config"
	"github.com/forecastcv/forecastcv/internal/dataio"
	"github.com/forecastcv/forecastcv/internal/logging"
	"github.com/forecastcv/forecastcv/pkg/timeseries"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "forecastcv",
	Short: "Rolling-origin cross-validation and hyperparameter search for forecasters",
	Long: `forecastcv evaluates forecasting models under leakage-free rolling-origin
cross-validation and searches hyperparameter spaces with grid or random
strategies.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
}

// setup loads configuration, logger, and the dataset shared by every
// subcommand.
func setup() (*config.Config, *logrus.Logger, *timeseries.Series, *timeseries.ExogTable, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger := logging.New(cfg.LogLevel, cfg.Environment)

	series, exog, err := dataio.LoadCSV(cfg.Data.Path, dataio.Options{
		TimeColumn:  cfg.Data.TimeColumn,
		TimeLayout:  cfg.Data.TimeLayout,
		ValueColumn: cfg.Data.ValueColumn,
		ExogColumns: cfg.Data.ExogColumns,
	})
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger.WithFields(logrus.Fields{
		"path":         cfg.Data.Path,
		"observations": series.Len(),
		"exog_columns": len(exog.Names()),
	}).Info("dataset loaded")
	return cfg, logger, series, exog, nil
}

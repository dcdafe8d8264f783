package crossval

import (
	"context"
	"fmt"
	"time"

	"github.com/forecastcv/forecastcv/pkg/forecast"
	"github.com/forecastcv/forecastcv/pkg/metrics"
	"github.com/forecastcv/forecastcv/pkg/timeseries"
)

// FoldScore holds one fold's metric values and wall-clock timings.
type FoldScore struct {
	FoldNumber int
	Scores     map[string]float64
	FitTime    time.Duration
	ScoreTime  time.Duration
}

// FitAndScore trains a clone of the forecaster on one fold's training slice,
// predicts at the fold's test positions, and scores the prediction under
// every scorer. The caller's forecaster instance is never mutated. When
// candidate is non-nil it is applied to the clone before fitting.
func FitAndScore(
	ctx context.Context,
	f forecast.Forecaster,
	y *timeseries.Series,
	x *timeseries.ExogTable,
	fold Fold,
	scorers []metrics.Scorer,
	candidate forecast.Params,
	opts forecast.FitOptions,
) (*FoldScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clone := f.Clone()
	if candidate != nil {
		if err := clone.Configure(candidate); err != nil {
			return nil, NewConfigurationErrorf(
				"crossval: fold %d: configuring %s with %v: %v", fold.Number, f.Name(), candidate, err)
		}
	}

	trainStart := fold.TrainPos[0]
	trainEnd := fold.TrainPos[len(fold.TrainPos)-1] + 1
	yTrain, err := y.SliceRange(trainStart, trainEnd)
	if err != nil {
		return nil, fmt.Errorf("crossval: fold %d train slice: %w", fold.Number, err)
	}
	xTrain, err := x.Select(fold.TrainPos)
	if err != nil {
		return nil, fmt.Errorf("crossval: fold %d exog train slice: %w", fold.Number, err)
	}
	xTest, err := x.Select(fold.TestPos)
	if err != nil {
		return nil, fmt.Errorf("crossval: fold %d exog test slice: %w", fold.Number, err)
	}

	fitStart := time.Now()
	if err := clone.Fit(ctx, yTrain, xTrain, opts); err != nil {
		return nil, fmt.Errorf("crossval: fold %d fit: %w", fold.Number, err)
	}
	fitTime := time.Since(fitStart)

	predicted, err := clone.Predict(fold.Horizon, xTest)
	if err != nil {
		return nil, fmt.Errorf("crossval: fold %d predict: %w", fold.Number, err)
	}

	expectedTimes, actual, err := y.Select(fold.TestPos)
	if err != nil {
		return nil, fmt.Errorf("crossval: fold %d test slice: %w", fold.Number, err)
	}
	if err := checkAlignment(fold, predicted, expectedTimes); err != nil {
		return nil, err
	}

	scoreStart := time.Now()
	result := &FoldScore{
		FoldNumber: fold.Number,
		Scores:     make(map[string]float64, len(scorers)),
		FitTime:    fitTime,
	}
	predValues := predicted.Values()
	for _, scorer := range scorers {
		value, err := scorer.Evaluate(actual, predValues)
		if err != nil {
			return nil, fmt.Errorf("crossval: fold %d scoring %s: %w", fold.Number, scorer.Name(), err)
		}
		result.Scores[scorer.Name()] = value
	}
	result.ScoreTime = time.Since(scoreStart)
	return result, nil
}

// checkAlignment verifies that the predicted index exactly equals the fold's
// expected test index, in order. Forecasters that internally change their
// horizon fail here rather than being silently realigned.
func checkAlignment(fold Fold, predicted *timeseries.Series, expected []time.Time) error {
	if predicted.Len() != len(expected) {
		return NewPredictionAlignmentErrorf(
			"crossval: fold %d: predicted %d points, expected %d",
			fold.Number, predicted.Len(), len(expected))
	}
	for i, want := range expected {
		if got := predicted.TimeAt(i); !got.Equal(want) {
			return NewPredictionAlignmentErrorf(
				"crossval: fold %d: predicted index mismatch at position %d: got %s, want %s",
				fold.Number, i, got.Format(time.RFC3339), want.Format(time.RFC3339))
		}
	}
	return nil
}

package metrics

import "math"

// MAE returns the mean absolute error scorer.
func MAE() Scorer {
	return NewScorer("mae", SmallerBetter, func(actual, predicted []float64) (float64, error) {
		var sum float64
		for i := range actual {
			sum += math.Abs(actual[i] - predicted[i])
		}
		return sum / float64(len(actual)), nil
	})
}

// RMSE returns the root mean squared error scorer.
func RMSE() Scorer {
	return NewScorer("rmse", SmallerBetter, func(actual, predicted []float64) (float64, error) {
		var sum float64
		for i := range actual {
			d := actual[i] - predicted[i]
			sum += d * d
		}
		return math.Sqrt(sum / float64(len(actual))), nil
	})
}

// MAPE returns the mean absolute percentage error scorer. Zero actuals
// produce a non-finite score rather than an error, so aggregation can warn
// instead of aborting.
func MAPE() Scorer {
	return NewScorer("mape", SmallerBetter, func(actual, predicted []float64) (float64, error) {
		var sum float64
		for i := range actual {
			sum += math.Abs((actual[i] - predicted[i]) / actual[i])
		}
		return sum / float64(len(actual)), nil
	})
}

// SMAPE returns the symmetric mean absolute percentage error scorer.
func SMAPE() Scorer {
	return NewScorer("smape", SmallerBetter, func(actual, predicted []float64) (float64, error) {
		var sum float64
		for i := range actual {
			denom := (math.Abs(actual[i]) + math.Abs(predicted[i])) / 2
			if denom == 0 {
				continue
			}
			sum += math.Abs(actual[i]-predicted[i]) / denom
		}
		return sum / float64(len(actual)), nil
	})
}

// R2 returns the coefficient-of-determination scorer.
func R2() Scorer {
	return NewScorer("r2", LargerBetter, func(actual, predicted []float64) (float64, error) {
		var mean float64
		for _, v := range actual {
			mean += v
		}
		mean /= float64(len(actual))

		var ssRes, ssTot float64
		for i := range actual {
			d := actual[i] - predicted[i]
			ssRes += d * d
			t := actual[i] - mean
			ssTot += t * t
		}
		if ssTot == 0 {
			return math.Inf(-1), nil
		}
		return 1 - ssRes/ssTot, nil
	})
}

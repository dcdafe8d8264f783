package crossval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expandingPolicy(initial, step int, horizon ...int) WindowPolicy {
	return WindowPolicy{Kind: Expanding, InitialWindow: initial, StepLength: step, Horizon: horizon}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name   string
		policy WindowPolicy
	}{
		{"unknown kind", WindowPolicy{Kind: "rolling", InitialWindow: 5, StepLength: 1, Horizon: []int{1}}},
		{"zero initial window", expandingPolicy(0, 1, 1)},
		{"zero step", expandingPolicy(5, 0, 1)},
		{"empty horizon", expandingPolicy(5, 1)},
		{"non-positive offset", expandingPolicy(5, 1, 0, 1)},
		{"non-increasing offsets", expandingPolicy(5, 1, 2, 2)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.policy.Validate()
			require.Error(t, err)
			var cfgErr *ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}

	assert.NoError(t, expandingPolicy(5, 1, 1, 2, 12).Validate())
}

func TestExpandingSingleFold(t *testing.T) {
	// Length 14, initial window 10, step 1, horizon {1,2,3}.
	folds, err := GenerateFolds(14, expandingPolicy(10, 1, 1, 2, 3))
	require.NoError(t, err)
	require.Len(t, folds, 1)

	fold := folds[0]
	assert.Equal(t, 0, fold.Number)
	require.Len(t, fold.TrainPos, 10)
	assert.Equal(t, 0, fold.TrainPos[0])
	assert.Equal(t, 9, fold.TrainPos[9])
	assert.Equal(t, []int{10, 11, 12}, fold.TestPos)
}

func TestSlidingWindowShifts(t *testing.T) {
	policy := WindowPolicy{Kind: Sliding, InitialWindow: 10, StepLength: 1, Horizon: []int{1, 2, 3}}
	folds, err := GenerateFolds(15, policy)
	require.NoError(t, err)
	require.Len(t, folds, 2)

	assert.Len(t, folds[0].TrainPos, 10)
	assert.Len(t, folds[1].TrainPos, 10)
	assert.Equal(t, 0, folds[0].TrainPos[0])
	assert.Equal(t, 1, folds[1].TrainPos[0])
	assert.Equal(t, []int{11, 12, 13}, folds[1].TestPos)
}

func TestExpandingWindowGrows(t *testing.T) {
	folds, err := GenerateFolds(30, expandingPolicy(10, 2, 1, 2))
	require.NoError(t, err)
	require.Greater(t, len(folds), 1)

	for i := 1; i < len(folds); i++ {
		prev, cur := folds[i-1], folds[i]
		assert.Equal(t, 0, cur.TrainPos[0], "expanding train always starts at the origin")
		assert.Equal(t, len(prev.TrainPos)+2, len(cur.TrainPos))
		// Superset: the previous train window is a prefix of the current one.
		assert.Equal(t, prev.TrainPos, cur.TrainPos[:len(prev.TrainPos)])
	}
}

func TestLeakageAndHorizonInvariants(t *testing.T) {
	policies := []WindowPolicy{
		expandingPolicy(10, 1, 1, 2, 3),
		expandingPolicy(8, 3, 2, 4),
		{Kind: Sliding, InitialWindow: 12, StepLength: 2, Horizon: []int{1, 5}},
	}
	for _, policy := range policies {
		folds, err := GenerateFolds(40, policy)
		require.NoError(t, err)
		require.NotEmpty(t, folds)
		for _, fold := range folds {
			maxTrain := fold.TrainPos[len(fold.TrainPos)-1]
			assert.Less(t, maxTrain, fold.TestPos[0], "no leakage")
			assert.Len(t, fold.TestPos, len(policy.Horizon))
			last := fold.TestPos[len(fold.TestPos)-1]
			assert.Less(t, last, 40, "test window stays inside the series")
		}
	}
}

func TestGenerateFoldsDeterministic(t *testing.T) {
	policy := expandingPolicy(10, 2, 1, 2, 3)
	first, err := GenerateFolds(40, policy)
	require.NoError(t, err)
	second, err := GenerateFolds(40, policy)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWindowTooLarge(t *testing.T) {
	var cfgErr *ConfigurationError

	// Initial window does not fit at all.
	_, err := GenerateFolds(10, expandingPolicy(10, 1, 1))
	require.Error(t, err)
	assert.ErrorAs(t, err, &cfgErr)

	// Window fits but leaves no room for a complete test window.
	_, err = GenerateFolds(13, expandingPolicy(10, 1, 1, 2, 3))
	require.Error(t, err)
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSparseHorizon(t *testing.T) {
	folds, err := GenerateFolds(20, expandingPolicy(10, 3, 1, 3, 6))
	require.NoError(t, err)
	require.Len(t, folds, 1)
	assert.Equal(t, []int{10, 12, 15}, folds[0].TestPos)
}

package crossval

// WindowKind selects how the training window advances across folds.
type WindowKind string

const (
	// Expanding accumulates all past observations as folds advance.
	Expanding WindowKind = "expanding"
	// Sliding keeps a fixed-size training window that shifts forward,
	// dropping the oldest observations.
	Sliding WindowKind = "sliding"
)

// WindowPolicy parameterizes rolling-origin fold generation.
type WindowPolicy struct {
	Kind          WindowKind
	InitialWindow int
	StepLength    int
	// Horizon is the ordered set of positive offsets past the end of the
	// training window at which predictions are required, e.g. {1, 2, 3}.
	Horizon []int
}

// Validate checks the policy independent of any series.
func (p WindowPolicy) Validate() error {
	if p.Kind != Expanding && p.Kind != Sliding {
		return NewConfigurationErrorf("crossval: unknown window kind %q", p.Kind)
	}
	if p.InitialWindow < 1 {
		return NewConfigurationErrorf("crossval: initial window must be >= 1, got %d", p.InitialWindow)
	}
	if p.StepLength < 1 {
		return NewConfigurationErrorf("crossval: step length must be >= 1, got %d", p.StepLength)
	}
	if len(p.Horizon) == 0 {
		return NewConfigurationErrorf("crossval: forecast horizon must not be empty")
	}
	prev := 0
	for _, h := range p.Horizon {
		if h < 1 {
			return NewConfigurationErrorf("crossval: horizon offsets must be positive, got %d", h)
		}
		if h <= prev {
			return NewConfigurationErrorf("crossval: horizon offsets must be strictly increasing, got %v", p.Horizon)
		}
		prev = h
	}
	return nil
}

// MaxHorizon returns the largest horizon offset.
func (p WindowPolicy) MaxHorizon() int {
	max := 0
	for _, h := range p.Horizon {
		if h > max {
			max = h
		}
	}
	return max
}

// Fold is one leakage-safe train/test split. Positions are indices into
// the series the fold was generated for; the train block is contiguous and
// the test positions are the horizon offsets past its end.
type Fold struct {
	Number   int
	TrainPos []int
	TestPos  []int
	// Horizon mirrors the policy's offsets relative to this fold's train
	// window end.
	Horizon []int
}

// GenerateFolds derives the ordered fold sequence for a series of the given
// length under a window policy. Generation is deterministic: identical
// inputs always yield identical fold sequences, so each search candidate can
// re-derive the same splits.
//
// The final max-horizon observations are reserved so that no fold's test
// window can run past the series end; the fold count is
// floor((length - maxHorizon - initialWindow) / stepLength).
func GenerateFolds(length int, policy WindowPolicy) ([]Fold, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if policy.InitialWindow >= length {
		return nil, NewConfigurationErrorf(
			"crossval: initial window %d must be smaller than series length %d",
			policy.InitialWindow, length)
	}

	maxH := policy.MaxHorizon()
	usable := length - maxH
	nFolds := (usable - policy.InitialWindow) / policy.StepLength
	if nFolds < 1 {
		return nil, NewConfigurationErrorf(
			"crossval: window too large for the data: length %d, initial window %d, step %d, max horizon %d",
			length, policy.InitialWindow, policy.StepLength, maxH)
	}

	folds := make([]Fold, 0, nFolds)
	for k := 0; k < nFolds; k++ {
		trainEnd := policy.InitialWindow + k*policy.StepLength
		trainStart := 0
		if policy.Kind == Sliding {
			trainStart = trainEnd - policy.InitialWindow
		}

		trainPos := make([]int, 0, trainEnd-trainStart)
		for i := trainStart; i < trainEnd; i++ {
			trainPos = append(trainPos, i)
		}
		testPos := make([]int, 0, len(policy.Horizon))
		for _, h := range policy.Horizon {
			testPos = append(testPos, trainEnd+h-1)
		}

		fold := Fold{
			Number:   k,
			TrainPos: trainPos,
			TestPos:  testPos,
			Horizon:  append([]int(nil), policy.Horizon...),
		}
		if err := fold.checkDisjoint(); err != nil {
			return nil, err
		}
		folds = append(folds, fold)
	}
	return folds, nil
}

// checkDisjoint enforces the leakage invariant
// max(train) < min(test).
func (f Fold) checkDisjoint() error {
	if len(f.TrainPos) == 0 || len(f.TestPos) == 0 {
		return NewInternalConsistencyErrorf("crossval: fold %d has an empty window", f.Number)
	}
	maxTrain := f.TrainPos[len(f.TrainPos)-1]
	minTest := f.TestPos[0]
	if maxTrain >= minTest {
		return NewInternalConsistencyErrorf(
			"crossval: fold %d train/test overlap: max train position %d >= min test position %d",
			f.Number, maxTrain, minTest)
	}
	return nil
}

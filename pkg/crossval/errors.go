// Package crossval implements leakage-free rolling-origin cross-validation
// for sequential forecasting models: fold generation, the fit-and-score
// executor, and the parallel cross-validation orchestrator.
package crossval

import "fmt"

// ConfigurationError reports an invalid window policy, metric set, or
// candidate space. It is raised immediately and never retried.
type ConfigurationError struct {
	Message string
}

// Error returns the error message string.
func (e *ConfigurationError) Error() string {
	return e.Message
}

// NewConfigurationErrorf creates a ConfigurationError with a formatted
// message.
func NewConfigurationErrorf(format string, args ...any) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// PredictionAlignmentError reports a forecaster whose predicted index does
// not match the expected test index. The enclosing evaluation aborts; the
// core never silently realigns.
type PredictionAlignmentError struct {
	Message string
}

// Error returns the error message string.
func (e *PredictionAlignmentError) Error() string {
	return e.Message
}

// NewPredictionAlignmentErrorf creates a PredictionAlignmentError with a
// formatted message.
func NewPredictionAlignmentErrorf(format string, args ...any) error {
	return &PredictionAlignmentError{Message: fmt.Sprintf(format, args...)}
}

// InternalConsistencyError reports an invariant violation inside the core,
// such as overlapping train and test windows. It signals a defect and is
// never handled silently.
type InternalConsistencyError struct {
	Message string
}

// Error returns the error message string.
func (e *InternalConsistencyError) Error() string {
	return e.Message
}

// NewInternalConsistencyErrorf creates an InternalConsistencyError with a
// formatted message.
func NewInternalConsistencyErrorf(format string, args ...any) error {
	return &InternalConsistencyError{Message: fmt.Sprintf(format, args...)}
}

package models

import "fmt"

// ConfigurationError reports an invalid family selector, a missing input
// table or a hyperparameter out of its domain. It fails the whole job and is
// never retried.
type ConfigurationError struct {
	Msg string
}

func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

// EmptyPopulationError reports that no valid customers or transactions
// remained after filtering, so a derivation has nothing to work on. Callers
// present it as "no data for this period" rather than a crash.
type EmptyPopulationError struct {
	What string
}

func NewEmptyPopulationError(what string) *EmptyPopulationError {
	return &EmptyPopulationError{What: what}
}

func (e *EmptyPopulationError) Error() string {
	return "empty population: " + e.What
}

// DegenerateNumericError reports a computation that would otherwise divide
// by zero or produce NaN, such as a churn rate of zero when every customer
// is a repeat buyer.
type DegenerateNumericError struct {
	Msg string
}

func NewDegenerateNumericError(format string, args ...interface{}) *DegenerateNumericError {
	return &DegenerateNumericError{Msg: fmt.Sprintf(format, args...)}
}

func (e *DegenerateNumericError) Error() string {
	return "degenerate numeric case: " + e.Msg
}

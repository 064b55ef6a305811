package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfiguration is the root of every error caused by the experiment document
// rather than by the environment.
var ErrConfiguration = errors.New("configuration error")

// FieldError reports a missing or invalid field of a named component.
type FieldError struct {
	Component string
	Field     string
	Reason    string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %q %s", e.Component, e.Field, e.Reason)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrConfiguration
}

// MissingField returns the error for a required field that was not supplied.
func MissingField(component, field string) error {
	return &FieldError{Component: component, Field: field, Reason: "is required"}
}

// InvalidField returns the error for a field whose value is out of range or of the wrong kind.
func InvalidField(component, field, format string, args ...any) error {
	return &FieldError{Component: component, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ArgsError wraps a failure to decode init_args for a component.
type ArgsError struct {
	Component string
	Err       error
}

func (e *ArgsError) Error() string {
	return fmt.Sprintf("%s: invalid init_args: %v", e.Component, e.Err)
}

func (e *ArgsError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}

// ErrInvalidSplitRatio is matched by every train_valid_split outside [0, 1], NaN included.
var ErrInvalidSplitRatio = errors.New("invalid train/validation split ratio")

// InvalidSplitRatioError reports the rejected ratio. It also unwraps to the
// *FieldError naming dataset.train_valid_split.
type InvalidSplitRatioError struct {
	Ratio float64
}

func (e *InvalidSplitRatioError) Error() string {
	return fmt.Sprintf("dataset: field %q must be between 0 and 1, got %g", "train_valid_split", e.Ratio)
}

func (e *InvalidSplitRatioError) Unwrap() []error {
	return []error{
		ErrInvalidSplitRatio,
		InvalidField("dataset", "train_valid_split", "must be between 0 and 1, got %g", e.Ratio),
	}
}

// ValidSplitRatio returns nil for a ratio in [0, 1] and *InvalidSplitRatioError otherwise.
func ValidSplitRatio(ratio float64) error {
	if math.IsNaN(ratio) || ratio < 0 || ratio > 1 {
		return &InvalidSplitRatioError{Ratio: ratio}
	}
	return nil
}

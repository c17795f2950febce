// Package caterror defines the error kinds surfaced by the categorization engine.
package caterror

import (
	"errors"
	"fmt"
)

var (
	// ErrModelNotTrained is matched by every ModelNotTrainedError.
	ErrModelNotTrained = errors.New("model not trained")

	// ErrIncompatibleArtifact marks a stored model blob whose header is unknown.
	ErrIncompatibleArtifact = errors.New("incompatible model artifact")

	// ErrArtifactNotFound is returned by artifact stores that hold no model yet.
	ErrArtifactNotFound = errors.New("model artifact not found")
)

// ModelNotTrainedError reports that no fitted model is available, neither in
// memory nor in durable storage.
type ModelNotTrainedError struct {
	Reason string
	Err    error
}

func (e *ModelNotTrainedError) Error() string {
	msg := "model not trained"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelNotTrainedError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrModelNotTrained) true for any ModelNotTrainedError.
func (e *ModelNotTrainedError) Is(target error) bool {
	return target == ErrModelNotTrained
}

// InvalidInputError reports a record that cannot be classified, typically
// because it yields an empty feature string.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// TrainingError reports insufficient or malformed training data, or a fit failure.
type TrainingError struct {
	Reason string
	Err    error
}

func (e *TrainingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("training failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("training failed: %s", e.Reason)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

// StorageError reports a durable-storage read or write failure.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for '%s': %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsModelNotTrained reports whether err signals a missing model.
func IsModelNotTrained(err error) bool {
	return errors.Is(err, ErrModelNotTrained)
}

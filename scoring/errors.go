package scoring

import (
	"errors"
	"fmt"

	"go-adverse/types"
)

var (
	// ErrInvalidInput marks a malformed confidence or entity extraction.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidWeightConfig marks a weight table that cannot score the given data.
	ErrInvalidWeightConfig = errors.New("invalid weight config")
)

// InputError describes which part of the scoring input was rejected.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// WeightConfigError names the entity type (or component) whose weight is missing or unusable.
type WeightConfigError struct {
	Key    string
	Reason string
}

func (e *WeightConfigError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalidWeightConfig, e.Key, e.Reason)
}

func (e *WeightConfigError) Unwrap() error { return ErrInvalidWeightConfig }

func missingWeight(t types.EntityType) error {
	reason := "no weight configured"
	if !t.Known() {
		reason = "unknown entity type, no weight configured"
	}
	return &WeightConfigError{Key: string(t), Reason: reason}
}

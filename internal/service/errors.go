package service

import (
	"errors"

	"github.com/snapdish/snapdish-api/internal/extract"
	"github.com/snapdish/snapdish-api/internal/fingerprint"
)

var (
	// ErrEmptySubmission means the request carried no images; nothing ran.
	ErrEmptySubmission = fingerprint.ErrNoImages

	// ErrExtractionRefused means the source text was not a recognizable
	// recipe. Nothing is persisted.
	ErrExtractionRefused = extract.ErrRefused

	// ErrRecipeNotFound covers identifiers that do not exist or belong to a
	// soft-deleted recipe.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrCapability marks failures of the upstream model capabilities
	// (recognition, generation, embedding) so handlers can answer 502
	// instead of 500.
	ErrCapability = errors.New("capability failure")
)

// capabilityError tags an upstream failure while keeping the original error
// chain intact for errors.Is checks on the cause.
type capabilityError struct {
	err error
}

func (e *capabilityError) Error() string { return e.err.Error() }

func (e *capabilityError) Unwrap() error { return e.err }

func (e *capabilityError) Is(target error) bool { return target == ErrCapability }

func markCapability(err error) error {
	if err == nil {
		return nil
	}
	return &capabilityError{err: err}
}

package lib

import (
	"errors"

	"github.com/slok/wbs/internal/model"
)

var (
	// ErrNotFound is returned when a project or task doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a project code is already in use.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid input.
	ErrNotValid = errors.New("not valid")
	// ErrConflict is returned when a change couldn't be applied because of
	// concurrent changes, even after retrying.
	ErrConflict = errors.New("conflict")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrAlreadyExists):
		return joinErrors(err, ErrAlreadyExists)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	case errors.Is(err, model.ErrConflict):
		return joinErrors(err, ErrConflict)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }

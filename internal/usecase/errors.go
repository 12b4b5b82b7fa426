package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// ErrEditLocked is returned when another user holds the edit lease.
var ErrEditLocked = fmt.Errorf("%w: someone else is editing this game", ErrConflict)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

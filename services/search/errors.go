package search

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidID = errors.New("invalid id")
	ErrNotFound  = errors.New("event not found")
)

type InvalidIDError struct {
	ID     string
	Reason string
}

type NotFoundError struct {
	ID string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid id %q: %s", e.ID, e.Reason)
}

func (e *InvalidIDError) Is(target error) bool {
	return target == ErrInvalidID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("event not found: %s", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

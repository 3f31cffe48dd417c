package store

import (
	"errors"
	"fmt"
)

// NotFoundError reports a missing row of the given kind.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func errNotFound(kind, id string) error {
	return NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

var errEmptyName = errors.New("label name is empty")

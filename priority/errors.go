package priority

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("middleware not found in priority list")

// ErrInvalidEdit is returned for edits with an unknown op or a malformed shape.
var ErrInvalidEdit = errors.New("invalid priority edit")

// NotFoundError reports an identifier that an operation had to locate but
// which is absent from the current list.
type NotFoundError struct {
	Op string
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("middleware %q was not found in the priority list (%s): append or prepend it first", e.ID, e.Op)
}

// Unwrap lets errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

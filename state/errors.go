package state

import (
	"errors"
	"fmt"
)

var (
	ErrLinkNotFound  = errors.New("link not found")
	ErrEmptyName     = errors.New("link name must not be empty")
	ErrDuplicateName = errors.New("duplicate link name")
)

// BindError is returned when a socket for a local link endpoint could not be bound.
// Depending on the BindPolicy the link may still have been added with the endpoint unbound.
type BindError struct {
	Link     string
	Endpoint int
	Port     uint16
	Err      error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("link %s: failed to bind endpoint %d on port %d: %v", e.Link, e.Endpoint, e.Port, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

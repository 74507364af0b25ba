package client

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when the API answers 401. Callers must
// treat it as a session level condition, never retry it.
var ErrUnauthenticated = errors.New("unauthenticated")

// StatusError is any other non-2xx answer from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api returned status %d", e.Code)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Code, e.Body)
}

// IsUnauthenticated reports whether err, or anything it wraps, is ErrUnauthenticated.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

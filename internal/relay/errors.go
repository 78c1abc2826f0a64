package relay

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is matched by every error meaning "the thing asked for is
	// not there", whether decided locally or by a 404 from the relay.
	ErrNotFound = errors.New("not found")

	// ErrUnknownEndpoint is returned when an endpoint ID is not in the
	// directory. No request is made in that case.
	ErrUnknownEndpoint = errors.New("unknown endpoint")

	// ErrInvalidKey is returned for a key or field holding a "." or ".."
	// path segment, which would address a different relay resource.
	ErrInvalidKey = errors.New("invalid key")

	errEmptyKey       = errors.New("empty key")
	errEmptyDirectory = errors.New("endpoint directory is empty")
)

// StatusError reports a non-2xx response from the relay.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("relay %s %s: %s", e.Method, e.URL, status)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by the error.
func (e *StatusError) StatusCode() int { return e.Code }

// EndpointError is the local validation failure for an unknown endpoint ID.
// It reports 404 so callers can treat it like the relay's own not-found.
type EndpointError struct {
	ID string
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("endpoint %q: %v", e.ID, ErrUnknownEndpoint)
}

func (e *EndpointError) Is(target error) bool {
	return target == ErrUnknownEndpoint || target == ErrNotFound
}

func (e *EndpointError) StatusCode() int { return http.StatusNotFound }

// StatusCode extracts the HTTP-equivalent status from err, if it carries one.
func StatusCode(err error) (int, bool) {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}

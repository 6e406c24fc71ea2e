package tmdb

import (
	"errors"
	"fmt"
)

// Error taxonomy. Client methods wrap one of these so callers can use errors.Is.
var (
	ErrTransport         = errors.New("tmdb: transport error")
	ErrNotFound          = errors.New("tmdb: not found")
	ErrMalformedResponse = errors.New("tmdb: malformed response")
	ErrInvalidID         = errors.New("tmdb: movie id must be positive")
)

// APIError is a non-2xx response from TMDb.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tmdb API error %d", e.StatusCode)
	}
	return fmt.Sprintf("tmdb API error %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps the status onto the taxonomy: 404 is ErrNotFound, anything
// else is ErrTransport.
func (e *APIError) Unwrap() error {
	if e.StatusCode == 404 {
		return ErrNotFound
	}
	return ErrTransport
}

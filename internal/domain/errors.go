package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across layers.
var (
	ErrNotFound   = errors.New("not found")
	ErrExtraction = errors.New("could not parse recipe")
	ErrMissingURL = errors.New("missing url")
)

// FetchError reports that a recipe page could not be retrieved, either
// because the request failed or because the upstream answered with a
// non-success status.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: upstream status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

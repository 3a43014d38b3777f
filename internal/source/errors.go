package source

import (
	"errors"
	"fmt"
)

// ErrUnexpectedStatus marks responses outside the 2xx range.
var ErrUnexpectedStatus = errors.New("unexpected status")

// FetchError describes a page that could not be retrieved.
type FetchError struct {
	Author string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s for %s: status %d: %v", e.URL, e.Author, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s for %s: %v", e.URL, e.Author, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

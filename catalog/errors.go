package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL        = errors.New("invalid lookup url")
	ErrTransport         = errors.New("lookup request failed")
	ErrEmptyBody         = errors.New("empty lookup response")
	ErrMalformedResponse = errors.New("malformed lookup response")
)

// FetchError wraps a lookup failure. Kind is one of the Err* sentinels and Err the underlying cause, if any.
type FetchError struct {
	Kind error
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Is matches the failure kind, so errors.Is(err, ErrEmptyBody) works on a *FetchError.
func (e *FetchError) Is(target error) bool {
	return target == e.Kind
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func fetchErr(kind, cause error) *FetchError {
	return &FetchError{Kind: kind, Err: cause}
}

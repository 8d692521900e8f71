package detector

import (
	"errors"

	"github.com/waldirborbajr/appstorecheck/catalog"
)

// FailureKind classifies why a check did not produce an Outcome
type FailureKind string

const (
	InvalidURL        FailureKind = "invalid_url"
	Transport         FailureKind = "transport"
	EmptyBody         FailureKind = "empty_body"
	MalformedResponse FailureKind = "malformed_response"
	BundleMismatch    FailureKind = "bundle_mismatch"
	// Cancelled is only used by OnDetectFunc when the context ends during the delay.
	Cancelled FailureKind = "cancelled"
)

// Failure is the error returned by a check. None of them are retried.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func classify(err error) *Failure {
	kind := Transport
	switch {
	case errors.Is(err, catalog.ErrInvalidURL):
		kind = InvalidURL
	case errors.Is(err, catalog.ErrEmptyBody):
		kind = EmptyBody
	case errors.Is(err, catalog.ErrMalformedResponse):
		kind = MalformedResponse
	}
	return &Failure{Kind: kind, Message: err.Error(), Err: err}
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("provider unavailable")
	ErrParseFailure    = errors.New("unparseable model output")
	ErrSourceImageLoad = errors.New("source image load failed")
)

// FailureKind classifies why a provider call did not produce a usable result.
// Pipelines only branch on success/failure; the kind exists so the cause is
// not lost before it is logged at the client boundary.
type FailureKind string

const (
	FailureConfigMissing    FailureKind = "config_missing"
	FailureTransport        FailureKind = "transport"
	FailureStatus           FailureKind = "non_success_status"
	FailureMalformedPayload FailureKind = "malformed_payload"
	FailureParse            FailureKind = "parse"
)

// ProviderFailure carries the failure kind and underlying cause. It unwraps
// to ErrUnavailable (or ErrParseFailure for FailureParse) so callers can keep
// treating every provider failure as one sentinel.
type ProviderFailure struct {
	Kind FailureKind
	Err  error
}

func (f *ProviderFailure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("provider failure (%s): %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("provider failure (%s)", f.Kind)
}

func (f *ProviderFailure) Unwrap() error {
	if f.Kind == FailureParse {
		return ErrParseFailure
	}
	return ErrUnavailable
}

// NewFailure wraps a cause into a ProviderFailure.
func NewFailure(kind FailureKind, err error) *ProviderFailure {
	return &ProviderFailure{Kind: kind, Err: err}
}

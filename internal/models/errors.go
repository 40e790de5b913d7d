package models

import (
	"errors"
	"fmt"
)

// Provider error kinds. Match with errors.Is.
var (
	// ErrNoData means the provider answered but had nothing for the request.
	ErrNoData = errors.New("no data found")
	// ErrDataSource means the provider failed to answer.
	ErrDataSource = errors.New("data source error")
	// ErrProviderUnavailable means login or initialisation failed; the
	// provider instance cannot serve any request.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// ProviderError carries the provider and operation that produced an error.
type ProviderError struct {
	Provider  string
	Operation string
	Kind      error
	Err       error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Provider, e.Operation, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause.
func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewProviderError builds a ProviderError.
func NewProviderError(provider, operation string, kind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Operation: operation, Kind: kind, Err: err}
}

// ErrorKind reports which provider error kind err belongs to, or nil.
func ErrorKind(err error) error {
	for _, kind := range []error{ErrNoData, ErrProviderUnavailable, ErrDataSource} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

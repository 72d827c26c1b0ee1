// Package locerr models the location-resolution error taxonomy from §7
// as a tagged result type, replacing the thrown-exception style the
// original source used to shuttle an Ambiguous payload between promise
// stages. Ambiguous candidates travel as ordinary struct data, not as a
// side channel on an error interface.
package locerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error variants §7 defines.
type Kind string

const (
	KindInvalidInput       Kind = "InvalidInput"
	KindNotFound           Kind = "NotFound"
	KindAmbiguous          Kind = "Ambiguous"
	KindNetworkError       Kind = "NetworkError"
	KindServiceUnavailable Kind = "ServiceUnavailable"
)

// Candidate is one option offered by an Ambiguous resolution, carrying
// enough fields for a CLI or UI collaborator to present a choice.
type Candidate struct {
	Name        string
	Country     string
	CountryCode string
	Lat         float64
	Lon         float64
	TZ          string
}

// Error is the single error type the core returns for location
// resolution failures. Callers switch on Kind; Ambiguous carries
// Options, every other kind leaves it nil.
type Error struct {
	Kind    Kind
	Message string
	Options []Candidate
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is supports errors.Is comparisons against a bare *Error{Kind: k}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// InvalidInput builds an InvalidInput error.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Ambiguous builds an Ambiguous error carrying its candidate options.
// Per §9 "Ambiguity is data, not error", this is never resolved
// automatically by the core — it is always propagated to the caller.
func Ambiguous(query string, options []Candidate) *Error {
	return &Error{
		Kind:    KindAmbiguous,
		Message: fmt.Sprintf("query %q matches multiple locations", query),
		Options: options,
	}
}

// NetworkErr wraps a transport-level failure (timeout, DNS, connection
// refused) from the geocoder or IP client.
func NetworkErr(err error) *Error {
	return &Error{Kind: KindNetworkError, Message: "network request failed", Wrapped: err}
}

// ServiceUnavailable builds a ServiceUnavailable error for a non-2xx
// response from an external collaborator.
func ServiceUnavailable(format string, args ...any) *Error {
	return &Error{Kind: KindServiceUnavailable, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error, with
// ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

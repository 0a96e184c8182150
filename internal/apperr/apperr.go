// Package apperr classifies ledger-engine failures so callers can tell
// recoverable input problems apart from store conflicts and upstream outages.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// Validation: bad input shape. No store mutation occurred.
	Validation Kind = "validation"
	// Policy: input was well-formed but violates a platform rule
	// (insufficient balance, wrong PIN, below minimum). No mutation.
	Policy Kind = "policy"
	// NotFound: unknown wallet code, referral code or record id.
	NotFound Kind = "not_found"
	// External: an upstream service (explorer, identity provider) was
	// unreachable or gave an ambiguous answer. Safe to retry.
	External Kind = "external"
	// Consistency: a conditional write lost a uniqueness race or a store
	// transaction aborted. The whole operation must be retried.
	Consistency Kind = "consistency"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error, keeping it reachable
// through errors.Is / errors.As.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or an empty kind for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

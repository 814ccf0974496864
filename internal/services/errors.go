package services

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies the expected, user-facing outcomes of a match attempt
// and the preference/lookup operations around it
type ErrorKind string

const (
	KindMissingSelection ErrorKind = "missing_selection"
	KindBadToken         ErrorKind = "bad_token"
	KindSelfMatch        ErrorKind = "self_match"
	KindPeerNotFound     ErrorKind = "peer_not_found"
	KindStaleToken       ErrorKind = "stale_token"
	KindHourMismatch     ErrorKind = "hour_mismatch"
	KindAlreadyMatched   ErrorKind = "already_matched"
	KindInvalidInput     ErrorKind = "invalid_input"
	KindStoreTimeout     ErrorKind = "store_timeout"
	KindStoreFault       ErrorKind = "store_fault"
)

// MatchError is a typed, user-facing outcome. None of these are fatal: the
// worst case is the user stays on the current screen and retries.
type MatchError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *MatchError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *MatchError) Unwrap() error {
	return e.cause
}

func matchError(kind ErrorKind, format string, args ...any) *MatchError {
	return &MatchError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// storeError classifies a record-store failure as timeout or generic fault
func storeError(op string, err error) *MatchError {
	kind := KindStoreFault
	msg := "Something went wrong, please try again"
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindStoreTimeout
		msg = "The request timed out, please try again"
	}
	return &MatchError{Kind: kind, Message: msg, cause: fmt.Errorf("%s: %w", op, err)}
}

// KindOf extracts the error kind, defaulting to a store fault for anything
// that is not a typed outcome
func KindOf(err error) ErrorKind {
	var matchErr *MatchError
	if errors.As(err, &matchErr) {
		return matchErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindStoreTimeout
	}
	return KindStoreFault
}

// UserMessage returns the corrective message to render for an error
func UserMessage(err error) string {
	var matchErr *MatchError
	if errors.As(err, &matchErr) {
		return matchErr.Message
	}
	return "Something went wrong, please try again"
}

package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error kinds surfaced to the UI. Match with errors.Is.
var (
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidDateRange   = errors.New("check-out date must be after check-in date")
	ErrInvalidRoomCount   = errors.New("enter a valid number of rooms")
	ErrRoomLimitExceeded  = errors.New("too many rooms requested")
	ErrInvalidReviewInput = errors.New("please enter both rating and comment")
	ErrSubmissionFailed   = errors.New("submission failed, please try again")
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrNotReviewed        = errors.New("booking summary has not been reviewed")
	ErrInvalidAuthInput   = errors.New("invalid credentials input")
	ErrNotFound           = errors.New("not found")
	ErrMalformedDocument  = errors.New("malformed document")
	ErrDuplicate          = errors.New("duplicate document")
)

// AuthError carries the Session Provider's failure verbatim.
type AuthError struct {
	Code    int
	Message string
}

func (e *AuthError) Error() string {
	if e.Code == 0 {
		return "auth: " + e.Message
	}
	return fmt.Sprintf("auth: %s (%d)", e.Message, e.Code)
}

// StoreError wraps a Document Store failure.
type StoreError struct {
	Op         string // insert|query
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError keeps ErrDuplicate/ErrNotFound matchable through the wrapper.
func NewStoreError(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Collection: collection, Err: err}
}

// InvalidInput marks a user-facing reason with ErrInvalidAuthInput.
func InvalidInput(reason string) error {
	return errors.Mark(errors.New(reason), ErrInvalidAuthInput)
}

// Kind names the error kind for logs, metrics and API payloads.
func Kind(err error) string {
	var ae *AuthError
	var se *StoreError
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrAuthRequired):
		return "AuthRequired"
	case errors.Is(err, ErrInvalidDateRange):
		return "InvalidDateRange"
	case errors.Is(err, ErrInvalidRoomCount):
		return "InvalidRoomCount"
	case errors.Is(err, ErrRoomLimitExceeded):
		return "RoomLimitExceeded"
	case errors.Is(err, ErrInvalidReviewInput):
		return "InvalidReviewInput"
	case errors.Is(err, ErrSubmissionInFlight):
		return "SubmissionInFlight"
	case errors.Is(err, ErrSubmissionFailed):
		return "SubmissionFailed"
	case errors.Is(err, ErrNotReviewed):
		return "NotReviewed"
	case errors.Is(err, ErrInvalidAuthInput):
		return "InvalidAuthInput"
	case errors.As(err, &ae):
		return "AuthError"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrMalformedDocument):
		return "MalformedDocument"
	case errors.As(err, &se):
		return "StoreError"
	default:
		return "Internal"
	}
}

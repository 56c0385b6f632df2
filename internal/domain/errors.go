package domain

import "errors"

var (
	// ErrNotFound means the record id is unknown. Expected control flow,
	// never retried.
	ErrNotFound = errors.New("approval record not found")

	// ErrInvalidState means a transition was attempted on a non-Pending
	// record. Doubles as the double-submission guard.
	ErrInvalidState = errors.New("approval record is not pending")

	// ErrEmptyRejectionReason means Reject was called with a blank reason.
	// Raised before anything is loaded, mutated or published.
	ErrEmptyRejectionReason = errors.New("rejection reason must not be empty")

	// ErrMalformedPayload means an inbound message could not be parsed into
	// a product event. The message's offset stays uncommitted.
	ErrMalformedPayload = errors.New("malformed product payload")

	// ErrPublishFailed means the feedback publish step of a transition
	// failed. The paired store mutation is rolled back and the whole
	// operation may be retried.
	ErrPublishFailed = errors.New("feedback publish failed")
)

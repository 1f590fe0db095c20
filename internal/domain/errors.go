package domain

import "errors"

var (
	// Validation errors, resolved locally before any ledger interaction
	ErrInvalidArgument = errors.New("invalid argument")

	// Ledger errors
	ErrUnauthorized      = errors.New("unauthorized")
	ErrDuplicateBooking  = errors.New("booking already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("booking not found")

	// Sponsorship errors
	ErrInsufficientSponsorFunds = errors.New("insufficient sponsor funds")
	ErrGrantConsumed            = errors.New("sponsorship grant already consumed")

	// Generic wrapper for transport/execution failures
	ErrSubmissionFailed = errors.New("submission failed")
)

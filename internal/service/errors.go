package service

import "errors"

var (
	ErrCaseNotFound    = errors.New("case not found")
	ErrQuoteNotFound   = errors.New("quote not found")
	ErrCounterNotFound = errors.New("counter-proposal not found")

	// ErrInvalidTransition is wrapped with the current state so the caller can
	// tell why the operation was refused.
	ErrInvalidTransition = errors.New("operation is not allowed in the current state")
	// ErrConflict means a concurrent caller changed the case first; refresh and retry.
	ErrConflict = errors.New("case was modified concurrently")

	ErrInvalidTotal      = errors.New("total must be a positive amount")
	ErrInvalidDateRange  = errors.New("start date must not be after end date")
	ErrInvalidExpiry     = errors.New("expiration must be in the future")
	ErrEmptyCounterTerms = errors.New("counter-proposal must change at least one term")
)

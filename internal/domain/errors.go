package domain

import "errors"

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrBuildingNotFound   = errors.New("building not found")
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrObligationNotFound = errors.New("obligation not found")
	ErrEntryNotFound      = errors.New("ledger entry not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidPeriod      = errors.New("invalid billing period")
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name exceeds maximum length")
	ErrNotesTooLong       = errors.New("notes exceed maximum length")
)

// Validation constants
const (
	MaxNameLength  = 255
	MaxNotesLength = 500
)

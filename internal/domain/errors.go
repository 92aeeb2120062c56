package domain

import "errors"

var (
	// Party errors
	ErrPartyNotFound           = errors.New("party not found")
	ErrPartyAlreadyExists      = errors.New("party already exists")
	ErrInvalidPartyType        = errors.New("party type must be customer or vendor")
	ErrOpeningBalanceImmutable = errors.New("opening balance and its date cannot change after creation")

	// Document errors
	ErrDocumentNotFound    = errors.New("document not found")
	ErrUnknownDocumentKind = errors.New("unknown document kind")

	// Reconciliation errors
	ErrSessionNotFound           = errors.New("reconciliation session not found")
	ErrInvalidSessionState       = errors.New("operation not allowed in current reconciliation state")
	ErrInvalidSelection          = errors.New("selected entry index out of range")
	ErrOpeningEntryNotSelectable = errors.New("opening balance entry cannot be selected")
	ErrNotReconciled             = errors.New("reconciliation difference is not zero")
)

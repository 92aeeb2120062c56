package usecase

import "time"

const (
	// DefaultLedgerCacheTTL bounds how long a built ledger stays cached.
	DefaultLedgerCacheTTL = 10 * time.Minute

	// DefaultSessionTTL is how long an idle reconciliation session is kept.
	DefaultSessionTTL = 2 * time.Hour

	// DefaultPageSize and MaxPageSize bound party listings.
	DefaultPageSize = 20
	MaxPageSize     = 100
)

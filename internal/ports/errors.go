package ports

import "errors"

// Standard application-level errors.
// Adapters and the engine wrap underlying errors with these so callers can
// branch with errors.Is without inspecting messages.
var (
	// Input validation errors: raised before any bar is processed, never
	// retried, surfaced verbatim to the caller.
	ErrInvalidRules     = errors.New("invalid strategy rules")
	ErrInvalidCapital   = errors.New("initial capital must be positive")
	ErrInsufficientData = errors.New("not enough bars for the requested rules")
	ErrUnorderedBars    = errors.New("bars must be strictly ascending by date")

	// ErrInvariantViolation marks a defect-class internal inconsistency
	// (double-closed trade, negative capital). A run that hits it aborts
	// rather than producing a possibly corrupt result.
	ErrInvariantViolation = errors.New("simulation invariant violated")

	// General errors
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Market data provider errors
	ErrProviderUnavailable = errors.New("market data provider is unavailable")
	ErrRateLimited         = errors.New("provider rate limit exceeded")

	// Repository errors
	ErrDuplicateEntry = errors.New("record already exists")
	ErrQueryFailed    = errors.New("database query failed")
)

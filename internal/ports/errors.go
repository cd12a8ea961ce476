package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Analysis Errors
	ErrInsufficientData      = errors.New("not enough candles for analysis")
	ErrDegenerateCalculation = errors.New("degenerate calculation input")

	// Exchange Specific Errors
	ErrExchangeUnavailable  = errors.New("exchange API is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")
	ErrInvalidAPIKeys       = errors.New("invalid API keys or permissions")

	// Delivery Errors
	ErrDeliveryFailed = errors.New("signal delivery failed")
	ErrQueueFull      = errors.New("dispatch queue is full")

	// Storage Errors
	ErrCacheUnavailable = errors.New("candle cache unavailable")
	ErrDBConnection     = errors.New("database connection error")
	ErrQueryFailed      = errors.New("database query failed")
)

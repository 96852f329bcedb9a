package domain

import "errors"

var (
	ErrUnknownKind     = errors.New("unknown collection kind")
	ErrRecordNotFound  = errors.New("record not found")
	ErrInvalidItem     = errors.New("invalid item")
	ErrInvalidDocument = errors.New("invalid document")
	ErrSecretNotFound  = errors.New("secret not found")
)

// Insight failures are surfaced to the user as-is; their messages match what
// the gateway proxy has always reported.
var (
	ErrInsightRateLimited    = errors.New("Rate limit exceeded. Please try again in a moment.")
	ErrInsightQuotaExhausted = errors.New("AI credits exhausted. Please add credits to continue.")
	ErrInsightUnavailable    = errors.New("AI service unavailable")
	ErrInsightNotConfigured  = errors.New("AI insights are not configured: set insights.api_key or run `gd insights key set`")
)

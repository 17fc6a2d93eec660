package model

import (
	"errors"
	"fmt"
	"time"
)

// NotFoundError indicates the organization or resource does not exist upstream.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// AuthError indicates the upstream rejected our credentials (401, or 403
// without rate-limit headers). It is not retryable.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("github authentication failed (status %d): check ORGPULSE_GITHUB_TOKEN scopes and validity", e.StatusCode)
}

// RateLimitError indicates the upstream rate limit is exhausted. It carries
// enough detail for the caller to decide whether to wait or add credentials.
type RateLimitError struct {
	Remaining int
	ResetAt   time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github rate limit exhausted (%d remaining, resets at %s)", e.Remaining, e.ResetAt.UTC().Format(time.RFC3339))
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsAuth reports whether err wraps an AuthError.
func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsRateLimit reports whether err wraps a RateLimitError.
func IsRateLimit(err error) bool {
	var target *RateLimitError
	return errors.As(err, &target)
}

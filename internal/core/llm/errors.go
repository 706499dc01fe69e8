package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyResponse is returned when a provider answers 200 without any text
var ErrEmptyResponse = errors.New("empty response from provider")

// StatusError is a non-2xx answer from a provider API
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status: %d): %s", e.Provider, e.StatusCode, e.Body)
}

// ProviderFailure records why one provider attempt failed
type ProviderFailure struct {
	Provider string
	Err      error
}

// ProviderError is returned by Responder.Generate when every configured
// provider failed. Failures are in attempt order.
type ProviderError struct {
	Failures []ProviderFailure
}

func (e *ProviderError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Provider, f.Err))
	}
	return "all AI providers failed: " + strings.Join(parts, "; ")
}

func (e *ProviderError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// IsQuota reports whether any attempt was rejected for rate limit or quota
func (e *ProviderError) IsQuota() bool {
	for _, f := range e.Failures {
		var se *StatusError
		if errors.As(f.Err, &se) && se.StatusCode == http.StatusTooManyRequests {
			return true
		}
	}
	return false
}

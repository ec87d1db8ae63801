package provider

import (
	"fmt"
	"net/http"

	"github.com/felixgeelhaar/planforge/internal/errors"
)

// classifyStatus maps a non-2xx HTTP status to a coded error with retry
// semantics: 429 and 5xx are transient, 4xx are fatal.
func classifyStatus(provider string, status int, retryAfter string, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return errors.NewTransient(errors.NewProviderRateLimitError(provider, retryAfter))

	case status >= 500:
		return errors.NewTransient(errors.Wrap(errors.ErrCodeProviderAPI,
			fmt.Sprintf("%s API returned status %d", provider, status),
			fmt.Errorf("%s", truncateBody(body))))

	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.NewFatal(errors.NewProviderAuthError(provider))

	default:
		return errors.NewFatal(errors.Wrap(errors.ErrCodeProviderAPI,
			fmt.Sprintf("%s API returned status %d", provider, status),
			fmt.Errorf("%s", truncateBody(body))))
	}
}

// truncateBody bounds error payloads so log lines stay readable.
func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

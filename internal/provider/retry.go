package provider

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/felixgeelhaar/planforge/internal/errors"
)

// retryGenerate runs one completion call with exponential backoff on
// transient failures. Fatal errors abort immediately.
func retryGenerate(ctx context.Context, maxAttempts uint,
	call func() (*GenerateResponse, error)) (*GenerateResponse, error) {

	operation := func() (*GenerateResponse, error) {
		resp, err := call()
		if err != nil {
			if errors.IsTransient(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(maxAttempts))
}

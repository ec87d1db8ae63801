package exitcode

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/planforge/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, Success},
		{"generic error", fmt.Errorf("something broke"), GeneralError},
		{"auth error", errors.NewProviderAuthError("openai"), AuthError},
		{"network error", fmt.Errorf("dial tcp: connection refused"), NetworkError},
		{"state not found", errors.NewStateNotFoundError("abc123"), NotFound},
		{"usage error", fmt.Errorf("unknown flag: --bogus"), UsageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineExitCode(tt.err))
		})
	}
}

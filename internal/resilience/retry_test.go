package resilience_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fvicente/mazmorra/internal/errors"
	"github.com/fvicente/mazmorra/internal/resilience"
)

func fastPolicy(attempts int) *resilience.Policy {
	return resilience.NewPolicy(
		resilience.WithMaxAttempts(attempts),
		resilience.WithInitialInterval(time.Millisecond),
	)
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := fastPolicy(4).Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	err := fastPolicy(4).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return apperrors.Unavailablef("upstream flaked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttemptBudget(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), func() error {
		calls++
		return apperrors.Unavailablef("still down")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorFailsFast(t *testing.T) {
	calls := 0
	contractErr := apperrors.Contract("malformed payload")
	err := fastPolicy(4).Do(context.Background(), func() error {
		calls++
		return contractErr
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, contractErr)
	assert.Equal(t, 1, calls)
}

func TestDo_CanceledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fastPolicy(4).Do(ctx, func() error {
		calls++
		return apperrors.Unavailablef("down")
	})
	require.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unavailable code", apperrors.Unavailablef("down"), true},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"rate limit text", fmt.Errorf("openai: status 429 too many requests"), true},
		{"server error text", fmt.Errorf("status 503 service unavailable"), true},
		{"connection reset", fmt.Errorf("read tcp: connection reset by peer"), true},
		{"contract violation", apperrors.Contract("bad json"), false},
		{"plain error", fmt.Errorf("no such target"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resilience.IsTransient(tc.err))
		})
	}
}

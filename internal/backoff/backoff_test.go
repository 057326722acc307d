package backoff

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConstantBackoff_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	bo := NewConstantBackoff(context.Background(), &ConstantConfig{Interval: time.Millisecond, MaxRetries: 5})

	calls := 0
	err := bo.Retry(func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestConstantBackoff_MaxRetries(t *testing.T) {
	t.Parallel()

	bo := NewConstantBackoff(context.Background(), &ConstantConfig{Interval: time.Millisecond, MaxRetries: 2})

	calls := 0
	notified := 0
	err := bo.RetryNotify(func() error {
		calls++
		return errors.New("still failing")
	}, func(error, time.Duration) { notified++ })
	require.Error(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, 2, notified)
}

func TestRetry_PermanentStops(t *testing.T) {
	t.Parallel()

	bo := NewExponentialBackoff(context.Background(), &ExponentialConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxRetries:      10,
	})

	calls := 0
	err := bo.Retry(func() error {
		calls++
		return fmt.Errorf("bad schema: %w", ErrPermanent)
	})
	require.ErrorIs(t, err, ErrPermanent)
	require.Equal(t, 1, calls)
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *Config
		want any
	}{
		{name: "nil", cfg: nil, want: &StopBackoff{}},
		{name: "empty", cfg: &Config{}, want: &StopBackoff{}},
		{name: "constant", cfg: &Config{Constant: &ConstantConfig{Interval: time.Millisecond}}, want: &ConstantBackoff{}},
		{name: "exponential", cfg: &Config{Exponential: &ExponentialConfig{}}, want: &ExponentialBackoff{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			bo := NewProvider(tc.cfg)(context.Background())
			require.IsType(t, tc.want, bo)
		})
	}
}

func TestStopBackoff_NoRetry(t *testing.T) {
	t.Parallel()

	calls := 0
	err := NewStopBackoff().Retry(func() error {
		calls++
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

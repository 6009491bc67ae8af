package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = &pgconn.PgError{Code: "08006", Message: "connection failure"}

// flakyOp fails with err for the first failures calls.
type flakyOp struct {
	calls    int
	failures int
	err      error
}

func (f *flakyOp) run(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func fastExecutor(maxAttempts int) *Executor {
	return NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(maxAttempts, WithInitialDelay(time.Millisecond), WithJitter(0)),
	)
}

func TestExecutor_SuccessFirstAttempt(t *testing.T) {
	op := &flakyOp{}
	require.NoError(t, fastExecutor(3).Execute(context.Background(), op.run))
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_SucceedsAfterRetries(t *testing.T) {
	op := &flakyOp{failures: 2, err: errTransient}
	var seen []int

	exec := fastExecutor(3).WithOnRetry(func(attempt int, err error, _ time.Duration) {
		seen = append(seen, attempt)
		assert.ErrorIs(t, err, errTransient)
	})

	require.NoError(t, exec.Execute(context.Background(), op.run))
	assert.Equal(t, 3, op.calls)
	assert.Equal(t, []int{0, 1}, seen)
}

func TestExecutor_ExhaustsRetries(t *testing.T) {
	op := &flakyOp{failures: 10, err: errTransient}
	err := fastExecutor(2).Execute(context.Background(), op.run)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, op.calls)
}

func TestExecutor_ZeroAttemptsMeansNoRetry(t *testing.T) {
	op := &flakyOp{failures: 10, err: errTransient}
	_ = fastExecutor(0).Execute(context.Background(), op.run)
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_FatalErrorStopsImmediately(t *testing.T) {
	fatal := &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}
	op := &flakyOp{failures: 10, err: fatal}
	err := fastExecutor(5).Execute(context.Background(), op.run)
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_ContextCancelledDuringBackoff(t *testing.T) {
	exec := NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(5, WithInitialDelay(time.Hour), WithJitter(0)),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	op := &flakyOp{failures: 10, err: errTransient}
	err := exec.Execute(ctx, op.run)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_WithOnRetryDoesNotMutateOriginal(t *testing.T) {
	base := fastExecutor(1)
	withCb := base.WithOnRetry(func(int, error, time.Duration) {})
	assert.Nil(t, base.onRetry)
	assert.NotNil(t, withCb.onRetry)
}

func TestNewExecutor_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, NewExponentialBackoff(1)) })
	assert.Panics(t, func() { NewExecutor(NewPostgreSQLErrorClassifier(), nil) })
}

// Package retry re-runs connection attempts that fail for transient reasons.
//
// Only connection establishment goes through an Executor. Row loading is never
// retried: a failed SELECT is reported to the caller as-is.
//
//	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry

package agent

import (
	"context"
	"time"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// ExecuteWithTimeout runs one invocation under a deadline. A call that
// exceeds the deadline resolves as a failed Result with the timeout error
// kind; it participates in the same fix/retry path as any other failure.
// No separate cancellation channel exists.
func ExecuteWithTimeout(ctx context.Context, runner Runner, req Request, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		return runner.Execute(ctx, req)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		res, err := runner.Execute(ctx, req)
		done <- outcome{res, err}
	}()

	select {
	case out := <-done:
		if out.err == nil && ctx.Err() == context.DeadlineExceeded && !out.res.Success {
			out.res.ErrorKind = models.ErrorKindTimeout
		}
		return out.res, out.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return Result{
				Success:   false,
				ErrorKind: models.ErrorKindTimeout,
				Error:     "agent execution timed out after " + timeout.String(),
			}, nil
		}
		return Result{}, ctx.Err()
	}
}

package buildclient

import (
	"context"
	"fmt"
	"time"

	"github.com/lattice-search/vecbuild/pkg/types"
)

// AwaitOptions configures Await's polling loop.
type AwaitOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	InitialDelay time.Duration
}

// Await polls Status for jobID until a terminal state, the wall clock
// exceeds Timeout, or ctx is cancelled. On COMPLETED_INDEX_BUILD it
// returns the reported index path and removes jobID from the
// registry; on FAILED_INDEX_BUILD it fails with the reported error
// wrapped in ErrBuildReportedFailed; any status other than RUNNING,
// COMPLETED, or FAILED is a protocol violation.
func (c *Client) Await(ctx context.Context, jobID string, opts AwaitOptions) (string, error) {
	deadline := time.Now().Add(opts.Timeout)

	if opts.InitialDelay > 0 {
		if err := sleepOrDone(ctx, opts.InitialDelay); err != nil {
			return "", err
		}
	}

	for {
		if opts.Timeout > 0 && time.Now().After(deadline) {
			return "", fmt.Errorf("%w: job %s", ErrBuildTimedOut, jobID)
		}

		status, err := c.Status(ctx, jobID)
		if err != nil {
			return "", err
		}

		switch status.State {
		case types.TaskCompleted:
			if status.IndexPath == nil || *status.IndexPath == "" {
				return "", fmt.Errorf("%w: COMPLETED_INDEX_BUILD with no index_path", ErrProtocolViolation)
			}
			c.registry.delete(jobID)
			return *status.IndexPath, nil

		case types.TaskFailed:
			c.registry.delete(jobID)
			if status.Error == nil || *status.Error == "" {
				return "", fmt.Errorf("%w: no error message", ErrBuildReportedFailed)
			}
			return "", fmt.Errorf("%w: %s", ErrBuildReportedFailed, *status.Error)

		case types.TaskRunning:
			if err := sleepOrDone(ctx, opts.PollInterval); err != nil {
				return "", err
			}

		default:
			return "", fmt.Errorf("%w: unrecognized task_status %q", ErrProtocolViolation, status.State)
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

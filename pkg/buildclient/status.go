package buildclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/lattice-search/vecbuild/pkg/codec"
	"github.com/lattice-search/vecbuild/pkg/types"
)

// Status fetches the current BuildStatus for jobID from whichever
// endpoint accepted its Submit — the registry guarantees this is the
// same endpoint for every status call on that jobId (spec.md's
// endpoint-stickiness invariant).
func (c *Client) Status(ctx context.Context, jobID string) (types.BuildStatus, error) {
	endpoint, ok := c.registry.get(jobID)
	if !ok {
		return types.BuildStatus{}, fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/_status/"+jobID, nil)
	if err != nil {
		return types.BuildStatus{}, err
	}
	c.authorize(httpReq.Request)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return types.BuildStatus{}, fmt.Errorf("%w: %w", ErrStatusHTTP, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.BuildStatus{}, fmt.Errorf("%w: %w", ErrStatusHTTP, err)
	}
	if resp.StatusCode != http.StatusOK {
		return types.BuildStatus{}, fmt.Errorf("%w: unexpected status %d: %s", ErrStatusHTTP, resp.StatusCode, string(body))
	}

	status, err := codec.DecodeStatus(body)
	if err != nil {
		return types.BuildStatus{}, fmt.Errorf("%w: %w", ErrProtocolViolation, err)
	}
	return status, nil
}

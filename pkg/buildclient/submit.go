package buildclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/lattice-search/vecbuild/pkg/codec"
	"github.com/lattice-search/vecbuild/pkg/types"
)

// Submit posts req to /_build on each configured endpoint in list
// order. A 507 response means that endpoint is saturated — the client
// advances to the next endpoint with the same body; if every endpoint
// rejects, Submit fails with ErrAllEndpointsRejected. Any other
// non-200 status is a hard, immediately-returned error. On success the
// winning endpoint is recorded in the job registry under the returned
// jobId.
func (c *Client) Submit(ctx context.Context, req types.RemoteBuildRequest) (string, error) {
	body, err := codec.EncodeBuildRequest(req)
	if err != nil {
		return "", err
	}

	for _, endpoint := range c.cfg.Endpoints {
		jobID, saturated, err := c.submitOne(ctx, endpoint, body)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrSubmitHTTP, endpoint, err)
		}
		if saturated {
			c.logger.Warn("build endpoint saturated, trying next", "endpoint", endpoint)
			continue
		}

		c.registry.put(jobID, endpoint)
		return jobID, nil
	}

	return "", fmt.Errorf("%w (tried %d endpoints)", ErrAllEndpointsRejected, len(c.cfg.Endpoints))
}

// submitOne posts to one endpoint. saturated is true iff the endpoint
// answered 507, in which case err is always nil.
func (c *Client) submitOne(ctx context.Context, endpoint string, body []byte) (jobID string, saturated bool, err error) {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/_build", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq.Request)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		parsed, err := codec.DecodeBuildResponse(respBody)
		if err != nil {
			return "", false, fmt.Errorf("%w: %w", ErrProtocolViolation, err)
		}
		return parsed.JobID, false, nil
	case http.StatusInsufficientStorage: // 507: admission control
		return "", true, nil
	default:
		return "", false, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
}

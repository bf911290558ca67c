// Package codec serializes RemoteBuildRequest to the wire JSON schema
// and parses the remote build service's responses, in the style of the
// teacher's embedding/openai request/response structs.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/lattice-search/vecbuild/pkg/types"
)

// EncodeBuildRequest serializes req to the exact JSON layout the
// remote build service expects.
func EncodeBuildRequest(req types.RemoteBuildRequest) ([]byte, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal build request: %w", err)
	}
	return b, nil
}

// DecodeBuildResponse parses a POST /_build success body. It rejects a
// missing or empty job_id, per the RemoteBuildResponse invariant.
func DecodeBuildResponse(body []byte) (types.RemoteBuildResponse, error) {
	var resp types.RemoteBuildResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return types.RemoteBuildResponse{}, fmt.Errorf("codec: malformed build response: %w", err)
	}
	if resp.JobID == "" {
		return types.RemoteBuildResponse{}, fmt.Errorf("codec: build response missing job_id")
	}
	return resp, nil
}

// DecodeStatus parses a GET /_status/<jobId> body.
func DecodeStatus(body []byte) (types.BuildStatus, error) {
	var st types.BuildStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return types.BuildStatus{}, fmt.Errorf("codec: malformed status response: %w", err)
	}
	return st, nil
}


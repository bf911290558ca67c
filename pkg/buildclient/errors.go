package buildclient

import "errors"

// Sentinel errors surfaced by BuildClient, matching spec.md §7's error
// kinds. Callers compare with errors.Is; BuildReportedFailed and
// SubmitHTTPError/StatusHTTPError wrap the server-reported detail, so
// they additionally expose an Unwrap chain back to these sentinels via
// fmt.Errorf("%w: %s", ...).
var (
	// ErrAllEndpointsRejected is returned by Submit when every
	// configured endpoint answered 507 (admission control).
	ErrAllEndpointsRejected = errors.New("buildclient: all endpoints rejected the submission")

	// ErrSubmitHTTP is a hard (non-200, non-507) submit failure.
	ErrSubmitHTTP = errors.New("buildclient: submit failed")

	// ErrStatusHTTP is a hard status-query failure.
	ErrStatusHTTP = errors.New("buildclient: status query failed")

	// ErrBuildReportedFailed wraps a FAILED_INDEX_BUILD status.
	ErrBuildReportedFailed = errors.New("buildclient: remote build reported failure")

	// ErrBuildTimedOut is returned by Await when the wall-clock budget
	// elapses before a terminal state is observed.
	ErrBuildTimedOut = errors.New("buildclient: build await timed out")

	// ErrProtocolViolation covers malformed JSON or a missing required
	// field in an otherwise well-formed response.
	ErrProtocolViolation = errors.New("buildclient: protocol violation")

	// ErrUnknownJob is returned by Status/Await for a jobId with no
	// registry entry (never submitted, or already terminal).
	ErrUnknownJob = errors.New("buildclient: unknown job id")
)

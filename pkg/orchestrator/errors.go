package orchestrator

import "errors"

// Sentinel errors matching spec.md §7's error kinds. Every kind except
// ProgrammingError and FallbackFailed triggers a transition to FALLBACK
// once the state machine has left INIT; ProgrammingError is always
// fatal and is never passed to LocalBuildStrategy.
var (
	// ErrConfigMissing means the orchestrator was not given enough
	// configuration to work with: New returns it when no
	// LocalBuildStrategy is supplied, and a remote attempt raises it
	// when the repository type or container name is empty.
	ErrConfigMissing = errors.New("orchestrator: required configuration missing")

	// ErrUploadFailed wraps a RepositoryAccessor.WriteToRepository
	// failure during UPLOADING.
	ErrUploadFailed = errors.New("orchestrator: upload failed")

	// ErrSubmitFailed wraps a BuildClient.Submit failure during
	// SUBMITTING, whether from a hard HTTP error or every endpoint
	// rejecting admission.
	ErrSubmitFailed = errors.New("orchestrator: submit failed")

	// ErrAwaitFailed wraps a BuildClient.Await failure during
	// AWAITING: a reported build failure, a protocol violation, or the
	// wall-clock timeout.
	ErrAwaitFailed = errors.New("orchestrator: await failed")

	// ErrDownloadFailed wraps a RepositoryAccessor.ReadFromRepository
	// failure during DOWNLOADING.
	ErrDownloadFailed = errors.New("orchestrator: download failed")

	// ErrProgrammingError is returned by BuildIndexUnattributed, and by
	// BuildIndex if called with a job that fails validation in a way
	// that indicates caller error rather than a runtime condition. It
	// is always fatal: the caller gets it back unchanged, and
	// LocalBuildStrategy is never invoked.
	ErrProgrammingError = errors.New("orchestrator: programming error")

	// ErrFallbackFailed wraps a LocalBuildStrategy.Build failure. Per
	// spec.md §7, a failure in the fallback itself is fatal for the
	// segment — there is nowhere left to fall back to.
	ErrFallbackFailed = errors.New("orchestrator: local fallback build failed")
)

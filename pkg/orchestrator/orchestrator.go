// Package orchestrator drives one SegmentBuildJob through the remote
// build state machine described in spec.md §4.8: upload the vector and
// doc-id blobs, submit a build request, poll until a terminal status,
// download the finished artifact, and fall back to a local build
// strategy on any failure short of a caller programming error. It is
// the seam where vectorcursor, repository, buildclient, codec,
// eligibility, secret and stats all come together, generalized from
// the teacher's pkg/ingest.Pipeline orchestration of its own
// chunk -> embed -> dedup -> select -> rerank stage sequence.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lattice-search/vecbuild/pkg/buildclient"
	"github.com/lattice-search/vecbuild/pkg/eligibility"
	"github.com/lattice-search/vecbuild/pkg/repository"
	"github.com/lattice-search/vecbuild/pkg/sink"
	"github.com/lattice-search/vecbuild/pkg/stats"
	"github.com/lattice-search/vecbuild/pkg/types"
	"github.com/lattice-search/vecbuild/pkg/vectorcursor"
)

// phase names the orchestrator's position in the state machine, for
// logging only; there is no exported Phase type because no caller
// needs to branch on it.
type phase string

const (
	phaseInit        phase = "INIT"
	phaseUploading   phase = "UPLOADING"
	phaseSubmitting  phase = "SUBMITTING"
	phaseAwaiting    phase = "AWAITING"
	phaseDownloading phase = "DOWNLOADING"
	phaseDone        phase = "DONE"
	phaseFallback    phase = "FALLBACK"
)

// Tracer receives a span start/end pair per orchestrator phase. The
// returned func ends the span. A nil Tracer is valid and traces
// nothing; internal/telemetry.Provider is this module's reference
// implementation, kept behind this interface so this package never
// imports otel directly.
type Tracer interface {
	StartPhase(ctx context.Context, name string, job *types.SegmentBuildJob) (context.Context, func())
}

// LocalBuildStrategy builds the index directly on this node, the path
// every job takes on FALLBACK and the only path for jobs that never
// became remote-eligible. internal/localbuild.BruteForce is this
// module's reference implementation.
type LocalBuildStrategy interface {
	Build(ctx context.Context, job *types.SegmentBuildJob, vectorSupplier, docIDSupplier vectorcursor.Supplier) error
}

// Config is the deployment-level configuration an Orchestrator needs
// beyond what arrives per-call in a Request: the object-storage
// container a remote build reads its blobs from, and the tenant this
// node serves.
type Config struct {
	RepositoryType string
	ContainerName  string
	TenantID       string

	Await buildclient.AwaitOptions
}

func (c Config) validate() error {
	if c.RepositoryType == "" || c.ContainerName == "" {
		return fmt.Errorf("%w: repository_type and container_name are required", ErrConfigMissing)
	}
	return nil
}

// Orchestrator wires together every collaborator needed to drive a
// SegmentBuildJob through the remote build state machine, with a
// guaranteed local fallback.
type Orchestrator struct {
	accessor *repository.Accessor
	client   *buildclient.Client
	stats    *stats.Registry
	local    LocalBuildStrategy
	tracer   Tracer
	cfg      Config
	logger   *slog.Logger
}

// New constructs an Orchestrator. local must be non-nil: every job,
// remote-eligible or not, must have somewhere to go on FALLBACK.
func New(accessor *repository.Accessor, client *buildclient.Client, statsRegistry *stats.Registry, local LocalBuildStrategy, tracer Tracer, cfg Config, logger *slog.Logger) (*Orchestrator, error) {
	if local == nil {
		return nil, fmt.Errorf("%w: a LocalBuildStrategy is required", ErrConfigMissing)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		accessor: accessor,
		client:   client,
		stats:    statsRegistry,
		local:    local,
		tracer:   tracer,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Request bundles one call's worth of inputs to BuildIndex: the job
// description, its flush/merge attribution, the per-index eligibility
// settings, and fresh cursor suppliers for the vector and doc-id
// streams.
type Request struct {
	Job            *types.SegmentBuildJob
	IsFlush        bool
	Settings       eligibility.IndexSettings
	VectorSupplier vectorcursor.Supplier
	DocIDSupplier  vectorcursor.Supplier
}

// BuildIndex is the orchestrator's sole remote-capable entry point.
// isFlush is mandatory: it attributes the job's gauges and cumulative
// timers to flush or merge per spec.md §4.8's terminal bookkeeping.
// BuildIndex never returns an error for a job that completes via
// FALLBACK — only ErrProgrammingError (caller error) and a failure of
// the fallback build itself (ErrFallbackFailed, with nowhere left to
// go) are returned to the caller.
func (o *Orchestrator) BuildIndex(ctx context.Context, req Request) error {
	if err := req.Job.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrProgrammingError, err)
	}

	if !eligibility.ShouldBuildRemotely(req.Settings, req.Job.VectorBlobBytes()) {
		return o.runLocal(ctx, req, phaseInit, nil)
	}

	return o.runRemote(ctx, req)
}

// BuildIndexUnattributed is the orchestrator's second entry point: it
// exists so that a caller which forgot to resolve flush/merge
// attribution fails loudly instead of silently defaulting to one or
// the other. It always returns ErrProgrammingError and never touches
// storage, the build service, or any counter.
func (o *Orchestrator) BuildIndexUnattributed(ctx context.Context, job *types.SegmentBuildJob, settings eligibility.IndexSettings, vectorSupplier, docIDSupplier vectorcursor.Supplier) error {
	return fmt.Errorf("%w: segment %s field %s invoked without flush/merge attribution", ErrProgrammingError, job.SegmentID, job.FieldName)
}

// runRemote drives the full state machine. Every error path below
// ErrConfigMissing and including it logs and falls back; only a
// caller-validation failure (already handled in BuildIndex) and a
// fallback failure itself propagate.
func (o *Orchestrator) runRemote(ctx context.Context, req Request) error {
	start := time.Now()
	o.trackInFlight(req, 1)
	defer o.trackInFlight(req, -1)

	if err := o.cfg.validate(); err != nil {
		o.logger.Warn("orchestrator: config missing, falling back", "segment", req.Job.SegmentID, "field", req.Job.FieldName, "error", err)
		return o.runLocal(ctx, req, phaseFallback, &start)
	}

	names := types.NewBlobNames(req.Job)

	if err := o.upload(ctx, req, names); err != nil {
		o.logger.Warn("orchestrator: upload failed, falling back", "segment", req.Job.SegmentID, "field", req.Job.FieldName, "error", err)
		return o.runLocal(ctx, req, phaseFallback, &start)
	}

	jobID, err := o.submit(ctx, req, names)
	if err != nil {
		o.logger.Warn("orchestrator: submit failed, falling back", "segment", req.Job.SegmentID, "field", req.Job.FieldName, "error", err)
		return o.runLocal(ctx, req, phaseFallback, &start)
	}

	indexPath, err := o.await(ctx, req, jobID)
	if err != nil {
		o.logger.Warn("orchestrator: await failed, falling back", "segment", req.Job.SegmentID, "field", req.Job.FieldName, "error", err)
		return o.runLocal(ctx, req, phaseFallback, &start)
	}

	if err := o.download(ctx, req, indexPath); err != nil {
		o.logger.Warn("orchestrator: download failed, falling back", "segment", req.Job.SegmentID, "field", req.Job.FieldName, "error", err)
		return o.runLocal(ctx, req, phaseFallback, &start)
	}

	o.stats.IndexBuildSuccess.Inc()
	o.recordCumulative(req, start)
	o.logger.Info("orchestrator: remote build complete", "segment", req.Job.SegmentID, "field", req.Job.FieldName, "job_id", jobID)
	return nil
}

func (o *Orchestrator) upload(ctx context.Context, req Request, names types.BlobNames) error {
	ctx, end := o.startSpan(ctx, phaseUploading, req.Job)
	defer end()

	start := time.Now()
	err := o.accessor.WriteToRepository(ctx, names, req.Job, req.VectorSupplier, req.DocIDSupplier)
	if err != nil {
		o.stats.WriteFailure.Inc()
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	o.stats.WriteSuccess.Inc()
	stats.ObserveDuration(o.stats.WriteDuration, start)
	return nil
}

func (o *Orchestrator) submit(ctx context.Context, req Request, names types.BlobNames) (string, error) {
	ctx, end := o.startSpan(ctx, phaseSubmitting, req.Job)
	defer end()

	start := time.Now()
	wireReq := types.RemoteBuildRequest{
		RepositoryType:  o.cfg.RepositoryType,
		ContainerName:   o.cfg.ContainerName,
		VectorPath:      names.VectorPath,
		DocIDPath:       names.DocIDPath,
		TenantID:        o.cfg.TenantID,
		Dimension:       req.Job.Dimension,
		DocCount:        req.Job.TotalLiveDocs,
		DataType:        req.Job.DataType,
		Engine:          req.Job.Engine,
		IndexParameters: req.Job.MethodParams,
	}

	jobID, err := o.client.Submit(ctx, wireReq)
	if err != nil {
		o.stats.SubmitFailure.Inc()
		return "", fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	o.stats.SubmitSuccess.Inc()
	stats.ObserveDuration(o.stats.SubmitDuration, start)
	return jobID, nil
}

func (o *Orchestrator) await(ctx context.Context, req Request, jobID string) (string, error) {
	ctx, end := o.startSpan(ctx, phaseAwaiting, req.Job)
	defer end()

	start := time.Now()
	indexPath, err := o.client.Await(ctx, jobID, o.cfg.Await)
	stats.ObserveDuration(o.stats.WaitDuration, start)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAwaitFailed, err)
	}
	return indexPath, nil
}

func (o *Orchestrator) download(ctx context.Context, req Request, indexPath string) error {
	ctx, end := o.startSpan(ctx, phaseDownloading, req.Job)
	defer end()

	start := time.Now()
	dst := sink.New(req.Job.Sink, o.accessor.BufferSize())
	if err := o.accessor.ReadFromRepository(ctx, indexPath, req.Job.Engine, dst); err != nil {
		o.stats.ReadFailure.Inc()
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	o.stats.ReadSuccess.Inc()
	stats.ObserveDuration(o.stats.ReadDuration, start)
	return nil
}

// runLocal invokes LocalBuildStrategy directly, either because the
// job never became remote-eligible (start is nil: no in-flight gauge
// or cumulative timer was ever started for it) or because a remote
// phase failed and the state machine transitioned to FALLBACK (start
// is the original call's start time, so cumulative bookkeeping covers
// the whole attempt, not just the local portion).
func (o *Orchestrator) runLocal(ctx context.Context, req Request, from phase, start *time.Time) error {
	if from == phaseFallback {
		o.stats.IndexBuildFailure.Inc()
	}

	ctx, end := o.startSpan(ctx, phaseFallback, req.Job)
	defer end()

	if err := o.local.Build(ctx, req.Job, req.VectorSupplier, req.DocIDSupplier); err != nil {
		return fmt.Errorf("%w: %w", ErrFallbackFailed, err)
	}

	if start != nil {
		o.recordCumulative(req, *start)
	}
	return nil
}

func (o *Orchestrator) startSpan(ctx context.Context, p phase, job *types.SegmentBuildJob) (context.Context, func()) {
	if o.tracer == nil {
		return ctx, func() {}
	}
	return o.tracer.StartPhase(ctx, string(p), job)
}

func (o *Orchestrator) trackInFlight(req Request, delta int) {
	if req.IsFlush {
		o.stats.CurrentFlushOps.Add(float64(delta))
		if delta > 0 {
			o.stats.CurrentFlushSize.Add(float64(req.Job.VectorBlobBytes()))
		} else {
			o.stats.CurrentFlushSize.Sub(float64(req.Job.VectorBlobBytes()))
		}
		return
	}
	o.stats.CurrentMergeOps.Add(float64(delta))
	if delta > 0 {
		o.stats.CurrentMergeSize.Add(float64(req.Job.VectorBlobBytes()))
	} else {
		o.stats.CurrentMergeSize.Sub(float64(req.Job.VectorBlobBytes()))
	}
}

func (o *Orchestrator) recordCumulative(req Request, start time.Time) {
	elapsed := time.Since(start).Seconds()
	if req.IsFlush {
		o.stats.CumulativeFlushTime.Add(elapsed)
		return
	}
	o.stats.CumulativeMergeTime.Add(elapsed)
}

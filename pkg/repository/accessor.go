package repository

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/lattice-search/vecbuild/pkg/sink"
	"github.com/lattice-search/vecbuild/pkg/types"
	"github.com/lattice-search/vecbuild/pkg/vectorcursor"
	"github.com/lattice-search/vecbuild/pkg/vectorstream"
)

// Config tunes Accessor's upload strategy, from spec.md §6's
// upload.* keys.
type Config struct {
	// PartSize is the size of a multi-part upload part, in bytes.
	PartSize int64

	// BufferBytes sizes the single-stream upload/download buffer.
	BufferBytes int

	// ForceSingleStream disables the parallel multi-part path even
	// when the container supports it.
	ForceSingleStream bool
}

// Accessor is RepositoryAccessor: it drives a BlobRepository through
// the write and read contracts of spec.md §4.4.
type Accessor struct {
	repo BlobRepository
	cfg  Config
}

// New constructs an Accessor over repo.
func New(repo BlobRepository, cfg Config) *Accessor {
	if cfg.PartSize <= 0 {
		cfg.PartSize = 64 << 20 // 64MiB, a conventional S3 multipart chunk size
	}
	if cfg.BufferBytes <= 0 {
		cfg.BufferBytes = sink.DefaultBufferSize
	}
	return &Accessor{repo: repo, cfg: cfg}
}

// WriteToRepository publishes the job's vector and doc-id blobs under
// names. vectorSupplier and docIDSupplier each produce a fresh cursor
// instance per call — the accessor calls vectorSupplier once per
// upload part (or once total, for the sequential path) and
// docIDSupplier exactly once.
func (a *Accessor) WriteToRepository(ctx context.Context, names types.BlobNames, job *types.SegmentBuildJob, vectorSupplier, docIDSupplier vectorcursor.Supplier) error {
	if a.repo.SupportsMultipart() && !a.cfg.ForceSingleStream {
		return a.writeParallel(ctx, names, job, vectorSupplier, docIDSupplier)
	}
	return a.writeSequential(ctx, names, job, vectorSupplier, docIDSupplier)
}

func (a *Accessor) writeParallel(ctx context.Context, names types.BlobNames, job *types.SegmentBuildJob, vectorSupplier, docIDSupplier vectorcursor.Supplier) error {
	total := job.VectorBlobBytes()

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		supplier := func(partNo int, size, position int64) (io.Reader, error) {
			cur, err := vectorSupplier()
			if err != nil {
				return nil, fmt.Errorf("repository: part %d cursor: %w", partNo, err)
			}
			vs := vectorstream.NewVectorByteStream(cur)
			if err := vs.Skip(position); err != nil {
				return nil, fmt.Errorf("repository: part %d skip to %d: %w", partNo, position, err)
			}
			vs.WithLimit(size)
			return requireExactly(vs, size), nil
		}

		if err := a.repo.WriteMultipart(ctx, names.VectorPath, total, a.cfg.PartSize, supplier); err != nil {
			errs <- fmt.Errorf("repository: vector blob upload: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.writeDocIDBlob(ctx, names, job, docIDSupplier); err != nil {
			errs <- err
		}
	}()

	wg.Wait()
	close(errs)

	var first error
	for err := range errs {
		if first == nil {
			first = err
		}
	}
	return first
}

func (a *Accessor) writeSequential(ctx context.Context, names types.BlobNames, job *types.SegmentBuildJob, vectorSupplier, docIDSupplier vectorcursor.Supplier) error {
	cur, err := vectorSupplier()
	if err != nil {
		return fmt.Errorf("repository: vector cursor: %w", err)
	}
	vs := bufio.NewReaderSize(vectorstream.NewVectorByteStream(cur), a.cfg.BufferBytes)
	if err := a.repo.WriteSequential(ctx, names.VectorPath, vs, job.VectorBlobBytes()); err != nil {
		return fmt.Errorf("repository: vector blob upload: %w", err)
	}

	return a.writeDocIDBlob(ctx, names, job, docIDSupplier)
}

func (a *Accessor) writeDocIDBlob(ctx context.Context, names types.BlobNames, job *types.SegmentBuildJob, docIDSupplier vectorcursor.Supplier) error {
	cur, err := docIDSupplier()
	if err != nil {
		return fmt.Errorf("repository: doc-id cursor: %w", err)
	}
	ds := bufio.NewReaderSize(vectorstream.NewDocIDByteStream(cur), a.cfg.BufferBytes)
	if err := a.repo.WriteSequential(ctx, names.DocIDPath, ds, job.DocIDBlobBytes()); err != nil {
		return fmt.Errorf("repository: doc-id blob upload: %w", err)
	}
	return nil
}

// BufferSize returns the configured single-stream buffer size, for
// callers (the orchestrator's download phase) that need to size their
// own sink.BufferedSink consistently with the accessor's own I/O.
func (a *Accessor) BufferSize() int {
	return a.cfg.BufferBytes
}

// ReadFromRepository streams name — the finished build artifact's
// path, i.e. the index_path a remote build reports — into sink. Names
// that do not end with the
// expected index-file extension for engine are rejected before any
// I/O is attempted.
func (a *Accessor) ReadFromRepository(ctx context.Context, name, engine string, dst *sink.BufferedSink) error {
	if !types.HasEngineExtension(name, engine) {
		return fmt.Errorf("repository: %q does not have the expected %s engine extension", name, engine)
	}

	rc, err := a.repo.Read(ctx, name)
	if err != nil {
		return fmt.Errorf("repository: open %q: %w", name, err)
	}
	defer rc.Close()

	if _, err := dst.CopyFrom(rc); err != nil {
		return fmt.Errorf("repository: read %q: %w", name, err)
	}
	return nil
}

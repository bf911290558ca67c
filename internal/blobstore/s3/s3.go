// Package s3 is vecbuild's reference implementation of
// repository.BlobRepository, backed by aws-sdk-go-v2. BlobRepository
// is an external collaborator per spec.md §1 — this adapter exists so
// the interface has a concrete, runnable binding and so the object-
// storage dependency named throughout the example pack gets exercised
// somewhere in this module, not because any component here depends on
// it directly.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/lattice-search/vecbuild/pkg/repository"
)

// Config configures a Repository.
type Config struct {
	Bucket string

	// Region is forwarded to the default AWS config loader when set;
	// otherwise the standard SDK credential/region chain applies
	// (environment, shared config, IMDS).
	Region string

	// MaxParallelParts bounds how many multipart UploadPart calls run
	// concurrently per WriteMultipart call. Defaults to 4.
	MaxParallelParts int
}

// Repository adapts an s3.Client to repository.BlobRepository.
type Repository struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	maxPara    int
}

// New loads the default AWS SDK config (optionally pinned to
// cfg.Region) and returns a Repository over cfg.Bucket.
func New(ctx context.Context, cfg Config) (*Repository, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("blobstore/s3: bucket is required")
	}
	maxPara := cfg.MaxParallelParts
	if maxPara <= 0 {
		maxPara = 4
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("blobstore/s3: load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &Repository{
		client:     client,
		uploader:   manager.NewUploader(client, func(u *manager.Uploader) { u.Concurrency = maxPara }),
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) { d.Concurrency = maxPara }),
		bucket:     cfg.Bucket,
		maxPara:    maxPara,
	}, nil
}

// SupportsMultipart always reports true: S3 supports multipart
// upload for any object.
func (r *Repository) SupportsMultipart() bool { return true }

// WriteSequential uploads a single object from src. It goes through
// manager.Uploader rather than a bare PutObject so a container that
// forces the single-stream path (ForceSingleStream, or a small blob
// the accessor didn't bother splitting) still gets the manager's own
// chunked-upload handling for arbitrarily large src.
func (r *Repository) WriteSequential(ctx context.Context, name string, src io.Reader, size int64) error {
	_, err := r.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(name),
		Body:          src,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("blobstore/s3: put %q: %w", name, err)
	}
	return nil
}

// WriteMultipart drives S3's CreateMultipartUpload/UploadPart/
// CompleteMultipartUpload sequence, invoking supplier once per part
// from a bounded worker pool so the repository.PartSupplier contract
// (a fresh reader per part, independently seekable via
// vectorcursor.Supplier) is honored under concurrency.
func (r *Repository) WriteMultipart(ctx context.Context, name string, totalSize, partSize int64, supplier repository.PartSupplier) error {
	created, err := r.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("blobstore/s3: create multipart upload %q: %w", name, err)
	}
	uploadID := created.UploadId

	numParts := repository.NumParts(totalSize, partSize)
	if numParts == 0 {
		r.abortMultipart(ctx, name, uploadID)
		return fmt.Errorf("blobstore/s3: nothing to upload for %q", name)
	}

	completed := make([]types.CompletedPart, numParts)
	errs := make(chan error, numParts)

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.maxPara)

	for partNo := 1; partNo <= numParts; partNo++ {
		wg.Add(1)
		go func(partNo int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			size, position := repository.PartBounds(partNo, totalSize, partSize)
			body, err := supplier(partNo, size, position)
			if err != nil {
				errs <- fmt.Errorf("part %d: supplier: %w", partNo, err)
				return
			}

			out, err := r.client.UploadPart(ctx, &s3.UploadPartInput{
				Bucket:        aws.String(r.bucket),
				Key:           aws.String(name),
				UploadId:      uploadID,
				PartNumber:    aws.Int32(int32(partNo)),
				Body:          body,
				ContentLength: aws.Int64(size),
			})
			if err != nil {
				errs <- fmt.Errorf("part %d: upload: %w", partNo, err)
				return
			}
			completed[partNo-1] = types.CompletedPart{ETag: out.ETag, PartNumber: aws.Int32(int32(partNo))}
		}(partNo)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		r.abortMultipart(ctx, name, uploadID)
		return fmt.Errorf("blobstore/s3: multipart upload %q: %w", name, err)
	}

	if _, err := r.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(r.bucket),
		Key:             aws.String(name),
		UploadId:        uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	}); err != nil {
		r.abortMultipart(ctx, name, uploadID)
		return fmt.Errorf("blobstore/s3: complete multipart upload %q: %w", name, err)
	}
	return nil
}

func (r *Repository) abortMultipart(ctx context.Context, name string, uploadID *string) {
	_, _ = r.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(r.bucket),
		Key:      aws.String(name),
		UploadId: uploadID,
	})
}

// Read downloads name in concurrent ranged chunks via
// manager.Downloader and hands the caller a ReadCloser over the
// assembled bytes. The finished-artifact downloads this backs are
// bounded by one segment's index size, so buffering the whole object
// is acceptable.
func (r *Repository) Read(ctx context.Context, name string) (io.ReadCloser, error) {
	buf := manager.NewWriteAtBuffer(nil)
	if _, err := r.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(name),
	}); err != nil {
		return nil, fmt.Errorf("blobstore/s3: download %q: %w", name, err)
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

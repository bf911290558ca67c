// Package repository implements RepositoryAccessor, the component
// that publishes a job's two blobs (vector + doc-id) to object storage
// and later reads a finished artifact back. The actual object-storage
// container driver is an external collaborator, named here as the
// BlobRepository interface; internal/blobstore/s3 is this module's
// reference implementation of it.
package repository

import (
	"context"
	"io"
)

// PartSupplier returns a fresh reader covering exactly size bytes
// starting at byte offset position of the logical stream, for upload
// part partNo (1-indexed). Implementations build this from a brand
// new vectorcursor.Cursor skipped to position — cursors are never
// shared across parts.
type PartSupplier func(partNo int, size int64, position int64) (io.Reader, error)

// BlobRepository is the object-storage container driver contract.
// Deliberately out of scope per spec.md §1: this module only depends
// on this interface, never a concrete storage SDK, outside of the
// reference adapter in internal/blobstore/s3.
type BlobRepository interface {
	// SupportsMultipart reports whether this container can perform an
	// async multi-part upload. When false, or when the caller forces
	// a single stream, WriteSequential is used instead.
	SupportsMultipart() bool

	// WriteMultipart uploads name in numParts concurrent parts, each
	// produced by calling supplier. totalSize is the logical stream
	// length; partSize is the size of every part except possibly the
	// last.
	WriteMultipart(ctx context.Context, name string, totalSize, partSize int64, supplier PartSupplier) error

	// WriteSequential uploads name from a single buffered reader of
	// the given size.
	WriteSequential(ctx context.Context, name string, r io.Reader, size int64) error

	// Read opens name for sequential reading. The caller is
	// responsible for closing the returned ReadCloser.
	Read(ctx context.Context, name string) (io.ReadCloser, error)
}

// NumParts computes the part count for a multi-part upload of total
// bytes at partSize per part, per spec.md §4.4: ceil(total/partSize),
// with the final part sized total mod partSize (or a full partSize if
// that remainder is zero).
func NumParts(total, partSize int64) int {
	if total <= 0 || partSize <= 0 {
		return 0
	}
	n := total / partSize
	if total%partSize != 0 {
		n++
	}
	return int(n)
}

// PartBounds returns the (size, position) of 1-indexed part partNo out
// of a stream of total bytes split into partSize-sized chunks.
func PartBounds(partNo int, total, partSize int64) (size, position int64) {
	position = int64(partNo-1) * partSize
	size = partSize
	if position+size > total {
		size = total - position
	}
	return size, position
}

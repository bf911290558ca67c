// Package sink provides BufferedSink, a reusable-buffer wrapper around
// a segment output file used to copy an arbitrary input stream into
// the segment writer's output.
package sink

import (
	"io"

	"github.com/lattice-search/vecbuild/pkg/types"
)

// DefaultBufferSize matches the teacher's ingest pipeline default
// channel/batch sizing philosophy of "big enough to amortize syscalls,
// small enough to bound memory": 1MiB per copy.
const DefaultBufferSize = 1 << 20

// BufferedSink wraps a types.SegmentSink with a reusable byte buffer so
// that repeated CopyFrom calls (e.g. a failed download retried against
// the local fallback) don't reallocate.
type BufferedSink struct {
	dst types.SegmentSink
	buf []byte
}

// New wraps dst with a buffer of bufSize bytes. A bufSize <= 0 uses
// DefaultBufferSize.
func New(dst types.SegmentSink, bufSize int) *BufferedSink {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &BufferedSink{dst: dst, buf: make([]byte, bufSize)}
}

// CopyFrom copies all of src into the wrapped sink using the sink's
// reusable buffer, returning the number of bytes copied.
func (s *BufferedSink) CopyFrom(src io.Reader) (int64, error) {
	return io.CopyBuffer(writerFunc(s.dst.Write), src, s.buf)
}

// writerFunc adapts a Write method value to io.Writer so io.CopyBuffer
// can be used directly against types.SegmentSink, which only requires
// Write.
type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

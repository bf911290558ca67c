// Package vectorstream adapts a vectorcursor.Cursor into the two byte
// streams the upload path needs: a packed little-endian vector stream
// and a packed little-endian doc-id stream. Both support bounded
// length and forward skip, which is what lets the same cursor-supplier
// contract serve both the sequential single-stream upload path and the
// parallel multi-part path.
package vectorstream

import (
	"fmt"
	"io"

	"github.com/lattice-search/vecbuild/pkg/vectorcursor"
)

// VectorByteStream presents one cursor's vectors as a contiguous byte
// stream in cursor order. It implements io.Reader.
type VectorByteStream struct {
	cur        vectorcursor.Cursor
	bytesPer   int
	total      int64 // total readable bytes for this stream instance
	consumed   int64 // bytes already returned by Read
	curBuf     []byte
	curPos     int
	haveVector bool
}

// NewVectorByteStream wraps cur with no length bound: the stream reads
// until the cursor is exhausted, for a total length of
// totalLiveDocs * bytesPerVector.
func NewVectorByteStream(cur vectorcursor.Cursor) *VectorByteStream {
	return &VectorByteStream{
		cur:      cur,
		bytesPer: cur.BytesPerVector(),
		total:    cur.TotalLiveDocs() * int64(cur.BytesPerVector()),
	}
}

// WithLimit bounds the stream to at most n further bytes from its
// current position, for use as a multi-part upload's per-part
// supplier. It is the caller's responsibility to have already Skip'd
// the stream to the part's starting offset.
func (s *VectorByteStream) WithLimit(n int64) *VectorByteStream {
	remaining := s.total - s.consumed
	if n < remaining {
		s.total = s.consumed + n
	}
	return s
}

// Len reports the total number of bytes this stream will yield,
// independent of how many have been read so far.
func (s *VectorByteStream) Len() int64 {
	return s.total
}

// Skip advances the stream by n bytes without returning them: n /
// bytesPerVector whole next() calls, then consuming the remainder from
// within the following vector. It is used to position a fresh cursor
// instance at a part's starting byte offset.
func (s *VectorByteStream) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	whole := n / int64(s.bytesPer)
	rem := int(n % int64(s.bytesPer))

	for i := int64(0); i < whole; i++ {
		if _, err := s.cur.Next(); err != nil {
			return fmt.Errorf("vectorstream: skip past end of cursor: %w", err)
		}
	}
	s.consumed += whole * int64(s.bytesPer)

	if rem > 0 {
		if err := s.loadVectorIfNeeded(); err != nil {
			return err
		}
		s.curPos = rem
		s.consumed += int64(rem)
	}
	return nil
}

func (s *VectorByteStream) loadVectorIfNeeded() error {
	if s.haveVector {
		return nil
	}
	if _, err := s.cur.Next(); err != nil {
		return err
	}
	s.curBuf = s.cur.CurrentVector()
	s.curPos = 0
	s.haveVector = true
	return nil
}

// Read implements io.Reader, returning bytes until the cursor is
// exhausted or the stream's length bound is reached.
func (s *VectorByteStream) Read(p []byte) (int, error) {
	if s.consumed >= s.total {
		return 0, io.EOF
	}

	written := 0
	for written < len(p) && s.consumed < s.total {
		if err := s.loadVectorIfNeeded(); err != nil {
			if err == io.EOF {
				if written > 0 {
					return written, nil
				}
				return 0, io.EOF
			}
			return written, err
		}

		n := copy(p[written:], s.curBuf[s.curPos:])
		written += n
		s.curPos += n
		s.consumed += int64(n)

		if s.curPos >= len(s.curBuf) {
			s.haveVector = false
		}
	}
	return written, nil
}

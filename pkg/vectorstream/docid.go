package vectorstream

import (
	"encoding/binary"
	"io"

	"github.com/lattice-search/vecbuild/pkg/vectorcursor"
)

// DocIDByteStream has the same shape as VectorByteStream but emits
// exactly 4 little-endian bytes per cursor entry, in cursor order.
type DocIDByteStream struct {
	cur      vectorcursor.Cursor
	total    int64
	consumed int64
	buf      [4]byte
	bufPos   int
	haveDoc  bool
}

// NewDocIDByteStream wraps cur with no length bound: total readable
// length is totalLiveDocs * 4.
func NewDocIDByteStream(cur vectorcursor.Cursor) *DocIDByteStream {
	return &DocIDByteStream{
		cur:   cur,
		total: cur.TotalLiveDocs() * 4,
	}
}

// Len reports the total number of bytes this stream will yield.
func (s *DocIDByteStream) Len() int64 {
	return s.total
}

// Skip advances the stream by n bytes: n/4 whole doc ids, then the
// remainder from within the following one.
func (s *DocIDByteStream) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	whole := n / 4
	rem := int(n % 4)

	for i := int64(0); i < whole; i++ {
		if _, err := s.cur.Next(); err != nil {
			return err
		}
	}
	s.consumed += whole * 4

	if rem > 0 {
		if err := s.loadDocIfNeeded(); err != nil {
			return err
		}
		s.bufPos = rem
		s.consumed += int64(rem)
	}
	return nil
}

func (s *DocIDByteStream) loadDocIfNeeded() error {
	if s.haveDoc {
		return nil
	}
	id, err := s.cur.Next()
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(s.buf[:], id)
	s.bufPos = 0
	s.haveDoc = true
	return nil
}

// Read implements io.Reader.
func (s *DocIDByteStream) Read(p []byte) (int, error) {
	if s.consumed >= s.total {
		return 0, io.EOF
	}

	written := 0
	for written < len(p) && s.consumed < s.total {
		if err := s.loadDocIfNeeded(); err != nil {
			if err == io.EOF {
				if written > 0 {
					return written, nil
				}
				return 0, io.EOF
			}
			return written, err
		}

		n := copy(p[written:], s.buf[s.bufPos:])
		written += n
		s.bufPos += n
		s.consumed += int64(n)

		if s.bufPos >= 4 {
			s.haveDoc = false
		}
	}
	return written, nil
}

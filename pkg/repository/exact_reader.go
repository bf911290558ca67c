package repository

import (
	"fmt"
	"io"
)

// exactReader wraps a part-supplier's reader and turns "fewer bytes
// than requested" into the fatal error spec.md §4.4 requires, instead
// of silently uploading a short part.
type exactReader struct {
	r    io.Reader
	want int64
	read int64
}

func requireExactly(r io.Reader, want int64) io.Reader {
	return &exactReader{r: r, want: want}
}

func (e *exactReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	e.read += int64(n)

	if err == io.EOF && e.read < e.want {
		return n, fmt.Errorf("repository: part supplier returned %d bytes, want %d: %w", e.read, e.want, io.ErrUnexpectedEOF)
	}
	return n, err
}

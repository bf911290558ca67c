// Package vectorcursor defines the forward-only iterator the
// orchestrator pulls vector data from, plus a couple of concrete
// suppliers used by tests and the CLI.
package vectorcursor

import "io"

// Cursor is a lazy, forward-only, non-restartable sequence of
// (docId, vector) entries for one segment field. A single instance may
// only be consumed by one goroutine at a time; concurrent passes (e.g.
// parallel upload parts) each get their own instance from a Supplier.
type Cursor interface {
	// Next advances to the next entry and returns its doc id. io.EOF
	// is returned once the cursor is exhausted.
	Next() (docID uint32, err error)

	// CurrentVector returns a byte view of the vector at the entry
	// Next last returned, of length BytesPerVector(). The slice is
	// only valid until the next call to Next.
	CurrentVector() []byte

	Dimension() int
	BytesPerVector() int
	TotalLiveDocs() int64
}

// Supplier produces a fresh Cursor instance on demand. The orchestrator
// asks for a new instance for every pass over the data: once for the
// doc-id stream, once per upload part, and once more on a
// download-after-failure retry of the local fallback. This is the only
// restartability contract in the pipeline — cursors themselves never
// rewind.
type Supplier func() (Cursor, error)

// ErrExhausted is returned by Next once a cursor has been fully
// consumed; callers should treat it the same as io.EOF (it is in fact
// an alias, kept as a named value for call-site clarity).
var ErrExhausted = io.EOF

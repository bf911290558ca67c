package vectorcursor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Entry is one (docId, vector) pair held in memory.
type Entry struct {
	DocID  uint32
	Vector []float32
}

// memCursor walks a fixed in-memory slice of entries. It is the
// simplest Supplier target and is what the CLI builds from a JSONL
// fixture and what unit tests build by hand.
type memCursor struct {
	entries []Entry
	dim     int
	pos     int
	buf     []byte
}

// NewMemorySupplier returns a Supplier that hands out a fresh cursor
// over entries each time it is called. entries is not copied; callers
// must not mutate it while any cursor from this supplier is in use.
func NewMemorySupplier(entries []Entry) Supplier {
	dim := 0
	if len(entries) > 0 {
		dim = len(entries[0].Vector)
	}
	return func() (Cursor, error) {
		return &memCursor{
			entries: entries,
			dim:     dim,
			pos:     -1,
			buf:     make([]byte, dim*4),
		}, nil
	}
}

func (c *memCursor) Next() (uint32, error) {
	c.pos++
	if c.pos >= len(c.entries) {
		return 0, ErrExhausted
	}
	e := c.entries[c.pos]
	if len(e.Vector) != c.dim {
		return 0, fmt.Errorf("vectorcursor: entry %d has dimension %d, want %d", c.pos, len(e.Vector), c.dim)
	}
	for i, f := range e.Vector {
		binary.LittleEndian.PutUint32(c.buf[i*4:], math.Float32bits(f))
	}
	return e.DocID, nil
}

func (c *memCursor) CurrentVector() []byte {
	return c.buf
}

func (c *memCursor) Dimension() int { return c.dim }

func (c *memCursor) BytesPerVector() int { return c.dim * 4 }

func (c *memCursor) TotalLiveDocs() int64 { return int64(len(c.entries)) }

package vectorstream

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/lattice-search/vecbuild/pkg/vectorcursor"
)

func TestDocIDByteStream_ReadsAllIDs(t *testing.T) {
	entries := []vectorcursor.Entry{
		{DocID: 42, Vector: []float32{1.0}},
		{DocID: 99, Vector: []float32{2.0}},
	}
	cur := newCursor(t, entries)
	ds := NewDocIDByteStream(cur)

	if ds.Len() != 8 {
		t.Fatalf("expected length 8 (2 doc ids * 4 bytes), got %d", ds.Len())
	}

	b, err := io.ReadAll(ds)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(b))
	}
	if got := binary.LittleEndian.Uint32(b[0:4]); got != 42 {
		t.Errorf("expected first doc id 42, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(b[4:8]); got != 99 {
		t.Errorf("expected second doc id 99, got %d", got)
	}
}

func TestDocIDByteStream_Skip(t *testing.T) {
	entries := []vectorcursor.Entry{
		{DocID: 42, Vector: []float32{1.0}},
		{DocID: 99, Vector: []float32{2.0}},
	}
	cur := newCursor(t, entries)
	ds := NewDocIDByteStream(cur)

	if err := ds.Skip(4); err != nil {
		t.Fatalf("Skip: %v", err)
	}

	b, err := io.ReadAll(ds)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(b) != 4 {
		t.Fatalf("expected 4 remaining bytes, got %d", len(b))
	}
	if got := binary.LittleEndian.Uint32(b); got != 99 {
		t.Errorf("expected remaining doc id 99, got %d", got)
	}
}

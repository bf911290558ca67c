package vectorcursor

import (
	"encoding/binary"
	"math"
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{DocID: 10, Vector: []float32{1.0, 2.0}},
		{DocID: 20, Vector: []float32{3.0, 4.0}},
	}
}

func TestMemorySupplier_FreshCursorEachCall(t *testing.T) {
	supplier := NewMemorySupplier(testEntries())

	c1, err := supplier()
	if err != nil {
		t.Fatalf("supplier: %v", err)
	}
	if _, err := c1.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}

	c2, err := supplier()
	if err != nil {
		t.Fatalf("supplier: %v", err)
	}
	docID, err := c2.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if docID != 10 {
		t.Errorf("expected fresh cursor to start at doc 10, got %d", docID)
	}
}

func TestMemCursor_IteratesAllEntries(t *testing.T) {
	supplier := NewMemorySupplier(testEntries())
	cur, _ := supplier()

	var docIDs []uint32
	for {
		id, err := cur.Next()
		if err == ErrExhausted {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		docIDs = append(docIDs, id)
	}

	if len(docIDs) != 2 || docIDs[0] != 10 || docIDs[1] != 20 {
		t.Errorf("unexpected doc ids: %v", docIDs)
	}
}

func TestMemCursor_CurrentVectorEncoding(t *testing.T) {
	supplier := NewMemorySupplier(testEntries())
	cur, _ := supplier()

	if _, err := cur.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}

	raw := cur.CurrentVector()
	if len(raw) != 8 {
		t.Fatalf("expected 8 bytes (2 float32), got %d", len(raw))
	}

	bits := binary.LittleEndian.Uint32(raw[0:4])
	if math.Float32frombits(bits) != 1.0 {
		t.Errorf("expected first float 1.0, got %f", math.Float32frombits(bits))
	}
}

func TestMemCursor_DimensionMismatch(t *testing.T) {
	entries := []Entry{
		{DocID: 1, Vector: []float32{1.0, 2.0}},
		{DocID: 2, Vector: []float32{1.0}},
	}
	supplier := NewMemorySupplier(entries)
	cur, _ := supplier()

	if _, err := cur.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := cur.Next(); err == nil {
		t.Error("expected error for mismatched dimension")
	}
}

func TestMemCursor_Metadata(t *testing.T) {
	supplier := NewMemorySupplier(testEntries())
	cur, _ := supplier()

	if cur.Dimension() != 2 {
		t.Errorf("expected dimension 2, got %d", cur.Dimension())
	}
	if cur.BytesPerVector() != 8 {
		t.Errorf("expected 8 bytes per vector, got %d", cur.BytesPerVector())
	}
	if cur.TotalLiveDocs() != 2 {
		t.Errorf("expected 2 total live docs, got %d", cur.TotalLiveDocs())
	}
}

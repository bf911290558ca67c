package localbuild

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/lattice-search/vecbuild/pkg/types"
	"github.com/lattice-search/vecbuild/pkg/vectorcursor"
)

func TestBruteForce_Build(t *testing.T) {
	entries := []vectorcursor.Entry{
		{DocID: 1, Vector: []float32{1.0, 0.0}},
		{DocID: 2, Vector: []float32{0.9, 0.1}},
		{DocID: 3, Vector: []float32{0.0, 1.0}},
	}
	job := &types.SegmentBuildJob{
		SegmentID:     "seg-1",
		FieldName:     "embedding",
		TotalLiveDocs: 3,
		BytesPerVec:   8,
		Dimension:     2,
		DataType:      types.DataTypeFloat32,
		MethodParams:  types.IndexParameters{SpaceType: "cosine"},
	}

	var out bytes.Buffer
	job.Sink = &out

	b := BruteForce{NeighborsPerNode: 1}
	supplier := vectorcursor.NewMemorySupplier(entries)
	if err := b.Build(t.Context(), job, supplier, supplier); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if out.Len() == 0 {
		t.Fatal("expected a non-empty artifact")
	}

	docCount := binary.LittleEndian.Uint32(out.Bytes()[0:4])
	if docCount != 3 {
		t.Errorf("expected doc count 3, got %d", docCount)
	}

	pos := 4
	firstDocID := binary.LittleEndian.Uint32(out.Bytes()[pos : pos+4])
	if firstDocID != 1 {
		t.Errorf("expected first doc id 1, got %d", firstDocID)
	}
	neighborCount := binary.LittleEndian.Uint32(out.Bytes()[pos+4 : pos+8])
	if neighborCount != 1 {
		t.Errorf("expected 1 neighbor per node (k=1), got %d", neighborCount)
	}
	// doc 1's nearest neighbor should be doc 2 (closer in cosine space than doc 3).
	nearest := binary.LittleEndian.Uint32(out.Bytes()[pos+8 : pos+12])
	if nearest != 2 {
		t.Errorf("expected doc 1's nearest neighbor to be doc 2, got %d", nearest)
	}
}

func TestBruteForce_DefaultK(t *testing.T) {
	b := BruteForce{}
	if b.NeighborsPerNode != 0 {
		t.Fatal("expected zero value before Build applies the default")
	}
}

func TestBruteForce_EuclideanSpaceType(t *testing.T) {
	entries := []vectorcursor.Entry{
		{DocID: 1, Vector: []float32{0.0, 0.0}},
		{DocID: 2, Vector: []float32{1.0, 1.0}},
	}
	job := &types.SegmentBuildJob{
		TotalLiveDocs: 2,
		BytesPerVec:   8,
		Dimension:     2,
		DataType:      types.DataTypeFloat32,
		MethodParams:  types.IndexParameters{SpaceType: "l2"},
	}
	var out bytes.Buffer
	job.Sink = &out

	b := BruteForce{NeighborsPerNode: 1}
	supplier := vectorcursor.NewMemorySupplier(entries)
	if err := b.Build(t.Context(), job, supplier, supplier); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected a non-empty artifact")
	}
}

package vectorcursor

import (
	"strings"
	"testing"
)

func TestLoadJSONL(t *testing.T) {
	input := `{"doc_id": 1, "vector": [1.0, 2.0]}
{"doc_id": 2, "vector": [3.0, 4.0]}
`
	entries, err := LoadJSONL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadJSONL: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].DocID != 1 || entries[1].DocID != 2 {
		t.Errorf("unexpected doc ids: %+v", entries)
	}
	if entries[0].Vector[0] != 1.0 {
		t.Errorf("expected first vector element 1.0, got %f", entries[0].Vector[0])
	}
}

func TestLoadJSONL_SkipsBlankLines(t *testing.T) {
	input := "{\"doc_id\": 1, \"vector\": [1.0]}\n\n{\"doc_id\": 2, \"vector\": [2.0]}\n"
	entries, err := LoadJSONL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadJSONL: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestLoadJSONL_MalformedLine(t *testing.T) {
	input := `{"doc_id": 1, "vector": [1.0]}
not json
`
	_, err := LoadJSONL(strings.NewReader(input))
	if err == nil {
		t.Error("expected error for malformed line")
	}
}

func TestLoadJSONL_Empty(t *testing.T) {
	entries, err := LoadJSONL(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadJSONL: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

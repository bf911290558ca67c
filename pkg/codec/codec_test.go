package codec

import (
	"encoding/json"
	"testing"

	"github.com/lattice-search/vecbuild/pkg/types"
)

func TestEncodeBuildRequest(t *testing.T) {
	req := types.RemoteBuildRequest{
		RepositoryType: "s3",
		ContainerName:  "bucket",
		VectorPath:     "abc.knnvec",
		DocIDPath:      "abc.knndid",
		TenantID:       "tenant-1",
		Dimension:      128,
		DocCount:       1000,
		DataType:       types.DataTypeFloat32,
		Engine:         "faiss",
		IndexParameters: types.IndexParameters{
			SpaceType: "cosine",
			Algorithm: "hnsw",
		},
	}

	b, err := EncodeBuildRequest(req)
	if err != nil {
		t.Fatalf("EncodeBuildRequest: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["repository_type"] != "s3" {
		t.Errorf("expected repository_type s3, got %v", m["repository_type"])
	}
	if m["vector_path"] != "abc.knnvec" {
		t.Errorf("expected vector_path abc.knnvec, got %v", m["vector_path"])
	}
}

func TestDecodeBuildResponse(t *testing.T) {
	resp, err := DecodeBuildResponse([]byte(`{"job_id":"job-123"}`))
	if err != nil {
		t.Fatalf("DecodeBuildResponse: %v", err)
	}
	if resp.JobID != "job-123" {
		t.Errorf("expected job-123, got %s", resp.JobID)
	}
}

func TestDecodeBuildResponse_MissingJobID(t *testing.T) {
	_, err := DecodeBuildResponse([]byte(`{}`))
	if err == nil {
		t.Error("expected error for missing job_id")
	}
}

func TestDecodeBuildResponse_Malformed(t *testing.T) {
	_, err := DecodeBuildResponse([]byte(`not json`))
	if err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestDecodeStatus(t *testing.T) {
	st, err := DecodeStatus([]byte(`{"task_status":"COMPLETED_INDEX_BUILD","index_path":"out/index.bin","error":null}`))
	if err != nil {
		t.Fatalf("DecodeStatus: %v", err)
	}
	if st.State != types.TaskCompleted {
		t.Errorf("expected COMPLETED_INDEX_BUILD, got %s", st.State)
	}
	if st.IndexPath == nil || *st.IndexPath != "out/index.bin" {
		t.Errorf("expected index_path out/index.bin, got %v", st.IndexPath)
	}
	if st.Error != nil {
		t.Errorf("expected nil error, got %v", *st.Error)
	}
}

func TestDecodeStatus_Failed(t *testing.T) {
	st, err := DecodeStatus([]byte(`{"task_status":"FAILED_INDEX_BUILD","index_path":null,"error":"disk full"}`))
	if err != nil {
		t.Fatalf("DecodeStatus: %v", err)
	}
	if st.State != types.TaskFailed {
		t.Errorf("expected FAILED_INDEX_BUILD, got %s", st.State)
	}
	if st.Error == nil || *st.Error != "disk full" {
		t.Errorf("expected error disk full, got %v", st.Error)
	}
}

func TestDecodeStatus_Malformed(t *testing.T) {
	_, err := DecodeStatus([]byte(`{"task_status":`))
	if err == nil {
		t.Error("expected error for malformed status body")
	}
}

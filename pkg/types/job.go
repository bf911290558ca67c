// Package types holds the shared entities passed between vecbuild's
// packages: the job description handed in by the segment writer, the
// wire-level build request/response/status shapes, and blob naming.
package types

import (
	"fmt"

	"github.com/google/uuid"
)

// DataType identifies the on-disk encoding of a field's vectors.
type DataType string

const (
	DataTypeFloat32 DataType = "float"
	DataTypeByte    DataType = "byte"
	DataTypeBinary  DataType = "binary"
)

// IndexParameters carries the ANN algorithm configuration forwarded to
// the remote build service unmodified.
type IndexParameters struct {
	SpaceType           string         `json:"space_type"`
	Algorithm           string         `json:"algorithm"`
	AlgorithmParameters map[string]any `json:"algorithm_parameters,omitempty"`
}

// SegmentSink is the destination the orchestrator writes the finished
// index artifact (remote or local) into. It is owned by the caller for
// the lifetime of one SegmentBuildJob.
type SegmentSink interface {
	Write(p []byte) (n int, err error)
}

// SegmentBuildJob describes one field's worth of vector data for one
// segment, for the duration of a single orchestrator invocation. All
// fields are immutable once the job is constructed.
type SegmentBuildJob struct {
	SegmentID     string
	FieldName     string
	TotalLiveDocs int64
	BytesPerVec   int
	Dimension     int
	DataType      DataType
	Engine        string
	MethodParams  IndexParameters
	Sink          SegmentSink
}

// Validate checks the entry preconditions from the spec: both
// totalLiveDocs and bytesPerVector must be strictly positive.
func (j *SegmentBuildJob) Validate() error {
	if j.TotalLiveDocs <= 0 {
		return fmt.Errorf("vecbuild: totalLiveDocs must be > 0, got %d", j.TotalLiveDocs)
	}
	if j.BytesPerVec <= 0 {
		return fmt.Errorf("vecbuild: bytesPerVector must be > 0, got %d", j.BytesPerVec)
	}
	return nil
}

// VectorBlobBytes returns the exact byte length of the job's vector blob.
func (j *SegmentBuildJob) VectorBlobBytes() int64 {
	return j.TotalLiveDocs * int64(j.BytesPerVec)
}

// DocIDBlobBytes returns the exact byte length of the job's doc-id blob.
func (j *SegmentBuildJob) DocIDBlobBytes() int64 {
	return j.TotalLiveDocs * 4
}

// BlobNames derives the globally unique blob names for a
// job: baseName = uuid + "_" + fieldName + "_" + segmentId, with the
// vector and doc-id paths appended with their fixed extensions.
type BlobNames struct {
	BaseName   string
	VectorPath string
	DocIDPath  string
}

const (
	vectorExt = ".knnvec"
	docIDExt  = ".knndid"

	// defaultIndexExt is the fallback finished-artifact extension for
	// an engine this module has no entry for.
	defaultIndexExt = ".index"
)

// engineIndexExtensions maps an engine name (spec.md §6's "engine":
// "faiss" | ...) to the file extension the remote build service's
// reported index_path carries for that engine, e.g. spec.md's E2E-1
// scenario's "out.faiss".
var engineIndexExtensions = map[string]string{
	"faiss":  ".faiss",
	"nmslib": ".hnsw",
	"lucene": ".lucene",
}

// IndexExtension returns the finished-index-artifact extension for
// engine, or defaultIndexExt if engine is unrecognized.
func IndexExtension(engine string) string {
	if ext, ok := engineIndexExtensions[engine]; ok {
		return ext
	}
	return defaultIndexExt
}

// NewBlobNames mints a fresh, unique BlobNames for one job. Each call
// returns a distinct baseName even for the same job, matching the
// per-job uniqueness invariant in the data model.
func NewBlobNames(job *SegmentBuildJob) BlobNames {
	base := fmt.Sprintf("%s_%s_%s", uuid.NewString(), job.FieldName, job.SegmentID)
	return BlobNames{
		BaseName:   base,
		VectorPath: base + vectorExt,
		DocIDPath:  base + docIDExt,
	}
}

// HasEngineExtension reports whether name ends with the finished-
// index-artifact extension for engine. Accessor.ReadFromRepository rejects
// names that fail this check — it is the downloaded build artifact's
// extension (e.g. ".faiss"), never the upload-time vector/doc-id blob
// extensions, which Read never sees in practice.
func HasEngineExtension(name, engine string) bool {
	return hasSuffix(name, IndexExtension(engine))
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

package types

// RemoteBuildRequest is the payload submitted to the remote build
// service's POST /_build endpoint. Field tags match the wire schema
// exactly; BuildRequestCodec is responsible for serializing this type
// without reordering or renaming a field.
type RemoteBuildRequest struct {
	RepositoryType   string          `json:"repository_type"`
	ContainerName    string          `json:"container_name"`
	VectorPath       string          `json:"vector_path"`
	DocIDPath        string          `json:"doc_id_path"`
	TenantID         string          `json:"tenant_id"`
	Dimension        int             `json:"dimension"`
	DocCount         int64           `json:"doc_count"`
	DataType         DataType        `json:"data_type"`
	Engine           string          `json:"engine"`
	IndexParameters  IndexParameters `json:"index_parameters"`
}

// RemoteBuildResponse is the successful (HTTP 200) response body of
// POST /_build.
type RemoteBuildResponse struct {
	JobID string `json:"job_id"`
}

// TaskStatus is the terminal/non-terminal state reported by the remote
// build service for a submitted job.
type TaskStatus string

const (
	TaskRunning   TaskStatus = "RUNNING_INDEX_BUILD"
	TaskCompleted TaskStatus = "COMPLETED_INDEX_BUILD"
	TaskFailed    TaskStatus = "FAILED_INDEX_BUILD"
)

// BuildStatus is the response body of GET /_status/<jobId>.
type BuildStatus struct {
	State     TaskStatus `json:"task_status"`
	IndexPath *string    `json:"index_path"`
	Error     *string    `json:"error"`
}

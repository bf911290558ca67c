package buildclient

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lattice-search/vecbuild/pkg/secret"
	"github.com/lattice-search/vecbuild/pkg/types"
)

func TestNew_RequiresEndpoints(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Error("expected error when no endpoints are configured")
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{Endpoints: []string{"https://build.internal"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("expected default HTTP timeout 30s, got %v", c.cfg.HTTPTimeout)
	}
	if c.cfg.MaxAttempts != 4 {
		t.Errorf("expected default max attempts 4, got %d", c.cfg.MaxAttempts)
	}
}

func TestSubmit_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/_build" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"job_id":"job-abc"}`))
	}))
	defer srv.Close()

	c, _ := New(Config{Endpoints: []string{srv.URL}})
	jobID, err := c.Submit(t.Context(), types.RemoteBuildRequest{Engine: "faiss"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if jobID != "job-abc" {
		t.Errorf("expected job-abc, got %s", jobID)
	}
	if !c.registry.has("job-abc") {
		t.Error("expected registry to record the winning endpoint")
	}
}

func TestSubmit_AdvancesPastSaturatedEndpoint(t *testing.T) {
	srv1 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInsufficientStorage)
	}))
	defer srv1.Close()

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"job_id":"job-xyz"}`))
	}))
	defer srv2.Close()

	c, _ := New(Config{Endpoints: []string{srv1.URL, srv2.URL}})
	jobID, err := c.Submit(t.Context(), types.RemoteBuildRequest{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if jobID != "job-xyz" {
		t.Errorf("expected job-xyz from the second endpoint, got %s", jobID)
	}
}

func TestSubmit_AllEndpointsSaturated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInsufficientStorage)
	}))
	defer srv.Close()

	c, _ := New(Config{Endpoints: []string{srv.URL}})
	_, err := c.Submit(t.Context(), types.RemoteBuildRequest{})
	if err == nil {
		t.Error("expected ErrAllEndpointsRejected")
	}
}

func TestSubmit_RetriesOn503(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"job_id":"job-retry"}`))
	}))
	defer srv.Close()

	c, _ := New(Config{Endpoints: []string{srv.URL}, MaxAttempts: 4, RetryBaseDelay: time.Millisecond})
	jobID, err := c.Submit(t.Context(), types.RemoteBuildRequest{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if jobID != "job-retry" {
		t.Errorf("expected job-retry, got %s", jobID)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestSubmit_Authorization(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"job_id":"job-1"}`))
	}))
	defer srv.Close()

	store := secret.New()
	store.Reload("alice", "hunter2")

	c, _ := New(Config{Endpoints: []string{srv.URL}, Credentials: store})
	if _, err := c.Submit(t.Context(), types.RemoteBuildRequest{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:hunter2"))
	if gotAuth != want {
		t.Errorf("expected Authorization %q, got %q", want, gotAuth)
	}
}

func TestStatus_UnknownJob(t *testing.T) {
	c, _ := New(Config{Endpoints: []string{"https://build.internal"}})
	_, err := c.Status(t.Context(), "no-such-job")
	if err == nil || !strings.Contains(err.Error(), "unknown job id") {
		t.Errorf("expected unknown job id error, got %v", err)
	}
}

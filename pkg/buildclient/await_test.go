package buildclient

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAwait_CompletesAfterPolling(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
		if calls < 3 {
			w.Write([]byte(`{"task_status":"RUNNING_INDEX_BUILD","index_path":null,"error":null}`))
			return
		}
		w.Write([]byte(`{"task_status":"COMPLETED_INDEX_BUILD","index_path":"out/index.bin","error":null}`))
	}))
	defer srv.Close()

	c, _ := New(Config{Endpoints: []string{srv.URL}})
	c.registry.put("job-1", srv.URL)

	path, err := c.Await(t.Context(), "job-1", AwaitOptions{Timeout: 5 * time.Second, PollInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if path != "out/index.bin" {
		t.Errorf("expected out/index.bin, got %s", path)
	}
	if c.registry.has("job-1") {
		t.Error("expected job removed from registry after COMPLETED")
	}
}

func TestAwait_ReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"task_status":"FAILED_INDEX_BUILD","index_path":null,"error":"disk full"}`))
	}))
	defer srv.Close()

	c, _ := New(Config{Endpoints: []string{srv.URL}})
	c.registry.put("job-1", srv.URL)

	_, err := c.Await(t.Context(), "job-1", AwaitOptions{Timeout: 5 * time.Second, PollInterval: time.Millisecond})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected error wrapping disk full, got %v", err)
	}
	if c.registry.has("job-1") {
		t.Error("expected job removed from registry after FAILED")
	}
}

func TestAwait_TimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"task_status":"RUNNING_INDEX_BUILD","index_path":null,"error":null}`))
	}))
	defer srv.Close()

	c, _ := New(Config{Endpoints: []string{srv.URL}})
	c.registry.put("job-1", srv.URL)

	_, err := c.Await(t.Context(), "job-1", AwaitOptions{Timeout: 20 * time.Millisecond, PollInterval: 5 * time.Millisecond})
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestAwait_ProtocolViolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"task_status":"UNKNOWN_STATE","index_path":null,"error":null}`))
	}))
	defer srv.Close()

	c, _ := New(Config{Endpoints: []string{srv.URL}})
	c.registry.put("job-1", srv.URL)

	_, err := c.Await(t.Context(), "job-1", AwaitOptions{Timeout: 5 * time.Second, PollInterval: time.Millisecond})
	if err == nil || !strings.Contains(err.Error(), "protocol violation") {
		t.Errorf("expected protocol violation error, got %v", err)
	}
}

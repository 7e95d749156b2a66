package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/pipeline"
	"github.com/lysyi3m/rss-relay/app/rejects"
	"github.com/lysyi3m/rss-relay/app/tasks"
)

type staticConfig struct {
	feedConfig *feed.Config
}

func (s staticConfig) Config() *feed.Config {
	return s.feedConfig
}

type mockScheduler struct {
	triggers []string
	err      error
}

func (m *mockScheduler) Start() {}
func (m *mockScheduler) Stop()  {}

func (m *mockScheduler) EnqueueTask(task tasks.TaskInterface) error {
	return m.err
}

func (m *mockScheduler) EnqueueRun(trigger string) error {
	if m.err != nil {
		return m.err
	}
	m.triggers = append(m.triggers, trigger)
	return nil
}

func newTestServer(t *testing.T, apiAccessKey string) (http.Handler, *mockScheduler, *rejects.MemoryLog) {
	t.Helper()

	feedConfig := &feed.Config{
		Feeds:    []feed.Source{{Name: "lenta", URL: "https://lenta.example/rss"}},
		Keywords: []string{"танк"},
		Channels: []string{"@channel"},
	}

	history := tasks.NewRunHistory()
	history.Record(&pipeline.Report{Candidates: 5, Accepted: 2, Rejected: map[rejects.Reason]int{rejects.ReasonDuplicate: 3}}, nil)

	rejectLog := rejects.NewMemoryLog()
	for _, title := range []string{"one", "two", "three"} {
		rejectLog.Append(context.Background(), rejects.Record{Title: title, Link: "https://example.com/" + title, Reason: rejects.ReasonDuplicate, Time: time.Now()})
	}

	scheduler := &mockScheduler{}
	handler := NewHandler(staticConfig{feedConfig}, history, rejectLog, scheduler, false)

	return NewServer(handler, apiAccessKey), scheduler, rejectLog
}

func doRequest(server http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	server, _, _ := newTestServer(t, "")

	w := doRequest(server, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["feeds"] != float64(1) || body["status"] != "ok" {
		t.Errorf("Unexpected health body: %v", body)
	}
}

func TestServer_Stats(t *testing.T) {
	server, _, _ := newTestServer(t, "")

	w := doRequest(server, http.MethodGet, "/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var stats tasks.RunStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	if stats.Runs != 1 || stats.LastRun == nil || stats.LastRun.Accepted != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

type countingLog struct {
	*rejects.MemoryLog
	counts map[rejects.Reason]int
}

func (l countingLog) CountByReason(ctx context.Context) (map[rejects.Reason]int, error) {
	return l.counts, nil
}

func TestServer_StatsRejectCounts(t *testing.T) {
	rejectLog := countingLog{
		MemoryLog: rejects.NewMemoryLog(),
		counts:    map[rejects.Reason]int{rejects.ReasonDuplicate: 4, rejects.ReasonNoKeywordMatch: 9},
	}
	handler := NewHandler(staticConfig{&feed.Config{}}, tasks.NewRunHistory(), rejectLog, &mockScheduler{}, false)
	server := NewServer(handler, "")

	w := doRequest(server, http.MethodGet, "/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body struct {
		RejectsByReason map[string]int `json:"rejects_by_reason"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	if body.RejectsByReason["duplicate"] != 4 || body.RejectsByReason["no-keyword-match"] != 9 {
		t.Errorf("Unexpected reject counts: %v", body.RejectsByReason)
	}
}

func TestServer_StatsWithoutCounter(t *testing.T) {
	server, _, _ := newTestServer(t, "")

	w := doRequest(server, http.MethodGet, "/stats", nil)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	if _, ok := body["rejects_by_reason"]; ok {
		t.Errorf("Did not expect reject counts from a plain reject log: %v", body)
	}
}

func TestServer_Metrics(t *testing.T) {
	server, _, _ := newTestServer(t, "")

	w := doRequest(server, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("Expected Prometheus exposition format")
	}
}

func TestServer_APIDisabledWithoutKey(t *testing.T) {
	server, _, _ := newTestServer(t, "")

	w := doRequest(server, http.MethodGet, "/api/rejects", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 when API is disabled, got %d", w.Code)
	}
}

func TestServer_Auth(t *testing.T) {
	server, _, _ := newTestServer(t, "secret")

	tests := []struct {
		name     string
		headers  map[string]string
		wantCode int
	}{
		{name: "missing key", headers: nil, wantCode: http.StatusUnauthorized},
		{name: "wrong key", headers: map[string]string{"X-API-Key": "nope"}, wantCode: http.StatusUnauthorized},
		{name: "header key", headers: map[string]string{"X-API-Key": "secret"}, wantCode: http.StatusOK},
		{name: "bearer token", headers: map[string]string{"Authorization": "Bearer secret"}, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(server, http.MethodGet, "/api/rejects", tt.headers)
			if w.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestServer_ListRejects(t *testing.T) {
	server, _, _ := newTestServer(t, "secret")
	auth := map[string]string{"X-API-Key": "secret"}

	w := doRequest(server, http.MethodGet, "/api/rejects?limit=2", auth)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body struct {
		Rejects []rejects.Record `json:"rejects"`
		Total   int              `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Total != 2 || body.Rejects[0].Title != "two" || body.Rejects[1].Title != "three" {
		t.Errorf("Expected the two newest rejects, got %+v", body.Rejects)
	}

	w = doRequest(server, http.MethodGet, "/api/rejects?limit=abc", auth)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid limit, got %d", w.Code)
	}
}

func TestServer_TriggerRun(t *testing.T) {
	server, scheduler, _ := newTestServer(t, "secret")
	auth := map[string]string{"X-API-Key": "secret"}

	w := doRequest(server, http.MethodPost, "/api/run", auth)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}
	if len(scheduler.triggers) != 1 || scheduler.triggers[0] != tasks.TriggerAPI {
		t.Errorf("Expected one API-triggered run, got %v", scheduler.triggers)
	}

	scheduler.err = tasks.ErrQueueFull
	w = doRequest(server, http.MethodPost, "/api/run", auth)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 when queue is full, got %d", w.Code)
	}
}

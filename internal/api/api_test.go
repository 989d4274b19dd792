package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/lzjever/mbos-wso/internal/api/middleware"
	"github.com/lzjever/mbos-wso/internal/core"
	"github.com/lzjever/mbos-wso/internal/kube"
	"github.com/lzjever/mbos-wso/internal/lifecycle"
	"github.com/lzjever/mbos-wso/internal/meta"
	"github.com/lzjever/mbos-wso/internal/pipeline"
	"github.com/lzjever/mbos-wso/internal/spec"
)

func newTestAPI() (*API, http.Handler) {
	client := fake.NewSimpleClientset()
	gw := kube.NewGateway(client, "workspaces")
	store := meta.NewStore(gw)
	tracker := pipeline.NewTracker()
	manager := lifecycle.NewManager(gw, store, tracker, spec.Defaults{
		Image:    "codercom/code-server:latest",
		DiskSize: "10Gi",
	}, zap.NewNop())
	a := NewAPI(gw, store, manager, nil, zap.NewNop())
	return a, a.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %s", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// waitDone blocks until the creation run for uid reaches a terminal state.
func waitDone(t *testing.T, a *API, uid string) {
	t.Helper()
	events, cancel := a.manager.Tracker().Subscribe(uid)
	defer cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type == pipeline.EventDone {
				return
			}
		case <-deadline:
			t.Fatal("creation run did not finish")
		}
	}
}

func TestHealthHandler(t *testing.T) {
	_, h := newTestAPI()

	w := doJSON(t, h, "GET", "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("expected body OK, got %s", w.Body.String())
	}

	w = doJSON(t, h, "GET", "/readyz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, core.NewAppError(core.ErrBadRequest, "test error"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %s", err)
	}
	if resp.Code != "WSO_BAD_REQUEST" {
		t.Errorf("expected code WSO_BAD_REQUEST, got %s", resp.Code)
	}
}

func TestCreateWorkspaceAccepted(t *testing.T) {
	a, h := newTestAPI()

	w := doJSON(t, h, "POST", "/v1/workspaces", map[string]interface{}{
		"name":  "demo",
		"repo":  "https://example.com/org/demo.git",
		"owner": "alice",
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %s", err)
	}
	uid := resp["uid"]
	if uid == "" {
		t.Fatal("expected a uid in the response")
	}

	waitDone(t, a, uid)

	w = doJSON(t, h, "GET", "/v1/workspaces/demo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var ws core.Workspace
	if err := json.Unmarshal(w.Body.Bytes(), &ws); err != nil {
		t.Fatalf("failed to parse workspace: %s", err)
	}
	if ws.UID != uid {
		t.Errorf("expected uid %s, got %s", uid, ws.UID)
	}
}

func TestCreateWorkspaceInvalidBody(t *testing.T) {
	_, h := newTestAPI()

	req := httptest.NewRequest("POST", "/v1/workspaces", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestCreateWorkspaceInvalidName(t *testing.T) {
	_, h := newTestAPI()

	w := doJSON(t, h, "POST", "/v1/workspaces", map[string]interface{}{
		"name": "Not_Valid",
		"repo": "https://example.com/org/demo.git",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetWorkspaceNotFound(t *testing.T) {
	_, h := newTestAPI()

	w := doJSON(t, h, "GET", "/v1/workspaces/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %s", err)
	}
	if resp.Code != "WSO_NOT_FOUND" {
		t.Errorf("expected code WSO_NOT_FOUND, got %s", resp.Code)
	}
}

func TestWorkspaceStopStartCycle(t *testing.T) {
	a, h := newTestAPI()

	w := doJSON(t, h, "POST", "/v1/workspaces", map[string]interface{}{
		"name": "cycle",
		"repo": "https://example.com/org/cycle.git",
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("create: expected 202, got %d", w.Code)
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	waitDone(t, a, resp["uid"])

	w = doJSON(t, h, "POST", "/v1/workspaces/cycle:stop", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, h, "POST", "/v1/workspaces/cycle:start", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, h, "DELETE", "/v1/workspaces/cycle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreationSnapshotAfterRun(t *testing.T) {
	a, h := newTestAPI()

	w := doJSON(t, h, "POST", "/v1/workspaces", map[string]interface{}{
		"name": "snap",
		"repo": "https://example.com/org/snap.git",
	})
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	uid := resp["uid"]
	waitDone(t, a, uid)

	w = doJSON(t, h, "GET", "/v1/workspaces/"+uid+"/creation", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var snap creationSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to parse snapshot: %s", err)
	}
	if snap.Status != pipeline.RunCompleted {
		t.Errorf("expected completed run, got %q", snap.Status)
	}
	if snap.Active {
		t.Error("expected inactive run")
	}
	if len(snap.Steps) != 4 {
		t.Errorf("expected 4 steps, got %d", len(snap.Steps))
	}
	for _, step := range snap.Steps {
		if step.Status != pipeline.StatusCompleted {
			t.Errorf("step %s: expected completed, got %s", step.ID, step.Status)
		}
	}
	if len(snap.Log) == 0 {
		t.Error("expected a non-empty log")
	}
}

func TestCreationSnapshotUnknownUID(t *testing.T) {
	_, h := newTestAPI()

	w := doJSON(t, h, "GET", "/v1/workspaces/ffffffffffff/creation", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestStreamCreationDeliversDone(t *testing.T) {
	a, h := newTestAPI()

	w := doJSON(t, h, "POST", "/v1/workspaces", map[string]interface{}{
		"name": "stream",
		"repo": "https://example.com/org/stream.git",
	})
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	uid := resp["uid"]
	waitDone(t, a, uid)

	// The run is terminal; the stream replays everything and ends with done.
	w = doJSON(t, h, "GET", "/v1/workspaces/"+uid+"/creation/stream", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %s", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "event: steps") {
		t.Error("expected a steps event in the stream")
	}
	if !strings.Contains(body, "event: done") {
		t.Error("expected a done event in the stream")
	}
}

func TestBulkEndpoint(t *testing.T) {
	a, h := newTestAPI()

	for _, name := range []string{"bulk-a", "bulk-b"} {
		w := doJSON(t, h, "POST", "/v1/workspaces", map[string]interface{}{
			"name": name,
			"repo": "https://example.com/org/" + name + ".git",
		})
		var resp map[string]string
		json.Unmarshal(w.Body.Bytes(), &resp)
		waitDone(t, a, resp["uid"])
	}

	w := doJSON(t, h, "POST", "/v1/bulk", map[string]interface{}{
		"action":  "stop",
		"targets": []string{"bulk-a", "bulk-b"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var result lifecycle.BulkResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse result: %s", err)
	}
	if !result.OK || len(result.Results) != 2 {
		t.Errorf("expected 2 ok results, got %+v", result)
	}
}

func TestBulkRejectsResize(t *testing.T) {
	_, h := newTestAPI()

	w := doJSON(t, h, "POST", "/v1/bulk", map[string]interface{}{
		"action":  "resize",
		"targets": []string{"a"},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestScheduleEndpoints(t *testing.T) {
	_, h := newTestAPI()

	w := doJSON(t, h, "PUT", "/v1/schedules", map[string]interface{}{
		"workspace": "demo",
		"action":    "stop",
		"days":      []int{1, 2, 3, 4, 5},
		"hour":      18,
		"minute":    0,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, "GET", "/v1/schedules", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	var listing struct {
		Schedules []core.Schedule `json:"schedules"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("failed to parse schedules: %s", err)
	}
	if len(listing.Schedules) != 1 || listing.Schedules[0].Hour != 18 {
		t.Errorf("unexpected schedules: %+v", listing.Schedules)
	}

	w = doJSON(t, h, "DELETE", "/v1/schedules", map[string]interface{}{
		"workspace": "demo",
		"action":    "stop",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, "GET", "/v1/schedules", nil)
	json.Unmarshal(w.Body.Bytes(), &listing)
	if len(listing.Schedules) != 0 {
		t.Errorf("expected no schedules after delete, got %+v", listing.Schedules)
	}
}

func TestScheduleValidationRejected(t *testing.T) {
	_, h := newTestAPI()

	w := doJSON(t, h, "PUT", "/v1/schedules", map[string]interface{}{
		"workspace": "demo",
		"action":    "stop",
		"days":      []int{9},
		"hour":      18,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestExpiryEndpoints(t *testing.T) {
	_, h := newTestAPI()

	w := doJSON(t, h, "GET", "/v1/expiry", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp map[string]int
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["days"] != meta.DefaultExpiryDays {
		t.Errorf("expected default %d days, got %d", meta.DefaultExpiryDays, resp["days"])
	}

	w = doJSON(t, h, "PUT", "/v1/expiry", map[string]int{"days": 14})
	if w.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, "GET", "/v1/expiry", nil)
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["days"] != 14 {
		t.Errorf("expected 14 days, got %d", resp["days"])
	}

	w = doJSON(t, h, "PUT", "/v1/expiry", map[string]int{"days": 0})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestPresetEndpoints(t *testing.T) {
	_, h := newTestAPI()

	w := doJSON(t, h, "POST", "/v1/presets", map[string]interface{}{
		"name": "golang",
		"repo": "https://example.com/templates/golang.git",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var saved core.Preset
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatalf("failed to parse preset: %s", err)
	}
	if saved.ID == "" {
		t.Fatal("expected an assigned preset id")
	}

	w = doJSON(t, h, "GET", "/v1/presets", nil)
	var listing struct {
		Presets []core.Preset `json:"presets"`
	}
	json.Unmarshal(w.Body.Bytes(), &listing)
	if len(listing.Presets) != 1 {
		t.Fatalf("expected 1 preset, got %d", len(listing.Presets))
	}

	w = doJSON(t, h, "DELETE", "/v1/presets/"+saved.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTasksEndpoint(t *testing.T) {
	a, h := newTestAPI()

	w := doJSON(t, h, "POST", "/v1/workspaces", map[string]interface{}{
		"name": "tasked",
		"repo": "https://example.com/org/tasked.git",
	})
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	waitDone(t, a, resp["uid"])

	doJSON(t, h, "POST", "/v1/workspaces/tasked:stop", nil)

	w = doJSON(t, h, "GET", "/v1/tasks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var listing struct {
		Tasks []core.TaskEntry `json:"tasks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("failed to parse tasks: %s", err)
	}
	if len(listing.Tasks) == 0 {
		t.Error("expected at least one recorded task")
	}
}

func TestRateLimitExceeded(t *testing.T) {
	client := fake.NewSimpleClientset()
	gw := kube.NewGateway(client, "workspaces")
	store := meta.NewStore(gw)
	tracker := pipeline.NewTracker()
	manager := lifecycle.NewManager(gw, store, tracker, spec.Defaults{
		Image:    "codercom/code-server:latest",
		DiskSize: "10Gi",
	}, zap.NewNop())
	limiter := middleware.NewRateLimiter(time.Minute, 3)
	defer limiter.Close()
	a := NewAPI(gw, store, manager, limiter, zap.NewNop())
	h := a.Router()

	var last int
	for i := 0; i < 4; i++ {
		w := doJSON(t, h, "GET", "/v1/workspaces", nil)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected status 429 on the fourth request, got %d", last)
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/rkgkit/pkg/frames"
	"github.com/ssargent/rkgkit/pkg/rkg"
	"github.com/ssargent/rkgkit/pkg/storage"
)

const testAPIKey = "test-key"

// setupTestRouter creates a router over a temporary pebble archive
func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()

	archive, err := storage.NewGhostStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create ghost store: %v", err)
	}
	t.Cleanup(func() { archive.Close() })

	reg := prometheus.NewRegistry()
	server := NewServer(archive, ServerConfig{APIKey: testAPIKey}, NewMetrics(reg))
	return NewRouter(server, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

func testFramesCSV(t *testing.T, n int) string {
	t.Helper()

	inputs := make([]rkg.Input, n)
	for i := range inputs {
		inputs[i] = rkg.Input{
			Accelerate: true,
			Brake:      i%50 > 40,
			Item:       i%97 == 0,
			StickX:     (i/20)%15 - 7,
			StickY:     0,
			Trick:      0,
		}
	}

	var buf bytes.Buffer
	if err := frames.NewSequence(inputs).WriteCSV(&buf); err != nil {
		t.Fatalf("Failed to write frames: %v", err)
	}
	return buf.String()
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}
	if err := json.Unmarshal(resp.Data, dst); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
}

func createGhost(t *testing.T, h http.Handler, csv string) GhostResponse {
	t.Helper()
	w := do(t, h, "POST", "/api/v1/ghosts?track=8&vehicle=1&character=22&drift=1", strings.NewReader(csv))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var ghost GhostResponse
	decodeData(t, w, &ghost)
	return ghost
}

func TestServer_handleHealth(t *testing.T) {
	h := setupTestRouter(t)

	w := do(t, h, "GET", "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var data map[string]string
	decodeData(t, w, &data)
	if data["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %q", data["status"])
	}
}

func TestServer_RequiresAPIKey(t *testing.T) {
	h := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/ghosts", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestServer_CreateGhost(t *testing.T) {
	h := setupTestRouter(t)

	ghost := createGhost(t, h, testFramesCSV(t, 600))

	if _, err := ksuid.Parse(ghost.ID); err != nil {
		t.Errorf("Expected a KSUID, got %q: %v", ghost.ID, err)
	}
	if ghost.Size != rkg.FileSize {
		t.Errorf("Expected size %d, got %d", rkg.FileSize, ghost.Size)
	}
	if ghost.Frames != 600 {
		t.Errorf("Expected 600 frames, got %d", ghost.Frames)
	}
	want := rkg.Metadata{TrackID: 8, VehicleID: 1, CharacterID: 22, DriftID: 1}
	if ghost.Header.Metadata != want {
		t.Errorf("Expected metadata %+v, got %+v", want, ghost.Header.Metadata)
	}
	if ghost.Header.FaceTuples == 0 || ghost.Header.DirectionTuples == 0 || ghost.Header.TrickTuples == 0 {
		t.Errorf("Expected tuples in every channel, got %+v", ghost.Header)
	}
}

func TestServer_CreateGhost_BadRequest(t *testing.T) {
	h := setupTestRouter(t)
	csv := testFramesCSV(t, 10)

	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"track out of range", "/api/v1/ghosts?track=64", csv},
		{"drift out of range", "/api/v1/ghosts?drift=2", csv},
		{"non numeric metadata", "/api/v1/ghosts?vehicle=kart", csv},
		{"malformed frame", "/api/v1/ghosts", "1,0,0,0,0\n"},
		{"stick out of range", "/api/v1/ghosts", "1,0,0,9,0,0\n"},
		{"no frames", "/api/v1/ghosts", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", tt.target, strings.NewReader(tt.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestServer_GetGhost(t *testing.T) {
	h := setupTestRouter(t)
	ghost := createGhost(t, h, testFramesCSV(t, 300))

	w := do(t, h, "GET", "/api/v1/ghosts/"+ghost.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("Expected octet-stream, got %s", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), ghost.ID+".rkg") {
		t.Errorf("Unexpected Content-Disposition %q", w.Header().Get("Content-Disposition"))
	}

	file, err := rkg.ParseFile(w.Body.Bytes())
	if err != nil {
		t.Fatalf("Downloaded ghost does not parse: %v", err)
	}
	if file.Header.TrackID != 8 {
		t.Errorf("Expected track 8, got %d", file.Header.TrackID)
	}
}

func TestServer_GetGhostFrames(t *testing.T) {
	h := setupTestRouter(t)
	csv := testFramesCSV(t, 1000)
	ghost := createGhost(t, h, csv)

	w := do(t, h, "GET", "/api/v1/ghosts/"+ghost.ID+"/frames", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("X-Ghost-Truncated") != "" {
		t.Error("Expected a complete decode")
	}
	if w.Body.String() != csv {
		t.Error("Decoded frames differ from the uploaded frames")
	}
}

func TestServer_GhostNotFound(t *testing.T) {
	h := setupTestRouter(t)
	missing := ksuid.New().String()

	for _, target := range []string{"/api/v1/ghosts/" + missing, "/api/v1/ghosts/" + missing + "/frames"} {
		w := do(t, h, "GET", target, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected status 404, got %d", target, w.Code)
		}
	}

	w := do(t, h, "DELETE", "/api/v1/ghosts/"+missing, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestServer_InvalidGhostID(t *testing.T) {
	h := setupTestRouter(t)

	w := do(t, h, "GET", "/api/v1/ghosts/not-a-ksuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestServer_ListAndDelete(t *testing.T) {
	h := setupTestRouter(t)
	csv := testFramesCSV(t, 50)

	created := map[string]bool{}
	for i := 0; i < 3; i++ {
		created[createGhost(t, h, csv).ID] = true
	}

	var ids []string
	decodeData(t, do(t, h, "GET", "/api/v1/ghosts", nil), &ids)
	if len(ids) != 3 {
		t.Fatalf("Expected 3 ghosts, got %d", len(ids))
	}
	for _, id := range ids {
		if !created[id] {
			t.Errorf("Unexpected ghost %s", id)
		}
	}

	w := do(t, h, "DELETE", "/api/v1/ghosts/"+ids[0], nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w = do(t, h, "GET", "/api/v1/ghosts/"+ids[0], nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}

	decodeData(t, do(t, h, "GET", "/api/v1/ghosts", nil), &ids)
	if len(ids) != 2 {
		t.Errorf("Expected 2 ghosts after delete, got %d", len(ids))
	}
}

func TestServer_Decode(t *testing.T) {
	h := setupTestRouter(t)
	csv := testFramesCSV(t, 400)

	seq, err := frames.ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Failed to read frames: %v", err)
	}
	file, err := rkg.CreateFile(seq, rkg.Metadata{TrackID: 3})
	if err != nil {
		t.Fatalf("Failed to create ghost: %v", err)
	}

	w := do(t, h, "POST", "/api/v1/decode", bytes.NewReader(file))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var result DecodeResponse
	decodeData(t, w, &result)
	if result.Frames != 400 || result.Truncated {
		t.Errorf("Expected 400 complete frames, got %d (truncated=%v)", result.Frames, result.Truncated)
	}
	if result.CSV != csv {
		t.Error("Decoded frames differ from the encoded frames")
	}
	if result.Checksum != fmt.Sprintf("%08x", rkg.Checksum(file)) {
		t.Errorf("Unexpected checksum %s", result.Checksum)
	}
	if result.Header.TrackID != 3 {
		t.Errorf("Expected track 3, got %d", result.Header.TrackID)
	}
}

func TestServer_Decode_Rejects(t *testing.T) {
	h := setupTestRouter(t)

	seq, err := frames.ReadCSV(strings.NewReader(testFramesCSV(t, 20)))
	if err != nil {
		t.Fatalf("Failed to read frames: %v", err)
	}
	good, err := rkg.CreateFile(seq, rkg.Metadata{})
	if err != nil {
		t.Fatalf("Failed to create ghost: %v", err)
	}

	corrupt := append([]byte(nil), good...)
	corrupt[rkg.HeaderSize+rkg.InputHeaderSize] ^= 0xFF

	tests := []struct {
		name string
		body []byte
	}{
		{"short file", good[:100]},
		{"corrupt checksum", corrupt},
		{"oversized file", append(append([]byte(nil), good...), 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/api/v1/decode", bytes.NewReader(tt.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	h := setupTestRouter(t)
	createGhost(t, h, testFramesCSV(t, 30))

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{
		"rkgkit_codec_operations_total",
		"rkgkit_frames_processed_total",
		"rkgkit_tuples_total",
		"rkgkit_http_requests_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("Expected metric %s to be exported", name)
		}
	}
}

func TestServer_NilMetrics(t *testing.T) {
	archive, err := storage.NewGhostStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create ghost store: %v", err)
	}
	defer archive.Close()

	server := NewServer(archive, ServerConfig{}, nil)

	req := httptest.NewRequest("POST", "/ghosts", strings.NewReader(testFramesCSV(t, 5)))
	w := httptest.NewRecorder()
	server.handleCreateGhost(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

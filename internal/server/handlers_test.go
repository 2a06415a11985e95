package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperjump/synapse/internal/config"
	"github.com/hyperjump/synapse/internal/extract"
	"github.com/hyperjump/synapse/internal/ingest"
	"github.com/hyperjump/synapse/internal/models"
	"github.com/hyperjump/synapse/internal/retrieval"
	"github.com/hyperjump/synapse/internal/store"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	pipeline := ingest.NewPipeline(mem, extract.NewExtractor(), cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	orch := retrieval.NewOrchestrator(mem, nil)
	return NewServer(orch, pipeline, mem, cfg, zap.NewNop()), mem
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleRoot(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["service"] != "synapse" {
		t.Errorf("service: got %v", body["service"])
	}
}

func TestHandleSearch_EmptyQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/search", models.SearchQuery{Query: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleSearch_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleSearch_RoundTrip(t *testing.T) {
	srv, mem := newTestServer(t)
	err := mem.Add(context.Background(), []models.Fragment{
		{ID: "alice_notes_0", Text: "the derivative of x squared", Source: "notes", UserID: "alice", Domain: "math"},
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, srv.Router(), http.MethodPost, "/search", models.SearchQuery{
		Query: "derivative", UserID: "alice", Domain: "math",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Chunks) != 1 || resp.Chunks[0].ID != "alice_notes_0" {
		t.Errorf("chunks: %+v", resp.Chunks)
	}
	if resp.UserID != "alice" || resp.Domain != "math" {
		t.Errorf("scope echo: user=%q domain=%q", resp.UserID, resp.Domain)
	}
}

func TestHandleSearch_ChunksNeverNull(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/search", models.SearchQuery{Query: "nothing stored"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"chunks":null`) {
		t.Error("chunks serialized as null instead of []")
	}
}

func TestHandleIngestText(t *testing.T) {
	srv, mem := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/ingest-text", models.IngestTextInput{
		Text: "photosynthesis converts light into chemical energy",
		SourceName: "biology.txt", UserID: "bob", Domain: "science",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ChunksAdded int    `json:"chunks_added"`
		SourceName  string `json:"source_name"`
		UserID      string `json:"user_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ChunksAdded != 1 || resp.UserID != "bob" || resp.SourceName != "biology.txt" {
		t.Errorf("response: %+v", resp)
	}
	n, _ := mem.Count(context.Background())
	if n != 1 {
		t.Errorf("stored fragments: %d", n)
	}
}

func TestHandleIngestText_DefaultSourceAndScope(t *testing.T) {
	srv, mem := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/ingest-text", models.IngestTextInput{Text: "unattributed text"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	got, _ := mem.Query(context.Background(), "unattributed", 5, store.Filter{})
	if len(got) != 1 {
		t.Fatalf("fragments: %d", len(got))
	}
	if got[0].Source != "uploaded" || got[0].UserID != models.GlobalUser {
		t.Errorf("defaults: %+v", got[0])
	}
}

func TestHandleIngestFile(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/ingest-file", models.IngestFileInput{
		Base64Data: base64.StdEncoding.EncodeToString([]byte("file contents here")),
		Filename:   "upload.txt",
		UserID:     "carol",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ChunksAdded int    `json:"chunks_added"`
		Filename    string `json:"filename"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ChunksAdded != 1 || resp.Filename != "upload.txt" {
		t.Errorf("response: %+v", resp)
	}
}

func TestHandleIngestFile_BadBase64(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/ingest-file", models.IngestFileInput{
		Base64Data: "!!! not base64 !!!",
		Filename:   "upload.txt",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleIngestFile_MissingFilename(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/ingest-file", models.IngestFileInput{
		Base64Data: base64.StdEncoding.EncodeToString([]byte("data")),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleIngestFile_Unsupported(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/ingest-file", models.IngestFileInput{
		Base64Data: base64.StdEncoding.EncodeToString([]byte{0x00, 0x01}),
		Filename:   "archive.tar.gz",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleIngestFile_CorruptFile(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/ingest-file", models.IngestFileInput{
		Base64Data: base64.StdEncoding.EncodeToString([]byte("not a zip archive")),
		Filename:   "report.docx",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want 422", rec.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv, mem := newTestServer(t)
	err := mem.Add(context.Background(), []models.Fragment{
		{ID: "a_b_0", Text: "t", Source: "b", UserID: "a", Domain: "d"},
	})
	if err != nil {
		t.Fatal(err)
	}
	rec := doJSON(t, srv.Router(), http.MethodGet, "/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var resp struct {
		Fragments int `json:"fragments"`
		Config    struct {
			ChunkSize   int  `json:"chunk_size"`
			WebFallback bool `json:"web_fallback"`
		} `json:"config"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Fragments != 1 {
		t.Errorf("fragments: %d", resp.Fragments)
	}
	if resp.Config.ChunkSize != config.DefaultChunkSize {
		t.Errorf("chunk_size: %d", resp.Config.ChunkSize)
	}
	if resp.Config.WebFallback {
		t.Error("web_fallback should be false without an API key")
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status: %d", rec.Code)
	}
}

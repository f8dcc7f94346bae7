package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/paperdigest/internal/digest"
	"github.com/dgallion1/paperdigest/internal/llm"
	"github.com/dgallion1/paperdigest/internal/pipeline"
)

const testKey = "test-key"

type testEnv struct {
	srv  *httptest.Server
	orch *pipeline.Orchestrator
}

func newTestEnv(t *testing.T, start bool) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend := llm.ClientFunc(func(ctx context.Context, req llm.Request) (string, error) {
		return "generated text", nil
	})
	client := llm.NewInstrumented(backend, "fake", "fake-model", log)

	svc := digest.New(client, digest.Options{}, log)
	svc.Wait = func(context.Context, time.Duration) error { return nil }

	orch := pipeline.NewOrchestrator(pipeline.Options{WorkerCount: 1, MaxQueueSize: 4, JobTTL: time.Hour}, svc, log)
	if start {
		if err := orch.Start(context.Background()); err != nil {
			t.Fatalf("start orchestrator: %v", err)
		}
		t.Cleanup(orch.Stop)
	}

	api := NewServer(orch, client, log, Options{APIKey: testKey, MaxUploadBytes: 1024})
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, orch: orch}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

type upload struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(f.data)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

const paperText = "Abstract\nA short study.\n\nResults\nIt works."

func TestHealth_NoAuth(t *testing.T) {
	env := newTestEnv(t, false)
	resp, err := http.Get(env.srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic " + testKey},
		{"wrong key", "Bearer nope"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/stats/llm", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("do: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", resp.StatusCode)
			}
		})
	}
}

func TestSummarize_EndToEnd(t *testing.T) {
	env := newTestEnv(t, true)

	body, ct := multipartBody(t, map[string]string{"title": "My Paper"}, upload{"file", "paper.txt", []byte(paperText)})
	resp, out := env.do(t, http.MethodPost, "/api/summarize", body, ct)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %v", resp.StatusCode, out)
	}
	jobID, _ := out["job_id"].(string)
	if jobID == "" || out["poll_url"] != "/api/jobs/"+jobID+"/status" {
		t.Fatalf("unexpected accept body %v", out)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, out = env.do(t, http.MethodGet, "/api/jobs/"+jobID+"/result", nil, "")
		if resp.StatusCode != http.StatusConflict {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish: %v", out)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, out)
	}
	if out["title"] != "My Paper" || out["summary"] != "generated text" {
		t.Errorf("unexpected result %v", out)
	}
	info, _ := out["key_info"].(map[string]any)
	for _, k := range []string{"contributions", "methodology", "results"} {
		if _, ok := info[k]; !ok {
			t.Errorf("key_info missing %q: %v", k, info)
		}
	}

	resp, out = env.do(t, http.MethodGet, "/api/jobs/"+jobID+"/status", nil, "")
	if resp.StatusCode != http.StatusOK || out["status"] != "completed" {
		t.Errorf("unexpected status response %d %v", resp.StatusCode, out)
	}

	resp, out = env.do(t, http.MethodGet, "/api/stats/llm", nil, "")
	if resp.StatusCode != http.StatusOK || out["provider"] != "fake" {
		t.Errorf("unexpected stats response %d %v", resp.StatusCode, out)
	}
}

func TestSummarize_Validation(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name   string
		fields map[string]string
		file   *upload
		want   int
	}{
		{"no file", nil, nil, http.StatusBadRequest},
		{"unsupported type", nil, &upload{"file", "sheet.xlsx", []byte("x")}, http.StatusBadRequest},
		{"fake pdf", nil, &upload{"file", "paper.pdf", []byte("hello")}, http.StatusBadRequest},
		{"too large", nil, &upload{"file", "big.txt", bytes.Repeat([]byte("a"), 2048)}, http.StatusRequestEntityTooLarge},
		{"bad max_words", map[string]string{"max_words": "-1"}, &upload{"file", "p.txt", []byte("x")}, http.StatusBadRequest},
		{"bad extract", map[string]string{"extract": "maybe"}, &upload{"file", "p.txt", []byte("x")}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var files []upload
			if tc.file != nil {
				files = append(files, *tc.file)
			}
			body, ct := multipartBody(t, tc.fields, files...)
			resp, out := env.do(t, http.MethodPost, "/api/summarize", body, ct)
			if resp.StatusCode != tc.want {
				t.Errorf("expected %d, got %d: %v", tc.want, resp.StatusCode, out)
			}
			if _, ok := out["error"]; !ok {
				t.Errorf("expected json error body, got %v", out)
			}
		})
	}
}

func TestJobResult_Pending(t *testing.T) {
	env := newTestEnv(t, false)

	job := pipeline.NewJob("paper.txt", "", []byte(paperText), pipeline.JobOptions{})
	if err := env.orch.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	resp, out := env.do(t, http.MethodGet, "/api/jobs/"+job.ID+"/result", nil, "")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for a queued job, got %d: %v", resp.StatusCode, out)
	}

	resp, _ = env.do(t, http.MethodGet, "/api/jobs/unknown/status", nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestBatchSummarize(t *testing.T) {
	env := newTestEnv(t, false)

	body, ct := multipartBody(t, map[string]string{"extract": "false"},
		upload{"files", "a.txt", []byte(paperText)},
		upload{"files", "b.csv", []byte("x,y")},
	)
	resp, out := env.do(t, http.MethodPost, "/api/summarize/batch", body, ct)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %v", resp.StatusCode, out)
	}
	jobs, _ := out["jobs"].([]any)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 entries, got %v", out)
	}
	first, _ := jobs[0].(map[string]any)
	second, _ := jobs[1].(map[string]any)
	if first["job_id"] == nil || first["filename"] != "a.txt" {
		t.Errorf("expected a queued job for a.txt, got %v", first)
	}
	if second["error"] == nil {
		t.Errorf("expected an error for b.csv, got %v", second)
	}

	job := env.orch.GetJob(first["job_id"].(string))
	if job == nil || !job.Options.SkipExtract {
		t.Errorf("expected extract=false to be forwarded, got %+v", job)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"paper.pdf":            "paper.pdf",
		"../../etc/passwd.txt": "passwd.txt",
		`C:\docs\paper.pdf`:    "paper.pdf",
		"":                     "unnamed",
		"a..b.md":              "a_b.md",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
	if !strings.HasSuffix(sanitizeFilename("/"), "unnamed") {
		t.Error("root path should map to unnamed")
	}
}

func TestRequestLogger_CountsBytes(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("oops"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	if entry["level"] != "WARN" || entry["status"] != float64(502) || entry["bytes"] != float64(4) {
		t.Errorf("unexpected log entry %v", entry)
	}
}

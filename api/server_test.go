package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubAsker struct {
	answer    string
	err       error
	questions []string
}

func (s *stubAsker) Ask(ctx context.Context, question string) (string, error) {
	s.questions = append(s.questions, question)
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

var _ Asker = (*stubAsker)(nil)

type stubIngester struct {
	dirs []string
	err  error
}

func (s *stubIngester) IngestDirectory(ctx context.Context, dir string) error {
	s.dirs = append(s.dirs, dir)
	return s.err
}

var _ Ingester = (*stubIngester)(nil)

func newTestServer(asker Asker) *Server {
	return New(asker, &stubIngester{}, "https://widget.example.com", "data", zap.NewNop())
}

func postAsk(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestAskReturnsAnswer(t *testing.T) {
	asker := &stubAsker{answer: "The Spitfire costs $95,000."}
	rec := postAsk(t, newTestServer(asker), `{"question": "tell me about the P-51"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["answer"] != "The Spitfire costs $95,000." {
		t.Fatalf("unexpected answer: %q", resp["answer"])
	}

	if len(asker.questions) != 1 || asker.questions[0] != "tell me about the P-51" {
		t.Fatalf("unexpected recorded questions: %v", asker.questions)
	}
}

func TestAskRejectsMissingOrEmptyQuestion(t *testing.T) {
	for _, body := range []string{`{}`, `{"question": ""}`, `{"question": "   "}`, ``} {
		asker := &stubAsker{answer: "unused"}
		rec := postAsk(t, newTestServer(asker), body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
		if len(asker.questions) != 0 {
			t.Fatalf("body %q: expected no upstream calls, got %v", body, asker.questions)
		}

		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if _, ok := resp["error"]; !ok {
			t.Fatalf("body %q: expected error key in %s", body, rec.Body.String())
		}
	}
}

func TestAskRejectsNonStringQuestion(t *testing.T) {
	asker := &stubAsker{answer: "unused"}
	rec := postAsk(t, newTestServer(asker), `{"question": 42}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(asker.questions) != 0 {
		t.Fatal("expected no upstream calls for invalid body")
	}
}

func TestAskMethodNotAllowed(t *testing.T) {
	server := newTestServer(&stubAsker{})

	req := httptest.NewRequest(http.MethodGet, "/v1/ask", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestAskPreflight(t *testing.T) {
	server := newTestServer(&stubAsker{})

	req := httptest.NewRequest(http.MethodOptions, "/v1/ask", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty preflight body, got %q", rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://widget.example.com" {
		t.Fatalf("unexpected allow-origin header: %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Fatalf("unexpected allow-methods header: %q", got)
	}
}

func TestAskCORSHeadersOnSuccess(t *testing.T) {
	rec := postAsk(t, newTestServer(&stubAsker{answer: "ok"}), `{"question": "hi"}`)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://widget.example.com" {
		t.Fatalf("unexpected allow-origin header: %q", got)
	}
}

func TestAskUpstreamFailure(t *testing.T) {
	asker := &stubAsker{err: errors.New("completion exploded")}
	rec := postAsk(t, newTestServer(asker), `{"question": "boom"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := resp["error"]; !ok {
		t.Fatalf("expected error key in %s", rec.Body.String())
	}
	if _, ok := resp["answer"]; ok {
		t.Fatalf("did not expect answer key in %s", rec.Body.String())
	}
	if details, ok := resp["details"]; ok && strings.Contains(details.(string), "exploded") {
		t.Fatalf("upstream error leaked to client: %s", rec.Body.String())
	}
}

func TestIngestEndpoint(t *testing.T) {
	ingester := &stubIngester{}
	server := New(&stubAsker{}, ingester, "*", "wiki-data", zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/ingest", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(ingester.dirs) != 1 || ingester.dirs[0] != "wiki-data" {
		t.Fatalf("unexpected ingest dirs: %v", ingester.dirs)
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(&stubAsker{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestWidgetPage(t *testing.T) {
	server := newTestServer(&stubAsker{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "War Tycoon Oracle") {
		t.Fatal("expected widget page content")
	}
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"browsebot-cli/internal/config"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{baseURL: srv.URL, httpClient: srv.Client(), log: zerolog.Nop()}
}

func collectEvents(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestNewClient(t *testing.T) {
	cfg := &config.Config{Server: "http://localhost:8000/"}
	c := NewClient(cfg, zerolog.Nop())
	if c.baseURL != "http://localhost:8000" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
}

func TestQuery(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != "POST" {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if r.URL.Path != "/api/query" {
				t.Errorf("path = %s, want /api/query", r.URL.Path)
			}
			body, _ := io.ReadAll(r.Body)
			var req QueryRequest
			if err := json.Unmarshal(body, &req); err != nil {
				t.Fatalf("unmarshal request: %v", err)
			}
			if req.Query != "what is Go?" {
				t.Errorf("query = %q, want %q", req.Query, "what is Go?")
			}
			if req.MaxSources != 5 {
				t.Errorf("max_sources = %d, want 5", req.MaxSources)
			}
			if req.Stream {
				t.Error("stream = true, want false")
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{
				"answer": "Go is a programming language.",
				"sources": [{"url":"https://go.dev","title":"The Go Programming Language","snippet":"Build simple, secure, scalable systems"}],
				"query": "what is Go?"
			}`)
		}))
		defer srv.Close()

		resp, err := testClient(srv).Query(context.Background(), "what is Go?", 5)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if resp.Answer != "Go is a programming language." {
			t.Errorf("Answer = %q", resp.Answer)
		}
		if len(resp.Sources) != 1 || resp.Sources[0].URL != "https://go.dev" {
			t.Errorf("Sources = %+v, want one go.dev source", resp.Sources)
		}
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = fmt.Fprint(w, `{"error":"search backend unavailable"}`)
		}))
		defer srv.Close()

		_, err := testClient(srv).Query(context.Background(), "q", 3)
		if err == nil {
			t.Fatal("Query() expected error for 500 response")
		}
		if !strings.Contains(err.Error(), "500") {
			t.Errorf("error = %q, expected to contain 500", err.Error())
		}
	})
}

func TestQueryStream(t *testing.T) {
	t.Run("full stream", func(t *testing.T) {
		ssePayload := "data: {\"type\":\"start\",\"query\":\"hi\"}\n\n" +
			"data: {\"type\":\"token\",\"content\":\"Hello\"}\n\n" +
			"data: {\"type\":\"token\",\"content\":\" there\"}\n\n" +
			"data: {\"type\":\"sources\",\"sources\":[{\"url\":\"https://a.com\",\"title\":\"A\"}]}\n\n" +
			"data: {\"type\":\"done\"}\n\n"
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/stream" {
				t.Errorf("path = %s, want /api/stream", r.URL.Path)
			}
			body, _ := io.ReadAll(r.Body)
			var req QueryRequest
			if err := json.Unmarshal(body, &req); err != nil {
				t.Fatalf("unmarshal request: %v", err)
			}
			if !req.Stream {
				t.Error("stream = false, want true")
			}
			w.Header().Set("Content-Type", "text/event-stream")
			w.WriteHeader(http.StatusOK)
			_, _ = fmt.Fprint(w, ssePayload)
		}))
		defer srv.Close()

		events, errc, err := testClient(srv).QueryStream(context.Background(), "hi", 3)
		if err != nil {
			t.Fatalf("QueryStream() error = %v", err)
		}

		got := collectEvents(t, events)
		if len(got) != 5 {
			t.Fatalf("got %d events, want 5: %+v", len(got), got)
		}
		if _, ok := got[0].(StartEvent); !ok {
			t.Errorf("event[0] = %T, want StartEvent", got[0])
		}
		if tok, ok := got[1].(TokenEvent); !ok || tok.Content != "Hello" {
			t.Errorf("event[1] = %+v, want TokenEvent{Hello}", got[1])
		}
		if src, ok := got[3].(SourcesEvent); !ok || len(src.Sources) != 1 {
			t.Errorf("event[3] = %+v, want one source", got[3])
		}
		if _, ok := got[4].(DoneEvent); !ok {
			t.Errorf("event[4] = %T, want DoneEvent", got[4])
		}

		select {
		case streamErr := <-errc:
			t.Errorf("unexpected stream error: %v", streamErr)
		default:
		}
	})

	t.Run("error frame", func(t *testing.T) {
		ssePayload := "data: {\"type\":\"token\",\"content\":\"par\"}\n\n" +
			"data: {\"type\":\"error\",\"error\":\"scrape timeout\"}\n\n"
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = fmt.Fprint(w, ssePayload)
		}))
		defer srv.Close()

		events, _, err := testClient(srv).QueryStream(context.Background(), "q", 3)
		if err != nil {
			t.Fatalf("QueryStream() error = %v", err)
		}
		got := collectEvents(t, events)
		if len(got) != 2 {
			t.Fatalf("got %d events, want 2", len(got))
		}
		ev, ok := got[1].(ErrorEvent)
		if !ok || ev.Message != "scrape timeout" {
			t.Errorf("event[1] = %+v, want ErrorEvent{scrape timeout}", got[1])
		}
	})

	t.Run("skips malformed and unknown frames", func(t *testing.T) {
		ssePayload := "data: {not json at all\n\n" +
			"data: {\"type\":\"telemetry\",\"blob\":true}\n\n" +
			": comment line\n" +
			"data: {\"type\":\"token\",\"content\":\"ok\"}\n\n" +
			"data: {\"type\":\"done\"}\n\n"
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = fmt.Fprint(w, ssePayload)
		}))
		defer srv.Close()

		events, _, err := testClient(srv).QueryStream(context.Background(), "q", 3)
		if err != nil {
			t.Fatalf("QueryStream() error = %v", err)
		}
		got := collectEvents(t, events)
		if len(got) != 2 {
			t.Fatalf("got %d events, want 2 (bad frames skipped): %+v", len(got), got)
		}
		if tok, ok := got[0].(TokenEvent); !ok || tok.Content != "ok" {
			t.Errorf("event[0] = %+v, want TokenEvent{ok}", got[0])
		}
	})

	t.Run("abrupt close without done", func(t *testing.T) {
		ssePayload := "data: {\"type\":\"token\",\"content\":\"partial\"}\n\n"
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = fmt.Fprint(w, ssePayload)
		}))
		defer srv.Close()

		events, errc, err := testClient(srv).QueryStream(context.Background(), "q", 3)
		if err != nil {
			t.Fatalf("QueryStream() error = %v", err)
		}
		got := collectEvents(t, events)
		if len(got) != 1 {
			t.Fatalf("got %d events, want 1", len(got))
		}
		select {
		case streamErr := <-errc:
			t.Errorf("clean EOF should not report an error, got %v", streamErr)
		default:
		}
	})

	t.Run("HTTP error response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = fmt.Fprint(w, `{"detail":"query too short"}`)
		}))
		defer srv.Close()

		_, _, err := testClient(srv).QueryStream(context.Background(), "", 3)
		if err == nil {
			t.Fatal("expected error for 422 response")
		}
		if !strings.Contains(err.Error(), "422") {
			t.Errorf("error = %q, expected to contain 422", err.Error())
		}
	})
}

func TestServiceInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("path = %s, want /", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"status":"running","service":"Real-Time Browsing Chatbot API","version":"1.0.0"}`)
	}))
	defer srv.Close()

	info, err := testClient(srv).ServiceInfo(context.Background())
	if err != nil {
		t.Fatalf("ServiceInfo() error = %v", err)
	}
	if info.Status != "running" {
		t.Errorf("Status = %q, want running", info.Status)
	}
	if info.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", info.Version)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %s, want /health", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"status":"healthy","timestamp":12345.6}`)
	}))
	defer srv.Close()

	h, err := testClient(srv).Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", h.Status)
	}
}

func TestDoJSON(t *testing.T) {
	t.Run("error response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = fmt.Fprint(w, "internal error")
		}))
		defer srv.Close()

		var result struct{}
		err := testClient(srv).doJSON(context.Background(), "GET", "/test", nil, &result)
		if err == nil {
			t.Fatal("doJSON() expected error for 500 response")
		}
		if !strings.Contains(err.Error(), "500") {
			t.Errorf("error = %q, expected to contain status code 500", err.Error())
		}
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, "<html>not json</html>")
		}))
		defer srv.Close()

		var result struct{}
		err := testClient(srv).doJSON(context.Background(), "GET", "/test", nil, &result)
		if err == nil {
			t.Fatal("doJSON() expected error for non-JSON body")
		}
	})
}

// Verify *Client implements BrowsebotAPI at compile time.
var _ BrowsebotAPI = (*Client)(nil)

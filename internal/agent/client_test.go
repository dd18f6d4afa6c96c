package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeAgentAPI is an httptest server speaking the agents wire protocol.
func fakeAgentAPI(t *testing.T, chunks []runChunk) (*httptest.Server, *int) {
	t.Helper()
	runs := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/threads", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "th_1"})
	})
	var messages []map[string]string
	mux.HandleFunc("POST /v1/threads/th_1/messages", func(w http.ResponseWriter, r *http.Request) {
		var m map[string]string
		_ = json.NewDecoder(r.Body).Decode(&m)
		messages = append(messages, m)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /v1/threads/th_1/messages", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"messages": messages})
	})
	mux.HandleFunc("POST /v1/threads/th_1/runs", func(w http.ResponseWriter, r *http.Request) {
		runs++
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, c := range chunks {
			line, _ := json.Marshal(c)
			fmt.Fprintf(w, "%s\n", line)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &runs
}

func TestStreamDeliversChunksInOrder(t *testing.T) {
	srv, _ := fakeAgentAPI(t, []runChunk{
		{Delta: "Hello"},
		{Delta: ", "},
		{Delta: "world"},
		{Done: true},
	})

	c := New(Config{BaseURL: srv.URL, AgentID: "agent-1"})
	var got []string
	err := c.Stream(context.Background(), "hi", func(delta string) {
		got = append(got, delta)
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if strings.Join(got, "") != "Hello, world" {
		t.Errorf("chunks = %v", got)
	}
}

func TestStreamReusesThread(t *testing.T) {
	srv, runs := fakeAgentAPI(t, []runChunk{{Delta: "ok"}, {Done: true}})

	c := New(Config{BaseURL: srv.URL})
	for i := 0; i < 3; i++ {
		if err := c.Stream(context.Background(), "msg", func(string) {}); err != nil {
			t.Fatal(err)
		}
	}
	if *runs != 3 {
		t.Errorf("runs = %d, want 3", *runs)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.threadID != "th_1" {
		t.Errorf("threadID = %q, want th_1 reused", c.threadID)
	}
}

func TestStreamSurfacesRunError(t *testing.T) {
	srv, _ := fakeAgentAPI(t, []runChunk{
		{Delta: "partial"},
		{Error: "model exploded", Done: true},
	})

	c := New(Config{BaseURL: srv.URL})
	var got []string
	err := c.Stream(context.Background(), "hi", func(delta string) { got = append(got, delta) })

	var ce *ClientError
	if !errors.As(err, &ce) || ce.Type != ErrTypeRunFailed {
		t.Fatalf("Stream() error = %v, want run failure", err)
	}
	// The partial chunk was still delivered before the failure.
	if len(got) != 1 || got[0] != "partial" {
		t.Errorf("chunks before failure = %v", got)
	}
}

func TestStreamConnectionRefused(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"})
	err := c.Stream(context.Background(), "hi", func(string) {})

	var ce *ClientError
	if !errors.As(err, &ce) || ce.Type != ErrTypeConnection {
		t.Fatalf("Stream() error = %v, want connection error", err)
	}
}

func TestStreamBadRunStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/threads", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "th_1"})
	})
	mux.HandleFunc("POST /v1/threads/th_1/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /v1/threads/th_1/runs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	err := c.Stream(context.Background(), "hi", func(string) {})

	var ce *ClientError
	if !errors.As(err, &ce) || ce.Type != ErrTypeBadStatus {
		t.Fatalf("Stream() error = %v, want bad status", err)
	}
}

func TestSendAggregatesReply(t *testing.T) {
	srv, _ := fakeAgentAPI(t, []runChunk{
		{Delta: "Hello"},
		{Delta: ", world"},
		{Done: true},
	})

	c := New(Config{BaseURL: srv.URL})
	got, err := c.Send(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got != "Hello, world" {
		t.Errorf("Send() = %q", got)
	}
}

func TestHistoryListsThreadMessages(t *testing.T) {
	srv, _ := fakeAgentAPI(t, []runChunk{{Delta: "ok"}, {Done: true}})

	c := New(Config{BaseURL: srv.URL})

	// No thread yet: empty history, no request.
	if msgs, err := c.History(context.Background()); err != nil || msgs != nil {
		t.Fatalf("History() before first turn = %v, %v", msgs, err)
	}

	if err := c.Stream(context.Background(), "first question", func(string) {}); err != nil {
		t.Fatal(err)
	}

	msgs, err := c.History(context.Background())
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != "user" || msgs[0].Content != "first question" {
		t.Errorf("History() = %+v", msgs)
	}
}

func TestNewThreadInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{}")
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	if _, err := c.NewThread(context.Background()); err == nil {
		t.Fatal("NewThread() accepted a response without an id")
	}
}

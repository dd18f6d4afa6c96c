// Package agent provides the HTTP client for the hosted conversational
// agent service. The client keeps one conversation thread per process and
// streams run output incrementally over newline-delimited JSON.
package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeBadStatus
	ErrTypeInvalidResponse
	ErrTypeRunFailed
)

// ClientError represents an error from the agent client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrTimeout is returned when the upstream call exceeds the configured ceiling.
var ErrTimeout = &ClientError{Type: ErrTypeTimeout, Message: "agent request timed out"}

// Config holds agent client configuration.
type Config struct {
	// BaseURL of the hosted agents API.
	BaseURL string
	// AgentID selects which agent executes runs.
	AgentID string
	// Timeout is the per-turn ceiling on the streaming call (0 = none).
	Timeout time.Duration
}

// Client communicates with the hosted agents API. It is safe for
// concurrent use; the conversation thread is created lazily on first use.
type Client struct {
	config     Config
	httpClient *http.Client

	mu       sync.Mutex
	threadID string
}

// New creates a new agent client. The underlying HTTP client carries no
// global timeout: streaming responses are bounded per call via Config.Timeout.
func New(cfg Config) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{},
	}
}

// StreamFunc is called for each text increment received during streaming,
// synchronously and in arrival order.
type StreamFunc func(delta string)

type threadResponse struct {
	ID string `json:"id"`
}

type runChunk struct {
	Delta string `json:"delta"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// NewThread creates a fresh conversation thread and makes it current.
func (c *Client) NewThread(ctx context.Context) (string, error) {
	resp, err := c.postJSON(ctx, "/v1/threads", map[string]any{"agent_id": c.config.AgentID})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &ClientError{Type: ErrTypeBadStatus, Message: "create thread failed: " + resp.Status}
	}
	var tr threadResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil || tr.ID == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid thread response", Cause: err}
	}

	c.mu.Lock()
	c.threadID = tr.ID
	c.mu.Unlock()
	return tr.ID, nil
}

// ensureThread returns the current thread ID, creating one if needed.
func (c *Client) ensureThread(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.threadID
	c.mu.Unlock()
	if id != "" {
		return id, nil
	}
	return c.NewThread(ctx)
}

// Stream sends the user message to the agent and invokes fn for every text
// increment of the reply. It returns nil when the stream signals completion,
// and a terminating error on any transport or run failure; a failed run is
// never surfaced as a silent empty stream.
func (c *Client) Stream(ctx context.Context, text string, fn StreamFunc) error {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	threadID, err := c.ensureThread(ctx)
	if err != nil {
		return err
	}

	// Record the user message on the thread.
	resp, err := c.postJSON(ctx, "/v1/threads/"+threadID+"/messages", map[string]any{
		"role":    "user",
		"content": text,
	})
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &ClientError{Type: ErrTypeBadStatus, Message: "create message failed: " + resp.Status}
	}

	// Execute the run with streaming output.
	resp, err = c.postJSON(ctx, "/v1/threads/"+threadID+"/runs", map[string]any{
		"agent_id": c.config.AgentID,
		"stream":   true,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{Type: ErrTypeBadStatus, Message: "run request failed: " + resp.Status}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk runChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "malformed stream chunk", Cause: err}
		}
		if chunk.Error != "" {
			return &ClientError{Type: ErrTypeRunFailed, Message: "agent run failed: " + chunk.Error}
		}
		if chunk.Delta != "" {
			fn(chunk.Delta)
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeConnection, Message: "stream interrupted", Cause: err}
	}
	// Stream ended without an explicit done marker; completion by EOF.
	return nil
}

// Send runs one turn without incremental delivery and returns the full
// reply text.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	var b strings.Builder
	if err := c.Stream(ctx, text, func(delta string) {
		b.WriteString(delta)
	}); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ThreadMessage is one entry of the upstream thread transcript.
type ThreadMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History fetches the transcript of the current thread. A client that has
// not started a thread yet has no history.
func (c *Client) History(ctx context.Context) ([]ThreadMessage, error) {
	c.mu.Lock()
	threadID := c.threadID
	c.mu.Unlock()
	if threadID == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/v1/threads/"+threadID+"/messages", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "create request", Cause: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: fmt.Sprintf("agent unreachable at %s", c.config.BaseURL), Cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{Type: ErrTypeBadStatus, Message: "list messages failed: " + resp.Status}
	}

	var out struct {
		Messages []ThreadMessage `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid messages response", Cause: err}
	}
	return out.Messages, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "marshal request", Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: fmt.Sprintf("agent unreachable at %s", c.config.BaseURL), Cause: err}
	}
	return resp, nil
}

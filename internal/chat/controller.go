// Package chat implements the turn controller: it owns the conversation
// history, relays streamed agent output to the display sink, and runs the
// link rewrite pipeline once per completed turn.
package chat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/starford/ansuz/internal/agent"
	"github.com/starford/ansuz/internal/links"
	"github.com/starford/ansuz/internal/models"
)

// Apology is the fixed user-facing message shown when a turn fails. Internal
// detail goes to the log only.
const Apology = "Sorry, I encountered an error while processing your request. Please try again."

// Agent is the streaming contract the controller consumes.
type Agent interface {
	Stream(ctx context.Context, text string, fn agent.StreamFunc) error
}

// Sink receives the full ordered turn history after every increment and
// after rewriting.
type Sink interface {
	PublishTurn(history []models.Message)
}

// Controller orchestrates conversation turns. The history is owned
// exclusively by the controller; turns are processed one at a time.
type Controller struct {
	agent     Agent
	extractor *links.Extractor
	sink      Sink
	logger    *slog.Logger

	turnMu sync.Mutex // serializes whole turns

	mu      sync.Mutex // guards history
	history []models.Message
}

// New creates a Controller. The agent client is passed in explicitly so
// tests can substitute a fake.
func New(a Agent, extractor *links.Extractor, sink Sink, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{agent: a, extractor: extractor, sink: sink, logger: logger}
}

// History returns a copy of the current turn history.
func (c *Controller) History() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() []models.Message {
	out := make([]models.Message, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Controller) publish() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	if c.sink != nil {
		c.sink.PublishTurn(snap)
	}
}

// Submit records the user message and publishes the updated history. It
// never invokes the agent: recording input is kept separate from producing
// output so the UI can clear its input field immediately.
func (c *Controller) Submit(text string) {
	c.mu.Lock()
	c.history = append(c.history, models.NewMessage(models.RoleUser, text))
	c.mu.Unlock()
	c.publish()
}

// Respond streams the agent's reply to the most recent user message into a
// new assistant entry, publishing the history after every increment. When
// the stream completes, the link pipeline runs exactly once over the final
// content; on any failure the assistant content is replaced wholesale with
// the apology message.
func (c *Controller) Respond(ctx context.Context) {
	c.mu.Lock()
	if len(c.history) == 0 || c.history[len(c.history)-1].Role != models.RoleUser {
		c.mu.Unlock()
		c.logger.Warn("chat: respond called without a pending user message")
		return
	}
	userText := c.history[len(c.history)-1].Content
	c.history = append(c.history, models.NewMessage(models.RoleAssistant, ""))
	c.mu.Unlock()

	c.logger.Info("chat: sending message to agent", slog.Int("length", len(userText)))

	err := c.agent.Stream(ctx, userText, func(delta string) {
		c.mu.Lock()
		c.history[len(c.history)-1].Content += delta
		c.mu.Unlock()
		c.publish()
	})
	if err != nil {
		c.logger.Error("chat: agent stream failed", slog.String("error", err.Error()))
		c.setAssistantContent(Apology)
		c.publish()
		return
	}

	c.mu.Lock()
	final := c.history[len(c.history)-1].Content
	c.mu.Unlock()

	ls := c.extractor.Extract(final)
	if len(ls) == 0 {
		return
	}
	c.logger.Info("chat: rewriting links", slog.Int("count", len(ls)))
	c.setAssistantContent(links.Apply(final, ls))
	c.publish()
}

// Send runs one full turn: record the user message, then stream and
// post-process the reply. Turns are serialized; the returned slice is the
// final history snapshot.
func (c *Controller) Send(ctx context.Context, text string) []models.Message {
	c.turnMu.Lock()
	defer c.turnMu.Unlock()

	c.Submit(text)
	c.Respond(ctx)
	return c.History()
}

func (c *Controller) setAssistantContent(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.history); n > 0 && c.history[n-1].Role == models.RoleAssistant {
		c.history[n-1].Content = content
	}
}

// Package chat holds the conversation with the finchat assistant: an
// append-only message history seeded with a greeting, and the chat and
// consultation turns that grow it.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/Veraticus/finchat/internal/backend"
	"github.com/Veraticus/finchat/internal/config"
	"github.com/Veraticus/finchat/internal/model"
)

// Options are the fixed texts the conversation shows.
type Options struct {
	Greeting       string
	Apology        string
	ConsultApology string
}

// DefaultOptions returns the stock Spanish texts.
func DefaultOptions() Options {
	return Options{
		Greeting:       config.DefaultGreeting,
		Apology:        config.DefaultApology,
		ConsultApology: config.DefaultConsultFailed,
	}
}

// Turn is the outcome of one chat or consultation turn. Err is the backend
// failure that was replaced by an apology; it is informational only.
type Turn struct {
	Err          error
	Consultation *model.ConsultationResult
	Reply        model.Message
	// Stale is set when a newer turn of the same kind was started before
	// this one finished; Reply was then not appended to the history.
	Stale bool
}

// Conversation owns the message history and the busy state.
type Conversation struct {
	answerer   backend.Answerer
	consulter  backend.Consulter
	opts       Options
	messages   []model.Message
	inflight   int
	sendGen    uint64
	consultGen uint64
	mu         sync.Mutex
}

// NewConversation creates a conversation seeded with the greeting.
func NewConversation(answerer backend.Answerer, consulter backend.Consulter, opts Options) *Conversation {
	defaults := DefaultOptions()
	if opts.Greeting == "" {
		opts.Greeting = defaults.Greeting
	}
	if opts.Apology == "" {
		opts.Apology = defaults.Apology
	}
	if opts.ConsultApology == "" {
		opts.ConsultApology = defaults.ConsultApology
	}

	return &Conversation{
		answerer:  answerer,
		consulter: consulter,
		opts:      opts,
		messages:  []model.Message{model.NewSystemMessage(opts.Greeting)},
	}
}

// SendMessage runs one chat turn: it appends text as a user message, asks
// the backend for an answer and appends the reply. A backend failure is
// replaced by the apology message and never returned as an error. Empty
// text is sent as is; trimming is the caller's job.
func (c *Conversation) SendMessage(ctx context.Context, text string) Turn {
	c.mu.Lock()
	c.appendLocked(model.NewUserMessage(text))
	c.sendGen++
	gen := c.sendGen
	c.inflight++
	c.mu.Unlock()

	answer, err := c.answerer.Answer(ctx, text)

	reply := model.NewSystemMessage(answer)
	if err != nil {
		slog.Warn("Chat turn failed", "error", err)
		reply = model.NewSystemMessage(c.opts.Apology)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--

	turn := Turn{Reply: reply, Err: err}
	if gen != c.sendGen {
		slog.Debug("Discarding stale chat reply", "generation", gen, "latest", c.sendGen)
		turn.Stale = true
		return turn
	}
	c.appendLocked(reply)
	return turn
}

// Consult runs a consultation over the user's receipts. Surrounding space
// is trimmed and blank queries are ignored. Failures become the consult
// apology message.
func (c *Conversation) Consult(ctx context.Context, text string) Turn {
	query := strings.TrimSpace(text)
	if query == "" {
		return Turn{}
	}

	c.mu.Lock()
	c.appendLocked(model.NewUserMessage(query))
	c.consultGen++
	gen := c.consultGen
	c.inflight++
	c.mu.Unlock()

	result, err := c.consulter.Consult(ctx, query)

	turn := Turn{Err: err}
	if err != nil {
		slog.Warn("Consultation failed", "error", err)
		turn.Reply = model.NewSystemMessage(c.opts.ConsultApology)
	} else {
		turn.Consultation = &result
		turn.Reply = model.NewSystemMessage(result.Answer)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--

	if gen != c.consultGen {
		slog.Debug("Discarding stale consultation", "generation", gen, "latest", c.consultGen)
		turn.Stale = true
		return turn
	}
	c.appendLocked(turn.Reply)
	return turn
}

// AddMessage appends msg to the history.
func (c *Conversation) AddMessage(msg model.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appendLocked(msg)
}

// Messages returns a copy of the history in append order.
func (c *Conversation) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Message(nil), c.messages...)
}

// Len returns the number of messages in the history.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Busy reports whether a chat or consultation turn is in flight.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

func (c *Conversation) appendLocked(msg model.Message) {
	c.messages = append(c.messages, msg)
}

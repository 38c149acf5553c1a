// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// FailureNotice is the single user-facing message for every failed reply.
const FailureNotice = "Failed to get response. Please try again."

// Conversation errors.
var (
	ErrRequestInFlight = errors.New("a request is already in flight")
	ErrResponseFailed  = errors.New("failed to get response")
	ErrSuperseded      = errors.New("target changed before the reply arrived")
)

// Starter questions offered while a conversation is empty.
var (
	GeneralSuggestions = []string{
		"What are your main research areas?",
		"How does AI impact entrepreneurial decisions?",
		"Tell me about your work on strategic decision-making",
		"What is the connection between AI and innovation?",
	}
	PaperSuggestions = []string{
		"What is this paper about?",
		"What are the main contributions?",
		"How does this relate to other work?",
		"What are the practical implications?",
	}
)

// Transport delivers one chat request and returns the reply text.
type Transport interface {
	Send(ctx context.Context, req types.ChatRequest) (string, error)
}

// Notifier receives the user-facing failure notice.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Notify calls f(message).
func (f NotifierFunc) Notify(message string) { f(message) }

// Conversation is the message history of one chat widget. At most one
// request is in flight; a second Submit while pending is rejected, not
// queued. Separate Conversations share nothing.
type Conversation struct {
	transport Transport
	notifier  Notifier

	mu         sync.Mutex
	paper      *types.PaperRef
	messages   []types.Message
	pending    bool
	generation uint64
}

// NewConversation returns an empty general-assistant Conversation. A nil
// notifier drops notices.
func NewConversation(t Transport, n Notifier) *Conversation {
	if n == nil {
		n = NotifierFunc(func(string) {})
	}
	return &Conversation{transport: t, notifier: n}
}

// SetTarget points the conversation at paper (nil for the general
// assistant). When the title changes the history is cleared and any reply
// still in flight is discarded on arrival.
func (c *Conversation) SetTarget(paper *types.PaperRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sameTarget(c.paper, paper) {
		return
	}
	if paper != nil {
		cp := *paper
		cp.Categories = append([]string(nil), paper.Categories...)
		paper = &cp
	}
	c.paper = paper
	c.messages = nil
	c.pending = false
	c.generation++
}

func sameTarget(a, b *types.PaperRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Title == b.Title
}

// Target returns the current paper, or nil.
func (c *Conversation) Target() *types.PaperRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paper == nil {
		return nil
	}
	cp := *c.paper
	cp.Categories = append([]string(nil), c.paper.Categories...)
	return &cp
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []types.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Message(nil), c.messages...)
}

// Suggestions returns the starter questions for the current target, or nil
// once the conversation has messages.
func (c *Conversation) Suggestions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) > 0 {
		return nil
	}
	if c.paper != nil {
		return append([]string(nil), PaperSuggestions...)
	}
	return append([]string(nil), GeneralSuggestions...)
}

// Pending reports whether a request is in flight.
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Submit sends input with the history that preceded it. The trimmed user
// message is appended before the call; the reply is appended only on
// success. On failure exactly one notice goes to the Notifier and the
// returned error matches ErrResponseFailed.
func (c *Conversation) Submit(ctx context.Context, input string) (string, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return "", ErrEmptyMessage
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return "", ErrRequestInFlight
	}
	req := types.ChatRequest{
		Message:             text,
		ConversationHistory: append([]types.Message{}, c.messages...),
	}
	if c.paper != nil {
		p := *c.paper
		req.Paper = &p
	}
	c.messages = append(c.messages, types.Message{Role: types.RoleUser, Content: text})
	c.pending = true
	gen := c.generation
	c.mu.Unlock()

	reply, err := c.transport.Send(ctx, req)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return "", ErrSuperseded
	}
	c.pending = false
	if err != nil {
		c.mu.Unlock()
		c.notifier.Notify(FailureNotice)
		return "", fmt.Errorf("%w: %w", ErrResponseFailed, err)
	}
	c.messages = append(c.messages, types.Message{Role: types.RoleAssistant, Content: reply})
	c.mu.Unlock()
	return reply, nil
}

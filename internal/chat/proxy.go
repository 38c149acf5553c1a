// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat turns a user question, an optional paper, and prior turns into
// one assistant reply. Proxy is the server side that composes the system
// prompt and calls the gateway; Conversation is the client side that owns one
// widget's message history.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/portfolio-engine/internal/gateway"
	"github.com/pdiddy/portfolio-engine/internal/prompt"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// DefaultMaxHistory applies when ChatConfig.MaxHistory is not positive.
const DefaultMaxHistory = 20

// Request validation errors.
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrInvalidRole  = errors.New("invalid message role")
	ErrMissingPaper = errors.New("paper is required")
)

// Proxy validates chat requests, composes the system prompt, and forwards
// the conversation to the gateway once.
type Proxy struct {
	composer   *prompt.Composer
	completer  gateway.Completer
	maxHistory int
	logger     *zap.Logger
}

// NewProxy returns a Proxy. A nil logger discards output.
func NewProxy(composer *prompt.Composer, completer gateway.Completer, cfg types.ChatConfig, logger *zap.Logger) *Proxy {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Proxy{
		composer:   composer,
		completer:  completer,
		maxHistory: maxHistory,
		logger:     logger,
	}
}

// Research answers a general research-assistant request. Any paper in req is
// ignored.
func (p *Proxy) Research(ctx context.Context, req types.ChatRequest) (string, error) {
	if err := p.validate(req); err != nil {
		return "", err
	}
	system, err := p.composer.General()
	if err != nil {
		return "", fmt.Errorf("composing prompt: %w", err)
	}
	return p.dispatch(ctx, "research-assistant", system, req)
}

// PaperChat answers a question about req.Paper.
func (p *Proxy) PaperChat(ctx context.Context, req types.ChatRequest) (string, error) {
	if err := p.validate(req); err != nil {
		return "", err
	}
	if req.Paper == nil || strings.TrimSpace(req.Paper.Title) == "" {
		return "", ErrMissingPaper
	}
	system, err := p.composer.Paper(ctx, *req.Paper)
	if err != nil {
		return "", fmt.Errorf("composing prompt: %w", err)
	}
	return p.dispatch(ctx, "paper-chat", system, req)
}

func (p *Proxy) validate(req types.ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return ErrEmptyMessage
	}
	for i, m := range req.ConversationHistory {
		if m.Role != types.RoleUser && m.Role != types.RoleAssistant {
			return fmt.Errorf("%w %q at history index %d", ErrInvalidRole, m.Role, i)
		}
	}
	return nil
}

func (p *Proxy) dispatch(ctx context.Context, endpoint, system string, req types.ChatRequest) (string, error) {
	history := req.ConversationHistory
	if len(history) > p.maxHistory {
		history = history[len(history)-p.maxHistory:]
	}
	messages := BuildMessages(system, history, req.Message)

	log := p.logger.With(zap.String("endpoint", endpoint), zap.Int("messages", len(messages)))
	if req.Paper != nil {
		log = log.With(zap.String("paper", req.Paper.Title))
	}
	log.Debug("dispatching completion", zap.Int("history_dropped", len(req.ConversationHistory)-len(history)))

	reply, err := p.completer.Complete(ctx, messages)
	if err != nil {
		log.Error("completion failed", zap.Error(err))
		return "", err
	}
	log.Info("completion succeeded", zap.Int("reply_chars", len(reply)))
	return reply, nil
}

// BuildMessages returns [system, history..., user] without modifying history.
func BuildMessages(system string, history []types.Message, message string) []types.Message {
	out := make([]types.Message, 0, len(history)+2)
	out = append(out, types.Message{Role: types.RoleSystem, Content: system})
	out = append(out, history...)
	out = append(out, types.Message{Role: types.RoleUser, Content: message})
	return out
}

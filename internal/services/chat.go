package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"smartair-backend/internal/models"
)

const chatTimeout = 30 * time.Second

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one provider-side conversation entry.
type Turn struct {
	Role string
	Text string
}

// Generator produces a reply for message given a system instruction and
// prior turns.
type Generator interface {
	Generate(ctx context.Context, system string, history []Turn, message string) (string, error)
}

type ChatService struct {
	generator Generator
	persona   string
	timeout   time.Duration
}

// NewChatService builds the chat proxy. A nil generator means the provider
// key is not configured; every Chat call then fails without going upstream.
func NewChatService(generator Generator, persona string) *ChatService {
	return &ChatService{
		generator: generator,
		persona:   persona,
		timeout:   chatTimeout,
	}
}

func (s *ChatService) Configured() bool {
	return s.generator != nil
}

func (s *ChatService) Chat(ctx context.Context, req models.ChatRequest) (string, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", &ValidationError{Fields: map[string]string{"message": "message is required"}}
	}

	if s.generator == nil {
		return "", &ConfigurationError{Message: "Chat service is not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.generator.Generate(ctx, s.persona, BuildTurns(req.History), message)
	if err != nil {
		var upErr *UpstreamError
		var cfgErr *ConfigurationError
		if errors.As(err, &upErr) || errors.As(err, &cfgErr) {
			return "", err
		}
		return "", &UpstreamError{Message: "upstream request failed: " + err.Error(), Err: err}
	}
	return reply, nil
}

// BuildTurns maps client history onto provider roles. Blank messages are
// dropped and consecutive messages from the same side are merged so the
// turns alternate.
func BuildTurns(history []models.ChatMessage) []Turn {
	turns := make([]Turn, 0, len(history))
	for _, m := range history {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		role := providerRole(m.Role)
		if n := len(turns); n > 0 && turns[n-1].Role == role {
			turns[n-1].Text += "\n\n" + text
			continue
		}
		turns = append(turns, Turn{Role: role, Text: text})
	}
	return turns
}

func providerRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "assistant", "model", "bot", "ai":
		return RoleModel
	}
	return RoleUser
}

package chat

import (
	"context"

	"github.com/abbiehooper/PolicyChatbot/internal/storage/models"
	"github.com/abbiehooper/PolicyChatbot/pkg/anthropic"
)

// ChatService answers questions about a policy document inside a cached
// conversation context.
type ChatService interface {
	Chat(ctx context.Context, req ChatRequest) (*models.ChatAnswer, error)
	ClearSession(sessionID string)
	UsageStats() UsageStats
}

// Generator is the external generation backend.
type Generator interface {
	Messages(ctx context.Context, req anthropic.MessagesRequest) (*anthropic.MessagesResponse, error)
}

// Verify interface implementation
var _ ChatService = (*Service)(nil)
var _ Generator = (*anthropic.Client)(nil)

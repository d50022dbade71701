package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/abbiehooper/PolicyChatbot/internal/service/policy"
	"github.com/abbiehooper/PolicyChatbot/internal/storage/interfaces"
	"github.com/abbiehooper/PolicyChatbot/internal/storage/models"
	"github.com/abbiehooper/PolicyChatbot/pkg/anthropic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	Model     string
	MaxTokens int
}

func DefaultConfig() Config {
	return Config{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 1500,
	}
}

// Service mediates every generation call: it owns the conversation cache
// access, request composition, the provider call and citation extraction.
type Service struct {
	conversations interfaces.ConversationStore
	policies      policy.PolicyService
	generator     Generator
	usage         *UsageMetrics
	config        Config
	logger        *zap.Logger
}

func NewService(
	conversations interfaces.ConversationStore,
	policies policy.PolicyService,
	generator Generator,
	config Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		conversations: conversations,
		policies:      policies,
		generator:     generator,
		usage:         NewUsageMetrics(),
		config:        config,
		logger:        logger,
	}
}

type ChatRequest struct {
	SessionID string
	ProductID string
	Question  string
}

// Chat runs one exchange for a session. Exchanges on the same session are
// fully serialized by the conversation lease; unrelated sessions proceed in
// parallel. On any generation failure the history is left exactly as it was.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*models.ChatAnswer, error) {
	startTime := time.Now()

	if err := ValidateChatRequest(req); err != nil {
		return nil, err
	}

	// 1. Resolve the policy document.
	content, err := s.policies.ContentWithPages(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	// 2. Check out the conversation; held for the whole exchange.
	lease := s.conversations.Acquire(req.SessionID, content.Pages)

	s.logger.Debug("Conversation acquired",
		zap.String("session_id", req.SessionID),
		zap.Bool("first_turn", lease.FirstTurn()),
		zap.Int("history_length", len(lease.History())),
	)

	// 3. Compose the provider request from the stored pages and history.
	providerReq := composeRequest(s.config.Model, s.config.MaxTokens, lease.Pages(), lease.History(), req.Question)

	// 4. Call the generation backend.
	resp, err := s.generator.Messages(ctx, providerReq)
	if err != nil {
		lease.Release()
		s.logger.Error("Generation call failed",
			zap.String("session_id", req.SessionID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	s.logCacheUsage(req.SessionID, resp.Usage)
	s.usage.Record(resp.Usage)

	// 5. Lift the citations out of the raw answer.
	answer, err := ExtractCitations(resp.Content[0].Text)
	if err != nil {
		lease.Release()
		return nil, fmt.Errorf("failed to extract citations: %w", err)
	}

	// 6. Record the exchange; history stores the placeholder form, never the
	// raw markers.
	now := time.Now()
	lease.Commit(
		models.ConversationMessage{
			ID:        uuid.New().String(),
			Role:      "user",
			Content:   req.Question,
			Timestamp: now,
		},
		models.ConversationMessage{
			ID:        uuid.New().String(),
			Role:      "assistant",
			Content:   answer.Answer,
			Timestamp: now,
		},
	)

	s.logger.Info("Chat exchange completed",
		zap.String("session_id", req.SessionID),
		zap.String("product_id", req.ProductID),
		zap.Int("citations", len(answer.Citations)),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Duration("processing_time", time.Since(startTime)),
	)

	return &answer, nil
}

// ClearSession drops a session's conversation context. Idempotent.
func (s *Service) ClearSession(sessionID string) {
	s.conversations.Remove(sessionID)
	s.logger.Info("Cleared conversation", zap.String("session_id", sessionID))
}

func (s *Service) UsageStats() UsageStats {
	return s.usage.Stats()
}

func (s *Service) logCacheUsage(sessionID string, usage anthropic.Usage) {
	if usage.CacheCreationInputTokens > 0 {
		s.logger.Info("Prompt cache created",
			zap.String("session_id", sessionID),
			zap.Int("tokens", usage.CacheCreationInputTokens),
		)
	}
	if usage.CacheReadInputTokens > 0 {
		s.logger.Info("Prompt cache hit",
			zap.String("session_id", sessionID),
			zap.Int("tokens", usage.CacheReadInputTokens),
		)
	}
}

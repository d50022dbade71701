package handlers

import (
	"errors"
	"net/http"

	"github.com/abbiehooper/PolicyChatbot/internal/service/chat"
	"github.com/abbiehooper/PolicyChatbot/internal/service/policy"
	"github.com/abbiehooper/PolicyChatbot/internal/storage/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService chat.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService chat.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	ProductID string `json:"product_id" binding:"required"`
	Question  string `json:"question" binding:"required"`
}

type ChatResponse struct {
	SessionID string            `json:"session_id"`
	Answer    string            `json:"answer"`
	Citations []models.Citation `json:"citations"`
}

type ClearSessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// POST /chat - ask a question about a policy
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	// Conversations default to one per policy, matching the viewer UI.
	if req.SessionID == "" {
		req.SessionID = req.ProductID
	}

	serviceReq := chat.ChatRequest{
		SessionID: req.SessionID,
		ProductID: req.ProductID,
		Question:  req.Question,
	}

	if err := chat.ValidateChatRequest(serviceReq); err != nil {
		h.logger.Error("Request validation failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err.Error(),
		})
		return
	}

	answer, err := h.chatService.Chat(c.Request.Context(), serviceReq)
	if err != nil {
		h.handleChatError(c, req.SessionID, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		SessionID: req.SessionID,
		Answer:    answer.Answer,
		Citations: answer.Citations,
	})
}

func (h *ChatHandler) handleChatError(c *gin.Context, sessionID string, err error) {
	h.logger.Error("Failed to process chat request",
		zap.Error(err),
		zap.String("session_id", sessionID),
	)

	switch {
	case errors.Is(err, policy.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Policy not found",
			Code:  "POLICY_NOT_FOUND",
		})
	case errors.Is(err, chat.ErrGenerationFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: "Failed to generate an answer, please try again",
			Code:  "GENERATION_FAILED",
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to process question",
			Code:    "PROCESSING_ERROR",
			Details: err.Error(),
		})
	}
}

// POST /chat/clear - drop a conversation; no error for unknown sessions
func (h *ChatHandler) ClearSession(c *gin.Context) {
	var req ClearSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	h.chatService.ClearSession(req.SessionID)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Conversation cleared",
		"session_id": req.SessionID,
	})
}

// GET /usage - aggregated provider token counters
func (h *ChatHandler) GetUsage(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatService.UsageStats())
}

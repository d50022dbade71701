package chat

import (
	"errors"
	"strings"
)

var (
	ErrEmptyProductID   = errors.New("product ID cannot be empty")
	ErrEmptyQuestion    = errors.New("question cannot be empty")
	ErrQuestionTooLong  = errors.New("question is too long")
	ErrInvalidSessionID = errors.New("invalid session ID format")
)

const (
	MaxQuestionLength  = 10000
	MaxSessionIDLength = 100
)

func ValidateChatRequest(req ChatRequest) error {
	if strings.TrimSpace(req.ProductID) == "" {
		return ErrEmptyProductID
	}

	if len(req.SessionID) > MaxSessionIDLength {
		return ErrInvalidSessionID
	}

	if strings.TrimSpace(req.Question) == "" {
		return ErrEmptyQuestion
	}

	if len(req.Question) > MaxQuestionLength {
		return ErrQuestionTooLong
	}

	return nil
}

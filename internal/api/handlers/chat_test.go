package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abbiehooper/PolicyChatbot/internal/service/chat"
	"github.com/abbiehooper/PolicyChatbot/internal/service/policy"
	"github.com/abbiehooper/PolicyChatbot/internal/storage/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stubChatService struct {
	answer  *models.ChatAnswer
	err     error
	lastReq chat.ChatRequest
	cleared []string
}

func (s *stubChatService) Chat(_ context.Context, req chat.ChatRequest) (*models.ChatAnswer, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

func (s *stubChatService) ClearSession(sessionID string) {
	s.cleared = append(s.cleared, sessionID)
}

func (s *stubChatService) UsageStats() chat.UsageStats {
	return chat.UsageStats{Requests: 7, InputTokens: 700}
}

func newChatRouter(svc chat.ChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewChatHandler(svc, zap.NewNop())

	r := gin.New()
	r.POST("/chat", handler.Chat)
	r.POST("/chat/clear", handler.ClearSession)
	r.GET("/usage", handler.GetUsage)
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatSuccess(t *testing.T) {
	svc := &stubChatService{
		answer: &models.ChatAnswer{
			Answer: "The excess is <citation-marker idx=1>.",
			Citations: []models.Citation{
				{CitationIndex: 1, PageNumber: 5, QuotedText: "£250 per claim"},
			},
		},
	}
	r := newChatRouter(svc)

	w := postJSON(r, "/chat", ChatRequest{
		SessionID: "s1",
		ProductID: "Car_Acme_Comprehensive",
		Question:  "What is the excess?",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SessionID != "s1" {
		t.Errorf("unexpected session ID: %q", resp.SessionID)
	}
	if resp.Answer != "The excess is <citation-marker idx=1>." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if len(resp.Citations) != 1 || resp.Citations[0].QuotedText != "£250 per claim" {
		t.Errorf("unexpected citations: %+v", resp.Citations)
	}
}

func TestChatDefaultsSessionToProduct(t *testing.T) {
	svc := &stubChatService{answer: &models.ChatAnswer{Answer: "ok", Citations: []models.Citation{}}}
	r := newChatRouter(svc)

	w := postJSON(r, "/chat", ChatRequest{
		ProductID: "Car_Acme_Comprehensive",
		Question:  "Q?",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.lastReq.SessionID != "Car_Acme_Comprehensive" {
		t.Errorf("missing session should default to the product ID, got %q", svc.lastReq.SessionID)
	}

	var resp ChatResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.SessionID != "Car_Acme_Comprehensive" {
		t.Errorf("response should echo the defaulted session ID, got %q", resp.SessionID)
	}
}

func TestChatMissingFields(t *testing.T) {
	svc := &stubChatService{}
	r := newChatRouter(svc)

	tests := []struct {
		name string
		body any
	}{
		{"no product", map[string]string{"question": "Q?"}},
		{"no question", map[string]string{"product_id": "p"}},
		{"empty body", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/chat", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestChatErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantTag  string
	}{
		{"policy missing", policy.ErrNotFound, http.StatusNotFound, "POLICY_NOT_FOUND"},
		{"generation failed", chat.ErrGenerationFailed, http.StatusBadGateway, "GENERATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newChatRouter(&stubChatService{err: tt.err})

			w := postJSON(r, "/chat", ChatRequest{ProductID: "p", Question: "Q?"})
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if resp.Code != tt.wantTag {
				t.Errorf("expected code %q, got %q", tt.wantTag, resp.Code)
			}
		})
	}
}

func TestClearSession(t *testing.T) {
	svc := &stubChatService{}
	r := newChatRouter(svc)

	w := postJSON(r, "/chat/clear", ClearSessionRequest{SessionID: "s1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(svc.cleared) != 1 || svc.cleared[0] != "s1" {
		t.Errorf("expected session s1 cleared, got %v", svc.cleared)
	}

	// Unknown sessions clear without error.
	if w := postJSON(r, "/chat/clear", ClearSessionRequest{SessionID: "never-seen"}); w.Code != http.StatusOK {
		t.Errorf("clearing an unknown session should succeed, got %d", w.Code)
	}
}

func TestClearSessionRequiresSessionID(t *testing.T) {
	r := newChatRouter(&stubChatService{})

	if w := postJSON(r, "/chat/clear", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without session_id, got %d", w.Code)
	}
}

func TestGetUsage(t *testing.T) {
	r := newChatRouter(&stubChatService{})

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var stats chat.UsageStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode usage body: %v", err)
	}
	if stats.Requests != 7 || stats.InputTokens != 700 {
		t.Errorf("unexpected usage stats: %+v", stats)
	}
}

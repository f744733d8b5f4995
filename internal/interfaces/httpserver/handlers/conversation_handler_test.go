package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/interfaces/httpserver/handlers"
	"homehub/assistant-api/internal/utils/platformerrors"
)

// MockConversationService is a mock implementation of conversation.Service.
type MockConversationService struct {
	ResolveOrCreateFunc   func(ctx context.Context, publicID, userID, channel string) (*conversation.Conversation, error)
	ResolveForChannelFunc func(ctx context.Context, userID, channel string) (*conversation.Conversation, error)
	GetOwnedFunc          func(ctx context.Context, publicID, userID string) (*conversation.Conversation, error)
	AppendMessageFunc     func(ctx context.Context, conversationID uint, msg conversation.Message) (*conversation.Message, error)
	AppendMessagesFunc    func(ctx context.Context, conversationID uint, msgs []conversation.Message) error
	LoadWindowFunc        func(ctx context.Context, conversationID uint, maxMessages int) ([]conversation.Message, error)
	UpdateSummaryFunc     func(ctx context.Context, conversationID uint, summary string) error
	RecordActionFunc      func(ctx context.Context, action *conversation.Action) error
	ListConversationsFunc func(ctx context.Context, userID string, p conversation.Pagination) ([]conversation.Conversation, error)
	ListMessagesFunc      func(ctx context.Context, conversationID uint) ([]conversation.Message, error)
	ListActionsFunc       func(ctx context.Context, conversationID uint) ([]conversation.Action, error)
}

func (m *MockConversationService) ResolveOrCreate(ctx context.Context, publicID, userID, channel string) (*conversation.Conversation, error) {
	if m.ResolveOrCreateFunc != nil {
		return m.ResolveOrCreateFunc(ctx, publicID, userID, channel)
	}
	return nil, nil
}

func (m *MockConversationService) ResolveForChannel(ctx context.Context, userID, channel string) (*conversation.Conversation, error) {
	if m.ResolveForChannelFunc != nil {
		return m.ResolveForChannelFunc(ctx, userID, channel)
	}
	return nil, nil
}

func (m *MockConversationService) GetOwned(ctx context.Context, publicID, userID string) (*conversation.Conversation, error) {
	if m.GetOwnedFunc != nil {
		return m.GetOwnedFunc(ctx, publicID, userID)
	}
	return nil, nil
}

func (m *MockConversationService) AppendMessage(ctx context.Context, conversationID uint, msg conversation.Message) (*conversation.Message, error) {
	if m.AppendMessageFunc != nil {
		return m.AppendMessageFunc(ctx, conversationID, msg)
	}
	return &msg, nil
}

func (m *MockConversationService) AppendMessages(ctx context.Context, conversationID uint, msgs []conversation.Message) error {
	if m.AppendMessagesFunc != nil {
		return m.AppendMessagesFunc(ctx, conversationID, msgs)
	}
	return nil
}

func (m *MockConversationService) LoadWindow(ctx context.Context, conversationID uint, maxMessages int) ([]conversation.Message, error) {
	if m.LoadWindowFunc != nil {
		return m.LoadWindowFunc(ctx, conversationID, maxMessages)
	}
	return nil, nil
}

func (m *MockConversationService) UpdateSummary(ctx context.Context, conversationID uint, summary string) error {
	if m.UpdateSummaryFunc != nil {
		return m.UpdateSummaryFunc(ctx, conversationID, summary)
	}
	return nil
}

func (m *MockConversationService) RecordAction(ctx context.Context, action *conversation.Action) error {
	if m.RecordActionFunc != nil {
		return m.RecordActionFunc(ctx, action)
	}
	return nil
}

func (m *MockConversationService) ListConversations(ctx context.Context, userID string, p conversation.Pagination) ([]conversation.Conversation, error) {
	if m.ListConversationsFunc != nil {
		return m.ListConversationsFunc(ctx, userID, p)
	}
	return nil, nil
}

func (m *MockConversationService) ListMessages(ctx context.Context, conversationID uint) ([]conversation.Message, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, conversationID)
	}
	return nil, nil
}

func (m *MockConversationService) ListActions(ctx context.Context, conversationID uint) ([]conversation.Action, error) {
	if m.ListActionsFunc != nil {
		return m.ListActionsFunc(ctx, conversationID)
	}
	return nil, nil
}

func setupConversationTestRouter(handler *handlers.ConversationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/v1/conversations")
	{
		v1.GET("", handler.List)
		v1.GET("/:conv_id/messages", handler.ListMessages)
		v1.GET("/:conv_id/actions", handler.ListActions)
	}
	return r
}

func TestConversationHandler_List(t *testing.T) {
	var capturedUser string
	var capturedPage conversation.Pagination
	mockService := &MockConversationService{
		ListConversationsFunc: func(ctx context.Context, userID string, p conversation.Pagination) ([]conversation.Conversation, error) {
			capturedUser = userID
			capturedPage = p
			return []conversation.Conversation{
				{PublicID: "conv_1", Channel: "web", LastMessageAt: time.Now()},
				{PublicID: "conv_2", Channel: "slack", LastMessageAt: time.Now().Add(-time.Hour)},
			}, nil
		},
	}

	handler := handlers.NewConversationHandler(mockService, zerolog.Nop())
	router := setupConversationTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/conversations?page=2&limit=5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if capturedUser != "guest" {
		t.Errorf("userID = %q, want guest fallback", capturedUser)
	}
	if capturedPage.Page != 2 || capturedPage.PageSize != 5 {
		t.Errorf("pagination = %+v, want page 2 size 5", capturedPage)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	data, ok := response["data"].([]interface{})
	if !ok || len(data) != 2 {
		t.Fatalf("data = %v, want 2 conversations", response["data"])
	}
	first, _ := data[0].(map[string]interface{})
	if first["id"] != "conv_1" || first["channel"] != "web" {
		t.Errorf("first conversation = %v", first)
	}
}

func TestConversationHandler_List_DefaultPageSize(t *testing.T) {
	var capturedPage conversation.Pagination
	mockService := &MockConversationService{
		ListConversationsFunc: func(ctx context.Context, userID string, p conversation.Pagination) ([]conversation.Conversation, error) {
			capturedPage = p
			return nil, nil
		},
	}

	handler := handlers.NewConversationHandler(mockService, zerolog.Nop())
	router := setupConversationTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/conversations?page=3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if capturedPage.Page != 3 || capturedPage.PageSize != 20 {
		t.Errorf("pagination = %+v, want page 3 with default size 20", capturedPage)
	}
}

func TestConversationHandler_ListMessages(t *testing.T) {
	var ownedPublicID, ownedUser string
	mockService := &MockConversationService{
		GetOwnedFunc: func(ctx context.Context, publicID, userID string) (*conversation.Conversation, error) {
			ownedPublicID = publicID
			ownedUser = userID
			return &conversation.Conversation{ID: 7, PublicID: publicID, UserID: userID}, nil
		},
		ListMessagesFunc: func(ctx context.Context, conversationID uint) ([]conversation.Message, error) {
			if conversationID != 7 {
				t.Errorf("conversationID = %d, want 7", conversationID)
			}
			return []conversation.Message{
				{PublicID: "msg_1", Role: "user", Content: "add milk", Sequence: 1},
				{PublicID: "msg_2", Role: "assistant", Content: "Added milk.", Sequence: 2,
					ToolCalls: []conversation.ToolCall{{ID: "t1", Name: "add_shopping_item"}}},
			}, nil
		},
	}

	handler := handlers.NewConversationHandler(mockService, zerolog.Nop())
	router := setupConversationTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/conversations/conv_abc/messages", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if ownedPublicID != "conv_abc" || ownedUser != "guest" {
		t.Errorf("ownership check got (%q, %q)", ownedPublicID, ownedUser)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["conversation_id"] != "conv_abc" {
		t.Errorf("conversation_id = %v", response["conversation_id"])
	}
	data, ok := response["data"].([]interface{})
	if !ok || len(data) != 2 {
		t.Fatalf("data = %v, want 2 messages", response["data"])
	}
	second, _ := data[1].(map[string]interface{})
	if second["role"] != "assistant" || second["sequence"] != 2.0 {
		t.Errorf("second message = %v", second)
	}
	calls, _ := second["tool_calls"].([]interface{})
	if len(calls) != 1 {
		t.Errorf("tool_calls = %v", second["tool_calls"])
	}
}

func TestConversationHandler_ListMessages_NotFound(t *testing.T) {
	mockService := &MockConversationService{
		GetOwnedFunc: func(ctx context.Context, publicID, userID string) (*conversation.Conversation, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeNotFound, "conversation not found", nil, "")
		},
	}

	handler := handlers.NewConversationHandler(mockService, zerolog.Nop())
	router := setupConversationTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/conversations/conv_other/messages", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestConversationHandler_ListActions(t *testing.T) {
	mockService := &MockConversationService{
		GetOwnedFunc: func(ctx context.Context, publicID, userID string) (*conversation.Conversation, error) {
			return &conversation.Conversation{ID: 9, PublicID: publicID, UserID: userID}, nil
		},
		ListActionsFunc: func(ctx context.Context, conversationID uint) ([]conversation.Action, error) {
			return []conversation.Action{
				{PublicID: "act_1", ActionType: "add_task", Summary: "add_task succeeded", Channel: "web"},
			}, nil
		},
	}

	handler := handlers.NewConversationHandler(mockService, zerolog.Nop())
	router := setupConversationTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/conversations/conv_abc/actions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	data, ok := response["data"].([]interface{})
	if !ok || len(data) != 1 {
		t.Fatalf("data = %v, want 1 action", response["data"])
	}
	action, _ := data[0].(map[string]interface{})
	if action["action_type"] != "add_task" || action["summary"] != "add_task succeeded" {
		t.Errorf("action = %v", action)
	}
}

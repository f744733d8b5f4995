package conversation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/utils/platformerrors"
)

// HardHistoryCap bounds how many messages a window load can ever return,
// independently of whatever the compressor already trimmed.
const HardHistoryCap = 200

// Service is the session manager. It owns conversation, message and action
// persistence and the ownership checks guarding them.
type Service interface {
	// ResolveOrCreate loads the conversation when publicID is set, verifying
	// the stored owner matches userID, and creates one otherwise. A
	// mismatched owner reads as absence, never as a reassignment.
	ResolveOrCreate(ctx context.Context, publicID, userID, channel string) (*Conversation, error)
	// ResolveForChannel returns the user's most recent conversation on the
	// channel, creating one when none exists.
	ResolveForChannel(ctx context.Context, userID, channel string) (*Conversation, error)
	// GetOwned loads a conversation the user owns; absence and ownership
	// mismatch are both NotFound.
	GetOwned(ctx context.Context, publicID, userID string) (*Conversation, error)
	// AppendMessage inserts one message row and bumps last_message_at.
	AppendMessage(ctx context.Context, conversationID uint, msg Message) (*Message, error)
	// AppendMessages inserts the turn's accumulated assistant rows in order.
	AppendMessages(ctx context.Context, conversationID uint, msgs []Message) error
	// LoadWindow returns the most recent messages in chronological order,
	// capped at HardHistoryCap.
	LoadWindow(ctx context.Context, conversationID uint, maxMessages int) ([]Message, error)
	// UpdateSummary replaces the conversation's stored summary.
	UpdateSummary(ctx context.Context, conversationID uint, summary string) error
	// RecordAction writes one audit row for an executed tool call.
	RecordAction(ctx context.Context, action *Action) error

	ListConversations(ctx context.Context, userID string, p Pagination) ([]Conversation, error)
	ListMessages(ctx context.Context, conversationID uint) ([]Message, error)
	ListActions(ctx context.Context, conversationID uint) ([]Action, error)
}

type service struct {
	conversations Repository
	messages      MessageRepository
	actions       ActionRepository
	log           zerolog.Logger
}

// NewService creates the session manager over the three repositories.
func NewService(conversations Repository, messages MessageRepository, actions ActionRepository, log zerolog.Logger) Service {
	return &service{
		conversations: conversations,
		messages:      messages,
		actions:       actions,
		log:           log.With().Str("component", "conversation_service").Logger(),
	}
}

func (s *service) ResolveOrCreate(ctx context.Context, publicID, userID, channel string) (*Conversation, error) {
	if publicID != "" {
		return s.GetOwned(ctx, publicID, userID)
	}

	conv := NewConversation(userID, channel)
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("conversation_id", conv.PublicID).
		Str("channel", channel).
		Msg("conversation created")
	return conv, nil
}

func (s *service) ResolveForChannel(ctx context.Context, userID, channel string) (*Conversation, error) {
	conv, err := s.conversations.FindLatestByUserChannel(ctx, userID, channel)
	if err == nil {
		return conv, nil
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, err
	}
	return s.ResolveOrCreate(ctx, "", userID, channel)
}

func (s *service) GetOwned(ctx context.Context, publicID, userID string) (*Conversation, error) {
	conv, err := s.conversations.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, "conversation not found", nil,
			"7c1f4b6e-52d8-4a0c-9b3e-e8f19a2d6c05")
	}
	return conv, nil
}

func (s *service) AppendMessage(ctx context.Context, conversationID uint, msg Message) (*Message, error) {
	msg.ConversationID = conversationID
	if msg.PublicID == "" {
		msg.PublicID = newPublicID("msg")
	}
	if err := s.messages.Insert(ctx, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *service) AppendMessages(ctx context.Context, conversationID uint, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	for i := range msgs {
		msgs[i].ConversationID = conversationID
		if msgs[i].PublicID == "" {
			msgs[i].PublicID = newPublicID("msg")
		}
	}
	if err := s.messages.BulkInsert(ctx, msgs); err != nil {
		return err
	}
	return s.conversations.TouchLastMessageAt(ctx, conversationID, time.Now().UTC())
}

func (s *service) LoadWindow(ctx context.Context, conversationID uint, maxMessages int) ([]Message, error) {
	limit := maxMessages
	if limit <= 0 || limit > HardHistoryCap {
		limit = HardHistoryCap
	}
	return s.messages.ListRecent(ctx, conversationID, limit)
}

func (s *service) UpdateSummary(ctx context.Context, conversationID uint, summary string) error {
	return s.conversations.UpdateSummary(ctx, conversationID, summary)
}

func (s *service) RecordAction(ctx context.Context, action *Action) error {
	return s.actions.Insert(ctx, action)
}

func (s *service) ListConversations(ctx context.Context, userID string, p Pagination) ([]Conversation, error) {
	return s.conversations.ListByUser(ctx, userID, p)
}

func (s *service) ListMessages(ctx context.Context, conversationID uint) ([]Message, error) {
	return s.messages.ListByConversationID(ctx, conversationID)
}

func (s *service) ListActions(ctx context.Context, conversationID uint) ([]Action, error) {
	return s.actions.ListByConversationID(ctx, conversationID)
}

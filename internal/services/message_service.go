package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"roomshare/internal/domain/conversation"
	"roomshare/internal/domain/message"
	"roomshare/internal/events"
	"roomshare/internal/repository"
	roomshare_errors "roomshare/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MessageService struct {
	db            *gorm.DB
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	publisher     events.Publisher
	opts          Options
}

func NewMessageService(db *gorm.DB, conversations repository.ConversationRepository, messages repository.MessageRepository, publisher events.Publisher, opts Options) *MessageService {
	return &MessageService{
		db:            db,
		conversations: conversations,
		messages:      messages,
		publisher:     publisher,
		opts:          opts.withDefaults(),
	}
}

type SendMessageInput struct {
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	// ReceiverID may be left empty; it is derived from the conversation.
	ReceiverID uuid.UUID
	Content    string
}

// History returns every message of the conversation in (created_at, id)
// order. Only participants may read it.
func (s *MessageService) History(ctx context.Context, conversationID, viewerID uuid.UUID) ([]message.Message, error) {
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	if _, err := s.participantConversation(ctx, conversationID, viewerID); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, roomshare_errors.Store("list messages", err)
	}
	if messages == nil {
		messages = []message.Message{}
	}
	return messages, nil
}

// Send appends a message and bumps the conversation's last_message_at in a
// single transaction, then announces the insert on the change feed.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (message.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return message.Message{}, roomshare_errors.Invalid("message content is required")
	}
	if utf8.RuneCountInString(content) > message.MaxContentLength {
		return message.Message{}, roomshare_errors.Invalid("message exceeds %d characters", message.MaxContentLength)
	}

	storeCtx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	conv, err := s.participantConversation(storeCtx, in.ConversationID, in.SenderID)
	if err != nil {
		return message.Message{}, err
	}
	receiverID, _ := conv.OtherParticipant(in.SenderID)
	if in.ReceiverID != uuid.Nil && in.ReceiverID != receiverID {
		return message.Message{}, roomshare_errors.Invalid("receiver is not the other participant")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return message.Message{}, fmt.Errorf("generate message id: %w", err)
	}
	msg := message.Message{
		ID:             id,
		ConversationID: conv.ID,
		SenderID:       in.SenderID,
		ReceiverID:     receiverID,
		Content:        content,
		IsRead:         false,
		CreatedAt:      s.opts.Now(),
	}

	err = repository.WithTx(storeCtx, s.db, func(tx *gorm.DB) error {
		if err := repository.NewMessageRepository(tx).Create(storeCtx, &msg); err != nil {
			return err
		}
		return repository.NewConversationRepository(tx).TouchLastMessageAt(storeCtx, conv.ID, msg.CreatedAt)
	})
	if err != nil {
		return message.Message{}, roomshare_errors.Store("send message", err)
	}

	s.publishInsert(ctx, msg)
	return msg, nil
}

func (s *MessageService) publishInsert(ctx context.Context, msg message.Message) {
	if s.publisher == nil {
		return
	}
	change, err := events.NewChange(events.TableMessages, events.EventInsert, map[string]string{
		"conversation_id": msg.ConversationID.String(),
		"sender_id":       msg.SenderID.String(),
		"receiver_id":     msg.ReceiverID.String(),
	}, msg)
	if err == nil {
		err = s.publisher.Publish(ctx, change)
	}
	if err != nil {
		// The row is durable; subscribers converge on their next refetch.
		s.opts.Logger.WarnCtx(ctx, "failed to publish message insert",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err))
	}
}

// MarkRead flips every unread message addressed to userID in the
// conversation to read and returns how many changed.
func (s *MessageService) MarkRead(ctx context.Context, conversationID, userID uuid.UUID) (int64, error) {
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	if _, err := s.participantConversation(ctx, conversationID, userID); err != nil {
		return 0, err
	}
	n, err := s.messages.MarkRead(ctx, conversationID, userID, s.opts.Now())
	if err != nil {
		return 0, roomshare_errors.Store("mark messages read", err)
	}
	return n, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, conversationID, userID uuid.UUID) (int64, error) {
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	n, err := s.messages.CountUnread(ctx, conversationID, userID)
	if err != nil {
		return 0, roomshare_errors.Store("count unread messages", err)
	}
	return n, nil
}

func (s *MessageService) participantConversation(ctx context.Context, conversationID, userID uuid.UUID) (conversation.Conversation, error) {
	if conversationID == uuid.Nil || userID == uuid.Nil {
		return conversation.Conversation{}, roomshare_errors.Invalid("conversation and user are required")
	}
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, roomshare_errors.Store("get conversation", err)
	}
	if !conv.HasParticipant(userID) {
		return conversation.Conversation{}, roomshare_errors.ErrForbidden
	}
	return conv, nil
}

package repository

import (
	"context"
	"time"

	"roomshare/internal/domain/conversation"
	roomshare_errors "roomshare/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

// Create inserts c. A row with the same scope already present yields
// ErrAlreadyExists via the idx_conversation_scope unique index.
func (r *PostgresConversationRepository) Create(ctx context.Context, c *conversation.Conversation) error {
	return translate("create conversation", r.db.WithContext(ctx).Create(c).Error)
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	var c conversation.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return conversation.Conversation{}, translate("get conversation", err)
	}
	return c, nil
}

func (r *PostgresConversationRepository) FindByScope(ctx context.Context, scope conversation.Scope) (conversation.Conversation, error) {
	var c conversation.Conversation
	err := r.db.WithContext(ctx).
		Where("participant_1 = ? AND participant_2 = ? AND listing_scope = ?",
			scope.Pair.Low, scope.Pair.High, scope.ListingKey()).
		First(&c).Error
	if err != nil {
		return conversation.Conversation{}, translate("find conversation", err)
	}
	return c, nil
}

func (r *PostgresConversationRepository) ExistsForPair(ctx context.Context, pair conversation.Pair) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("participant_1 = ? AND participant_2 = ?", pair.Low, pair.High).
		Count(&count).Error
	if err != nil {
		return false, translate("check conversation", err)
	}
	return count > 0, nil
}

func (r *PostgresConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	var conversations []conversation.Conversation
	err := r.db.WithContext(ctx).
		Where("participant_1 = ? OR participant_2 = ?", userID, userID).
		Order("last_message_at DESC").
		Order("created_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, translate("list conversations", err)
	}
	return conversations, nil
}

func (r *PostgresConversationRepository) TouchLastMessageAt(ctx context.Context, conversationID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("id = ?", conversationID).
		Update("last_message_at", at)
	if res.Error != nil {
		return translate("touch conversation", res.Error)
	}
	if res.RowsAffected == 0 {
		return roomshare_errors.ErrNotFound
	}
	return nil
}

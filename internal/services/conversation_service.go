package services

import (
	"context"
	"errors"

	"roomshare/internal/domain/conversation"
	"roomshare/internal/domain/message"
	"roomshare/internal/domain/profile"
	"roomshare/internal/repository"
	roomshare_errors "roomshare/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// enrichConcurrency bounds the per-conversation lookups of ListForUser.
const enrichConcurrency = 8

type ConversationService struct {
	repo     repository.ConversationRepository
	messages repository.MessageRepository
	profiles repository.ProfileRepository
	listings repository.ListingRepository
	opts     Options
}

func NewConversationService(
	repo repository.ConversationRepository,
	messages repository.MessageRepository,
	profiles repository.ProfileRepository,
	listings repository.ListingRepository,
	opts Options,
) *ConversationService {
	return &ConversationService{
		repo:     repo,
		messages: messages,
		profiles: profiles,
		listings: listings,
		opts:     opts.withDefaults(),
	}
}

// ConversationSummary is a conversation as seen by one of its participants.
type ConversationSummary struct {
	Conversation conversation.Conversation
	OtherUserID  uuid.UUID
	// OtherUser is nil when the participant has no profile.
	OtherUser    *profile.Profile
	ListingTitle string
	LastMessage  *message.Message
	UnreadCount  int64
}

// ListForUser returns every conversation userID takes part in, most recently
// active first, enriched for display.
func (s *ConversationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error) {
	if userID == uuid.Nil {
		return nil, roomshare_errors.Invalid("user id is required")
	}

	listCtx, cancel := s.opts.storeContext(ctx)
	conversations, err := s.repo.ListForUser(listCtx, userID)
	cancel()
	if err != nil {
		return nil, roomshare_errors.Store("list conversations", err)
	}

	summaries := make([]ConversationSummary, len(conversations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i, c := range conversations {
		i, c := i, c
		g.Go(func() error {
			summary, err := s.enrich(gctx, c, userID)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *ConversationService) enrich(ctx context.Context, c conversation.Conversation, viewerID uuid.UUID) (ConversationSummary, error) {
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	otherID, _ := c.OtherParticipant(viewerID)
	summary := ConversationSummary{Conversation: c, OtherUserID: otherID}

	other, err := s.profiles.GetByID(ctx, otherID)
	switch {
	case err == nil:
		summary.OtherUser = &other
	case !errors.Is(err, roomshare_errors.ErrNotFound):
		return ConversationSummary{}, roomshare_errors.Store("load participant profile", err)
	}

	if c.ListingID != nil {
		title, err := s.listings.GetTitle(ctx, *c.ListingID)
		switch {
		case err == nil:
			summary.ListingTitle = title
		case !errors.Is(err, roomshare_errors.ErrNotFound):
			return ConversationSummary{}, roomshare_errors.Store("load listing title", err)
		}
	}

	latest, err := s.messages.GetLatest(ctx, c.ID)
	switch {
	case err == nil:
		summary.LastMessage = &latest
	case !errors.Is(err, roomshare_errors.ErrNotFound):
		return ConversationSummary{}, roomshare_errors.Store("load latest message", err)
	}

	unread, err := s.messages.CountUnread(ctx, c.ID, viewerID)
	if err != nil {
		return ConversationSummary{}, roomshare_errors.Store("count unread messages", err)
	}
	summary.UnreadCount = unread
	return summary, nil
}

// GetOrCreate returns the conversation for the pair and listing scope,
// creating it on first contact. created is false when the row already
// existed, including when a concurrent caller inserted it first.
func (s *ConversationService) GetOrCreate(ctx context.Context, userID, otherUserID uuid.UUID, listingID *uuid.UUID) (conversation.Conversation, bool, error) {
	if userID == uuid.Nil || otherUserID == uuid.Nil {
		return conversation.Conversation{}, false, roomshare_errors.Invalid("both participants are required")
	}
	if userID == otherUserID {
		return conversation.Conversation{}, false, roomshare_errors.Invalid("cannot start a conversation with yourself")
	}

	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	scope := conversation.NewScope(userID, otherUserID, listingID)
	existing, err := s.repo.FindByScope(ctx, scope)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, roomshare_errors.ErrNotFound) {
		return conversation.Conversation{}, false, roomshare_errors.Store("find conversation", err)
	}

	now := s.opts.Now()
	conv := conversation.Conversation{
		ID:            uuid.New(),
		Participant1:  scope.Pair.Low,
		Participant2:  scope.Pair.High,
		ListingScope:  scope.ListingKey(),
		ListingID:     scope.ListingID,
		InitiatorID:   userID,
		LastMessageAt: now,
		CreatedAt:     now,
	}
	if err := s.repo.Create(ctx, &conv); err != nil {
		if !errors.Is(err, roomshare_errors.ErrAlreadyExists) {
			return conversation.Conversation{}, false, roomshare_errors.Store("create conversation", err)
		}
		winner, err := s.repo.FindByScope(ctx, scope)
		if err != nil {
			return conversation.Conversation{}, false, roomshare_errors.Store("find conversation", err)
		}
		s.opts.Logger.Debugf("conversation %s created concurrently", winner.ID)
		return winner, false, nil
	}

	s.opts.Logger.InfoCtx(ctx, "conversation created",
		zap.String("conversation_id", conv.ID.String()),
		zap.String("listing_scope", conv.ListingScope))
	return conv, true, nil
}

// Exists reports whether any conversation exists between the two users,
// whatever its listing scope.
func (s *ConversationService) Exists(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || otherUserID == uuid.Nil {
		return false, roomshare_errors.Invalid("both participants are required")
	}
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()

	exists, err := s.repo.ExistsForPair(ctx, conversation.NewPair(userID, otherUserID))
	if err != nil {
		return false, roomshare_errors.Store("check conversation", err)
	}
	return exists, nil
}

func (s *ConversationService) TouchLastMessageAt(ctx context.Context, conversationID uuid.UUID) error {
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()
	return roomshare_errors.Store("touch conversation", s.repo.TouchLastMessageAt(ctx, conversationID, s.opts.Now()))
}

func (s *ConversationService) Get(ctx context.Context, conversationID uuid.UUID) (conversation.Conversation, error) {
	ctx, cancel := s.opts.storeContext(ctx)
	defer cancel()
	c, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, roomshare_errors.Store("get conversation", err)
	}
	return c, nil
}

// GetForParticipant loads a conversation and checks that userID is part of it.
func (s *ConversationService) GetForParticipant(ctx context.Context, conversationID, userID uuid.UUID) (conversation.Conversation, error) {
	c, err := s.Get(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if !c.HasParticipant(userID) {
		return conversation.Conversation{}, roomshare_errors.ErrForbidden
	}
	return c, nil
}

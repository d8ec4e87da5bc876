package services

import (
	"context"
	"strings"
	"time"

	"github.com/thoughtstream/thoughtstream-backend/internal/apperrors"
	"github.com/thoughtstream/thoughtstream-backend/internal/models"
	"github.com/thoughtstream/thoughtstream-backend/internal/store"
	"github.com/thoughtstream/thoughtstream-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ThoughtService is the typed repository over the thoughts collection,
// including the embedded reaction sub-documents.
type ThoughtService struct {
	store store.Store
	cache *CacheService
	rel   *RelationshipService
}

func NewThoughtService(st store.Store, cache *CacheService, rel *RelationshipService) *ThoughtService {
	return &ThoughtService{store: st, cache: cache, rel: rel}
}

// ListThoughts returns all thoughts, newest first.
func (s *ThoughtService) ListThoughts(ctx context.Context) ([]models.Thought, error) {
	var thoughts []models.Thought
	err := s.store.Find(ctx, thoughtsCollection, store.Query{},
		&store.Sort{Field: "created_at", Desc: true}, &thoughts)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	if thoughts == nil {
		thoughts = []models.Thought{}
	}
	return thoughts, nil
}

// GetThought returns a single thought with its author and every reaction
// author expanded to minimal projections.
func (s *ThoughtService) GetThought(ctx context.Context, id string) (*models.ThoughtView, error) {
	var cached models.ThoughtView
	if s.cache.Get(ctx, ThoughtCacheKey(id), &cached) {
		return &cached, nil
	}

	thought, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := expandThought(ctx, s.store, thought)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, ThoughtCacheKey(id), view)
	return view, nil
}

// CreateThought validates, persists the thought and then links it to its
// author. The thought is created before the link so a failure between the
// two steps leaves an orphan rather than a dangling reference; the link step
// reports that orphan as a partial failure, returned alongside the created
// thought.
func (s *ThoughtService) CreateThought(ctx context.Context, text, authorID string) (*models.Thought, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("thoughtText", "thought text is required")
	}
	if !utils.IsValidLength(text) {
		return nil, apperrors.Validation("thoughtText", utils.ValidLengthMessage("Thought text"))
	}
	if authorID == "" {
		return nil, apperrors.Validation("author", "author is required")
	}

	var author models.User
	if err := s.store.Get(ctx, usersCollection, authorID, &author); err != nil {
		if err == store.ErrNoDocument {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Store(err)
	}

	now := time.Now().UTC()
	thought := models.Thought{
		ID:          primitive.NewObjectID(),
		ThoughtText: text,
		Author:      author.ID,
		Reactions:   []models.Reaction{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, thoughtsCollection, thought); err != nil {
		return nil, apperrors.Store(err)
	}

	if err := s.rel.LinkThought(ctx, author.ID, thought.ID); err != nil {
		return &thought, err
	}
	return &thought, nil
}

// UpdateThought is a text-only mutation.
func (s *ThoughtService) UpdateThought(ctx context.Context, id, text string) (*models.ThoughtView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("thoughtText", "updated thought text required")
	}
	if !utils.IsValidLength(text) {
		return nil, apperrors.Validation("thoughtText", utils.ValidLengthMessage("Thought text"))
	}

	thought, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.store.UpdateByID(ctx, thoughtsCollection, id, store.Update{
		Set: map[string]interface{}{
			"thought_text": text,
			"updated_at":   time.Now().UTC(),
		},
	})
	if err != nil {
		return nil, apperrors.Store(err)
	}
	s.cache.Invalidate(ctx, ThoughtCacheKey(id), UserCacheKey(thought.Author.Hex()))

	return s.reload(ctx, id)
}

// DeleteThought unlinks the thought from its author first, then deletes the
// document, returning the pre-delete snapshot. A missing author is tolerated;
// a failed unlink aborts before anything is deleted so the caller can retry.
func (s *ThoughtService) DeleteThought(ctx context.Context, id string) (*models.Thought, error) {
	thought, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rel.UnlinkThought(ctx, thought.Author, thought.ID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteByID(ctx, thoughtsCollection, id); err != nil && err != store.ErrNoDocument {
		return nil, apperrors.Store(err)
	}
	s.cache.Invalidate(ctx, ThoughtCacheKey(id))
	return thought, nil
}

// AddReaction appends a reaction with a server-generated id and timestamps,
// returning the updated expanded thought.
func (s *ThoughtService) AddReaction(ctx context.Context, thoughtID, body, authorID string) (*models.ThoughtView, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.Validation("reactionBody", "reaction body is required")
	}
	if !utils.IsValidLength(body) {
		return nil, apperrors.Validation("reactionBody", utils.ValidLengthMessage("Reaction body"))
	}
	authorOID, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return nil, apperrors.Validation("author", "reaction author is required")
	}

	thought, err := s.load(ctx, thoughtID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reaction := models.Reaction{
		ID:           primitive.NewObjectID(),
		ReactionBody: body,
		Author:       authorOID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.store.UpdateByID(ctx, thoughtsCollection, thought.ID.Hex(), store.Update{
		Push: map[string]interface{}{"reactions": reaction},
		Set:  map[string]interface{}{"updated_at": now},
	})
	if err != nil {
		return nil, apperrors.Store(err)
	}
	s.cache.Invalidate(ctx, ThoughtCacheKey(thoughtID))

	return s.reload(ctx, thoughtID)
}

// RemoveReaction removes the matching embedded reaction. An unknown reaction
// id is an explicit not-found, never a silent no-op.
func (s *ThoughtService) RemoveReaction(ctx context.Context, thoughtID, reactionID string) (*models.ThoughtView, error) {
	thought, err := s.load(ctx, thoughtID)
	if err != nil {
		return nil, err
	}

	reactionOID, err := primitive.ObjectIDFromHex(reactionID)
	if err != nil {
		return nil, apperrors.NotFound("reaction")
	}
	found := false
	for _, r := range thought.Reactions {
		if r.ID == reactionOID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.NotFound("reaction")
	}

	err = s.store.UpdateByID(ctx, thoughtsCollection, thoughtID, store.Update{
		Pull: map[string]interface{}{
			"reactions": map[string]interface{}{"_id": reactionOID},
		},
		Set: map[string]interface{}{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return nil, apperrors.Store(err)
	}
	s.cache.Invalidate(ctx, ThoughtCacheKey(thoughtID))

	return s.reload(ctx, thoughtID)
}

func (s *ThoughtService) load(ctx context.Context, id string) (*models.Thought, error) {
	var thought models.Thought
	if err := s.store.Get(ctx, thoughtsCollection, id, &thought); err != nil {
		if err == store.ErrNoDocument {
			return nil, apperrors.NotFound("thought")
		}
		return nil, apperrors.Store(err)
	}
	return &thought, nil
}

func (s *ThoughtService) reload(ctx context.Context, id string) (*models.ThoughtView, error) {
	thought, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return expandThought(ctx, s.store, thought)
}

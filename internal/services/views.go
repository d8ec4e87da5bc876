package services

import (
	"context"

	"github.com/thoughtstream/thoughtstream-backend/internal/apperrors"
	"github.com/thoughtstream/thoughtstream-backend/internal/models"
	"github.com/thoughtstream/thoughtstream-backend/internal/store"
	"github.com/thoughtstream/thoughtstream-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	usersCollection    = "users"
	thoughtsCollection = "thoughts"
)

// summaryResolver looks up minimal author projections, memoizing per request
// so a thought with many reactions by the same user costs one lookup.
type summaryResolver struct {
	st   store.Store
	seen map[string]models.UserSummary
}

func newSummaryResolver(st store.Store) *summaryResolver {
	return &summaryResolver{st: st, seen: make(map[string]models.UserSummary)}
}

// resolve returns a summary for the given user id. A dangling reference is
// tolerated: the summary keeps the id and an empty username.
func (r *summaryResolver) resolve(ctx context.Context, id primitive.ObjectID) (models.UserSummary, error) {
	if s, ok := r.seen[id.Hex()]; ok {
		return s, nil
	}
	var u models.User
	err := r.st.Get(ctx, usersCollection, id.Hex(), &u)
	if err == store.ErrNoDocument {
		s := models.UserSummary{ID: id}
		r.seen[id.Hex()] = s
		return s, nil
	}
	if err != nil {
		return models.UserSummary{}, apperrors.Store(err)
	}
	s := u.Summary()
	r.seen[id.Hex()] = s
	return s, nil
}

// expandThought resolves the thought's author and every reaction author to
// their minimal projections.
func expandThought(ctx context.Context, st store.Store, t *models.Thought) (*models.ThoughtView, error) {
	resolver := newSummaryResolver(st)
	return expandThoughtWith(ctx, resolver, t)
}

func expandThoughtWith(ctx context.Context, resolver *summaryResolver, t *models.Thought) (*models.ThoughtView, error) {
	author, err := resolver.resolve(ctx, t.Author)
	if err != nil {
		return nil, err
	}

	reactions := make([]models.ReactionView, 0, len(t.Reactions))
	for _, reaction := range t.Reactions {
		reactionAuthor, err := resolver.resolve(ctx, reaction.Author)
		if err != nil {
			return nil, err
		}
		reactions = append(reactions, models.ReactionView{
			ID:                 reaction.ID,
			ReactionBody:       reaction.ReactionBody,
			Author:             reactionAuthor,
			CreatedAt:          reaction.CreatedAt,
			CreatedAtFormatted: utils.FormatDate(reaction.CreatedAt),
		})
	}

	return &models.ThoughtView{
		ID:                 t.ID,
		ThoughtText:        t.ThoughtText,
		Author:             author,
		Reactions:          reactions,
		ReactionCount:      len(reactions),
		CreatedAt:          t.CreatedAt,
		CreatedAtFormatted: utils.FormatDate(t.CreatedAt),
		UpdatedAt:          t.UpdatedAt,
	}, nil
}

// expandUser resolves the user's thoughts to full thought views and friends
// to minimal summaries. Dangling thought ids are skipped rather than failing
// the read; the thoughts collection is the source of truth.
func expandUser(ctx context.Context, st store.Store, u *models.User) (*models.UserView, error) {
	resolver := newSummaryResolver(st)
	resolver.seen[u.ID.Hex()] = u.Summary()

	thoughts := make([]models.ThoughtView, 0, len(u.Thoughts))
	for _, thoughtID := range u.Thoughts {
		var t models.Thought
		err := st.Get(ctx, thoughtsCollection, thoughtID.Hex(), &t)
		if err == store.ErrNoDocument {
			continue
		}
		if err != nil {
			return nil, apperrors.Store(err)
		}
		view, err := expandThoughtWith(ctx, resolver, &t)
		if err != nil {
			return nil, err
		}
		thoughts = append(thoughts, *view)
	}

	friends := make([]models.UserSummary, 0, len(u.Friends))
	for _, friendID := range u.Friends {
		summary, err := resolver.resolve(ctx, friendID)
		if err != nil {
			return nil, err
		}
		if summary.Username == "" {
			// Dangling friend reference; hide it from the view.
			continue
		}
		friends = append(friends, summary)
	}

	return &models.UserView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Thoughts:    thoughts,
		Friends:     friends,
		FriendCount: len(friends),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}, nil
}

package services

import (
	"context"
	"fmt"
	"log"

	"github.com/thoughtstream/thoughtstream-backend/internal/apperrors"
	"github.com/thoughtstream/thoughtstream-backend/internal/models"
	"github.com/thoughtstream/thoughtstream-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelationshipService owns every operation that touches more than one
// document. The store has no multi-document transactions, so each sequence is
// ordered to minimize user-visible breakage (create the referenced entity
// before linking, unlink before deleting the referencing entity) and every
// individual step is retry-safe. A step that fails mid-sequence is reported
// as an *apperrors.PartialError naming the step and the leftover state; it is
// never swallowed.
type RelationshipService struct {
	store store.Store
	cache *CacheService
}

func NewRelationshipService(st store.Store, cache *CacheService) *RelationshipService {
	return &RelationshipService{store: st, cache: cache}
}

// LinkThought appends a freshly created thought's id to its author's thoughts
// list. AddToSet keeps a retried link from duplicating the id. If the author
// vanished between the existence check and the link, the thought is orphaned;
// that is surfaced as a partial failure for an external reconciler.
func (s *RelationshipService) LinkThought(ctx context.Context, authorID, thoughtID primitive.ObjectID) error {
	err := s.store.UpdateByID(ctx, usersCollection, authorID.Hex(), store.Update{
		AddToSet: map[string]interface{}{"thoughts": thoughtID},
	})
	if err == nil {
		s.cache.Invalidate(ctx, UserCacheKey(authorID.Hex()))
		return nil
	}

	partial := &apperrors.PartialError{
		Op: "create thought",
		Steps: []apperrors.StepFailure{{
			Step:   "link thought to author",
			Detail: fmt.Sprintf("thought %s is persisted but missing from user %s's thoughts list", thoughtID.Hex(), authorID.Hex()),
			Err:    err,
		}},
	}
	log.Printf("⚠️  %v", partial)
	return partial
}

// UnlinkThought removes a thought's id from its author's thoughts list before
// the thought itself is deleted. A missing author is not an error; dangling
// author references are tolerated. Pull of an absent id is a no-op, so a
// retried unlink never errors either.
func (s *RelationshipService) UnlinkThought(ctx context.Context, authorID, thoughtID primitive.ObjectID) error {
	err := s.store.UpdateByID(ctx, usersCollection, authorID.Hex(), store.Update{
		Pull: map[string]interface{}{"thoughts": thoughtID},
	})
	if err == store.ErrNoDocument {
		return nil
	}
	if err != nil {
		return apperrors.Store(err)
	}
	s.cache.Invalidate(ctx, UserCacheKey(authorID.Hex()))
	return nil
}

// AddFriend appends friendID to userID's friends list. Membership is
// one-directional: only the acting user's document changes, for both add and
// remove. Returns the updated requester and the friend's minimal projection.
func (s *RelationshipService) AddFriend(ctx context.Context, userID, friendID string) (*models.User, *models.UserSummary, error) {
	var friend models.User
	if err := s.store.Get(ctx, usersCollection, friendID, &friend); err != nil {
		if err == store.ErrNoDocument {
			return nil, nil, apperrors.NotFound("friend")
		}
		return nil, nil, apperrors.Store(err)
	}

	var user models.User
	if err := s.store.Get(ctx, usersCollection, userID, &user); err != nil {
		if err == store.ErrNoDocument {
			return nil, nil, apperrors.NotFound("user")
		}
		return nil, nil, apperrors.Store(err)
	}

	if containsID(user.Friends, friend.ID) {
		return nil, nil, apperrors.Conflict("friendId", friendID,
			"that friend is already in this user's friends list")
	}

	err := s.store.UpdateByID(ctx, usersCollection, userID, store.Update{
		AddToSet: map[string]interface{}{"friends": friend.ID},
	})
	if err != nil {
		return nil, nil, apperrors.Store(err)
	}
	s.cache.Invalidate(ctx, UserCacheKey(userID))

	if err := s.store.Get(ctx, usersCollection, userID, &user); err != nil {
		return nil, nil, apperrors.Store(err)
	}
	summary := friend.Summary()
	return &user, &summary, nil
}

// RemoveFriend removes friendID from userID's friends list. Removing an id
// that is not currently a friend is a conflict, mirroring AddFriend's
// duplicate check. Returns the updated requester and the removed friend's
// minimal projection; a dangling reference can still be removed, its summary
// then carries only the id.
func (s *RelationshipService) RemoveFriend(ctx context.Context, userID, friendID string) (*models.User, *models.UserSummary, error) {
	var user models.User
	if err := s.store.Get(ctx, usersCollection, userID, &user); err != nil {
		if err == store.ErrNoDocument {
			return nil, nil, apperrors.NotFound("user")
		}
		return nil, nil, apperrors.Store(err)
	}

	friendOID, err := primitive.ObjectIDFromHex(friendID)
	if err != nil || !containsID(user.Friends, friendOID) {
		return nil, nil, apperrors.Conflict("friendId", friendID,
			"that friend was not found in this user's friends list")
	}

	summary := models.UserSummary{ID: friendOID}
	var friend models.User
	if err := s.store.Get(ctx, usersCollection, friendID, &friend); err == nil {
		summary = friend.Summary()
	}

	err = s.store.UpdateByID(ctx, usersCollection, userID, store.Update{
		Pull: map[string]interface{}{"friends": friendOID},
	})
	if err != nil {
		return nil, nil, apperrors.Store(err)
	}
	s.cache.Invalidate(ctx, UserCacheKey(userID))

	if err := s.store.Get(ctx, usersCollection, userID, &user); err != nil {
		return nil, nil, apperrors.Store(err)
	}
	return &user, &summary, nil
}

// CascadeDeleteUser removes everything that references the user, then the
// user document itself: first every thought the user authored, then the
// user's id from every other user's friends list, and the user document last
// so a failed cascade can be retried. Step failures are accumulated, not
// fatal; if any step failed the whole operation reports a partial failure.
func (s *RelationshipService) CascadeDeleteUser(ctx context.Context, user *models.User) error {
	var failed []apperrors.StepFailure

	// The thoughts collection is the source of truth for authorship, so the
	// cascade queries it directly instead of trusting the back-reference list.
	var authored []models.Thought
	err := s.store.Find(ctx, thoughtsCollection, store.Query{
		Eq: map[string]interface{}{"author": user.ID},
	}, nil, &authored)
	if err != nil {
		failed = append(failed, apperrors.StepFailure{
			Step:   "find authored thoughts",
			Detail: fmt.Sprintf("thoughts authored by user %s may remain", user.ID.Hex()),
			Err:    err,
		})
	}
	for _, t := range authored {
		err := s.store.DeleteByID(ctx, thoughtsCollection, t.ID.Hex())
		if err != nil && err != store.ErrNoDocument {
			failed = append(failed, apperrors.StepFailure{
				Step:   "delete authored thought",
				Detail: fmt.Sprintf("thought %s still exists without a valid author", t.ID.Hex()),
				Err:    err,
			})
			continue
		}
		s.cache.Invalidate(ctx, ThoughtCacheKey(t.ID.Hex()))
	}

	var referencing []models.User
	err = s.store.Find(ctx, usersCollection, store.Query{
		Contains: map[string]interface{}{"friends": user.ID},
	}, nil, &referencing)
	if err != nil {
		failed = append(failed, apperrors.StepFailure{
			Step:   "find referencing friends",
			Detail: fmt.Sprintf("users may keep dangling friend references to %s", user.ID.Hex()),
			Err:    err,
		})
	}
	for _, other := range referencing {
		err := s.store.UpdateByID(ctx, usersCollection, other.ID.Hex(), store.Update{
			Pull: map[string]interface{}{"friends": user.ID},
		})
		if err != nil && err != store.ErrNoDocument {
			failed = append(failed, apperrors.StepFailure{
				Step:   "remove friend reference",
				Detail: fmt.Sprintf("user %s keeps a dangling friend reference to %s", other.ID.Hex(), user.ID.Hex()),
				Err:    err,
			})
			continue
		}
		s.cache.Invalidate(ctx, UserCacheKey(other.ID.Hex()))
	}

	if err := s.store.DeleteByID(ctx, usersCollection, user.ID.Hex()); err != nil && err != store.ErrNoDocument {
		failed = append(failed, apperrors.StepFailure{
			Step:   "delete user document",
			Detail: fmt.Sprintf("user %s still exists after its references were removed", user.ID.Hex()),
			Err:    err,
		})
	}
	s.cache.Invalidate(ctx, UserCacheKey(user.ID.Hex()))

	if len(failed) > 0 {
		partial := &apperrors.PartialError{Op: "delete user", Steps: failed}
		log.Printf("⚠️  %v", partial)
		return partial
	}
	return nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

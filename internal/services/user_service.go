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

// UserService is the typed repository over the users collection. Operations
// touching more than one document delegate to the relationship coordinator.
type UserService struct {
	store store.Store
	cache *CacheService
	rel   *RelationshipService
}

func NewUserService(st store.Store, cache *CacheService, rel *RelationshipService) *UserService {
	return &UserService{store: st, cache: cache, rel: rel}
}

// ListUsers returns all users sorted by username.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.store.Find(ctx, usersCollection, store.Query{}, &store.Sort{Field: "username"}, &users)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// GetUser returns a single user with thoughts and friends expanded.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.UserView, error) {
	var cached models.UserView
	if s.cache.Get(ctx, UserCacheKey(id), &cached) {
		return &cached, nil
	}

	var user models.User
	if err := s.store.Get(ctx, usersCollection, id, &user); err != nil {
		if err == store.ErrNoDocument {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Store(err)
	}

	view, err := expandUser(ctx, s.store, &user)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, UserCacheKey(id), view)
	return view, nil
}

// CreateUser validates and persists a new user with empty thoughts and
// friends lists. Username and email are both enforced unique.
func (s *UserService) CreateUser(ctx context.Context, username, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, apperrors.Validation("username", "username is required")
	}
	if email == "" {
		return nil, apperrors.Validation("email", "email is required")
	}
	if !utils.IsEmail(email) {
		return nil, apperrors.Validation("email", "invalid email address")
	}

	if err := s.checkUnique(ctx, "username", username, primitive.NilObjectID); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, "email", email, primitive.NilObjectID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Thoughts:  []primitive.ObjectID{},
		Friends:   []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, usersCollection, user); err != nil {
		return nil, apperrors.Store(err)
	}
	return &user, nil
}

// UpdateUser changes only the supplied fields. An empty patch is rejected.
func (s *UserService) UpdateUser(ctx context.Context, id, username, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" && email == "" {
		return nil, apperrors.Validation("username",
			"new username or email are required to update profile info")
	}

	var user models.User
	if err := s.store.Get(ctx, usersCollection, id, &user); err != nil {
		if err == store.ErrNoDocument {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Store(err)
	}

	set := map[string]interface{}{"updated_at": time.Now().UTC()}
	if username != "" && username != user.Username {
		if err := s.checkUnique(ctx, "username", username, user.ID); err != nil {
			return nil, err
		}
		set["username"] = username
	}
	if email != "" && email != user.Email {
		if !utils.IsEmail(email) {
			return nil, apperrors.Validation("email", "invalid email address")
		}
		if err := s.checkUnique(ctx, "email", email, user.ID); err != nil {
			return nil, err
		}
		set["email"] = email
	}

	if err := s.store.UpdateByID(ctx, usersCollection, id, store.Update{Set: set}); err != nil {
		if err == store.ErrNoDocument {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Store(err)
	}
	s.cache.Invalidate(ctx, UserCacheKey(id))

	if err := s.store.Get(ctx, usersCollection, id, &user); err != nil {
		return nil, apperrors.Store(err)
	}
	return &user, nil
}

// DeleteUser removes the user, every thought it authored and every friend
// reference to it, returning the pre-delete snapshot. A partially completed
// cascade is returned alongside the snapshot so the caller can report it.
func (s *UserService) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.store.Get(ctx, usersCollection, id, &user); err != nil {
		if err == store.ErrNoDocument {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Store(err)
	}

	if err := s.rel.CascadeDeleteUser(ctx, &user); err != nil {
		return &user, err
	}
	return &user, nil
}

// AddFriend and RemoveFriend delegate the cross-document work to the
// relationship coordinator.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID string) (*models.User, *models.UserSummary, error) {
	return s.rel.AddFriend(ctx, userID, friendID)
}

func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID string) (*models.User, *models.UserSummary, error) {
	return s.rel.RemoveFriend(ctx, userID, friendID)
}

// checkUnique rejects a value already used by a different user.
func (s *UserService) checkUnique(ctx context.Context, field, value string, self primitive.ObjectID) error {
	var existing []models.User
	err := s.store.Find(ctx, usersCollection, store.Query{
		Eq: map[string]interface{}{field: value},
	}, nil, &existing)
	if err != nil {
		return apperrors.Store(err)
	}
	for _, u := range existing {
		if u.ID != self {
			return apperrors.Conflict(field, value, "that "+field+" is already in use")
		}
	}
	return nil
}

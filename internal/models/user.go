package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the stored users document. Thoughts and Friends hold ids only; the
// referenced documents are resolved on read, never held as live references.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username  string               `bson:"username" json:"username"`
	Email     string               `bson:"email" json:"email"`
	Thoughts  []primitive.ObjectID `bson:"thoughts" json:"thoughts"`
	Friends   []primitive.ObjectID `bson:"friends" json:"friends"`
	CreatedAt time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updatedAt"`
}

// MarshalJSON adds the derived friendCount; it is computed from the friends
// list and never stored.
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		FriendCount int `json:"friendCount"`
	}{alias(u), len(u.Friends)})
}

// UserSummary is the minimal projection used when expanding friends and
// authors, keeping expansion non-recursive.
type UserSummary struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}

// UserView is a single user with thoughts and friends resolved to their
// referenced entities.
type UserView struct {
	ID          primitive.ObjectID `json:"id"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	Thoughts    []ThoughtView      `json:"thoughts"`
	Friends     []UserSummary      `json:"friends"`
	FriendCount int                `json:"friendCount"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

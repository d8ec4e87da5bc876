package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reaction is embedded inside a Thought and never exists independently;
// deleting the thought deletes its reactions with it.
type Reaction struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	ReactionBody string             `bson:"reaction_body" json:"reactionBody"`
	Author       primitive.ObjectID `bson:"author" json:"author"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Thought is the stored thoughts document. The thoughts collection is the
// source of truth for authorship; the author's thoughts list is a weak
// back-reference.
type Thought struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ThoughtText string             `bson:"thought_text" json:"thoughtText"`
	Author      primitive.ObjectID `bson:"author" json:"author"`
	Reactions   []Reaction         `bson:"reactions" json:"reactions"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// MarshalJSON adds the derived reactionCount, computed from the reactions
// list on every read.
func (t Thought) MarshalJSON() ([]byte, error) {
	type alias Thought
	return json.Marshal(struct {
		alias
		ReactionCount int `json:"reactionCount"`
	}{alias(t), len(t.Reactions)})
}

// ReactionView is a reaction with its author resolved to a summary.
type ReactionView struct {
	ID                 primitive.ObjectID `json:"id"`
	ReactionBody       string             `json:"reactionBody"`
	Author             UserSummary        `json:"author"`
	CreatedAt          time.Time          `json:"createdAt"`
	CreatedAtFormatted string             `json:"createdAtFormatted"`
}

// ThoughtView is a thought with its author and each reaction's author
// resolved to summaries.
type ThoughtView struct {
	ID                 primitive.ObjectID `json:"id"`
	ThoughtText        string             `json:"thoughtText"`
	Author             UserSummary        `json:"author"`
	Reactions          []ReactionView     `json:"reactions"`
	ReactionCount      int                `json:"reactionCount"`
	CreatedAt          time.Time          `json:"createdAt"`
	CreatedAtFormatted string             `json:"createdAtFormatted"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

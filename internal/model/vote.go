package model

import "time"

// IdeaVote records that a user has voted for an idea. The composite
// (UserID, IdeaID) key IS the vote — there is no value column and no
// surrogate id, so "at most one vote per user per idea" is a storage
// invariant, not application bookkeeping. Casting inserts the row,
// retracting deletes it.
type IdeaVote struct {
	UserID    string    `json:"userId"    db:"user_id"`
	IdeaID    int64     `json:"ideaId"    db:"idea_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

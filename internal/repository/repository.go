// Package repository defines the storage interfaces consumed by the
// service layer. Services depend on these interfaces, never on the sqlite
// package — tests inject in-memory mocks, and the storage backend could be
// swapped without touching business logic.
package repository

import (
	"context"

	"github.com/sakif/idealab/internal/model"
	"github.com/sakif/idealab/internal/policy"
)

// RecordStore is the persistence contract shared by all user-submitted
// record types. One interface, one generic service on top of it — the
// per-type differences live entirely in the model's field table and the
// concrete sqlite store.
//
// Get fetches without a visibility filter; it exists for the post-fetch
// mutation check, where the row must be loaded before its owner is known.
// GetVisible and List apply the actor's visibility at the query boundary,
// so rows the actor may not read never leave the store.
type RecordStore[T model.Record] interface {
	Create(ctx context.Context, rec T) error
	Get(ctx context.Context, id int64) (T, error)
	GetVisible(ctx context.Context, id int64, vis policy.Visibility) (T, error)
	List(ctx context.Context, vis policy.Visibility) ([]T, error)
	Update(ctx context.Context, rec T) error
	Delete(ctx context.Context, id int64) error
}

// UserStore persists local user records keyed by their derived id.
type UserStore interface {
	Get(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
}

// VoteStore persists idea votes. A vote is the existence of the
// (user, idea) row; Add and Remove are the only writes.
type VoteStore interface {
	Has(ctx context.Context, userID string, ideaID int64) (bool, error)
	Add(ctx context.Context, userID string, ideaID int64) error
	Remove(ctx context.Context, userID string, ideaID int64) error
	CountForIdea(ctx context.Context, ideaID int64) (int, error)
	CountAll(ctx context.Context) (map[int64]int, error)
	IdeasVotedBy(ctx context.Context, userID string) (map[int64]bool, error)
}

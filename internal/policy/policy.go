// Package policy decides what an actor may see and do.
//
// There are two enforcement points, and they are deliberately different:
//
//   - VISIBILITY is a filter applied at the query boundary. Rows an actor
//     may not read never leave the store, so a GET of somebody else's
//     unpublished idea is indistinguishable from a GET of an id that was
//     never issued (404 either way — no existence leakage).
//   - MUTATION is a post-fetch check. The row has to be loaded before its
//     owner is known, so update/delete first fetch unfiltered, then ask
//     CanMutate.
//
// Visibility is expressed as a typed Visibility value, never as a SQL
// fragment built here. The storage layer renders it with placeholders; no
// actor id is ever formatted into a query string.
package policy

// Actor is the identity behind a request. The zero value is the anonymous
// actor.
type Actor struct {
	ID    string
	Admin bool
}

// Authenticated reports whether the actor carries a valid session.
func (a Actor) Authenticated() bool { return a.ID != "" }

// RecordKind selects the visibility rule set. Ideas and improvements have
// different read rules (improvements are never public).
type RecordKind int

const (
	KindIdea RecordKind = iota
	KindImprovement
)

// Scope enumerates the visibility filters the storage layer knows how to
// render.
type Scope int

const (
	// ScopeNone matches no rows at all.
	ScopeNone Scope = iota
	// ScopePublished matches published rows only.
	ScopePublished
	// ScopePublishedOrOwn matches published rows plus rows owned by OwnerID.
	ScopePublishedOrOwn
	// ScopeOwn matches rows owned by OwnerID, published or not.
	ScopeOwn
	// ScopeAll matches every row, bypassing the filter entirely.
	ScopeAll
)

// Visibility is the query-time read filter for one actor and record kind.
type Visibility struct {
	Scope   Scope
	OwnerID string // set for ScopePublishedOrOwn and ScopeOwn
}

// Visible computes the read filter for an actor.
//
// Ideas: anonymous actors see published ideas; authenticated users
// additionally see their own unpublished ones; admins see everything.
//
// Improvements: owner-or-admin only. They are internal suggestions, not a
// public feed — anonymous actors see none, users see only their own, and
// the published flag plays no part in reads.
func Visible(actor Actor, kind RecordKind) Visibility {
	if actor.Admin {
		return Visibility{Scope: ScopeAll}
	}
	switch kind {
	case KindImprovement:
		if !actor.Authenticated() {
			return Visibility{Scope: ScopeNone}
		}
		return Visibility{Scope: ScopeOwn, OwnerID: actor.ID}
	default:
		if !actor.Authenticated() {
			return Visibility{Scope: ScopePublished}
		}
		return Visibility{Scope: ScopePublishedOrOwn, OwnerID: actor.ID}
	}
}

// CanCreate reports whether the actor may create records. Anonymous
// creation is rejected outright.
func CanCreate(actor Actor) bool { return actor.Authenticated() }

// CanMutate reports whether the actor may update or delete a record owned
// by ownerID: the owner may, an admin may, nobody else.
func CanMutate(actor Actor, ownerID string) bool {
	if !actor.Authenticated() {
		return false
	}
	return actor.Admin || actor.ID == ownerID
}

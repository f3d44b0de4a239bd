package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/idealab/internal/apperror"
	"github.com/sakif/idealab/internal/model"
	"github.com/sakif/idealab/internal/repository"
)

type voteKey struct {
	userID string
	ideaID int64
}

type mockVoteStore struct {
	votes     map[voteKey]bool
	countAlls int // how many times the full recount ran
}

var _ repository.VoteStore = (*mockVoteStore)(nil)

func newMockVoteStore() *mockVoteStore {
	return &mockVoteStore{votes: make(map[voteKey]bool)}
}

func (m *mockVoteStore) Has(_ context.Context, userID string, ideaID int64) (bool, error) {
	return m.votes[voteKey{userID, ideaID}], nil
}

func (m *mockVoteStore) Add(_ context.Context, userID string, ideaID int64) error {
	m.votes[voteKey{userID, ideaID}] = true
	return nil
}

func (m *mockVoteStore) Remove(_ context.Context, userID string, ideaID int64) error {
	delete(m.votes, voteKey{userID, ideaID})
	return nil
}

func (m *mockVoteStore) CountForIdea(_ context.Context, ideaID int64) (int, error) {
	n := 0
	for k := range m.votes {
		if k.ideaID == ideaID {
			n++
		}
	}
	return n, nil
}

func (m *mockVoteStore) CountAll(_ context.Context) (map[int64]int, error) {
	m.countAlls++
	out := make(map[int64]int)
	for k := range m.votes {
		out[k.ideaID]++
	}
	return out, nil
}

func (m *mockVoteStore) IdeasVotedBy(_ context.Context, userID string) (map[int64]bool, error) {
	out := make(map[int64]bool)
	for k := range m.votes {
		if k.userID == userID {
			out[k.ideaID] = true
		}
	}
	return out, nil
}

func newTestVoteCounter(t *testing.T) (*VoteCounter, *mockVoteStore, *model.Idea) {
	t.Helper()
	ideas := newMockIdeaStore()
	idea := &model.Idea{Title: "votable", UserID: "alice"}
	if err := ideas.Create(context.Background(), idea); err != nil {
		t.Fatalf("setup: %v", err)
	}
	votes := newMockVoteStore()
	return NewVoteCounter(votes, ideas, testLogger()), votes, idea
}

// =========================================================================
// TOGGLE TESTS
// =========================================================================

func TestToggle_RoundTrip(t *testing.T) {
	vc, _, idea := newTestVoteCounter(t)
	ctx := context.Background()

	loved, votes, err := vc.Toggle(ctx, "bob", idea.ID)
	if err != nil {
		t.Fatalf("first Toggle() error = %v", err)
	}
	if !loved || votes != 1 {
		t.Errorf("first toggle: loved=%v votes=%d, want true 1", loved, votes)
	}

	loved, votes, err = vc.Toggle(ctx, "bob", idea.ID)
	if err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}
	if loved || votes != 0 {
		t.Errorf("second toggle: loved=%v votes=%d, want false 0", loved, votes)
	}
}

func TestToggle_UnknownIdea(t *testing.T) {
	vc, _, _ := newTestVoteCounter(t)

	_, _, err := vc.Toggle(context.Background(), "bob", 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestToggle_IndependentVoters(t *testing.T) {
	vc, _, idea := newTestVoteCounter(t)
	ctx := context.Background()

	vc.Toggle(ctx, "bob", idea.ID)
	_, votes, err := vc.Toggle(ctx, "carol", idea.ID)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if votes != 2 {
		t.Errorf("votes = %d, want 2", votes)
	}

	// Bob retracting must not touch carol's vote.
	loved, votes, _ := vc.Toggle(ctx, "bob", idea.ID)
	if loved || votes != 1 {
		t.Errorf("after retract: loved=%v votes=%d, want false 1", loved, votes)
	}
}

// =========================================================================
// CACHE TESTS
// =========================================================================

func TestCounts_ServedFromCacheWithinTTL(t *testing.T) {
	vc, store, idea := newTestVoteCounter(t)
	ctx := context.Background()

	vc.Toggle(ctx, "bob", idea.ID)

	if _, err := vc.Counts(ctx); err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if _, err := vc.Counts(ctx); err != nil {
		t.Fatalf("Counts() error = %v", err)
	}

	if store.countAlls != 1 {
		t.Errorf("full recount ran %d times within the TTL, want 1", store.countAlls)
	}
}

func TestCounts_RebuildsAfterTTL(t *testing.T) {
	vc, store, idea := newTestVoteCounter(t)
	ctx := context.Background()

	now := time.Now()
	vc.now = func() time.Time { return now }

	vc.Toggle(ctx, "bob", idea.ID)
	if _, err := vc.Counts(ctx); err != nil {
		t.Fatalf("Counts() error = %v", err)
	}

	// Advance the clock past the TTL; the next read must recount.
	now = now.Add(voteCacheTTL + time.Second)
	if _, err := vc.Counts(ctx); err != nil {
		t.Fatalf("Counts() error = %v", err)
	}

	if store.countAlls != 2 {
		t.Errorf("full recount ran %d times, want 2", store.countAlls)
	}
}

func TestToggle_UpdatesCachedCountImmediately(t *testing.T) {
	vc, _, idea := newTestVoteCounter(t)
	ctx := context.Background()

	// Prime the cache while the idea has no votes.
	if _, err := vc.Counts(ctx); err != nil {
		t.Fatalf("Counts() error = %v", err)
	}

	vc.Toggle(ctx, "bob", idea.ID)

	counts, err := vc.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if counts[idea.ID] != 1 {
		t.Errorf("cached count = %d immediately after toggle, want 1", counts[idea.ID])
	}
}

func TestCounts_ReturnsCopy(t *testing.T) {
	vc, _, idea := newTestVoteCounter(t)
	ctx := context.Background()

	vc.Toggle(ctx, "bob", idea.ID)

	counts, _ := vc.Counts(ctx)
	counts[idea.ID] = 999

	again, _ := vc.Counts(ctx)
	if again[idea.ID] != 1 {
		t.Errorf("mutating the returned map leaked into the cache: %d", again[idea.ID])
	}
}

func TestVotedBy(t *testing.T) {
	vc, _, idea := newTestVoteCounter(t)
	ctx := context.Background()

	vc.Toggle(ctx, "bob", idea.ID)

	voted, err := vc.VotedBy(ctx, "bob")
	if err != nil {
		t.Fatalf("VotedBy() error = %v", err)
	}
	if !voted[idea.ID] {
		t.Error("bob's vote missing from VotedBy")
	}

	other, _ := vc.VotedBy(ctx, "carol")
	if len(other) != 0 {
		t.Errorf("carol's VotedBy = %v, want empty", other)
	}
}

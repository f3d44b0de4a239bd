package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/idealab/internal/model"
	"github.com/sakif/idealab/internal/repository"
)

// voteCacheTTL bounds how stale the count cache may get. Even if an
// invalidation is ever missed, a full recount happens within this window.
const voteCacheTTL = 5 * time.Minute

// VoteCounter is the vote aggregator: it owns the toggle operation and a
// time-bounded cache of per-idea vote counts.
//
// CACHE CONTRACT:
// The cache is process-local shared mutable state; every read and write of
// the map happens under mu, so a toggle's read-modify-write of one entry
// is atomic with respect to concurrent requests. Counts are derived data —
// the idea_votes table stays authoritative, the cache only bounds how
// often it is recounted. A multi-process deployment would need a shared
// cache backend instead; this server runs as one process.
type VoteCounter struct {
	votes  repository.VoteStore
	ideas  repository.RecordStore[*model.Idea]
	logger *slog.Logger

	mu      sync.Mutex
	counts  map[int64]int // nil until first Counts call
	expires time.Time
	now     func() time.Time // injectable for TTL tests
}

// NewVoteCounter creates the aggregator. The idea store is needed only to
// reject votes on ideas that do not exist.
func NewVoteCounter(votes repository.VoteStore, ideas repository.RecordStore[*model.Idea], logger *slog.Logger) *VoteCounter {
	return &VoteCounter{
		votes:  votes,
		ideas:  ideas,
		logger: logger,
		now:    time.Now,
	}
}

// Toggle casts the user's vote on an idea if absent, retracts it if
// present. It returns the new state for the caller's response: loved
// reports whether the vote now exists, votes is the idea's fresh count.
//
// The affected idea's cache entry is recomputed synchronously — a voter
// must see their own toggle reflected immediately, without waiting out the
// TTL. Other ideas' entries are untouched.
func (s *VoteCounter) Toggle(ctx context.Context, userID string, ideaID int64) (loved bool, votes int, err error) {
	// The idea must exist; NotFound propagates to the handler as 404.
	if _, err := s.ideas.Get(ctx, ideaID); err != nil {
		return false, 0, err
	}

	has, err := s.votes.Has(ctx, userID, ideaID)
	if err != nil {
		return false, 0, fmt.Errorf("toggling vote: %w", err)
	}

	if has {
		err = s.votes.Remove(ctx, userID, ideaID)
	} else {
		err = s.votes.Add(ctx, userID, ideaID)
	}
	if err != nil {
		return false, 0, fmt.Errorf("toggling vote: %w", err)
	}

	count, err := s.votes.CountForIdea(ctx, ideaID)
	if err != nil {
		return false, 0, fmt.Errorf("recounting votes for idea %d: %w", ideaID, err)
	}

	s.mu.Lock()
	if s.counts != nil {
		s.counts[ideaID] = count
	}
	s.mu.Unlock()

	s.logger.Info("vote toggled",
		slog.String("userID", userID),
		slog.Int64("ideaID", ideaID),
		slog.Bool("loved", !has),
		slog.Int("votes", count),
	)

	return !has, count, nil
}

// Counts returns the vote count for every idea with at least one vote.
// The first call after the TTL lapses rebuilds the whole mapping from the
// store; until then reads are served from memory. The returned map is a
// copy — callers cannot mutate the cache.
func (s *VoteCounter) Counts(ctx context.Context) (map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counts == nil || s.now().After(s.expires) {
		counts, err := s.votes.CountAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("rebuilding vote counts: %w", err)
		}
		s.counts = counts
		s.expires = s.now().Add(voteCacheTTL)
	}

	out := make(map[int64]int, len(s.counts))
	for id, n := range s.counts {
		out[id] = n
	}
	return out, nil
}

// VotedBy returns the set of idea ids the user has voted for. Per-user
// data is not cached — it is one indexed query and correctness of the
// "loved" flag matters more than saving it.
func (s *VoteCounter) VotedBy(ctx context.Context, userID string) (map[int64]bool, error) {
	voted, err := s.votes.IdeasVotedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing votes by user %s: %w", userID, err)
	}
	return voted, nil
}

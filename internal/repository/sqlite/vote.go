package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/idealab/internal/repository"
)

var _ repository.VoteStore = (*Votes)(nil)

// Votes is the idea-vote store. Rows are keyed (user_id, idea_id); the
// aggregator layers its cache on top of the Count* queries here.
type Votes struct {
	db *DB
}

// NewVotes returns the vote store backed by db.
func NewVotes(db *DB) *Votes {
	return &Votes{db: db}
}

// Has reports whether the user has voted for the idea.
func (s *Votes) Has(ctx context.Context, userID string, ideaID int64) (bool, error) {
	var n int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM idea_votes WHERE user_id = ? AND idea_id = ?`,
		userID, ideaID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking vote: %w", err)
	}
	return n > 0, nil
}

// Add casts a vote.
func (s *Votes) Add(ctx context.Context, userID string, ideaID int64) error {
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO idea_votes (user_id, idea_id, created_at) VALUES (?, ?, ?)`,
		userID, ideaID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding vote (%s, %d): %w", userID, ideaID, err)
	}
	return nil
}

// Remove retracts a vote. Removing an absent vote is not an error; the
// aggregator has already decided the toggle direction.
func (s *Votes) Remove(ctx context.Context, userID string, ideaID int64) error {
	_, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM idea_votes WHERE user_id = ? AND idea_id = ?`,
		userID, ideaID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing vote (%s, %d): %w", userID, ideaID, err)
	}
	return nil
}

// CountForIdea counts one idea's votes.
func (s *Votes) CountForIdea(ctx context.Context, ideaID int64) (int, error) {
	var n int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM idea_votes WHERE idea_id = ?`, ideaID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting votes for idea %d: %w", ideaID, err)
	}
	return n, nil
}

// CountAll returns vote counts for every idea that has at least one vote.
// Ideas absent from the map have zero votes.
func (s *Votes) CountAll(ctx context.Context) (map[int64]int, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT idea_id, COUNT(*) FROM idea_votes GROUP BY idea_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting all votes: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var ideaID int64
		var n int
		if err := rows.Scan(&ideaID, &n); err != nil {
			return nil, fmt.Errorf("sqlite: scanning vote count row: %w", err)
		}
		counts[ideaID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating vote counts: %w", err)
	}

	return counts, nil
}

// IdeasVotedBy returns the set of idea ids the user has voted for.
func (s *Votes) IdeasVotedBy(ctx context.Context, userID string) (map[int64]bool, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT idea_id FROM idea_votes WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing votes by %s: %w", userID, err)
	}
	defer rows.Close()

	voted := make(map[int64]bool)
	for rows.Next() {
		var ideaID int64
		if err := rows.Scan(&ideaID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning voted idea row: %w", err)
		}
		voted[ideaID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating voted ideas: %w", err)
	}

	return voted, nil
}

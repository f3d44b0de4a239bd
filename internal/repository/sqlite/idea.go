package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/idealab/internal/apperror"
	"github.com/sakif/idealab/internal/model"
	"github.com/sakif/idealab/internal/policy"
	"github.com/sakif/idealab/internal/repository"
)

// Compile-time check that *Ideas satisfies the generic store contract.
var _ repository.RecordStore[*model.Idea] = (*Ideas)(nil)

// Ideas is the idea store. It shares the DB's connection pool; the struct
// exists so ideas and improvements can satisfy the same generic interface
// with their own method sets.
type Ideas struct {
	db *DB
}

// NewIdeas returns the idea store backed by db.
func NewIdeas(db *DB) *Ideas {
	return &Ideas{db: db}
}

const ideaColumns = "id, user_id, created_at, published, title, body, name, contact"

func scanIdea(row interface{ Scan(...any) error }) (*model.Idea, error) {
	var i model.Idea
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CreatedAt,
		&i.Published,
		&i.Title,
		&i.Body,
		&i.Name,
		&i.Contact,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts a new idea and fills in its generated id and timestamp.
func (s *Ideas) Create(ctx context.Context, idea *model.Idea) error {
	idea.CreatedAt = time.Now()

	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO ideas (user_id, created_at, published, title, body, name, contact)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		idea.UserID,
		idea.CreatedAt,
		idea.Published,
		idea.Title,
		idea.Body,
		idea.Name,
		idea.Contact,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating idea: %w", err)
	}

	idea.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new idea id: %w", err)
	}

	return nil
}

// Get retrieves an idea with no visibility filter. Only the mutation path
// uses this — reads go through GetVisible.
func (s *Ideas) Get(ctx context.Context, id int64) (*model.Idea, error) {
	idea, err := scanIdea(s.db.conn.QueryRowContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("idea", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting idea %d: %w", id, err)
	}
	return idea, nil
}

// GetVisible retrieves an idea the actor is allowed to read. An id hidden
// by the filter returns the same NotFound as an id that does not exist.
func (s *Ideas) GetVisible(ctx context.Context, id int64, vis policy.Visibility) (*model.Idea, error) {
	clause, args := visibilityClause(vis)
	idea, err := scanIdea(s.db.conn.QueryRowContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE id = ? AND `+clause,
		append([]any{id}, args...)...,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("idea", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting idea %d: %w", id, err)
	}
	return idea, nil
}

// List returns all ideas the actor may read, newest first.
func (s *Ideas) List(ctx context.Context, vis policy.Visibility) ([]*model.Idea, error) {
	clause, args := visibilityClause(vis)
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE `+clause+` ORDER BY created_at DESC, id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing ideas: %w", err)
	}
	defer rows.Close()

	ideas := make([]*model.Idea, 0, 16)
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning idea row: %w", err)
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating ideas: %w", err)
	}

	return ideas, nil
}

// Update persists the writable fields of an existing idea. Owner,
// creation time, and published flag are not writable through this path.
func (s *Ideas) Update(ctx context.Context, idea *model.Idea) error {
	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE ideas SET title = ?, body = ?, name = ?, contact = ? WHERE id = ?`,
		idea.Title,
		idea.Body,
		idea.Name,
		idea.Contact,
		idea.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating idea %d: %w", idea.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("idea", strconv.FormatInt(idea.ID, 10))
	}

	return nil
}

// Delete removes an idea permanently. Its votes go with it (ON DELETE
// CASCADE).
func (s *Ideas) Delete(ctx context.Context, id int64) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM ideas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting idea %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("idea", strconv.FormatInt(id, 10))
	}

	return nil
}

// Moderate applies one row of the moderation sheet: published flag, title,
// and body, truncated through the same limits as API submissions. Used by
// cmd/import only.
func (s *Ideas) Moderate(ctx context.Context, id int64, published bool, title, body string) error {
	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE ideas SET published = ?, title = ?, body = ? WHERE id = ?`,
		published,
		model.Truncate(title, model.MaxIdeaTitleLength),
		model.Truncate(body, model.MaxIdeaBodyLength),
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: moderating idea %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("idea", strconv.FormatInt(id, 10))
	}

	return nil
}

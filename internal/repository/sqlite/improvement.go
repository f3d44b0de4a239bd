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

var _ repository.RecordStore[*model.Improvement] = (*Improvements)(nil)

// Improvements is the improvement store. Same shape as Ideas; the "type"
// column needs quoting because it is a keyword-ish name kept for
// compatibility with existing databases.
type Improvements struct {
	db *DB
}

// NewImprovements returns the improvement store backed by db.
func NewImprovements(db *DB) *Improvements {
	return &Improvements{db: db}
}

const improvementColumns = `id, user_id, created_at, published, module, link, "type", content, contact`

func scanImprovement(row interface{ Scan(...any) error }) (*model.Improvement, error) {
	var m model.Improvement
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.CreatedAt,
		&m.Published,
		&m.Module,
		&m.Link,
		&m.Kind,
		&m.Content,
		&m.Contact,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new improvement and fills in its generated id and
// timestamp.
func (s *Improvements) Create(ctx context.Context, imp *model.Improvement) error {
	imp.CreatedAt = time.Now()

	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO improvements (user_id, created_at, published, module, link, "type", content, contact)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		imp.UserID,
		imp.CreatedAt,
		imp.Published,
		imp.Module,
		imp.Link,
		imp.Kind,
		imp.Content,
		imp.Contact,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating improvement: %w", err)
	}

	imp.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new improvement id: %w", err)
	}

	return nil
}

// Get retrieves an improvement with no visibility filter (mutation path).
func (s *Improvements) Get(ctx context.Context, id int64) (*model.Improvement, error) {
	imp, err := scanImprovement(s.db.conn.QueryRowContext(ctx,
		`SELECT `+improvementColumns+` FROM improvements WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("improvement", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting improvement %d: %w", id, err)
	}
	return imp, nil
}

// GetVisible retrieves an improvement the actor is allowed to read.
func (s *Improvements) GetVisible(ctx context.Context, id int64, vis policy.Visibility) (*model.Improvement, error) {
	clause, args := visibilityClause(vis)
	imp, err := scanImprovement(s.db.conn.QueryRowContext(ctx,
		`SELECT `+improvementColumns+` FROM improvements WHERE id = ? AND `+clause,
		append([]any{id}, args...)...,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("improvement", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting improvement %d: %w", id, err)
	}
	return imp, nil
}

// List returns all improvements the actor may read, newest first.
func (s *Improvements) List(ctx context.Context, vis policy.Visibility) ([]*model.Improvement, error) {
	clause, args := visibilityClause(vis)
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT `+improvementColumns+` FROM improvements WHERE `+clause+` ORDER BY created_at DESC, id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing improvements: %w", err)
	}
	defer rows.Close()

	imps := make([]*model.Improvement, 0, 16)
	for rows.Next() {
		imp, err := scanImprovement(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning improvement row: %w", err)
		}
		imps = append(imps, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating improvements: %w", err)
	}

	return imps, nil
}

// Update persists the writable fields of an existing improvement.
func (s *Improvements) Update(ctx context.Context, imp *model.Improvement) error {
	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE improvements SET module = ?, link = ?, "type" = ?, content = ?, contact = ? WHERE id = ?`,
		imp.Module,
		imp.Link,
		imp.Kind,
		imp.Content,
		imp.Contact,
		imp.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating improvement %d: %w", imp.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("improvement", strconv.FormatInt(imp.ID, 10))
	}

	return nil
}

// Delete removes an improvement permanently.
func (s *Improvements) Delete(ctx context.Context, id int64) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM improvements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting improvement %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("improvement", strconv.FormatInt(id, 10))
	}

	return nil
}

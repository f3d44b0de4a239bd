package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/idealab/internal/apperror"
	"github.com/sakif/idealab/internal/model"
	"github.com/sakif/idealab/internal/repository"
)

var _ repository.UserStore = (*Users)(nil)

// Users is the user store. The primary key is the identity resolver's
// derived id, so there is no separate lookup-by-provider-id path: the
// resolver computes the key and does a plain Get.
type Users struct {
	db *DB
}

// NewUsers returns the user store backed by db.
func NewUsers(db *DB) *Users {
	return &Users{db: db}
}

// Get retrieves a user by derived id.
func (s *Users) Get(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, provider, provider_id, name, contact, admin, created_at, updated_at
		 FROM users WHERE id = ?`, id,
	).Scan(
		&u.ID,
		&u.Provider,
		&u.ProviderID,
		&u.Name,
		&u.Contact,
		&u.Admin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return &u, nil
}

// Create inserts a new user. The caller supplies the derived id;
// timestamps are stamped here.
func (s *Users) Create(ctx context.Context, u *model.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, provider, provider_id, name, contact, admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Provider,
		u.ProviderID,
		u.Name,
		u.Contact,
		u.Admin,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", u.ID, err)
	}

	return nil
}

// Update rewrites a user's mutable columns (profile data, provider_id
// backfill, admin flag).
func (s *Users) Update(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now()

	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE users SET provider_id = ?, name = ?, contact = ?, admin = ?, updated_at = ?
		 WHERE id = ?`,
		u.ProviderID,
		u.Name,
		u.Contact,
		u.Admin,
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", u.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", u.ID)
	}

	return nil
}

// Package service contains the business logic layer: identity resolution,
// the generic record CRUD, and vote aggregation. Handlers parse HTTP and
// write envelopes; services enforce the rules; repositories persist.
// Services depend on repository interfaces only, so tests swap in mocks.
package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/idealab/internal/apperror"
	"github.com/sakif/idealab/internal/auth"
	"github.com/sakif/idealab/internal/model"
	"github.com/sakif/idealab/internal/repository"
)

// Identity turns a completed OAuth exchange into a local user and a
// session token.
type Identity struct {
	users  repository.UserStore
	tokens *auth.TokenService
	admins map[string]bool // contact strings granted the admin flag
	logger *slog.Logger
}

// NewIdentity creates the identity resolver. adminContacts lists contact
// strings (emails/handles) whose users become admins at login.
func NewIdentity(users repository.UserStore, tokens *auth.TokenService, adminContacts []string, logger *slog.Logger) *Identity {
	admins := make(map[string]bool, len(adminContacts))
	for _, c := range adminContacts {
		if c != "" {
			admins[c] = true
		}
	}
	return &Identity{
		users:  users,
		tokens: tokens,
		admins: admins,
		logger: logger,
	}
}

// LocalID derives the stable local user id for a provider identity:
// hex(SHA-1(subject + provider)). Deterministic, so the same provider
// account always maps to the same row — that determinism, not secrecy, is
// the point; the digest is a dedup key and carries no authority of its
// own.
func LocalID(provider, subject string) string {
	sum := sha1.Sum([]byte(subject + provider))
	return hex.EncodeToString(sum[:])
}

// Resolve maps an OAuth profile to a local user, creating one on first
// login.
//
// IDEMPOTENCE:
// The derived id makes replays safe: a second callback for the same
// provider identity finds the existing row and never inserts a duplicate.
// Existing rows get two fix-ups — the raw provider subject id is
// backfilled onto legacy rows that predate the column, and the admin flag
// is granted if the contact is configured as an admin (never revoked here;
// demotion is a manual operation).
//
// Resolve only touches the store on success paths. A failed OAuth exchange
// never reaches this code, so no partial user can be created by a failed
// login.
func (s *Identity) Resolve(ctx context.Context, p *auth.Profile) (*model.User, error) {
	if p == nil {
		return nil, fmt.Errorf("service/auth: profile must not be nil")
	}

	id := LocalID(p.Provider, p.Subject)

	user, err := s.users.Get(ctx, id)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{
			ID:         id,
			Provider:   p.Provider,
			ProviderID: p.Subject,
			Name:       p.Name,
			Contact:    p.Contact,
			Admin:      s.admins[p.Contact],
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: creating user for %s login: %w", p.Provider, err)
		}
		s.logger.Info("user created",
			slog.String("userID", user.ID),
			slog.String("provider", p.Provider),
		)

	case err != nil:
		return nil, fmt.Errorf("service/auth: looking up user %s: %w", id, err)

	default:
		changed := false
		if user.ProviderID == "" {
			// Legacy row from before the provider_id column existed.
			user.ProviderID = p.Subject
			changed = true
		}
		if s.admins[p.Contact] && !user.Admin {
			user.Admin = true
			changed = true
		}
		if changed {
			if err := s.users.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("service/auth: updating user %s: %w", id, err)
			}
		}
	}

	s.logger.Info("user authenticated",
		slog.String("userID", user.ID),
		slog.String("provider", p.Provider),
		slog.Bool("admin", user.Admin),
	)

	return user, nil
}

// IssueToken signs a session token for the resolved user.
func (s *Identity) IssueToken(user *model.User) (string, error) {
	token, err := s.tokens.Generate(user.ID, user.Admin)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return token, nil
}

// User returns the stored user for an id. Used by /me after the middleware
// has validated the session.
func (s *Identity) User(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}

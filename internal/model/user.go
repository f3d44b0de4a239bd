// Package model defines the data structures used throughout the application.
package model

import (
	"strings"
	"time"
)

// User represents an account resolved from a third-party OAuth identity.
//
// WHY A DERIVED STRING ID?
// The primary key is hex(SHA-1(provider_subject_id + provider_name)) — a
// deterministic function of the external identity. Repeated logins from the
// same provider account always hash to the same row, which is what makes
// the login callback idempotent: there is nothing to "look up by provider
// id first", the id itself encodes it. The digest is a dedup key, not a
// security token, so a fast hash is fine here.
//
// ProviderID stores the raw provider-assigned subject id. Rows imported
// from early deployments may have it empty; the identity resolver backfills
// it on the next login.
type User struct {
	ID         string    `json:"id"         db:"id"`
	Provider   string    `json:"provider"   db:"provider"`    // e.g. "github", "google", "facebook"
	ProviderID string    `json:"-"          db:"provider_id"` // provider-assigned subject id
	Name       string    `json:"name"       db:"name"`        // display name (may be empty)
	Contact    string    `json:"contact"    db:"contact"`     // email or handle
	Admin      bool      `json:"admin"      db:"admin"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt"  db:"updated_at"`
}

// PublicName is the name shown next to a submission. Users who hid their
// display name but signed in with an @handle contact get the handle; anyone
// else without a name stays anonymous (empty string).
func (u *User) PublicName() string {
	if u.Name == "" && strings.HasPrefix(u.Contact, "@") {
		return u.Contact
	}
	return u.Name
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionLifetime is how long a login lasts, for both the JWT expiry and
// the cookie's MaxAge. Sessions here are long-lived "remember me" logins,
// not short-lived API tokens: this is a site users visit occasionally to
// pitch an idea, and forcing a fresh OAuth dance every quarter hour would
// be hostile.
const SessionLifetime = 7 * 24 * time.Hour

// TokenService signs and validates the JWT session tokens stored in the
// session cookie. HS256 with a single shared secret — symmetric signing is
// enough for a single-server deployment that both issues and verifies.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Session is what a validated token asserts about its bearer.
type Session struct {
	UserID string
	Admin  bool
}

// claims is the JWT payload. The standard "sub" claim carries the local
// user id; "adm" is a private claim marking administrators, so the access
// policy can tell admins apart without a user lookup on every request.
// Admin revocation therefore takes effect at the next login, not
// instantly — acceptable for a moderation flag.
type claims struct {
	Admin bool `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for the given user.
func (s *TokenService) Generate(userID string, admin bool) (string, error) {
	return s.GenerateWithDuration(userID, admin, SessionLifetime)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to exercise expiry without waiting a week.
func (s *TokenService) GenerateWithDuration(userID string, admin bool, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    "idealab",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the session it
// asserts.
//
// The jwt library checks the signature, the expiry, the issuer, and — via
// WithValidMethods — that the algorithm really is HS256, which blocks
// algorithm-confusion tokens signed with "none".
func (s *TokenService) Validate(tokenStr string) (Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("idealab"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, fmt.Errorf("auth: token expired")
		}
		return Session{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Session{}, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return Session{}, fmt.Errorf("auth: token has no subject")
	}

	return Session{UserID: c.Subject, Admin: c.Admin}, nil
}

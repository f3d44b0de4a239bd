package auth

import (
	"context"
	"net/http"

	"github.com/sakif/idealab/internal/policy"
)

// SessionCookie is the name of the HttpOnly cookie carrying the JWT.
const SessionCookie = "session"

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the actor stored in a request context.
type contextKey string

const actorKey contextKey = "actor"

// RequireAuth enforces authentication on protected routes. It reads the
// JWT from the session cookie, validates it, and stores the resulting
// actor in the request context. Missing or invalid tokens end the request
// with a 401 envelope.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := extractActor(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"status":401,"success":false,"message":"Authentication required"}` + "\n"))
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the actor if a valid token is present but never
// blocks the request. Public read routes use this: anonymous requests get
// the anonymous actor and the visibility filter does the rest.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor, err := extractActor(r, tokens); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), actorKey, actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorFromContext returns the actor for the request. Requests that never
// passed auth middleware, or carried no valid token, yield the zero
// (anonymous) actor.
func ActorFromContext(ctx context.Context) policy.Actor {
	actor, _ := ctx.Value(actorKey).(policy.Actor)
	return actor
}

// extractActor reads and validates the session cookie.
func extractActor(r *http.Request, tokens *TokenService) (policy.Actor, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		// http.ErrNoCookie — not an error, just anonymous
		return policy.Actor{}, err
	}

	session, err := tokens.Validate(cookie.Value)
	if err != nil {
		return policy.Actor{}, err
	}

	return policy.Actor{ID: session.UserID, Admin: session.Admin}, nil
}

package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/idealab/internal/auth"
	"github.com/sakif/idealab/internal/service"
)

// Cookies used only during the OAuth round trip. Short-lived: the flow
// either completes within minutes or the browser forgets them.
const (
	stateCookie = "oauth_state"
	nextCookie  = "login_next"
	flowTTL     = 10 * time.Minute
)

// AuthHandler serves the login flow: provider redirect, OAuth callback,
// logout, and the current-user endpoint.
type AuthHandler struct {
	providers    auth.Registry
	identity     *service.Identity
	nextFallback string
	logger       *slog.Logger
}

// NewAuthHandler creates the auth handler. nextFallback is where users
// land after login or logout when no usable next parameter was given.
func NewAuthHandler(providers auth.Registry, identity *service.Identity, nextFallback string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		providers:    providers,
		identity:     identity,
		nextFallback: nextFallback,
		logger:       logger,
	}
}

// safeNext accepts a post-login destination only if it is a local path.
// Absolute URLs and protocol-relative "//host" paths would make the login
// endpoint an open redirector.
func (h *AuthHandler) safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return h.nextFallback
}

// HandleLogin begins the OAuth flow for the named provider.
//
// HTTP: GET /login/{provider}?next=/path
//
// A random state nonce goes into a cookie and into the authorization URL;
// the callback refuses to proceed unless they match. The next destination
// rides along in its own cookie rather than being round-tripped through
// the provider.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[r.PathValue("provider")]
	if !ok {
		writeStatus(w, http.StatusNotFound, "Unknown login provider", nil)
		return
	}

	// Already logged in — no point bouncing through the provider again.
	if auth.ActorFromContext(r.Context()).Authenticated() {
		writeStatus(w, http.StatusOK, "Already logged in", nil)
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(flowTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     nextCookie,
		Value:    h.safeNext(r.URL.Query().Get("next")),
		Path:     "/",
		MaxAge:   int(flowTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.AuthURL(state), http.StatusFound)
}

// HandleCallback completes the OAuth flow.
//
// HTTP: GET /login/{provider}/authorize
//
// Denied or failed authorizations redirect back to the next destination
// rather than erroring: the user said no (or the provider hiccuped), and
// landing them on a JSON error page helps nobody. Only a state mismatch —
// which suggests forgery rather than a mishap — gets a hard 400.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[r.PathValue("provider")]
	if !ok {
		writeStatus(w, http.StatusNotFound, "Unknown login provider", nil)
		return
	}

	next := h.nextFallback
	if c, err := r.Cookie(nextCookie); err == nil {
		next = h.safeNext(c.Value)
	}
	clearCookie(w, nextCookie)

	stateOK := false
	if c, err := r.Cookie(stateCookie); err == nil {
		stateOK = c.Value != "" && c.Value == r.URL.Query().Get("state")
	}
	clearCookie(w, stateCookie)
	if !stateOK {
		writeStatus(w, http.StatusBadRequest, "Login state mismatch, please try again", nil)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" || r.URL.Query().Get("error") != "" {
		h.logger.Info("login cancelled",
			slog.String("provider", provider.Name()),
			slog.String("error", r.URL.Query().Get("error")),
		)
		http.Redirect(w, r, next, http.StatusFound)
		return
	}

	profile, err := provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("OAuth exchange failed",
			slog.String("provider", provider.Name()),
			slog.String("error", err.Error()),
		)
		http.Redirect(w, r, next, http.StatusFound)
		return
	}

	user, err := h.identity.Resolve(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.identity.IssueToken(user)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, next, http.StatusFound)
}

// HandleLogout clears the session cookie and redirects.
//
// HTTP: GET /logout?next=/path
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, auth.SessionCookie)
	http.Redirect(w, r, h.safeNext(r.URL.Query().Get("next")), http.StatusFound)
}

// HandleMe returns the logged-in user's own record.
//
// HTTP: GET /me (auth required)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	user, err := h.identity.User(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, http.StatusOK, "", user)
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Package auth provides OAuth identity, JWT sessions, and the middleware
// that ties them to requests.
//
// AUTHENTICATION FLOW:
//  1. GET /login/{provider} redirects the browser to the provider's
//     authorization page (with a CSRF state nonce in a cookie).
//  2. The provider calls back /login/{provider}/authorize with a code.
//  3. The server exchanges the code for an access token, fetches the
//     profile, and resolves it to a local user (service.Identity).
//  4. A signed JWT is stored in an HttpOnly cookie; subsequent requests
//     are authenticated by middleware from that cookie alone.
//
// The code-for-token exchange is server-to-server using the client secret;
// provider access tokens never reach the browser and are discarded as soon
// as the profile has been fetched — only the local session survives.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// Profile is the provider-independent identity assertion produced by a
// completed OAuth exchange. Subject is the provider-assigned user id —
// stable for the lifetime of the account, and the only field identity
// resolution depends on. Name and Contact are best-effort profile data
// and may be empty (e.g. a hidden email).
type Profile struct {
	Provider string
	Subject  string
	Name     string
	Contact  string
}

// Provider wraps golang.org/x/oauth2 for one provider's authorization-code
// flow plus its profile endpoint. The parse function absorbs the
// provider-specific response shape so the rest of the app only ever sees
// Profile.
type Provider struct {
	name       string
	config     *oauth2.Config
	profileURL string
	parse      func(body []byte) (subject, name, contact string, err error)
}

// Registry holds the providers enabled by configuration, keyed by the
// {provider} path segment. Built once at startup — an explicit table, not
// anything registered as a side effect.
type Registry map[string]*Provider

// Add registers a provider under its name. Nil providers are ignored so
// callers can pass the result of a conditional constructor directly.
func (r Registry) Add(p *Provider) {
	if p != nil {
		r[p.name] = p
	}
}

// Name returns the provider's path segment name, e.g. "github".
func (p *Provider) Name() string { return p.name }

// AuthURL returns the provider authorization URL for a login redirect.
// The state nonce is verified on callback against a cookie to block
// cross-site request forgery of the flow.
func (p *Provider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: it trades the authorization code for
// an access token, fetches the provider's profile endpoint with it, and
// parses the response into a Profile.
func (p *Provider) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging %s code: %w", p.name, err)
	}

	// oauth2.Config.Client returns an *http.Client that adds the bearer
	// token to every request.
	client := p.config.Client(ctx, token)

	resp, err := client.Get(p.profileURL)
	if err != nil {
		return nil, fmt.Errorf("auth: fetching %s profile: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: %s profile endpoint returned status %d", p.name, resp.StatusCode)
	}

	// Profiles are small JSON objects; cap the read at 1MB in case a
	// misbehaving endpoint streams something else.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("auth: reading %s profile: %w", p.name, err)
	}

	subject, name, contact, err := p.parse(body)
	if err != nil {
		return nil, fmt.Errorf("auth: decoding %s profile: %w", p.name, err)
	}
	if subject == "" {
		return nil, fmt.Errorf("auth: %s returned a profile without a subject id", p.name)
	}

	return &Profile{
		Provider: p.name,
		Subject:  subject,
		Name:     name,
		Contact:  contact,
	}, nil
}

// NewGitHubProvider builds the GitHub provider.
//
// Scopes: "read:user" for the public profile, "user:email" for the primary
// email. GitHub subject ids are numeric; they are carried as their decimal
// string form so all providers share one Subject type.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *Provider {
	return &Provider{
		name: "github",
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		profileURL: "https://api.github.com/user",
		parse: func(body []byte) (string, string, string, error) {
			var u struct {
				ID    json.Number `json:"id"`
				Login string      `json:"login"`
				Name  string      `json:"name"`
				Email string      `json:"email"`
			}
			if err := json.Unmarshal(body, &u); err != nil {
				return "", "", "", err
			}
			name := u.Name
			if name == "" {
				name = u.Login
			}
			return u.ID.String(), name, u.Email, nil
		},
	}
}

// NewGoogleProvider builds the Google provider.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *Provider {
	return &Provider{
		name: "google",
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		profileURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		parse: func(body []byte) (string, string, string, error) {
			var u struct {
				ID    string `json:"id"`
				Name  string `json:"name"`
				Email string `json:"email"`
			}
			if err := json.Unmarshal(body, &u); err != nil {
				return "", "", "", err
			}
			return u.ID, u.Name, u.Email, nil
		},
	}
}

// NewFacebookProvider builds the Facebook provider. The Graph API only
// returns the fields asked for, hence the fields query parameter.
func NewFacebookProvider(clientID, clientSecret, callbackURL string) *Provider {
	return &Provider{
		name: "facebook",
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		},
		profileURL: "https://graph.facebook.com/me?fields=id,name,email",
		parse: func(body []byte) (string, string, string, error) {
			var u struct {
				ID    string `json:"id"`
				Name  string `json:"name"`
				Email string `json:"email"`
			}
			if err := json.Unmarshal(body, &u); err != nil {
				return "", "", "", err
			}
			return u.ID, u.Name, u.Email, nil
		},
	}
}

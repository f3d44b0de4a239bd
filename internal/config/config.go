// Package config loads application configuration.
//
// Configuration comes from environment variables (and optionally an
// idealab.yaml in the working directory), read through viper. Every knob
// has a default except the secrets: JWT_SECRET and the per-provider OAuth
// credentials, which have no sensible defaults and disable their feature
// when unset.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Credentials are one OAuth provider's application credentials. A provider
// is registered only when both values are set, mirroring how deployments
// enable a subset of providers.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether the provider should be registered.
func (c Credentials) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Config holds all server configuration.
type Config struct {
	Port       int    // HTTP listen port
	BaseURL    string // external base URL, used to build OAuth callback URLs
	PathPrefix string // mount point for all routes, e.g. "/idealab"
	DBPath     string // SQLite database file

	// NextFallback is where login/logout redirect when the request did not
	// carry a "next" location.
	NextFallback string

	JWTSecret string

	// AdminContacts lists contact strings (emails/handles) whose resolved
	// users are granted the admin flag at login.
	AdminContacts []string

	GitHub   Credentials
	Google   Credentials
	Facebook Credentials
}

// Load reads configuration from the environment and an optional config
// file. Missing files are fine; a malformed file is not.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "data/idealab.db")
	v.SetDefault("PATH_PREFIX", "")
	v.SetDefault("NEXT_FALLBACK", "/")
	v.SetDefault("ADMIN_CONTACTS", []string{})

	v.SetConfigName("idealab")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:          v.GetInt("PORT"),
		BaseURL:       v.GetString("BASE_URL"),
		PathPrefix:    v.GetString("PATH_PREFIX"),
		DBPath:        v.GetString("DB_PATH"),
		NextFallback:  v.GetString("NEXT_FALLBACK"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		AdminContacts: v.GetStringSlice("ADMIN_CONTACTS"),
		GitHub: Credentials{
			ClientID:     v.GetString("GITHUB_CLIENT_ID"),
			ClientSecret: v.GetString("GITHUB_CLIENT_SECRET"),
		},
		Google: Credentials{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		},
		Facebook: Credentials{
			ClientID:     v.GetString("FACEBOOK_CLIENT_ID"),
			ClientSecret: v.GetString("FACEBOOK_CLIENT_SECRET"),
		},
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	return cfg, nil
}

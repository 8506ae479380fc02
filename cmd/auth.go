package main

import (
	"context"
	"fmt"
	"time"

	"github.com/avelara/portify/internal/catalog"
	"github.com/avelara/portify/internal/server"
	"github.com/avelara/portify/internal/shared"
	"github.com/urfave/cli/v3"
)

// callbackTimeout bounds how long auth login waits for the browser redirect.
const callbackTimeout = 3 * time.Minute

// AuthLogin runs the OAuth2 authorization-code flow against Spotify and
// persists the resulting token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Credentials.Spotify
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set", shared.ErrMissingCredentials)
	}

	authenticator := catalog.NewSpotifyAuthenticator(cfg)
	state := shared.GenerateID()
	handler := server.NewOAuthHandler(authenticator, state)
	authURL := authenticator.AuthURL(state)

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n\n%s\n\n", authURL)
	} else {
		r.logger.Info("opening browser for authorization")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
			r.writePlain("Open this URL in your browser:\n\n%s\n\n", authURL)
		}
	}

	r.writePlain("Waiting for authorization...\n")

	token, err := server.WaitForCallback(ctx, cfg.RedirectURI, handler, callbackTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := catalog.SaveToken(cfg.TokenPath, token); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.logger.Info("authentication successful", "token_path", cfg.TokenPath)
	return r.writePlain("✓ Authentication successful\n")
}

// AuthStatus reports the stored token state without touching the network.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Credentials.Spotify

	token, err := catalog.LoadToken(cfg.TokenPath)
	if err != nil {
		r.writePlain("✗ Not authenticated\n")
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	r.writePlain("✓ Token found: %s\n", cfg.TokenPath)

	switch {
	case token.Expiry.IsZero():
		r.writePlain("Expiry: unknown\n")
	case token.Valid():
		r.writePlain("Expiry: %s\n", token.Expiry.Format(time.RFC1123))
	case token.RefreshToken != "":
		r.writePlain("Access token expired %s; will refresh on next use\n", token.Expiry.Format(time.RFC1123))
	default:
		r.writePlain("✗ Token expired %s with no refresh token\n", token.Expiry.Format(time.RFC1123))
		return fmt.Errorf("%w: run 'portify auth login'", shared.ErrTokenExpired)
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/sptx/internal/server"
	"github.com/desertthunder/sptx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// authTimeout bounds how long the local callback listener waits for the user.
const authTimeout = 2 * time.Minute

// doOAuth executes the OAuth2 authorization flow with a local HTTP server.
//
// Satisfies [auth.LoginFunc]: the coordinator calls it when interactive authorization is needed.
func (r *Runner) doOAuth(ctx context.Context, config *oauth2.Config, state string) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL(state)

	addr, path, err := callbackAddr(config.RedirectURL)
	if err != nil {
		return nil, err
	}

	oauthHandler := server.NewOAuthHandler(config, state, path)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writeWarn("Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%v timeout)...\n", authTimeout)

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		oauthHandler.Cancel(ctx)
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, authTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// callbackAddr derives the listener address and callback path from the configured redirect URI.
func callbackAddr(redirectURI string) (addr, path string, err error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid redirect URI: %v", shared.ErrInvalidConfig, err)
	}

	host := u.Hostname()
	if host == "" {
		host = "127.0.0.1"
	}
	port := u.Port()
	if port == "" {
		port = "8000"
	}
	path = u.Path
	if path == "" {
		path = "/callback"
	}

	return host + ":" + port, path, nil
}

// AuthLogin runs the interactive authorization flow and persists the resulting tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Credentials.Spotify.Validate(); err != nil {
		return err
	}

	if r.flow == nil {
		return fmt.Errorf("%w: auth flow not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("starting Spotify authorization")

	tokens, err := r.flow.Login(ctx)
	if err != nil {
		return err
	}

	r.writePlainln("")
	r.writeOK("Authorization successful")
	r.writeOK("Tokens saved to %s", r.cache.Path())
	if len(tokens.Scopes()) > 0 {
		r.writePlain("  Scopes: %v\n", tokens.Scopes())
	}
	r.writePlain("\nYou can now use: sptx playlist list\n")

	return nil
}

// AuthStatus reports the token cache state and, with --verify, calls the API to confirm the token works.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	verify := cmd.Bool("verify")

	if r.cache == nil {
		r.writePlain("Authentication: not configured\n")
		r.writePlain("Run 'sptx setup config' to add credentials.\n")
		return nil
	}

	tokens, err := r.cache.Load()
	if err != nil {
		return err
	}

	if tokens == nil {
		r.writePlain("Authentication: not logged in\n")
		r.writePlain("Run 'sptx auth login' to authorize.\n")
		return nil
	}

	if tokens.Valid() {
		r.writeOK("Access token valid")
	} else if tokens.RefreshToken != "" {
		r.writeWarn("Access token expired (will refresh on next request)")
	} else {
		r.writeWarn("Access token expired and no refresh token cached")
	}

	r.writePlain("  Expires: %s\n", time.Unix(tokens.ExpiresAt, 0).Format(time.RFC1123))
	if len(tokens.Scopes()) > 0 {
		r.writePlain("  Scopes: %v\n", tokens.Scopes())
	}

	if !verify {
		return nil
	}

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	user, err := r.spotify.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.writeOK("Authenticated as %s (%s)", user.DisplayName, user.ID)
	return nil
}

// AuthLogout clears the token cache.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.flow == nil {
		if r.cache == nil {
			return r.writeWarn("Nothing to clear: no token cache configured")
		}
		return r.cache.Clear()
	}

	if err := r.flow.Logout(); err != nil {
		return err
	}

	r.logger.Info("token cache cleared")
	return r.writeOK("Logged out: token cache cleared")
}

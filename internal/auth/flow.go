package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sptx/internal/shared"
	"golang.org/x/oauth2"
)

// State describes where the coordinator is in the token lifecycle.
type State int

const (
	StateNoToken State = iota
	StateAuthorizing
	StateAuthorized
	StateExpired
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateNoToken:
		return "no_token"
	case StateAuthorizing:
		return "authorizing"
	case StateAuthorized:
		return "authorized"
	case StateExpired:
		return "expired"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// LoginFunc runs an interactive authorization flow (browser + local callback listener) and returns the exchanged token.
//
// The state parameter is the CSRF token the callback must validate.
type LoginFunc func(ctx context.Context, config *oauth2.Config, state string) (*oauth2.Token, error)

// Flow coordinates the authorization-code lifecycle: NoToken -> Authorizing -> Authorized -> Expired -> Refreshing -> Authorized | NoToken.
//
// Tokens move through the flow as explicit [TokenSet] values; the only shared resource is the [FileCache].
// The mutex serializes refreshes so at most one is in flight per coordinator.
type Flow struct {
	config *oauth2.Config
	cache  *FileCache
	login  LoginFunc
	logger *log.Logger

	mu      sync.Mutex
	current *TokenSet
	state   State
}

// NewFlow creates a coordinator over the given OAuth2 config and token cache.
//
// Without a [LoginFunc] (see [Flow.SetLoginFunc]) the flow is non-interactive and surfaces
// [shared.ErrNotAuthenticated] once cache and refresh are exhausted.
func NewFlow(config *oauth2.Config, cache *FileCache, logger *log.Logger) *Flow {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Flow{
		config: config,
		cache:  cache,
		logger: logger,
		state:  StateNoToken,
	}
}

// SetLoginFunc wires the interactive authorization flow.
func (f *Flow) SetLoginFunc(fn LoginFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.login = fn
}

// State returns the coordinator's current lifecycle state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Token returns a valid TokenSet, walking the lifecycle as far as needed:
// in-memory token, then cache file, then a single refresh, then interactive login.
func (f *Flow) Token(ctx context.Context) (*TokenSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.current.Valid() {
		f.state = StateAuthorized
		return f.current, nil
	}

	if f.current == nil {
		cached, err := f.cache.Load()
		if err != nil {
			return nil, err
		}
		if cached != nil {
			f.current = cached
		}
	}

	if f.current.Valid() {
		f.logger.Debug("using cached access token")
		f.state = StateAuthorized
		return f.current, nil
	}

	if f.current != nil && f.current.RefreshToken != "" {
		f.state = StateExpired
		tokens, err := f.refreshLocked(ctx)
		if err == nil {
			return tokens, nil
		}
		if f.state != StateNoToken {
			// Transport or provider outage: surface rather than forcing reauth.
			return nil, err
		}
		f.logger.Info("refresh token rejected, re-authentication required")
	}

	return f.loginLocked(ctx)
}

// Refresh performs exactly one refresh attempt and persists the result.
//
// A refresh rejected with invalid_grant clears the cache and resets the flow to NoToken.
func (f *Flow) Refresh(ctx context.Context) (*TokenSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.current == nil {
		cached, err := f.cache.Load()
		if err != nil {
			return nil, err
		}
		f.current = cached
	}

	return f.refreshLocked(ctx)
}

func (f *Flow) refreshLocked(ctx context.Context) (*TokenSet, error) {
	if f.current == nil || f.current.RefreshToken == "" {
		f.state = StateNoToken
		return nil, shared.ErrNoRefreshToken
	}

	f.state = StateRefreshing
	f.logger.Debug("refreshing access token")

	src := f.config.TokenSource(ctx, &oauth2.Token{RefreshToken: f.current.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		if isInvalidGrant(err) {
			f.logger.Warnf("refresh token invalid or revoked: %v", err)
			if clearErr := f.cache.Clear(); clearErr != nil {
				f.logger.Warnf("failed to clear token cache: %v", clearErr)
			}
			f.current = nil
			f.state = StateNoToken
			return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
		}
		f.state = StateExpired
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	tokens := FromOAuth2(tok, f.current)
	if err := f.cache.Save(tokens); err != nil {
		f.logger.Warnf("failed to persist refreshed tokens: %v", err)
	}

	f.current = tokens
	f.state = StateAuthorized
	f.logger.Info("access token refreshed")

	return tokens, nil
}

// Login runs the interactive authorization flow regardless of cached state.
func (f *Flow) Login(ctx context.Context) (*TokenSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginLocked(ctx)
}

func (f *Flow) loginLocked(ctx context.Context) (*TokenSet, error) {
	if f.login == nil {
		f.state = StateNoToken
		return nil, fmt.Errorf("%w: no valid token and interactive login unavailable", shared.ErrNotAuthenticated)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}

	f.state = StateAuthorizing
	f.logger.Info("starting authorization flow")

	tok, err := f.login(ctx, f.config, state)
	if err != nil {
		f.state = StateNoToken
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	tokens := FromOAuth2(tok, nil)
	if tokens.Scope == "" {
		tokens.Scope = strings.Join(f.config.Scopes, " ")
	}
	if err := f.cache.Save(tokens); err != nil {
		f.logger.Warnf("failed to persist tokens: %v", err)
	}

	f.current = tokens
	f.state = StateAuthorized
	f.logger.Info("authorization successful")

	return tokens, nil
}

// Logout clears the token cache and resets the flow to NoToken.
func (f *Flow) Logout() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = nil
	f.state = StateNoToken

	return f.cache.Clear()
}

// isInvalidGrant reports whether a token endpoint error means the refresh token is invalid or revoked.
func isInvalidGrant(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	if re.ErrorCode == "invalid_grant" {
		return true
	}
	return re.Response != nil && (re.Response.StatusCode == 400 || re.Response.StatusCode == 401) && re.ErrorCode == ""
}

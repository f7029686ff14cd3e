// package auth implements the OAuth2 token lifecycle: acquire, cache, validate, refresh, re-authenticate.
package auth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ExpiryMargin is subtracted from a token's lifetime so a request never races against imminent expiry.
const ExpiryMargin = 30 * time.Second

// defaultTTL is assumed when the token endpoint declares no lifetime.
const defaultTTL = time.Hour

// now is swapped out in tests.
var now = time.Now

// TokenSet holds the access/refresh token pair persisted in the token cache.
//
// ExpiresAt is epoch seconds derived from issuance time plus the server-declared TTL.
// Scope is the space-delimited scope string as returned by the provider.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	Scope        string `json:"scope"`
}

// Valid reports whether the access token is present and not within [ExpiryMargin] of expiry.
func (t *TokenSet) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return !t.Expired()
}

// Expired reports whether the token is past (or within [ExpiryMargin] of) its expiry time.
func (t *TokenSet) Expired() bool {
	if t.ExpiresAt == 0 {
		return false
	}
	return now().After(time.Unix(t.ExpiresAt, 0).Add(-ExpiryMargin))
}

// Scopes returns the granted scopes as a slice.
func (t *TokenSet) Scopes() []string {
	return strings.Fields(t.Scope)
}

// OAuth2 converts the TokenSet to an [oauth2.Token].
func (t *TokenSet) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    "Bearer",
	}
	if t.ExpiresAt > 0 {
		tok.Expiry = time.Unix(t.ExpiresAt, 0)
	}
	return tok
}

// FromOAuth2 converts an [oauth2.Token] to a TokenSet.
//
// A zero expiry is replaced with issuance time plus a one hour default TTL.
// When the provider omits a rotated refresh token, the previous one is carried forward.
func FromOAuth2(tok *oauth2.Token, prev *TokenSet) *TokenSet {
	ts := &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}

	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = now().Add(defaultTTL)
	}
	ts.ExpiresAt = expiry.Unix()

	if scope, ok := tok.Extra("scope").(string); ok {
		ts.Scope = scope
	}

	if prev != nil {
		if ts.RefreshToken == "" {
			ts.RefreshToken = prev.RefreshToken
		}
		if ts.Scope == "" {
			ts.Scope = prev.Scope
		}
	}

	return ts
}

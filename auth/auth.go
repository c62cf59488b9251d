// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package auth owns bearer token state for the session.
//
// An Authorizer answers four questions: is the cached token still
// valid, what is its value, which base URL should API paths be resolved
// against, and how is the token invalidated. Refresh is a separate,
// optional capability: authorizers that also implement Refresher can
// transparently recover from an expired token, while those that do not
// let authorization failures surface to the caller.
//
// Token acquisition is delegated to golang.org/x/oauth2; this package
// never negotiates an OAuth grant itself. The provided constructors
// cover the application-only (client credentials), script (password),
// refresh-token, and installed-client (device id) grants.
package auth

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultBaseURL is the API host all request paths are resolved
	// against.
	DefaultBaseURL = "https://oauth.reddit.com"
	// DefaultTokenURL is the endpoint tokens are obtained from.
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"
)

// An Authorizer owns the cached bearer token for a session.
//
// Implementations must be safe for concurrent use: any in-flight call
// observing a 401 may invalidate the token while other calls read it,
// and redundant refreshes must be harmless (last write wins).
type Authorizer interface {
	// IsValid reports whether the cached token can still be used.
	IsValid() bool
	// Token returns the cached bearer token value, or the empty string
	// when no valid token is cached.
	Token() string
	// InvalidateToken discards the cached token.
	InvalidateToken()
	// BaseURL returns the API base URL that request paths are resolved
	// against.
	BaseURL() string
}

// A Refresher is an Authorizer that can obtain a fresh token. Its
// presence is a capability flag: the session type-asserts for it, and
// only refresh-capable authorizers recover transparently from expiry.
type Refresher interface {
	// Refresh obtains and caches a fresh token, replacing any cached
	// one.
	Refresh(ctx context.Context) error
}

// Static is a refresh-incapable Authorizer around a fixed,
// externally-obtained token. Once the token is invalidated or expires
// there is no recovery; authorization failures surface to the caller.
type Static struct {
	mu      sync.Mutex
	token   string
	baseURL string
}

// NewStatic wraps an externally-obtained bearer token.
func NewStatic(token string, opts ...Option) *Static {
	cfg := applyOptions(opts)
	return &Static{token: token, baseURL: cfg.baseURL}
}

// IsValid reports whether the token has not been invalidated.
func (a *Static) IsValid() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token != ""
}

// Token returns the wrapped token.
func (a *Static) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

// InvalidateToken discards the wrapped token permanently.
func (a *Static) InvalidateToken() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = ""
}

// BaseURL returns the API base URL.
func (a *Static) BaseURL() string {
	return a.baseURL
}

// TokenAuthorizer is a refresh-capable Authorizer. Each Refresh obtains
// a token through an oauth2 grant and caches it together with its
// expiry; IsValid consults the expiry with the standard early-expiry
// slack applied by x/oauth2.
type TokenAuthorizer struct {
	mu       sync.Mutex
	token    *oauth2.Token
	baseURL  string
	newToken func(ctx context.Context) (*oauth2.Token, error)
}

var _ Refresher = (*TokenAuthorizer)(nil)

// IsValid reports whether a non-expired token is cached.
func (a *TokenAuthorizer) IsValid() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token.Valid()
}

// Token returns the cached access token value, or "" when none is
// cached.
func (a *TokenAuthorizer) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token == nil {
		return ""
	}
	return a.token.AccessToken
}

// InvalidateToken discards the cached token. A subsequent Refresh
// obtains a new one.
func (a *TokenAuthorizer) InvalidateToken() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = nil
}

// BaseURL returns the API base URL.
func (a *TokenAuthorizer) BaseURL() string {
	return a.baseURL
}

// Refresh obtains a fresh token through the configured grant and
// replaces the cached one. Refresh is safe to invoke redundantly from
// concurrent calls; the last completed refresh wins.
func (a *TokenAuthorizer) Refresh(ctx context.Context) error {
	token, err := a.newToken(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
	return nil
}

// ExpiresAt returns the expiry of the cached token, or the zero time
// when none is cached.
func (a *TokenAuthorizer) ExpiresAt() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token == nil {
		return time.Time{}
	}
	return a.token.Expiry
}

// NewReadOnly returns an authorizer using the application-only client
// credentials grant. It grants read access to public data without a
// user context.
func NewReadOnly(clientID, clientSecret string, opts ...Option) *TokenAuthorizer {
	cfg := applyOptions(opts)
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     cfg.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return &TokenAuthorizer{
		baseURL:  cfg.baseURL,
		newToken: func(ctx context.Context) (*oauth2.Token, error) { return conf.Token(cfg.withHTTPClient(ctx)) },
	}
}

// NewScript returns an authorizer using the resource owner password
// grant, as used by personal-use script applications.
func NewScript(clientID, clientSecret, username, password string, opts ...Option) *TokenAuthorizer {
	cfg := applyOptions(opts)
	conf := oauth2Config(clientID, clientSecret, cfg)
	return &TokenAuthorizer{
		baseURL: cfg.baseURL,
		newToken: func(ctx context.Context) (*oauth2.Token, error) {
			return conf.PasswordCredentialsToken(cfg.withHTTPClient(ctx), username, password)
		},
	}
}

// NewRefreshToken returns an authorizer that redeems a previously
// issued refresh token for fresh access tokens.
func NewRefreshToken(clientID, clientSecret, refreshToken string, opts ...Option) *TokenAuthorizer {
	cfg := applyOptions(opts)
	conf := oauth2Config(clientID, clientSecret, cfg)
	return &TokenAuthorizer{
		baseURL: cfg.baseURL,
		newToken: func(ctx context.Context) (*oauth2.Token, error) {
			seed := &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Now().Add(-time.Hour)}
			return conf.TokenSource(cfg.withHTTPClient(ctx), seed).Token()
		},
	}
}

// NewDeviceID returns an authorizer using the installed-client grant,
// which authenticates an application instance by an opaque device id
// (20 to 30 characters) without any user credentials.
func NewDeviceID(clientID, deviceID string, opts ...Option) *TokenAuthorizer {
	cfg := applyOptions(opts)
	conf := &clientcredentials.Config{
		ClientID:  clientID,
		TokenURL:  cfg.tokenURL,
		AuthStyle: oauth2.AuthStyleInHeader,
		EndpointParams: url.Values{
			"grant_type": {"https://oauth.reddit.com/grants/installed_client"},
			"device_id":  {deviceID},
		},
	}
	return &TokenAuthorizer{
		baseURL:  cfg.baseURL,
		newToken: func(ctx context.Context) (*oauth2.Token, error) { return conf.Token(cfg.withHTTPClient(ctx)) },
	}
}

func oauth2Config(clientID, clientSecret string, cfg options) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package auth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

type options struct {
	baseURL    string
	tokenURL   string
	httpClient *http.Client
}

// An Option configures an authorizer constructor.
type Option func(*options)

// WithBaseURL overrides the API base URL that request paths are
// resolved against.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithTokenURL overrides the token endpoint. Useful for tests and for
// API-compatible deployments on other hosts.
func WithTokenURL(tokenURL string) Option {
	return func(o *options) {
		o.tokenURL = tokenURL
	}
}

// WithHTTPClient sets the HTTP client used for token endpoint calls.
// Token fetches otherwise use http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func applyOptions(opts []Option) options {
	o := options{
		baseURL:  DefaultBaseURL,
		tokenURL: DefaultTokenURL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) withHTTPClient(ctx context.Context) context.Context {
	if o.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
}

// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package requestor is the transport boundary of the client.
//
// A Requestor wraps an http.Client, applies a per-attempt timeout
// distinct from any connection-level default, keeps redirect following
// disabled so 3xx responses surface to the caller instead of silently
// retargeting the request (or leaking the bearer token to another
// host), and normalizes every transport failure into a single *Error
// carrying the original cause plus the method and URL of the failed
// call.
package requestor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout is the per-attempt timeout applied when none is
// configured.
const DefaultTimeout = 16 * time.Second

// ErrUserAgent is returned by New when the supplied user agent is too
// short to be descriptive. The remote API requires clients to identify
// themselves meaningfully.
var ErrUserAgent = fmt.Errorf("requestor: user agent is not descriptive")

// An Error is the uniform transport failure. Every error coming out of
// the underlying HTTP client, and every body read failure, is wrapped
// into one of these so callers can classify the original cause with
// errors.As or errors.Is without knowledge of the transport internals.
type Error struct {
	// Method is the HTTP method of the failed attempt.
	Method string
	// URL is the absolute URL of the failed attempt.
	URL string
	// Cause is the original transport error.
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("requestor: %s %s: %v", e.Method, e.URL, e.Cause)
}

// Unwrap returns the original transport cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// A Response is a fully-buffered HTTP response. Header lookups through
// http.Header are case-insensitive.
type Response struct {
	// Status is the HTTP status code.
	Status int
	// Header contains the response headers.
	Header http.Header
	// Body is the complete response body.
	Body []byte
}

// A Requestor issues individual HTTP request attempts. It is safe for
// concurrent use by multiple goroutines; many logical calls may have
// attempts in flight on the shared connection pool at once.
type Requestor struct {
	userAgent string
	client    *http.Client
	timeout   time.Duration
	log       zerolog.Logger
}

// An Option configures a Requestor.
type Option func(*Requestor)

// WithHTTPClient supplies the underlying HTTP client. The client is
// copied and its redirect policy is overridden so redirects are never
// followed; all other connection-level configuration (transport, TLS,
// pool limits) is preserved.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Requestor) {
		c2 := *c
		r.client = &c2
	}
}

// WithTimeout sets the per-attempt timeout. It bounds each individual
// request attempt; there is no deadline spanning a whole retry
// sequence.
func WithTimeout(d time.Duration) Option {
	return func(r *Requestor) {
		r.timeout = d
	}
}

// WithLogger attaches a logger for transport diagnostics. The default
// logger discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Requestor) {
		r.log = log
	}
}

// New constructs a Requestor identified by the given user agent. A user
// agent shorter than seven characters is rejected with ErrUserAgent.
func New(userAgent string, opts ...Option) (*Requestor, error) {
	if len(userAgent) < 7 {
		return nil, ErrUserAgent
	}
	r := &Requestor{
		userAgent: userAgent,
		timeout:   DefaultTimeout,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = &http.Client{}
	}
	r.client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return r, nil
}

// UserAgent returns the full user agent sent with every request.
func (r *Requestor) UserAgent() string {
	return fmt.Sprintf("%s asyncprawcore/%s", r.userAgent, Version)
}

// Do issues one HTTP request attempt and buffers the entire response
// body. The per-attempt timeout is layered onto ctx, so a tighter
// caller deadline still wins. Any failure, including a body read
// failure, is returned as an *Error.
func (r *Requestor) Do(ctx context.Context, req *http.Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", r.UserAgent())
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &Error{Method: req.Method, URL: req.URL.String(), Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: req.Method, URL: req.URL.String(), Cause: err}
	}

	r.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("response received")

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
	}, nil
}

// Close releases idle connections held by the underlying client's
// transport. In-flight requests are not interrupted.
func (r *Requestor) Close() {
	type idleCloser interface {
		CloseIdleConnections()
	}
	if t, ok := r.client.Transport.(idleCloser); ok {
		t.CloseIdleConnections()
	} else if r.client.Transport == nil {
		http.DefaultTransport.(idleCloser).CloseIdleConnections()
	}
}

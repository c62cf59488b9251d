// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asyncprawcore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	urlpkg "net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/DevilXD/asyncprawcore/auth"
	"github.com/DevilXD/asyncprawcore/ratelimit"
	"github.com/DevilXD/asyncprawcore/request"
	"github.com/DevilXD/asyncprawcore/requestor"
	"github.com/DevilXD/asyncprawcore/transient"
)

// DefaultRetries is the default attempt budget for one logical call.
const DefaultRetries = 3

// A Session is the request orchestrator. It executes logical API calls
// as a strictly sequential attempt loop, throttled by the rate limiter,
// authenticated with a bearer header rebuilt fresh for every attempt,
// and bounded by a decrementing retry budget.
//
// A Session is safe for concurrent use by multiple goroutines; many
// logical calls may interleave at its suspension points (backoff sleep,
// rate-limit wait, token refresh, and the transport call itself) while
// each call's own state machine stays sequential.
type Session struct {
	authorizer auth.Authorizer
	requestor  *requestor.Requestor
	limiter    *ratelimit.Limiter
	retries    int
	log        zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error

	jitterLock sync.Mutex
	jitter     *rand.Rand
}

// An Option configures a Session.
type Option func(*Session)

// WithRetries sets the attempt budget for each logical call. The
// budget counts attempts, not retries: a budget of 3 allows the initial
// attempt plus two retries.
func WithRetries(n int) Option {
	return func(s *Session) {
		s.retries = n
	}
}

// WithRateLimiter substitutes the rate limiter. The default limiter
// adapts purely to response rate-limit headers.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(s *Session) {
		s.limiter = l
	}
}

// WithLogger attaches a logger for diagnostics. Retries are invisible
// to callers except through this logger; the default discards
// everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithJitter substitutes the random source behind the backoff jitter,
// letting tests pin the sleep durations.
func WithJitter(src rand.Source) Option {
	return func(s *Session) {
		s.jitter = rand.New(src)
	}
}

// WithSleep substitutes the sleep function used for backoff, letting
// tests observe sleeps without waiting them out.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Session) {
		s.sleep = sleep
	}
}

// New constructs a Session around its two required collaborators. A nil
// authorizer or requestor, or a non-positive retry budget, is an
// InvalidInvocationError.
func New(authorizer auth.Authorizer, rq *requestor.Requestor, opts ...Option) (*Session, error) {
	if authorizer == nil {
		return nil, &InvalidInvocationError{Reason: "nil authorizer"}
	}
	if rq == nil {
		return nil, &InvalidInvocationError{Reason: "nil requestor"}
	}
	s := &Session{
		authorizer: authorizer,
		requestor:  rq,
		retries:    DefaultRetries,
		log:        zerolog.Nop(),
		sleep:      sleepCtx,
		jitter:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retries < 1 {
		return nil, &InvalidInvocationError{Reason: fmt.Sprintf("retry budget must be positive, got %d", s.retries)}
	}
	if s.limiter == nil {
		s.limiter = ratelimit.New(ratelimit.WithLogger(s.log))
	}
	return s, nil
}

// Close releases the idle connections held by the underlying requestor.
func (s *Session) Close() {
	s.requestor.Close()
}

// Request executes one logical API call and returns its single outcome:
// a Result, or exactly one classified error.
//
// The path is resolved against the authorizer's base URL. Caller maps
// supplied through options are deep-copied before the protocol fields
// (raw_json marker, api_type field) are injected; mapping bodies go on
// the wire as key-sorted pairs. An expired token is refreshed
// transparently whenever the authorizer is refresh-capable.
func (s *Session) Request(ctx context.Context, method, path string, opts ...RequestOption) (*Result, error) {
	var ro request.Options
	for _, opt := range opts {
		opt(&ro)
	}

	base, err := urlpkg.Parse(s.authorizer.BaseURL())
	if err != nil {
		return nil, &InvalidInvocationError{Reason: fmt.Sprintf("invalid base URL: %v", err)}
	}
	ref, err := urlpkg.Parse(path)
	if err != nil {
		return nil, &InvalidInvocationError{Reason: fmt.Sprintf("invalid path %q: %v", path, err)}
	}

	plan, err := request.NewPlan(method, base.ResolveReference(ref), ro)
	if err != nil {
		return nil, &InvalidInvocationError{Reason: err.Error()}
	}
	return s.do(ctx, plan)
}

// do runs the attempt loop. The remaining counter starts at the budget
// and strictly decreases by one per attempt; the loop always exits
// through resolve, a terminal transport error, or cancellation.
func (s *Session) do(ctx context.Context, plan *request.Plan) (*Result, error) {
	for remaining := s.retries; ; remaining-- {
		// The sleep before an attempt is the penalty for the previous
		// failure, so the first attempt never sleeps.
		if err := s.backoff(ctx, remaining); err != nil {
			return nil, err
		}
		s.log.Debug().
			Str("method", plan.Method()).
			Str("url", plan.URL().String()).
			Int("remaining", remaining).
			Msg("fetching")

		resp, saved, err := s.attempt(ctx, plan, remaining)
		if err != nil {
			return nil, err
		}

		forceRetry := false
		if resp != nil && resp.Status == http.StatusUnauthorized {
			s.authorizer.InvalidateToken()
			if _, ok := s.authorizer.(auth.Refresher); ok {
				forceRetry = true
			}
		}

		if remaining > 1 && (forceRetry || resp == nil || retryStatus(resp.Status)) {
			s.logRetry(plan, resp, saved)
			continue
		}
		return s.resolve(resp)
	}
}

// attempt performs one rate-limited transport call. A transient
// transport failure with attempts remaining comes back as a non-nil
// saved cause; every other failure is terminal.
func (s *Session) attempt(ctx context.Context, plan *request.Plan, remaining int) (resp *requestor.Response, saved error, err error) {
	resp, err = s.limiter.Call(ctx, s.freshHeaders, func(ctx context.Context, h http.Header) (*requestor.Response, error) {
		req, err := plan.ToRequest(ctx, h)
		if err != nil {
			return nil, err
		}
		return s.requestor.Do(ctx, req)
	})
	if err != nil {
		var terr *requestor.Error
		if remaining > 1 && errors.As(err, &terr) && transient.Retryable(terr.Cause) {
			return nil, err, nil
		}
		return nil, nil, err
	}
	return resp, nil, nil
}

// freshHeaders builds the Authorization header for one attempt. It is
// invoked by the rate limiter freshly every call, never cached, so a
// token refreshed between attempts is always picked up.
func (s *Session) freshHeaders(ctx context.Context) (http.Header, error) {
	if !s.authorizer.IsValid() {
		r, ok := s.authorizer.(auth.Refresher)
		if !ok {
			return nil, &InvalidInvocationError{Reason: "authorization is invalid and the authorizer cannot refresh"}
		}
		if err := r.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	h := make(http.Header)
	h.Set("Authorization", "bearer "+s.authorizer.Token())
	return h, nil
}

// resolve classifies the final attempt's response. Reaching it with a
// status outside the tables below is a programming-invariant violation,
// not a recoverable condition.
func (s *Session) resolve(resp *requestor.Response) (*Result, error) {
	switch resp.Status {
	case http.StatusFound:
		return nil, &ResponseError{Kind: KindRedirect, Response: resp}
	case http.StatusBadRequest:
		return nil, &ResponseError{Kind: KindBadRequest, Response: resp}
	case http.StatusUnauthorized:
		return nil, &ResponseError{Kind: s.unauthorizedKind(), Response: resp}
	case http.StatusForbidden:
		return nil, &ResponseError{Kind: KindForbidden, Response: resp}
	case http.StatusNotFound:
		return nil, &ResponseError{Kind: KindNotFound, Response: resp}
	case http.StatusConflict:
		return nil, &ResponseError{Kind: KindConflict, Response: resp}
	case http.StatusRequestEntityTooLarge:
		return nil, &ResponseError{Kind: KindTooLarge, Response: resp}
	case http.StatusUnsupportedMediaType:
		return nil, &ResponseError{Kind: KindSpecialError, Response: resp}
	case http.StatusUnavailableForLegalReasons:
		return nil, &ResponseError{Kind: KindUnavailableForLegalReasons, Response: resp}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable,
		http.StatusGatewayTimeout, statusOriginError, statusConnectionTimedOut:
		return nil, &ResponseError{Kind: KindServerError, Response: resp}
	case http.StatusNoContent:
		return &Result{Status: resp.Status}, nil
	case http.StatusOK, http.StatusCreated:
		if resp.Header.Get("Content-Length") == "0" {
			return &Result{Status: resp.Status}, nil
		}
		if !json.Valid(resp.Body) {
			return nil, &ResponseError{Kind: KindBadJSON, Response: resp}
		}
		return &Result{Status: resp.Status, Body: json.RawMessage(resp.Body)}, nil
	default:
		panic(fmt.Sprintf("asyncprawcore: unexpected status code %d", resp.Status))
	}
}

// unauthorizedKind picks the 401 error variant by authorizer
// capability.
func (s *Session) unauthorizedKind() Kind {
	if _, ok := s.authorizer.(auth.Refresher); ok {
		return KindInvalidToken
	}
	return KindUnauthorized
}

// backoff sleeps before an attempt as the penalty for the previous
// failure: a uniformly random duration in [0,2) seconds with two
// attempts remaining and in [2,4) seconds below that. The jitter
// avoids synchronized retry storms.
func (s *Session) backoff(ctx context.Context, remaining int) error {
	if remaining >= s.retries {
		return nil
	}
	base := 2.0
	if remaining == 2 {
		base = 0
	}
	d := time.Duration((base + 2*s.rand01()) * float64(time.Second))
	s.log.Debug().Dur("sleep", d).Msg("sleeping prior to retry")
	return s.sleep(ctx, d)
}

func (s *Session) rand01() float64 {
	s.jitterLock.Lock()
	defer s.jitterLock.Unlock()
	return s.jitter.Float64()
}

func (s *Session) logRetry(plan *request.Plan, resp *requestor.Response, saved error) {
	ev := s.log.Warn().
		Str("method", plan.Method()).
		Str("url", plan.URL().String())
	if saved != nil {
		ev = ev.Err(saved)
	} else if resp != nil {
		ev = ev.Int("status", resp.Status)
	}
	ev.Msg("retrying")
}

// Cloudflare statuses the API surfaces that have no net/http constant.
const (
	statusOriginError        = 520
	statusConnectionTimedOut = 522
)

// retryStatus reports whether a response status is worth retrying
// while budget remains.
func retryStatus(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable,
		http.StatusGatewayTimeout, statusOriginError, statusConnectionTimedOut:
		return true
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

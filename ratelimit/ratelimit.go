// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package ratelimit throttles the timing of request attempts.
//
// The Limiter wraps every transport call. Before dispatching it waits
// until the next-request timestamp computed from the previous
// response's x-ratelimit-* headers has passed (and, when configured,
// until a steady-state token-bucket floor admits the call). The auth
// header provider is invoked freshly on every call, never cached, so a
// token refreshed between attempts is always picked up.
//
// The pacing algorithm spreads the remaining quota over the remaining
// window. When the previous response shows other clients consuming the
// same quota (remaining dropped by more than one), the per-call delay
// grows proportionally; when the quota is exhausted, the next call
// waits for the window reset.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/DevilXD/asyncprawcore/requestor"
)

// A HeaderFunc returns the headers to attach to the next transport
// call. The Limiter invokes it freshly for every call.
type HeaderFunc func(ctx context.Context) (http.Header, error)

// A TransportFunc performs one transport call with the supplied
// headers.
type TransportFunc func(ctx context.Context, header http.Header) (*requestor.Response, error)

// A Limiter throttles transport calls and adapts its delay to the
// rate-limit headers of each response. It is safe for concurrent use;
// interleaved calls share one pacing state.
type Limiter struct {
	mu          sync.Mutex
	remaining   float64
	used        int
	seen        bool
	nextRequest time.Time
	resetAt     time.Time

	floor *rate.Limiter
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	log   zerolog.Logger
}

// An Option configures a Limiter.
type Option func(*Limiter)

// WithFloor adds a steady-state token-bucket floor; every call waits
// for the bucket in addition to the header-derived delay.
func WithFloor(floor *rate.Limiter) Option {
	return func(l *Limiter) {
		l.floor = floor
	}
}

// WithLogger attaches a logger for throttling diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Limiter) {
		l.log = log
	}
}

// WithClock substitutes the time source and sleep function, letting
// tests drive the pacing deterministically.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Limiter) {
		l.now = now
		l.sleep = sleep
	}
}

// New constructs a Limiter with no initial pacing state; the first call
// proceeds immediately.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		now:   time.Now,
		sleep: sleepCtx,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Call performs one throttled transport call. It waits out any delay
// owed from the previous response, obtains fresh headers from headers,
// dispatches through send, and updates the pacing state from the
// response's rate-limit headers. The response is returned unmodified.
func (l *Limiter) Call(ctx context.Context, headers HeaderFunc, send TransportFunc) (*requestor.Response, error) {
	if err := l.delay(ctx); err != nil {
		return nil, err
	}
	if l.floor != nil {
		if err := l.floor.Wait(ctx); err != nil {
			return nil, err
		}
	}
	h, err := headers(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := send(ctx, h)
	if err != nil {
		return nil, err
	}
	l.update(resp.Header)
	return resp, nil
}

// Remaining returns the most recently reported remaining quota and
// whether any rate-limit headers have been seen yet.
func (l *Limiter) Remaining() (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining, l.seen
}

// Used returns the most recently reported used-request count.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

func (l *Limiter) delay(ctx context.Context) error {
	l.mu.Lock()
	next := l.nextRequest
	l.mu.Unlock()
	if next.IsZero() {
		return nil
	}
	d := next.Sub(l.now())
	if d <= 0 {
		return nil
	}
	l.log.Debug().Dur("sleep", d).Msg("rate limit: waiting before next request")
	return l.sleep(ctx, d)
}

// update digests the rate-limit headers of one response. Responses
// without rate-limit headers decrement the local estimate instead.
func (l *Limiter) update(h http.Header) {
	l.mu.Lock()
	defer l.mu.Unlock()

	remainingHeader := h.Get("x-ratelimit-remaining")
	if remainingHeader == "" {
		if l.seen {
			l.remaining--
			l.used++
		}
		return
	}

	remaining, err := strconv.ParseFloat(remainingHeader, 64)
	if err != nil {
		return
	}
	secondsToReset, err := strconv.Atoi(h.Get("x-ratelimit-reset"))
	if err != nil {
		return
	}
	used, err := strconv.Atoi(h.Get("x-ratelimit-used"))
	if err != nil {
		return
	}

	now := l.now()
	prevRemaining, prevSeen := l.remaining, l.seen
	l.remaining = remaining
	l.used = used
	l.seen = true
	l.resetAt = now.Add(time.Duration(secondsToReset) * time.Second)

	if remaining <= 0 {
		l.nextRequest = l.resetAt
		return
	}

	estimatedClients := 1.0
	if prevSeen && prevRemaining > remaining {
		estimatedClients = prevRemaining - remaining
	}
	pace := now.Add(time.Duration(estimatedClients * float64(secondsToReset) / remaining * float64(time.Second)))
	if pace.Before(l.resetAt) {
		l.nextRequest = pace
	} else {
		l.nextRequest = l.resetAt
	}
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

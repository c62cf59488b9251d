// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package asyncprawcore is the low-level connection core for Reddit's
// OAuth2 REST API. It turns one logical API call into one or more HTTP
// attempts, interleaving token validity checks, rate-limit throttling,
// retry with jittered backoff, and classification of every outcome into
// a typed error taxonomy. Higher-level, domain-specific clients build
// on top of it.
//
// A Session orchestrates calls against three injected collaborators: an
// auth.Authorizer owning the bearer token (with optional transparent
// refresh), a ratelimit.Limiter throttling attempt timing, and a
// requestor.Requestor wrapping the HTTP transport with per-attempt
// timeouts and uniform error normalization.
//
//	rq, err := requestor.New("myapp:v1.2 (by /u/example)")
//	if err != nil {
//		// handle err
//	}
//	authorizer := auth.NewReadOnly(clientID, clientSecret)
//	session, err := asyncprawcore.New(authorizer, rq)
//	if err != nil {
//		// handle err
//	}
//	defer session.Close()
//
//	result, err := session.Get(ctx, "/api/v1/me")
//
// Each logical call observes exactly one outcome: a Result or one
// classified error. Retries of transient transport failures, retryable
// server statuses, and expired tokens are invisible to the caller
// except through optional diagnostic logging.
package asyncprawcore

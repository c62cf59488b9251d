// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asyncprawcore

import (
	"fmt"

	"github.com/DevilXD/asyncprawcore/requestor"
)

// A Kind classifies a terminal API failure. Every non-success response
// status the session surfaces maps to exactly one Kind.
type Kind int

const (
	// KindBadJSON marks a success status whose body failed to decode
	// as JSON.
	KindBadJSON Kind = iota
	// KindBadRequest corresponds to HTTP 400.
	KindBadRequest
	// KindConflict corresponds to HTTP 409.
	KindConflict
	// KindForbidden corresponds to HTTP 403.
	KindForbidden
	// KindInvalidToken corresponds to HTTP 401 from a refresh-capable
	// authorizer whose refresh could not rescue the call.
	KindInvalidToken
	// KindNotFound corresponds to HTTP 404.
	KindNotFound
	// KindRedirect corresponds to HTTP 302. Redirects are never
	// followed; following one blindly could retarget the call or leak
	// the bearer token to another host.
	KindRedirect
	// KindServerError corresponds to HTTP 500, 502, 503, 504, 520, and
	// 522, surfaced once the retry budget is exhausted.
	KindServerError
	// KindSpecialError corresponds to HTTP 415, used by the API to
	// flag specially-handled request rejections.
	KindSpecialError
	// KindTooLarge corresponds to HTTP 413.
	KindTooLarge
	// KindUnauthorized corresponds to HTTP 401 from an authorizer that
	// cannot refresh; the caller must re-authenticate.
	KindUnauthorized
	// KindUnavailableForLegalReasons corresponds to HTTP 451.
	KindUnavailableForLegalReasons
)

var kindNames = map[Kind]string{
	KindBadJSON:                    "bad JSON",
	KindBadRequest:                 "bad request",
	KindConflict:                   "conflict",
	KindForbidden:                  "forbidden",
	KindInvalidToken:               "invalid token",
	KindNotFound:                   "not found",
	KindRedirect:                   "redirect",
	KindServerError:                "server error",
	KindSpecialError:               "special error",
	KindTooLarge:                   "too large",
	KindUnauthorized:               "unauthorized",
	KindUnavailableForLegalReasons: "unavailable for legal reasons",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsAuthError reports whether the kind is one of the authorization
// failure variants.
func (k Kind) IsAuthError() bool {
	return k == KindForbidden || k == KindInvalidToken || k == KindUnauthorized
}

// A ResponseError is a terminal API failure classified from an HTTP
// response. It carries the raw, fully-buffered response so callers can
// inspect the status, headers, and body of the rejected attempt.
type ResponseError struct {
	// Kind classifies the failure.
	Kind Kind
	// Response is the raw response of the final attempt.
	Response *requestor.Response
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("asyncprawcore: %s (HTTP %d)", e.Kind, e.Response.Status)
}

// Location returns the redirect target for a KindRedirect error, or ""
// for any other kind.
func (e *ResponseError) Location() string {
	if e.Kind != KindRedirect {
		return ""
	}
	return e.Response.Header.Get("Location")
}

// An InvalidInvocationError reports caller misuse: a missing
// collaborator, an unsupported method, or a call that requires a token
// refresh when the authorizer cannot refresh.
type InvalidInvocationError struct {
	Reason string
}

func (e *InvalidInvocationError) Error() string {
	return fmt.Sprintf("asyncprawcore: invalid invocation: %s", e.Reason)
}

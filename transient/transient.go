// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// A Category is the transience category of a particular error, as
// reported by function Categorize.
//
// The category Not means the error is not transient from the perspective
// of completing an HTTP request attempt successfully, or in other words
// that a retry after encountering this error is very unlikely to succeed.
//
// All other categories indicate the error has some prospect of success
// on a future attempt.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout while waiting for the
	// response, either from the per-attempt deadline or from a read
	// deadline on the connection. The server may be going through a
	// temporary period of slowness.
	//
	// Categorize returns Timeout if the error or any of its wrapped
	// causes has a Timeout() function that reports true, or is
	// context.DeadlineExceeded.
	Timeout
	// ConnError indicates a connection-level failure: the remote host
	// refused the connection, reset it mid-request, or closed it before
	// any response was received. Such failures are common around service
	// restarts and load balancer rotations, so a retry has a high
	// probability of success.
	ConnError
	// TruncatedBody indicates the connection dropped partway through
	// the response body, leaving it shorter than the headers promised.
	// The request reached the server and a fresh attempt will usually
	// complete.
	TruncatedBody
)

// Categorize returns the transience category of the given error. A nil
// error, and an error that is not transient from the perspective of
// completing an HTTP request attempt, both produce the return value Not.
//
// In assessing transience, Categorize looks at wrapped cause errors
// contained within err, not just err itself. It never checks whether an
// error has a Temporary() function, as the semantics of Temporary()
// aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return TruncatedBody
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED, syscall.EPIPE:
			return ConnError
		}
	}

	// A server that closes the connection without writing a response
	// surfaces as a bare EOF from the transport.
	if errors.Is(err, io.EOF) {
		return ConnError
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && (opErr.Op == "dial" || opErr.Op == "read") {
		return ConnError
	}

	return Not
}

// Retryable reports whether err belongs to a transience category for
// which a retry is worthwhile.
func Retryable(err error) bool {
	return Categorize(err) != Not
}

type hasTimeout interface {
	Timeout() bool
}

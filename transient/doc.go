// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient categorizes transport errors by their prospect of
// success on retry.
//
// The session retries a failed request attempt only when the underlying
// transport error is transient: a client-side timeout, a connection-level
// failure (refused, reset, dropped), or a response body truncated
// mid-transfer. Every other transport error is treated as permanent and
// surfaces immediately.
package transient

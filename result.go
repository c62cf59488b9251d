// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asyncprawcore

import (
	"encoding/json"
	"net/http"
)

// A Result is the successful outcome of one logical call. It is one of
// three shapes, always explicit and never ambiguous:
//
//   - a decoded JSON payload (status 200 or 201 with a body),
//   - an empty result (status 200 or 201 with Content-Length "0"), or
//   - a no-content marker (status 204).
type Result struct {
	// Status is the HTTP status of the final attempt: 200, 201, or
	// 204.
	Status int
	// Body is the raw JSON payload. It is nil for the no-content
	// marker and the empty result.
	Body json.RawMessage
}

// NoContent reports whether the call resolved to the HTTP 204
// no-content marker.
func (r *Result) NoContent() bool {
	return r.Status == http.StatusNoContent
}

// Empty reports whether the call succeeded without a payload.
func (r *Result) Empty() bool {
	return len(r.Body) == 0
}

// Decode unmarshals the JSON payload into v. Decoding an empty result
// or the no-content marker is caller error.
func (r *Result) Decode(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

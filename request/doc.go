// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package request provides the immutable, canonicalized description of
// one logical API request.
//
// A Plan is built once per logical call and then converted into a fresh
// http.Request for every attempt made while executing the call. Building
// the Plan deep-copies all caller-supplied parameters and body mappings,
// so the caller's values are never mutated when protocol fields are
// injected, and the pre-buffered body guarantees every attempt sends
// identical bytes.
//
// Two protocol fields are injected during canonicalization: the query
// parameters always carry raw_json=1, overwriting any caller-supplied
// value, and a mapping-valued body gains an api_type=json field and is
// emitted as a sequence of key/value pairs sorted by key, which keeps
// wire bodies deterministic.
package request

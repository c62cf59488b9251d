// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asyncprawcore

import (
	"context"
	"net/http"

	"github.com/DevilXD/asyncprawcore/request"
)

// A RequestOption attaches caller data to one logical call. The maps
// and values it carries are deep-copied during canonicalization and
// never mutated.
type RequestOption func(*request.Options)

// WithParams adds query parameters to the call. The raw_json marker is
// always forced into the transmitted copy, overwriting any
// caller-supplied value for that key.
func WithParams(params map[string]string) RequestOption {
	return func(o *request.Options) {
		o.Params = params
	}
}

// WithData sets a mapping-valued request body. It goes on the wire as
// key-sorted pairs with an injected api_type=json field. Mutually
// exclusive with WithJSON.
func WithData(data map[string]string) RequestOption {
	return func(o *request.Options) {
		o.Data = data
	}
}

// WithJSON sets a value to serialize as the JSON request body.
// Mutually exclusive with WithData.
func WithJSON(v interface{}) RequestOption {
	return func(o *request.Options) {
		o.JSON = v
	}
}

// WithFiles attaches file uploads to the call, switching the body to
// multipart encoding.
func WithFiles(files ...request.File) RequestOption {
	return func(o *request.Options) {
		o.Files = files
	}
}

// Get executes a GET against path, following the same orchestration as
// Request.
func (s *Session) Get(ctx context.Context, path string, opts ...RequestOption) (*Result, error) {
	return s.Request(ctx, http.MethodGet, path, opts...)
}

// Post executes a POST against path, following the same orchestration
// as Request.
func (s *Session) Post(ctx context.Context, path string, opts ...RequestOption) (*Result, error) {
	return s.Request(ctx, http.MethodPost, path, opts...)
}

// Put executes a PUT against path, following the same orchestration as
// Request.
func (s *Session) Put(ctx context.Context, path string, opts ...RequestOption) (*Result, error) {
	return s.Request(ctx, http.MethodPut, path, opts...)
}

// Patch executes a PATCH against path, following the same orchestration
// as Request.
func (s *Session) Patch(ctx context.Context, path string, opts ...RequestOption) (*Result, error) {
	return s.Request(ctx, http.MethodPatch, path, opts...)
}

// Delete executes a DELETE against path, following the same
// orchestration as Request.
func (s *Session) Delete(ctx context.Context, path string, opts ...RequestOption) (*Result, error) {
	return s.Request(ctx, http.MethodDelete, path, opts...)
}

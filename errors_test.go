// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asyncprawcore

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DevilXD/asyncprawcore/requestor"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "not found", KindNotFound.String())
	assert.Equal(t, "bad JSON", KindBadJSON.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestKind_IsAuthError(t *testing.T) {
	assert.True(t, KindForbidden.IsAuthError())
	assert.True(t, KindInvalidToken.IsAuthError())
	assert.True(t, KindUnauthorized.IsAuthError())
	assert.False(t, KindNotFound.IsAuthError())
	assert.False(t, KindServerError.IsAuthError())
}

func TestResponseError_Error(t *testing.T) {
	err := &ResponseError{
		Kind:     KindNotFound,
		Response: &requestor.Response{Status: http.StatusNotFound},
	}
	assert.Equal(t, "asyncprawcore: not found (HTTP 404)", err.Error())
}

func TestResponseError_Location(t *testing.T) {
	header := make(http.Header)
	header.Set("Location", "/r/test/")
	redirect := &ResponseError{
		Kind:     KindRedirect,
		Response: &requestor.Response{Status: http.StatusFound, Header: header},
	}
	assert.Equal(t, "/r/test/", redirect.Location())

	other := &ResponseError{
		Kind:     KindNotFound,
		Response: &requestor.Response{Status: http.StatusNotFound, Header: header},
	}
	assert.Equal(t, "", other.Location())
}

func TestInvalidInvocationError_Error(t *testing.T) {
	err := &InvalidInvocationError{Reason: "nil authorizer"}
	assert.Equal(t, "asyncprawcore: invalid invocation: nil authorizer", err.Error())
}

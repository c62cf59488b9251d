// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asyncprawcore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_Decode(t *testing.T) {
	r := &Result{Status: 200, Body: json.RawMessage(`{"kind":"t2","id":"1w72"}`)}
	assert.False(t, r.NoContent())
	assert.False(t, r.Empty())

	var thing struct {
		Kind string `json:"kind"`
		ID   string `json:"id"`
	}
	require.NoError(t, r.Decode(&thing))
	assert.Equal(t, "t2", thing.Kind)
	assert.Equal(t, "1w72", thing.ID)
}

func TestResult_NoContent(t *testing.T) {
	r := &Result{Status: 204}
	assert.True(t, r.NoContent())
	assert.True(t, r.Empty())
}

func TestResult_Empty(t *testing.T) {
	r := &Result{Status: 200}
	assert.True(t, r.Empty())
	assert.False(t, r.NoContent())
}

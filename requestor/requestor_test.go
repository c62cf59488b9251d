// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package requestor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevilXD/asyncprawcore/transient"
)

const testUserAgent = "asyncprawcore:test (by /u/example)"

func TestNew_UserAgent(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		for _, ua := range []string{"", "short", "123456"} {
			_, err := New(ua)
			assert.ErrorIs(t, err, ErrUserAgent, "%q", ua)
		}
	})
	t.Run("descriptive", func(t *testing.T) {
		r, err := New(testUserAgent)
		require.NoError(t, err)
		assert.Contains(t, r.UserAgent(), testUserAgent)
		assert.Contains(t, r.UserAgent(), "asyncprawcore/"+Version)
	})
}

func TestDo_SetsUserAgentHeader(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got = req.Header.Get("User-Agent")
	}))
	defer server.Close()

	r, err := New(testUserAgent)
	require.NoError(t, err)
	req, err := http.NewRequest("GET", server.URL, nil)
	require.NoError(t, err)
	_, err = r.Do(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, testUserAgent))
	assert.Contains(t, got, "asyncprawcore/")
}

func TestDo_BuffersBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	r, err := New(testUserAgent)
	require.NoError(t, err)
	req, err := http.NewRequest("GET", server.URL, nil)
	require.NoError(t, err)
	resp, err := r.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "yes", resp.Header.Get("x-test"), "expect case-insensitive header lookup")
}

func TestDo_RedirectNotFollowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/elsewhere" {
			t.Error("redirect was followed")
			return
		}
		http.Redirect(w, req, "/elsewhere", http.StatusFound)
	}))
	defer server.Close()

	r, err := New(testUserAgent)
	require.NoError(t, err)
	req, err := http.NewRequest("GET", server.URL, nil)
	require.NoError(t, err)
	resp, err := r.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.Status)
	assert.Equal(t, "/elsewhere", resp.Header.Get("Location"))
}

func TestDo_RedirectPolicyForcedOnSuppliedClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/elsewhere", http.StatusFound)
	}))
	defer server.Close()

	// A client that would happily follow redirects.
	r, err := New(testUserAgent, WithHTTPClient(&http.Client{}))
	require.NoError(t, err)
	req, err := http.NewRequest("GET", server.URL, nil)
	require.NoError(t, err)
	resp, err := r.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.Status)
}

func TestDo_Timeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	r, err := New(testUserAgent, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	req, err := http.NewRequest("GET", server.URL, nil)
	require.NoError(t, err)
	_, err = r.Do(context.Background(), req)
	require.Error(t, err)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "GET", rerr.Method)
	assert.Equal(t, server.URL, rerr.URL)
	assert.Equal(t, transient.Timeout, transient.Categorize(rerr.Cause))
}

func TestDo_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // nothing listening anymore

	r, err := New(testUserAgent)
	require.NoError(t, err)
	req, err := http.NewRequest("GET", server.URL, nil)
	require.NoError(t, err)
	_, err = r.Do(context.Background(), req)
	require.Error(t, err)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.True(t, transient.Retryable(rerr.Cause))
}

func TestDo_CallerCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	r, err := New(testUserAgent)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	req, err := http.NewRequest("GET", server.URL, nil)
	require.NoError(t, err)
	_, err = r.Do(ctx, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, transient.Retryable(err), "caller cancellation must not look retryable")
}

func TestClose(t *testing.T) {
	r, err := New(testUserAgent)
	require.NoError(t, err)
	assert.NotPanics(t, func() { r.Close() })

	r, err = New(testUserAgent, WithHTTPClient(&http.Client{Transport: &http.Transport{}}))
	require.NoError(t, err)
	assert.NotPanics(t, func() { r.Close() })
}

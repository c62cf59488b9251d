// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	urlpkg "net/url"
	"sort"
	"strings"
)

// rawJSONMarker is forced into the query parameters of every plan. It
// instructs the API to return literal JSON instead of HTML-escaped
// bodies.
const rawJSONMarker = "raw_json"

// apiTypeField is injected into every mapping-valued body.
const apiTypeField = "api_type"

// A Pair is one key/value element of an ordered form body.
type Pair struct {
	Key   string
	Value string
}

// A File is one file attachment to upload with a request. Attaching one
// or more files switches the body encoding to multipart/form-data, with
// any form pairs emitted as ordinary fields ahead of the files.
type File struct {
	// Field is the multipart form field name.
	Field string
	// Name is the client-side file name reported to the server.
	Name string
	// Content is the full, pre-buffered file content.
	Content []byte
}

// Options carries the caller-supplied pieces of a logical request.
// All maps are deep-copied during canonicalization; Options values may
// be reused freely after NewPlan returns.
type Options struct {
	// Params contains query parameters to send with the request.
	Params map[string]string
	// Data is a mapping-valued request body. It is mutually exclusive
	// with JSON.
	Data map[string]string
	// JSON is a value to serialize as the JSON request body. It is
	// mutually exclusive with Data.
	JSON interface{}
	// Files contains file attachments to upload.
	Files []File
}

// A Plan is the immutable, canonicalized form of one logical API
// request. It is created once per logical call and converted into a
// fresh http.Request for each attempt via ToRequest.
type Plan struct {
	method      string
	url         *urlpkg.URL
	params      urlpkg.Values
	form        []Pair
	body        []byte
	contentType string
}

// NewPlan canonicalizes a logical request into a Plan.
//
// The method must be one of GET, POST, PUT, DELETE, or PATCH (any
// case). Caller-supplied params are copied and the raw_json marker is
// forced into the copy. A Data mapping is copied, given an
// api_type=json field, and flattened into key-sorted pairs; the body
// bytes are buffered once so every attempt is byte-identical.
func NewPlan(method string, u *urlpkg.URL, opts Options) (*Plan, error) {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
	default:
		return nil, fmt.Errorf("request: unsupported method %q", method)
	}
	if u == nil {
		return nil, fmt.Errorf("request: nil url")
	}
	if opts.Data != nil && opts.JSON != nil {
		return nil, fmt.Errorf("request: data and json bodies are mutually exclusive")
	}

	p := &Plan{
		method: method,
		url:    u,
		params: copyParams(opts.Params),
	}
	p.params.Set(rawJSONMarker, "1")

	if opts.Data != nil {
		p.form = sortedForm(opts.Data)
	}

	var err error
	switch {
	case len(opts.Files) > 0:
		p.contentType, p.body, err = encodeMultipart(p.form, opts.Files)
	case p.form != nil:
		p.contentType, p.body = encodeForm(p.form)
	case opts.JSON != nil:
		p.body, err = json.Marshal(opts.JSON)
		p.contentType = "application/json"
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Method returns the canonical (upper-case) HTTP method.
func (p *Plan) Method() string {
	return p.method
}

// URL returns the absolute request URL, without query parameters.
func (p *Plan) URL() *urlpkg.URL {
	return p.url
}

// Params returns the canonicalized query parameters, including the
// forced raw_json marker. The returned values must not be modified.
func (p *Plan) Params() urlpkg.Values {
	return p.params
}

// Form returns the key-sorted body pairs, or nil if the plan has no
// mapping-valued body. The returned slice must not be modified.
func (p *Plan) Form() []Pair {
	return p.form
}

// Body returns the pre-buffered body bytes sent on every attempt. It is
// nil when the request has no body.
func (p *Plan) Body() []byte {
	return p.body
}

// ToRequest converts the plan into a fresh http.Request for one
// attempt. The supplied header is installed on the request; header
// values computed per attempt (such as Authorization) belong here rather
// than on the plan. Query parameters already present in the plan URL are
// preserved, with plan params overriding on key collisions.
func (p *Plan) ToRequest(ctx context.Context, header http.Header) (*http.Request, error) {
	u := *p.url
	q := u.Query()
	for key, values := range p.params {
		q[key] = append([]string(nil), values...)
	}
	u.RawQuery = q.Encode()

	var body io.Reader
	if len(p.body) > 0 {
		body = bytes.NewReader(p.body)
	}
	r, err := http.NewRequestWithContext(ctx, p.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		r.Header[key] = append([]string(nil), values...)
	}
	if p.contentType != "" {
		r.Header.Set("Content-Type", p.contentType)
	}
	if len(p.body) > 0 {
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(p.body)), nil
		}
		r.ContentLength = int64(len(p.body))
	}
	return r, nil
}

func copyParams(params map[string]string) urlpkg.Values {
	values := make(urlpkg.Values, len(params)+1)
	for key, value := range params {
		values.Set(key, value)
	}
	return values
}

func sortedForm(data map[string]string) []Pair {
	pairs := make([]Pair, 0, len(data)+1)
	for key, value := range data {
		if key == apiTypeField {
			continue
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	pairs = append(pairs, Pair{Key: apiTypeField, Value: "json"})
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs
}

func encodeForm(pairs []Pair) (contentType string, body []byte) {
	var b strings.Builder
	for i, pair := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(urlpkg.QueryEscape(pair.Key))
		b.WriteByte('=')
		b.WriteString(urlpkg.QueryEscape(pair.Value))
	}
	return "application/x-www-form-urlencoded", []byte(b.String())
}

func encodeMultipart(pairs []Pair, files []File) (contentType string, body []byte, err error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	for _, pair := range pairs {
		if err = w.WriteField(pair.Key, pair.Value); err != nil {
			return "", nil, err
		}
	}
	for _, f := range files {
		field := f.Field
		if field == "" {
			field = "file"
		}
		part, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			return "", nil, err
		}
		if _, err = part.Write(f.Content); err != nil {
			return "", nil, err
		}
	}
	if err = w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), b.Bytes(), nil
}

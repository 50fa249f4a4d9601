// Package transport executes single remote calls against JSON HTTP APIs.
// Two executors are provided: a direct JSON executor and a callback-bridged
// executor for cross-origin endpoints that wrap their response in a named
// callback invocation. Every call produces exactly one terminal outcome and
// releases any per-call resources on every exit path, including timeout.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// DefaultTimeout applies when a request does not specify its own timeout.
const DefaultTimeout = 30 * time.Second

// Request describes a single remote call.
type Request struct {
	URL     string
	Method  string // defaults to GET
	Headers map[string]string
	Params  map[string]string // query parameters
	Timeout time.Duration     // defaults to DefaultTimeout
}

// Response is a settled remote call: an HTTP status and the parsed JSON body.
type Response struct {
	Status int
	Body   json.RawMessage
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &RequestError{Kind: KindParse, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Transport executes a single remote call.
type Transport interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

// ErrorKind classifies a failed remote call.
type ErrorKind string

const (
	KindTimeout ErrorKind = "timeout"
	KindNetwork ErrorKind = "network"
	KindParse   ErrorKind = "parse"
	KindHTTP    ErrorKind = "http"
)

// RequestError is a failed remote call with its failure class.
type RequestError struct {
	Kind   ErrorKind
	Status int // set for KindHTTP
	Err    error
}

func (e *RequestError) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("transport %s error (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("transport %s error: %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsTransportFailure reports whether err is a transport-level failure
// (timeout, network, or parse) as opposed to an API-level error carried in a
// well-formed response. Callers use this to pick their fallback policy.
func IsTransportFailure(err error) bool {
	var re *RequestError
	if !errors.As(err, &re) {
		return false
	}
	switch re.Kind {
	case KindTimeout, KindNetwork, KindParse:
		return true
	}
	return false
}

// buildURL appends the request params to the request URL.
func buildURL(req Request, extra map[string]string) (string, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", req.URL, err)
	}
	q := u.Query()
	for k, v := range req.Params {
		q.Set(k, v)
	}
	for k, v := range extra {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func timeoutFor(req Request) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	return DefaultTimeout
}

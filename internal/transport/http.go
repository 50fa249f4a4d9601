package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPTransport executes direct JSON requests over HTTP.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a direct JSON transport. A nil client uses
// http.DefaultClient.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client}
}

// Execute performs the request and returns the parsed JSON response.
// Non-2xx statuses still return a Response so callers can inspect the error
// envelope, alongside a KindHTTP RequestError.
func (t *HTTPTransport) Execute(ctx context.Context, req Request) (*Response, error) {
	fullURL, err := buildURL(req, nil)
	if err != nil {
		return nil, &RequestError{Kind: KindParse, Err: err}
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutFor(req))
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, &RequestError{Kind: KindNetwork, Err: err}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, classifyDoError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyDoError(ctx, err)
	}

	// Some endpoints answer 2xx with an empty body (e.g. accepted operations).
	if len(body) == 0 {
		body = []byte("null")
	}

	out := &Response{Status: resp.StatusCode, Body: body}
	if !json.Valid(body) {
		return nil, &RequestError{Kind: KindParse, Err: fmt.Errorf("response is not valid JSON")}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, &RequestError{
			Kind:   KindHTTP,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("http error %d: %s", resp.StatusCode, strings.TrimSpace(resp.Status)),
		}
	}
	return out, nil
}

// classifyDoError maps an http.Client error to a timeout or network failure.
func classifyDoError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &RequestError{Kind: KindTimeout, Err: err}
	}
	return &RequestError{Kind: KindNetwork, Err: err}
}

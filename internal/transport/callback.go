package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxInFlight bounds concurrent callback-bridged calls. Each in-flight
// call holds a registered response handle; the bound keeps the registry small.
const DefaultMaxInFlight = 8

// CallbackTransport executes calls against endpoints that wrap their JSON
// response in a named callback invocation, `<handle>({...})`. Each call
// registers a uniquely-named response handle, passes it as the `callback`
// query parameter, and releases it on every exit path.
type CallbackTransport struct {
	client *http.Client
	sem    *semaphore.Weighted

	mu      sync.Mutex
	handles map[string]struct{}
}

// CallbackOption configures a CallbackTransport.
type CallbackOption func(*CallbackTransport)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) CallbackOption {
	return func(t *CallbackTransport) {
		t.client = client
	}
}

// WithMaxInFlight sets the bound on concurrent calls.
func WithMaxInFlight(n int) CallbackOption {
	return func(t *CallbackTransport) {
		if n > 0 {
			t.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// NewCallbackTransport creates a callback-bridged transport.
func NewCallbackTransport(opts ...CallbackOption) *CallbackTransport {
	t := &CallbackTransport{
		client:  http.DefaultClient,
		sem:     semaphore.NewWeighted(DefaultMaxInFlight),
		handles: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// InFlight returns the number of currently registered response handles.
func (t *CallbackTransport) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handles)
}

// acquireHandle registers a collision-resistant response handle. Multiple
// calls may be in flight concurrently, so the name carries a timestamp and a
// random suffix.
func (t *CallbackTransport) acquireHandle() string {
	name := fmt.Sprintf("cb_%d_%s", time.Now().UnixNano(), uuid.NewString()[:8])
	t.mu.Lock()
	t.handles[name] = struct{}{}
	t.mu.Unlock()
	return name
}

func (t *CallbackTransport) releaseHandle(name string) {
	t.mu.Lock()
	delete(t.handles, name)
	t.mu.Unlock()
}

// Execute performs the call. The response body must be the registered handle
// applied to a JSON value; anything else is a parse failure.
func (t *CallbackTransport) Execute(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeoutFor(req))
	defer cancel()

	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, classifyDoError(ctx, err)
	}
	defer t.sem.Release(1)

	handle := t.acquireHandle()
	defer t.releaseHandle(handle)

	fullURL, err := buildURL(req, map[string]string{"callback": handle})
	if err != nil {
		return nil, &RequestError{Kind: KindParse, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
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

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{
			Kind:   KindHTTP,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("http error %d: %s", resp.StatusCode, strings.TrimSpace(resp.Status)),
		}
	}

	payload, err := unwrapCallback(body, handle)
	if err != nil {
		return nil, &RequestError{Kind: KindParse, Err: err}
	}
	return &Response{Status: resp.StatusCode, Body: payload}, nil
}

var errBadCallbackEnvelope = errors.New("malformed callback envelope")

// unwrapCallback extracts the JSON payload from `<handle>(<json>)`, tolerating
// surrounding whitespace and a trailing semicolon.
func unwrapCallback(body []byte, handle string) (json.RawMessage, error) {
	s := bytes.TrimSpace(body)
	prefix := []byte(handle + "(")
	if !bytes.HasPrefix(s, prefix) {
		return nil, fmt.Errorf("%w: response not wrapped in %s()", errBadCallbackEnvelope, handle)
	}
	s = bytes.TrimPrefix(s, prefix)
	s = bytes.TrimSpace(bytes.TrimSuffix(bytes.TrimSpace(s), []byte(";")))
	if !bytes.HasSuffix(s, []byte(")")) {
		return nil, fmt.Errorf("%w: missing closing parenthesis", errBadCallbackEnvelope)
	}
	payload := bytes.TrimSpace(s[:len(s)-1])
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", errBadCallbackEnvelope)
	}
	return json.RawMessage(payload), nil
}

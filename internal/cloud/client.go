// Package cloud is a thin client for the disk-style cloud-storage REST API.
// It builds upload/remove/list/publish requests, attaches the bearer
// credential, and normalizes both error-envelope shapes the backend may
// return into APIError.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/commons-systems/photosync/internal/transport"
)

// DefaultBaseURL is the disk API root.
const DefaultBaseURL = "https://cloud-api.yandex.net/v1/disk"

// listLimit caps the number of entries returned by List.
const listLimit = 1000

// ErrMissingCredential is returned when a call is attempted without a bearer
// credential. No network call is made in that case.
var ErrMissingCredential = errors.New("cloud credential is not set")

// APIError is a normalized error returned by the cloud API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("cloud api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("cloud api error %d: %s", e.Status, e.Message)
}

// FileEntry describes one stored file.
type FileEntry struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Preview string `json:"preview"`
	Size    int64  `json:"size"`
	Created string `json:"created"`
}

// Client issues requests against the cloud-storage API. The zero credential
// is valid to construct; every call checks it before doing any I/O.
type Client struct {
	transport transport.Transport
	baseURL   string
	token     string
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (used by tests and self-hosted backends).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithToken sets the bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a cloud-storage client over the given transport.
func NewClient(t transport.Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		baseURL:   DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithCredential returns a copy of the client using the given credential.
// The credential itself is managed by the caller (prompting and storage are
// outside this package).
func (c *Client) WithCredential(token string) *Client {
	derived := *c
	derived.token = token
	return &derived
}

// Upload asks the backend to fetch sourceURL and store it at path.
func (c *Client) Upload(ctx context.Context, path, sourceURL string, overwrite bool) error {
	_, err := c.call(ctx, http.MethodPost, "/resources/upload", map[string]string{
		"path":      path,
		"url":       sourceURL,
		"overwrite": strconv.FormatBool(overwrite),
	})
	return err
}

// Remove deletes the file at path.
func (c *Client) Remove(ctx context.Context, path string, permanently bool) error {
	_, err := c.call(ctx, http.MethodDelete, "/resources", map[string]string{
		"path":        path,
		"permanently": strconv.FormatBool(permanently),
	})
	return err
}

// List returns stored image files, newest first per backend ordering.
func (c *Client) List(ctx context.Context) ([]FileEntry, error) {
	resp, err := c.call(ctx, http.MethodGet, "/resources/files", map[string]string{
		"limit":      strconv.Itoa(listLimit),
		"media_type": "image",
		"fields":     "items.name,items.path,items.preview,items.size,items.created",
	})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Items []FileEntry `json:"items"`
	}
	if err := resp.Decode(&envelope); err != nil {
		return nil, err
	}
	return envelope.Items, nil
}

// Publish makes the file at path publicly accessible and returns its public
// URL.
func (c *Client) Publish(ctx context.Context, path string) (string, error) {
	if _, err := c.call(ctx, http.MethodPut, "/resources/publish", map[string]string{
		"path": path,
	}); err != nil {
		return "", err
	}

	// The publish call answers with an operation link; the public URL lives
	// on the resource itself.
	resp, err := c.call(ctx, http.MethodGet, "/resources", map[string]string{
		"path":   path,
		"fields": "public_url",
	})
	if err != nil {
		return "", err
	}

	var resource struct {
		PublicURL string `json:"public_url"`
	}
	if err := resp.Decode(&resource); err != nil {
		return "", err
	}
	return resource.PublicURL, nil
}

// call runs one API request with the credential attached and maps failures to
// APIError.
func (c *Client) call(ctx context.Context, method, endpoint string, params map[string]string) (*transport.Response, error) {
	if c.token == "" {
		return nil, ErrMissingCredential
	}

	resp, err := c.transport.Execute(ctx, transport.Request{
		URL:     c.baseURL + endpoint,
		Method:  method,
		Params:  params,
		Timeout: c.timeout,
		Headers: map[string]string{
			"Authorization": "OAuth " + c.token,
		},
	})
	if err != nil {
		var re *transport.RequestError
		if errors.As(err, &re) && re.Kind == transport.KindHTTP && resp != nil {
			return nil, decodeAPIError(resp)
		}
		return nil, err
	}
	return resp, nil
}

// decodeAPIError normalizes the two error-envelope shapes the backend uses:
// {"message": "..."} and {"error": {"error_msg": "...", "error_code": n}}.
func decodeAPIError(resp *transport.Response) error {
	apiErr := &APIError{Status: resp.Status, Message: http.StatusText(resp.Status)}

	var flat struct {
		Message     string `json:"message"`
		Description string `json:"description"`
		ErrorCode   string `json:"error"`
	}
	if err := resp.Decode(&flat); err == nil {
		if flat.Message != "" {
			apiErr.Message = flat.Message
			apiErr.Code = flat.ErrorCode
			return apiErr
		}
		if flat.Description != "" {
			apiErr.Message = flat.Description
			apiErr.Code = flat.ErrorCode
			return apiErr
		}
	}

	var nested struct {
		Error struct {
			ErrorMsg  string `json:"error_msg"`
			ErrorCode int    `json:"error_code"`
		} `json:"error"`
	}
	if err := resp.Decode(&nested); err == nil && nested.Error.ErrorMsg != "" {
		apiErr.Message = nested.Error.ErrorMsg
		apiErr.Code = strconv.Itoa(nested.Error.ErrorCode)
	}
	return apiErr
}

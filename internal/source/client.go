// Package source fetches photo collections from the photo-hosting API.
// The client builds photos.get requests, normalizes the returned items, and
// recovers locally with a synthetic demo dataset when the account is
// unauthorized or the transport fails, so an unauthenticated or offline
// session still has data to browse.
package source

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/commons-systems/photosync/internal/photo"
	"github.com/commons-systems/photosync/internal/transport"
)

const (
	// DefaultBaseURL is the photo-hosting API root.
	DefaultBaseURL = "https://api.vk.com/method"

	// APIVersion is the API version tag sent with every request.
	APIVersion = "5.199"

	// MaxPageSize caps the requested item count per call.
	MaxPageSize = 1000

	defaultPageSize = 100
)

// ErrInvalidAccountRef is returned when an account reference is neither the
// current-account sentinel, a numeric id, nor a valid handle.
var ErrInvalidAccountRef = errors.New("invalid account reference")

var handleRe = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// APIError is an error envelope returned by the photo-hosting API.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("source api error %d: %s", e.Code, e.Message)
}

// authErrorCodes are the source-API error classes the client recovers from by
// serving the demo dataset: not authorized, access denied, invalid album.
var authErrorCodes = map[int]bool{
	5:  true,
	15: true,
	30: true,
}

// ParseAccountRef validates and canonicalizes an account reference.
// Accepted shapes: empty or "me" (current account, returned as ""), a numeric
// id, or a handle of [A-Za-z0-9_.]+ with an optional leading @.
func ParseAccountRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "me" {
		return "", nil
	}
	ref = strings.TrimPrefix(ref, "@")
	if ref == "" || !handleRe.MatchString(ref) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountRef, ref)
	}
	return ref, nil
}

// Client fetches and normalizes photos from the photo-hosting API.
type Client struct {
	transport transport.Transport
	baseURL   string
	version   string
	token     string
	pageSize  int
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithToken sets the access token. Authenticated requests get extended
// metadata and the full page size.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithPageSize sets the requested item count, capped at MaxPageSize.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = min(n, MaxPageSize)
		}
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

// NewClient creates a photo-source client over the given transport.
func NewClient(t transport.Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		baseURL:   DefaultBaseURL,
		version:   APIVersion,
		pageSize:  defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the JSON wrapper every API response arrives in.
type envelope struct {
	Error *struct {
		ErrorCode int    `json:"error_code"`
		ErrorMsg  string `json:"error_msg"`
	} `json:"error"`
	Response *struct {
		Count int             `json:"count"`
		Items []photo.RawItem `json:"items"`
	} `json:"response"`
}

// FetchPhotos returns the normalized profile photos of the referenced
// account. Authorization/access errors and transport failures fall back to
// the demo dataset; any other API error propagates. Items without size
// variants are dropped, never failing the batch.
func (c *Client) FetchPhotos(ctx context.Context, accountRef string) ([]photo.Photo, error) {
	owner, err := ParseAccountRef(accountRef)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Execute(ctx, transport.Request{
		URL:     c.baseURL + "/photos.get",
		Params:  c.requestParams(owner),
		Timeout: c.timeout,
	})
	if err != nil {
		// Any failed call, HTTP status errors included, means no API envelope
		// arrived; only a decoded error envelope can carry an APIError.
		log.Printf("WARNING: photo source unreachable, serving demo dataset: %v", err)
		return DemoPhotos(DemoCount), nil
	}

	var env envelope
	if err := resp.Decode(&env); err != nil {
		log.Printf("WARNING: malformed photo source response, serving demo dataset: %v", err)
		return DemoPhotos(DemoCount), nil
	}

	if env.Error != nil {
		if authErrorCodes[env.Error.ErrorCode] {
			log.Printf("WARNING: photo source denied access (code %d), serving demo dataset", env.Error.ErrorCode)
			return DemoPhotos(DemoCount), nil
		}
		return nil, &APIError{Code: env.Error.ErrorCode, Message: env.Error.ErrorMsg}
	}

	if env.Response == nil {
		log.Printf("WARNING: photo source response missing payload, serving demo dataset")
		return DemoPhotos(DemoCount), nil
	}

	return normalizeItems(env.Response.Items), nil
}

// requestParams builds the photos.get parameter map: profile album scope,
// size variants included, newest first.
func (c *Client) requestParams(owner string) map[string]string {
	params := map[string]string{
		"album_id":    "profile",
		"rev":         "1",
		"photo_sizes": "1",
		"extended":    "0",
		"count":       strconv.Itoa(c.pageSize),
		"v":           c.version,
	}
	if owner != "" {
		params["owner_id"] = owner
	}
	if c.token != "" {
		params["access_token"] = c.token
		params["extended"] = "1"
	}
	return params
}

// normalizeItems maps raw items to Photos, dropping invalid ones.
func normalizeItems(items []photo.RawItem) []photo.Photo {
	photos := make([]photo.Photo, 0, len(items))
	for _, item := range items {
		p, err := photo.Normalize(item)
		if err != nil {
			log.Printf("WARNING: dropping photo %d: %v", item.ID, err)
			continue
		}
		photos = append(photos, p)
	}
	return photos
}

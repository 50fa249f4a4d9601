package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/commons-systems/photosync/internal/transport"
)

// stubTransport answers every call with a fixed body or error and records the
// requests it saw.
type stubTransport struct {
	body     string
	err      error
	requests []transport.Request
}

func (s *stubTransport) Execute(_ context.Context, req transport.Request) (*transport.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &transport.Response{Status: 200, Body: json.RawMessage(s.body)}, nil
}

func TestParseAccountRef(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{"empty means current account", "", "", false},
		{"me means current account", "me", "", false},
		{"numeric id", "12345", "12345", false},
		{"handle", "durov", "durov", false},
		{"handle with at", "@durov", "durov", false},
		{"handle with dots", "id1.alias_2", "id1.alias_2", false},
		{"surrounding whitespace", "  12345 ", "12345", false},
		{"bare at", "@", "", true},
		{"spaces inside", "bad id!", "", true},
		{"slash", "a/b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAccountRef(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAccountRef(%q) error = %v; wantErr %v", tt.ref, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidAccountRef) {
				t.Errorf("error = %v; want ErrInvalidAccountRef", err)
			}
			if got != tt.want {
				t.Errorf("ParseAccountRef(%q) = %q; want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestFetchPhotosSuccess(t *testing.T) {
	stub := &stubTransport{body: `{"response":{"count":2,"items":[
		{"id":10,"owner_id":1,"date":1700000000,"sizes":[{"type":"x","url":"https://img.test/10x.jpg","width":800,"height":600}]},
		{"id":11,"owner_id":1,"date":1700000100,"sizes":[{"type":"m","url":"https://img.test/11m.jpg","width":130,"height":97}]}
	]}}`}
	c := NewClient(stub)

	photos, err := c.FetchPhotos(context.Background(), "12345")
	if err != nil {
		t.Fatalf("FetchPhotos: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("len(photos) = %d; want 2", len(photos))
	}
	if photos[0].ID != 10 || photos[0].BestURL != "https://img.test/10x.jpg" {
		t.Errorf("photos[0] = %+v", photos[0])
	}
}

func TestFetchPhotosRequestShape(t *testing.T) {
	stub := &stubTransport{body: `{"response":{"count":0,"items":[]}}`}
	c := NewClient(stub, WithToken("tok"), WithPageSize(50), WithTimeout(5*time.Second))

	if _, err := c.FetchPhotos(context.Background(), "@durov"); err != nil {
		t.Fatalf("FetchPhotos: %v", err)
	}
	if len(stub.requests) != 1 {
		t.Fatalf("transport calls = %d; want 1", len(stub.requests))
	}

	req := stub.requests[0]
	if req.URL != DefaultBaseURL+"/photos.get" {
		t.Errorf("url = %q", req.URL)
	}
	want := map[string]string{
		"album_id":     "profile",
		"rev":          "1",
		"photo_sizes":  "1",
		"extended":     "1",
		"count":        "50",
		"v":            APIVersion,
		"owner_id":     "durov",
		"access_token": "tok",
	}
	for k, v := range want {
		if req.Params[k] != v {
			t.Errorf("param %s = %q; want %q", k, req.Params[k], v)
		}
	}
	if req.Timeout != 5*time.Second {
		t.Errorf("timeout = %v; want 5s", req.Timeout)
	}
}

func TestFetchPhotosOmitsOwnerForCurrentAccount(t *testing.T) {
	stub := &stubTransport{body: `{"response":{"count":0,"items":[]}}`}
	c := NewClient(stub)

	if _, err := c.FetchPhotos(context.Background(), "me"); err != nil {
		t.Fatalf("FetchPhotos: %v", err)
	}
	if _, ok := stub.requests[0].Params["owner_id"]; ok {
		t.Error("owner_id set for current-account fetch")
	}
	if stub.requests[0].Params["extended"] != "0" {
		t.Errorf("extended = %q; want 0 without token", stub.requests[0].Params["extended"])
	}
}

func TestFetchPhotosInvalidRefBeforeTransport(t *testing.T) {
	stub := &stubTransport{body: `{"response":{"count":0,"items":[]}}`}
	c := NewClient(stub)

	_, err := c.FetchPhotos(context.Background(), "bad id!")
	if !errors.Is(err, ErrInvalidAccountRef) {
		t.Fatalf("error = %v; want ErrInvalidAccountRef", err)
	}
	if len(stub.requests) != 0 {
		t.Errorf("transport calls = %d; want 0", len(stub.requests))
	}
}

func TestFetchPhotosAuthErrorFallsBackToDemo(t *testing.T) {
	for _, code := range []int{5, 15, 30} {
		stub := &stubTransport{body: fmt.Sprintf(`{"error":{"error_code":%d,"error_msg":"denied"}}`, code)}
		c := NewClient(stub)

		photos, err := c.FetchPhotos(context.Background(), "12345")
		if err != nil {
			t.Fatalf("code %d: FetchPhotos: %v", code, err)
		}
		if len(photos) != DemoCount {
			t.Errorf("code %d: len(photos) = %d; want %d", code, len(photos), DemoCount)
		}
	}
}

func TestFetchPhotosOtherAPIErrorPropagates(t *testing.T) {
	stub := &stubTransport{body: `{"error":{"error_code":100,"error_msg":"wrong parameter"}}`}
	c := NewClient(stub)

	_, err := c.FetchPhotos(context.Background(), "12345")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v; want APIError", err)
	}
	if apiErr.Code != 100 || apiErr.Message != "wrong parameter" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestFetchPhotosTransportFailureFallsBackToDemo(t *testing.T) {
	stub := &stubTransport{err: &transport.RequestError{Kind: transport.KindNetwork, Err: errors.New("refused")}}
	c := NewClient(stub)

	photos, err := c.FetchPhotos(context.Background(), "12345")
	if err != nil {
		t.Fatalf("FetchPhotos: %v", err)
	}
	if len(photos) != DemoCount {
		t.Errorf("len(photos) = %d; want %d", len(photos), DemoCount)
	}
}

func TestFetchPhotosHTTPErrorFallsBackToDemo(t *testing.T) {
	stub := &stubTransport{err: &transport.RequestError{Kind: transport.KindHTTP, Status: 500, Err: errors.New("server error")}}
	c := NewClient(stub)

	photos, err := c.FetchPhotos(context.Background(), "12345")
	if err != nil {
		t.Fatalf("FetchPhotos: %v", err)
	}
	if len(photos) != DemoCount {
		t.Errorf("len(photos) = %d; want %d", len(photos), DemoCount)
	}
}

func TestFetchPhotosMalformedPayloadFallsBackToDemo(t *testing.T) {
	stub := &stubTransport{body: `{"response":"not an object"}`}
	c := NewClient(stub)

	photos, err := c.FetchPhotos(context.Background(), "12345")
	if err != nil {
		t.Fatalf("FetchPhotos: %v", err)
	}
	if len(photos) != DemoCount {
		t.Errorf("len(photos) = %d; want %d", len(photos), DemoCount)
	}
}

func TestFetchPhotosDropsItemsWithoutSizes(t *testing.T) {
	stub := &stubTransport{body: `{"response":{"count":2,"items":[
		{"id":10,"owner_id":1,"date":1700000000,"sizes":[{"type":"x","url":"https://img.test/10x.jpg","width":800,"height":600}]},
		{"id":11,"owner_id":1,"date":1700000100,"sizes":[]}
	]}}`}
	c := NewClient(stub)

	photos, err := c.FetchPhotos(context.Background(), "12345")
	if err != nil {
		t.Fatalf("FetchPhotos: %v", err)
	}
	if len(photos) != 1 {
		t.Fatalf("len(photos) = %d; want 1", len(photos))
	}
	if photos[0].ID != 10 {
		t.Errorf("kept photo id = %d; want 10", photos[0].ID)
	}
}

func TestDemoPhotos(t *testing.T) {
	photos := DemoPhotos(DemoCount)
	if len(photos) != DemoCount {
		t.Fatalf("len = %d; want %d", len(photos), DemoCount)
	}
	seen := make(map[int64]bool)
	for _, p := range photos {
		if seen[p.ID] {
			t.Errorf("duplicate demo id %d", p.ID)
		}
		seen[p.ID] = true
		if p.BestURL == "" || p.ThumbURL == "" || p.MediumURL == "" {
			t.Errorf("photo %d missing size urls: %+v", p.ID, p)
		}
	}
}

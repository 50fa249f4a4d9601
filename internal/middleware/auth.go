// Package middleware provides the HTTP middleware chain: panic recovery and
// cloud-credential extraction.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const credentialKey contextKey = "cloudCredential"

// Credential extracts the cloud-storage bearer credential from the
// Authorization header ("OAuth <token>" or "Bearer <token>") and stores it in
// the request context. Requests without a credential pass through; handlers
// that need one fail with MissingCredential at the cloud client boundary.
func Credential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := tokenFromHeader(r.Header.Get("Authorization")); token != "" {
			r = r.WithContext(context.WithValue(r.Context(), credentialKey, token))
		}
		next.ServeHTTP(w, r)
	})
}

// GetCredential returns the cloud credential carried by the request context.
func GetCredential(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(credentialKey).(string)
	return token, ok
}

func tokenFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	switch parts[0] {
	case "OAuth", "Bearer":
		return strings.TrimSpace(parts[1])
	}
	return ""
}

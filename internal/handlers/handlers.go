// Package handlers exposes the photo collection and upload pipeline over a
// JSON HTTP API. Only plain data crosses this boundary: Photo, collection
// snapshots, upload tasks and batch results.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/commons-systems/photosync/internal/cloud"
	"github.com/commons-systems/photosync/internal/source"
	"github.com/commons-systems/photosync/internal/transport"
	"github.com/commons-systems/photosync/internal/uploader"
)

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode response: %v", err)
	}
}

// writeError maps core errors to HTTP statuses. Every terminal error carries
// a human-readable message.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var srcErr *source.APIError
	var cloudErr *cloud.APIError
	switch {
	case errors.Is(err, source.ErrInvalidAccountRef),
		errors.Is(err, uploader.ErrInvalidDestinationName):
		status = http.StatusBadRequest
	case errors.Is(err, cloud.ErrMissingCredential):
		status = http.StatusUnauthorized
	case errors.As(err, &cloudErr):
		status = cloudErr.Status
	case errors.As(err, &srcErr):
		status = http.StatusBadGateway
	case transport.IsTransportFailure(err):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

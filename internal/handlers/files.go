package handlers

import (
	"net/http"
	"strconv"

	"github.com/commons-systems/photosync/internal/cloud"
	"github.com/commons-systems/photosync/internal/middleware"
)

// FileHandlers serves the stored-file operations of the cloud API.
type FileHandlers struct {
	cloud *cloud.Client
}

// NewFileHandlers creates file handlers over the given cloud client template.
func NewFileHandlers(cloudClient *cloud.Client) *FileHandlers {
	return &FileHandlers{cloud: cloudClient}
}

// List handles GET /api/files.
func (h *FileHandlers) List(w http.ResponseWriter, r *http.Request) {
	client, err := h.clientFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	files, err := client.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": files})
}

// Remove handles DELETE /api/files?path=...&permanently=...
func (h *FileHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}
	permanently, _ := strconv.ParseBool(r.URL.Query().Get("permanently"))

	client, err := h.clientFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := client.Remove(r.Context(), path, permanently); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// PublishRequest is the body of POST /api/files/publish.
type PublishRequest struct {
	Path string `json:"path"`
}

// Publish handles POST /api/files/publish.
func (h *FileHandlers) Publish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}

	client, err := h.clientFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	publicURL, err := client.Publish(r.Context(), req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"publicUrl": publicURL})
}

func (h *FileHandlers) clientFor(r *http.Request) (*cloud.Client, error) {
	token, ok := middleware.GetCredential(r.Context())
	if !ok {
		return nil, cloud.ErrMissingCredential
	}
	return h.cloud.WithCredential(token), nil
}

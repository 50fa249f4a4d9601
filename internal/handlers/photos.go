package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/commons-systems/photosync/internal/collection"
	"github.com/commons-systems/photosync/internal/photo"
)

// PhotoFetcher is the slice of the source client the photo handlers need.
type PhotoFetcher interface {
	FetchPhotos(ctx context.Context, accountRef string) ([]photo.Photo, error)
}

// PhotoHandlers serves collection fetch, read and selection requests.
type PhotoHandlers struct {
	fetcher PhotoFetcher
	store   *collection.Store
}

// NewPhotoHandlers creates photo handlers over the given source and store.
func NewPhotoHandlers(fetcher PhotoFetcher, store *collection.Store) *PhotoHandlers {
	return &PhotoHandlers{fetcher: fetcher, store: store}
}

// FetchRequest is the body of POST /api/photos/fetch.
type FetchRequest struct {
	Owner string `json:"owner"`
	Mode  string `json:"mode"` // "replace" (default) or "merge"
}

// CollectionSnapshot is the wire form of the collection state. Added counts
// photos a merge fetch appended; it is absent for replace fetches and reads.
type CollectionSnapshot struct {
	Photos      []photo.Photo `json:"photos"`
	SelectedIDs []int64       `json:"selectedIds"`
	Added       int           `json:"added,omitempty"`
}

// Fetch handles POST /api/photos/fetch: pulls photos from the source and
// replaces or merges the collection.
func (h *PhotoHandlers) Fetch(w http.ResponseWriter, r *http.Request) {
	var req FetchRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Mode != "" && req.Mode != "replace" && req.Mode != "merge" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mode must be replace or merge"})
		return
	}

	photos, err := h.fetcher.FetchPhotos(r.Context(), req.Owner)
	if err != nil {
		log.Printf("ERROR: fetch photos for %q: %v", req.Owner, err)
		writeError(w, err)
		return
	}

	snapshot := CollectionSnapshot{}
	if req.Mode == "merge" {
		snapshot.Added = h.store.Merge(photos)
	} else {
		h.store.Replace(photos)
	}
	snapshot.Photos = h.store.Photos()
	snapshot.SelectedIDs = h.store.SelectedIDs()
	writeJSON(w, http.StatusOK, snapshot)
}

// Get handles GET /api/photos: the current collection snapshot.
func (h *PhotoHandlers) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CollectionSnapshot{
		Photos:      h.store.Photos(),
		SelectedIDs: h.store.SelectedIDs(),
	})
}

// SelectRequest is the body of POST /api/photos/select.
type SelectRequest struct {
	ID       int64 `json:"id"`
	Selected *bool `json:"selected,omitempty"`
}

// Select handles POST /api/photos/select: toggles or forces one photo's
// selection state.
func (h *PhotoHandlers) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if !h.store.ToggleSelect(req.ID, req.Selected) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "photo not in collection"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selectedIds": h.store.SelectedIDs()})
}

// SelectAll handles POST /api/photos/select-all.
func (h *PhotoHandlers) SelectAll(w http.ResponseWriter, r *http.Request) {
	h.store.SelectAll()
	writeJSON(w, http.StatusOK, map[string]any{"selectedIds": h.store.SelectedIDs()})
}

// ClearSelection handles POST /api/photos/clear-selection.
func (h *PhotoHandlers) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.store.ClearSelection()
	writeJSON(w, http.StatusOK, map[string]any{"selectedIds": h.store.SelectedIDs()})
}

package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/commons-systems/photosync/internal/cloud"
	"github.com/commons-systems/photosync/internal/collection"
	"github.com/commons-systems/photosync/internal/middleware"
	"github.com/commons-systems/photosync/internal/streaming"
	"github.com/commons-systems/photosync/internal/uploader"
)

// UploadHandlers runs upload batches against the cloud API and streams their
// progress to the hub.
type UploadHandlers struct {
	store     *collection.Store
	cloud     *cloud.Client
	hub       *streaming.Hub
	folder    string
	overwrite bool
}

// NewUploadHandlers creates upload handlers. The cloud client is a template;
// each request derives one carrying that request's credential.
func NewUploadHandlers(store *collection.Store, cloudClient *cloud.Client, hub *streaming.Hub, folder string, overwrite bool) (*UploadHandlers, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cloudClient == nil {
		return nil, fmt.Errorf("cloudClient is required")
	}
	if hub == nil {
		return nil, fmt.Errorf("hub is required")
	}
	return &UploadHandlers{
		store:     store,
		cloud:     cloudClient,
		hub:       hub,
		folder:    folder,
		overwrite: overwrite,
	}, nil
}

// BatchItem names one photo to upload.
type BatchItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BatchRequest is the body of POST /api/upload/batch.
type BatchRequest struct {
	Items []BatchItem `json:"items"`
}

// Batch handles POST /api/upload/batch: uploads the named photos
// sequentially and responds with the aggregate result once every task has
// settled. Progress is streamed to /api/upload/events while the batch runs.
func (h *UploadHandlers) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no items to upload"})
		return
	}

	tasks := make([]*uploader.Task, 0, len(req.Items))
	for _, item := range req.Items {
		p, ok := h.store.Get(item.ID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": fmt.Sprintf("photo %d not in collection", item.ID),
			})
			return
		}
		tasks = append(tasks, uploader.NewTask(p, item.Name))
	}

	orch, err := h.orchestratorFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resultCh, progressCh := orch.RunBatchAsync(r.Context(), tasks)
	go h.forwardProgress(progressCh)

	result := <-resultCh
	h.hub.Broadcast(streaming.Event{
		Type:      streaming.EventTypeBatch,
		Completed: result.Total,
		Total:     result.Total,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	})
	log.Printf("INFO: upload batch finished: %d/%d succeeded", result.Succeeded, result.Total)
	writeJSON(w, http.StatusOK, result)
}

// SingleRequest is the body of POST /api/upload/single.
type SingleRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Single handles POST /api/upload/single: a one-off upload, typically a
// user-triggered retry of a failed item.
func (h *UploadHandlers) Single(w http.ResponseWriter, r *http.Request) {
	var req SingleRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	p, ok := h.store.Get(req.ID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("photo %d not in collection", req.ID),
		})
		return
	}

	orch, err := h.orchestratorFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	task, err := orch.RunSingle(r.Context(), uploader.NewTask(p, req.Name))
	if err != nil {
		writeError(w, err)
		return
	}

	h.hub.Broadcast(streaming.Event{
		Type:      streaming.EventTypeTask,
		TaskID:    task.ID,
		File:      task.DestinationName,
		Status:    string(task.Status),
		Completed: 1,
		Total:     1,
		Message:   task.ErrorMessage,
	})
	writeJSON(w, http.StatusOK, task)
}

// orchestratorFor builds an orchestrator bound to the request's credential.
func (h *UploadHandlers) orchestratorFor(r *http.Request) (*uploader.Orchestrator, error) {
	token, ok := middleware.GetCredential(r.Context())
	if !ok {
		return nil, cloud.ErrMissingCredential
	}
	return uploader.NewOrchestrator(
		h.cloud.WithCredential(token),
		uploader.WithFolder(h.folder),
		uploader.WithOverwrite(h.overwrite),
	)
}

func (h *UploadHandlers) forwardProgress(progressCh <-chan uploader.Progress) {
	for p := range progressCh {
		h.hub.Broadcast(streaming.Event{
			Type:      streaming.EventTypeTask,
			TaskID:    p.TaskID,
			File:      p.File,
			Status:    string(p.Status),
			Completed: p.Completed,
			Total:     p.Total,
			Message:   p.Message,
		})
	}
}

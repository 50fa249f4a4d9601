// Package server wires the API components together and owns the HTTP routes.
package server

import (
	"fmt"
	"net/http"

	"github.com/commons-systems/photosync/internal/cloud"
	"github.com/commons-systems/photosync/internal/collection"
	"github.com/commons-systems/photosync/internal/config"
	"github.com/commons-systems/photosync/internal/handlers"
	"github.com/commons-systems/photosync/internal/middleware"
	"github.com/commons-systems/photosync/internal/source"
	"github.com/commons-systems/photosync/internal/streaming"
	"github.com/commons-systems/photosync/internal/transport"
)

// Server holds the wired application.
type Server struct {
	mux *http.ServeMux
	hub *streaming.Hub
}

// New creates a server from configuration.
func New(cfg config.Config) (*Server, error) {
	// Photo-source calls go through the callback-bridged transport; cloud
	// calls are direct JSON.
	callbackTransport := transport.NewCallbackTransport(
		transport.WithMaxInFlight(cfg.MaxInFlight),
	)
	httpTransport := transport.NewHTTPTransport(nil)

	sourceOpts := []source.Option{
		source.WithToken(cfg.SourceToken),
		source.WithPageSize(cfg.PageSize),
		source.WithTimeout(cfg.RequestTimeout),
	}
	if cfg.SourceBaseURL != "" {
		sourceOpts = append(sourceOpts, source.WithBaseURL(cfg.SourceBaseURL))
	}
	sourceClient := source.NewClient(callbackTransport, sourceOpts...)

	cloudOpts := []cloud.Option{cloud.WithTimeout(cfg.RequestTimeout)}
	if cfg.CloudBaseURL != "" {
		cloudOpts = append(cloudOpts, cloud.WithBaseURL(cfg.CloudBaseURL))
	}
	cloudClient := cloud.NewClient(httpTransport, cloudOpts...)

	store := collection.NewStore()
	hub := streaming.NewHub()

	photoHandlers := handlers.NewPhotoHandlers(sourceClient, store)
	uploadHandlers, err := handlers.NewUploadHandlers(store, cloudClient, hub, cfg.UploadFolder, cfg.UploadOverwrite)
	if err != nil {
		return nil, fmt.Errorf("create upload handlers: %w", err)
	}
	fileHandlers := handlers.NewFileHandlers(cloudClient)
	eventHandlers := handlers.NewEventHandlers(hub)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.HealthCheck)

	mux.HandleFunc("POST /api/photos/fetch", photoHandlers.Fetch)
	mux.HandleFunc("GET /api/photos", photoHandlers.Get)
	mux.HandleFunc("POST /api/photos/select", photoHandlers.Select)
	mux.HandleFunc("POST /api/photos/select-all", photoHandlers.SelectAll)
	mux.HandleFunc("POST /api/photos/clear-selection", photoHandlers.ClearSelection)

	mux.HandleFunc("POST /api/upload/batch", uploadHandlers.Batch)
	mux.HandleFunc("POST /api/upload/single", uploadHandlers.Single)
	mux.HandleFunc("GET /api/upload/events", eventHandlers.Stream)

	mux.HandleFunc("GET /api/files", fileHandlers.List)
	mux.HandleFunc("DELETE /api/files", fileHandlers.Remove)
	mux.HandleFunc("POST /api/files/publish", fileHandlers.Publish)

	return &Server{mux: mux, hub: hub}, nil
}

// Handler returns the HTTP handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	return middleware.Recovery(middleware.Credential(s.mux))
}

// Close releases streaming resources.
func (s *Server) Close() {
	s.hub.Stop()
}

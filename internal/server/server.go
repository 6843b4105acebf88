// Package server exposes the hub's control plane: a JSON REST API
// for endpoint, profile, preset, and settings management plus a
// WebSocket channel for low-latency PTZ control.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"ptzhub/internal/ptz"
	"ptzhub/internal/store"
)

// Config for the server
type Config struct {
	ListenAddr string
}

// Server is the main hub server
type Server struct {
	cfg        Config
	log        *slog.Logger
	dispatcher *ptz.Dispatcher
	endpoints  *store.EndpointStore
	profiles   *store.ProfileStore
	settings   *store.SettingsStore

	clients   map[*Client]bool
	clientsMu sync.RWMutex
	upgrader  websocket.Upgrader

	// active session, guarded by sessionMu
	sessionMu  sync.Mutex
	endpointID string
	protocol   ptz.Protocol
}

// New creates a new server instance
func New(cfg Config, log *slog.Logger, endpoints *store.EndpointStore, profiles *store.ProfileStore, settings *store.SettingsStore) *Server {
	return &Server{
		cfg:        cfg,
		log:        log,
		dispatcher: ptz.NewDispatcher(),
		endpoints:  endpoints,
		profiles:   profiles,
		settings:   settings,
		clients:    make(map[*Client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // control plane is LAN-local
			},
		},
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/endpoints", s.handleListEndpoints)
		r.Post("/endpoints", s.handleCreateEndpoint)
		r.Post("/endpoints/test", s.handleTestEndpoint)
		r.Put("/endpoints/{id}", s.handleUpdateEndpoint)
		r.Delete("/endpoints/{id}", s.handleDeleteEndpoint)
		r.Post("/endpoints/{id}/connect", s.handleConnect)
		r.Post("/disconnect", s.handleDisconnect)
		r.Get("/status", s.handleStatus)

		r.Post("/ptz/move", s.handleMoveAbsolute)
		r.Post("/ptz/relative", s.handleMoveRelative)
		r.Post("/ptz/zoom", s.handleZoom)
		r.Post("/ptz/home", s.handleHome)
		r.Post("/ptz/stop", s.handleStop)
		r.Post("/ptz/focus", s.handleFocus)
		r.Post("/ptz/focus/auto", s.handleAutofocus)
		r.Post("/ptz/focus/trigger", s.handleAutofocusTrigger)
		r.Post("/ptz/focus/stop", s.handleFocusStop)
		r.Post("/ptz/preset/recall", s.handlePresetRecall)
		r.Post("/ptz/preset/store", s.handlePresetStore)
		r.Get("/ptz/position", s.handlePosition)

		r.Get("/profiles", s.handleListProfiles)
		r.Post("/profiles", s.handleCreateProfile)
		r.Put("/profiles/{id}", s.handleSaveProfile)
		r.Delete("/profiles/{id}", s.handleDeleteProfile)
		r.Post("/profiles/{id}/activate", s.handleActivateProfile)

		r.Get("/presets", s.handleListPresets)
		r.Post("/presets", s.handleCreatePreset)
		r.Put("/presets/{id}", s.handleUpdatePreset)
		r.Delete("/presets/{id}", s.handleDeletePreset)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)
	})

	r.Get("/ws", s.handleWebSocket)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	s.closeClients()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	err := <-errCh
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for client := range s.clients {
		client.Close()
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// connectEndpoint installs the controller for a stored endpoint.
func (s *Server) connectEndpoint(ep store.CameraEndpoint) error {
	ctrl, err := buildController(ep.Config)
	if err != nil {
		return err
	}
	s.sessionMu.Lock()
	s.dispatcher.SetController(ctrl)
	s.endpointID = ep.ID
	s.protocol = ep.Config.Type
	s.sessionMu.Unlock()

	s.log.Info("endpoint connected", "id", ep.ID, "protocol", ep.Config.Type)
	s.broadcastStatus()
	return nil
}

func (s *Server) disconnect() {
	s.sessionMu.Lock()
	s.dispatcher.ClearController()
	s.endpointID = ""
	s.protocol = ""
	s.sessionMu.Unlock()

	s.log.Info("endpoint disconnected")
	s.broadcastStatus()
}

func (s *Server) session() (id string, proto ptz.Protocol, connected bool) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	return s.endpointID, s.protocol, s.dispatcher.HasController()
}

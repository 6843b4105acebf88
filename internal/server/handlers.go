package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ptzhub/internal/ptz"
	"ptzhub/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// statusFor maps dispatcher errors onto HTTP statuses. No camera
// selected is a conflict; a camera that stopped answering is a
// gateway timeout; everything else the camera refused is a bad
// gateway.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ptz.ErrNotConnected):
		return http.StatusConflict
	case errors.Is(err, ptz.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) writePTZError(w http.ResponseWriter, err error) {
	s.log.Warn("ptz command failed", "error", err)
	writeError(w, statusFor(err), err)
}

// --- Endpoints ---

func (s *Server) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.endpoints.All())
}

func (s *Server) handleCreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var ep store.CameraEndpoint
	if err := decode(r, &ep); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := ep.Config.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if ep.ID == "" {
		ep.ID = uuid.NewString()
	}
	created, err := s.endpoints.Create(ep)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	var ep store.CameraEndpoint
	if err := decode(r, &ep); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := ep.Config.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ep.ID = chi.URLParam(r, "id")
	updated, err := s.endpoints.Update(ep)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.endpoints.Delete(id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	if activeID, _, _ := s.session(); activeID == id {
		s.disconnect()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTestEndpoint(w http.ResponseWriter, r *http.Request) {
	var cfg ptz.ProtocolConfig
	if err := decode(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctrl, err := buildController(cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := ctrl.TestConnection(r.Context()); err != nil {
		s.writePTZError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	ep, err := s.endpoints.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err := s.connectEndpoint(ep); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"connected": true})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.disconnect()
	w.WriteHeader(http.StatusNoContent)
}

type statusResponse struct {
	Connected  bool         `json:"connected"`
	EndpointID string       `json:"endpoint_id,omitempty"`
	Protocol   ptz.Protocol `json:"protocol,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, proto, connected := s.session()
	writeJSON(w, http.StatusOK, statusResponse{
		Connected:  connected,
		EndpointID: id,
		Protocol:   proto,
	})
}

// --- PTZ ---

type moveRequest struct {
	Pan  float64 `json:"pan"`
	Tilt float64 `json:"tilt"`
	Zoom float64 `json:"zoom"`
}

type relativeRequest struct {
	PanDelta  float64 `json:"pan_delta"`
	TiltDelta float64 `json:"tilt_delta"`
}

type zoomRequest struct {
	Zoom float64 `json:"zoom"`
}

type presetRequest struct {
	Index int `json:"index"`
}

func (s *Server) handleMoveAbsolute(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.dispatcher.MoveAbsolute(r.Context(), req.Pan, req.Tilt, req.Zoom); err != nil {
		s.writePTZError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveRelative(w http.ResponseWriter, r *http.Request) {
	var req relativeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.dispatcher.MoveRelative(r.Context(), req.PanDelta, req.TiltDelta); err != nil {
		s.writePTZError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.dispatcher.ZoomTo(r.Context(), req.Zoom); err != nil {
		s.writePTZError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatcher.Home(r.Context()); err != nil {
		s.writePTZError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatcher.Stop(r.Context()); err != nil {
		s.writePTZError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type focusRequest struct {
	Speed float64 `json:"speed"`
}

type autofocusRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.dispatcher.FocusContinuous(r.Context(), req.Speed); err != nil {
		s.writePTZError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAutofocus(w http.ResponseWriter, r *http.Request) {
	var req autofocusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.dispatcher.SetAutofocus(r.Context(), req.Enabled); err != nil {
		s.writePTZError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAutofocusTrigger(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatcher.AutofocusTrigger(r.Context()); err != nil {
		s.writePTZError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFocusStop(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatcher.FocusStop(r.Context()); err != nil {
		s.writePTZError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePresetRecall(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.dispatcher.RecallPreset(r.Context(), req.Index); err != nil {
		s.writePTZError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePresetStore(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.dispatcher.StorePreset(r.Context(), req.Index); err != nil {
		s.writePTZError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	pos, err := s.dispatcher.Position(r.Context())
	if err != nil {
		s.writePTZError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

// --- Profiles ---

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profiles.All())
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var p store.Profile
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	created, err := s.profiles.Create(p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var p store.Profile
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p.ID = chi.URLParam(r, "id")
	saved, err := s.profiles.Save(p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.profiles.Delete(chi.URLParam(r, "id")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivateProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.profiles.SetActive(chi.URLParam(r, "id")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Presets (on the active profile) ---

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets := s.profiles.Presets()
	if presets == nil {
		presets = []store.Preset{}
	}
	writeJSON(w, http.StatusOK, presets)
}

func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var p store.Preset
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	created, err := s.profiles.CreatePreset(p)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNoActiveProfile) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePreset(w http.ResponseWriter, r *http.Request) {
	var p store.Preset
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p.ID = chi.URLParam(r, "id")
	updated, err := s.profiles.UpdatePreset(p)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, store.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, store.ErrNoActiveProfile):
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := s.profiles.DeletePreset(chi.URLParam(r, "id")); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, store.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, store.ErrNoActiveProfile):
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Settings ---

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Get())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings store.Settings
	if err := decode(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := s.settings.Update(settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

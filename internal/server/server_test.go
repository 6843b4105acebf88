package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptzhub/internal/ptz"
	"ptzhub/internal/store"
)

type testServer struct {
	srv  *Server
	http *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(Config{}, log,
		store.LoadEndpoints(dir),
		store.LoadProfiles(dir),
		store.LoadSettings(dir),
	)
	hs := httptest.NewServer(s.Router())
	t.Cleanup(hs.Close)
	return &testServer{srv: s, http: hs}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.http.URL+path, buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func simulatorEndpoint(name string) store.CameraEndpoint {
	return store.CameraEndpoint{
		Name:   name,
		Config: ptz.ProtocolConfig{Type: ptz.ProtocolSimulator},
	}
}

func TestEndpointCRUD(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/endpoints", simulatorEndpoint("Stage"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[store.CameraEndpoint](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Stage", created.Name)

	resp = ts.do(t, http.MethodGet, "/api/endpoints", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[[]store.CameraEndpoint](t, resp)
	require.Len(t, list, 1)

	renamed := created
	renamed.Name = "Stage Wide"
	resp = ts.do(t, http.MethodPut, "/api/endpoints/"+created.ID, renamed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[store.CameraEndpoint](t, resp)
	assert.Equal(t, "Stage Wide", updated.Name)

	resp = ts.do(t, http.MethodDelete, "/api/endpoints/"+created.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, "/api/endpoints/"+created.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateEndpointRejectsBadConfig(t *testing.T) {
	ts := newTestServer(t)

	bad := store.CameraEndpoint{
		Name:   "Broken",
		Config: ptz.ProtocolConfig{Type: ptz.ProtocolVisca, Host: "10.0.0.1/8"},
	}
	resp := ts.do(t, http.MethodPost, "/api/endpoints", bad)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConnectAndPTZFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/endpoints", simulatorEndpoint("Sim"))
	created := decodeBody[store.CameraEndpoint](t, resp)

	resp = ts.do(t, http.MethodPost, "/api/endpoints/"+created.ID+"/connect", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/status", nil)
	status := decodeBody[statusResponse](t, resp)
	assert.True(t, status.Connected)
	assert.Equal(t, created.ID, status.EndpointID)
	assert.Equal(t, ptz.ProtocolSimulator, status.Protocol)

	resp = ts.do(t, http.MethodPost, "/api/ptz/move", map[string]float64{
		"pan": 0.5, "tilt": -0.3, "zoom": 0.8,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/ptz/position", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pos := decodeBody[ptz.Position](t, resp)
	assert.Equal(t, ptz.Position{Pan: 0.5, Tilt: -0.3, Zoom: 0.8}, pos)

	resp = ts.do(t, http.MethodPost, "/api/ptz/preset/store", map[string]int{"index": 3})
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/ptz/home", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/ptz/preset/recall", map[string]int{"index": 3})
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/ptz/position", nil)
	pos = decodeBody[ptz.Position](t, resp)
	assert.Equal(t, 0.5, pos.Pan)

	// Recalling an empty slot surfaces the camera's refusal.
	resp = ts.do(t, http.MethodPost, "/api/ptz/preset/recall", map[string]int{"index": 42})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/disconnect", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/status", nil)
	status = decodeBody[statusResponse](t, resp)
	assert.False(t, status.Connected)
}

func TestPTZWithoutCameraConflicts(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/ptz/move", map[string]float64{"pan": 0})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/ptz/position", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFocusRoutes(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/ptz/focus", map[string]float64{"speed": 0.5})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	created := decodeBody[store.CameraEndpoint](t, ts.do(t, http.MethodPost, "/api/endpoints", simulatorEndpoint("Sim")))
	resp = ts.do(t, http.MethodPost, "/api/endpoints/"+created.ID+"/connect", nil)
	resp.Body.Close()

	// The simulator has no focus hardware; the command is accepted
	// and ignored.
	resp = ts.do(t, http.MethodPost, "/api/ptz/focus", map[string]float64{"speed": 0.5})
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/ptz/focus/auto", map[string]bool{"enabled": true})
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/ptz/focus/trigger", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/ptz/focus/stop", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.http.URL+"/api/ptz/move", bytes.NewBufferString("{nope"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTestEndpointWithoutInstalling(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/endpoints/test", ptz.ProtocolConfig{Type: ptz.ProtocolSimulator})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]bool](t, resp)
	assert.True(t, body["ok"])

	// A successful test must not install a controller.
	resp = ts.do(t, http.MethodGet, "/api/status", nil)
	status := decodeBody[statusResponse](t, resp)
	assert.False(t, status.Connected)
}

func TestDeleteActiveEndpointDisconnects(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/endpoints", simulatorEndpoint("Sim"))
	created := decodeBody[store.CameraEndpoint](t, resp)
	resp = ts.do(t, http.MethodPost, "/api/endpoints/"+created.ID+"/connect", nil)
	resp.Body.Close()

	resp = ts.do(t, http.MethodDelete, "/api/endpoints/"+created.ID, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/status", nil)
	status := decodeBody[statusResponse](t, resp)
	assert.False(t, status.Connected)
}

func TestProfileAndPresetRoutes(t *testing.T) {
	ts := newTestServer(t)

	// No active profile means no preset writes.
	resp := ts.do(t, http.MethodPost, "/api/presets", store.Preset{Name: "Wide"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/profiles", store.Profile{Name: "Main"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	profile := decodeBody[store.Profile](t, resp)
	assert.NotEmpty(t, profile.ID)

	resp = ts.do(t, http.MethodPost, "/api/presets", store.Preset{Name: "Wide", Pan: 0.1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	preset := decodeBody[store.Preset](t, resp)
	assert.NotEmpty(t, preset.ID)

	resp = ts.do(t, http.MethodGet, "/api/presets", nil)
	presets := decodeBody[[]store.Preset](t, resp)
	require.Len(t, presets, 1)

	preset.Name = "Wider"
	resp = ts.do(t, http.MethodPut, "/api/presets/"+preset.ID, preset)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[store.Preset](t, resp)
	assert.Equal(t, "Wider", updated.Name)

	resp = ts.do(t, http.MethodDelete, "/api/presets/"+preset.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/profiles/"+profile.ID+"/activate", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, "/api/profiles/"+profile.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSettingsRoutes(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/settings", nil)
	settings := decodeBody[store.Settings](t, resp)
	assert.Equal(t, 0.3, settings.OverlayOpacity)

	settings.OverlayOpacity = 2.0
	settings.ClickSensitivity = 0.2
	resp = ts.do(t, http.MethodPut, "/api/settings", settings)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[store.Settings](t, resp)
	assert.Equal(t, 0.9, updated.OverlayOpacity)
	assert.Equal(t, 0.2, updated.ClickSensitivity)
}

package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptzhub/internal/ptz"
	"ptzhub/internal/simulator"
)

func TestBuildControllerPerProtocol(t *testing.T) {
	ctrl, err := buildController(ptz.ProtocolConfig{Type: ptz.ProtocolSimulator})
	require.NoError(t, err)
	assert.IsType(t, &simulator.Controller{}, ctrl)

	ctrl, err = buildController(ptz.ProtocolConfig{Type: ptz.ProtocolNDI})
	require.NoError(t, err)
	assert.ErrorIs(t, ctrl.TestConnection(context.Background()), ptz.ErrConnectionFailed)

	// Network protocols validate the host but do not dial.
	_, err = buildController(ptz.ProtocolConfig{Type: ptz.ProtocolVisca, Host: "192.168.1.10"})
	assert.NoError(t, err)
	_, err = buildController(ptz.ProtocolConfig{Type: ptz.ProtocolPanasonicAW, Host: "cam.local", Username: "admin", Password: "pw"})
	assert.NoError(t, err)
	_, err = buildController(ptz.ProtocolConfig{Type: ptz.ProtocolBirdDogRest, Host: "10.0.0.5"})
	assert.NoError(t, err)
}

func TestBuildControllerRejectsBadConfigs(t *testing.T) {
	_, err := buildController(ptz.ProtocolConfig{Type: ptz.ProtocolVisca, Host: "bad host"})
	assert.ErrorIs(t, err, ptz.ErrConnectionFailed)

	_, err = buildController(ptz.ProtocolConfig{Type: "telepathy"})
	assert.Error(t, err)
}

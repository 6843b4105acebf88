package ptz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateHost(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		wantErr bool
	}{
		{"ipv4", "192.168.1.100", false},
		{"hostname", "camera-1.local", false},
		{"ipv6 loopback", "::1", false},
		{"ipv6 full", "fe80::1a2b:3c4d", false},
		{"host with port", "192.168.1.100:52381", false},
		{"empty", "", true},
		{"cidr suffix", "192.168.1.1/24", true},
		{"space", "host name", true},
		{"userinfo", "user@host", true},
		{"backslash", `host\name`, true},
		{"query", "host?x=1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHost(tt.host)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConnectionFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProtocolConfigValidate(t *testing.T) {
	assert.NoError(t, ProtocolConfig{Type: ProtocolSimulator}.Validate())
	assert.NoError(t, ProtocolConfig{Type: ProtocolVisca, Host: "10.0.0.5", Port: 52381}.Validate())
	assert.Error(t, ProtocolConfig{Type: ProtocolVisca, Host: "bad host"}.Validate())
	assert.Error(t, ProtocolConfig{Type: Protocol("onvif")}.Validate())
}

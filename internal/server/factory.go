package server

import (
	"fmt"

	"ptzhub/internal/birddog"
	"ptzhub/internal/ndi"
	"ptzhub/internal/panasonic"
	"ptzhub/internal/ptz"
	"ptzhub/internal/simulator"
	"ptzhub/internal/visca"
)

// Default control ports per protocol, used when a config omits one.
const (
	defaultViscaPort     = 52381
	defaultPanasonicPort = 80
	defaultBirdDogPort   = 8080
)

// buildController constructs the protocol client for a config.
// Construction validates the config but does not touch the network.
func buildController(cfg ptz.ProtocolConfig) (ptz.Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case ptz.ProtocolVisca:
		return visca.NewClient(cfg.Host, portOr(cfg.Port, defaultViscaPort))
	case ptz.ProtocolPanasonicAW:
		return panasonic.NewClient(cfg.Host, portOr(cfg.Port, defaultPanasonicPort), cfg.Username, cfg.Password)
	case ptz.ProtocolBirdDogRest:
		return birddog.NewClient(cfg.Host, portOr(cfg.Port, defaultBirdDogPort))
	case ptz.ProtocolSimulator:
		return simulator.New(), nil
	case ptz.ProtocolNDI:
		return ndi.NewController(), nil
	default:
		return nil, fmt.Errorf("unknown protocol %q", cfg.Type)
	}
}

func portOr(port, fallback int) int {
	if port == 0 {
		return fallback
	}
	return port
}

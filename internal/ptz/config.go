package ptz

import "fmt"

// Protocol identifies a supported PTZ control protocol.
type Protocol string

const (
	ProtocolNDI         Protocol = "ndi"
	ProtocolVisca       Protocol = "visca"
	ProtocolPanasonicAW Protocol = "panasonic_aw"
	ProtocolBirdDogRest Protocol = "birddog_rest"
	ProtocolSimulator   Protocol = "simulator"
)

// ProtocolConfig carries the connection parameters for one protocol
// variant. Type selects the variant; Host/Port apply to all network
// protocols; Username/Password are honored by the Panasonic AW client
// only. Immutable once constructed.
type ProtocolConfig struct {
	Type     Protocol `json:"type"`
	Host     string   `json:"host,omitempty"`
	Port     int      `json:"port,omitempty"`
	Username string   `json:"username,omitempty"`
	Password string   `json:"password,omitempty"`
}

// Validate checks the config is a known variant and, for network
// protocols, that the host passes ValidateHost.
func (c ProtocolConfig) Validate() error {
	switch c.Type {
	case ProtocolNDI, ProtocolSimulator:
		return nil
	case ProtocolVisca, ProtocolPanasonicAW, ProtocolBirdDogRest:
		return ValidateHost(c.Host)
	default:
		return fmt.Errorf("unknown protocol %q", c.Type)
	}
}

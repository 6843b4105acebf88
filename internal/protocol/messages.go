package protocol

import "encoding/json"

// Message types
const (
	TypePing        = "ping"
	TypePong        = "pong"
	TypeStatus      = "status"
	TypePTZCommand  = "ptz_command"
	TypePTZStop     = "ptz_stop"
	TypePTZPreset   = "ptz_preset"
	TypeGetPosition = "get_position"
	TypePosition    = "position"
	TypeError       = "error"
)

// Error codes
const (
	ErrCameraDisconnected = "CAMERA_DISCONNECTED"
	ErrCommandFailed      = "COMMAND_FAILED"
	ErrInvalidMessage     = "INVALID_MESSAGE"
)

// Message is the base envelope for all WebSocket messages
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PingPayload for ping messages
type PingPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// PongPayload for pong messages
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// StatusPayload for status messages
type StatusPayload struct {
	CameraConnected bool   `json:"camera_connected"`
	ControlProtocol string `json:"control_protocol,omitempty"`
	EndpointID      string `json:"endpoint_id,omitempty"`
}

// PTZCommandPayload for continuous PTZ control messages
type PTZCommandPayload struct {
	Pan  float64 `json:"pan"`
	Tilt float64 `json:"tilt"`
	Zoom float64 `json:"zoom"`
}

// PTZPresetPayload for preset recall/save
type PTZPresetPayload struct {
	Action       string `json:"action"`
	PresetNumber int    `json:"preset_number"`
}

// PositionPayload reports the camera's normalized position
type PositionPayload struct {
	Pan  float64 `json:"pan"`
	Tilt float64 `json:"tilt"`
	Zoom float64 `json:"zoom"`
}

// ErrorPayload for error messages
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage creates a new message with the given type and payload
func NewMessage(msgType string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:    msgType,
		Payload: data,
	}, nil
}

// ParsePayload unmarshals the payload into the given struct
func (m *Message) ParsePayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

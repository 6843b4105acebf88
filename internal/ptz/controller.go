// Package ptz defines the protocol-agnostic camera control contract: the
// normalized position model, the Controller interface implemented by every
// protocol client, the error taxonomy, and the dispatcher that routes
// commands to the active controller.
package ptz

import "context"

// Position is the normalized PTZ position.
// Pan and Tilt are in [-1.0, 1.0], Zoom is in [0.0, 1.0].
type Position struct {
	Pan  float64 `json:"pan"`
	Tilt float64 `json:"tilt"`
	Zoom float64 `json:"zoom"`
}

// ClampPanTilt limits a pan or tilt value to [-1.0, 1.0].
func ClampPanTilt(v float64) float64 {
	if v < -1.0 {
		return -1.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// ClampZoom limits a zoom value to [0.0, 1.0].
func ClampZoom(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// Controller is the capability set every protocol client implements.
// Inputs are not pre-validated; each implementation clamps to its own
// legal range before encoding. Cancellation is the caller's context.
type Controller interface {
	// MoveAbsolute moves to an absolute normalized position.
	MoveAbsolute(ctx context.Context, pan, tilt, zoom float64) error

	// MoveRelative moves by normalized deltas. Implementations decide how
	// to express "move by X" in their native protocol; deltas are not
	// accumulated against a stored position here.
	MoveRelative(ctx context.Context, panDelta, tiltDelta float64) error

	// ZoomTo sets the zoom level (0.0 wide to 1.0 tele).
	ZoomTo(ctx context.Context, zoom float64) error

	// RecallPreset recalls a camera-native preset slot (0-255).
	RecallPreset(ctx context.Context, index int) error

	// StorePreset stores the current position in a camera-native slot.
	StorePreset(ctx context.Context, index int) error

	// Position queries the live position from the camera. Failures
	// propagate; implementations must not fall back to a cached value.
	Position(ctx context.Context) (Position, error)

	// TestConnection performs a minimal round-trip to confirm the device
	// responds within the protocol's timeout.
	TestConnection(ctx context.Context) error
}

// Homer is implemented by controllers with a native home command.
// Controllers without it get MoveAbsolute(0, 0, 0) via the dispatcher.
type Homer interface {
	Home(ctx context.Context) error
}

// ContinuousMover is implemented by controllers that support velocity
// pan/tilt moves. Speeds are normalized: pan -1.0 (left) to 1.0 (right),
// tilt -1.0 (down) to 1.0 (up), 0 stops the axis.
type ContinuousMover interface {
	ContinuousMove(ctx context.Context, panSpeed, tiltSpeed float64) error
	Stop(ctx context.Context) error
}

// ContinuousZoomer is implemented by controllers that support velocity
// zoom. Speed is normalized: negative toward wide, positive toward
// tele, 0 stops the zoom.
type ContinuousZoomer interface {
	ContinuousZoom(ctx context.Context, speed float64) error
}

// Focuser is implemented by controllers with focus control.
// Speed is normalized: negative toward near, positive toward far.
type Focuser interface {
	FocusContinuous(ctx context.Context, speed float64) error
	SetAutofocus(ctx context.Context, enabled bool) error
	AutofocusTrigger(ctx context.Context) error
	FocusStop(ctx context.Context) error
}

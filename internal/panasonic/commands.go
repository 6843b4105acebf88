// Package panasonic implements Panasonic AW PTZ control over the HTTP
// CGI protocol (AW-UE150, AW-UE100, AW-UE70 and friends): command string
// building, the hex/affine value maps, and the HTTP client.
package panasonic

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ptzhub/internal/ptz"
)

// Native value ranges.
const (
	posMin  = 0x0001 // pan/tilt positions are 0x0001-0xFFFF, center 0x8000
	posSpan = 0xFFFE
	zoomMin = 0x555 // zoom positions are 0x555-0xFFF
	zoomMax = 0xFFF

	speedStop = 50 // speed values are 2-digit decimal, 50 = stop
	deadband  = 0.01
)

// PanHex maps pan in [-1, 1] to a 4-hex-digit native position.
func PanHex(pan float64) string {
	v := uint16(math.Round((ptz.ClampPanTilt(pan)+1)/2*posSpan)) + posMin
	return fmt.Sprintf("%04X", v)
}

// TiltHex maps tilt in [-1, 1] to a 4-hex-digit native position.
func TiltHex(tilt float64) string {
	v := uint16(math.Round((ptz.ClampPanTilt(tilt)+1)/2*posSpan)) + posMin
	return fmt.Sprintf("%04X", v)
}

// ZoomHex maps zoom in [0, 1] to a 3-hex-digit native position.
func ZoomHex(zoom float64) string {
	v := uint16(math.Round(zoomMin + ptz.ClampZoom(zoom)*(zoomMax-zoomMin)))
	return fmt.Sprintf("%03X", v)
}

// posToNormalized inverts the PanHex/TiltHex map.
func posToNormalized(v uint16) float64 {
	return ptz.ClampPanTilt((float64(v)-posMin)/posSpan*2 - 1)
}

// zoomToNormalized inverts the ZoomHex map.
func zoomToNormalized(v uint16) float64 {
	return ptz.ClampZoom((float64(v) - zoomMin) / (zoomMax - zoomMin))
}

// SpeedValue maps a normalized delta to the 2-digit speed field:
// 50 stops, 51-99 run one direction, 1-49 the other, scaled linearly.
// Deltas below the deadband map straight to stop.
func SpeedValue(delta float64) string {
	if math.Abs(delta) < deadband {
		return "50"
	}
	var speed float64
	if delta > 0 {
		speed = 51 + math.Abs(delta)*48
	} else {
		speed = 49 - math.Abs(delta)*48
	}
	speed = math.Round(speed)
	if speed < 1 {
		speed = 1
	} else if speed > 99 {
		speed = 99
	}
	return fmt.Sprintf("%02d", int(speed))
}

// Command builders. Commands are sent as "#<cmd>" in the CGI query.

func AbsolutePanTilt(pan, tilt float64) string {
	return "APS" + PanHex(pan) + TiltHex(tilt) + "30"
}

func AbsoluteZoom(zoom float64) string {
	return "Z" + ZoomHex(zoom)
}

func PanSpeed(delta float64) string {
	return "P" + SpeedValue(delta)
}

func TiltSpeed(delta float64) string {
	return "T" + SpeedValue(delta)
}

func ContinuousPanTilt(panSpeed, tiltSpeed float64) string {
	return "PTS" + SpeedValue(panSpeed) + SpeedValue(tiltSpeed)
}

func StopPanTilt() string {
	return "PTS5050"
}

func PresetRecall(index int) string {
	return fmt.Sprintf("R%02d", index)
}

func PresetStore(index int) string {
	return fmt.Sprintf("M%02d", index)
}

const (
	PanTiltInquiry = "APC"
	ZoomInquiry    = "GZ"
)

// ParsePanTiltPosition decodes an "aPC<PPPP><TTTT>" inquiry response.
func ParsePanTiltPosition(resp string) (pan, tilt float64, err error) {
	if !strings.HasPrefix(resp, "aPC") || len(resp) < 11 {
		return 0, 0, fmt.Errorf("%w: invalid APC response %q", ptz.ErrProtocol, resp)
	}
	panVal, err := strconv.ParseUint(resp[3:7], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad pan hex in %q: %v", ptz.ErrProtocol, resp, err)
	}
	tiltVal, err := strconv.ParseUint(resp[7:11], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad tilt hex in %q: %v", ptz.ErrProtocol, resp, err)
	}
	return posToNormalized(uint16(panVal)), posToNormalized(uint16(tiltVal)), nil
}

// ParseZoomPosition decodes a "gz<ZZZ>" inquiry response.
func ParseZoomPosition(resp string) (float64, error) {
	if !strings.HasPrefix(resp, "gz") || len(resp) < 5 {
		return 0, fmt.Errorf("%w: invalid GZ response %q", ptz.ErrProtocol, resp)
	}
	v, err := strconv.ParseUint(resp[2:5], 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: bad zoom hex in %q: %v", ptz.ErrProtocol, resp, err)
	}
	return zoomToNormalized(uint16(v)), nil
}

// Package visca implements VISCA-over-IP control for Sony and compatible
// PTZ cameras: the wire codec (framing header, nibble-packed positions,
// command byte sequences) and a UDP client.
package visca

import (
	"encoding/binary"
	"fmt"
	"math"

	"ptzhub/internal/ptz"
)

// VISCA-over-IP payload types (big endian, first two header bytes).
const (
	PayloadTypeCommand = 0x0100
	PayloadTypeInquiry = 0x0110
)

// Native value ranges.
const (
	panRange   = 880    // pan is -880 to 880
	tiltMin    = -400   // tilt range is asymmetric
	tiltMax    = 288    //
	zoomRange  = 0x4000 // zoom is 0x0000 to 0x4000
	maxPanSpd  = 24
	maxTiltSpd = 23
)

// BuildPacket wraps a VISCA payload in the 8-byte VISCA-over-IP header:
// u16 payload type, u16 payload length, u32 sequence number, all big
// endian.
func BuildPacket(payload []byte, seq uint32) []byte {
	packet := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint16(packet[0:2], PayloadTypeCommand)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(payload)))
	binary.BigEndian.PutUint32(packet[4:8], seq)
	return append(packet, payload...)
}

// appendNibbles appends a 16-bit value as four bytes, each carrying one
// nibble in its low bits, most significant nibble first.
func appendNibbles(dst []byte, v uint16) []byte {
	return append(dst,
		byte(v>>12)&0x0F,
		byte(v>>8)&0x0F,
		byte(v>>4)&0x0F,
		byte(v)&0x0F,
	)
}

// nibblesToUint16 reassembles four nibble bytes into a 16-bit value.
func nibblesToUint16(b []byte) uint16 {
	return uint16(b[0]&0x0F)<<12 |
		uint16(b[1]&0x0F)<<8 |
		uint16(b[2]&0x0F)<<4 |
		uint16(b[3]&0x0F)
}

// PanTiltAbsolute builds the absolute position command:
// 81 01 06 02 <panSpeed> <tiltSpeed> <4 pan nibbles> <4 tilt nibbles> FF.
func PanTiltAbsolute(panSpeed, tiltSpeed byte, pan, tilt int16) []byte {
	cmd := []byte{0x81, 0x01, 0x06, 0x02, panSpeed, tiltSpeed}
	cmd = appendNibbles(cmd, uint16(pan))
	cmd = appendNibbles(cmd, uint16(tilt))
	return append(cmd, 0xFF)
}

// PanTiltDrive builds the velocity drive command. Directions: pan
// 01=left, 02=right, 03=stop; tilt 01=up, 02=down, 03=stop.
func PanTiltDrive(panSpeed, tiltSpeed, panDir, tiltDir byte) []byte {
	return []byte{0x81, 0x01, 0x06, 0x01, panSpeed, tiltSpeed, panDir, tiltDir, 0xFF}
}

// PanTiltStop halts pan/tilt movement.
func PanTiltStop() []byte {
	return []byte{0x81, 0x01, 0x06, 0x01, 0x00, 0x00, 0x03, 0x03, 0xFF}
}

// PanTiltHome moves pan/tilt to the mechanical home position.
func PanTiltHome() []byte {
	return []byte{0x81, 0x01, 0x06, 0x04, 0xFF}
}

// ZoomAbsolute builds the zoom position command (0x0000-0x4000).
func ZoomAbsolute(position uint16) []byte {
	cmd := []byte{0x81, 0x01, 0x04, 0x47}
	cmd = appendNibbles(cmd, position)
	return append(cmd, 0xFF)
}

// ZoomDrive builds the zoom velocity command. mode: 0x00 stop,
// 0x20|speed tele, 0x30|speed wide (speed 0-7).
func ZoomDrive(mode byte) []byte {
	return []byte{0x81, 0x01, 0x04, 0x07, mode, 0xFF}
}

// FocusDrive builds the focus velocity command. mode: 0x00 stop,
// 0x20|speed far, 0x30|speed near (speed 0-7).
func FocusDrive(mode byte) []byte {
	return []byte{0x81, 0x01, 0x04, 0x08, mode, 0xFF}
}

// FocusAuto toggles autofocus.
func FocusAuto(enabled bool) []byte {
	mode := byte(0x03) // manual
	if enabled {
		mode = 0x02
	}
	return []byte{0x81, 0x01, 0x04, 0x38, mode, 0xFF}
}

// FocusOnePush triggers a one-push autofocus cycle.
func FocusOnePush() []byte {
	return []byte{0x81, 0x01, 0x04, 0x18, 0x01, 0xFF}
}

// PresetRecall builds the memory recall command: 81 01 04 3F 02 pp FF.
func PresetRecall(index byte) []byte {
	return []byte{0x81, 0x01, 0x04, 0x3F, 0x02, index, 0xFF}
}

// PresetStore builds the memory set command: 81 01 04 3F 01 pp FF.
func PresetStore(index byte) []byte {
	return []byte{0x81, 0x01, 0x04, 0x3F, 0x01, index, 0xFF}
}

// PanTiltPositionInquiry builds the pan/tilt position inquiry.
func PanTiltPositionInquiry() []byte {
	return []byte{0x81, 0x09, 0x06, 0x12, 0xFF}
}

// ZoomPositionInquiry builds the zoom position inquiry.
func ZoomPositionInquiry() []byte {
	return []byte{0x81, 0x09, 0x04, 0x47, 0xFF}
}

// ParsePanTiltPosition decodes a pan/tilt inquiry reply payload:
// 90 50 <4 pan nibbles> <4 tilt nibbles> FF.
func ParsePanTiltPosition(payload []byte) (pan, tilt int16, err error) {
	if len(payload) < 10 {
		return 0, 0, fmt.Errorf("%w: pan/tilt inquiry reply too short (%d bytes)", ptz.ErrProtocol, len(payload))
	}
	if payload[0] != 0x90 || payload[1] != 0x50 {
		return 0, 0, fmt.Errorf("%w: unexpected pan/tilt inquiry reply prefix %02X %02X", ptz.ErrProtocol, payload[0], payload[1])
	}
	pan = int16(nibblesToUint16(payload[2:6]))
	tilt = int16(nibblesToUint16(payload[6:10]))
	return pan, tilt, nil
}

// ParseZoomPosition decodes a zoom inquiry reply payload:
// 90 50 <4 zoom nibbles> FF.
func ParseZoomPosition(payload []byte) (uint16, error) {
	if len(payload) < 6 {
		return 0, fmt.Errorf("%w: zoom inquiry reply too short (%d bytes)", ptz.ErrProtocol, len(payload))
	}
	if payload[0] != 0x90 || payload[1] != 0x50 {
		return 0, fmt.Errorf("%w: unexpected zoom inquiry reply prefix %02X %02X", ptz.ErrProtocol, payload[0], payload[1])
	}
	return nibblesToUint16(payload[2:6]), nil
}

// PanFromNormalized maps pan in [-1, 1] to the native [-880, 880] range.
func PanFromNormalized(pan float64) int16 {
	return int16(math.Round(ptz.ClampPanTilt(pan) * panRange))
}

// PanToNormalized inverts PanFromNormalized.
func PanToNormalized(v int16) float64 {
	return ptz.ClampPanTilt(float64(v) / panRange)
}

// tilt maps through an affine transform because the native range
// (-400..288) is asymmetric about zero.
const (
	tiltCenter    = float64(tiltMin+tiltMax) / 2 // -56
	tiltHalfRange = float64(tiltMax-tiltMin) / 2 // 344
)

// TiltFromNormalized maps tilt in [-1, 1] to the native [-400, 288] range.
func TiltFromNormalized(tilt float64) int16 {
	return int16(math.Round(tiltCenter + ptz.ClampPanTilt(tilt)*tiltHalfRange))
}

// TiltToNormalized inverts TiltFromNormalized.
func TiltToNormalized(v int16) float64 {
	return ptz.ClampPanTilt((float64(v) - tiltCenter) / tiltHalfRange)
}

// ZoomFromNormalized maps zoom in [0, 1] to the native [0, 0x4000] range.
func ZoomFromNormalized(zoom float64) uint16 {
	return uint16(math.Round(ptz.ClampZoom(zoom) * zoomRange))
}

// ZoomToNormalized inverts ZoomFromNormalized.
func ZoomToNormalized(v uint16) float64 {
	return ptz.ClampZoom(float64(v) / zoomRange)
}

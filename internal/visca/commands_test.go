package visca

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptzhub/internal/ptz"
)

func TestBuildPacketHeader(t *testing.T) {
	payload := []byte{0x81, 0x09, 0x06, 0x12, 0xFF}
	packet := BuildPacket(payload, 7)

	require.Len(t, packet, 8+len(payload))
	assert.Equal(t, []byte{0x01, 0x00}, packet[0:2], "payload type")
	assert.Equal(t, []byte{0x00, 0x05}, packet[2:4], "payload length")
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x07}, packet[4:8], "sequence")
	assert.Equal(t, payload, packet[8:])
}

func TestFixedCommandBytes(t *testing.T) {
	assert.Equal(t,
		[]byte{0x81, 0x01, 0x06, 0x01, 0x00, 0x00, 0x03, 0x03, 0xFF},
		PanTiltStop())
	assert.Equal(t,
		[]byte{0x81, 0x01, 0x04, 0x3F, 0x02, 0x05, 0xFF},
		PresetRecall(5))
	assert.Equal(t,
		[]byte{0x81, 0x01, 0x04, 0x3F, 0x01, 0x0A, 0xFF},
		PresetStore(10))
	assert.Equal(t,
		[]byte{0x81, 0x09, 0x06, 0x12, 0xFF},
		PanTiltPositionInquiry())
	assert.Equal(t,
		[]byte{0x81, 0x09, 0x04, 0x47, 0xFF},
		ZoomPositionInquiry())
	assert.Equal(t,
		[]byte{0x81, 0x01, 0x06, 0x04, 0xFF},
		PanTiltHome())
	assert.Equal(t,
		[]byte{0x81, 0x01, 0x04, 0x07, 0x25, 0xFF},
		ZoomDrive(0x25))
	assert.Equal(t,
		[]byte{0x81, 0x01, 0x04, 0x38, 0x02, 0xFF},
		FocusAuto(true))
	assert.Equal(t,
		[]byte{0x81, 0x01, 0x04, 0x38, 0x03, 0xFF},
		FocusAuto(false))
	assert.Equal(t,
		[]byte{0x81, 0x01, 0x04, 0x18, 0x01, 0xFF},
		FocusOnePush())
}

func TestPanTiltAbsoluteNibblePacking(t *testing.T) {
	// pan 0x0370 (880), tilt 0xFE70 (-400): every position byte carries
	// one nibble in its low bits, high nibble zeroed, MSN first.
	cmd := PanTiltAbsolute(0x0C, 0x0C, 880, -400)
	require.Len(t, cmd, 15)
	assert.Equal(t, []byte{0x81, 0x01, 0x06, 0x02, 0x0C, 0x0C}, cmd[0:6])
	assert.Equal(t, []byte{0x00, 0x03, 0x07, 0x00}, cmd[6:10], "pan nibbles")
	assert.Equal(t, []byte{0x0F, 0x0E, 0x07, 0x00}, cmd[10:14], "tilt nibbles")
	assert.Equal(t, byte(0xFF), cmd[14])
}

func TestZoomAbsoluteNibblePacking(t *testing.T) {
	cmd := ZoomAbsolute(0x4000)
	assert.Equal(t, []byte{0x81, 0x01, 0x04, 0x47, 0x04, 0x00, 0x00, 0x00, 0xFF}, cmd)

	cmd = ZoomAbsolute(0x123A)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x0A}, cmd[4:8])
}

func TestPanRoundTrip(t *testing.T) {
	// One encoding step is 1/880, so half a step bounds the error.
	const eps = 1.0 / 880 / 2
	for _, p := range []float64{-1, -0.73, -0.5, -0.01, 0, 0.01, 0.33, 0.5, 0.99, 1} {
		got := PanToNormalized(PanFromNormalized(p))
		assert.InDelta(t, p, got, eps, "pan %v", p)
	}
	assert.Equal(t, int16(880), PanFromNormalized(2.5), "clamps high")
	assert.Equal(t, int16(-880), PanFromNormalized(-2.5), "clamps low")
}

func TestTiltRoundTrip(t *testing.T) {
	const eps = 1.0 / 344 / 2
	for _, v := range []float64{-1, -0.8, -0.25, 0, 0.25, 0.66, 1} {
		got := TiltToNormalized(TiltFromNormalized(v))
		assert.InDelta(t, v, got, eps, "tilt %v", v)
	}
	// The native range is asymmetric: -400..288 with center -56.
	assert.Equal(t, int16(-400), TiltFromNormalized(-1))
	assert.Equal(t, int16(288), TiltFromNormalized(1))
	assert.Equal(t, int16(-56), TiltFromNormalized(0))
}

func TestZoomRoundTrip(t *testing.T) {
	const eps = 1.0 / 0x4000 / 2
	for _, z := range []float64{0, 0.1, 0.25, 0.5, 0.77, 1} {
		got := ZoomToNormalized(ZoomFromNormalized(z))
		assert.InDelta(t, z, got, eps, "zoom %v", z)
	}
	assert.Equal(t, uint16(0x4000), ZoomFromNormalized(5))
	assert.Equal(t, uint16(0), ZoomFromNormalized(-5))
}

func TestParsePanTiltPosition(t *testing.T) {
	payload := []byte{0x90, 0x50}
	payload = appendNibbles(payload, uint16(440))
	tiltNative := int16(-200)
	payload = appendNibbles(payload, uint16(tiltNative))
	payload = append(payload, 0xFF)

	pan, tilt, err := ParsePanTiltPosition(payload)
	require.NoError(t, err)
	assert.Equal(t, int16(440), pan)
	assert.Equal(t, int16(-200), tilt)
}

func TestParsePanTiltPositionMalformed(t *testing.T) {
	_, _, err := ParsePanTiltPosition([]byte{0x90, 0x50, 0x00})
	assert.ErrorIs(t, err, ptz.ErrProtocol)

	bad := make([]byte, 11)
	bad[0] = 0x90
	bad[1] = 0x41 // ack, not completion
	_, _, err = ParsePanTiltPosition(bad)
	assert.ErrorIs(t, err, ptz.ErrProtocol)
}

func TestParseZoomPosition(t *testing.T) {
	payload := []byte{0x90, 0x50}
	payload = appendNibbles(payload, 0x2000)
	payload = append(payload, 0xFF)

	v, err := ParseZoomPosition(payload)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x2000), v)
	assert.InDelta(t, 0.5, ZoomToNormalized(v), 1e-9)
}

func TestParseZoomPositionMalformed(t *testing.T) {
	_, err := ParseZoomPosition([]byte{0x90})
	assert.ErrorIs(t, err, ptz.ErrProtocol)

	_, err = ParseZoomPosition([]byte{0xA0, 0x50, 0x00, 0x00, 0x00, 0x00, 0xFF})
	assert.ErrorIs(t, err, ptz.ErrProtocol)
}

func TestNibbleHelpersInverse(t *testing.T) {
	for _, v := range []uint16{0, 1, 0x0370, 0x4000, 0xFC90, 0xFFFF} {
		nibbles := appendNibbles(nil, v)
		require.Len(t, nibbles, 4)
		for _, b := range nibbles {
			assert.Zero(t, b&0xF0, "high nibble must be zero")
		}
		assert.Equal(t, v, nibblesToUint16(nibbles))
	}
}

func TestRoundingIsNearest(t *testing.T) {
	// 0.5004 * 880 = 440.352 rounds to 440, not 441.
	assert.Equal(t, int16(440), PanFromNormalized(0.5004))
	assert.Equal(t, uint16(math.Round(0.3*0x4000)), ZoomFromNormalized(0.3))
}

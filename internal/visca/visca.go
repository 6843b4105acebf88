package visca

import (
	"context"
	"fmt"
	"math"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"ptzhub/internal/ptz"
)

const (
	recvTimeout   = 2 * time.Second
	pulseDuration = 200 * time.Millisecond
	deadband      = 0.01
	driveDeadband = 0.05

	// Speeds used for absolute position moves.
	absolutePanSpeed  = 0x0C
	absoluteTiltSpeed = 0x0C
)

// Client controls a camera over VISCA-over-IP (UDP).
//
// One socket is lazily dialed on first use and reused. A single mutex
// serializes the send/receive pair so concurrent calls do not interleave
// writes; response correlation beyond request/response adjacency is not
// attempted.
type Client struct {
	host string
	port int

	mu   sync.Mutex
	conn net.Conn
	seq  atomic.Uint32

	// Overridable in tests to avoid waiting on real protocol deadlines.
	recvTimeout time.Duration
	pulse       time.Duration
}

// NewClient validates the host and returns an unconnected client. The
// socket is dialed on the first command.
func NewClient(host string, port int) (*Client, error) {
	if err := ptz.ValidateHost(host); err != nil {
		return nil, err
	}
	return &Client{
		host:        host,
		port:        port,
		recvTimeout: recvTimeout,
		pulse:       pulseDuration,
	}, nil
}

// Close releases the socket, if one was dialed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// send frames the payload, writes it, and waits for one datagram in
// reply. The sequence number increments per packet and is never reset.
func (c *Client) send(ctx context.Context, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		conn, err := net.Dial("udp", net.JoinHostPort(c.host, fmt.Sprintf("%d", c.port)))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ptz.ErrConnectionFailed, err)
		}
		c.conn = conn
	}

	packet := BuildPacket(payload, c.seq.Add(1))
	if _, err := c.conn.Write(packet); err != nil {
		return nil, fmt.Errorf("%w: %v", ptz.ErrCommandFailed, err)
	}

	buf := make([]byte, 256)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.recvTimeout))
	n, err := c.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, fmt.Errorf("%w: no reply within %s", ptz.ErrTimeout, c.recvTimeout)
		}
		return nil, fmt.Errorf("%w: %v", ptz.ErrCommandFailed, err)
	}
	return buf[:n], nil
}

// replyPayload strips the 8-byte VISCA-over-IP header from a reply.
func replyPayload(reply []byte) ([]byte, error) {
	if len(reply) <= 8 {
		return nil, fmt.Errorf("%w: reply shorter than framing header (%d bytes)", ptz.ErrProtocol, len(reply))
	}
	return reply[8:], nil
}

func (c *Client) MoveAbsolute(ctx context.Context, pan, tilt, zoom float64) error {
	cmd := PanTiltAbsolute(absolutePanSpeed, absoluteTiltSpeed,
		PanFromNormalized(pan), TiltFromNormalized(tilt))
	if _, err := c.send(ctx, cmd); err != nil {
		return err
	}
	_, err := c.send(ctx, ZoomAbsolute(ZoomFromNormalized(zoom)))
	return err
}

// MoveRelative expresses a delta as a speed-scaled drive pulse: drive
// for a fixed burst, then stop. The protocol has no "move by N and
// auto-stop" primitive, so the client owns the timing.
func (c *Client) MoveRelative(ctx context.Context, panDelta, tiltDelta float64) error {
	if math.Abs(panDelta) < deadband && math.Abs(tiltDelta) < deadband {
		return nil
	}

	panSpeed := clampByte(int(math.Ceil(math.Abs(panDelta)*24)), 1, 24)
	tiltSpeed := clampByte(int(math.Ceil(math.Abs(tiltDelta)*23)), 1, 23)

	panDir := byte(0x03)
	if panDelta < -deadband {
		panDir = 0x01 // left
	} else if panDelta > deadband {
		panDir = 0x02 // right
	}

	tiltDir := byte(0x03)
	if tiltDelta > deadband {
		tiltDir = 0x01 // up
	} else if tiltDelta < -deadband {
		tiltDir = 0x02 // down
	}

	if _, err := c.send(ctx, PanTiltDrive(panSpeed, tiltSpeed, panDir, tiltDir)); err != nil {
		return err
	}

	select {
	case <-time.After(c.pulse):
	case <-ctx.Done():
	}

	// The stop must go out even when the caller cancelled mid-burst,
	// otherwise the head keeps moving at the last commanded speed.
	if _, err := c.send(context.WithoutCancel(ctx), PanTiltStop()); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *Client) ZoomTo(ctx context.Context, zoom float64) error {
	_, err := c.send(ctx, ZoomAbsolute(ZoomFromNormalized(zoom)))
	return err
}

func (c *Client) RecallPreset(ctx context.Context, index int) error {
	if index < 0 || index > 255 {
		return fmt.Errorf("%w: preset index %d out of range 0-255", ptz.ErrCommandFailed, index)
	}
	_, err := c.send(ctx, PresetRecall(byte(index)))
	return err
}

func (c *Client) StorePreset(ctx context.Context, index int) error {
	if index < 0 || index > 255 {
		return fmt.Errorf("%w: preset index %d out of range 0-255", ptz.ErrCommandFailed, index)
	}
	_, err := c.send(ctx, PresetStore(byte(index)))
	return err
}

func (c *Client) Position(ctx context.Context) (ptz.Position, error) {
	reply, err := c.send(ctx, PanTiltPositionInquiry())
	if err != nil {
		return ptz.Position{}, err
	}
	payload, err := replyPayload(reply)
	if err != nil {
		return ptz.Position{}, err
	}
	pan, tilt, err := ParsePanTiltPosition(payload)
	if err != nil {
		return ptz.Position{}, err
	}

	reply, err = c.send(ctx, ZoomPositionInquiry())
	if err != nil {
		return ptz.Position{}, err
	}
	payload, err = replyPayload(reply)
	if err != nil {
		return ptz.Position{}, err
	}
	zoom, err := ParseZoomPosition(payload)
	if err != nil {
		return ptz.Position{}, err
	}

	return ptz.Position{
		Pan:  PanToNormalized(pan),
		Tilt: TiltToNormalized(tilt),
		Zoom: ZoomToNormalized(zoom),
	}, nil
}

func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.send(ctx, PanTiltPositionInquiry())
	return err
}

// Home uses the native home command, then resets zoom to wide so the
// result matches a move to the normalized origin.
func (c *Client) Home(ctx context.Context) error {
	if _, err := c.send(ctx, PanTiltHome()); err != nil {
		return err
	}
	_, err := c.send(ctx, ZoomAbsolute(0))
	return err
}

// ContinuousMove starts a velocity drive. Speeds below the drive
// deadband stop the corresponding axis.
func (c *Client) ContinuousMove(ctx context.Context, panSpeed, tiltSpeed float64) error {
	ps := clampByte(int(math.Abs(panSpeed)*24), 1, 24)
	ts := clampByte(int(math.Abs(tiltSpeed)*23), 1, 23)

	panDir := byte(0x03)
	switch {
	case panSpeed < -driveDeadband:
		panDir = 0x01 // left
	case panSpeed > driveDeadband:
		panDir = 0x02 // right
	default:
		ps = 0x01
	}

	tiltDir := byte(0x03)
	switch {
	case tiltSpeed > driveDeadband:
		tiltDir = 0x01 // up
	case tiltSpeed < -driveDeadband:
		tiltDir = 0x02 // down
	default:
		ts = 0x01
	}

	_, err := c.send(ctx, PanTiltDrive(ps, ts, panDir, tiltDir))
	return err
}

// ContinuousZoom drives zoom toward tele (positive) or wide (negative).
// Speeds below the drive deadband stop the zoom.
func (c *Client) ContinuousZoom(ctx context.Context, speed float64) error {
	if math.Abs(speed) < driveDeadband {
		_, err := c.send(ctx, ZoomDrive(0x00))
		return err
	}
	spd := clampByte(int(math.Abs(speed)*7), 0, 7)
	mode := byte(0x20) | spd // tele
	if speed < 0 {
		mode = 0x30 | spd // wide
	}
	_, err := c.send(ctx, ZoomDrive(mode))
	return err
}

// Stop halts pan/tilt and zoom movement.
func (c *Client) Stop(ctx context.Context) error {
	if _, err := c.send(ctx, PanTiltStop()); err != nil {
		return err
	}
	_, err := c.send(ctx, ZoomDrive(0x00))
	return err
}

// FocusContinuous drives focus toward far (positive) or near (negative).
func (c *Client) FocusContinuous(ctx context.Context, speed float64) error {
	if math.Abs(speed) < driveDeadband {
		return c.FocusStop(ctx)
	}
	spd := clampByte(int(math.Abs(speed)*7), 0, 7)
	mode := byte(0x20) | spd // far
	if speed < 0 {
		mode = 0x30 | spd // near
	}
	_, err := c.send(ctx, FocusDrive(mode))
	return err
}

func (c *Client) SetAutofocus(ctx context.Context, enabled bool) error {
	_, err := c.send(ctx, FocusAuto(enabled))
	return err
}

func (c *Client) AutofocusTrigger(ctx context.Context) error {
	_, err := c.send(ctx, FocusOnePush())
	return err
}

func (c *Client) FocusStop(ctx context.Context) error {
	_, err := c.send(ctx, FocusDrive(0x00))
	return err
}

func clampByte(v, min, max int) byte {
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return byte(v)
}

package panasonic

import (
	"context"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ptzhub/internal/ptz"
)

const (
	requestTimeout = 5 * time.Second
	pulseDuration  = 200 * time.Millisecond
)

// Client controls a Panasonic AW camera over HTTP CGI. Commands are sent
// as GET requests to the aw_ptz endpoint; the camera answers with a
// short text body. The client holds no connection state beyond the
// reusable HTTP client.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client

	// Overridable in tests.
	pulse time.Duration
}

// NewClient validates the host and returns a client. Credentials are
// optional; when set they are sent as HTTP basic auth.
func NewClient(host string, port int, username, password string) (*Client, error) {
	if err := ptz.ValidateHost(host); err != nil {
		return nil, err
	}
	return &Client{
		baseURL:  fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprintf("%d", port))),
		username: username,
		password: password,
		http:     &http.Client{Timeout: requestTimeout},
		pulse:    pulseDuration,
	}, nil
}

// send issues one CGI command ("#<cmd>") and returns the response text.
func (c *Client) send(ctx context.Context, cmd string) (string, error) {
	q := url.Values{}
	q.Set("cmd", "#"+cmd)
	q.Set("res", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/cgi-bin/aw_ptz?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ptz.ErrConnectionFailed, err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return "", fmt.Errorf("%w: no response within %s", ptz.ErrTimeout, requestTimeout)
		}
		return "", fmt.Errorf("%w: %v", ptz.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ptz.ErrCommandFailed, err)
	}
	return strings.TrimSpace(string(body)), nil
}

// MoveAbsolute sends the pan/tilt position command followed by a
// separate zoom command. A failure after the first command leaves the
// camera partially moved; the error reports the failing step.
func (c *Client) MoveAbsolute(ctx context.Context, pan, tilt, zoom float64) error {
	if _, err := c.send(ctx, AbsolutePanTilt(pan, tilt)); err != nil {
		return err
	}
	_, err := c.send(ctx, AbsoluteZoom(zoom))
	return err
}

// MoveRelative expresses deltas as per-axis speed commands, runs them
// for a fixed burst, then stops.
func (c *Client) MoveRelative(ctx context.Context, panDelta, tiltDelta float64) error {
	if math.Abs(panDelta) < deadband && math.Abs(tiltDelta) < deadband {
		return nil
	}

	if _, err := c.send(ctx, PanSpeed(panDelta)); err != nil {
		return err
	}
	if _, err := c.send(ctx, TiltSpeed(tiltDelta)); err != nil {
		return err
	}

	select {
	case <-time.After(c.pulse):
	case <-ctx.Done():
	}

	// Stop even when the caller cancelled mid-burst.
	if _, err := c.send(context.WithoutCancel(ctx), StopPanTilt()); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *Client) ZoomTo(ctx context.Context, zoom float64) error {
	_, err := c.send(ctx, AbsoluteZoom(zoom))
	return err
}

func (c *Client) RecallPreset(ctx context.Context, index int) error {
	if index < 0 || index > 99 {
		return fmt.Errorf("%w: preset index %d out of range 0-99", ptz.ErrCommandFailed, index)
	}
	_, err := c.send(ctx, PresetRecall(index))
	return err
}

func (c *Client) StorePreset(ctx context.Context, index int) error {
	if index < 0 || index > 99 {
		return fmt.Errorf("%w: preset index %d out of range 0-99", ptz.ErrCommandFailed, index)
	}
	_, err := c.send(ctx, PresetStore(index))
	return err
}

// Position issues the pan/tilt and zoom inquiries and inverts the
// position maps.
func (c *Client) Position(ctx context.Context) (ptz.Position, error) {
	ptResp, err := c.send(ctx, PanTiltInquiry)
	if err != nil {
		return ptz.Position{}, err
	}
	pan, tilt, err := ParsePanTiltPosition(ptResp)
	if err != nil {
		return ptz.Position{}, err
	}

	zResp, err := c.send(ctx, ZoomInquiry)
	if err != nil {
		return ptz.Position{}, err
	}
	zoom, err := ParseZoomPosition(zResp)
	if err != nil {
		return ptz.Position{}, err
	}

	return ptz.Position{Pan: pan, Tilt: tilt, Zoom: zoom}, nil
}

func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.send(ctx, PanTiltInquiry)
	return err
}

// ContinuousMove starts a velocity move via the combined PTS command.
func (c *Client) ContinuousMove(ctx context.Context, panSpeed, tiltSpeed float64) error {
	_, err := c.send(ctx, ContinuousPanTilt(panSpeed, tiltSpeed))
	return err
}

// Stop halts pan/tilt movement.
func (c *Client) Stop(ctx context.Context) error {
	_, err := c.send(ctx, StopPanTilt())
	return err
}

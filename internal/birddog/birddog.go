// Package birddog implements the BirdDog REST API for BirdDog PTZ
// cameras: flat JSON bodies over HTTP POST/GET, no bit packing, numeric
// values pass through as normalized floats.
package birddog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"ptzhub/internal/ptz"
)

const requestTimeout = 5 * time.Second

// Client talks to a BirdDog camera's REST API (default port 8080).
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient validates the host and returns a client.
func NewClient(host string, port int) (*Client, error) {
	if err := ptz.ValidateHost(host); err != nil {
		return nil, err
	}
	return &Client{
		baseURL: fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprintf("%d", port))),
		http:    &http.Client{Timeout: requestTimeout},
	}, nil
}

// postJSON sends a JSON body and decodes the JSON reply into out when
// out is non-nil.
func (c *Client) postJSON(ctx context.Context, path string, body map[string]any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ptz.ErrCommandFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ptz.ErrConnectionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ptz.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if out == nil {
		out = &map[string]any{}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ptz.ErrCommandFailed, err)
	}
	return nil
}

// getJSON fetches a path and decodes the JSON reply.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ptz.ErrConnectionFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ptz.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if out == nil {
		out = &map[string]any{}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ptz.ErrCommandFailed, err)
	}
	return nil
}

func (c *Client) MoveAbsolute(ctx context.Context, pan, tilt, zoom float64) error {
	return c.postJSON(ctx, "ptz", map[string]any{
		"pan":  pan,
		"tilt": tilt,
		"zoom": zoom,
		"mode": "absolute",
	}, nil)
}

func (c *Client) MoveRelative(ctx context.Context, panDelta, tiltDelta float64) error {
	return c.postJSON(ctx, "ptz", map[string]any{
		"pan":  panDelta,
		"tilt": tiltDelta,
		"mode": "relative",
	}, nil)
}

func (c *Client) ZoomTo(ctx context.Context, zoom float64) error {
	return c.postJSON(ctx, "ptz", map[string]any{
		"zoom": zoom,
		"mode": "absolute",
	}, nil)
}

func (c *Client) RecallPreset(ctx context.Context, index int) error {
	return c.postJSON(ctx, "recall", map[string]any{"preset": index}, nil)
}

func (c *Client) StorePreset(ctx context.Context, index int) error {
	return c.postJSON(ctx, "store", map[string]any{"preset": index}, nil)
}

func (c *Client) Position(ctx context.Context) (ptz.Position, error) {
	var pos ptz.Position
	if err := c.getJSON(ctx, "ptz/position", &pos); err != nil {
		return ptz.Position{}, err
	}
	return pos, nil
}

func (c *Client) TestConnection(ctx context.Context) error {
	return c.getJSON(ctx, "about", nil)
}

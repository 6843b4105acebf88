// Package simulator provides an in-memory camera for development
// and demos. It tracks position and presets without any network
// or hardware dependency.
package simulator

import (
	"context"
	"fmt"
	"sync"

	"ptzhub/internal/ptz"
)

// Controller implements ptz.Controller entirely in memory.
type Controller struct {
	mu       sync.Mutex
	position ptz.Position
	presets  map[int]ptz.Position
}

func New() *Controller {
	return &Controller{presets: make(map[int]ptz.Position)}
}

func (c *Controller) MoveAbsolute(_ context.Context, pan, tilt, zoom float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = ptz.Position{
		Pan:  ptz.ClampPanTilt(pan),
		Tilt: ptz.ClampPanTilt(tilt),
		Zoom: ptz.ClampZoom(zoom),
	}
	return nil
}

func (c *Controller) MoveRelative(_ context.Context, panDelta, tiltDelta float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position.Pan = ptz.ClampPanTilt(c.position.Pan + panDelta)
	c.position.Tilt = ptz.ClampPanTilt(c.position.Tilt + tiltDelta)
	return nil
}

func (c *Controller) ZoomTo(_ context.Context, zoom float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position.Zoom = ptz.ClampZoom(zoom)
	return nil
}

func (c *Controller) StorePreset(_ context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presets[index] = c.position
	return nil
}

func (c *Controller) RecallPreset(_ context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored, ok := c.presets[index]
	if !ok {
		return fmt.Errorf("%w: no preset stored at index %d", ptz.ErrCommandFailed, index)
	}
	c.position = stored
	return nil
}

func (c *Controller) Position(_ context.Context) (ptz.Position, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position, nil
}

func (c *Controller) TestConnection(_ context.Context) error {
	return nil
}

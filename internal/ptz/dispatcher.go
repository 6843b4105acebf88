package ptz

import (
	"context"
	"sync"
)

// Dispatcher owns at most one active controller and forwards commands to
// it. It performs no retries and no queuing; every forwarding method
// fails with ErrNotConnected when no controller is installed. The slot is
// replaced atomically under a single lock; a replacement racing with an
// in-flight call lets that call complete against the old controller.
type Dispatcher struct {
	mu         sync.Mutex
	controller Controller
}

// NewDispatcher returns a dispatcher with no controller installed.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// SetController installs a controller, dropping any previous one.
func (d *Dispatcher) SetController(c Controller) {
	d.mu.Lock()
	d.controller = c
	d.mu.Unlock()
}

// ClearController removes the active controller, if any.
func (d *Dispatcher) ClearController() {
	d.mu.Lock()
	d.controller = nil
	d.mu.Unlock()
}

// HasController reports whether a controller is installed.
func (d *Dispatcher) HasController() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.controller != nil
}

// active takes the lock only long enough to grab the current reference.
func (d *Dispatcher) active() (Controller, error) {
	d.mu.Lock()
	c := d.controller
	d.mu.Unlock()
	if c == nil {
		return nil, ErrNotConnected
	}
	return c, nil
}

func (d *Dispatcher) MoveAbsolute(ctx context.Context, pan, tilt, zoom float64) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	return c.MoveAbsolute(ctx, pan, tilt, zoom)
}

func (d *Dispatcher) MoveRelative(ctx context.Context, panDelta, tiltDelta float64) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	return c.MoveRelative(ctx, panDelta, tiltDelta)
}

func (d *Dispatcher) ZoomTo(ctx context.Context, zoom float64) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	return c.ZoomTo(ctx, zoom)
}

func (d *Dispatcher) RecallPreset(ctx context.Context, index int) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	return c.RecallPreset(ctx, index)
}

func (d *Dispatcher) StorePreset(ctx context.Context, index int) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	return c.StorePreset(ctx, index)
}

func (d *Dispatcher) Position(ctx context.Context) (Position, error) {
	c, err := d.active()
	if err != nil {
		return Position{}, err
	}
	return c.Position(ctx)
}

func (d *Dispatcher) TestConnection(ctx context.Context) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	return c.TestConnection(ctx)
}

// Home moves to the home position, using the controller's native home
// command when it has one and an absolute move to center otherwise.
func (d *Dispatcher) Home(ctx context.Context) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	if h, ok := c.(Homer); ok {
		return h.Home(ctx)
	}
	return c.MoveAbsolute(ctx, 0, 0, 0)
}

// ContinuousMove starts a velocity move on controllers that support it
// and is a no-op on those that do not.
func (d *Dispatcher) ContinuousMove(ctx context.Context, panSpeed, tiltSpeed float64) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	if m, ok := c.(ContinuousMover); ok {
		return m.ContinuousMove(ctx, panSpeed, tiltSpeed)
	}
	return nil
}

// ContinuousZoom starts a velocity zoom on controllers that support it
// and is a no-op on those that do not.
func (d *Dispatcher) ContinuousZoom(ctx context.Context, speed float64) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	if z, ok := c.(ContinuousZoomer); ok {
		return z.ContinuousZoom(ctx, speed)
	}
	return nil
}

// Stop halts movement on controllers that support it and is a no-op on
// those that do not.
func (d *Dispatcher) Stop(ctx context.Context) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	if m, ok := c.(ContinuousMover); ok {
		return m.Stop(ctx)
	}
	return nil
}

func (d *Dispatcher) FocusContinuous(ctx context.Context, speed float64) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	if f, ok := c.(Focuser); ok {
		return f.FocusContinuous(ctx, speed)
	}
	return nil
}

func (d *Dispatcher) SetAutofocus(ctx context.Context, enabled bool) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	if f, ok := c.(Focuser); ok {
		return f.SetAutofocus(ctx, enabled)
	}
	return nil
}

func (d *Dispatcher) AutofocusTrigger(ctx context.Context) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	if f, ok := c.(Focuser); ok {
		return f.AutofocusTrigger(ctx)
	}
	return nil
}

func (d *Dispatcher) FocusStop(ctx context.Context) error {
	c, err := d.active()
	if err != nil {
		return err
	}
	if f, ok := c.(Focuser); ok {
		return f.FocusStop(ctx)
	}
	return nil
}

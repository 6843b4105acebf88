// Package ndi holds stubs for NDI camera control. Real support
// needs the proprietary NDI SDK linked via cgo, which this build
// does not carry, so every operation reports the camera as
// unreachable.
package ndi

import (
	"context"
	"fmt"
	"log/slog"

	"ptzhub/internal/ptz"
)

// Source describes a discoverable NDI sender on the network.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Finder would wrap NDIlib_find_instance_t.
type Finder struct {
	log *slog.Logger
}

func NewFinder(log *slog.Logger) *Finder {
	log.Warn("NDI SDK not linked, source discovery unavailable")
	return &Finder{log: log}
}

func (f *Finder) Sources() []Source {
	return nil
}

// Controller would wrap the NDIlib_recv_ptz_* functions.
type Controller struct{}

func NewController() *Controller {
	return &Controller{}
}

func errNotLinked() error {
	return fmt.Errorf("%w: NDI SDK not linked", ptz.ErrConnectionFailed)
}

func (c *Controller) MoveAbsolute(context.Context, float64, float64, float64) error {
	return errNotLinked()
}

func (c *Controller) MoveRelative(context.Context, float64, float64) error {
	return errNotLinked()
}

func (c *Controller) ZoomTo(context.Context, float64) error {
	return errNotLinked()
}

func (c *Controller) RecallPreset(context.Context, int) error {
	return errNotLinked()
}

func (c *Controller) StorePreset(context.Context, int) error {
	return errNotLinked()
}

func (c *Controller) Position(context.Context) (ptz.Position, error) {
	return ptz.Position{}, errNotLinked()
}

func (c *Controller) TestConnection(context.Context) error {
	return errNotLinked()
}

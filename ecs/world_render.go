package ecs

import "github.com/hajimehoshi/ebiten/v2"

// Camera maps world units to screen pixels.
type Camera struct {
	X    float64
	Y    float64
	Zoom float64
}

// WorldToScreen converts a world position to screen pixels.
func (c Camera) WorldToScreen(x, y float64) (float64, float64) {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return (x - c.X) * zoom, (y - c.Y) * zoom
}

// ScreenToWorld converts screen pixels to a world position.
func (c Camera) ScreenToWorld(x, y float64) (float64, float64) {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return x/zoom + c.X, y/zoom + c.Y
}

// RenderSystem draws ECS entities each frame.
type RenderSystem interface {
	Draw(w *World, screen *ebiten.Image, cam Camera)
}

// AddRenderer registers a draw-only system. Systems added with AddSystem
// that also implement RenderSystem are drawn without registering here.
func (w *World) AddRenderer(r RenderSystem) {
	if w == nil || r == nil {
		return
	}
	w.renderers = append(w.renderers, r)
}

// Draw calls render-capable systems in update order, then the registered
// renderers in registration order.
func (w *World) Draw(screen *ebiten.Image, cam Camera) {
	if w == nil || screen == nil {
		return
	}
	for _, s := range w.systems {
		if rs, ok := s.(RenderSystem); ok {
			rs.Draw(w, screen, cam)
		}
	}
	for _, r := range w.renderers {
		r.Draw(w, screen, cam)
	}
}

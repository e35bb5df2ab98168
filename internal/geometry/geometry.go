// Package geometry converts on-screen element boxes into the coordinate space
// of the drag surface. Every function here is pure and recomputes from the
// current layout on each call.
package geometry

import "wordmatch-service/internal/domain"

// Point is a position in some 2-D coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is an axis-aligned box in screen (client) coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.Left, Y: r.Top}
}

// Center returns the midpoint of the box.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Contains reports whether p lies inside the box (right and bottom edges excluded).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Left+r.Width &&
		p.Y >= r.Top && p.Y < r.Top+r.Height
}

// Layout exposes the current on-screen boxes of the drag surface and of each
// item's connector.
type Layout interface {
	SurfaceRect() Rect
	ConnectorRect(ref domain.ItemRef) Rect
}

// ToLocal converts a client-space point into drag-surface-local coordinates.
func ToLocal(surface Rect, client Point) Point {
	return client.Sub(surface.Origin())
}

// ConnectorPosition returns the center of the item's connector relative to the
// drag surface. Callers must only ask for items that are rendered.
func ConnectorPosition(layout Layout, ref domain.ItemRef) Point {
	return ToLocal(layout.SurfaceRect(), layout.ConnectorRect(ref).Center())
}

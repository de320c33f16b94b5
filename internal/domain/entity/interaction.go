package entity

// Rect is an element bounding box in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the point a simulated pointer aims at.
func (r Rect) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

type MouseEventType string

const (
	MouseDown MouseEventType = "mousedown"
	MouseUp   MouseEventType = "mouseup"
)

type MouseEvent struct {
	Type    MouseEventType `json:"type"`
	ClientX float64        `json:"clientX"`
	ClientY float64        `json:"clientY"`
}

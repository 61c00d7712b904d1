package game

import (
	"math"

	"github.com/annel0/alien-planet/internal/vec"
)

const (
	cameraLerp = 0.1
	zoomStep   = 0.1
	minZoom    = 0.5
	maxZoom    = 2.0
)

// Viewport - размер холста в экранных пикселях
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultViewport используется, пока клиент не сообщил свой размер
var DefaultViewport = Viewport{Width: 1280, Height: 720}

// Camera - левый верхний угол видимой области в мировых координатах и масштаб
type Camera struct {
	Pos  vec.Vec2Float `json:"pos"`
	Zoom float64       `json:"zoom"`
}

func NewCamera() Camera {
	return Camera{Zoom: 1}
}

// Follow сдвигает камеру к цели, удерживая её в центре экрана
func (c *Camera) Follow(target vec.Vec2Float, view Viewport) {
	want := vec.Vec2Float{
		X: target.X - view.Width/2/c.Zoom,
		Y: target.Y - view.Height/2/c.Zoom,
	}
	c.Pos = c.Pos.Add(want.Sub(c.Pos).Mul(cameraLerp))
}

// ZoomBy меняет масштаб на steps шагов, сохраняя мировую точку в центре экрана
func (c *Camera) ZoomBy(steps int, view Viewport) {
	if steps == 0 {
		return
	}
	oldZoom := c.Zoom
	c.Zoom = math.Max(minZoom, math.Min(maxZoom, c.Zoom+float64(steps)*zoomStep))

	center := vec.Vec2Float{
		X: c.Pos.X + view.Width/2/oldZoom,
		Y: c.Pos.Y + view.Height/2/oldZoom,
	}
	c.Pos = vec.Vec2Float{
		X: center.X - view.Width/2/c.Zoom,
		Y: center.Y - view.Height/2/c.Zoom,
	}
}

// ScreenToWorld переводит экранную точку в мировые координаты
func (c *Camera) ScreenToWorld(p vec.Vec2Float) vec.Vec2Float {
	return vec.Vec2Float{X: p.X/c.Zoom + c.Pos.X, Y: p.Y/c.Zoom + c.Pos.Y}
}

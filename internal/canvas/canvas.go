// Package canvas is the drawing surface: a fixed size raster that freehand strokes are painted on.
package canvas

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600
	// LineWidth of every stroke in logical pixels
	LineWidth = 3
)

var (
	ErrNotDrawing = errors.New("no stroke in progress")

	White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Black = color.RGBA{A: 0xff}
)

type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

// Point is a position in either display or logical units
type Point struct {
	X, Y float32
}

// Size is the extent of the area the canvas is displayed in.
type Size struct {
	Width, Height float32
}

// Canvas is safe for concurrent use; the UI paints while a submission exports.
type Canvas struct {
	mu      sync.Mutex
	img     *image.RGBA
	color   color.RGBA
	state   State
	last    Point
	version uint64
}

func New(width, height int) *Canvas {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	c := &Canvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		color: Black,
	}
	c.fillWhite()
	return c
}

func (c *Canvas) Size() (int, int) {
	bounds := c.img.Bounds()
	return bounds.Dx(), bounds.Dy()
}

func (c *Canvas) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Canvas) Color() color.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}

// SetColor changes the color of strokes drawn from now on.
func (c *Canvas) SetColor(col color.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.color = col
}

// Version increases on every change to the pixels.
func (c *Canvas) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// ToLogical maps a display position to canvas pixels, each axis scaled independently.
// A zero display size is treated as the canvas size.
func (c *Canvas) ToLogical(screen Point, display Size) Point {
	width, height := c.Size()
	return Point{
		X: scale(screen.X, float32(width), display.Width),
		Y: scale(screen.Y, float32(height), display.Height),
	}
}

func scale(v, logical, display float32) float32 {
	if display <= 0 {
		return v
	}
	return v * logical / display
}

func (c *Canvas) BeginStroke(screen Point, display Size) {
	p := c.ToLogical(screen, display)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Drawing
	c.last = p
}

// ExtendStroke paints a segment from the previous point to screen.
func (c *Canvas) ExtendStroke(screen Point, display Size) error {
	p := c.ToLogical(screen, display)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Drawing {
		return ErrNotDrawing
	}
	strokeSegment(c.img, c.last, p, LineWidth, c.color)
	c.last = p
	c.version++
	return nil
}

// EndStroke is a no-op when idle.
func (c *Canvas) EndStroke() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Idle
}

// Clear repaints the whole surface white and abandons any stroke in progress.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fillWhite()
	c.state = Idle
	c.version++
}

func (c *Canvas) fillWhite() {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(White), image.Point{}, draw.Src)
}

// Snapshot returns a copy of the current pixels.
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	dst := image.NewRGBA(c.img.Bounds())
	copy(dst.Pix, c.img.Pix)
	return dst
}

// IsBlank reports whether nothing but white has been painted.
func (c *Canvas) IsBlank() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := 0; i < len(c.img.Pix); i += 4 {
		if c.img.Pix[i] != 0xff || c.img.Pix[i+1] != 0xff || c.img.Pix[i+2] != 0xff {
			return false
		}
	}
	return true
}

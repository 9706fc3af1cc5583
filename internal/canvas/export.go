package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/at-ishikawa/inkcalc/internal/drawing"
)

const JPEGQuality = 100

// inkThreshold ignores faint antialiasing when previewing
const inkThreshold = 3*0xff - 96

// Flatten composites src onto an opaque white background of the same size.
func Flatten(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	return dst
}

// EncodeDataURL flattens img onto white and encodes it as a JPEG data URL.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Flatten(img), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("jpeg.Encode > %w", err)
	}
	return drawing.EncodeDataURL("image/jpeg", buf.Bytes()), nil
}

// Export serializes the current surface the way it is submitted for solving.
func (c *Canvas) Export() (string, error) {
	return EncodeDataURL(c.Snapshot())
}

// Cell is the preview of one block of pixels
type Cell struct {
	Ink   bool
	Color color.RGBA
}

// Preview downsamples the surface into cols x rows cells.
// A cell shows the darkest ink found in its block.
func (c *Canvas) Preview(cols, rows int) [][]Cell {
	if cols <= 0 || rows <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	bounds := c.img.Bounds()
	cells := make([][]Cell, rows)
	for row := range rows {
		cells[row] = make([]Cell, cols)
		y0 := row * bounds.Dy() / rows
		y1 := max((row+1)*bounds.Dy()/rows, y0+1)
		for col := range cols {
			x0 := col * bounds.Dx() / cols
			x1 := max((col+1)*bounds.Dx()/cols, x0+1)
			cells[row][col] = c.darkest(image.Rect(x0, y0, x1, y1).Intersect(bounds))
		}
	}
	return cells
}

func (c *Canvas) darkest(block image.Rectangle) Cell {
	var cell Cell
	best := inkThreshold
	for y := block.Min.Y; y < block.Max.Y; y++ {
		for x := block.Min.X; x < block.Max.X; x++ {
			px := c.img.RGBAAt(x, y)
			lum := int(px.R) + int(px.G) + int(px.B)
			if lum < best {
				best = lum
				cell = Cell{Ink: true, Color: px}
			}
		}
	}
	return cell
}

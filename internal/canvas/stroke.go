package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic Bézier control points so four curves approximate a circle
const kappa = 0.5522848

// strokeSegment paints a line from p0 to p1 with round caps.
// Every segment carries a disc at each end, so consecutive segments join round.
func strokeSegment(dst *image.RGBA, p0, p1 Point, width float32, col color.RGBA) {
	radius := width / 2
	src := image.NewUniform(col)

	fill(dst, src, func(z *vector.Rasterizer) { disc(z, p0, radius) })
	if p0 == p1 {
		return
	}
	fill(dst, src, func(z *vector.Rasterizer) { quad(z, p0, p1, radius) })
	fill(dst, src, func(z *vector.Rasterizer) { disc(z, p1, radius) })
}

// fill rasterizes each shape on its own so overlapping paths never cancel out.
func fill(dst *image.RGBA, src image.Image, path func(z *vector.Rasterizer)) {
	bounds := dst.Bounds()
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	path(z)
	z.Draw(dst, bounds, src, image.Point{})
}

func disc(z *vector.Rasterizer, center Point, r float32) {
	cx, cy := center.X, center.Y
	k := kappa * r

	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()
}

// quad is the body of the segment: a rectangle of half width r around p0-p1
func quad(z *vector.Rasterizer, p0, p1 Point, r float32) {
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	length := float32(math.Hypot(float64(dx), float64(dy)))
	nx, ny := -dy/length*r, dx/length*r

	z.MoveTo(p0.X+nx, p0.Y+ny)
	z.LineTo(p1.X+nx, p1.Y+ny)
	z.LineTo(p1.X-nx, p1.Y-ny)
	z.LineTo(p0.X-nx, p0.Y-ny)
	z.ClosePath()
}

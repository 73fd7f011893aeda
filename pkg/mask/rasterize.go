package mask

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
)

// StrokeWidth is the diameter, in pixels, of a brush stroke.
const StrokeWidth = 20

var (
	black = color.RGBA{A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Rasterize paints req onto a width×height black raster. Selected pixels are
// white. Coordinates outside the raster are clipped.
func Rasterize(width, height int, req Request) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: raster size %dx%d", ErrInvalidMaskRequest, width, height)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: black}, image.Point{}, draw.Src)

	switch req.Kind {
	case KindBox:
		paintBox(img, *req.Box)
	case KindBrush:
		for _, stroke := range req.Strokes {
			paintStroke(img, stroke, StrokeWidth/2.0)
		}
	}
	return img, nil
}

func paintBox(img *image.RGBA, b Box) {
	x0, x1 := b.X, b.X+b.Width
	y0, y1 := b.Y, b.Y+b.Height
	if math.IsNaN(x0) || math.IsNaN(x1) || math.IsNaN(y0) || math.IsNaN(y1) {
		return
	}
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	ix0, ix1 := round(clamp(x0, -1, w+1)), round(clamp(x1, -1, w+1))
	iy0, iy1 := round(clamp(y0, -1, h+1)), round(clamp(y1, -1, h+1))
	// inclusive on every edge
	r := image.Rect(ix0, iy0, ix1+1, iy1+1).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(img, r, &image.Uniform{C: white}, image.Point{}, draw.Src)
}

func paintStroke(img *image.RGBA, stroke []Point, radius float64) {
	if len(stroke) < 2 {
		return
	}
	for i := 1; i < len(stroke); i++ {
		paintSegment(img, stroke[i-1], stroke[i], radius)
	}
}

// paintSegment whitens every pixel within radius of the segment a-b.
func paintSegment(img *image.RGBA, a, b Point, radius float64) {
	if !finite(a) || !finite(b) {
		return
	}
	if !representable(a) || !representable(b) {
		// Only the part of the segment within radius of the raster can paint.
		bounds := img.Bounds()
		margin := radius + 1
		var ok bool
		a, b, ok = clipSegment(a, b,
			float64(bounds.Min.X)-margin, float64(bounds.Max.X-1)+margin,
			float64(bounds.Min.Y)-margin, float64(bounds.Max.Y-1)+margin)
		if !ok {
			return
		}
	}
	minX := int(math.Floor(math.Min(a.X, b.X) - radius))
	maxX := int(math.Ceil(math.Max(a.X, b.X) + radius))
	minY := int(math.Floor(math.Min(a.Y, b.Y) - radius))
	maxY := int(math.Ceil(math.Max(a.Y, b.Y) + radius))
	area := image.Rect(minX, minY, maxX+1, maxY+1).Intersect(img.Bounds())
	if area.Empty() {
		return
	}

	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	r2 := radius * radius
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			px, py := float64(x), float64(y)
			t := 0.0
			if lenSq > 0 {
				t = ((px-a.X)*dx + (py-a.Y)*dy) / lenSq
				t = math.Max(0, math.Min(1, t))
			}
			cx, cy := a.X+t*dx-px, a.Y+t*dy-py
			if cx*cx+cy*cy <= r2 {
				img.SetRGBA(x, y, white)
			}
		}
	}
}

// representableLimit bounds coordinates painted without clipping first.
const representableLimit = 1 << 20

func representable(p Point) bool {
	return math.Abs(p.X) <= representableLimit && math.Abs(p.Y) <= representableLimit
}

// clipSegment returns the part of a-b inside the window. The segment is
// re-anchored at the point of its line closest to the window centre, so the
// clipped endpoints stay exact however far away a and b are.
func clipSegment(a, b Point, xmin, xmax, ymin, ymax float64) (Point, Point, bool) {
	// Scale by a power of two so every product below stays finite.
	m := math.Max(math.Max(math.Abs(a.X), math.Abs(a.Y)), math.Max(math.Abs(b.X), math.Abs(b.Y)))
	_, e := math.Frexp(m)
	sa := Point{X: math.Ldexp(a.X, -e), Y: math.Ldexp(a.Y, -e)}
	sb := Point{X: math.Ldexp(b.X, -e), Y: math.Ldexp(b.Y, -e)}

	dx, dy := sb.X-sa.X, sb.Y-sa.Y
	n := math.Hypot(dx, dy)
	if n == 0 {
		return a, b, false
	}
	ux, uy := dx/n, dy/n

	c := Point{X: (xmin + xmax) / 2, Y: (ymin + ymax) / 2}
	sc := Point{X: math.Ldexp(c.X, -e), Y: math.Ldexp(c.Y, -e)}
	// signed distance of c from the line: (d × (c - a)) / |d|
	h := (dx*sc.Y - dy*sc.X - diffOfProducts(sb.X, sa.Y, sb.Y, sa.X)) / n
	h = math.Ldexp(h, e)
	foot := Point{X: c.X + h*uy, Y: c.Y - h*ux}

	s0 := (a.X-foot.X)*ux + (a.Y-foot.Y)*uy
	s1 := (b.X-foot.X)*ux + (b.Y-foot.Y)*uy
	if s1 < s0 {
		s0, s1 = s1, s0
	}

	// Liang-Barsky on foot + s*u
	edges := [4][2]float64{
		{-ux, foot.X - xmin},
		{ux, xmax - foot.X},
		{-uy, foot.Y - ymin},
		{uy, ymax - foot.Y},
	}
	for _, edge := range edges {
		p, q := edge[0], edge[1]
		switch {
		case p == 0:
			if q < 0 {
				return a, b, false
			}
		case p < 0:
			s0 = math.Max(s0, q/p)
		default:
			s1 = math.Min(s1, q/p)
		}
	}
	if s0 > s1 {
		return a, b, false
	}
	return Point{X: foot.X + s0*ux, Y: foot.Y + s0*uy}, Point{X: foot.X + s1*ux, Y: foot.Y + s1*uy}, true
}

// diffOfProducts returns a*b - c*d with a single rounding error.
func diffOfProducts(a, b, c, d float64) float64 {
	w := c * d
	err := math.FMA(-c, d, w)
	return math.FMA(a, b, -w) + err
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func round(v float64) int {
	return int(math.Round(v))
}

// EncodePNG encodes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode mask: %w", err)
	}
	return buf.Bytes(), nil
}

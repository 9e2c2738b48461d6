package classicbloom

import "github.com/chewxy/math32"

// Rect is an active sub-rectangle within a buffer's backing extent.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle has non-positive area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Image stores a linear-light RGB image in float32 with a backing extent that
// may be larger than the active viewport rectangle. All sampling is clamped to
// the viewport; the padding region is never read.
type Image struct {
	ExtentW int
	ExtentH int
	Rect    Rect
	Pix     []float32 // RGB triplets, row-major over the full extent
}

// NewImage allocates a zeroed image with the given backing extent and active
// rectangle.
func NewImage(extentW, extentH int, rect Rect) *Image {
	return &Image{
		ExtentW: extentW,
		ExtentH: extentH,
		Rect:    rect,
		Pix:     make([]float32, extentW*extentH*3),
	}
}

// newWorkImage allocates an intermediate pass target whose extent equals its
// viewport, the invariant all internal buffers hold.
func newWorkImage(w, h int) *Image {
	return NewImage(w, h, Rect{W: w, H: h})
}

// Viewport returns the image's extent and active rectangle for coordinate
// mapping.
func (m *Image) Viewport() Viewport {
	return Viewport{ExtentW: m.ExtentW, ExtentH: m.ExtentH, Rect: m.Rect}
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	out := &Image{ExtentW: m.ExtentW, ExtentH: m.ExtentH, Rect: m.Rect, Pix: make([]float32, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

type rgb struct {
	r, g, b float32
}

func (c rgb) add(o rgb) rgb       { return rgb{c.r + o.r, c.g + o.g, c.b + o.b} }
func (c rgb) mul(o rgb) rgb       { return rgb{c.r * o.r, c.g * o.g, c.b * o.b} }
func (c rgb) scale(s float32) rgb { return rgb{c.r * s, c.g * s, c.b * s} }
func (c rgb) lerp(o rgb, t float32) rgb {
	return rgb{lerpf(c.r, o.r, t), lerpf(c.g, o.g, t), lerpf(c.b, o.b, t)}
}

func (c rgb) clamp01() rgb {
	return rgb{clampf(c.r, 0, 1), clampf(c.g, 0, 1), clampf(c.b, 0, 1)}
}

func (c rgb) maxZero() rgb {
	return rgb{math32.Max(c.r, 0), math32.Max(c.g, 0), math32.Max(c.b, 0)}
}

func (m *Image) at(x, y int) rgb {
	i := (y*m.ExtentW + x) * 3
	return rgb{m.Pix[i], m.Pix[i+1], m.Pix[i+2]}
}

func (m *Image) set(x, y int, c rgb) {
	i := (y*m.ExtentW + x) * 3
	m.Pix[i] = c.r
	m.Pix[i+1] = c.g
	m.Pix[i+2] = c.b
}

// sample bilinearly interpolates at texture UV coordinates (relative to the
// full extent). Texel reads are clamped to the viewport rectangle, which
// matches clamp-addressed sampling of a texture whose valid data stops at the
// viewport edge.
func (m *Image) sample(u, v float32) rgb {
	fx := u*float32(m.ExtentW) - 0.5
	fy := v*float32(m.ExtentH) - 0.5
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	x1 := m.clampX(x0 + 1)
	y1 := m.clampY(y0 + 1)
	x0 = m.clampX(x0)
	y0 = m.clampY(y0)

	c00 := m.at(x0, y0)
	c10 := m.at(x1, y0)
	c01 := m.at(x0, y1)
	c11 := m.at(x1, y1)

	top := c00.lerp(c10, tx)
	bot := c01.lerp(c11, tx)
	return top.lerp(bot, ty)
}

// sampleOffset samples at uv displaced by a texel offset, the idiom every
// multi-tap filter in the pipeline uses.
func (m *Image) sampleOffset(u, v, dxTexels, dyTexels float32) rgb {
	return m.sample(u+dxTexels/float32(m.ExtentW), v+dyTexels/float32(m.ExtentH))
}

func (m *Image) clampX(x int) int {
	if x < m.Rect.X {
		return m.Rect.X
	}
	if x > m.Rect.X+m.Rect.W-1 {
		return m.Rect.X + m.Rect.W - 1
	}
	return x
}

func (m *Image) clampY(y int) int {
	if y < m.Rect.Y {
		return m.Rect.Y
	}
	if y > m.Rect.Y+m.Rect.H-1 {
		return m.Rect.Y + m.Rect.H - 1
	}
	return y
}

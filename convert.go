package classicbloom

import (
	"image"
	"image/color"
)

// FromImage converts a standard library image into a linear-light float32
// buffer with the viewport covering the whole image. When linearize is true
// the pixels are treated as sRGB-encoded and converted through the inverse
// OETF; otherwise the 8/16-bit values are taken as already linear.
func FromImage(src image.Image, linearize bool) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := NewImage(w, h, Rect{W: w, H: h})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA64Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA64)
			r := float32(c.R) / 65535.0
			g := float32(c.G) / 65535.0
			bb := float32(c.B) / 65535.0
			if linearize {
				r = srgbInvOetf(r)
				g = srgbInvOetf(g)
				bb = srgbInvOetf(bb)
			}
			out.set(x, y, rgb{r, g, bb})
		}
	}
	return out
}

// ToImage converts the viewport of m to an 8-bit image. When encode is true
// the linear values are taken through the sRGB OETF; values outside [0,1] are
// clamped either way.
func ToImage(m *Image, encode bool) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Rect.W, m.Rect.H))
	for y := 0; y < m.Rect.H; y++ {
		for x := 0; x < m.Rect.W; x++ {
			c := m.at(m.Rect.X+x, m.Rect.Y+y).clamp01()
			if encode {
				c = rgb{srgbOetf(c.r), srgbOetf(c.g), srgbOetf(c.b)}
			}
			out.SetNRGBA(x, y, color.NRGBA{
				R: uint8(c.r*255 + 0.5),
				G: uint8(c.g*255 + 0.5),
				B: uint8(c.b*255 + 0.5),
				A: 0xFF,
			})
		}
	}
	return out
}

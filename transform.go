package classicbloom

// Viewport pairs a buffer's backing extent with its active rectangle. It is
// the unit every coordinate transform is derived from.
type Viewport struct {
	ExtentW int
	ExtentH int
	Rect    Rect
}

// ScreenTransform is an affine scale+bias map over 2D coordinates. Transforms
// compose left to right, so mapping an output texel position into an input's
// texture UV is
//
//	TexelToViewportUV(out).Then(ViewportUVToTextureUV(in))
//
// A mismatch in this composition shows up as visible misalignment between
// passes, so every pass that samples a differently sized buffer must build its
// transform this way rather than assuming extent == viewport.
type ScreenTransform struct {
	ScaleX, ScaleY float32
	BiasX, BiasY   float32
}

// Apply maps a coordinate pair through the transform.
func (t ScreenTransform) Apply(x, y float32) (float32, float32) {
	return x*t.ScaleX + t.BiasX, y*t.ScaleY + t.BiasY
}

// Then composes t with next, yielding a transform equivalent to applying t
// first and next second.
func (t ScreenTransform) Then(next ScreenTransform) ScreenTransform {
	return ScreenTransform{
		ScaleX: t.ScaleX * next.ScaleX,
		ScaleY: t.ScaleY * next.ScaleY,
		BiasX:  t.BiasX*next.ScaleX + next.BiasX,
		BiasY:  t.BiasY*next.ScaleY + next.BiasY,
	}
}

// TexelToViewportUV maps texel positions (pixel centers, in extent
// coordinates) of v to viewport-normalized [0,1] UV.
func TexelToViewportUV(v Viewport) ScreenTransform {
	sx := 1 / float32(v.Rect.W)
	sy := 1 / float32(v.Rect.H)
	return ScreenTransform{
		ScaleX: sx,
		ScaleY: sy,
		BiasX:  -float32(v.Rect.X) * sx,
		BiasY:  -float32(v.Rect.Y) * sy,
	}
}

// ViewportUVToTextureUV maps viewport-normalized UV of v to texture UV over
// the full backing extent.
func ViewportUVToTextureUV(v Viewport) ScreenTransform {
	return ScreenTransform{
		ScaleX: float32(v.Rect.W) / float32(v.ExtentW),
		ScaleY: float32(v.Rect.H) / float32(v.ExtentH),
		BiasX:  float32(v.Rect.X) / float32(v.ExtentW),
		BiasY:  float32(v.Rect.Y) / float32(v.ExtentH),
	}
}

// MapViewports builds the texel-position-to-texture-UV transform used when a
// pass writing into out samples from in.
func MapViewports(out, in Viewport) ScreenTransform {
	return TexelToViewportUV(out).Then(ViewportUVToTextureUV(in))
}

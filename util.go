package classicbloom

import "github.com/chewxy/math32"

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerpf(a, b, t float32) float32 { return a + (b-a)*t }

// luminance is the Rec.709 luma of a linear-light color.
func luminance(c rgb) float32 {
	return 0.2126*c.r + 0.7152*c.g + 0.0722*c.b
}

func max3(a, b, c float32) float32 {
	return math32.Max(a, math32.Max(b, c))
}

func smoothstepf(edge0, edge1, x float32) float32 {
	t := clampf((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// ceilDiv divides and rounds up, flooring at zero for non-positive input.
func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func srgbInvOetf(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math32.Pow((v+0.055)/1.055, 2.4)
}

func srgbOetf(v float32) float32 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math32.Pow(v, 1.0/2.4) - 0.055
}

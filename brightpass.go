package classicbloom

// softFocusThreshold replaces the configured threshold in SoftFocus mode so
// the entire scene passes the bright filter.
const softFocusThreshold = 0.01

// downsampleDivisor converts a downsample scale into the integer divisor the
// working resolution is derived from: 2.0 = full resolution, 1.0 = half,
// 0.25 = eighth.
func downsampleDivisor(scale float32) int {
	scale = clampf(scale, 0.25, 2.0)
	d := int(2.0/scale + 0.5)
	if d < 1 {
		d = 1
	}
	return d
}

// effectiveThreshold resolves the bright-pass threshold for a mode.
func effectiveThreshold(p Parameters) float32 {
	if p.Mode == ModeSoftFocus {
		return softFocusThreshold
	}
	return p.Threshold
}

// brightPass filters src into a new outW x outH buffer keeping pixels whose
// luminance exceeds threshold and zeroing the rest. Negative channels are
// clamped so later passes only accumulate energy.
func brightPass(src *Image, outW, outH int, threshold float32) *Image {
	out := newWorkImage(outW, outH)
	t := MapViewports(out.Viewport(), src.Viewport())
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			u, v := t.Apply(float32(x)+0.5, float32(y)+0.5)
			c := src.sample(u, v).maxZero()
			if luminance(c) > threshold {
				out.set(x, y, c)
			}
		}
	}
	return out
}

package classicbloom

import "github.com/chewxy/math32"

// gaussianKernel returns normalized weights for taps samples centered on zero.
// taps must be odd; the supported widths are 5, 9 and 13.
func gaussianKernel(taps int) []float32 {
	half := taps / 2
	sigma := float32(half) * 0.5
	if sigma < 0.5 {
		sigma = 0.5
	}
	w := make([]float32, taps)
	var sum float32
	for i := range w {
		d := float32(i - half)
		w[i] = math32.Exp(-d * d / (2 * sigma * sigma))
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

// blurPass applies one directional convolution of src into a new buffer.
// radius is in texels at src resolution; taps controls the kernel width.
func blurPass(src *Image, dirX, dirY, radius float32, taps int) *Image {
	out := newWorkImage(src.Rect.W, src.Rect.H)
	weights := gaussianKernel(taps)
	half := taps / 2
	step := radius / float32(half)
	t := MapViewports(out.Viewport(), src.Viewport())
	for y := 0; y < out.Rect.H; y++ {
		for x := 0; x < out.Rect.W; x++ {
			u, v := t.Apply(float32(x)+0.5, float32(y)+0.5)
			var acc rgb
			for i, w := range weights {
				d := float32(i-half) * step
				acc = acc.add(src.sampleOffset(u, v, dirX*d, dirY*d).scale(w))
			}
			out.set(x, y, acc)
		}
	}
	return out
}

// gaussianBlur runs passes iterations of separable horizontal+vertical blur,
// feeding each pass's output into the next.
func gaussianBlur(src *Image, passes int, radius float32, taps int) *Image {
	cur := src
	for i := 0; i < passes; i++ {
		tmp := blurPass(cur, 1, 0, radius, taps)
		cur = blurPass(tmp, 0, 1, radius, taps)
	}
	return cur
}

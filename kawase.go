package classicbloom

import "github.com/chewxy/math32"

// Kawase-style pyramid bloom: repeated half-resolution downsampling with the
// brightness threshold folded into level 0, then progressive tent-filtered
// upsample-and-accumulate from the smallest level back up. Both walks are
// strictly sequential; every level depends on its neighbor.

// kawasePyramid holds the per-invocation mip chain. Level 0 is the largest
// (half the working resolution), the last level the smallest.
type kawasePyramid struct {
	mips []*Image // downsample phase outputs
	ups  []*Image // upsample phase outputs, ups[i] matches mips[i] in size
}

// kawaseThreshold applies the brightness cutoff used at pyramid level 0.
// With knee > 0 the transition is a soft quadratic ramp; knee == 0 is a hard
// cutoff.
func kawaseThreshold(c rgb, threshold, knee float32) rgb {
	br := max3(c.r, c.g, c.b)
	kneeW := threshold * knee
	contribution := br - threshold
	if kneeW > 0 {
		soft := clampf(br-threshold+kneeW, 0, 2*kneeW)
		soft = soft * soft / (4*kneeW + 1e-4)
		if soft > contribution {
			contribution = soft
		}
	}
	if contribution <= 0 {
		return rgb{}
	}
	return c.scale(contribution / math32.Max(br, 1e-4))
}

// karisWeight dampens fireflies when averaging a 4-sample group.
func karisWeight(c rgb) float32 {
	return 1 / (1 + luminance(c))
}

// downsample13 runs the 13-tap box-cluster filter of src into a buffer of
// outW x outH. At level 0 (karis true) each 4-sample group is Karis-averaged
// and the threshold is applied to the result.
func downsample13(src *Image, outW, outH int, karis bool, threshold, knee float32) *Image {
	out := newWorkImage(outW, outH)
	t := MapViewports(out.Viewport(), src.Viewport())
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			u, v := t.Apply(float32(x)+0.5, float32(y)+0.5)

			a := src.sampleOffset(u, v, -2, 2)
			b := src.sampleOffset(u, v, 0, 2)
			c := src.sampleOffset(u, v, 2, 2)
			d := src.sampleOffset(u, v, -2, 0)
			e := src.sampleOffset(u, v, 0, 0)
			f := src.sampleOffset(u, v, 2, 0)
			g := src.sampleOffset(u, v, -2, -2)
			h := src.sampleOffset(u, v, 0, -2)
			i := src.sampleOffset(u, v, 2, -2)
			j := src.sampleOffset(u, v, -1, 1)
			k := src.sampleOffset(u, v, 1, 1)
			l := src.sampleOffset(u, v, -1, -1)
			m := src.sampleOffset(u, v, 1, -1)

			var col rgb
			if karis {
				g0 := a.add(b).add(d).add(e).scale(0.25)
				g1 := b.add(c).add(e).add(f).scale(0.25)
				g2 := g.add(h).add(d).add(e).scale(0.25)
				g3 := h.add(i).add(e).add(f).scale(0.25)
				g4 := j.add(k).add(l).add(m).scale(0.25)
				w0 := karisWeight(g0)
				w1 := karisWeight(g1)
				w2 := karisWeight(g2)
				w3 := karisWeight(g3)
				w4 := karisWeight(g4)
				col = g0.scale(w0).add(g1.scale(w1)).add(g2.scale(w2)).add(g3.scale(w3)).add(g4.scale(w4))
				col = col.scale(1 / (w0 + w1 + w2 + w3 + w4))
				col = kawaseThreshold(col.maxZero(), threshold, knee)
			} else {
				col = e.scale(0.125)
				col = col.add(a.add(c).add(g).add(i).scale(0.03125))
				col = col.add(b.add(d).add(f).add(h).scale(0.0625))
				col = col.add(j.add(k).add(l).add(m).scale(0.125))
			}
			out.set(x, y, col)
		}
	}
	return out
}

// tentSample applies the 9-tap tent filter to src around uv with a filter
// radius given in texture UV units.
func tentSample(src *Image, u, v, radius float32) rgb {
	rx := radius
	ry := radius

	sum := src.sample(u, v).scale(4)
	sum = sum.add(src.sample(u-rx, v).scale(2))
	sum = sum.add(src.sample(u+rx, v).scale(2))
	sum = sum.add(src.sample(u, v-ry).scale(2))
	sum = sum.add(src.sample(u, v+ry).scale(2))
	sum = sum.add(src.sample(u-rx, v-ry))
	sum = sum.add(src.sample(u+rx, v-ry))
	sum = sum.add(src.sample(u-rx, v+ry))
	sum = sum.add(src.sample(u+rx, v+ry))
	return sum.scale(1.0 / 16.0)
}

// upsampleInto blends the tent-filtered smaller level with the same-sized
// downsample level: out = base + tent(smaller).
func upsampleInto(smaller, base *Image, outW, outH int, radius float32) *Image {
	out := newWorkImage(outW, outH)
	tSmall := MapViewports(out.Viewport(), smaller.Viewport())
	tBase := MapViewports(out.Viewport(), base.Viewport())
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5
			su, sv := tSmall.Apply(px, py)
			bu, bv := tBase.Apply(px, py)
			c := tentSample(smaller, su, sv, radius).add(base.sample(bu, bv))
			out.set(x, y, c)
		}
	}
	return out
}

// buildKawasePyramid downsamples src mipCount times, halving each level and
// flooring extents at 1x1, then reconstructs mipCount-1 upsample levels from
// smallest to largest.
func buildKawasePyramid(src *Image, workW, workH, mipCount int, threshold, knee, radius float32) *kawasePyramid {
	p := &kawasePyramid{}

	cur := src
	w, h := workW, workH
	for mip := 0; mip < mipCount; mip++ {
		w = maxInt(1, ceilDiv(w, 2))
		h = maxInt(1, ceilDiv(h, 2))
		level := downsample13(cur, w, h, mip == 0, threshold, knee)
		p.mips = append(p.mips, level)
		cur = level
	}

	up := p.mips[len(p.mips)-1]
	for mip := mipCount - 2; mip >= 0; mip-- {
		base := p.mips[mip]
		up = upsampleInto(up, base, base.Rect.W, base.Rect.H, radius)
		p.ups = append(p.ups, up)
	}
	return p
}

// kawaseBloom produces the pyramid-blurred bloom buffer at the working
// resolution. The pipeline falls back to the Gaussian engine before calling
// this when the pyramid passes are unavailable.
func kawaseBloom(scene *Image, workW, workH int, p Parameters) *Image {
	knee := float32(0)
	if p.SoftThreshold {
		knee = p.ThresholdKnee
	}
	pyr := buildKawasePyramid(scene, workW, workH, p.MipCount, p.Threshold, knee, p.FilterRadius)

	// One extra step carries the accumulated result back up to working
	// resolution, blended with level 0 which holds the threshold.
	top := pyr.ups[len(pyr.ups)-1]
	return upsampleInto(top, pyr.mips[0], workW, workH, p.FilterRadius)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

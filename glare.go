package classicbloom

import (
	"sync"

	"github.com/chewxy/math32"
)

// glareSamples is the fixed number of taps marched along each streak
// direction.
const glareSamples = 16

// glareAccumulateMax is the hard cap on simultaneous inputs to one
// accumulation pass. More streaks are folded in batches: the running
// accumulation occupies one slot, leaving room for three new streaks.
const glareAccumulateMax = 4

// glareStreak smears bright into a new buffer along (dirX, dirY) with
// exponential falloff over length texels.
func glareStreak(bright *Image, dirX, dirY, length, falloff float32) *Image {
	out := newWorkImage(bright.Rect.W, bright.Rect.H)
	t := MapViewports(out.Viewport(), bright.Viewport())
	for y := 0; y < out.Rect.H; y++ {
		for x := 0; x < out.Rect.W; x++ {
			u, v := t.Apply(float32(x)+0.5, float32(y)+0.5)
			var acc rgb
			var wsum float32
			for s := 0; s < glareSamples; s++ {
				ft := float32(s) / float32(glareSamples-1)
				w := math32.Exp(-falloff * ft)
				d := ft * length
				acc = acc.add(bright.sampleOffset(u, v, dirX*d, dirY*d).scale(w))
				wsum += w
			}
			out.set(x, y, acc.scale(1/wsum))
		}
	}
	return out
}

// glareStreakSet renders one streak buffer per direction. Directions are
// evenly spaced over 360 degrees plus the rotation offset. The streaks are
// independent of one another, so they are generated in parallel; the
// accumulation chain that follows is strictly sequential.
func glareStreakSet(bright *Image, count int, length, rotationDeg, falloff float32) []*Image {
	streaks := make([]*Image, count)
	step := 360.0 / float32(count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			angle := (step*float32(i) + rotationDeg) * math32.Pi / 180
			streaks[i] = glareStreak(bright, math32.Cos(angle), math32.Sin(angle), length, falloff)
		}(i)
	}
	wg.Wait()
	return streaks
}

// accumulatePass averages up to glareAccumulateMax input buffers of identical
// size into a new buffer.
func accumulatePass(inputs []*Image) *Image {
	first := inputs[0]
	out := newWorkImage(first.Rect.W, first.Rect.H)
	inv := 1 / float32(len(inputs))
	for y := 0; y < out.Rect.H; y++ {
		for x := 0; x < out.Rect.W; x++ {
			var acc rgb
			for _, in := range inputs {
				acc = acc.add(in.at(x, y))
			}
			out.set(x, y, acc.scale(inv))
		}
	}
	return out
}

// accumulateStreaks folds all streak buffers into one glare buffer. The first
// pass takes up to four streaks; each following pass takes the running
// accumulation plus up to three more until every streak is consumed.
func accumulateStreaks(streaks []*Image) *Image {
	n := len(streaks)
	batch := n
	if batch > glareAccumulateMax {
		batch = glareAccumulateMax
	}
	accum := accumulatePass(streaks[:batch])
	for start := batch; start < n; start += glareAccumulateMax - 1 {
		end := start + glareAccumulateMax - 1
		if end > n {
			end = n
		}
		inputs := make([]*Image, 0, glareAccumulateMax)
		inputs = append(inputs, accum)
		inputs = append(inputs, streaks[start:end]...)
		accum = accumulatePass(inputs)
	}
	return accum
}

// glareBloom runs the directional streak engine over the bright-pass buffer:
// per-direction streaks, batched accumulation, then a light two-pass blur to
// smooth stair-stepping along the streaks.
func glareBloom(bright *Image, p Parameters, divisor int) *Image {
	scaledLength := p.StreakLength / float32(divisor)
	streaks := glareStreakSet(bright, p.StreakCount, scaledLength, p.RotationOffset, p.Falloff)
	accum := accumulateStreaks(streaks)

	radius := p.Size * 0.05
	tmp := blurPass(accum, 1, 0, radius, 5)
	return blurPass(tmp, 0, 1, radius, 5)
}

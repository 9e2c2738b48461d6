package classicbloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlendFormulas(t *testing.T) {
	cases := []struct {
		mode BlendMode
		s, b float32
		want float32
	}{
		{BlendScreen, 0.5, 0.5, 0.75},
		{BlendScreen, 0, 0.3, 0.3},
		{BlendMultiply, 0.5, 0.5, 0.25},
		{BlendLighten, 0.3, 0.7, 0.7},
		{BlendLighten, 0.7, 0.3, 0.7},
		{BlendOverlay, 0.25, 0.5, 0.25},
		{BlendOverlay, 0.75, 0.5, 0.75},
		{BlendHardLight, 0.5, 0.25, 0.25},
	}
	for _, tc := range cases {
		got := blendRGB(tc.mode, rgb{tc.s, tc.s, tc.s}, rgb{tc.b, tc.b, tc.b})
		assert.InDelta(t, tc.want, got.r, 1e-5, "mode %d s=%v b=%v", tc.mode, tc.s, tc.b)
	}
}

func TestBlendModePureSelection(t *testing.T) {
	scene := newWorkImage(8, 8)
	bloom := newWorkImage(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			scene.set(x, y, rgb{0.4, 0.3, 0.2})
			bloom.set(x, y, rgb{0.6, 0.5, 0.4})
		}
	}
	p := DefaultParameters().normalized()
	p.UseSceneColor = false

	var prev *Image
	for _, mode := range []BlendMode{BlendScreen, BlendOverlay, BlendSoftLight, BlendHardLight, BlendLighten, BlendMultiply} {
		p.Blend = mode
		out := newWorkImage(8, 8)
		compositeBloom(out, scene, bloom, p, false)
		// Resolution never changes with the blend mode.
		assert.Equal(t, 8, out.Rect.W)
		assert.Equal(t, 8, out.Rect.H)
		if prev != nil && mode != BlendLighten {
			// Different formulas yield different pixels.
			assert.NotEqual(t, prev.at(4, 4), out.at(4, 4), "mode %d", mode)
		}
		prev = out
	}
}

func TestCompositeTintFlag(t *testing.T) {
	scene := newWorkImage(4, 4)
	bloom := newWorkImage(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			scene.set(x, y, rgb{0.2, 0.2, 0.2})
			bloom.set(x, y, rgb{1, 1, 1})
		}
	}

	p := DefaultParameters().normalized()
	p.UseSceneColor = false
	p.Tint = [3]float32{1, 0, 0}
	p.Intensity = 1

	out := newWorkImage(4, 4)
	compositeBloom(out, scene, bloom, p, false)
	c := out.at(2, 2)
	// Red-tinted bloom brightens red far more than blue.
	assert.Greater(t, c.r, c.b)
}

func TestCompositeSaturation(t *testing.T) {
	scene := newWorkImage(4, 4)
	bloom := newWorkImage(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			bloom.set(x, y, rgb{1, 0.2, 0.2})
		}
	}

	p := DefaultParameters().normalized()
	p.UseSceneColor = false
	p.Intensity = 1

	chroma := func(sat float32) float32 {
		p.Saturation = sat
		out := newWorkImage(4, 4)
		compositeBloom(out, scene, bloom, p, false)
		c := out.at(2, 2)
		return c.r - c.g
	}

	assert.InDelta(t, 0, chroma(0), 1e-5) // fully desaturated
	assert.Greater(t, chroma(2), chroma(1))
	assert.Greater(t, chroma(1), chroma(0.5))
}

func TestCompositeHighlightProtection(t *testing.T) {
	scene := newWorkImage(4, 4)
	bloom := newWorkImage(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			scene.set(x, y, rgb{0.95, 0.95, 0.95})
			bloom.set(x, y, rgb{0.8, 0.8, 0.8})
		}
	}

	p := DefaultParameters().normalized()
	p.UseSceneColor = false
	p.Intensity = 1

	unprotected := newWorkImage(4, 4)
	compositeBloom(unprotected, scene, bloom, p, false)

	p.ProtectHighlights = true
	p.HighlightProtection = 1
	protected := newWorkImage(4, 4)
	compositeBloom(protected, scene, bloom, p, false)

	assert.Less(t, protected.at(2, 2).r, unprotected.at(2, 2).r)
}

func TestSoftFocusBrightensUniformGray(t *testing.T) {
	s := rgb{0.5, 0.5, 0.5}
	b := rgb{0.5, 0.5, 0.5}
	out := softFocusBlend(s, b, 2.0)
	assert.Greater(t, out.r, s.r)
	assert.InDelta(t, out.r, out.g, 1e-6)
	assert.InDelta(t, out.g, out.b, 1e-6)

	// Intensity scales the fade-in monotonically.
	weaker := softFocusBlend(s, b, 1.0)
	assert.Less(t, weaker.r, out.r)
}

func TestCompositeShowBloomOnly(t *testing.T) {
	scene := newWorkImage(4, 4)
	bloom := newWorkImage(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			scene.set(x, y, rgb{0.3, 0.3, 0.3})
			bloom.set(x, y, rgb{0.25, 0.25, 0.25})
		}
	}

	p := DefaultParameters().normalized()
	p.UseSceneColor = false
	p.Intensity = 2
	p.ShowBloomOnly = true

	out := newWorkImage(4, 4)
	compositeBloom(out, scene, bloom, p, false)
	assert.InDelta(t, 0.5, out.at(1, 1).r, 1e-5)
}

func TestCompositeAdaptiveScaling(t *testing.T) {
	scene := newWorkImage(4, 4)
	bloom := newWorkImage(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			bloom.set(x, y, rgb{0.5, 0.5, 0.5})
		}
	}

	p := DefaultParameters().normalized()
	p.UseSceneColor = false
	p.Intensity = 1
	p.AdaptiveBrightness = true
	p.GameModeScale = 0.5

	interactive := newWorkImage(4, 4)
	compositeBloom(interactive, scene, bloom, p, true)
	preview := newWorkImage(4, 4)
	compositeBloom(preview, scene, bloom, p, false)

	// The interactive context gets the manual compensation, the preview
	// context does not.
	assert.Less(t, interactive.at(2, 2).r, preview.at(2, 2).r)
}

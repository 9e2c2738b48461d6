package classicbloom

// blendFunc combines one scene channel with one bloom channel. Both inputs are
// clamped to [0,1] before dispatch; the formulas are the standard photographic
// blends.
type blendFunc func(s, b float32) float32

var blendFuncs = [...]blendFunc{
	BlendScreen:    blendScreen,
	BlendOverlay:   blendOverlay,
	BlendSoftLight: blendSoftLight,
	BlendHardLight: blendHardLight,
	BlendLighten:   blendLighten,
	BlendMultiply:  blendMultiply,
}

func blendScreen(s, b float32) float32 { return 1 - (1-s)*(1-b) }

func blendOverlay(s, b float32) float32 {
	if s < 0.5 {
		return 2 * s * b
	}
	return 1 - 2*(1-s)*(1-b)
}

func blendSoftLight(s, b float32) float32 {
	return (1-2*b)*s*s + 2*b*s
}

func blendHardLight(s, b float32) float32 { return blendOverlay(b, s) }

func blendLighten(s, b float32) float32 {
	if b > s {
		return b
	}
	return s
}

func blendMultiply(s, b float32) float32 { return s * b }

func blendRGB(mode BlendMode, s, b rgb) rgb {
	f := blendFuncs[BlendScreen]
	if int(mode) >= 0 && int(mode) < len(blendFuncs) {
		f = blendFuncs[mode]
	}
	return rgb{f(s.r, b.r), f(s.g, b.g), f(s.b, b.b)}
}

// softFocusBlend is the dedicated SoftFocus path. It layers attenuated overlay
// and soft-light contributions on top of the scene and fades the result in by
// intensity, using the legacy tuning constants.
func softFocusBlend(s, b rgb, intensity float32) rgb {
	sc := s.clamp01()
	bc := b.clamp01()
	ov := blendRGB(BlendOverlay, sc, bc).scale(softFocusOverlayMultiplier)
	sl := blendRGB(BlendSoftLight, sc, bc).scale(softFocusSoftLightMultiplier)
	glow := s.add(ov.add(sl).scale(softFocusBlendStrength))
	return s.lerp(glow, clampf(intensity*softFocusFinalBlend, 0, 1))
}

// compositeBloom blends the bloom buffer onto the scene, writing every pixel
// of dst's viewport. Scene and bloom UVs are derived independently from the
// output viewport, so the three rectangles may all differ.
func compositeBloom(dst, scene, bloom *Image, p Parameters, interactive bool) {
	tScene := MapViewports(dst.Viewport(), scene.Viewport())
	tBloom := MapViewports(dst.Viewport(), bloom.Viewport())

	softFocus := p.Mode == ModeSoftFocus
	intensity := p.Intensity
	if softFocus {
		// SoftFocus bypasses the normal intensity scalar and routes it
		// through its own blend path instead.
		intensity = 0
	}

	// Adaptive scaling compensates for the different exposure pipelines of
	// interactive and preview contexts.
	gammaComp := float32(1)
	if p.AdaptiveBrightness && interactive {
		gammaComp = p.GameModeScale
	}
	intensity *= gammaComp
	tint := p.tintWithFlag()

	rect := dst.Rect
	for y := rect.Y; y < rect.Y+rect.H; y++ {
		for x := rect.X; x < rect.X+rect.W; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5
			su, sv := tScene.Apply(px, py)
			bu, bv := tBloom.Apply(px, py)
			s := scene.sample(su, sv)
			b := bloom.sample(bu, bv)

			// Tint, with the use-scene-color flag packed as channel 4.
			if tint[3] >= 0.5 {
				b = b.mul(s.clamp01())
			} else {
				b = b.mul(rgb{tint[0], tint[1], tint[2]})
			}

			// Saturation pulls bloom toward its own luminance; values
			// above 1 extrapolate into a boost.
			lum := luminance(b)
			b = rgb{lum, lum, lum}.lerp(b, p.Saturation)

			if p.ProtectHighlights {
				protect := 1 - p.HighlightProtection*smoothstepf(0.5, 1.0, luminance(s))
				b = b.scale(protect)
			}

			var out rgb
			switch {
			case p.ShowBloomOnly:
				// Shows the buffer even in SoftFocus mode, where the
				// normal intensity scalar is zeroed.
				out = b.scale(p.Intensity * gammaComp)
			case p.ShowGammaCompensation:
				out = rgb{gammaComp, gammaComp, gammaComp}.scale(0.5)
			case softFocus:
				out = softFocusBlend(s, b, p.Intensity*gammaComp)
			default:
				out = blendRGB(p.Blend, s.clamp01(), b.scale(intensity).clamp01())
			}
			dst.set(x, y, out)
		}
	}
}

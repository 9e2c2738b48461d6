package classicbloom

// Mode selects the bloom algorithm.
type Mode int

const (
	// ModeStandard is the separable Gaussian blur bloom.
	ModeStandard Mode = iota
	// ModeDirectionalGlare renders star/cross streaks from bright areas.
	ModeDirectionalGlare
	// ModeKawase is the progressive mip-pyramid bloom.
	ModeKawase
	// ModeSoftFocus is a dreamy full-scene glow.
	ModeSoftFocus
)

// BlendMode selects the formula compositing bloom back onto the scene.
type BlendMode int

const (
	// BlendScreen is the photographic glow blend.
	BlendScreen BlendMode = iota
	// BlendOverlay is a high-contrast glow.
	BlendOverlay
	// BlendSoftLight is a gentle, subtle glow.
	BlendSoftLight
	// BlendHardLight is an intense, punchy glow.
	BlendHardLight
	// BlendLighten only brightens, never darkens.
	BlendLighten
	// BlendMultiply darkens the scene with bloom.
	BlendMultiply
)

// AttachPoint names the logical host pipeline stage the composited output
// should be inserted after. The pipeline itself is agnostic to the choice;
// it is a scheduling hint for the host layer.
type AttachPoint int

const (
	// AttachTonemap applies after tone mapping.
	AttachTonemap AttachPoint = iota
	// AttachMotionBlur applies after motion blur.
	AttachMotionBlur
	// AttachFXAA applies after FXAA.
	AttachFXAA
	// AttachVisualizeDOF applies after depth-of-field visualization.
	AttachVisualizeDOF
)

// Parameters is a per-invocation configuration snapshot. Mode-specific fields
// are ignored, but preserved, when their mode is inactive.
type Parameters struct {
	Mode Mode

	// Intensity is the overall bloom strength. Values <= 0 disable the
	// effect entirely.
	Intensity float32
	// Threshold gates which pixels bloom. Ignored for ModeSoftFocus.
	Threshold float32
	// Size drives the blur radius for Standard, SoftFocus and Glare modes.
	Size float32

	// UseSceneColor tints bloom with the scene color under each pixel
	// instead of Tint.
	UseSceneColor bool
	// Tint is the bloom tint color, used when UseSceneColor is false.
	Tint [3]float32

	Blend      BlendMode
	Saturation float32

	// ProtectHighlights attenuates bloom as the underlying scene pixel
	// approaches full brightness; HighlightProtection sets how much.
	ProtectHighlights   bool
	HighlightProtection float32

	// DownsampleScale controls working resolution: 2.0 = full resolution,
	// 1.0 = half, 0.5 = quarter.
	DownsampleScale float32
	// BlurPasses is the number of separable blur iterations (1-4).
	BlurPasses int
	// BlurSamples is the kernel tap count, one of 5, 9 or 13.
	BlurSamples int
	// HighQualityUpsampling requests smoother upsampling in the host.
	HighQualityUpsampling bool

	// Directional glare tuning.
	StreakCount    int
	StreakLength   float32
	RotationOffset float32
	Falloff        float32

	// Kawase pyramid tuning.
	MipCount      int
	FilterRadius  float32
	SoftThreshold bool
	ThresholdKnee float32

	// AttachAfter tells the host which stage to insert the output at.
	AttachAfter AttachPoint

	// AdaptiveBrightness renormalizes bloom strength between interactive
	// and preview contexts using GameModeScale.
	AdaptiveBrightness bool
	GameModeScale      float32

	// Debug toggles. They override the final color with diagnostics and do
	// not otherwise change the blend math.
	ShowBloomOnly         bool
	ShowGammaCompensation bool
	DebugLogging          bool
}

// Soft-focus tuning constants retained from the legacy parameter set. Their
// derivation is undocumented; do not reinterpret.
const (
	softFocusOverlayMultiplier   = 0.5
	softFocusBlendStrength       = 0.33
	softFocusSoftLightMultiplier = 0.4
	softFocusFinalBlend          = 0.25
)

// DefaultParameters returns the stock configuration: standard bloom with a
// screen blend and scene-colored highlights.
func DefaultParameters() Parameters {
	return Parameters{
		Mode:                ModeStandard,
		Intensity:           2.0,
		Threshold:           0.8,
		Size:                4.0,
		UseSceneColor:       true,
		Tint:                [3]float32{1, 1, 1},
		Blend:               BlendScreen,
		Saturation:          1.0,
		HighlightProtection: 0.5,
		DownsampleScale:     1.0,
		BlurPasses:          1,
		BlurSamples:         5,
		StreakCount:         6,
		StreakLength:        40,
		Falloff:             3.0,
		MipCount:            5,
		FilterRadius:        0.002,
		SoftThreshold:       true,
		ThresholdKnee:       0.5,
		AttachAfter:         AttachTonemap,
		GameModeScale:       1.0,
	}
}

// normalized returns a copy of p with every field clamped to its valid range.
func (p Parameters) normalized() Parameters {
	p.Intensity = clampf(p.Intensity, 0, 8)
	p.Threshold = clampf(p.Threshold, 0, 10)
	p.Size = clampf(p.Size, 0, 64)
	p.Saturation = clampf(p.Saturation, 0, 3)
	p.HighlightProtection = clampf(p.HighlightProtection, 0, 1)
	p.DownsampleScale = clampf(p.DownsampleScale, 0.25, 2.0)
	p.BlurPasses = clampi(p.BlurPasses, 1, 4)
	p.BlurSamples = nearestTapCount(p.BlurSamples)
	p.StreakCount = clampi(p.StreakCount, 2, 16)
	p.StreakLength = clampf(p.StreakLength, 5, 200)
	p.RotationOffset = clampf(p.RotationOffset, 0, 180)
	p.Falloff = clampf(p.Falloff, 0.5, 10)
	p.MipCount = clampi(p.MipCount, 3, 8)
	p.FilterRadius = clampf(p.FilterRadius, 0.0001, 0.01)
	p.ThresholdKnee = clampf(p.ThresholdKnee, 0, 1)
	p.GameModeScale = clampf(p.GameModeScale, 0.1, 2.0)
	return p
}

// tintWithFlag packs UseSceneColor into the tint's 4th channel (1.0 = use
// scene color) so the compositor receives a single parameter block.
func (p Parameters) tintWithFlag() [4]float32 {
	flag := float32(0)
	if p.UseSceneColor {
		flag = 1
	}
	return [4]float32{p.Tint[0], p.Tint[1], p.Tint[2], flag}
}

// nearestTapCount snaps n to the supported kernel widths 5, 9 and 13.
func nearestTapCount(n int) int {
	switch {
	case n <= 5:
		return 5
	case n <= 9:
		return 9
	default:
		return 13
	}
}

package classicbloom

// Passes models which rendering primitives are available to the pipeline,
// mirroring per-shader validity checks in a GPU host. Kawase and glare fall
// back to the Gaussian path when their passes are missing; losing the bright,
// blur or composite pass aborts the invocation.
type Passes struct {
	BrightPass       bool
	Blur             bool
	Composite        bool
	GlareStreak      bool
	GlareAccumulate  bool
	KawaseDownsample bool
	KawaseUpsample   bool
}

// AllPasses reports every primitive as available.
func AllPasses() Passes {
	return Passes{
		BrightPass:       true,
		Blur:             true,
		Composite:        true,
		GlareStreak:      true,
		GlareAccumulate:  true,
		KawaseDownsample: true,
		KawaseUpsample:   true,
	}
}

// ApplyOptions configures a single Apply invocation.
type ApplyOptions struct {
	// Output receives the composited image when set; otherwise a new image
	// matching the source extent and viewport is allocated.
	Output *Image
	// Interactive marks the invocation as coming from an interactive game
	// context rather than a preview/editor one. Only meaningful when
	// adaptive brightness scaling is enabled.
	Interactive bool
	// Passes restricts available primitives. Defaults to AllPasses.
	Passes Passes
	// Log receives throttled diagnostics when the parameters enable debug
	// logging. Logging never affects the returned image.
	Log *DebugLog
}

// Apply runs the bloom pipeline over src and returns the composited image.
//
// Every failure path is a silent short-circuit: a disabled effect, an invalid
// viewport at any stage or a missing baseline primitive all return src
// unchanged. Glare and Kawase degrade to the Gaussian engine instead of
// aborting when their own passes are unavailable. The invocation allocates
// all working buffers fresh and retains nothing across calls.
func Apply(src *Image, params Parameters, opts ...func(o *ApplyOptions)) *Image {
	opt := ApplyOptions{Passes: AllPasses()}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	p := params.normalized()

	if p.Intensity <= 0 {
		return src
	}

	outRect := src.Rect
	if opt.Output != nil {
		outRect = opt.Output.Rect
	}
	if outRect.Empty() || src.Rect.Empty() {
		return src
	}

	divisor := downsampleDivisor(p.DownsampleScale)
	workW := ceilDiv(src.Rect.W, divisor)
	workH := ceilDiv(src.Rect.H, divisor)
	if workW <= 0 || workH <= 0 {
		return src
	}

	if !opt.Passes.BrightPass || !opt.Passes.Blur || !opt.Passes.Composite {
		return src
	}

	opt.Log.Logf(p, "bloom pipeline start",
		"mode", int(p.Mode),
		"viewport", []int{src.Rect.X, src.Rect.Y, src.Rect.W, src.Rect.H},
		"extent", []int{src.ExtentW, src.ExtentH},
		"work", []int{workW, workH},
		"divisor", divisor,
	)

	bloom := runBlurEngine(src, p, opt, workW, workH, divisor)

	out := opt.Output
	if out == nil {
		out = NewImage(src.ExtentW, src.ExtentH, src.Rect)
	}
	compositeBloom(out, src, bloom, p, opt.Interactive)
	return out
}

// runBlurEngine selects and executes the blur engine for the mode, handling
// the fallback chain. workW x workH is the bloom working resolution.
func runBlurEngine(src *Image, p Parameters, opt ApplyOptions, workW, workH, divisor int) *Image {
	switch p.Mode {
	case ModeDirectionalGlare:
		if opt.Passes.GlareStreak && opt.Passes.GlareAccumulate {
			bright := brightPass(src, workW, workH, effectiveThreshold(p))
			return glareBloom(bright, p, divisor)
		}
		opt.Log.Logf(p, "glare passes unavailable, falling back to gaussian")
	case ModeKawase:
		if opt.Passes.KawaseDownsample && opt.Passes.KawaseUpsample {
			// Kawase reads scene color directly; thresholding is
			// folded into pyramid level 0.
			return kawaseBloom(src, workW, workH, p)
		}
		opt.Log.Logf(p, "kawase passes unavailable, falling back to gaussian")
	}

	bright := brightPass(src, workW, workH, effectiveThreshold(p))
	return gaussianBlur(bright, p.BlurPasses, p.Size*0.1, p.BlurSamples)
}

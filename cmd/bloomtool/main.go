package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"
	"github.com/vearutop/classicbloom"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "apply":
		if err := runApply(os.Args[2:]); err != nil {
			fail(err)
		}
	case "modes":
		printModes()
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: bloomtool <command> [args]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  apply -in input.{png,jpg,exr} -out output.{png,jpg} [-mode standard] [options]")
	fmt.Fprintln(os.Stderr, "  modes  (list bloom modes and blend modes)")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

var modeNames = map[string]classicbloom.Mode{
	"standard":  classicbloom.ModeStandard,
	"glare":     classicbloom.ModeDirectionalGlare,
	"kawase":    classicbloom.ModeKawase,
	"softfocus": classicbloom.ModeSoftFocus,
}

var blendNames = map[string]classicbloom.BlendMode{
	"screen":    classicbloom.BlendScreen,
	"overlay":   classicbloom.BlendOverlay,
	"softlight": classicbloom.BlendSoftLight,
	"hardlight": classicbloom.BlendHardLight,
	"lighten":   classicbloom.BlendLighten,
	"multiply":  classicbloom.BlendMultiply,
}

func printModes() {
	fmt.Println("Modes: standard, glare, kawase, softfocus")
	fmt.Println("Blend modes: screen, overlay, softlight, hardlight, lighten, multiply")
}

func runApply(args []string) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image (PNG, JPEG or scanline OpenEXR)")
	outPath := fs.String("out", "", "output image (PNG or JPEG)")
	mode := fs.String("mode", "standard", "bloom mode: standard, glare, kawase, softfocus")
	blend := fs.String("blend", "screen", "blend mode: screen, overlay, softlight, hardlight, lighten, multiply")
	intensity := fs.Float64("intensity", 2.0, "bloom intensity (0-8)")
	threshold := fs.Float64("threshold", 0.8, "bright threshold (0-10)")
	size := fs.Float64("size", 4.0, "bloom size (0-64)")
	saturation := fs.Float64("saturation", 1.0, "bloom saturation (0-3)")
	scale := fs.Float64("scale", 1.0, "downsample scale (0.25-2, 2 = full res)")
	passes := fs.Int("passes", 1, "blur passes (1-4)")
	samples := fs.Int("samples", 5, "blur samples: 5, 9 or 13")
	tint := fs.String("tint", "", "bloom tint as R,G,B in [0,1]; empty uses scene color")
	protect := fs.Float64("protect", 0, "highlight protection strength (0-1, 0 disables)")
	streaks := fs.Int("streaks", 6, "glare streak count (2-16)")
	streakLen := fs.Float64("streak-length", 40, "glare streak length in pixels (5-200)")
	rotation := fs.Float64("rotation", 0, "glare rotation offset in degrees (0-180)")
	falloff := fs.Float64("falloff", 3, "glare falloff (0.5-10)")
	mips := fs.Int("mips", 5, "kawase mip count (3-8)")
	filterRadius := fs.Float64("filter-radius", 0.002, "kawase upsample filter radius (0.0001-0.01)")
	hardThreshold := fs.Bool("hard-threshold", false, "kawase: hard cutoff instead of soft knee")
	knee := fs.Float64("knee", 0.5, "kawase soft threshold knee (0-1)")
	resizeTo := fs.String("resize", "", "pre-resize LDR input to WxH before processing")
	quality := fs.Int("q", 90, "JPEG output quality")
	bloomOnly := fs.Bool("bloom-only", false, "output the bloom buffer only")
	game := fs.Bool("game", false, "treat as interactive game context for adaptive scaling")
	adaptive := fs.Bool("adaptive", false, "enable adaptive brightness scaling")
	gameScale := fs.Float64("game-scale", 1.0, "manual game mode bloom scale (0.1-2)")
	verbose := fs.Bool("v", false, "debug logging")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return errors.New("-in and -out are required")
	}

	m, ok := modeNames[strings.ToLower(*mode)]
	if !ok {
		return fmt.Errorf("unknown mode %q", *mode)
	}
	b, ok := blendNames[strings.ToLower(*blend)]
	if !ok {
		return fmt.Errorf("unknown blend mode %q", *blend)
	}

	src, err := loadInput(*inPath, *resizeTo)
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}

	params := classicbloom.DefaultParameters()
	params.Mode = m
	params.Blend = b
	params.Intensity = float32(*intensity)
	params.Threshold = float32(*threshold)
	params.Size = float32(*size)
	params.Saturation = float32(*saturation)
	params.DownsampleScale = float32(*scale)
	params.BlurPasses = *passes
	params.BlurSamples = *samples
	params.HighlightProtection = float32(*protect)
	params.ProtectHighlights = *protect > 0
	params.StreakCount = *streaks
	params.StreakLength = float32(*streakLen)
	params.RotationOffset = float32(*rotation)
	params.Falloff = float32(*falloff)
	params.MipCount = *mips
	params.FilterRadius = float32(*filterRadius)
	params.SoftThreshold = !*hardThreshold
	params.ThresholdKnee = float32(*knee)
	params.AdaptiveBrightness = *adaptive
	params.GameModeScale = float32(*gameScale)
	params.ShowBloomOnly = *bloomOnly
	params.DebugLogging = *verbose
	if *tint != "" {
		var r, g, bl float32
		if _, err := fmt.Sscanf(*tint, "%f,%f,%f", &r, &g, &bl); err != nil {
			return fmt.Errorf("invalid tint %q", *tint)
		}
		params.UseSceneColor = false
		params.Tint = [3]float32{r, g, bl}
	}

	out := classicbloom.Apply(src, params, func(o *classicbloom.ApplyOptions) {
		o.Interactive = *game
		o.Log = &classicbloom.DebugLog{
			Logger:      slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
			MinInterval: time.Second,
		}
	})

	return writeOutput(*outPath, out, *quality)
}

func loadInput(path, resizeTo string) (*classicbloom.Image, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".exr") {
		return classicbloom.DecodeEXR(data)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if resizeTo != "" {
		var w, h uint
		if _, err := fmt.Sscanf(resizeTo, "%dx%d", &w, &h); err != nil {
			return nil, fmt.Errorf("invalid resize %q", resizeTo)
		}
		img = resize.Resize(w, h, img, resize.Lanczos3)
	}
	return classicbloom.FromImage(img, true), nil
}

func writeOutput(path string, m *classicbloom.Image, quality int) error {
	out := classicbloom.ToImage(m, true)
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, out, &jpeg.Options{Quality: quality})
	default:
		err = png.Encode(f, out)
	}
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

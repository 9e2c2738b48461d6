// Package classicbloom implements a configurable bloom post-process over
// linear-light float32 RGB images.
//
// The pipeline extracts bright regions of a frame, blurs or streaks them with
// one of three interchangeable algorithms (separable Gaussian, Kawase mip
// pyramid, directional glare), and composites the result back onto the scene
// with a selectable photographic blend mode. It is a pure CPU rendition of the
// render-graph passes used by classic game-engine bloom, including the
// viewport-vs-extent coordinate handling required when buffers carry padding.
package classicbloom

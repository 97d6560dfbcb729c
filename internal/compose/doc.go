// Package compose builds the timeline for one short-video render and turns it
// into a single ffmpeg invocation.
//
// The package is a pure planning core: given the poem lines, the theme, and
// whatever media clips the fetch stage managed to acquire, it resolves the
// authoritative output duration, normalizes the background and audio tracks to
// that duration, lays out and schedules the caption lines, and emits a Plan
// describing the complete ffmpeg command. The only side effects live in
// Renderer, which executes the plan and verifies the encoded output.
//
// Missing inputs are never fatal here. A missing background clip degrades to a
// solid accent-color fill, missing music to silence, and missing narration to
// the nominal duration hint. The render aborts only when no caption text
// survives normalization or when the encode itself fails.
package compose

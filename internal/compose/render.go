package compose

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"verseline/internal/logging"
	"verseline/internal/media/ffprobe"
)

// durationTolerance is the drift allowed between the resolved timeline length
// and what ffprobe reports for the encoded file.
const durationTolerance = 0.5

type commandRunner func(ctx context.Context, name string, args ...string) error

type prober func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Renderer executes a Plan with ffmpeg and verifies the encoded output with
// ffprobe. It never mutates any input clip and writes exactly one file.
type Renderer struct {
	ffmpeg  string
	ffprobe string
	logger  *slog.Logger
	run     commandRunner
	probe   prober
}

// Result reports the verified output of one render.
type Result struct {
	Path      string
	Duration  float64
	SizeBytes int64
}

// NewRenderer constructs a renderer around the given ffmpeg and ffprobe
// binaries.
func NewRenderer(ffmpegBinary, ffprobeBinary string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Renderer{
		ffmpeg:  ffmpegBinary,
		ffprobe: ffprobeBinary,
		logger:  logging.NewComponentLogger(logger, "renderer"),
		run:     defaultRenderCommandRunner,
		probe:   ffprobe.Inspect,
	}
}

// WithCommandRunner injects a custom ffmpeg runner for tests.
func (r *Renderer) WithCommandRunner(run commandRunner) {
	if r != nil && run != nil {
		r.run = run
	}
}

// WithProber injects a custom output prober for tests.
func (r *Renderer) WithProber(probe prober) {
	if r != nil && probe != nil {
		r.probe = probe
	}
}

// Render serializes the plan to outputPath. A failed or unverifiable encode
// removes the partial file before returning, so downstream consumers never
// observe a broken output.
func (r *Renderer) Render(ctx context.Context, plan *Plan, outputPath string) (Result, error) {
	if r == nil {
		return Result{}, fmt.Errorf("renderer not initialized")
	}
	if plan == nil {
		return Result{}, fmt.Errorf("render plan is required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return Result{}, fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return Result{}, fmt.Errorf("create output directory: %w", err)
	}

	args := plan.FFmpegArgs(outputPath)
	r.logger.Debug("executing ffmpeg",
		logging.String("output", outputPath),
		logging.Float64("duration_seconds", plan.Duration),
		logging.Int("input_count", len(plan.Inputs)),
	)

	if err := r.run(ctx, r.ffmpeg, args...); err != nil {
		_ = os.Remove(outputPath)
		return Result{}, fmt.Errorf("ffmpeg encode failed: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return Result{}, fmt.Errorf("encoded output missing: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(outputPath)
		return Result{}, fmt.Errorf("encoded output is empty")
	}

	probed, err := r.probe(ctx, r.ffprobe, outputPath)
	if err != nil {
		_ = os.Remove(outputPath)
		return Result{}, fmt.Errorf("verify encoded output: %w", err)
	}
	if probed.VideoStreamCount() == 0 {
		_ = os.Remove(outputPath)
		return Result{}, fmt.Errorf("encoded output has no video stream")
	}
	realized := probed.DurationSeconds()
	if math.IsNaN(realized) || math.Abs(realized-plan.Duration) > durationTolerance {
		_ = os.Remove(outputPath)
		return Result{}, fmt.Errorf("encoded duration %.3fs drifted from planned %.3fs", realized, plan.Duration)
	}

	r.logger.Info("render complete",
		logging.String(logging.FieldEventType, "render_complete"),
		logging.String("output", outputPath),
		logging.Float64("duration_seconds", realized),
		logging.Int64("size_bytes", info.Size()),
	)
	return Result{Path: outputPath, Duration: realized, SizeBytes: info.Size()}, nil
}

func defaultRenderCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

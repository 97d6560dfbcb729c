package tts

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// EdgeTTS synthesizes narration through the edge-tts command line tool.
type EdgeTTS struct {
	binary string
	run    commandRunner
}

// NewEdgeTTS constructs the edge-tts CLI provider.
func NewEdgeTTS(binary string) *EdgeTTS {
	return &EdgeTTS{binary: binary, run: defaultCommandRunner}
}

// WithCommandRunner injects a custom runner for tests.
func (e *EdgeTTS) WithCommandRunner(run commandRunner) {
	if e != nil && run != nil {
		e.run = run
	}
}

// Name identifies the provider in chain diagnostics.
func (e *EdgeTTS) Name() string { return "edge-tts" }

// Synthesize invokes edge-tts with the voice and a percentage rate offset.
func (e *EdgeTTS) Synthesize(ctx context.Context, req Request) error {
	if strings.TrimSpace(e.binary) == "" {
		return fmt.Errorf("edge-tts binary not configured")
	}
	args := []string{
		"--voice", voiceOrDefault(req.Voice),
		"--rate", ratePercent(req.Rate),
		"--text", req.Text,
		"--write-media", req.OutputPath,
	}
	return e.run(ctx, e.binary, args...)
}

// Espeak synthesizes narration through espeak-ng. Quality is poor next to the
// other providers, which is why it sits last in the chain.
type Espeak struct {
	binary string
	run    commandRunner
}

// NewEspeak constructs the espeak-ng CLI provider.
func NewEspeak(binary string) *Espeak {
	return &Espeak{binary: binary, run: defaultCommandRunner}
}

// WithCommandRunner injects a custom runner for tests.
func (e *Espeak) WithCommandRunner(run commandRunner) {
	if e != nil && run != nil {
		e.run = run
	}
}

// Name identifies the provider in chain diagnostics.
func (e *Espeak) Name() string { return "espeak-ng" }

// espeakBaseWPM is espeak-ng's default speaking speed in words per minute.
const espeakBaseWPM = 175

// Synthesize invokes espeak-ng, scaling its word rate by the requested rate.
func (e *Espeak) Synthesize(ctx context.Context, req Request) error {
	if strings.TrimSpace(e.binary) == "" {
		return fmt.Errorf("espeak-ng binary not configured")
	}
	rate := req.Rate
	if rate <= 0 {
		rate = 1
	}
	args := []string{
		"-s", strconv.Itoa(int(math.Round(espeakBaseWPM * rate))),
		"-w", req.OutputPath,
		req.Text,
	}
	return e.run(ctx, e.binary, args...)
}

func voiceOrDefault(voice string) string {
	voice = strings.TrimSpace(voice)
	if voice == "" {
		return "en-US-AriaNeural"
	}
	return voice
}

// ratePercent converts a multiplier rate into edge-tts's signed percentage
// form, e.g. 0.85 becomes "-15%".
func ratePercent(rate float64) string {
	if rate <= 0 {
		rate = 1
	}
	offset := int(math.Round((rate - 1) * 100))
	return fmt.Sprintf("%+d%%", offset)
}

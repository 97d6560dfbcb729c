// Package tts synthesizes narration audio through an ordered provider chain.
//
// Providers are tried in sequence: the hosted speech API first, then the
// edge-tts CLI, then espeak-ng as a last resort. Every provider failure moves
// to the next link; when the whole chain fails the caller proceeds without
// narration, so nothing here is fatal to a render.
package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"verseline/internal/config"
	"verseline/internal/logging"
)

// Request describes one narration synthesis job. The provider writes the
// finished audio to OutputPath.
type Request struct {
	Text       string
	Voice      string
	Rate       float64
	OutputPath string
}

// Provider converts text into spoken audio.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, req Request) error
}

// Chain tries providers in order until one produces audio.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain assembles the provider chain from configuration. Providers whose
// prerequisites are missing are skipped at construction time.
func NewChain(cfg *config.Config, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = logging.NewNop()
	}
	chain := &Chain{logger: logging.NewComponentLogger(logger, "tts")}
	if strings.TrimSpace(cfg.TTS.APIKey) != "" {
		chain.providers = append(chain.providers, NewSpeechClient(cfg.TTS.BaseURL, cfg.TTS.APIKey, cfg.TTS.Model))
	}
	chain.providers = append(chain.providers,
		NewEdgeTTS(cfg.EdgeTTSBinary()),
		NewEspeak(cfg.EspeakBinary()),
	)
	return chain
}

// NewChainFromProviders builds a chain over an explicit provider list.
func NewChainFromProviders(logger *slog.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Chain{providers: providers, logger: logging.NewComponentLogger(logger, "tts")}
}

// Synthesize runs the chain and reports which provider produced the audio.
// A provider that returns success but leaves no file behind counts as failed.
func (c *Chain) Synthesize(ctx context.Context, req Request) (string, error) {
	if c == nil || len(c.providers) == 0 {
		return "", errors.New("no narration providers configured")
	}
	if strings.TrimSpace(req.Text) == "" {
		return "", errors.New("narration text is required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return "", errors.New("narration output path is required")
	}

	var failures []string
	for _, provider := range c.providers {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		err := provider.Synthesize(ctx, req)
		if err == nil {
			if info, statErr := os.Stat(req.OutputPath); statErr == nil && info.Size() > 0 {
				c.logger.Info("narration synthesized",
					logging.String("provider", provider.Name()),
					logging.String("output", req.OutputPath),
				)
				return provider.Name(), nil
			}
			err = errors.New("provider reported success but produced no audio")
		}
		_ = os.Remove(req.OutputPath)
		c.logger.Warn("narration provider failed",
			logging.String("provider", provider.Name()),
			logging.Error(err),
		)
		failures = append(failures, fmt.Sprintf("%s: %v", provider.Name(), err))
	}
	return "", fmt.Errorf("all narration providers failed: %s", strings.Join(failures, "; "))
}

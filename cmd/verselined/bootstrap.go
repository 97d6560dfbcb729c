package main

import (
	"log/slog"

	"verseline/internal/assets"
	"verseline/internal/config"
	"verseline/internal/publisher"
	"verseline/internal/queue"
	"verseline/internal/render"
	"verseline/internal/workflow"
)

func buildStages(cfg *config.Config, store *queue.Store, logger *slog.Logger) workflow.StageSet {
	return workflow.StageSet{
		Fetcher:   assets.NewFetcher(cfg, store, logger),
		Renderer:  render.NewRenderer(cfg, store, logger),
		Publisher: publisher.NewPublisher(cfg, store, logger),
	}
}

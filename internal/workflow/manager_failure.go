package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"verseline/internal/logging"
	"verseline/internal/queue"
	"verseline/internal/services"
	"verseline/internal/stage"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	logger := m.stageLogger(ctx, base, item).With(logging.String(logging.FieldComponent, "workflow-manager"))

	message := classifyStageFailure(stageName, stageErr)
	resolved := services.FailureStatus(stageErr)
	m.setItemFailureState(item, resolved, message)

	logger.Error("stage failed",
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("resolved_status", string(resolved)),
		logging.String("error_message", strings.TrimSpace(message)),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	// The item is terminal; staged assets are re-fetched from scratch on a
	// retry, so its staging directory goes now.
	if err := stage.CleanupStaging(m.cfg.Paths.StagingDir, item.VideoID); err != nil {
		logger.Warn("failed to remove staging directory", logging.Error(err))
	}

	m.setLastItem(item)
	m.notifyStageFailure(ctx, stageName, item, stageErr, resolved, message)
	m.checkQueueCompletion(ctx)
}

func classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		if stageName != "" {
			return fmt.Sprintf("%s failed without error detail", stageName)
		}
		return "workflow failed without error detail"
	}
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		if stageName != "" {
			return fmt.Sprintf("%s failed", stageName)
		}
		return "workflow failed"
	}
	return message
}

func (m *Manager) setItemFailureState(item *queue.Item, resolved queue.Status, message string) {
	if resolved == queue.StatusReview {
		item.Status = queue.StatusReview
		item.NeedsReview = true
		item.ReviewReason = message
		item.ErrorMessage = message
		item.ProgressStage = "Review"
		item.ProgressMessage = message
		item.ProgressPercent = 0
		item.LastHeartbeat = nil
		return
	}
	item.SetFailed(message)
}

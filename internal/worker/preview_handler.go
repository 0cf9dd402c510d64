package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"pixel-canvas/internal/service"
	"pixel-canvas/internal/tasks"
)

// PreviewRenderer 是预览任务依赖的渲染能力 (由 service.PreviewService 实现)
type PreviewRenderer interface {
	Refresh(ctx context.Context, canvasID uint) error
	WarmPublic(ctx context.Context) (int, error)
}

// PreviewHandler 处理预览图渲染任务
type PreviewHandler struct {
	previews PreviewRenderer
}

// NewPreviewHandler 创建 PreviewHandler 实例
func NewPreviewHandler(previews PreviewRenderer) *PreviewHandler {
	if previews == nil {
		panic("PreviewRenderer cannot be nil for PreviewHandler")
	}
	return &PreviewHandler{previews: previews}
}

// ProcessPreviewTask 渲染单个画布的预览图
func (h *PreviewHandler) ProcessPreviewTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)

	payload, err := tasks.ParseCanvasPreviewPayload(t)
	if err != nil {
		logCtx.WithError(err).Error("Failed to parse preview task payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	logCtx = logCtx.WithField("canvas_id", payload.CanvasID)

	if err := h.previews.Refresh(ctx, payload.CanvasID); err != nil {
		if errors.Is(err, service.ErrCanvasNotFound) {
			// 画布已被删除
			logCtx.Info("Canvas no longer exists, dropping preview task")
			return nil
		}
		logCtx.WithError(err).Error("Failed to render preview")
		return fmt.Errorf("failed to render preview for canvas %d: %w", payload.CanvasID, err)
	}
	logCtx.Debug("Preview rendered")
	return nil
}

// ProcessWarmTask 为公开画布补齐预览缓存
func (h *PreviewHandler) ProcessWarmTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)
	warmed, err := h.previews.WarmPublic(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to warm public previews")
		return err
	}
	logCtx.WithField("warmed", warmed).Info("Public preview warm-up completed")
	return nil
}

func taskLogger(ctx context.Context, t *asynq.Task) *logrus.Entry {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	retry, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	return logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     retry,
		"max_retry": maxRetry,
	})
}

package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// 定义任务类型常量
const (
	TypeCanvasPreview      = "canvas:render_preview"       // 单个画布预览图渲染任务
	TypePublicPreviewsWarm = "canvas:warm_public_previews" // 周期性补齐缺失的公开画布预览图
)

// CanvasPreviewPayload 定义了预览图渲染任务的数据结构。
// 只传递画布 ID，Worker 端从数据库读取最新网格，保证渲染的是最后一次写入。
type CanvasPreviewPayload struct {
	CanvasID uint `json:"canvas_id"`
}

// NewCanvasPreviewTask 创建一个新的预览图渲染任务
func NewCanvasPreviewTask(canvasID uint) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(CanvasPreviewPayload{CanvasID: canvasID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCanvasPreview, payloadBytes), nil
}

// ParseCanvasPreviewPayload 解析任务载荷
func ParseCanvasPreviewPayload(t *asynq.Task) (CanvasPreviewPayload, error) {
	var payload CanvasPreviewPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal %s payload: %w", t.Type(), err)
	}
	if payload.CanvasID == 0 {
		return payload, fmt.Errorf("%s payload has no canvas_id", t.Type())
	}
	return payload, nil
}

// AsynqPreviewEnqueuer 通过 asynq 客户端投递预览图渲染任务
type AsynqPreviewEnqueuer struct {
	client *asynq.Client
}

// NewAsynqPreviewEnqueuer 创建 AsynqPreviewEnqueuer 实例
func NewAsynqPreviewEnqueuer(client *asynq.Client) *AsynqPreviewEnqueuer {
	if client == nil {
		panic("asynq client cannot be nil for AsynqPreviewEnqueuer")
	}
	return &AsynqPreviewEnqueuer{client: client}
}

// EnqueuePreview 投递预览图渲染任务。
// 同一画布在短时间内的多次保存只保留一个待执行任务。
func (e *AsynqPreviewEnqueuer) EnqueuePreview(ctx context.Context, canvasID uint) error {
	task, err := NewCanvasPreviewTask(canvasID)
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task,
		asynq.Queue("low"),
		asynq.MaxRetry(3),
		asynq.ProcessIn(2*time.Second),
		asynq.TaskID(fmt.Sprintf("preview:%d:%d", canvasID, time.Now().Unix()/2)),
	)
	if err != nil {
		// 同一时间窗口内已有任务，视为成功
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("failed to enqueue preview task for canvas %d: %w", canvasID, err)
	}
	return nil
}

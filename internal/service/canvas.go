package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"pixel-canvas/internal/domain"
	"pixel-canvas/internal/pixelcanvas"
	"pixel-canvas/internal/repository"
)

// DefaultCanvasTitle 是未填写标题时使用的画布名
const DefaultCanvasTitle = "Untitled"

// PreviewEnqueuer 负责投递异步预览图渲染任务 (由 asynq 实现)
type PreviewEnqueuer interface {
	EnqueuePreview(ctx context.Context, canvasID uint) error
}

// CanvasLimits 是画布相关的可配置参数
type CanvasLimits struct {
	DefaultSize int           // 新建画布的默认边长
	MaxSize     int           // 允许的最大边长
	PixelSize   int           // 编辑器每格像素边长
	GridTTL     time.Duration // Redis 网格缓存过期时间，0 表示不过期
}

// EditorInit 是编辑器启动时需要的初始化数据
type EditorInit struct {
	CanvasID  uint            `json:"canvasId"`
	Title     string          `json:"title"`
	GridSize  int             `json:"gridSize"`
	PixelSize int             `json:"pixelSize"`
	GridData  domain.GridRows `json:"gridData"`
	Editable  bool            `json:"editable"`
}

// CanvasService 负责画布的创建、查询、网格保存和删除
type CanvasService struct {
	canvasRepo repository.CanvasRepository
	cacheRepo  repository.CanvasCacheRepository
	enqueuer   PreviewEnqueuer
	limits     CanvasLimits
}

// NewCanvasService 创建 CanvasService 实例。cacheRepo 和 enqueuer 可以为 nil。
func NewCanvasService(canvasRepo repository.CanvasRepository, cacheRepo repository.CanvasCacheRepository, enqueuer PreviewEnqueuer, limits CanvasLimits) *CanvasService {
	if canvasRepo == nil {
		panic("CanvasRepository cannot be nil for CanvasService")
	}
	if limits.DefaultSize <= 0 {
		limits.DefaultSize = pixelcanvas.DefaultGridSize
	}
	if limits.MaxSize < limits.DefaultSize {
		limits.MaxSize = limits.DefaultSize
	}
	if limits.PixelSize <= 0 {
		limits.PixelSize = pixelcanvas.DefaultCellSize
	}
	return &CanvasService{
		canvasRepo: canvasRepo,
		cacheRepo:  cacheRepo,
		enqueuer:   enqueuer,
		limits:     limits,
	}
}

// Limits 返回生效的画布参数
func (s *CanvasService) Limits() CanvasLimits { return s.limits }

// Create 为用户创建一个全空的画布。size 为 0 时使用默认边长。
func (s *CanvasService) Create(ctx context.Context, userID uint, title string, size int, isPublic bool) (*domain.Canvas, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "size": size})

	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultCanvasTitle
	}
	if utf8.RuneCountInString(title) > 100 {
		return nil, fmt.Errorf("%w: title must be at most 100 characters", ErrInvalidCanvas)
	}
	if size == 0 {
		size = s.limits.DefaultSize
	}
	if size < 1 || size > s.limits.MaxSize {
		return nil, fmt.Errorf("%w: size must be between 1 and %d", ErrInvalidCanvas, s.limits.MaxSize)
	}

	grid, err := pixelcanvas.NewGrid(size, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCanvas, err)
	}
	canvas := &domain.Canvas{
		UserID:   userID,
		Title:    title,
		Size:     size,
		IsPublic: isPublic,
	}
	if err := canvas.SetGrid(grid.Serialize()); err != nil {
		logCtx.WithError(err).Error("Failed to encode empty grid")
		return nil, ErrInternalServer
	}
	if err := s.canvasRepo.Create(ctx, canvas); err != nil {
		logCtx.WithError(err).Error("Failed to create canvas")
		return nil, ErrInternalServer
	}
	logCtx.WithField("canvas_id", canvas.ID).Info("Canvas created")
	return canvas, nil
}

// Get 返回画布详情。私有画布只对所有者可见，viewerID 为 0 表示匿名。
func (s *CanvasService) Get(ctx context.Context, canvasID, viewerID uint) (*domain.Canvas, error) {
	canvas, err := s.find(ctx, canvasID)
	if err != nil {
		return nil, err
	}
	if !canvas.VisibleTo(viewerID) {
		return nil, ErrForbidden
	}
	return canvas, nil
}

// Detail 返回画布及其网格，网格与编辑器初始化数据走同一条读取路径
func (s *CanvasService) Detail(ctx context.Context, canvasID, viewerID uint) (*domain.Canvas, domain.GridRows, error) {
	canvas, err := s.Get(ctx, canvasID, viewerID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.gridOf(ctx, canvas)
	if err != nil {
		return nil, nil, err
	}
	return canvas, rows, nil
}

// ListMine 按最近更新时间返回用户自己的画布
func (s *CanvasService) ListMine(ctx context.Context, userID uint) ([]domain.Canvas, error) {
	canvases, err := s.canvasRepo.ListByOwner(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to list canvases")
		return nil, ErrInternalServer
	}
	return canvases, nil
}

// ListPublic 按最近更新时间返回公开画布
func (s *CanvasService) ListPublic(ctx context.Context) ([]domain.Canvas, error) {
	canvases, err := s.canvasRepo.ListPublic(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list public canvases")
		return nil, ErrInternalServer
	}
	return canvases, nil
}

// EditorConfig 组装编辑器初始化数据，只有所有者可以编辑。
func (s *CanvasService) EditorConfig(ctx context.Context, canvasID, viewerID uint) (*EditorInit, error) {
	canvas, err := s.Get(ctx, canvasID, viewerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.gridOf(ctx, canvas)
	if err != nil {
		return nil, err
	}
	return &EditorInit{
		CanvasID:  canvas.ID,
		Title:     canvas.Title,
		GridSize:  canvas.Size,
		PixelSize: s.limits.PixelSize,
		GridData:  rows,
		Editable:  canvas.OwnedBy(viewerID),
	}, nil
}

// UpdateGrid 用客户端提交的完整网格替换画布内容 (最后写入为准)。
// 网格必须与画布边长一致，否则返回 ErrInvalidGrid。
func (s *CanvasService) UpdateGrid(ctx context.Context, canvasID, userID uint, rows domain.GridRows) error {
	logCtx := logrus.WithFields(logrus.Fields{"canvas_id": canvasID, "user_id": userID})

	if rows == nil {
		return fmt.Errorf("%w: gridData is required", ErrInvalidGrid)
	}
	canvas, err := s.find(ctx, canvasID)
	if err != nil {
		return err
	}
	if !canvas.OwnedBy(userID) {
		logCtx.Warn("Rejected grid update from non-owner")
		return ErrForbidden
	}

	grid, err := pixelcanvas.NewGrid(canvas.Size, rows)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}
	normalized := domain.GridRows(grid.Serialize())
	if err := canvas.SetGrid(normalized); err != nil {
		logCtx.WithError(err).Error("Failed to encode grid")
		return ErrInternalServer
	}
	if err := s.canvasRepo.UpdateGrid(ctx, canvasID, canvas.GridData); err != nil {
		if errors.Is(err, repository.ErrCanvasNotFound) {
			return ErrCanvasNotFound
		}
		logCtx.WithError(err).Error("Failed to persist grid")
		return ErrInternalServer
	}

	// 数据库已是最新状态，缓存和预览失败只记录日志
	if s.cacheRepo != nil {
		if err := s.cacheRepo.Invalidate(ctx, canvasID); err != nil {
			logCtx.WithError(err).Warn("Failed to invalidate canvas cache")
		} else if err := s.cacheRepo.SetGrid(ctx, canvasID, normalized, s.limits.GridTTL); err != nil {
			logCtx.WithError(err).Warn("Failed to refresh grid cache")
		}
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueuePreview(ctx, canvasID); err != nil {
			logCtx.WithError(err).Warn("Failed to enqueue preview rendering")
		}
	}
	logCtx.Debug("Grid saved")
	return nil
}

// Delete 删除画布，仅所有者可以操作
func (s *CanvasService) Delete(ctx context.Context, canvasID, userID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"canvas_id": canvasID, "user_id": userID})
	canvas, err := s.find(ctx, canvasID)
	if err != nil {
		return err
	}
	if !canvas.OwnedBy(userID) {
		return ErrForbidden
	}
	if err := s.canvasRepo.Delete(ctx, canvasID); err != nil {
		if errors.Is(err, repository.ErrCanvasNotFound) {
			return ErrCanvasNotFound
		}
		logCtx.WithError(err).Error("Failed to delete canvas")
		return ErrInternalServer
	}
	if s.cacheRepo != nil {
		if err := s.cacheRepo.Invalidate(ctx, canvasID); err != nil {
			logCtx.WithError(err).Warn("Failed to invalidate cache after delete")
		}
	}
	logCtx.Info("Canvas deleted")
	return nil
}

func (s *CanvasService) find(ctx context.Context, canvasID uint) (*domain.Canvas, error) {
	canvas, err := s.canvasRepo.FindByID(ctx, canvasID)
	if err != nil {
		if errors.Is(err, repository.ErrCanvasNotFound) {
			return nil, ErrCanvasNotFound
		}
		logrus.WithError(err).WithField("canvas_id", canvasID).Error("Failed to load canvas")
		return nil, ErrInternalServer
	}
	if canvas == nil {
		return nil, ErrCanvasNotFound
	}
	return canvas, nil
}

// gridOf 优先读取 Redis 缓存，未命中时解析数据库中的 JSON 并回填缓存。
// 形状不符的缓存条目会被删除，数据库中损坏的网格退回同尺寸的全空网格。
func (s *CanvasService) gridOf(ctx context.Context, canvas *domain.Canvas) (domain.GridRows, error) {
	logCtx := logrus.WithField("canvas_id", canvas.ID)
	if s.cacheRepo != nil {
		rows, err := s.cacheRepo.GetGrid(ctx, canvas.ID)
		switch {
		case err == nil:
			grid, gridErr := pixelcanvas.NewGrid(canvas.Size, rows)
			if gridErr == nil {
				return grid.Serialize(), nil
			}
			logCtx.WithError(gridErr).Warn("Cached grid does not match canvas size, dropping it")
			if err := s.cacheRepo.Invalidate(ctx, canvas.ID); err != nil {
				logCtx.WithError(err).Warn("Failed to drop cached grid")
			}
		case !errors.Is(err, repository.ErrNotFound):
			logCtx.WithError(err).Warn("Grid cache read failed, falling back to database")
		}
	}

	grid, err := storedGrid(canvas, logCtx)
	if err != nil {
		logCtx.WithError(err).Error("Stored canvas size is invalid")
		return nil, ErrInternalServer
	}
	rows := grid.Serialize()
	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetGrid(ctx, canvas.ID, rows, s.limits.GridTTL); err != nil {
			logCtx.WithError(err).Warn("Failed to populate grid cache")
		}
	}
	return rows, nil
}

// storedGrid 解析数据库中的网格。JSON 损坏或形状与画布边长不符时退回全空网格，
// 只有画布边长本身非法时才返回错误。
func storedGrid(canvas *domain.Canvas, logCtx *logrus.Entry) (*pixelcanvas.Grid, error) {
	rows, err := canvas.ParseGrid()
	if err != nil {
		logCtx.WithError(err).Warn("Stored grid data is corrupted, using an empty grid")
		rows = nil
	}
	grid, err := pixelcanvas.NewGrid(canvas.Size, rows)
	if err != nil && rows != nil {
		logCtx.WithError(err).Warn("Stored grid does not match canvas size, using an empty grid")
		grid, err = pixelcanvas.NewGrid(canvas.Size, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("canvas %d has size %d: %w", canvas.ID, canvas.Size, err)
	}
	return grid, nil
}

package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pixel-canvas/internal/domain"
	"pixel-canvas/internal/middleware"
	"pixel-canvas/internal/service"
)

// CanvasHandler 封装了画布管理、编辑器初始化和网格保存的 HTTP 处理逻辑
type CanvasHandler struct {
	canvasService  *service.CanvasService
	previewService *service.PreviewService
}

// NewCanvasHandler 创建 CanvasHandler 实例
func NewCanvasHandler(canvasService *service.CanvasService, previewService *service.PreviewService) *CanvasHandler {
	return &CanvasHandler{canvasService: canvasService, previewService: previewService}
}

// CreateCanvasRequest 定义创建画布请求的结构体。size 为 0 时使用默认边长。
type CreateCanvasRequest struct {
	Title    string `json:"title" binding:"max=100"`
	Size     int    `json:"size" binding:"min=0"`
	IsPublic bool   `json:"is_public"`
}

// UpdateGridRequest 是持久化端点的请求体，gridData 为 N×N 嵌套数组
type UpdateGridRequest struct {
	GridData *domain.GridRows `json:"gridData"`
}

// ListPublic 返回公开画布列表
func (h *CanvasHandler) ListPublic(c *gin.Context) {
	canvases, err := h.canvasService.ListPublic(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"canvases": toCanvasSummaries(canvases)})
}

// ListMine 返回当前用户的画布列表
func (h *CanvasHandler) ListMine(c *gin.Context) {
	canvases, err := h.canvasService.ListMine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"canvases": toCanvasSummaries(canvases)})
}

// Create 处理创建画布请求
func (h *CanvasHandler) Create(c *gin.Context) {
	var req CreateCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateCanvas: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	canvas, err := h.canvasService.Create(c.Request.Context(), middleware.UserID(c), req.Title, req.Size, req.IsPublic)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, toCanvasSummary(canvas))
}

// Get 返回画布详情
func (h *CanvasHandler) Get(c *gin.Context) {
	canvasID, ok := parseCanvasID(c)
	if !ok {
		return
	}
	canvas, rows, err := h.canvasService.Detail(c.Request.Context(), canvasID, middleware.UserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, CanvasDetail{CanvasSummary: toCanvasSummary(canvas), GridData: rows})
}

// Editor 返回编辑器初始化数据
func (h *CanvasHandler) Editor(c *gin.Context) {
	canvasID, ok := parseCanvasID(c)
	if !ok {
		return
	}
	cfg, err := h.canvasService.EditorConfig(c.Request.Context(), canvasID, middleware.UserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, cfg)
}

// UpdateGrid 是编辑器的持久化端点：整体替换网格，成功时返回 {"success": true}
func (h *CanvasHandler) UpdateGrid(c *gin.Context) {
	canvasID, ok := parseCanvasID(c)
	if !ok {
		return
	}
	var req UpdateGridRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.GridData == nil {
		logrus.WithField("canvas_id", canvasID).WithError(err).Warn("Handler.UpdateGrid: Invalid data")
		ErrorResponse(c, http.StatusBadRequest, "Invalid data: gridData is required")
		return
	}
	if err := h.canvasService.UpdateGrid(c.Request.Context(), canvasID, middleware.UserID(c), *req.GridData); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"success": true})
}

// Delete 删除画布
func (h *CanvasHandler) Delete(c *gin.Context) {
	canvasID, ok := parseCanvasID(c)
	if !ok {
		return
	}
	if err := h.canvasService.Delete(c.Request.Context(), canvasID, middleware.UserID(c)); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"success": true})
}

// Preview 返回画布的 PNG 预览图
func (h *CanvasHandler) Preview(c *gin.Context) {
	canvasID, ok := parseCanvasID(c)
	if !ok {
		return
	}
	png, err := h.previewService.Get(c.Request.Context(), canvasID, middleware.UserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", png)
}

func parseCanvasID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid canvas id")
		return 0, false
	}
	return uint(id), true
}

package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"pixel-canvas/internal/domain"
)

// ErrorResponse 返回 {"error": message}
func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// SuccessResponse 原样返回数据
func SuccessResponse(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// CanvasSummary 是画布列表中的一项，不包含网格数据
type CanvasSummary struct {
	ID        uint      `json:"id"`
	OwnerID   uint      `json:"owner_id"`
	Title     string    `json:"title"`
	Size      int       `json:"size"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanvasDetail 是画布详情，附带网格数据
type CanvasDetail struct {
	CanvasSummary
	GridData domain.GridRows `json:"grid_data"`
}

func toCanvasSummary(c *domain.Canvas) CanvasSummary {
	return CanvasSummary{
		ID:        c.ID,
		OwnerID:   c.UserID,
		Title:     c.Title,
		Size:      c.Size,
		IsPublic:  c.IsPublic,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCanvasSummaries(canvases []domain.Canvas) []CanvasSummary {
	out := make([]CanvasSummary, 0, len(canvases))
	for i := range canvases {
		out = append(out, toCanvasSummary(&canvases[i]))
	}
	return out
}

package pixelcanvas

const (
	// GridLineColor 网格线颜色
	GridLineColor = "#ddd"
	// GridLineWidth 网格线宽度
	GridLineWidth = 1.0
)

// Surface 是渲染循环的绘图目标。颜色均为字符串编码 (例如 "#ff0000")。
type Surface interface {
	// Clear 清空整个画布
	Clear()
	// StrokeLine 以给定颜色和线宽画一条线段
	StrokeLine(x1, y1, x2, y2 float64, color string, width float64)
	// FillRect 用给定颜色填充矩形
	FillRect(x, y, w, h float64, color string)
}

// Renderer 负责把网格绘制到 Surface 上。
// 渲染只依赖网格状态，相同状态重复渲染得到相同像素。
type Renderer struct {
	cellSize int
}

// NewRenderer 创建 Renderer 实例
func NewRenderer(cellSize int) *Renderer {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Renderer{cellSize: cellSize}
}

// CellSize 返回每个格子的像素边长
func (r *Renderer) CellSize() int { return r.cellSize }

// Extent 返回画布在每个轴上的像素长度 (N × cellSize)
func (r *Renderer) Extent(g *Grid) int {
	return g.Size() * r.cellSize
}

// Render 依次执行：清屏；画 N+1 条竖线和 N+1 条横线；填充所有已上色的格子。
func (r *Renderer) Render(s Surface, g *Grid) {
	s.Clear()

	n := g.Size()
	extent := float64(r.Extent(g))
	step := float64(r.cellSize)

	for x := 0; x <= n; x++ {
		px := float64(x) * step
		s.StrokeLine(px, 0, px, extent, GridLineColor, GridLineWidth)
	}
	for y := 0; y <= n; y++ {
		py := float64(y) * step
		s.StrokeLine(0, py, extent, py, GridLineColor, GridLineWidth)
	}

	g.each(func(row, col int, color string) {
		s.FillRect(float64(col)*step, float64(row)*step, step, step, color)
	})
}

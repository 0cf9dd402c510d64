// Package pixelcanvas 实现像素画布编辑器的核心：网格模型、坐标映射、渲染循环和拖拽交互状态机。
package pixelcanvas

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize 表示网格尺寸不是正整数
	ErrInvalidSize = errors.New("pixelcanvas: grid size must be positive")
	// ErrShapeMismatch 表示初始网格数据的行数或列数与声明的尺寸不一致
	ErrShapeMismatch = errors.New("pixelcanvas: initial grid shape mismatch")
)

// Cell 表示一个格子的颜色：要么有颜色 (Present)，要么未上色 (Absent)。
// 零值为 Absent。
type Cell struct {
	color   string
	present bool
}

// Present 返回一个带颜色的格子
func Present(color string) Cell {
	return Cell{color: color, present: true}
}

// Absent 返回一个未上色的格子
func Absent() Cell {
	return Cell{}
}

// Color 返回格子的颜色以及是否已上色
func (c Cell) Color() (string, bool) {
	return c.color, c.present
}

// IsPresent 报告格子是否已上色
func (c Cell) IsPresent() bool { return c.present }

// Grid 是 N×N 的正方形格子矩阵，所有行长度恒为 N。
type Grid struct {
	size  int
	cells [][]Cell
}

// NewGrid 创建 size×size 的网格。
// initial 为 nil 时所有格子为空；否则必须恰好是 size×size，nil 或空字符串视为未上色。
// 形状不符时返回 ErrShapeMismatch，不做填充或截断。
func NewGrid(size int, initial [][]*string) (*Grid, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if initial != nil && len(initial) != size {
		return nil, fmt.Errorf("%w: expected %d rows, got %d", ErrShapeMismatch, size, len(initial))
	}

	cells := make([][]Cell, size)
	for r := range cells {
		cells[r] = make([]Cell, size)
		if initial == nil {
			continue
		}
		if len(initial[r]) != size {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrShapeMismatch, r, len(initial[r]), size)
		}
		for c, v := range initial[r] {
			if v != nil && *v != "" {
				cells[r][c] = Present(*v)
			}
		}
	}
	return &Grid{size: size, cells: cells}, nil
}

// Size 返回网格边长 N
func (g *Grid) Size() int { return g.size }

// InBounds 报告 (row, col) 是否落在 [0, N) 范围内
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.size && col >= 0 && col < g.size
}

// At 返回指定格子；越界时 ok 为 false
func (g *Grid) At(row, col int) (Cell, bool) {
	if !g.InBounds(row, col) {
		return Cell{}, false
	}
	return g.cells[row][col], true
}

// Paint 在范围内时把 (row, col) 设为 color，并返回 true。
// 越界请求和空颜色都被静默忽略：指针在画布边缘附近时可能映射到范围之外，
// 空字符串在序列化后无法与未上色区分。
func (g *Grid) Paint(row, col int, color string) bool {
	if color == "" || !g.InBounds(row, col) {
		return false
	}
	g.cells[row][col] = Present(color)
	return true
}

// Serialize 返回网格的深拷贝，未上色的格子为 nil，可直接 JSON 编码后整体传输。
func (g *Grid) Serialize() [][]*string {
	out := make([][]*string, g.size)
	for r, row := range g.cells {
		out[r] = make([]*string, g.size)
		for c, cell := range row {
			if color, ok := cell.Color(); ok {
				v := color
				out[r][c] = &v
			}
		}
	}
	return out
}

// Equal 报告两个网格的尺寸和每个格子是否完全一致
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.size != other.size {
		return false
	}
	for r := range g.cells {
		for c := range g.cells[r] {
			if g.cells[r][c] != other.cells[r][c] {
				return false
			}
		}
	}
	return true
}

// each 按行优先顺序遍历所有已上色的格子
func (g *Grid) each(fn func(row, col int, color string)) {
	for r, row := range g.cells {
		for c, cell := range row {
			if color, ok := cell.Color(); ok {
				fn(r, c, color)
			}
		}
	}
}

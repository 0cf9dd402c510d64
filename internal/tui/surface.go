package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CellWidth 每个网格格子在终端中占用的列数，两列宽度让格子接近正方形
const CellWidth = 2

// Surface 把渲染循环的像素坐标折算回格子，并以终端字符块的形式输出。
// 网格线在终端里没有亚格子分辨率，只保留颜色作为空格子的前景色。
type Surface struct {
	size      int
	cellSize  int
	fills     [][]string
	gridColor string
	lines     int
}

// NewSurface 创建 size×size 格、每格 cellSize 像素的终端绘图表面
func NewSurface(size, cellSize int) *Surface {
	if cellSize <= 0 {
		cellSize = 1
	}
	s := &Surface{size: size, cellSize: cellSize}
	s.Clear()
	return s
}

// Clear 实现 pixelcanvas.Surface
func (s *Surface) Clear() {
	s.fills = make([][]string, s.size)
	for i := range s.fills {
		s.fills[i] = make([]string, s.size)
	}
	s.lines = 0
}

// StrokeLine 实现 pixelcanvas.Surface
func (s *Surface) StrokeLine(_, _, _, _ float64, color string, _ float64) {
	s.gridColor = color
	s.lines++
}

// FillRect 实现 pixelcanvas.Surface，矩形覆盖到的格子都会被填充
func (s *Surface) FillRect(x, y, w, h float64, color string) {
	c0, r0 := int(x)/s.cellSize, int(y)/s.cellSize
	c1, r1 := int(x+w-1)/s.cellSize, int(y+h-1)/s.cellSize
	for r := max(r0, 0); r <= r1 && r < s.size; r++ {
		for c := max(c0, 0); c <= c1 && c < s.size; c++ {
			s.fills[r][c] = color
		}
	}
}

// Cell 返回格子当前显示的颜色，空字符串表示未上色
func (s *Surface) Cell(row, col int) string {
	if row < 0 || row >= s.size || col < 0 || col >= s.size {
		return ""
	}
	return s.fills[row][col]
}

// Lines 返回最近一次渲染画出的网格线数量
func (s *Surface) Lines() int { return s.lines }

// View 把当前内容输出为多行字符串
func (s *Surface) View() string {
	empty := lipgloss.NewStyle()
	if s.gridColor != "" {
		empty = empty.Foreground(lipgloss.Color(expandHex(s.gridColor)))
	}

	var b strings.Builder
	for r, row := range s.fills {
		for _, color := range row {
			if color == "" {
				b.WriteString(empty.Render("··"))
				continue
			}
			b.WriteString(lipgloss.NewStyle().
				Background(lipgloss.Color(expandHex(color))).
				Render(strings.Repeat(" ", CellWidth)))
		}
		if r < len(s.fills)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// expandHex 把 #rgb 简写展开为 #rrggbb，其它值原样返回
func expandHex(color string) string {
	if len(color) != 4 || color[0] != '#' {
		return color
	}
	return string([]byte{'#', color[1], color[1], color[2], color[2], color[3], color[3]})
}

package pixelcanvas

// CellAt 把相对画布左上角的指针坐标映射为 (row, col)。
// 使用向下取整除法，不做钳制，越界结果由调用方 (Grid.Paint) 检查。
// cellSize <= 0 时按 DefaultCellSize 计算，与 NewRenderer 一致。
func CellAt(x, y, cellSize int) (row, col int) {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return floorDiv(y, cellSize), floorDiv(x, cellSize)
}

// floorDiv 对负数也向下取整，-1/20 得到 -1 而不是 0
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

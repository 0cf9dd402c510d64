package desktop

import (
	"image/color"

	"github.com/gogpu/gg"
	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
)

// Surface 是绘制到 ebiten 离屏图像上的 pixelcanvas.Surface 实现
type Surface struct {
	img    *ebiten.Image
	colors map[string]color.Color
}

// NewSurface 创建 width×height 的离屏绘图表面
func NewSurface(width, height int) (*Surface, error) {
	img, err := ebiten.NewImage(width, height, ebiten.FilterDefault)
	if err != nil {
		return nil, err
	}
	return &Surface{img: img, colors: make(map[string]color.Color)}, nil
}

// Image 返回离屏图像
func (s *Surface) Image() *ebiten.Image { return s.img }

// Clear 实现 pixelcanvas.Surface，背景为白色
func (s *Surface) Clear() {
	_ = s.img.Fill(color.White)
}

// StrokeLine 实现 pixelcanvas.Surface。ebitenutil 只画一像素宽的线，线宽被忽略。
func (s *Surface) StrokeLine(x1, y1, x2, y2 float64, c string, _ float64) {
	ebitenutil.DrawLine(s.img, x1, y1, x2, y2, s.color(c))
}

// FillRect 实现 pixelcanvas.Surface
func (s *Surface) FillRect(x, y, w, h float64, c string) {
	ebitenutil.DrawRect(s.img, x, y, w, h, s.color(c))
}

func (s *Surface) color(hex string) color.Color {
	if c, ok := s.colors[hex]; ok {
		return c
	}
	c := gg.Hex(hex).Color()
	s.colors[hex] = c
	return c
}

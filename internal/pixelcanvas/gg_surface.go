package pixelcanvas

import (
	"bytes"
	"image"
	"io"

	"github.com/gogpu/gg"
)

// GGSurface 是基于 gogpu/gg 软件光栅化上下文的 Surface 实现，
// 用于服务端预览图、离线导出以及像素级测试。
type GGSurface struct {
	dc  *gg.Context
	err error
}

// NewGGSurface 创建 width×height 的绘图表面
func NewGGSurface(width, height int) *GGSurface {
	return &GGSurface{dc: gg.NewContext(width, height)}
}

// Clear 实现 Surface
func (s *GGSurface) Clear() {
	s.dc.Clear()
}

// StrokeLine 实现 Surface
func (s *GGSurface) StrokeLine(x1, y1, x2, y2 float64, color string, width float64) {
	s.dc.SetHexColor(color)
	s.dc.SetLineWidth(width)
	s.dc.DrawLine(x1, y1, x2, y2)
	s.keep(s.dc.Stroke())
}

// FillRect 实现 Surface
func (s *GGSurface) FillRect(x, y, w, h float64, color string) {
	s.dc.SetHexColor(color)
	s.dc.DrawRectangle(x, y, w, h)
	s.keep(s.dc.Fill())
}

// Err 返回绘制过程中遇到的第一个错误
func (s *GGSurface) Err() error { return s.err }

// Image 返回当前像素内容
func (s *GGSurface) Image() image.Image {
	return s.dc.Image()
}

// EncodePNG 把当前像素内容编码为 PNG
func (s *GGSurface) EncodePNG(w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	return s.dc.EncodePNG(w)
}

// Close 释放上下文资源
func (s *GGSurface) Close() error {
	return s.dc.Close()
}

func (s *GGSurface) keep(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

// RenderPNG 用 GGSurface 渲染网格并返回 PNG 字节
func RenderPNG(g *Grid, cellSize int) ([]byte, error) {
	r := NewRenderer(cellSize)
	extent := r.Extent(g)
	surface := NewGGSurface(extent, extent)
	defer surface.Close()

	r.Render(surface, g)

	var buf bytes.Buffer
	if err := surface.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

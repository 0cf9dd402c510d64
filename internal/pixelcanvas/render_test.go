package pixelcanvas

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSurface 记录所有绘制调用，便于断言绘制顺序
type recordingSurface struct {
	ops []string
}

func (s *recordingSurface) Clear() { s.ops = append(s.ops, "clear") }

func (s *recordingSurface) StrokeLine(x1, y1, x2, y2 float64, color string, width float64) {
	s.ops = append(s.ops, fmt.Sprintf("line %g,%g-%g,%g %s %g", x1, y1, x2, y2, color, width))
}

func (s *recordingSurface) FillRect(x, y, w, h float64, color string) {
	s.ops = append(s.ops, fmt.Sprintf("fill %g,%g %gx%g %s", x, y, w, h, color))
}

func (s *recordingSurface) reset() { s.ops = nil }

func (s *recordingSurface) fills() []string {
	var out []string
	for _, op := range s.ops {
		if len(op) > 4 && op[:4] == "fill" {
			out = append(out, op)
		}
	}
	return out
}

func TestRenderer_DrawOrder(t *testing.T) {
	g, err := NewGrid(2, nil)
	require.NoError(t, err)
	g.Paint(1, 0, "#f00")

	s := &recordingSurface{}
	NewRenderer(10).Render(s, g)

	expected := []string{
		"clear",
		"line 0,0-0,20 #ddd 1",
		"line 10,0-10,20 #ddd 1",
		"line 20,0-20,20 #ddd 1",
		"line 0,0-20,0 #ddd 1",
		"line 0,10-20,10 #ddd 1",
		"line 0,20-20,20 #ddd 1",
		"fill 0,10 10x10 #f00",
	}
	assert.Equal(t, expected, s.ops)
}

func TestRenderer_DefaultCellSize(t *testing.T) {
	r := NewRenderer(0)
	assert.Equal(t, DefaultCellSize, r.CellSize())

	g, _ := NewGrid(DefaultGridSize, nil)
	assert.Equal(t, 640, r.Extent(g))
}

func TestRenderer_IdempotentOnRecordingSurface(t *testing.T) {
	g, _ := NewGrid(3, nil)
	g.Paint(0, 0, "#000")
	g.Paint(2, 2, "#fff")

	s := &recordingSurface{}
	r := NewRenderer(5)
	r.Render(s, g)
	first := append([]string(nil), s.ops...)
	s.reset()
	r.Render(s, g)
	assert.Equal(t, first, s.ops)
}

func TestGGSurface_IdenticalPixelsOnRepeatedRender(t *testing.T) {
	g, _ := NewGrid(4, nil)
	g.Paint(2, 1, "#ff0000")
	g.Paint(0, 3, "#0000ff")

	r := NewRenderer(10)
	s := NewGGSurface(40, 40)
	defer s.Close()

	r.Render(s, g)
	require.NoError(t, s.Err())
	first := pixels(t, s.Image())

	r.Render(s, g)
	require.NoError(t, s.Err())
	assert.Equal(t, first, pixels(t, s.Image()))
}

func TestGGSurface_FillsPaintedCells(t *testing.T) {
	g, _ := NewGrid(4, nil)
	g.Paint(2, 1, "#ff0000")

	s := NewGGSurface(40, 40)
	defer s.Close()
	NewRenderer(10).Render(s, g)

	// 格子 (2,1) 的中心像素
	r, gr, b, a := s.Image().At(15, 25).RGBA()
	assert.InDelta(t, 0xffff, r, 0x0300)
	assert.InDelta(t, 0, gr, 0x0300)
	assert.InDelta(t, 0, b, 0x0300)
	assert.InDelta(t, 0xffff, a, 0x0300)

	// 未上色格子中心保持透明
	_, _, _, a = s.Image().At(5, 5).RGBA()
	assert.InDelta(t, 0, a, 0x0300)
}

func TestRenderPNG(t *testing.T) {
	g, _ := NewGrid(3, nil)
	g.Paint(1, 1, "#00ff00")

	data, err := RenderPNG(g, 8)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 24, 24), img.Bounds())
}

func pixels(t *testing.T, img image.Image) []byte {
	t.Helper()
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out = append(out, byte(r>>8), byte(g>>8), byte(bl>>8), byte(a>>8))
		}
	}
	return out
}

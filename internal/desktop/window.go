package desktop

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"

	"pixel-canvas/internal/pixelcanvas"
)

// statusHeight 画布上方状态栏的高度
const statusHeight = 16

// Window 是基于 ebiten 的桌面像素编辑器窗口
type Window struct {
	editor  *pixelcanvas.Editor
	surface *Surface
	pointer pixelcanvas.Pointer

	notices chan pixelcanvas.Notice
	notice  *pixelcanvas.Notice
	canvas  *ebiten.DrawImageOptions
}

// NewWindow 创建窗口以及绘制到离屏图像的编辑器
func NewWindow(cfg pixelcanvas.Config, saver pixelcanvas.Saver) (*Window, error) {
	cfg = cfg.Resolved()
	extent := cfg.GridSize * cfg.CellSize
	surface, err := NewSurface(extent, extent)
	if err != nil {
		return nil, err
	}

	w := &Window{
		surface: surface,
		notices: make(chan pixelcanvas.Notice, 8),
		canvas:  &ebiten.DrawImageOptions{},
	}
	w.canvas.GeoM.Translate(0, statusHeight)

	notifier := pixelcanvas.NotifierFunc(func(n pixelcanvas.Notice) {
		select {
		case w.notices <- n:
		default:
		}
	})
	w.editor, err = pixelcanvas.NewEditor(cfg, surface, saver, notifier)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Editor 返回底层编辑器
func (w *Window) Editor() *pixelcanvas.Editor { return w.editor }

// update 是 ebiten 的每帧回调，编辑器调用全部发生在这里
func (w *Window) update(screen *ebiten.Image) error {
	select {
	case n := <-w.notices:
		w.notice = &n
	default:
	}
	if w.notice != nil && w.notice.Expired(time.Now()) {
		w.notice = nil
	}

	extent := w.editor.Extent()
	cx, cy := ebiten.CursorPosition()
	y := cy - statusHeight
	inside := cx >= 0 && cx < extent && y >= 0 && y < extent
	w.pointer.Poll(w.editor, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), cx, y, inside)

	if ebiten.IsDrawingSkipped() {
		return nil
	}

	if err := screen.DrawImage(w.surface.Image(), w.canvas); err != nil {
		return err
	}
	return ebitenutil.DebugPrint(screen, w.status())
}

func (w *Window) status() string {
	if w.notice != nil {
		return w.notice.Message
	}
	if !w.editor.Editable() {
		return "read only"
	}
	return fmt.Sprintf("color %s", w.editor.CurrentColor())
}

// Run 打开窗口并阻塞到窗口关闭，退出前等待进行中的保存完成
func Run(cfg pixelcanvas.Config, title string, saver pixelcanvas.Saver) error {
	w, err := NewWindow(cfg, saver)
	if err != nil {
		return err
	}
	extent := w.editor.Extent()
	err = ebiten.Run(w.update, extent, extent+statusHeight, 1, "Pixel Canvas - "+title)
	w.editor.Wait()
	return err
}

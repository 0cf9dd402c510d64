package pixelcanvas

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultGridSize 默认网格边长
	DefaultGridSize = 32
	// DefaultCellSize 默认每个格子的像素边长
	DefaultCellSize = 20
	// DefaultColor 默认画笔颜色
	DefaultColor = "#000000"
	// NoticeTTL 保存结果提示的显示时长，宿主在此之后自动关闭提示
	NoticeTTL = 3 * time.Second
)

// State 是拖拽交互状态机的状态
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config 是由宿主在启动时显式传入的编辑器配置
type Config struct {
	GridSize     int           // 网格边长 N，0 表示使用 DefaultGridSize
	CellSize     int           // 每格像素边长，0 表示使用 DefaultCellSize
	InitialGrid  [][]*string   // 已有网格数据，nil 表示空网格
	Editable     bool          // 是否允许编辑，构造后不可变
	CanvasID     string        // 对应服务端画布的标识，为空时不保存
	DefaultColor string        // 初始画笔颜色，为空时使用 DefaultColor
	Logger       *logrus.Entry // 可选日志
}

// Resolved 返回填充了默认值的配置副本
func (c Config) Resolved() Config {
	if c.GridSize == 0 {
		c.GridSize = DefaultGridSize
	}
	if c.CellSize <= 0 {
		c.CellSize = DefaultCellSize
	}
	if c.DefaultColor == "" {
		c.DefaultColor = DefaultColor
	}
	return c
}

// Saver 把整个网格作为一个原子载荷交给外部持久化客户端。重试策略属于实现方。
type Saver interface {
	SaveGrid(ctx context.Context, canvasID string, grid [][]*string) error
}

// SaverFunc 让普通函数实现 Saver
type SaverFunc func(ctx context.Context, canvasID string, grid [][]*string) error

// SaveGrid 实现 Saver
func (f SaverFunc) SaveGrid(ctx context.Context, canvasID string, grid [][]*string) error {
	return f(ctx, canvasID, grid)
}

// NoticeKind 提示类型
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

func (k NoticeKind) String() string {
	if k == NoticeSuccess {
		return "success"
	}
	return "error"
}

// Notice 是一次保存尝试的结果提示，纯展示用途，不带重试语义
type Notice struct {
	Kind    NoticeKind
	Message string
	Seq     uint64 // 本编辑会话内第几次保存
	At      time.Time
}

// Expired 报告提示在 now 时刻是否已超过 NoticeTTL
func (n Notice) Expired(now time.Time) bool {
	return now.Sub(n.At) >= NoticeTTL
}

// Notifier 接收保存结果。Notify 在保存 goroutine 中被调用，实现必须是并发安全的。
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc 让普通函数实现 Notifier
type NotifierFunc func(Notice)

// Notify 实现 Notifier
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Editor 拥有网格模型并驱动交互状态机。
// Press/Move/Release/Leave 以及其它修改方法只能在宿主的单个事件线程中调用；
// 只有保存是异步的。
type Editor struct {
	grid     *Grid
	renderer *Renderer
	surface  Surface
	saver    Saver
	notifier Notifier
	log      *logrus.Entry

	canvasID string
	editable bool
	color    string
	state    State

	saveSeq uint64
	saves   sync.WaitGroup
}

// NewEditor 根据配置创建编辑器，并立即渲染一次。
// saver 和 notifier 可以为 nil：前者表示不保存，后者表示忽略结果。
func NewEditor(cfg Config, surface Surface, saver Saver, notifier Notifier) (*Editor, error) {
	if surface == nil {
		return nil, fmt.Errorf("pixelcanvas: surface cannot be nil")
	}
	cfg = cfg.Resolved()
	grid, err := NewGrid(cfg.GridSize, cfg.InitialGrid)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.WithField("component", "pixelcanvas")
	}

	e := &Editor{
		grid:     grid,
		renderer: NewRenderer(cfg.CellSize),
		surface:  surface,
		saver:    saver,
		notifier: notifier,
		log:      log.WithField("canvas_id", cfg.CanvasID),
		canvasID: cfg.CanvasID,
		editable: cfg.Editable,
		color:    cfg.DefaultColor,
		state:    Idle,
	}
	e.Render()
	return e, nil
}

// Grid 返回编辑器持有的网格，调用方不得在事件线程之外读取
func (e *Editor) Grid() *Grid { return e.grid }

// State 返回当前交互状态
func (e *Editor) State() State { return e.state }

// Editable 报告是否允许编辑
func (e *Editor) Editable() bool { return e.editable }

// CanvasID 返回画布标识
func (e *Editor) CanvasID() string { return e.canvasID }

// CellSize 返回每格像素边长
func (e *Editor) CellSize() int { return e.renderer.CellSize() }

// Extent 返回画布像素边长
func (e *Editor) Extent() int { return e.renderer.Extent(e.grid) }

// CurrentColor 返回当前画笔颜色
func (e *Editor) CurrentColor() string { return e.color }

// SetCurrentColor 替换画笔颜色，空字符串被忽略
func (e *Editor) SetCurrentColor(color string) {
	if color == "" {
		return
	}
	e.color = color
}

// Render 重新绘制整个画布
func (e *Editor) Render() {
	e.renderer.Render(e.surface, e.grid)
}

// Press 处理指针按下：Idle -> Dragging，并在按下位置绘制一次
func (e *Editor) Press(x, y int) {
	if !e.editable {
		return
	}
	e.state = Dragging
	e.paintAt(x, y)
}

// Move 处理指针移动：仅在 Dragging 状态下绘制
func (e *Editor) Move(x, y int) {
	if !e.editable || e.state != Dragging {
		return
	}
	e.paintAt(x, y)
}

// Release 处理指针释放：Dragging -> Idle，并发起恰好一次保存
func (e *Editor) Release() {
	if e.state != Dragging {
		return
	}
	e.state = Idle
	e.save()
}

// Leave 处理指针离开画布：中止拖拽，不保存
func (e *Editor) Leave() {
	e.state = Idle
}

// Wait 阻塞直到所有进行中的保存完成
func (e *Editor) Wait() {
	e.saves.Wait()
}

func (e *Editor) paintAt(x, y int) {
	row, col := CellAt(x, y, e.renderer.CellSize())
	if e.grid.Paint(row, col, e.color) {
		e.Render()
	}
}

// save 在事件线程中同步生成快照，然后异步交给 Saver。
// 进行中的保存不阻塞后续编辑，多个保存可以重叠，服务端以最后写入为准。
func (e *Editor) save() {
	if e.saver == nil || e.canvasID == "" {
		e.log.Debug("No saver or canvas id configured, skipping save")
		return
	}
	e.saveSeq++
	seq := e.saveSeq
	snapshot := e.grid.Serialize()
	saver, notifier, canvasID := e.saver, e.notifier, e.canvasID
	logCtx := e.log.WithField("save_seq", seq)
	logCtx.Debug("Dispatching grid save")

	e.saves.Add(1)
	go func() {
		defer e.saves.Done()
		notice := Notice{Kind: NoticeSuccess, Message: "Saved", Seq: seq}
		if err := saver.SaveGrid(context.Background(), canvasID, snapshot); err != nil {
			logCtx.WithError(err).Debug("Grid save failed")
			notice.Kind = NoticeError
			notice.Message = fmt.Sprintf("Save failed: %v", err)
		} else {
			logCtx.Debug("Grid saved")
		}
		notice.At = time.Now()
		if notifier != nil {
			notifier.Notify(notice)
		}
	}()
}

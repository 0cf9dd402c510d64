package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pixel-canvas/internal/pixelcanvas"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model 是终端像素编辑器的 bubbletea 模型。
// 所有编辑器调用都发生在 Update 中，满足编辑器单事件线程的要求。
type Model struct {
	editor   *pixelcanvas.Editor
	surface  *Surface
	notifier *Notifier
	palette  []string
	title    string

	notice    *pixelcanvas.Notice
	dismissIn time.Duration

	// 网格左上角在终端中的位置，第 0 行是标题
	originX, originY int
}

// Options 是创建 Model 所需的参数
type Options struct {
	Title   string
	Palette []string
	Saver   pixelcanvas.Saver
}

// New 创建 Model 实例，编辑器直接绘制到终端 Surface 上
func New(cfg pixelcanvas.Config, opts Options) (*Model, error) {
	cfg = cfg.Resolved()
	surface := NewSurface(cfg.GridSize, cfg.CellSize)
	notifier := NewNotifier(0)

	editor, err := pixelcanvas.NewEditor(cfg, surface, opts.Saver, notifier)
	if err != nil {
		return nil, err
	}
	title := opts.Title
	if title == "" {
		title = "Pixel Canvas"
	}
	return &Model{
		editor:    editor,
		surface:   surface,
		notifier:  notifier,
		palette:   opts.Palette,
		title:     title,
		dismissIn: pixelcanvas.NoticeTTL,
		originX:   0,
		originY:   1,
	}, nil
}

// Editor 返回底层编辑器
func (m *Model) Editor() *pixelcanvas.Editor { return m.editor }

// Init 实现 tea.Model
func (m *Model) Init() tea.Cmd {
	return m.notifier.wait()
}

// Update 实现 tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case noticeMsg:
		notice := pixelcanvas.Notice(msg)
		m.notice = &notice
		seq := notice.Seq
		return m, tea.Batch(
			m.notifier.wait(),
			tea.Tick(m.dismissIn, func(time.Time) tea.Msg { return dismissNoticeMsg{seq: seq} }),
		)

	case dismissNoticeMsg:
		// 只关闭仍在显示的同一条提示
		if m.notice != nil && m.notice.Seq == msg.seq {
			m.notice = nil
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "c":
		m.cycleColor()
		return nil
	}
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		idx := int(key[0] - '1')
		if idx < len(m.palette) {
			m.editor.SetCurrentColor(m.palette[idx])
		}
	}
	return nil
}

func (m *Model) cycleColor() {
	if len(m.palette) == 0 {
		return
	}
	next := 0
	for i, c := range m.palette {
		if strings.EqualFold(c, m.editor.CurrentColor()) {
			next = (i + 1) % len(m.palette)
			break
		}
	}
	m.editor.SetCurrentColor(m.palette[next])
}

// handleMouse 把终端单元格坐标换算为画布像素坐标 (取格子中心) 后交给编辑器
func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y, inside := m.toCanvas(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && inside {
			m.editor.Press(x, y)
		}
	case tea.MouseActionMotion:
		if m.editor.State() != pixelcanvas.Dragging {
			return
		}
		if inside {
			m.editor.Move(x, y)
		} else {
			m.editor.Leave()
		}
	case tea.MouseActionRelease:
		m.editor.Release()
	}
}

func (m *Model) toCanvas(termX, termY int) (x, y int, inside bool) {
	cs := m.editor.CellSize()
	n := m.editor.Grid().Size()
	_, col := pixelcanvas.CellAt(termX-m.originX, 0, CellWidth)
	row := termY - m.originY
	inside = col >= 0 && col < n && row >= 0 && row < n
	return col*cs + cs/2, row*cs + cs/2, inside
}

// View 实现 tea.Model
func (m *Model) View() string {
	var b strings.Builder

	header := titleStyle.Render(m.title)
	if !m.editor.Editable() {
		header += helpStyle.Render("  (read only)")
	}
	b.WriteString(header)
	b.WriteByte('\n')
	b.WriteString(m.surface.View())
	b.WriteByte('\n')

	if m.editor.Editable() {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(expandHex(m.editor.CurrentColor()))).Render("  ")
		b.WriteString(fmt.Sprintf("color %s %s", swatch, m.editor.CurrentColor()))
		b.WriteByte('\n')
	}

	if m.notice != nil {
		style := successStyle
		if m.notice.Kind == pixelcanvas.NoticeError {
			style = errorStyle
		}
		b.WriteString(style.Render(m.notice.Message))
	}
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("drag to paint • 1-9 pick color • c cycle • q quit"))
	return b.String()
}

// Run 启动终端编辑器，退出前等待进行中的保存完成
func Run(cfg pixelcanvas.Config, opts Options) error {
	m, err := New(cfg, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	m.editor.Wait()
	return err
}

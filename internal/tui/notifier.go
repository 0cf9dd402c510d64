package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"pixel-canvas/internal/pixelcanvas"
)

// noticeMsg 把保存结果送回事件循环
type noticeMsg pixelcanvas.Notice

// dismissNoticeMsg 在 NoticeTTL 后关闭对应序号的提示
type dismissNoticeMsg struct{ seq uint64 }

// Notifier 把保存 goroutine 中产生的提示转交给 bubbletea 事件循环
type Notifier struct {
	ch chan pixelcanvas.Notice
}

// NewNotifier 创建带缓冲的 Notifier 实例
func NewNotifier(buf int) *Notifier {
	if buf <= 0 {
		buf = 8
	}
	return &Notifier{ch: make(chan pixelcanvas.Notice, buf)}
}

// Notify 实现 pixelcanvas.Notifier。缓冲区满时丢弃提示，不阻塞保存 goroutine。
func (n *Notifier) Notify(notice pixelcanvas.Notice) {
	select {
	case n.ch <- notice:
	default:
	}
}

// wait 返回等待下一条提示的命令
func (n *Notifier) wait() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-n.ch)
	}
}

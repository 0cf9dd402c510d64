package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixel-canvas/internal/pixelcanvas"
)

type countingSaver struct {
	mu    sync.Mutex
	grids [][][]*string
}

func (s *countingSaver) SaveGrid(_ context.Context, _ string, grid [][]*string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grids = append(s.grids, grid)
	return nil
}

func (s *countingSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.grids)
}

func newTestModel(t *testing.T, editable bool) (*Model, *countingSaver) {
	t.Helper()
	saver := &countingSaver{}
	m, err := New(pixelcanvas.Config{
		GridSize:     4,
		CellSize:     20,
		Editable:     editable,
		CanvasID:     "7",
		DefaultColor: "#ff0000",
	}, Options{Title: "test", Palette: []string{"#000000", "#00ff00", "#0000ff"}, Saver: saver})
	require.NoError(t, err)
	return m, saver
}

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func TestModel_DragPaintsAndSavesOnce(t *testing.T) {
	m, saver := newTestModel(t, true)

	// 终端第 3 列属于第 1 个格子，第 2 行是网格第 1 行
	m.Update(mouse(tea.MouseActionPress, 3, 2))
	assert.Equal(t, pixelcanvas.Dragging, m.Editor().State())
	assert.Equal(t, "#ff0000", m.surface.Cell(1, 1))

	m.Update(mouse(tea.MouseActionMotion, 6, 2))
	assert.Equal(t, "#ff0000", m.surface.Cell(1, 3))

	m.Update(mouse(tea.MouseActionRelease, 6, 2))
	m.Editor().Wait()

	assert.Equal(t, pixelcanvas.Idle, m.Editor().State())
	assert.Equal(t, 1, saver.count())
}

func TestModel_MotionOutsideGridLeaves(t *testing.T) {
	m, saver := newTestModel(t, true)

	m.Update(mouse(tea.MouseActionPress, 0, 1))
	m.Update(mouse(tea.MouseActionMotion, 0, 0)) // 标题行
	assert.Equal(t, pixelcanvas.Idle, m.Editor().State())

	m.Update(mouse(tea.MouseActionMotion, 2, 1))
	assert.Equal(t, "", m.surface.Cell(0, 1))

	m.Update(mouse(tea.MouseActionRelease, 2, 1))
	m.Editor().Wait()
	assert.Equal(t, 0, saver.count())
}

func TestModel_ReadOnlyIgnoresMouse(t *testing.T) {
	m, saver := newTestModel(t, false)

	m.Update(mouse(tea.MouseActionPress, 0, 1))
	m.Update(mouse(tea.MouseActionRelease, 0, 1))
	m.Editor().Wait()

	assert.Equal(t, "", m.surface.Cell(0, 0))
	assert.Equal(t, 0, saver.count())
	assert.Contains(t, m.View(), "read only")
}

func TestModel_PaletteKeys(t *testing.T) {
	m, _ := newTestModel(t, true)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	assert.Equal(t, "#00ff00", m.Editor().CurrentColor())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9")})
	assert.Equal(t, "#00ff00", m.Editor().CurrentColor(), "out of range index is ignored")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Equal(t, "#0000ff", m.Editor().CurrentColor())
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Equal(t, "#000000", m.Editor().CurrentColor())
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := newTestModel(t, true)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_NoticeShownThenDismissed(t *testing.T) {
	m, _ := newTestModel(t, true)

	_, cmd := m.Update(noticeMsg(pixelcanvas.Notice{Kind: pixelcanvas.NoticeError, Message: "Save failed: boom", Seq: 1}))
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Save failed: boom")

	// 旧提示的关闭消息不影响新提示
	m.Update(noticeMsg(pixelcanvas.Notice{Kind: pixelcanvas.NoticeSuccess, Message: "Saved", Seq: 2}))
	m.Update(dismissNoticeMsg{seq: 1})
	assert.Contains(t, m.View(), "Saved")

	m.Update(dismissNoticeMsg{seq: 2})
	assert.NotContains(t, m.View(), "Saved")
}

func TestNotifier_DropsWhenFull(t *testing.T) {
	n := NewNotifier(1)
	n.Notify(pixelcanvas.Notice{Seq: 1})
	n.Notify(pixelcanvas.Notice{Seq: 2})

	msg := n.wait()()
	assert.Equal(t, uint64(1), pixelcanvas.Notice(msg.(noticeMsg)).Seq)
}

func TestModel_ToCanvas(t *testing.T) {
	m, _ := newTestModel(t, true)

	x, y, inside := m.toCanvas(3, 2)
	assert.Equal(t, 30, x)
	assert.Equal(t, 30, y)
	assert.True(t, inside)

	m.originX = 2
	_, _, inside = m.toCanvas(1, 2)
	assert.False(t, inside, "columns left of the grid map to a negative cell")
}

package pixelcanvas

// Pointer 把轮询式输入 (每帧读取一次按键状态和光标位置) 转换为编辑器的具名状态转移。
// 事件驱动的宿主直接调用 Press/Move/Release/Leave，不需要它。
type Pointer struct {
	down   bool
	inside bool
	x, y   int
}

// Poll 根据本帧的输入状态驱动编辑器：
//   - 按键从松开变为按下且光标在画布内：Press
//   - 按住时光标在画布内移动：Move
//   - 按住时光标离开画布：Leave
//   - 按键从按下变为松开：Release
func (p *Pointer) Poll(e *Editor, pressed bool, x, y int, inside bool) {
	switch {
	case pressed && !p.down:
		if inside {
			e.Press(x, y)
		}
	case pressed && p.down:
		if !inside {
			if p.inside {
				e.Leave()
			}
		} else if x != p.x || y != p.y || !p.inside {
			e.Move(x, y)
		}
	case !pressed && p.down:
		e.Release()
	}
	p.down, p.inside, p.x, p.y = pressed, inside, x, y
}

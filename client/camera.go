package client

// Camera 视口左上角在世界图中的偏移。派生状态：由本地玩家位置或拖拽增量
// 重新计算，不持久化；每次应用都按轴夹取到世界边界内
type Camera struct {
	X, Y float64
}

// Clamp 将相机按轴夹取到 [0, world-viewport]。视口大于世界时取 0。
// 幂等，且每次绘制前都会重新应用（窗口缩放会使旧值失效）
func (c *Camera) Clamp(worldW, worldH, viewW, viewH float64) {
	c.X = clampAxis(c.X, worldW-viewW)
	c.Y = clampAxis(c.Y, worldH-viewH)
}

func clampAxis(v, max float64) float64 {
	if max < 0 {
		max = 0
	}
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// CenterOn 将给定世界坐标（通常为本地玩家位置）置于视口中心，随后夹取。
// 相机硬跳转，无平滑过渡
func (c *Camera) CenterOn(x, y, worldW, worldH, viewW, viewH float64) {
	c.X = x - viewW/2
	c.Y = y - viewH/2
	c.Clamp(worldW, worldH, viewW, viewH)
}

// PanBy 拖拽平移：指针向右拖动时相机向左移动（抓取拖拽手感），随后夹取
func (c *Camera) PanBy(dx, dy, worldW, worldH, viewW, viewH float64) {
	c.X -= dx
	c.Y -= dy
	c.Clamp(worldW, worldH, viewW, viewH)
}

// WorldToScreen 世界坐标到屏幕坐标的纯平移
func (c *Camera) WorldToScreen(x, y float64) (float64, float64) {
	return x - c.X, y - c.Y
}

// ScreenToWorld 屏幕坐标到世界坐标，与 WorldToScreen 互逆（用于点击定位）
func (c *Camera) ScreenToWorld(x, y float64) (float64, float64) {
	return x + c.X, y + c.Y
}

package client

import (
	"image"

	"go.uber.org/zap"
)

// Surface 渲染目标抽象：外部提供的二维绘制表面（桌面窗口、网页画布或
// 离屏位图）。渲染管线只消费该接口，不关心具体后端
type Surface interface {
	// Size 返回当前视口尺寸（像素）；窗口缩放后可能变化
	Size() (w, h int)
	// Clear 清空整个视口
	Clear()
	// DrawImage 将 src 的 sr 子矩形绘制到以 (x, y) 为左上角的位置；
	// mirrored 为真时水平翻转
	DrawImage(src image.Image, sr image.Rectangle, x, y int, mirrored bool)
	// DrawText 在 (x, y) 处绘制带描边的文本，水平居中于 x
	DrawText(s string, x, y int)
}

// Renderer 渲染管线：每次可见状态变更后同步重绘整个视口，不走固定时钟
type Renderer struct {
	surface  Surface
	worldImg image.Image
	world    *World
	camera   *Camera
	metrics  *Metrics
	log      *zap.SugaredLogger
}

// NewRenderer 组装渲染管线；worldImg 为固定尺寸的世界背景图
func NewRenderer(s Surface, worldImg image.Image, w *World, c *Camera, m *Metrics, log *zap.SugaredLogger) *Renderer {
	return &Renderer{surface: s, worldImg: worldImg, world: w, camera: c, metrics: m, log: log}
}

// Viewport 当前视口尺寸
func (r *Renderer) Viewport() (float64, float64) {
	w, h := r.surface.Size()
	return float64(w), float64(h)
}

// WorldSize 世界背景图尺寸
func (r *Renderer) WorldSize() (float64, float64) {
	b := r.worldImg.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Draw 重绘一帧：先夹取相机（视口可能已缩放），再绘制世界子矩形、
// 玩家精灵与名字标签。玩家按映射遍历顺序绘制，无 z 排序
func (r *Renderer) Draw() {
	vw, vh := r.surface.Size()
	ww, wh := r.WorldSize()
	r.camera.Clamp(ww, wh, float64(vw), float64(vh))

	r.surface.Clear()
	wb := r.worldImg.Bounds()
	sr := image.Rect(
		wb.Min.X+int(r.camera.X),
		wb.Min.Y+int(r.camera.Y),
		wb.Min.X+int(r.camera.X)+vw,
		wb.Min.Y+int(r.camera.Y)+vh,
	).Intersect(wb)
	r.surface.DrawImage(r.worldImg, sr, 0, 0, false)

	for _, p := range r.world.Players {
		sx, sy := r.camera.WorldToScreen(p.X, p.Y)
		img, mirror := r.world.FrameImage(p.Avatar, p.Facing, p.Frame)
		if img == nil {
			// 帧缺失或尚未就绪：跳过该精灵，不视为错误
			r.log.Debugf("skip sprite for %s: avatar=%q frame=%d", p.ID, p.Avatar, p.Frame)
			continue
		}
		b := img.Bounds()
		x := int(sx) - b.Dx()/2
		y := int(sy) - b.Dy()/2
		r.surface.DrawImage(img, b, x, y, mirror)
		r.surface.DrawText(p.Name, int(sx), y-4)
	}

	r.metrics.IncRender()
	r.log.Debugf("frame drawn: camera=(%.0f,%.0f) players=%d", r.camera.X, r.camera.Y, len(r.world.Players))
}

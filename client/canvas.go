package client

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// Canvas 基于内存位图的 Surface 实现。桌面/网页前端可用各自的绘制后端
// 替换它；测试也直接使用它
type Canvas struct {
	img *image.RGBA
}

// NewCanvas 创建指定视口尺寸的画布
func NewCanvas(w, h int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Size 当前视口尺寸
func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize 调整视口尺寸（窗口缩放）；内容不保留，下一次 Draw 会整帧重绘
func (c *Canvas) Resize(w, h int) {
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Image 暴露底层位图，供前端上屏或测试断言像素
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Clear 以黑色清空视口
func (c *Canvas) Clear() {
	xdraw.Draw(c.img, c.img.Bounds(), image.NewUniform(color.Black), image.Point{}, xdraw.Src)
}

// DrawImage 将 src 的 sr 子矩形绘制到 (x, y)。mirrored 为真时水平翻转：
// 用 x 轴缩放 -1 的仿射变换配合最近邻采样，保证逐像素精确镜像
func (c *Canvas) DrawImage(src image.Image, sr image.Rectangle, x, y int, mirrored bool) {
	if !mirrored {
		dr := image.Rect(x, y, x+sr.Dx(), y+sr.Dy())
		xdraw.Draw(c.img, dr, src, sr.Min, xdraw.Over)
		return
	}
	m := f64.Aff3{
		-1, 0, float64(x + sr.Max.X),
		0, 1, float64(y - sr.Min.Y),
	}
	xdraw.NearestNeighbor.Transform(c.img, m, src, sr, xdraw.Over, nil)
}

// DrawText 绘制名字标签：四向偏移的黑色描边加白色填充，水平居中于 x
func (c *Canvas) DrawText(s string, x, y int) {
	if s == "" {
		return
	}
	face := basicfont.Face7x13
	left := x - font.MeasureString(face, s).Ceil()/2
	d := font.Drawer{Dst: c.img, Face: face}
	for _, off := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		d.Src = image.NewUniform(color.Black)
		d.Dot = fixed.P(left+off[0], y+off[1])
		d.DrawString(s)
	}
	d.Src = image.NewUniform(color.White)
	d.Dot = fixed.P(left, y)
	d.DrawString(s)
}

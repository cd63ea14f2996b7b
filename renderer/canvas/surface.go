package canvasrenderer

import (
	"github.com/tdewolff/canvas"
)

// surface 包装一次渲染所用的画布与上下文：左上角为原点，
// 1 画布单位对应 1 像素。并发渲染时每个请求持有独立的 surface。
type surface struct {
	c        *canvas.Canvas
	ctx      *canvas.Context
	w, h     float64
	released bool
}

func newSurface(width, height int) *surface {
	s := &surface{w: float64(width), h: float64(height)}
	s.c = canvas.New(s.w, s.h)
	s.ctx = canvas.NewContext(s.c)
	s.ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与像素保持左上角为原点
	return s
}

// Release 把画布重置为 1x1 的空白表面并丢弃全部内容。
// 编码之后无论成败都必须调用；重复调用无害。
// 释放后的绘制请求被拒绝，再次编码得到 1x1 图像。
func (s *surface) Release() {
	if s.released {
		return
	}
	s.released = true
	s.w, s.h = 1, 1
	s.c = canvas.New(1, 1)
	s.ctx = canvas.NewContext(s.c)
	s.ctx.SetCoordSystem(canvas.CartesianIV)
}

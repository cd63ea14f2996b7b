// Package canvasrenderer 基于 github.com/tdewolff/canvas 将水印任务
// 绘制为位图并编码输出。字体族缓存为进程内共享，绘图表面按请求独立。
package canvasrenderer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"

	"github.com/huuhuybn/miconvert-image-watermark/fonts"
	"github.com/huuhuybn/miconvert-image-watermark/layout"
	"github.com/huuhuybn/miconvert-image-watermark/renderer"
)

// Renderer 是位图水印渲染后端。
type Renderer struct {
	client *http.Client

	fontMu   sync.Mutex
	families map[string]*familyEntry
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ fonts.Installer   = (*Renderer)(nil)
)

// Options 配置渲染后端。
type Options struct {
	Client *http.Client // 拉取 http(s) 徽标所用的客户端，nil 用 http.DefaultClient
}

// New 以默认配置创建渲染后端。
func New() *Renderer { return NewWithOptions(Options{}) }

// NewWithOptions 以显式依赖创建渲染后端。
func NewWithOptions(opts Options) *Renderer {
	r := &Renderer{
		client:   opts.Client,
		families: map[string]*familyEntry{},
	}
	if r.client == nil {
		r.client = http.DefaultClient
	}
	return r
}

// Render 实现 renderer.Renderer：解码底图、压进像素预算、绘制水印、
// 编码输出。表面在编码后无论成败都会被释放。
func (r *Renderer) Render(ctx context.Context, job *renderer.Job) ([]byte, error) {
	if job == nil {
		return nil, fmt.Errorf("渲染任务为空")
	}
	logger := job.Logger
	if logger == nil {
		logger = slog.Default()
	}

	src, err := decodeSource(job.Source)
	if err != nil {
		return nil, &renderer.DecodeError{Err: err}
	}

	fromW, fromH := src.Bounds().Dx(), src.Bounds().Dy()
	size := renderer.ClampSize(fromW, fromH)
	if size.WasScaled {
		src = imaging.Resize(src, size.Width, size.Height, imaging.Lanczos)
		logger.Info("源图超出表面像素预算，已等比降采样",
			"from", fmt.Sprintf("%dx%d", fromW, fromH),
			"to", fmt.Sprintf("%dx%d", size.Width, size.Height))
		if job.OnDownscale != nil {
			job.OnDownscale(renderer.ScaleNotice{
				FromWidth: fromW, FromHeight: fromH,
				Width: size.Width, Height: size.Height,
			})
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := newSurface(size.Width, size.Height)
	defer s.Release()

	s.ctx.DrawImage(0, 0, src, canvas.DPMM(1))

	plan := &layout.Plan{
		Mode:       string(job.Mode),
		SurfaceW:   s.w,
		SurfaceH:   s.h,
		Anchor:     job.Place.Anchor,
		Multiplier: layout.Multiplier(s.w, job.Place.Scale),
		Rotate:     job.Place.Rotate,
	}

	switch {
	case job.Kind == renderer.KindText && job.Mode == renderer.ModeSingle:
		err = r.drawTextSingle(s, job, plan)
	case job.Kind == renderer.KindText && job.Mode == renderer.ModeTiled:
		err = r.drawTextTiled(s, job, plan)
	case job.Kind == renderer.KindLogo && job.Mode == renderer.ModeSingle:
		err = r.drawLogoSingle(ctx, s, job, plan)
	case job.Kind == renderer.KindLogo && job.Mode == renderer.ModeTiled:
		err = r.drawLogoTiled(ctx, s, job, plan)
	default:
		err = fmt.Errorf("未知的水印任务组合: kind=%s mode=%s", job.Kind, job.Mode)
	}
	if err != nil {
		return nil, err
	}

	if job.PlanPath != "" {
		if err := layout.WritePlanJSON(plan, job.PlanPath); err != nil {
			logger.Warn("排版计划写入失败", "path", job.PlanPath, "err", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return encodeSurface(s, job.Output)
}

// decodeSource 按 Image、Data、Reader 的顺序取底图并解码，
// 解码时自动应用 EXIF 方向。
func decodeSource(src renderer.SourceSpec) (image.Image, error) {
	switch {
	case src.Image != nil:
		return src.Image, nil
	case len(src.Data) > 0:
		return imaging.Decode(bytes.NewReader(src.Data), imaging.AutoOrientation(true))
	case src.Reader != nil:
		return imaging.Decode(src.Reader, imaging.AutoOrientation(true))
	default:
		return nil, fmt.Errorf("缺少源图")
	}
}

// Package watermark 在栅格图片上合成文字或图片水印并编码输出。
//
// 流水线为：配置校验 → 文案展开与字体解析 → 解码与安全降采样 →
// 排版与绘制 → 编码。文字水印按内容自动识别书写系统并安装对应
// 字体，安装失败时退回候选字体栈继续渲染；徽标加载失败则整个
// 请求失败。包级 Render 系列函数使用绑定 canvas 后端的默认流水
// 线，需要注入后端或字体解析器时自建 Pipeline。
package watermark

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/huuhuybn/miconvert-image-watermark/binding"
	"github.com/huuhuybn/miconvert-image-watermark/csscolor"
	"github.com/huuhuybn/miconvert-image-watermark/fonts"
	"github.com/huuhuybn/miconvert-image-watermark/layout"
	"github.com/huuhuybn/miconvert-image-watermark/renderer"
	canvasrenderer "github.com/huuhuybn/miconvert-image-watermark/renderer/canvas"
	"github.com/huuhuybn/miconvert-image-watermark/script"
)

// Pipeline 把渲染后端、字体解析器与日志器装配成水印流水线。
// 并发安全，可被多个请求同时使用。
type Pipeline struct {
	r        renderer.Renderer
	resolver *fonts.Resolver
	logger   *slog.Logger
}

// NewPipeline 装配流水线。resolver 为 nil 时自动创建一个；若后端
// 实现了 fonts.Installer（canvas 后端如此），解析到的字体会直接注
// 册进后端。logger 为 nil 时用 slog.Default。
func NewPipeline(r renderer.Renderer, resolver *fonts.Resolver, logger *slog.Logger) *Pipeline {
	if resolver == nil {
		if ins, ok := r.(fonts.Installer); ok {
			resolver = fonts.NewResolver(ins)
		} else {
			resolver = fonts.NewResolver(nil)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{r: r, resolver: resolver, logger: logger}
}

var defaultPipeline = sync.OnceValue(func() *Pipeline {
	backend := canvasrenderer.New()
	return NewPipeline(backend, fonts.NewResolver(backend), nil)
})

// Default 返回绑定 canvas 后端的进程级默认流水线。
func Default() *Pipeline { return defaultPipeline() }

// Render 从 r 读取源图并按 opts 合成水印，返回编码后的图像字节。
func Render(ctx context.Context, r io.Reader, opts Options) ([]byte, error) {
	return Default().Render(ctx, r, opts)
}

// RenderImage 以已解码的图片为源图合成水印。
func RenderImage(ctx context.Context, img image.Image, opts Options) ([]byte, error) {
	return Default().RenderImage(ctx, img, opts)
}

// RenderFile 读取本地图片文件并合成水印。
func RenderFile(ctx context.Context, path string, opts Options) ([]byte, error) {
	return Default().RenderFile(ctx, path, opts)
}

// Classify 暴露书写系统判定，供高级调用方单独使用。
func Classify(text string) script.Info { return script.Classify(text) }

// Resolve 暴露字体解析：识别书写系统、确保字体就位并返回字体栈。
func Resolve(ctx context.Context, text, userFamily string, weight int) fonts.Resolution {
	return Default().resolver.Resolve(ctx, text, userFamily, weight)
}

// InstallFont 以调用方给定的名字安装任意字体资产，与 Resolve 共享
// 同一安装缓存。
func InstallFont(ctx context.Context, name string, weight int, src fonts.Source) (fonts.Resolution, error) {
	return Default().resolver.InstallFont(ctx, name, weight, src)
}

// Render 从 r 读取源图并合成水印。
func (p *Pipeline) Render(ctx context.Context, r io.Reader, opts Options) ([]byte, error) {
	return p.render(ctx, renderer.SourceSpec{Reader: r}, opts)
}

// RenderImage 以已解码的图片为源图合成水印。
func (p *Pipeline) RenderImage(ctx context.Context, img image.Image, opts Options) ([]byte, error) {
	return p.render(ctx, renderer.SourceSpec{Image: img}, opts)
}

// RenderFile 读取本地图片文件并合成水印。
func (p *Pipeline) RenderFile(ctx context.Context, path string, opts Options) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	defer f.Close()
	return p.render(ctx, renderer.SourceSpec{Reader: f}, opts)
}

// render 是共同入口：先校验配置与绘图环境，再装配任务交给后端。
func (p *Pipeline) render(ctx context.Context, src renderer.SourceSpec, opts Options) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if p.r == nil {
		return nil, &EnvError{Reason: "未配置渲染后端"}
	}
	job, err := p.buildJob(ctx, &opts)
	if err != nil {
		return nil, err
	}
	job.Source = src

	out, err := p.r.Render(ctx, job)
	if err != nil {
		// 步距是否为正取决于量出的内容尺寸，后端才能判定，
		// 对调用方仍按配置错误报告。
		if errors.Is(err, renderer.ErrTileGeometry) {
			return nil, &ConfigError{Field: "tileSpacing", Reason: "内容尺寸与间距之和必须为正"}
		}
		return nil, err
	}
	return out, nil
}

// buildJob 把用户配置归一化为后端任务：补默认值、解析锚点与颜色、
// 展开文案占位符并解析字体。
func (p *Pipeline) buildJob(ctx context.Context, opts *Options) (*renderer.Job, error) {
	anchor, err := layout.ParseAnchor(opts.Position)
	if err != nil {
		return nil, &ConfigError{Field: "position", Reason: err.Error()}
	}
	tsx, tsy := opts.tileSpacing()
	job := &renderer.Job{
		Mode: renderer.Mode(opts.mode()),
		Place: renderer.PlaceSpec{
			Anchor:       anchor,
			Padding:      opts.padding(),
			OffsetX:      opts.OffsetX,
			OffsetY:      opts.OffsetY,
			Rotate:       opts.Rotate,
			Opacity:      opts.opacity(),
			Scale:        opts.Scale,
			TileSpacingX: tsx,
			TileSpacingY: tsy,
		},
		Output:      renderer.OutputSpec{MIME: opts.outputType(), Quality: opts.outputQuality()},
		PlanPath:    opts.PlanPath,
		Logger:      p.logger,
		OnDownscale: opts.OnDownscale,
	}

	switch opts.Type {
	case TypeText:
		spec, err := p.textSpec(ctx, opts.Text)
		if err != nil {
			return nil, err
		}
		job.Kind = renderer.KindText
		job.Text = spec
	case TypeImage:
		img := opts.Image
		frac := img.WidthFraction
		if frac == 0 {
			frac = DefaultWidthFraction
		}
		job.Kind = renderer.KindLogo
		job.Logo = &renderer.LogoSpec{
			Image:         img.Element,
			Data:          img.Data,
			Source:        img.Source,
			WidthFraction: frac,
		}
	}
	return job, nil
}

// textSpec 展开占位符、解析字体与颜色，产出后端文本样式。
func (p *Pipeline) textSpec(ctx context.Context, t *TextOptions) (*renderer.TextSpec, error) {
	content := binding.Interpolate(t.Content, t.Vars)

	weight := t.FontWeight
	if weight <= 0 {
		weight = DefaultFontWeight
	}
	size := t.FontSize
	if size == 0 {
		size = DefaultFontSize
	}

	res := p.resolver.Resolve(ctx, content, t.FontFamily, weight)

	fill := t.FillColor
	if fill == "" {
		fill = DefaultFillColor
	}
	fillCol, err := csscolor.Parse(fill)
	if err != nil {
		return nil, &ConfigError{Field: "text.fillColor", Reason: err.Error()}
	}

	spec := &renderer.TextSpec{
		Content:    content,
		Stack:      res.Stack,
		FontSize:   size,
		Weight:     weight,
		Italic:     isItalic(t.FontStyle),
		Fill:       fillCol,
		LineHeight: t.LineHeight,
	}

	if t.StrokeColor != "" {
		c, err := csscolor.Parse(t.StrokeColor)
		if err != nil {
			return nil, &ConfigError{Field: "text.strokeColor", Reason: err.Error()}
		}
		spec.Stroke = &c
		spec.StrokeWidth = t.StrokeWidth
		if spec.StrokeWidth == 0 {
			spec.StrokeWidth = DefaultStrokeWidth
		}
	}
	if t.ShadowColor != "" {
		c, err := csscolor.Parse(t.ShadowColor)
		if err != nil {
			return nil, &ConfigError{Field: "text.shadowColor", Reason: err.Error()}
		}
		spec.Shadow = &renderer.ShadowSpec{
			Color:   c,
			Blur:    t.ShadowBlur,
			OffsetX: t.ShadowOffsetX,
			OffsetY: t.ShadowOffsetY,
		}
	}
	return spec, nil
}

// isItalic 判断 CSS font-style 是否表示斜体。
func isItalic(style string) bool {
	s := strings.ToLower(strings.TrimSpace(style))
	return strings.Contains(s, "italic") || strings.Contains(s, "oblique")
}

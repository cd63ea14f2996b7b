// Package renderer 定义水印渲染后端的契约：任务模型、安全尺寸与错误类型。
// 具体绘制实现位于子包（如 renderer/canvas）。
package renderer

import (
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"

	"github.com/huuhuybn/miconvert-image-watermark/layout"
)

// Renderer 将水印任务渲染为最终编码的图像字节。
// 实现必须可被多个 goroutine 并发调用，每次调用持有独立的绘图表面。
type Renderer interface {
	Render(ctx context.Context, job *Job) ([]byte, error)
}

// Kind 区分文本水印与图片水印。
type Kind string

const (
	KindText Kind = "text"
	KindLogo Kind = "image"
)

// Mode 区分单个放置与整面平铺。
type Mode string

const (
	ModeSingle Mode = "single"
	ModeTiled  Mode = "tiled"
)

// Job 是经过校验与归一化的水印任务，后端按字段直接绘制，不再做默认值处理。
type Job struct {
	Source SourceSpec
	Kind   Kind
	Mode   Mode
	Text   *TextSpec // Kind 为 text 时非空
	Logo   *LogoSpec // Kind 为 image 时非空
	Place  PlaceSpec
	Output OutputSpec

	PlanPath    string            // 非空时把排版计划写为 JSON，仅用于调试
	Logger      *slog.Logger      // nil 时使用 slog.Default
	OnDownscale func(ScaleNotice) // 源图被安全降采样时的通知，可为 nil
}

// SourceSpec 携带底图，按 Image、Data、Reader 顺序取第一个非空项。
type SourceSpec struct {
	Image  image.Image
	Data   []byte
	Reader io.Reader
}

// TextSpec 描述文本水印的内容与样式。颜色均为非预乘 RGBA，
// 绘制时再与 PlaceSpec.Opacity 相乘。
type TextSpec struct {
	Content     string       // 已完成占位符展开的最终文案，\n 分行
	Stack       []string     // 字体族优先级列表，首个已注册者生效
	FontSize    float64      // 基准字号（像素），响应式系数在绘制时叠加
	Weight      int          // CSS 数值字重
	Italic      bool
	Fill        color.NRGBA
	Stroke      *color.NRGBA // nil 表示不描边
	StrokeWidth float64
	Shadow      *ShadowSpec // nil 表示无阴影
	LineHeight  float64     // 0 时取 1.3 倍缩放后字号
}

// ShadowSpec 描述文本阴影。Blur 为近似模糊半径。
type ShadowSpec struct {
	Color   color.NRGBA
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// LogoSpec 描述图片水印，按 Image、Data、Source 顺序取第一个非空项。
// 加载失败对渲染是致命的，以 AssetError 返回。
type LogoSpec struct {
	Image         image.Image
	Data          []byte
	Source        string  // 本地路径或 http(s) 地址
	WidthFraction float64 // 徽标宽度占表面宽度的比例
}

// PlaceSpec 描述水印的摆放方式，对文本与图片水印通用。
type PlaceSpec struct {
	Anchor       layout.Anchor
	Padding      float64
	OffsetX      float64
	OffsetY      float64
	Rotate       float64 // 顺时针角度；single 绕水印盒中心，tiled 绕表面中心
	Opacity      float64 // [0,1]
	Scale        float64 // 响应式因子，0 表示关闭
	TileSpacingX float64 // 平铺单元在内容之外的横向间距
	TileSpacingY float64
}

// OutputSpec 描述导出格式。
type OutputSpec struct {
	MIME    string // image/png、image/jpeg 等
	Quality int    // 有损格式的质量，1-100
}

// ScaleNotice 描述一次安全降采样，仅作通知，不是错误。
type ScaleNotice struct {
	FromWidth  int `json:"fromWidth"`
	FromHeight int `json:"fromHeight"`
	Width      int `json:"width"`
	Height     int `json:"height"`
}

package watermark

import (
	"fmt"
	"image"
	"strings"
)

// 水印类型与摆放模式的枚举值。
const (
	TypeText  = "text"
	TypeImage = "image"

	ModeSingle = "single"
	ModeTiled  = "tiled"
)

// 各配置项的默认值。
const (
	DefaultOpacity       = 1.0
	DefaultPadding       = 20.0
	DefaultTileSpacingX  = 100.0
	DefaultTileSpacingY  = 80.0
	DefaultFontSize      = 48.0
	DefaultFontWeight    = 400
	DefaultFillColor     = "rgba(255,255,255,0.5)"
	DefaultStrokeWidth   = 1.0
	DefaultOutputType    = "image/png"
	DefaultOutputQuality = 90
	DefaultWidthFraction = 0.15
)

// Options 描述一次水印合成。除 Type 外的字段零值均取默认；
// 指针字段用于区分「未设置」与显式的零。
type Options struct {
	Type     string   `json:"type"`               // text 或 image
	Mode     string   `json:"mode,omitempty"`     // single（默认）或 tiled
	Position string   `json:"position,omitempty"` // 九宫格锚点名，默认 bottom-right
	Opacity  *float64 `json:"opacity,omitempty"`  // [0,1]，默认 1
	Rotate   float64  `json:"rotate,omitempty"`   // 顺时针角度
	Padding  *float64 `json:"padding,omitempty"`  // 锚点到边的留白（px），默认 20
	OffsetX  float64  `json:"offsetX,omitempty"`  // 无条件叠加的偏移（px）
	OffsetY  float64  `json:"offsetY,omitempty"`

	TileSpacingX *float64 `json:"tileSpacingX,omitempty"` // 平铺单元横向间距，默认 100
	TileSpacingY *float64 `json:"tileSpacingY,omitempty"` // 平铺单元纵向间距，默认 80

	Scale float64 `json:"scale,omitempty"` // 响应式缩放因子，0 表示关闭

	OutputType    string `json:"outputType,omitempty"`    // 输出 MIME，默认 image/png
	OutputQuality int    `json:"outputQuality,omitempty"` // 有损格式质量 1-100，默认 90

	Text  *TextOptions  `json:"text,omitempty"`  // Type 为 text 时必填
	Image *ImageOptions `json:"image,omitempty"` // Type 为 image 时必填

	PlanPath    string            `json:"-"` // 非空时把排版计划写为 JSON，仅供调试
	OnDownscale func(ScaleNotice) `json:"-"` // 源图被安全降采样时的通知
}

// TextOptions 描述文字水印的内容与样式。颜色字段接受 CSS 颜色写法
// （#RGB/#RRGGBB/#RRGGBBAA、rgb()/rgba()、hsl()/hsla()、关键字）。
type TextOptions struct {
	Content       string         `json:"content"`                 // 支持 \n 分行与 ${} 占位符
	FontFamily    string         `json:"fontFamily,omitempty"`    // 优先尝试的字体族
	FontSize      float64        `json:"fontSize,omitempty"`      // px，默认 48
	FontWeight    int            `json:"fontWeight,omitempty"`    // CSS 数值字重，默认 400
	FontStyle     string         `json:"fontStyle,omitempty"`     // italic/oblique 视为斜体
	FillColor     string         `json:"fillColor,omitempty"`     // 默认 rgba(255,255,255,0.5)
	StrokeColor   string         `json:"strokeColor,omitempty"`   // 空串不描边
	StrokeWidth   float64        `json:"strokeWidth,omitempty"`   // 设了描边色而宽度为 0 时取 1
	ShadowColor   string         `json:"shadowColor,omitempty"`   // 空串无阴影
	ShadowBlur    float64        `json:"shadowBlur,omitempty"`    // 近似模糊半径
	ShadowOffsetX float64        `json:"shadowOffsetX,omitempty"`
	ShadowOffsetY float64        `json:"shadowOffsetY,omitempty"`
	LineHeight    float64        `json:"lineHeight,omitempty"` // px；0 取 1.3 倍缩放后字号
	Vars          map[string]any `json:"vars,omitempty"`       // ${path} 占位符的数据源
}

// ImageOptions 描述图片水印的徽标来源，按 Element、Data、Source 的顺序取值。
type ImageOptions struct {
	Source        string      `json:"source,omitempty"` // 本地路径或 http(s) 地址
	Data          []byte      `json:"-"`                // 内存中的编码图片
	Element       image.Image `json:"-"`                // 已解码的图片
	WidthFraction float64     `json:"widthFraction,omitempty"` // 徽标宽度占表面宽度比例，默认 0.15
}

func (o *Options) opacity() float64 {
	if o.Opacity != nil {
		return *o.Opacity
	}
	return DefaultOpacity
}

func (o *Options) padding() float64 {
	if o.Padding != nil {
		return *o.Padding
	}
	return DefaultPadding
}

func (o *Options) tileSpacing() (float64, float64) {
	x, y := DefaultTileSpacingX, DefaultTileSpacingY
	if o.TileSpacingX != nil {
		x = *o.TileSpacingX
	}
	if o.TileSpacingY != nil {
		y = *o.TileSpacingY
	}
	return x, y
}

func (o *Options) mode() string {
	if o.Mode == "" {
		return ModeSingle
	}
	return o.Mode
}

func (o *Options) outputType() string {
	if o.OutputType == "" {
		return DefaultOutputType
	}
	return o.OutputType
}

func (o *Options) outputQuality() int {
	if o.OutputQuality == 0 {
		return DefaultOutputQuality
	}
	return o.OutputQuality
}

// validate 在接触任何绘图资源之前检查配置，失败返回 *ConfigError。
// 锚点与颜色的解析发生在装配任务时，同样早于后端。
func (o *Options) validate() error {
	switch o.Type {
	case TypeText, TypeImage:
	default:
		return &ConfigError{Field: "type", Reason: fmt.Sprintf("必须为 %s 或 %s，当前 %q", TypeText, TypeImage, o.Type)}
	}
	switch o.mode() {
	case ModeSingle, ModeTiled:
	default:
		return &ConfigError{Field: "mode", Reason: fmt.Sprintf("必须为 %s 或 %s，当前 %q", ModeSingle, ModeTiled, o.Mode)}
	}
	if op := o.opacity(); op < 0 || op > 1 {
		return &ConfigError{Field: "opacity", Reason: fmt.Sprintf("必须在 [0,1] 内，当前 %g", op)}
	}
	if o.padding() < 0 {
		return &ConfigError{Field: "padding", Reason: "不能为负"}
	}
	tsx, tsy := o.tileSpacing()
	if tsx < 0 {
		return &ConfigError{Field: "tileSpacingX", Reason: "不能为负"}
	}
	if tsy < 0 {
		return &ConfigError{Field: "tileSpacingY", Reason: "不能为负"}
	}
	if q := o.OutputQuality; q < 0 || q > 100 {
		return &ConfigError{Field: "outputQuality", Reason: fmt.Sprintf("必须在 [0,100] 内，当前 %d", q)}
	}

	switch o.Type {
	case TypeText:
		t := o.Text
		if t == nil || strings.TrimSpace(t.Content) == "" {
			return &ConfigError{Field: "text.content", Reason: "文字水印必须提供内容"}
		}
		if t.FontSize < 0 {
			return &ConfigError{Field: "text.fontSize", Reason: "不能为负"}
		}
		if t.StrokeWidth < 0 {
			return &ConfigError{Field: "text.strokeWidth", Reason: "不能为负"}
		}
		if t.ShadowBlur < 0 {
			return &ConfigError{Field: "text.shadowBlur", Reason: "不能为负"}
		}
	case TypeImage:
		img := o.Image
		if img == nil || (img.Source == "" && len(img.Data) == 0 && img.Element == nil) {
			return &ConfigError{Field: "image.source", Reason: "图片水印必须提供来源"}
		}
		if img.WidthFraction < 0 {
			return &ConfigError{Field: "image.widthFraction", Reason: "不能为负"}
		}
	}
	return nil
}

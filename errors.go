package watermark

import (
	"fmt"

	"github.com/huuhuybn/miconvert-image-watermark/renderer"
)

// ConfigError 表示配置字段缺失或取值非法。
// 在分配任何绘图资源之前返回。
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置项 %s 无效: %s", e.Field, e.Reason)
}

// EnvError 表示当前进程没有可用的绘图后端，同样在解码之前返回。
type EnvError struct {
	Reason string
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("绘图环境不可用: %s", e.Reason)
}

// 渲染链路的错误类型在根包重新导出，调用方无需引用 renderer 包
// 即可做 errors.As 判断。
type (
	// DecodeError 表示源图无法解码。
	DecodeError = renderer.DecodeError
	// AssetError 表示徽标或字体资产加载失败，对徽标是致命的。
	AssetError = renderer.AssetError
	// ExportError 表示表面无法编码，携带请求的 MIME 与表面尺寸。
	ExportError = renderer.ExportError
)

// ScaleNotice 描述一次安全降采样通知。
type ScaleNotice = renderer.ScaleNotice

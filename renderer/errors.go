package renderer

import (
	"errors"
	"fmt"
)

// ErrTileGeometry 表示平铺单元步距不为正，栅格无法铺开。
var ErrTileGeometry = errors.New("平铺单元步距必须为正")

// DecodeError 表示源图解码失败。
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("解码源图失败: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// AssetError 表示徽标图等外部资源加载失败。
type AssetError struct {
	Locator string
	Err     error
}

func (e *AssetError) Error() string {
	if e.Locator != "" {
		return fmt.Sprintf("加载资源 %s 失败: %v", e.Locator, e.Err)
	}
	return fmt.Sprintf("加载资源失败: %v", e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// ExportError 表示表面编码失败，携带请求的 MIME 与表面当时的像素尺寸，
// 便于诊断是格式不受支持还是表面状态异常。
type ExportError struct {
	MIME   string
	Width  int
	Height int
	Err    error
}

func (e *ExportError) Error() string {
	msg := fmt.Sprintf("导出失败: mime=%s 表面=%dx%d", e.MIME, e.Width, e.Height)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExportError) Unwrap() error { return e.Err }

package layout

import (
	"fmt"
	"strings"
)

// 该文件实现水印的九宫格定位：锚点解析、盒子坐标计算与响应式缩放。
// 所有坐标均以表面左上角为原点、像素为单位。

// Anchor 是九宫格中的一个命名位置。
type Anchor string

const (
	TopLeft      Anchor = "top-left"
	TopCenter    Anchor = "top-center"
	TopRight     Anchor = "top-right"
	CenterLeft   Anchor = "center-left"
	Center       Anchor = "center"
	CenterRight  Anchor = "center-right"
	BottomLeft   Anchor = "bottom-left"
	BottomCenter Anchor = "bottom-center"
	BottomRight  Anchor = "bottom-right"
)

var anchors = map[Anchor]struct{}{
	TopLeft: {}, TopCenter: {}, TopRight: {},
	CenterLeft: {}, Center: {}, CenterRight: {},
	BottomLeft: {}, BottomCenter: {}, BottomRight: {},
}

// ParseAnchor 解析锚点名。空串取默认值 bottom-right，未知名称返回错误。
func ParseAnchor(s string) (Anchor, error) {
	if s == "" {
		return BottomRight, nil
	}
	a := Anchor(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := anchors[a]; !ok {
		return "", fmt.Errorf("未知的锚点位置 %q", s)
	}
	return a, nil
}

// Point 是表面上的一个坐标（左上角原点，向右向下为正）。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position 计算尺寸为 boxW×boxH 的水印盒左上角坐标。
// 水平方向：锚点名含 left 靠左留边距，含 right 靠右留边距，否则居中；
// 垂直方向：以 top/bottom 开头者同理，否则居中。
// offsetX/offsetY 无条件叠加，允许把水印推出可见区域，越界由调用方自负。
func Position(surfaceW, surfaceH, boxW, boxH float64, anchor Anchor, padding, offsetX, offsetY float64) Point {
	name := string(anchor)

	var x float64
	switch {
	case strings.Contains(name, "left"):
		x = padding
	case strings.Contains(name, "right"):
		x = surfaceW - boxW - padding
	default:
		x = (surfaceW - boxW) / 2
	}

	var y float64
	switch {
	case strings.HasPrefix(name, "top"):
		y = padding
	case strings.HasPrefix(name, "bottom"):
		y = surfaceH - boxH - padding
	default:
		y = (surfaceH - boxH) / 2
	}

	return Point{X: x + offsetX, Y: y + offsetY}
}

// referenceWidth 是响应式缩放的基准表面宽度。
const referenceWidth = 1920.0

// Multiplier 返回响应式缩放系数 (surfaceWidth/1920)×scale。
// scale 未设置（非正）时关闭响应式缩放，返回 1。
// 该系数作用于字号、徽标宽度与平铺间距，不作用于 padding 和偏移。
func Multiplier(surfaceWidth, scale float64) float64 {
	if scale <= 0 {
		return 1
	}
	return surfaceWidth / referenceWidth * scale
}

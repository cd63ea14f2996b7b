package canvasrenderer

import (
	"fmt"
	"image/color"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// pxToPt 把像素字号换算为 canvas 字体面的 pt 入参。
// 本渲染器令 1 画布单位等于 1 像素，而 canvas 的字号参数按 pt 解释。
const pxToPt = 72.0 / 25.4

// builtinFamily 是字体栈全部未命中时的兜底字体族名，
// 同时作为通用族名 sans-serif 的落点。
const builtinFamily = "sans-serif"

type familyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

func familyKey(family string, weight int) string {
	return fmt.Sprintf("%s|%d", family, weight)
}

// Install 实现 fonts.Installer：把字体数据注册为指定字重下的字体族。
// 同一（字体族, 字重）重复注册为覆盖，无害。index 为 TTC/OTC 集合下标。
func (r *Renderer) Install(family string, weight int, data []byte, index int) error {
	if family == "" {
		return fmt.Errorf("字体族名不能为空")
	}
	if len(data) == 0 {
		return fmt.Errorf("字体 %s 缺少数据", family)
	}
	style := styleForWeight(weight)
	fam := canvas.NewFontFamily(family)
	if err := fam.LoadFont(data, index, style); err != nil {
		return fmt.Errorf("解析字体 %s 失败: %w", family, err)
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	r.families[familyKey(family, weight)] = &familyEntry{family: fam, style: style}
	return nil
}

// face 沿字体栈取首个已注册的字体族并创建字体面。
// 请求字重未注册时退到同族常规字重，整栈未命中时落到内置字体。
func (r *Renderer) face(stack []string, weight int, sizePx float64, col color.Color) (*canvas.FontFace, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	for _, name := range stack {
		if e, ok := r.families[familyKey(name, weight)]; ok {
			return e.family.Face(sizePx*pxToPt, col, e.style, canvas.FontNormal), nil
		}
		if e, ok := r.families[familyKey(name, 400)]; ok {
			return e.family.Face(sizePx*pxToPt, col, e.style, canvas.FontNormal), nil
		}
	}

	e, err := r.ensureBuiltin(weight)
	if err != nil {
		return nil, err
	}
	return e.family.Face(sizePx*pxToPt, col, e.style, canvas.FontNormal), nil
}

// ensureBuiltin 懒加载内置 Go 字体，按粗细分桶缓存。调用方须持有 fontMu。
func (r *Renderer) ensureBuiltin(weight int) (*familyEntry, error) {
	key := familyKey(builtinFamily, weight)
	if e, ok := r.families[key]; ok {
		return e, nil
	}
	data := goregular.TTF
	if weight >= 600 {
		data = gobold.TTF
	}
	style := styleForWeight(weight)
	fam := canvas.NewFontFamily(builtinFamily)
	if err := fam.LoadFont(data, 0, style); err != nil {
		return nil, fmt.Errorf("加载内置字体失败: %w", err)
	}
	e := &familyEntry{family: fam, style: style}
	r.families[key] = e
	return e, nil
}

// styleForWeight 把 CSS 数值字重映射为 canvas 的字体风格。
func styleForWeight(weight int) canvas.FontStyle {
	switch {
	case weight >= 900:
		return canvas.FontBlack
	case weight >= 800:
		return canvas.FontExtraBold
	case weight >= 700:
		return canvas.FontBold
	case weight >= 600:
		return canvas.FontSemiBold
	case weight >= 500:
		return canvas.FontMedium
	case weight > 0 && weight < 350:
		return canvas.FontLight
	default:
		return canvas.FontRegular
	}
}

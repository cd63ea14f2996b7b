package fonts

import (
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/huuhuybn/miconvert-image-watermark/script"
)

// 该文件维护各书写系统首选字体的获取来源：先尝试常见系统字体路径，
// 再回落到 Noto 的 CDN 下载。拉丁、西里尔与希腊文由内置 Go 字体兜底，
// 离线环境下水印始终可渲染。

const boldWeightCutoff = 600

// embeddedFace 返回随包内置的 Go 字体数据。
func embeddedFace(weight int, italic bool) []byte {
	bold := weight >= boldWeightCutoff
	switch {
	case bold && italic:
		return gobolditalic.TTF
	case bold:
		return gobold.TTF
	case italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}

// registry 按书写系统给出字体来源的尝试顺序。
// NotoSansCJK 集合文件的下标约定：0=日文 1=韩文 2=简体中文。
var registry = map[script.Script][]Source{
	script.Arabic: {
		{Path: "/usr/share/fonts/truetype/noto/NotoNaskhArabic-Regular.ttf"},
		{URL: "https://cdn.jsdelivr.net/gh/notofonts/notofonts.github.io/fonts/NotoNaskhArabic/hinted/ttf/NotoNaskhArabic-Regular.ttf"},
	},
	script.Hebrew: {
		{Path: "/usr/share/fonts/truetype/noto/NotoSansHebrew-Regular.ttf"},
		{URL: "https://cdn.jsdelivr.net/gh/notofonts/notofonts.github.io/fonts/NotoSansHebrew/hinted/ttf/NotoSansHebrew-Regular.ttf"},
	},
	script.Devanagari: {
		{Path: "/usr/share/fonts/truetype/noto/NotoSansDevanagari-Regular.ttf"},
		{URL: "https://cdn.jsdelivr.net/gh/notofonts/notofonts.github.io/fonts/NotoSansDevanagari/hinted/ttf/NotoSansDevanagari-Regular.ttf"},
	},
	script.Bengali: {
		{Path: "/usr/share/fonts/truetype/noto/NotoSansBengali-Regular.ttf"},
		{URL: "https://cdn.jsdelivr.net/gh/notofonts/notofonts.github.io/fonts/NotoSansBengali/hinted/ttf/NotoSansBengali-Regular.ttf"},
	},
	script.Thai: {
		{Path: "/usr/share/fonts/truetype/noto/NotoSansThai-Regular.ttf"},
		{URL: "https://cdn.jsdelivr.net/gh/notofonts/notofonts.github.io/fonts/NotoSansThai/hinted/ttf/NotoSansThai-Regular.ttf"},
	},
	script.Japanese: {
		{Path: "/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc", Index: 0},
		{Path: "/System/Library/Fonts/ヒラギノ角ゴシック W4.ttc"},
		{URL: "https://cdn.jsdelivr.net/gh/notofonts/noto-cjk/Sans/OTF/Japanese/NotoSansCJKjp-Regular.otf"},
	},
	script.Korean: {
		{Path: "/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc", Index: 1},
		{Path: "/System/Library/Fonts/AppleSDGothicNeo.ttc"},
		{URL: "https://cdn.jsdelivr.net/gh/notofonts/noto-cjk/Sans/OTF/Korean/NotoSansCJKkr-Regular.otf"},
	},
	script.CJK: {
		{Path: "/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc", Index: 2},
		{Path: "/System/Library/Fonts/PingFang.ttc"},
		{URL: "https://cdn.jsdelivr.net/gh/notofonts/noto-cjk/Sans/OTF/SimplifiedChinese/NotoSansCJKsc-Regular.otf"},
	},
}

// sourcesFor 返回某书写系统在给定字重下的来源序列。
// 未入表的书写系统（拉丁族）直接使用内置字体。
func sourcesFor(sc script.Script, weight int) []Source {
	if sources, ok := registry[sc]; ok {
		return sources
	}
	return []Source{{Bytes: embeddedFace(weight, false)}}
}
